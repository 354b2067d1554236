// Package workbook treats an .xlsx file as a small database: one sheet per table, a header row naming the
// columns and one record per following row.
package workbook

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"
)

var (
	ErrRecordNotFound = errors.New("Record not found")
	ErrSheetNotFound  = errors.New("sheet not found")
	ErrNoIDColumn     = errors.New("sheet missing ID column")
)

const defaultSheet = "Sheet1"

// Store serialises every read and write to the workbook. Writers persist to disk before the lock is released.
type Store struct {
	mu    sync.Mutex
	path  string
	file  *excelize.File
	fresh bool
}

// Open loads the workbook at path, creating an empty one when the file does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create workbook directory: %w", err)
		}
		s.file = excelize.NewFile()
		s.fresh = true
		return s, nil
	} else if err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	s.file = f
	return s, nil
}

// Close releases the underlying file handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// EnsureSheet creates the sheet with its header row unless it already exists.
func (s *Store) EnsureSheet(name string, headers []string) error {
	return s.Update(func(tx *Tx) error {
		idx, err := s.file.GetSheetIndex(name)
		if err != nil {
			return err
		}
		if idx >= 0 {
			return nil
		}

		if s.fresh && len(s.file.GetSheetList()) == 1 && s.file.GetSheetList()[0] == defaultSheet {
			if err := s.file.SetSheetName(defaultSheet, name); err != nil {
				return err
			}
			s.fresh = false
		} else if _, err := s.file.NewSheet(name); err != nil {
			return err
		}

		row := make([]interface{}, len(headers))
		for i, h := range headers {
			row[i] = h
		}
		if err := s.file.SetSheetRow(name, "A1", &row); err != nil {
			return err
		}
		tx.dirty = true
		slog.Info("Workbook sheet created", "sheet", name, "columns", len(headers))
		return nil
	})
}

// View runs fn under the store lock without persisting.
func (s *Store) View(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{store: s})
}

// Update runs fn under the store lock and saves the workbook when fn wrote anything. A failing fn discards
// its in-memory changes by reloading the file from disk.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{store: s}
	if err := fn(tx); err != nil {
		if tx.dirty {
			if rbErr := s.reload(); rbErr != nil {
				slog.Error("Workbook reload after failed write", "error", rbErr)
			}
		}
		return err
	}
	if !tx.dirty {
		return nil
	}
	return s.save()
}

// save writes to a temp file next to the workbook and renames it over the original.
func (s *Store) save() error {
	buf, err := s.file.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("failed to serialise workbook: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace workbook: %w", err)
	}
	return nil
}

func (s *Store) reload() error {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		s.file = excelize.NewFile()
		s.fresh = true
		return nil
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return err
	}
	_ = s.file.Close()
	s.file = f
	return nil
}

// Tx is the handle passed to View and Update callbacks.
type Tx struct {
	store *Store
	dirty bool
}

// Table returns the table stored in the named sheet.
func (tx *Tx) Table(sheet string) *Table {
	return &Table{tx: tx, sheet: sheet}
}

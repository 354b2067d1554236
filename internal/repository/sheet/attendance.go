package sheet

import (
	"context"
	"fmt"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/attendance"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/workbook"
)

const timestampLayout = "2006-01-02 15:04:05"

type attendanceRepositoryImpl struct {
	store *workbook.Store
}

func NewAttendanceRepository(store *workbook.Store) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{store: store}
}

func (r *attendanceRepositoryImpl) ListTeam(ctx context.Context) ([]attendance.TeamMember, error) {
	var out []attendance.TeamMember
	err := r.store.View(func(tx *workbook.Tx) error {
		rows, err := tx.Table(SheetTeamList).All()
		if err != nil {
			return err
		}
		out = make([]attendance.TeamMember, 0, len(rows))
		for _, row := range rows {
			out = append(out, toTeamMember(row))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read team list: %w", err)
	}
	return out, nil
}

func (r *attendanceRepositoryImpl) AddTeamMember(ctx context.Context, m attendance.TeamMember) error {
	return r.store.Update(func(tx *workbook.Tx) error {
		table := tx.Table(SheetTeamList)
		_, found, err := table.First(func(row workbook.Record) bool {
			return attendance.SameName(row.Get("supervisor"), m.Supervisor) && attendance.SameName(row.Get("agent"), m.Agent)
		})
		if err != nil {
			return err
		}
		if found {
			return attendance.ErrTeamMemberExists
		}
		_, err = table.Append([]interface{}{m.Supervisor, m.Agent, m.Campaign})
		return err
	})
}

func (r *attendanceRepositoryImpl) RemoveTeamMember(ctx context.Context, supervisor, agent string) error {
	return r.store.Update(func(tx *workbook.Tx) error {
		table := tx.Table(SheetTeamList)
		row, found, err := table.First(func(row workbook.Record) bool {
			return attendance.SameName(row.Get("supervisor"), supervisor) && attendance.SameName(row.Get("agent"), agent)
		})
		if err != nil {
			return err
		}
		if !found {
			return attendance.ErrTeamMemberAbsent
		}
		return table.DeleteRow(row.Row)
	})
}

func (r *attendanceRepositoryImpl) ListRecords(ctx context.Context) ([]attendance.Record, error) {
	var out []attendance.Record
	err := r.store.View(func(tx *workbook.Tx) error {
		rows, err := tx.Table(SheetAttendance).All()
		if err != nil {
			return err
		}
		out = make([]attendance.Record, 0, len(rows))
		for _, row := range rows {
			out = append(out, toRecord(row))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read attendance: %w", err)
	}
	return out, nil
}

func (r *attendanceRepositoryImpl) InsertUnique(ctx context.Context, rec attendance.Record) (bool, error) {
	inserted := false
	err := r.store.Update(func(tx *workbook.Tx) error {
		table := tx.Table(SheetAttendance)
		_, found, err := table.First(matchKey(rec.Key()))
		if err != nil {
			return err
		}
		if found {
			return nil
		}
		_, err = table.Append([]interface{}{
			rec.Date, rec.Cluster, rec.Campaign, rec.EmployeeName, string(rec.Status),
			rec.ShiftStart, rec.ShiftEnd, rec.Notes, rec.Timestamp, rec.RecordedBy,
		})
		if err != nil {
			return err
		}
		inserted = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to save attendance: %w", err)
	}
	return inserted, nil
}

func (r *attendanceRepositoryImpl) Update(ctx context.Context, key attendance.Key, change attendance.Change, editor string, at time.Time) ([]attendance.HistoryEntry, error) {
	var entries []attendance.HistoryEntry
	err := r.store.Update(func(tx *workbook.Tx) error {
		table := tx.Table(SheetAttendance)
		row, found, err := table.First(matchKey(key))
		if err != nil {
			return err
		}
		if !found {
			return attendance.ErrRecordNotFound
		}

		entries = attendance.Diff(toRecord(row), change, editor, at)
		if err := table.UpdateRow(row.Row, map[string]string{
			"status":     string(change.Status),
			"shiftStart": change.ShiftStart,
			"shiftEnd":   change.ShiftEnd,
			"notes":      change.Notes,
		}); err != nil {
			return err
		}

		history := tx.Table(SheetUpdateHistory)
		for _, e := range entries {
			if _, err := history.Append([]interface{}{
				e.Date, e.Supervisor, e.Agent, e.Field, e.OldValue, e.NewValue, e.EditedBy,
				e.Timestamp.Format(timestampLayout),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *attendanceRepositoryImpl) ListHistory(ctx context.Context, filter attendance.HistoryFilter) ([]attendance.HistoryEntry, error) {
	var out []attendance.HistoryEntry
	err := r.store.View(func(tx *workbook.Tx) error {
		rows, err := tx.Table(SheetUpdateHistory).All()
		if err != nil {
			return err
		}
		out = make([]attendance.HistoryEntry, 0)
		for _, row := range rows {
			e := toHistoryEntry(row)
			if filter.Date != "" && e.Date != filter.Date {
				continue
			}
			if filter.Supervisor != "" && !attendance.SameName(e.Supervisor, filter.Supervisor) {
				continue
			}
			if filter.Agent != "" && !attendance.SameName(e.Agent, filter.Agent) {
				continue
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read update history: %w", err)
	}
	return out, nil
}

func matchKey(key attendance.Key) func(workbook.Record) bool {
	return func(row workbook.Record) bool {
		return toRecord(row).Matches(key)
	}
}

func toRecord(row workbook.Record) attendance.Record {
	return attendance.Record{
		Row:          row.Row,
		Date:         dateOf(row.Get("date")),
		Cluster:      row.Get("cluster"),
		Campaign:     row.Get("campaign"),
		EmployeeName: row.Get("employeeName"),
		Status:       attendance.Status(row.Get("status")),
		ShiftStart:   row.Get("shiftStart"),
		ShiftEnd:     row.Get("shiftEnd"),
		Notes:        row.Get("notes"),
		Timestamp:    row.Get("timestamp"),
		RecordedBy:   row.Get("recordedBy"),
	}
}

func toTeamMember(row workbook.Record) attendance.TeamMember {
	return attendance.TeamMember{
		Supervisor: row.Get("supervisor"),
		Agent:      row.Get("agent"),
		Campaign:   row.Get("campaign"),
	}
}

func toHistoryEntry(row workbook.Record) attendance.HistoryEntry {
	ts, _ := time.ParseInLocation(timestampLayout, row.Get("timestamp"), time.Local)
	return attendance.HistoryEntry{
		Date:       dateOf(row.Get("date")),
		Supervisor: row.Get("supervisor"),
		Agent:      row.Get("agent"),
		Field:      row.Get("field"),
		OldValue:   row.Get("oldValue"),
		NewValue:   row.Get("newValue"),
		EditedBy:   row.Get("editedBy"),
		Timestamp:  ts,
	}
}

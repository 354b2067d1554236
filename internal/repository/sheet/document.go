package sheet

import (
	"context"
	"errors"
	"fmt"

	"github.com/bpo-ops/ops-backend-go/internal/domain/document"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/workbook"
)

type documentRepositoryImpl struct {
	store *workbook.Store
}

func NewDocumentRepository(store *workbook.Store) document.DocumentRepository {
	return &documentRepositoryImpl{store: store}
}

func (r *documentRepositoryImpl) Append(ctx context.Context, f document.Form) (document.Form, error) {
	err := r.store.Update(func(tx *workbook.Tx) error {
		row, err := tx.Table(SheetFormData).Append([]interface{}{
			f.Timestamp, f.DocumentTitle, f.Date, f.PreparedBy, f.ClientName, f.Category, f.DescriptionNotes,
		})
		if err != nil {
			return err
		}
		f.Row = row
		return nil
	})
	if err != nil {
		return document.Form{}, fmt.Errorf("failed to save document form: %w", err)
	}
	return f, nil
}

func (r *documentRepositoryImpl) List(ctx context.Context) ([]document.Form, error) {
	var out []document.Form
	err := r.store.View(func(tx *workbook.Tx) error {
		rows, err := tx.Table(SheetFormData).All()
		if err != nil {
			return err
		}
		out = make([]document.Form, 0, len(rows))
		for _, row := range rows {
			out = append(out, toForm(row))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read document forms: %w", err)
	}
	return out, nil
}

func (r *documentRepositoryImpl) Last(ctx context.Context) (document.Form, error) {
	forms, err := r.List(ctx)
	if err != nil {
		return document.Form{}, err
	}
	if len(forms) == 0 {
		return document.Form{}, document.ErrNoData
	}
	return forms[len(forms)-1], nil
}

func (r *documentRepositoryImpl) GetByRow(ctx context.Context, row int) (document.Form, error) {
	var form document.Form
	err := r.store.View(func(tx *workbook.Tx) error {
		rec, found, err := tx.Table(SheetFormData).First(func(rec workbook.Record) bool { return rec.Row == row })
		if err != nil {
			return err
		}
		if !found {
			return document.ErrFormNotFound
		}
		form = toForm(rec)
		return nil
	})
	if err != nil && !errors.Is(err, document.ErrFormNotFound) {
		return document.Form{}, fmt.Errorf("failed to read document form: %w", err)
	}
	return form, err
}

func toForm(row workbook.Record) document.Form {
	return document.Form{
		Row:              row.Row,
		Timestamp:        row.Get("timestamp"),
		DocumentTitle:    row.Get("documentTitle"),
		Date:             dateOf(row.Get("date")),
		PreparedBy:       row.Get("preparedBy"),
		ClientName:       row.Get("clientName"),
		Category:         row.Get("category"),
		DescriptionNotes: row.Values["descriptionNotes"],
	}
}

package sheet

import (
	"context"
	"errors"
	"fmt"

	"github.com/bpo-ops/ops-backend-go/internal/domain/nte"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/workbook"
)

type nteRepositoryImpl struct {
	store *workbook.Store
}

func NewNTERepository(store *workbook.Store) nte.NTERepository {
	return &nteRepositoryImpl{store: store}
}

func (r *nteRepositoryImpl) List(ctx context.Context) ([]nte.Form, error) {
	var out []nte.Form
	err := r.store.View(func(tx *workbook.Tx) error {
		rows, err := tx.Table(SheetNTE).All()
		if err != nil {
			return err
		}
		out = make([]nte.Form, 0, len(rows))
		for _, row := range rows {
			out = append(out, nte.FormFromValues(row.ID, row.Values))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read NTE forms: %w", err)
	}
	return out, nil
}

func (r *nteRepositoryImpl) GetByID(ctx context.Context, id int) (nte.Form, error) {
	var form nte.Form
	err := r.store.View(func(tx *workbook.Tx) error {
		row, err := tx.Table(SheetNTE).FindByID(id)
		if err != nil {
			return err
		}
		form = nte.FormFromValues(row.ID, row.Values)
		return nil
	})
	return form, translate(err)
}

func (r *nteRepositoryImpl) Create(ctx context.Context, form nte.Form) (int, error) {
	var id int
	err := r.store.Update(func(tx *workbook.Tx) error {
		values := form.Values()
		delete(values, "id")
		rec, err := tx.Table(SheetNTE).Create(values)
		if err != nil {
			return err
		}
		id = rec.ID
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create NTE form: %w", err)
	}
	return id, nil
}

func (r *nteRepositoryImpl) Update(ctx context.Context, id int, patch map[string]string) error {
	err := r.store.Update(func(tx *workbook.Tx) error {
		_, err := tx.Table(SheetNTE).Update(id, patch)
		return err
	})
	return translate(err)
}

func (r *nteRepositoryImpl) Delete(ctx context.Context, id int) error {
	err := r.store.Update(func(tx *workbook.Tx) error {
		return tx.Table(SheetNTE).Delete(id)
	})
	return translate(err)
}

func translate(err error) error {
	if errors.Is(err, workbook.ErrRecordNotFound) {
		return nte.ErrFormNotFound
	}
	return err
}

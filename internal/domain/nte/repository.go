package nte

import "context"

type NTERepository interface {
	List(ctx context.Context) ([]Form, error)
	GetByID(ctx context.Context, id int) (Form, error)
	// Create assigns the next ID and returns it.
	Create(ctx context.Context, form Form) (int, error)
	// Update merges patch, keyed by camelCase column keys, into the stored form.
	Update(ctx context.Context, id int, patch map[string]string) error
	Delete(ctx context.Context, id int) error
}

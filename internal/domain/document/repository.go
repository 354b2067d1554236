package document

import "context"

type DocumentRepository interface {
	// Append stores the form and returns it with its row number.
	Append(ctx context.Context, f Form) (Form, error)
	List(ctx context.Context) ([]Form, error)
	// Last returns the most recent submission, ErrNoData when there is none.
	Last(ctx context.Context) (Form, error)
	GetByRow(ctx context.Context, row int) (Form, error)
}

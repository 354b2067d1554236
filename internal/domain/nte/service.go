package nte

import "context"

type NTEService interface {
	List(ctx context.Context) ([]Form, error)
	Get(ctx context.Context, id int) (Form, error)
	Create(ctx context.Context, req CreateFormRequest) (int, error)
	Update(ctx context.Context, req UpdateFormRequest) error
	Delete(ctx context.Context, id int) error
	Preview(ctx context.Context, id int) (Preview, error)
	ExportPDF(ctx context.Context, id int) (ExportedDocument, error)
}

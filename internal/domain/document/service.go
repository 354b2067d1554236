package document

import "context"

type DocumentService interface {
	SaveForm(ctx context.Context, req SaveFormRequest) (Form, error)
	ListForms(ctx context.Context) ([]Form, error)
	GenerateLatest(ctx context.Context) (GeneratedDocument, error)
	Generate(ctx context.Context, row int) (GeneratedDocument, error)
}

package document

import (
	"context"
	"log/slog"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/document"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/jwt"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/pdf"
	"github.com/bpo-ops/ops-backend-go/internal/service/file"
)

const untitled = "Untitled Document"

type DocumentServiceImpl struct {
	document.DocumentRepository
	fileService file.FileService
	branding    file.Branding
	now         func() time.Time
}

func NewDocumentService(repo document.DocumentRepository, fileService file.FileService, branding file.Branding) document.DocumentService {
	return &DocumentServiceImpl{
		DocumentRepository: repo,
		fileService:        fileService,
		branding:           branding,
		now:                time.Now,
	}
}

// SaveForm implements document.DocumentService. PreparedBy defaults to the signed-in user's name.
func (s *DocumentServiceImpl) SaveForm(ctx context.Context, req document.SaveFormRequest) (document.Form, error) {
	if err := req.Validate(); err != nil {
		return document.Form{}, err
	}

	preparedBy := req.PreparedBy
	if preparedBy == "" {
		if claims, err := jwt.ClaimsFromContext(ctx); err == nil {
			preparedBy = claims.Name
		}
	}

	return s.DocumentRepository.Append(ctx, document.Form{
		Timestamp:        s.now().Format("2006-01-02 15:04:05"),
		DocumentTitle:    req.DocumentTitle,
		Date:             req.Date,
		PreparedBy:       preparedBy,
		ClientName:       req.ClientName,
		Category:         req.Category,
		DescriptionNotes: req.DescriptionNotes,
	})
}

// ListForms implements document.DocumentService.
func (s *DocumentServiceImpl) ListForms(ctx context.Context) ([]document.Form, error) {
	return s.DocumentRepository.List(ctx)
}

// GenerateLatest implements document.DocumentService.
func (s *DocumentServiceImpl) GenerateLatest(ctx context.Context) (document.GeneratedDocument, error) {
	form, err := s.DocumentRepository.Last(ctx)
	if err != nil {
		return document.GeneratedDocument{}, err
	}
	return s.render(ctx, form)
}

// Generate implements document.DocumentService.
func (s *DocumentServiceImpl) Generate(ctx context.Context, row int) (document.GeneratedDocument, error) {
	form, err := s.DocumentRepository.GetByRow(ctx, row)
	if err != nil {
		return document.GeneratedDocument{}, err
	}
	return s.render(ctx, form)
}

func (s *DocumentServiceImpl) render(ctx context.Context, form document.Form) (document.GeneratedDocument, error) {
	title := form.DocumentTitle
	if title == "" {
		title = untitled
	}
	company := s.branding.CompanyName

	doc := pdf.New(pdf.Options{
		Title: title,
		Meta:  form.MetaLine(),
		Logo:  s.branding.Logo(ctx, s.fileService),
		Footer: func(page int) []string {
			return []string{"© " + company + " | Confidential Document", "Page 1 of 1"}
		},
	})
	doc.AddPage()
	for _, b := range document.ParseNotes(form.DescriptionNotes) {
		if b.Bullet {
			doc.Bullet(b.Text)
			continue
		}
		doc.Paragraph(b.Text)
	}

	content, err := doc.Bytes()
	if err != nil {
		return document.GeneratedDocument{}, err
	}

	name := pdf.SafeName(title)
	if name == "" {
		name = "Document"
	}
	stored, err := s.fileService.SaveDocument(ctx, "smartdoc", name, content)
	if err != nil {
		return document.GeneratedDocument{}, err
	}

	slog.Info("Document generated", "row", form.Row, "title", title, "path", stored.Path)
	return document.GeneratedDocument{Success: true, FileName: stored.Name, Path: stored.Path, URL: stored.URL}, nil
}

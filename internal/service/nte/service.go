package nte

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"strconv"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/nte"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/pdf"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/workbook"
	"github.com/bpo-ops/ops-backend-go/internal/service/file"
)

const (
	defaultNarration   = "No narration provided."
	defaultExplanation = "Employee is requested to provide a detailed explanation of the incident."
	defaultConsequence = "The possible consequences may include disciplinary action up to and including termination, " +
		"depending on the severity of the offense and the employee's prior record."
	responseNote = "You are required to submit your written explanation within 48 hours from receipt of this notice."
	notAvailable = "N/A"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type NTEServiceImpl struct {
	nte.NTERepository
	fileService file.FileService
	branding    file.Branding
	now         func() time.Time
}

func NewNTEService(repo nte.NTERepository, fileService file.FileService, branding file.Branding) nte.NTEService {
	return &NTEServiceImpl{
		NTERepository: repo,
		fileService:   fileService,
		branding:      branding,
		now:           time.Now,
	}
}

// List implements nte.NTEService.
func (s *NTEServiceImpl) List(ctx context.Context) ([]nte.Form, error) {
	return s.NTERepository.List(ctx)
}

// Get implements nte.NTEService.
func (s *NTEServiceImpl) Get(ctx context.Context, id int) (nte.Form, error) {
	return s.NTERepository.GetByID(ctx, id)
}

// Create implements nte.NTEService.
func (s *NTEServiceImpl) Create(ctx context.Context, req nte.CreateFormRequest) (int, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	now := s.now()
	form := nte.Form{
		EmployeeName:        req.EmployeeName,
		EmployeeNumber:      req.EmployeeNumber,
		Department:          req.Department,
		Supervisor:          req.Supervisor,
		DateIssued:          req.DateIssued,
		DateOfIncident:      req.DateOfIncident,
		PlaceOfIncident:     req.PlaceOfIncident,
		NarrationOfIncident: req.NarrationOfIncident,
		Explanation:         req.Explanation,
		Consequence:         req.Consequence,
		Status:              req.Status,
		CreatedAt:           now.Format("2006-01-02 15:04:05"),
	}
	if form.DateIssued == "" {
		form.DateIssued = now.Format("2006-01-02")
	}
	if form.Status == "" {
		form.Status = nte.StatusIssued
	}

	id, err := s.NTERepository.Create(ctx, form)
	if err != nil {
		return 0, err
	}
	slog.Info("NTE form created", "id", id, "employee", form.EmployeeName)
	return id, nil
}

// Update implements nte.NTEService.
func (s *NTEServiceImpl) Update(ctx context.Context, req nte.UpdateFormRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.NTERepository.Update(ctx, int(req.ID), req.Patch())
}

// Delete implements nte.NTEService.
func (s *NTEServiceImpl) Delete(ctx context.Context, id int) error {
	return s.NTERepository.Delete(ctx, id)
}

// pageData is a form prepared for display: dates formatted and defaults applied.
type pageData struct {
	Code            string
	EmployeeName    string
	EmployeeNumber  string
	DateIssued      string
	Department      string
	Supervisor      string
	DateOfIncident  string
	PlaceOfIncident string
	Narration       string
	Explanation     string
	Consequence     string
	ResponseNote    string
}

func newPageData(f nte.Form) pageData {
	d := pageData{
		Code:            strconv.Itoa(f.ID),
		EmployeeName:    f.EmployeeName,
		EmployeeNumber:  f.EmployeeNumber,
		DateIssued:      displayDate(f.DateIssued),
		Department:      orDefault(f.Department, notAvailable),
		Supervisor:      f.Supervisor,
		DateOfIncident:  displayDate(f.DateOfIncident),
		PlaceOfIncident: orDefault(f.PlaceOfIncident, notAvailable),
		Narration:       orDefault(f.NarrationOfIncident, defaultNarration),
		Consequence:     orDefault(f.Consequence, defaultConsequence),
		ResponseNote:    responseNote,
	}
	d.Explanation = orDefault(f.Explanation, orDefault(f.NarrationOfIncident, defaultExplanation))
	return d
}

// DocumentName is NTE_<letters and digits of the employee name>_<id>.
func DocumentName(f nte.Form) string {
	name := pdf.SafeName(f.EmployeeName)
	if name == "" {
		name = "Unknown"
	}
	return fmt.Sprintf("NTE_%s_%d", name, f.ID)
}

// Preview implements nte.NTEService.
func (s *NTEServiceImpl) Preview(ctx context.Context, id int) (nte.Preview, error) {
	form, err := s.NTERepository.GetByID(ctx, id)
	if err != nil {
		return nte.Preview{}, err
	}

	data := newPageData(form)
	out := nte.Preview{DocumentName: DocumentName(form), Pages: make([]string, 0, 2)}
	for _, name := range []string{"incident_report.html", "notice_to_explain.html"} {
		var buf bytes.Buffer
		if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
			return nte.Preview{}, fmt.Errorf("failed to render %s: %w", name, err)
		}
		out.Pages = append(out.Pages, buf.String())
	}
	return out, nil
}

// ExportPDF implements nte.NTEService.
func (s *NTEServiceImpl) ExportPDF(ctx context.Context, id int) (nte.ExportedDocument, error) {
	form, err := s.NTERepository.GetByID(ctx, id)
	if err != nil {
		return nte.ExportedDocument{}, err
	}
	data := newPageData(form)

	doc := pdf.New(pdf.Options{
		Logo: s.branding.Logo(ctx, s.fileService),
		Footer: func(page int) []string {
			if page == 1 {
				return []string{fmt.Sprintf("IR Code: %s - Page 1 of 2", data.Code)}
			}
			return []string{fmt.Sprintf("NTE Code: %s - Page 2 of 2", data.Code)}
		},
	})
	header := [][2]string{
		{"Employee Name", data.EmployeeName},
		{"Employee No.", data.EmployeeNumber},
		{"Date Issued", data.DateIssued},
		{"Supervisor", data.Supervisor},
		{"Department", data.Department},
	}

	doc.SetHeader("Incident Report (IR)", s.branding.CompanyName)
	doc.AddPage()
	doc.Fields(header)
	doc.Heading("Incident Details")
	doc.Fields([][2]string{{"Date of Incident", data.DateOfIncident}, {"Place of Incident", data.PlaceOfIncident}})
	doc.Heading("Narration of Incident")
	doc.Box(data.Narration, false)
	doc.Paragraph(fmt.Sprintf("Submitted by: %s\nDate: %s", data.Supervisor, data.DateIssued))

	doc.SetHeader("Notice to Explain (NTE)", s.branding.CompanyName)
	doc.AddPage()
	doc.Fields(header)
	doc.Heading("Alleged Violation Details / Required Explanation")
	doc.Box(data.Explanation, false)
	doc.Heading("Possible Consequence (For Information)")
	doc.Box(data.Consequence, true)
	doc.Paragraph(data.ResponseNote)
	doc.Signatures("Employee Signature over Printed Name / Date", "Issuing Officer Signature over Printed Name / Date")

	content, err := doc.Bytes()
	if err != nil {
		return nte.ExportedDocument{}, err
	}
	stored, err := s.fileService.SaveDocument(ctx, "nte", DocumentName(form), content)
	if err != nil {
		return nte.ExportedDocument{}, err
	}
	slog.Info("NTE exported", "id", form.ID, "path", stored.Path)
	return nte.ExportedDocument{FileName: stored.Name, Path: stored.Path, URL: stored.URL}, nil
}

// displayDate renders stored dates as m/d/yyyy, "N/A" when empty.
func displayDate(v string) string {
	if v == "" {
		return notAvailable
	}
	if t, ok := workbook.ParseDate(v); ok {
		return t.Format("1/2/2006")
	}
	return v
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

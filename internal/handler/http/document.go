package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bpo-ops/ops-backend-go/internal/domain/document"
	"github.com/bpo-ops/ops-backend-go/internal/handler/http/response"
	"github.com/bpo-ops/ops-backend-go/internal/service/file"
	"github.com/go-chi/chi/v5"
)

type DocumentHandler interface {
	SaveForm(w http.ResponseWriter, r *http.Request)
	ListForms(w http.ResponseWriter, r *http.Request)
	GenerateLatest(w http.ResponseWriter, r *http.Request)
	Generate(w http.ResponseWriter, r *http.Request)
	UploadLogo(w http.ResponseWriter, r *http.Request)
}

type documentHandlerImpl struct {
	documentService document.DocumentService
	fileService     file.FileService
}

func NewDocumentHandler(documentService document.DocumentService, fileService file.FileService) DocumentHandler {
	return &documentHandlerImpl{documentService: documentService, fileService: fileService}
}

func (h *documentHandlerImpl) SaveForm(w http.ResponseWriter, r *http.Request) {
	var req document.SaveFormRequest
	if !decodeJSON(w, r, &req, "SaveDocumentForm") {
		return
	}
	form, err := h.documentService.SaveForm(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Saved to Sheet", form)
}

func (h *documentHandlerImpl) ListForms(w http.ResponseWriter, r *http.Request) {
	forms, err := h.documentService.ListForms(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, forms)
}

// GenerateLatest builds a PDF from the most recently saved form.
func (h *documentHandlerImpl) GenerateLatest(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documentService.GenerateLatest(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Document generated", doc)
}

func (h *documentHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil || row < 2 {
		response.BadRequest(w, "row must be a sheet row number of 2 or more", nil)
		return
	}
	doc, err := h.documentService.Generate(r.Context(), row)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Document generated", doc)
}

// UploadLogo replaces the logo printed on IR/NTE and smart documents. Multipart field "logo".
func (h *documentHandlerImpl) UploadLogo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLogoUpload)
	if err := r.ParseMultipartForm(maxLogoUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.TooLarge(w, "Logo exceeds 5 MiB")
			return
		}
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	f, header, err := r.FormFile("logo")
	if err != nil {
		response.BadRequest(w, "Logo file is required", nil)
		return
	}
	defer f.Close()

	stored, err := h.fileService.UploadLogo(r.Context(), f, header.Filename)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Logo updated", stored)
}

const maxLogoUpload = 5 << 20

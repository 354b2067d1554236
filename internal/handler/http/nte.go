package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bpo-ops/ops-backend-go/internal/domain/nte"
	"github.com/bpo-ops/ops-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type NTEHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Preview(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)

	// MacroGet and MacroPost serve /macros/nte with the {status: OK|ERROR} envelope.
	MacroGet(w http.ResponseWriter, r *http.Request)
	MacroPost(w http.ResponseWriter, r *http.Request)
}

type nteHandlerImpl struct {
	nteService nte.NTEService
}

func NewNTEHandler(nteService nte.NTEService) NTEHandler {
	return &nteHandlerImpl{nteService: nteService}
}

func formID(w http.ResponseWriter, raw string) (int, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid form ID", nil)
		return 0, false
	}
	return id, true
}

func (h *nteHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	forms, err := h.nteService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, forms)
}

func (h *nteHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := formID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	form, err := h.nteService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, form)
}

func (h *nteHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req nte.CreateFormRequest
	if !decodeJSON(w, r, &req, "CreateNTE") {
		return
	}
	id, err := h.nteService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "NTE form created successfully", map[string]int{"id": id})
}

func (h *nteHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := formID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req nte.UpdateFormRequest
	if !decodeJSON(w, r, &req, "UpdateNTE") {
		return
	}
	req.ID = nte.ID(id)

	if err := h.nteService.Update(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "NTE form updated successfully", nil)
}

func (h *nteHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := formID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.nteService.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "NTE form deleted successfully", nil)
}

func (h *nteHandlerImpl) Preview(w http.ResponseWriter, r *http.Request) {
	id, ok := formID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	preview, err := h.nteService.Preview(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, preview)
}

func (h *nteHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := formID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	doc, err := h.nteService.ExportPDF(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "PDF generated", doc)
}

// macroReply is the envelope of the spreadsheet-style endpoint.
type macroReply map[string]interface{}

func macroOK(w http.ResponseWriter, fields macroReply) {
	fields["status"] = "OK"
	response.Raw(w, http.StatusOK, fields)
}

// macroError keeps a 200 status like the spreadsheet script did; callers branch on status.
func macroError(w http.ResponseWriter, err error) {
	slog.Warn("NTE macro failed", "error", err)
	response.Raw(w, http.StatusOK, macroReply{"status": "ERROR", "error": err.Error()})
}

func (h *nteHandlerImpl) MacroGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	switch q.Get("action") {
	case "getIRNTE":
		forms, err := h.nteService.List(ctx)
		if err != nil {
			macroError(w, err)
			return
		}
		macroOK(w, macroReply{"data": forms})
	case "getRecord":
		id, _ := strconv.Atoi(q.Get("id"))
		form, err := h.nteService.Get(ctx, id)
		if err != nil {
			macroError(w, err)
			return
		}
		macroOK(w, macroReply{"record": form})
	case "preview":
		id, _ := strconv.Atoi(q.Get("id"))
		preview, err := h.nteService.Preview(ctx, id)
		if err != nil {
			macroError(w, err)
			return
		}
		macroOK(w, macroReply{"documentName": preview.DocumentName, "pages": preview.Pages})
	case "exportPDF":
		id, _ := strconv.Atoi(q.Get("id"))
		doc, err := h.nteService.ExportPDF(ctx, id)
		if err != nil {
			macroError(w, err)
			return
		}
		macroOK(w, macroReply{"data": doc})
	default:
		macroError(w, nte.ErrUnknownAction)
	}
}

func (h *nteHandlerImpl) MacroPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body nte.MacroRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		slog.Error("NTE macro decode error", "error", err)
		macroError(w, errors.New("Invalid or missing JSON data in request."))
		return
	}
	data := body.Data
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}

	switch body.Action {
	case "createIRNTE":
		var req nte.CreateFormRequest
		if err := json.Unmarshal(data, &req); err != nil {
			macroError(w, err)
			return
		}
		id, err := h.nteService.Create(ctx, req)
		if err != nil {
			macroError(w, err)
			return
		}
		macroOK(w, macroReply{"id": id})
	case "updateIRNTE":
		var req nte.UpdateFormRequest
		if err := json.Unmarshal(data, &req); err != nil {
			macroError(w, err)
			return
		}
		if err := h.nteService.Update(ctx, req); err != nil {
			macroError(w, err)
			return
		}
		macroOK(w, macroReply{"updated": true})
	case "deleteIRNTE":
		if err := h.nteService.Delete(ctx, int(body.ID)); err != nil {
			macroError(w, err)
			return
		}
		macroOK(w, macroReply{"deleted": true})
	default:
		macroError(w, nte.ErrUnknownAction)
	}
}

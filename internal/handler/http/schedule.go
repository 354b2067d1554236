package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/schedule"
	"github.com/bpo-ops/ops-backend-go/internal/handler/http/response"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/pagination"
	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ScheduleHandler interface {
	GetSchedule(w http.ResponseWriter, r *http.Request)
	GetEmployees(w http.ResponseWriter, r *http.Request)
	GetShifts(w http.ResponseWriter, r *http.Request)
	GetMetadata(w http.ResponseWriter, r *http.Request)

	AddShift(w http.ResponseWriter, r *http.Request)
	UpdateShift(w http.ResponseWriter, r *http.Request)
	BatchUpdateShifts(w http.ResponseWriter, r *http.Request)
	DeleteShift(w http.ResponseWriter, r *http.Request)

	Upload(w http.ResponseWriter, r *http.Request)
	Template(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	ListEntries(w http.ResponseWriter, r *http.Request)
}

type scheduleHandlerImpl struct {
	scheduleService schedule.ScheduleService
	maxUpload       int64
}

// NewScheduleHandler builds the roster handler. maxUpload caps the multipart body of Upload; zero means 10 MiB.
func NewScheduleHandler(scheduleService schedule.ScheduleService, maxUpload int64) ScheduleHandler {
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &scheduleHandlerImpl{
		scheduleService: scheduleService,
		maxUpload:       maxUpload,
	}
}

// GetSchedule returns employees, shifts and metadata in one payload.
func (h *scheduleHandlerImpl) GetSchedule(w http.ResponseWriter, r *http.Request) {
	view, err := h.scheduleService.GetSchedule(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, view)
}

func (h *scheduleHandlerImpl) GetEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.scheduleService.GetEmployees(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, employees)
}

// GetShifts accepts an optional ?day=0..6 filter.
func (h *scheduleHandlerImpl) GetShifts(w http.ResponseWriter, r *http.Request) {
	day := queryInt(r, "day")
	if raw := r.URL.Query().Get("day"); raw != "" && day == nil {
		response.BadRequest(w, "day must be a number between 0 and 6", nil)
		return
	}
	shifts, err := h.scheduleService.GetShifts(r.Context(), day)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, shifts)
}

func (h *scheduleHandlerImpl) GetMetadata(w http.ResponseWriter, r *http.Request) {
	meta, err := h.scheduleService.GetMetadata(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, meta)
}

func (h *scheduleHandlerImpl) AddShift(w http.ResponseWriter, r *http.Request) {
	var req schedule.AddShiftRequest
	if !decodeJSON(w, r, &req, "AddShift") {
		return
	}
	shift, err := h.scheduleService.AddShift(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Shift added successfully", shift)
}

func (h *scheduleHandlerImpl) UpdateShift(w http.ResponseWriter, r *http.Request) {
	var req schedule.UpdateShiftRequest
	if !decodeJSON(w, r, &req, "UpdateShift") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	shift, err := h.scheduleService.UpdateShift(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Shift updated successfully", shift)
}

func (h *scheduleHandlerImpl) BatchUpdateShifts(w http.ResponseWriter, r *http.Request) {
	var req schedule.BatchUpdateRequest
	if !decodeJSON(w, r, &req, "BatchUpdateShifts") {
		return
	}
	result, err := h.scheduleService.BatchUpdateShifts(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, fmt.Sprintf("%d shifts updated", result.Updated), result)
}

func (h *scheduleHandlerImpl) DeleteShift(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduleService.DeleteShift(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Shift deleted successfully", nil)
}

// Upload takes a multipart "file" field holding a CSV or Excel roster.
func (h *scheduleHandlerImpl) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.TooLarge(w, "Schedule file exceeds the upload limit")
			return
		}
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			response.BadRequest(w, "Schedule file is required", nil)
			return
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	result, err := h.scheduleService.BulkUpload(r.Context(), file, fileHeader.Filename)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, fmt.Sprintf("%d schedule entries saved, %d rows skipped", result.Inserted, len(result.Skipped)), result)
}

func (h *scheduleHandlerImpl) Template(w http.ResponseWriter, r *http.Request) {
	body := h.scheduleService.Template()
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="schedule_template.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// Export renders into a buffer first so a failure can still be answered as JSON.
func (h *scheduleHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.scheduleService.ExportRoster(r.Context(), &buf); err != nil {
		response.HandleError(w, err)
		return
	}
	filename := fmt.Sprintf("roster_%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *scheduleHandlerImpl) ListEntries(w http.ResponseWriter, r *http.Request) {
	filter := schedule.EntryFilter{
		EmployeeID: queryString(r, "employee_id"),
		From:       queryString(r, "from"),
		To:         queryString(r, "to"),
		Params:     pagination.FromRequest(r),
	}
	result, err := h.scheduleService.ListEntries(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, result.Entries, listMeta(result.Page, result.Limit, result.TotalCount, result.TotalPages))
}

package http

import (
	"net/http"

	"github.com/bpo-ops/ops-backend-go/internal/domain/attendance"
	"github.com/bpo-ops/ops-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	ListSupervisors(w http.ResponseWriter, r *http.Request)
	GetTeamList(w http.ResponseWriter, r *http.Request)
	AddTeamMember(w http.ResponseWriter, r *http.Request)
	RemoveTeamMember(w http.ResponseWriter, r *http.Request)
	GetRecords(w http.ResponseWriter, r *http.Request)
	SaveRecord(w http.ResponseWriter, r *http.Request)
	UpdateRecord(w http.ResponseWriter, r *http.Request)
	DailySummary(w http.ResponseWriter, r *http.Request)
	ListHistory(w http.ResponseWriter, r *http.Request)
	StatusOptions(w http.ResponseWriter, r *http.Request)

	// Macro serves the dashboard API at /macros/attendance.
	Macro(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

func (h *attendanceHandlerImpl) ListSupervisors(w http.ResponseWriter, r *http.Request) {
	supervisors, err := h.attendanceService.ListSupervisors(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, supervisors)
}

func (h *attendanceHandlerImpl) GetTeamList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	supervisor := q.Get("supervisor")
	if supervisor == "" {
		response.BadRequest(w, "supervisor is required", nil)
		return
	}
	team, err := h.attendanceService.GetTeamList(r.Context(), supervisor, q.Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, team)
}

func (h *attendanceHandlerImpl) AddTeamMember(w http.ResponseWriter, r *http.Request) {
	var req attendance.TeamMemberRequest
	if !decodeJSON(w, r, &req, "AddTeamMember") {
		return
	}
	if err := h.attendanceService.AddTeamMember(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Team member added", req)
}

func (h *attendanceHandlerImpl) RemoveTeamMember(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := h.attendanceService.RemoveTeamMember(r.Context(), q.Get("supervisor"), q.Get("agent")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Team member removed", nil)
}

func (h *attendanceHandlerImpl) GetRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := h.attendanceService.GetRecords(r.Context(), q.Get("date"), q.Get("supervisor"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, records)
}

// SaveRecord answers with the tracker's own reply shape; a duplicate is a 409 carrying that shape.
func (h *attendanceHandlerImpl) SaveRecord(w http.ResponseWriter, r *http.Request) {
	var req attendance.SaveRecordRequest
	if !decodeJSON(w, r, &req, "SaveRecord") {
		return
	}
	result, err := h.attendanceService.SaveRecord(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusConflict
	}
	response.Raw(w, status, result)
}

func (h *attendanceHandlerImpl) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpdateRecordRequest
	if !decodeJSON(w, r, &req, "UpdateRecord") {
		return
	}
	result, err := h.attendanceService.UpdateRecord(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	status := http.StatusOK
	if !result.Success {
		status = http.StatusNotFound
	}
	response.Raw(w, status, result)
}

func (h *attendanceHandlerImpl) DailySummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	summary, err := h.attendanceService.DailySummary(r.Context(), q.Get("date"), q.Get("supervisor"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, summary)
}

func (h *attendanceHandlerImpl) ListHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := attendance.HistoryFilter{
		Date:       q.Get("date"),
		Supervisor: q.Get("supervisor"),
		Agent:      q.Get("agent"),
	}
	history, err := h.attendanceService.ListHistory(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, history)
}

func (h *attendanceHandlerImpl) StatusOptions(w http.ResponseWriter, r *http.Request) {
	response.Success(w, attendance.StatusOptions())
}

// Macro dispatches on ?api= and replies with bare JSON. Unknown or missing api values fall back to raw rows.
func (h *attendanceHandlerImpl) Macro(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx := r.Context()

	if q.Get("api") == "clusters" {
		clusters, err := h.attendanceService.Clusters(ctx)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.Raw(w, http.StatusOK, clusters)
		return
	}

	filter, err := attendance.ParseFilter(q.Get("month"), q.Get("cluster"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var payload interface{}
	switch q.Get("api") {
	case "summary":
		payload, err = h.attendanceService.Summary(ctx, filter)
	case "calendars":
		payload, err = h.attendanceService.Calendars(ctx, filter)
	default:
		payload, err = h.attendanceService.Raw(ctx, filter)
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Raw(w, http.StatusOK, payload)
}

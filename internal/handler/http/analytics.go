package http

import (
	"net/http"

	"github.com/bpo-ops/ops-backend-go/internal/domain/analytics"
	"github.com/bpo-ops/ops-backend-go/internal/handler/http/response"
)

type AnalyticsHandler interface {
	Dashboard(w http.ResponseWriter, r *http.Request)
	TaskTrends(w http.ResponseWriter, r *http.Request)
	WorkflowTrends(w http.ResponseWriter, r *http.Request)
	ProcessPerformance(w http.ResponseWriter, r *http.Request)
	UserProductivity(w http.ResponseWriter, r *http.Request)
	SLASummary(w http.ResponseWriter, r *http.Request)
}

type analyticsHandlerImpl struct {
	analyticsService analytics.AnalyticsService
}

func NewAnalyticsHandler(analyticsService analytics.AnalyticsService) AnalyticsHandler {
	return &analyticsHandlerImpl{analyticsService: analyticsService}
}

// rangeFilter reads ?days= and ?limit=; zero values fall back to the defaults during validation.
func rangeFilter(r *http.Request) analytics.RangeFilter {
	var f analytics.RangeFilter
	if days := queryInt(r, "days"); days != nil {
		f.Days = *days
	}
	if limit := queryInt(r, "limit"); limit != nil {
		f.Limit = *limit
	}
	return f
}

func (h *analyticsHandlerImpl) Dashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.analyticsService.Dashboard(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *analyticsHandlerImpl) TaskTrends(w http.ResponseWriter, r *http.Request) {
	result, err := h.analyticsService.TaskTrends(r.Context(), rangeFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *analyticsHandlerImpl) WorkflowTrends(w http.ResponseWriter, r *http.Request) {
	result, err := h.analyticsService.WorkflowTrends(r.Context(), rangeFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *analyticsHandlerImpl) ProcessPerformance(w http.ResponseWriter, r *http.Request) {
	result, err := h.analyticsService.ProcessPerformance(r.Context(), rangeFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *analyticsHandlerImpl) UserProductivity(w http.ResponseWriter, r *http.Request) {
	result, err := h.analyticsService.UserProductivity(r.Context(), rangeFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *analyticsHandlerImpl) SLASummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.analyticsService.SLASummary(r.Context(), rangeFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

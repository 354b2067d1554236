package http

import (
	"net/http"

	"github.com/bpo-ops/ops-backend-go/internal/domain/department"
	"github.com/bpo-ops/ops-backend-go/internal/handler/http/response"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/pagination"
	"github.com/go-chi/chi/v5"
)

type DepartmentHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Tree(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	ListMembers(w http.ResponseWriter, r *http.Request)
	AddMember(w http.ResponseWriter, r *http.Request)
	RemoveMember(w http.ResponseWriter, r *http.Request)
}

type departmentHandlerImpl struct {
	departmentService department.DepartmentService
}

func NewDepartmentHandler(departmentService department.DepartmentService) DepartmentHandler {
	return &departmentHandlerImpl{departmentService: departmentService}
}

func (h *departmentHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := department.DepartmentFilter{
		Search:   queryString(r, "search"),
		IsActive: queryBool(r, "is_active"),
		ParentID: queryString(r, "parent_id"),
		Params:   pagination.FromRequest(r),
	}
	result, err := h.departmentService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, result.Departments, listMeta(result.Page, result.Limit, result.TotalCount, result.TotalPages))
}

func (h *departmentHandlerImpl) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.departmentService.Tree(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, tree)
}

func (h *departmentHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req department.CreateDepartmentRequest
	if !decodeJSON(w, r, &req, "CreateDepartment") {
		return
	}
	result, err := h.departmentService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Department created successfully", result)
}

func (h *departmentHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.departmentService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *departmentHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req department.UpdateDepartmentRequest
	if !decodeJSON(w, r, &req, "UpdateDepartment") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.departmentService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Department updated successfully", result)
}

func (h *departmentHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.departmentService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Department deleted successfully", nil)
}

func (h *departmentHandlerImpl) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.departmentService.ListMembers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, members)
}

func (h *departmentHandlerImpl) AddMember(w http.ResponseWriter, r *http.Request) {
	var req department.AddMemberRequest
	if !decodeJSON(w, r, &req, "AddDepartmentMember") {
		return
	}
	members, err := h.departmentService.AddMember(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Member added successfully", members)
}

func (h *departmentHandlerImpl) RemoveMember(w http.ResponseWriter, r *http.Request) {
	if err := h.departmentService.RemoveMember(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userID")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Member removed successfully", nil)
}

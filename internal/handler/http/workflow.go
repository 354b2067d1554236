package http

import (
	"context"
	"net/http"

	"github.com/bpo-ops/ops-backend-go/internal/domain/workflow"
	"github.com/bpo-ops/ops-backend-go/internal/handler/http/response"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/pagination"
	"github.com/go-chi/chi/v5"
)

// WorkflowHandler serves process and workflow definitions together with the running engine.
type WorkflowHandler interface {
	ListProcesses(w http.ResponseWriter, r *http.Request)
	CreateProcess(w http.ResponseWriter, r *http.Request)
	GetProcess(w http.ResponseWriter, r *http.Request)
	UpdateProcess(w http.ResponseWriter, r *http.Request)
	DeleteProcess(w http.ResponseWriter, r *http.Request)
	ActivateProcess(w http.ResponseWriter, r *http.Request)

	ListWorkflows(w http.ResponseWriter, r *http.Request)
	CreateWorkflow(w http.ResponseWriter, r *http.Request)
	GetWorkflow(w http.ResponseWriter, r *http.Request)
	UpdateWorkflow(w http.ResponseWriter, r *http.Request)
	DeleteWorkflow(w http.ResponseWriter, r *http.Request)
	ActivateWorkflow(w http.ResponseWriter, r *http.Request)
	DeactivateWorkflow(w http.ResponseWriter, r *http.Request)
	AddStage(w http.ResponseWriter, r *http.Request)

	StartInstance(w http.ResponseWriter, r *http.Request)
	ListInstances(w http.ResponseWriter, r *http.Request)
	GetInstance(w http.ResponseWriter, r *http.Request)
	CancelInstance(w http.ResponseWriter, r *http.Request)
	FailInstance(w http.ResponseWriter, r *http.Request)

	MyTasks(w http.ResponseWriter, r *http.Request)
	CompleteTask(w http.ResponseWriter, r *http.Request)
	SkipTask(w http.ResponseWriter, r *http.Request)
	AssignTask(w http.ResponseWriter, r *http.Request)
}

type workflowHandlerImpl struct {
	processService    workflow.ProcessService
	definitionService workflow.DefinitionService
	engine            workflow.Engine
}

func NewWorkflowHandler(processService workflow.ProcessService, definitionService workflow.DefinitionService, engine workflow.Engine) WorkflowHandler {
	return &workflowHandlerImpl{
		processService:    processService,
		definitionService: definitionService,
		engine:            engine,
	}
}

func (h *workflowHandlerImpl) ListProcesses(w http.ResponseWriter, r *http.Request) {
	filter := workflow.ProcessFilter{
		Search:       queryString(r, "search"),
		Status:       queryString(r, "status"),
		DepartmentID: queryString(r, "department_id"),
		Params:       pagination.FromRequest(r),
	}
	result, err := h.processService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, result.Processes, listMeta(result.Page, result.Limit, result.TotalCount, result.TotalPages))
}

func (h *workflowHandlerImpl) CreateProcess(w http.ResponseWriter, r *http.Request) {
	var req workflow.CreateProcessRequest
	if !decodeJSON(w, r, &req, "CreateProcess") {
		return
	}
	result, err := h.processService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Process created successfully", result)
}

func (h *workflowHandlerImpl) GetProcess(w http.ResponseWriter, r *http.Request) {
	result, err := h.processService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *workflowHandlerImpl) UpdateProcess(w http.ResponseWriter, r *http.Request) {
	var req workflow.UpdateProcessRequest
	if !decodeJSON(w, r, &req, "UpdateProcess") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.processService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Process updated successfully", result)
}

func (h *workflowHandlerImpl) DeleteProcess(w http.ResponseWriter, r *http.Request) {
	if err := h.processService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Process deleted successfully", nil)
}

func (h *workflowHandlerImpl) ActivateProcess(w http.ResponseWriter, r *http.Request) {
	result, err := h.processService.Activate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Process activated", result)
}

func (h *workflowHandlerImpl) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	filter := workflow.WorkflowFilter{
		Search:    queryString(r, "search"),
		Status:    queryString(r, "status"),
		ProcessID: queryString(r, "process_id"),
		Params:    pagination.FromRequest(r),
	}
	result, err := h.definitionService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, result.Workflows, listMeta(result.Page, result.Limit, result.TotalCount, result.TotalPages))
}

func (h *workflowHandlerImpl) CreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req workflow.CreateWorkflowRequest
	if !decodeJSON(w, r, &req, "CreateWorkflow") {
		return
	}
	result, err := h.definitionService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Workflow created successfully", result)
}

func (h *workflowHandlerImpl) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	result, err := h.definitionService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *workflowHandlerImpl) UpdateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req workflow.UpdateWorkflowRequest
	if !decodeJSON(w, r, &req, "UpdateWorkflow") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.definitionService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Workflow updated successfully", result)
}

func (h *workflowHandlerImpl) DeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	if err := h.definitionService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Workflow deleted successfully", nil)
}

func (h *workflowHandlerImpl) ActivateWorkflow(w http.ResponseWriter, r *http.Request) {
	result, err := h.definitionService.Activate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Workflow activated", result)
}

func (h *workflowHandlerImpl) DeactivateWorkflow(w http.ResponseWriter, r *http.Request) {
	result, err := h.definitionService.Deactivate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Workflow deactivated", result)
}

func (h *workflowHandlerImpl) AddStage(w http.ResponseWriter, r *http.Request) {
	var req workflow.AddStageRequest
	if !decodeJSON(w, r, &req, "AddStage") {
		return
	}
	result, err := h.definitionService.AddStage(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Stage added successfully", result)
}

func (h *workflowHandlerImpl) StartInstance(w http.ResponseWriter, r *http.Request) {
	var req workflow.StartInstanceRequest
	if !decodeJSON(w, r, &req, "StartInstance") {
		return
	}
	result, err := h.engine.StartInstance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Workflow instance started", result)
}

func (h *workflowHandlerImpl) ListInstances(w http.ResponseWriter, r *http.Request) {
	filter := workflow.InstanceFilter{
		Status:     queryString(r, "status"),
		WorkflowID: queryString(r, "workflow_id"),
		Priority:   queryInt(r, "priority"),
		AssignedTo: queryString(r, "assigned_to"),
		Params:     pagination.FromRequest(r),
	}
	result, err := h.engine.ListInstances(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, result.Instances, listMeta(result.Page, result.Limit, result.TotalCount, result.TotalPages))
}

func (h *workflowHandlerImpl) GetInstance(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.GetInstance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *workflowHandlerImpl) CancelInstance(w http.ResponseWriter, r *http.Request) {
	h.closeInstance(w, r, "CancelInstance", h.engine.CancelInstance, "Workflow instance cancelled")
}

func (h *workflowHandlerImpl) FailInstance(w http.ResponseWriter, r *http.Request) {
	h.closeInstance(w, r, "FailInstance", h.engine.FailInstance, "Workflow instance marked as failed")
}

type closeFunc func(ctx context.Context, instanceID string, req workflow.CloseInstanceRequest) (workflow.InstanceDetailResponse, error)

func (h *workflowHandlerImpl) closeInstance(w http.ResponseWriter, r *http.Request, op string, fn closeFunc, message string) {
	var req workflow.CloseInstanceRequest
	if !decodeOptionalJSON(w, r, &req, op) {
		return
	}
	result, err := fn(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, message, result)
}

// MyTasks lists the caller's tasks; the engine reads the user from the token.
func (h *workflowHandlerImpl) MyTasks(w http.ResponseWriter, r *http.Request) {
	filter := workflow.TaskFilter{
		Status: queryString(r, "status"),
		Params: pagination.FromRequest(r),
	}
	result, err := h.engine.MyTasks(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, result.Tasks, listMeta(result.Page, result.Limit, result.TotalCount, result.TotalPages))
}

func (h *workflowHandlerImpl) CompleteTask(w http.ResponseWriter, r *http.Request) {
	var req workflow.CompleteTaskRequest
	if !decodeOptionalJSON(w, r, &req, "CompleteTask") {
		return
	}
	result, err := h.engine.CompleteTask(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Task completed", result)
}

func (h *workflowHandlerImpl) SkipTask(w http.ResponseWriter, r *http.Request) {
	var req workflow.SkipTaskRequest
	if !decodeOptionalJSON(w, r, &req, "SkipTask") {
		return
	}
	result, err := h.engine.SkipTask(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Task skipped", result)
}

func (h *workflowHandlerImpl) AssignTask(w http.ResponseWriter, r *http.Request) {
	var req workflow.AssignTaskRequest
	if !decodeJSON(w, r, &req, "AssignTask") {
		return
	}
	result, err := h.engine.AssignTask(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Task assigned", result)
}

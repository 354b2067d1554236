package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/user"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/pagination"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/validator"
)

type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// Processes

type ProcessResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Code              string    `json:"code"`
	Description       *string   `json:"description,omitempty"`
	Status            string    `json:"status"`
	Version           int       `json:"version"`
	TargetSLAMinutes  *int      `json:"target_sla_minutes,omitempty"`
	WarningSLAMinutes *int      `json:"warning_sla_minutes,omitempty"`
	Department        Ref       `json:"department"`
	OwnerID           *string   `json:"owner_id,omitempty"`
	OwnerName         *string   `json:"owner_name,omitempty"`
	WorkflowCount     int       `json:"workflow_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func ToProcessResponse(p Process) ProcessResponse {
	return ProcessResponse{
		ID:                p.ID,
		Name:              p.Name,
		Code:              p.Code,
		Description:       p.Description,
		Status:            string(p.Status),
		Version:           p.Version,
		TargetSLAMinutes:  p.TargetSLAMinutes,
		WarningSLAMinutes: p.WarningSLAMinutes,
		Department:        Ref{ID: p.DepartmentID, Name: p.DepartmentName},
		OwnerID:           p.OwnerID,
		OwnerName:         p.OwnerName,
		WorkflowCount:     p.WorkflowCount,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

type CreateProcessRequest struct {
	Name              string  `json:"name"`
	Code              string  `json:"code"`
	Description       *string `json:"description,omitempty"`
	DepartmentID      string  `json:"department_id"`
	OwnerID           *string `json:"owner_id,omitempty"`
	TargetSLAMinutes  *int    `json:"target_sla_minutes,omitempty"`
	WarningSLAMinutes *int    `json:"warning_sla_minutes,omitempty"`
}

func validateSLA(errs *validator.ValidationErrors, target, warning *int) {
	if target != nil && *target <= 0 {
		errs.Add("target_sla_minutes", "target_sla_minutes must be positive")
	}
	if warning != nil && *warning <= 0 {
		errs.Add("warning_sla_minutes", "warning_sla_minutes must be positive")
	}
	if target != nil && warning != nil && *warning > *target {
		errs.Add("warning_sla_minutes", "warning_sla_minutes must not exceed target_sla_minutes")
	}
}

func (r *CreateProcessRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	if !validator.IsValidCode(r.Code) {
		errs.Add("code", "code must be 2-50 characters of A-Z, 0-9, _ or -")
	}
	if !validator.IsValidUUID(r.DepartmentID) {
		errs.Add("department_id", "department_id must be a valid UUID")
	}
	if r.OwnerID != nil && !validator.IsValidUUID(*r.OwnerID) {
		errs.Add("owner_id", "owner_id must be a valid UUID")
	}
	validateSLA(&errs, r.TargetSLAMinutes, r.WarningSLAMinutes)
	return errs.OrNil()
}

type UpdateProcessRequest struct {
	ID                string  `json:"-"`
	Name              *string `json:"name,omitempty"`
	Description       *string `json:"description,omitempty"`
	Status            *string `json:"status,omitempty"`
	DepartmentID      *string `json:"department_id,omitempty"`
	OwnerID           *string `json:"owner_id,omitempty"`
	TargetSLAMinutes  *int    `json:"target_sla_minutes,omitempty"`
	WarningSLAMinutes *int    `json:"warning_sla_minutes,omitempty"`
}

func (r *UpdateProcessRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name cannot be empty")
	}
	if r.Status != nil && !validator.IsInSlice(*r.Status, ProcessStatuses) {
		errs.Add("status", "status must be one of "+strings.Join(ProcessStatuses, ", "))
	}
	if r.DepartmentID != nil && !validator.IsValidUUID(*r.DepartmentID) {
		errs.Add("department_id", "department_id must be a valid UUID")
	}
	if r.OwnerID != nil && *r.OwnerID != "" && !validator.IsValidUUID(*r.OwnerID) {
		errs.Add("owner_id", "owner_id must be a valid UUID")
	}
	validateSLA(&errs, r.TargetSLAMinutes, r.WarningSLAMinutes)
	return errs.OrNil()
}

type ProcessFilter struct {
	Search       *string
	Status       *string
	DepartmentID *string
	pagination.Params
}

func (f *ProcessFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Status != nil && *f.Status != "" && !validator.IsInSlice(*f.Status, ProcessStatuses) {
		errs.Add("status", "invalid status")
	}
	f.Params = f.Params.Normalize()
	return errs.OrNil()
}

type ListProcessResponse struct {
	Processes  []ProcessResponse `json:"processes"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// Workflow definitions

type StageRequest struct {
	Name           string  `json:"name"`
	Code           string  `json:"code"`
	Description    *string `json:"description,omitempty"`
	Order          int     `json:"order"`
	IsRequired     *bool   `json:"is_required,omitempty"`
	AssignmentRule string  `json:"assignment_rule"`
	AssignedRole   *string `json:"assigned_role,omitempty"`
	AssignedUserID *string `json:"assigned_user_id,omitempty"`
	SLAMinutes     *int    `json:"sla_minutes,omitempty"`
}

// validate checks one stage, reporting errors under the given field prefix.
func (r *StageRequest) validate(errs *validator.ValidationErrors, prefix string) {
	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	if r.AssignmentRule == "" {
		r.AssignmentRule = string(AssignManual)
	}

	if validator.IsEmpty(r.Name) {
		errs.Add(prefix+".name", "name is required")
	}
	if !validator.IsValidCode(r.Code) {
		errs.Add(prefix+".code", "code must be 2-50 characters of A-Z, 0-9, _ or -")
	}
	if r.Order < 0 {
		errs.Add(prefix+".order", "order must not be negative")
	}
	if r.SLAMinutes != nil && *r.SLAMinutes <= 0 {
		errs.Add(prefix+".sla_minutes", "sla_minutes must be positive")
	}
	if !validator.IsInSlice(r.AssignmentRule, AssignmentRules) {
		errs.Add(prefix+".assignment_rule", "assignment_rule must be one of "+strings.Join(AssignmentRules, ", "))
		return
	}
	if r.AssignedRole != nil && !validator.IsInSlice(*r.AssignedRole, user.Roles) {
		errs.Add(prefix+".assigned_role", "assigned_role must be one of "+strings.Join(user.Roles, ", "))
	}
	if r.AssignedUserID != nil && !validator.IsValidUUID(*r.AssignedUserID) {
		errs.Add(prefix+".assigned_user_id", "assigned_user_id must be a valid UUID")
	}

	switch AssignmentRule(r.AssignmentRule) {
	case AssignSpecificUser:
		if r.AssignedUserID == nil {
			errs.Add(prefix+".assigned_user_id", "specific_user assignment needs assigned_user_id")
		}
	case AssignRoleBased, AssignRoundRobin:
		if r.AssignedRole == nil {
			errs.Add(prefix+".assigned_role", r.AssignmentRule+" assignment needs assigned_role")
		}
	}
}

func (r StageRequest) ToStage(workflowID string, fallbackOrder int) Stage {
	s := Stage{
		WorkflowID:     workflowID,
		Name:           strings.TrimSpace(r.Name),
		Code:           r.Code,
		Description:    r.Description,
		Order:          r.Order,
		IsRequired:     true,
		AssignmentRule: AssignmentRule(r.AssignmentRule),
		AssignedRole:   r.AssignedRole,
		AssignedUserID: r.AssignedUserID,
		SLAMinutes:     r.SLAMinutes,
	}
	if s.Order == 0 {
		s.Order = fallbackOrder
	}
	if r.IsRequired != nil {
		s.IsRequired = *r.IsRequired
	}
	return s
}

func validateStages(errs *validator.ValidationErrors, stages []StageRequest) {
	seen := make(map[string]bool, len(stages))
	for i := range stages {
		prefix := fmt.Sprintf("stages[%d]", i)
		stages[i].validate(errs, prefix)
		if seen[stages[i].Code] {
			errs.Add(prefix+".code", ErrStageCodeExists.Error())
		}
		seen[stages[i].Code] = true
	}
}

type CreateWorkflowRequest struct {
	Name        string         `json:"name"`
	Code        string         `json:"code"`
	Description *string        `json:"description,omitempty"`
	ProcessID   string         `json:"process_id"`
	Stages      []StageRequest `json:"stages"`
}

func (r *CreateWorkflowRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	if !validator.IsValidCode(r.Code) {
		errs.Add("code", "code must be 2-50 characters of A-Z, 0-9, _ or -")
	}
	if !validator.IsValidUUID(r.ProcessID) {
		errs.Add("process_id", "process_id must be a valid UUID")
	}
	validateStages(&errs, r.Stages)
	return errs.OrNil()
}

// UpdateWorkflowRequest changes metadata; Stages, when present, replaces the whole stage list.
type UpdateWorkflowRequest struct {
	ID          string          `json:"-"`
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Stages      *[]StageRequest `json:"stages,omitempty"`
}

func (r *UpdateWorkflowRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name cannot be empty")
	}
	if r.Stages != nil {
		validateStages(&errs, *r.Stages)
	}
	return errs.OrNil()
}

type AddStageRequest struct {
	StageRequest
}

func (r *AddStageRequest) Validate() error {
	var errs validator.ValidationErrors
	r.StageRequest.validate(&errs, "stage")
	return errs.OrNil()
}

type WorkflowFilter struct {
	Search    *string
	Status    *string
	ProcessID *string
	pagination.Params
}

func (f *WorkflowFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Status != nil && *f.Status != "" && !validator.IsInSlice(*f.Status, Statuses) {
		errs.Add("status", "invalid status")
	}
	f.Params = f.Params.Normalize()
	return errs.OrNil()
}

type StageResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Code           string  `json:"code"`
	Description    *string `json:"description,omitempty"`
	Order          int     `json:"order"`
	IsRequired     bool    `json:"is_required"`
	AssignmentRule string  `json:"assignment_rule"`
	AssignedRole   *string `json:"assigned_role,omitempty"`
	AssignedUserID *string `json:"assigned_user_id,omitempty"`
	SLAMinutes     *int    `json:"sla_minutes,omitempty"`
}

type WorkflowResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Code          string          `json:"code"`
	Description   *string         `json:"description,omitempty"`
	Status        string          `json:"status"`
	Version       int             `json:"version"`
	Process       Ref             `json:"process"`
	Stages        []StageResponse `json:"stages,omitempty"`
	StageCount    int             `json:"stage_count"`
	InstanceCount int             `json:"instance_count"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func ToWorkflowResponse(w Workflow) WorkflowResponse {
	resp := WorkflowResponse{
		ID:            w.ID,
		Name:          w.Name,
		Code:          w.Code,
		Description:   w.Description,
		Status:        string(w.Status),
		Version:       w.Version,
		Process:       Ref{ID: w.ProcessID, Name: w.ProcessName},
		StageCount:    w.StageCount,
		InstanceCount: w.InstanceCount,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
	if w.Stages != nil {
		resp.StageCount = len(w.Stages)
		resp.Stages = make([]StageResponse, 0, len(w.Stages))
		for _, s := range w.Stages {
			resp.Stages = append(resp.Stages, StageResponse{
				ID:             s.ID,
				Name:           s.Name,
				Code:           s.Code,
				Description:    s.Description,
				Order:          s.Order,
				IsRequired:     s.IsRequired,
				AssignmentRule: string(s.AssignmentRule),
				AssignedRole:   s.AssignedRole,
				AssignedUserID: s.AssignedUserID,
				SLAMinutes:     s.SLAMinutes,
			})
		}
	}
	return resp
}

type ListWorkflowResponse struct {
	Workflows  []WorkflowResponse `json:"workflows"`
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

// Instances and tasks

type StartInstanceRequest struct {
	WorkflowID string         `json:"workflow_id"`
	Title      string         `json:"title"`
	Priority   *int           `json:"priority,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

func (r *StartInstanceRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.WorkflowID) {
		errs.Add("workflow_id", "workflow_id must be a valid UUID")
	}
	if len(r.Title) > 255 {
		errs.Add("title", "title must not exceed 255 characters")
	}
	if r.Priority == nil {
		p := 5
		r.Priority = &p
	} else if *r.Priority < 1 || *r.Priority > 10 {
		errs.Add("priority", "priority must be between 1 and 10")
	}
	return errs.OrNil()
}

type CompleteTaskRequest struct {
	Data  map[string]any `json:"data,omitempty"`
	Notes *string        `json:"notes,omitempty"`
}

type SkipTaskRequest struct {
	Reason *string `json:"reason,omitempty"`
}

type AssignTaskRequest struct {
	UserID string `json:"user_id"`
}

func (r *AssignTaskRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.UserID) {
		errs.Add("user_id", "user_id must be a valid UUID")
	}
	return errs.OrNil()
}

// CloseInstanceRequest carries the reason for a cancel or fail.
type CloseInstanceRequest struct {
	Reason *string `json:"reason,omitempty"`
}

type InstanceFilter struct {
	Status     *string
	WorkflowID *string
	Priority   *int
	// AssignedTo limits to instances with an in-progress task for this user.
	AssignedTo *string
	pagination.Params
}

func (f *InstanceFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Status != nil && *f.Status != "" && !validator.IsInSlice(*f.Status, InstanceStatuses) {
		errs.Add("status", "invalid status")
	}
	if f.Priority != nil && (*f.Priority < 1 || *f.Priority > 10) {
		errs.Add("priority", "priority must be between 1 and 10")
	}
	f.Params = f.Params.Normalize()
	return errs.OrNil()
}

type TaskFilter struct {
	AssignedTo string
	Status     *string
	pagination.Params
}

type InstanceResponse struct {
	ID               string         `json:"id"`
	ReferenceNumber  string         `json:"reference_number"`
	Title            string         `json:"title"`
	Workflow         Ref            `json:"workflow"`
	Status           string         `json:"status"`
	Priority         int            `json:"priority"`
	Data             map[string]any `json:"data,omitempty"`
	CurrentStageID   *string        `json:"current_stage_id,omitempty"`
	CurrentStageName *string        `json:"current_stage_name,omitempty"`
	StartedAt        *time.Time     `json:"started_at,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	DueAt            *time.Time     `json:"due_at,omitempty"`
	SLABreached      bool           `json:"sla_breached"`
	CreatedBy        *string        `json:"created_by,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

func ToInstanceResponse(i Instance) InstanceResponse {
	return InstanceResponse{
		ID:               i.ID,
		ReferenceNumber:  i.ReferenceNumber,
		Title:            i.Title,
		Workflow:         Ref{ID: i.WorkflowID, Name: i.WorkflowName},
		Status:           string(i.Status),
		Priority:         i.Priority,
		Data:             i.Data,
		CurrentStageID:   i.CurrentStageID,
		CurrentStageName: i.CurrentStageName,
		StartedAt:        i.StartedAt,
		CompletedAt:      i.CompletedAt,
		DueAt:            i.DueAt,
		SLABreached:      i.SLABreached,
		CreatedBy:        i.CreatedBy,
		CreatedAt:        i.CreatedAt,
	}
}

type TaskResponse struct {
	ID              string         `json:"id"`
	InstanceID      string         `json:"instance_id"`
	ReferenceNumber string         `json:"reference_number,omitempty"`
	InstanceTitle   string         `json:"instance_title,omitempty"`
	Priority        int            `json:"priority,omitempty"`
	StageID         string         `json:"stage_id"`
	StageName       string         `json:"stage_name"`
	StageOrder      int            `json:"stage_order"`
	IsRequired      bool           `json:"is_required"`
	Status          string         `json:"status"`
	AssignedToID    *string        `json:"assigned_to_id,omitempty"`
	AssigneeName    *string        `json:"assigned_to_name,omitempty"`
	StartedAt       *time.Time     `json:"started_at,omitempty"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	DueAt           *time.Time     `json:"due_at,omitempty"`
	SLABreached     bool           `json:"sla_breached"`
	Data            map[string]any `json:"data,omitempty"`
	Notes           *string        `json:"notes,omitempty"`
}

func ToTaskResponse(t Task) TaskResponse {
	return TaskResponse{
		ID:              t.ID,
		InstanceID:      t.InstanceID,
		ReferenceNumber: t.ReferenceNumber,
		InstanceTitle:   t.InstanceTitle,
		Priority:        t.Priority,
		StageID:         t.StageID,
		StageName:       t.StageName,
		StageOrder:      t.StageOrder,
		IsRequired:      t.IsRequired,
		Status:          string(t.Status),
		AssignedToID:    t.AssignedToID,
		AssigneeName:    t.AssigneeName,
		StartedAt:       t.StartedAt,
		CompletedAt:     t.CompletedAt,
		DueAt:           t.DueAt,
		SLABreached:     t.SLABreached,
		Data:            t.Data,
		Notes:           t.Notes,
	}
}

type InstanceDetailResponse struct {
	InstanceResponse
	Tasks []TaskResponse `json:"tasks"`
}

type ListInstanceResponse struct {
	Instances  []InstanceResponse `json:"instances"`
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

type ListTaskResponse struct {
	Tasks      []TaskResponse `json:"tasks"`
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

// BreachReport is the outcome of one SLA sweep.
type BreachReport struct {
	Tasks     []Task `json:"-"`
	Instances int64  `json:"instances_breached"`
	TaskCount int    `json:"tasks_breached"`
}

// TaskEvent is pushed to the assignee's event stream.
type TaskEvent struct {
	Type string       `json:"type"`
	Task TaskResponse `json:"task"`
}

const (
	EventTaskAssigned = "task_assigned"
	EventTaskBreached = "task_sla_breached"
)

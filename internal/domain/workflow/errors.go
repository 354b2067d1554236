package workflow

import "errors"

var (
	ErrProcessNotFound    = errors.New("process not found")
	ErrProcessCodeExists  = errors.New("process code already exists")
	ErrProcessInUse       = errors.New("process still has workflows")
	ErrDepartmentNotFound = errors.New("department not found")

	ErrWorkflowNotFound   = errors.New("workflow not found")
	ErrWorkflowCodeExists = errors.New("workflow code already exists")
	ErrWorkflowInUse      = errors.New("workflow has instances")
	ErrWorkflowNotDraft   = errors.New("stages can only be replaced while the workflow is a draft")
	ErrWorkflowNotActive  = errors.New("active workflow not found")
	ErrWorkflowNoStages   = errors.New("workflow has no stages")
	ErrStageCodeExists    = errors.New("stage code already used in this workflow")

	ErrInstanceNotFound = errors.New("workflow instance not found")
	ErrInstanceClosed   = errors.New("workflow instance is already closed")

	ErrTaskNotFound     = errors.New("task not found")
	ErrTaskAlreadyDone  = errors.New("task already completed or skipped")
	ErrTaskNotActive    = errors.New("task is not in progress")
	ErrTaskRequired     = errors.New("cannot skip a required task")
	ErrAssigneeNotFound = errors.New("assignee not found or inactive")
)

package workflow

import (
	"context"
	"time"
)

type ProcessRepository interface {
	List(ctx context.Context, filter ProcessFilter) ([]Process, int64, error)
	GetByID(ctx context.Context, id string) (Process, error)
	Create(ctx context.Context, p Process) (Process, error)
	Update(ctx context.Context, req UpdateProcessRequest) error
	SetStatus(ctx context.Context, id string, status ProcessStatus) error
	Delete(ctx context.Context, id string) error
}

type WorkflowRepository interface {
	List(ctx context.Context, filter WorkflowFilter) ([]Workflow, int64, error)
	// GetByID loads the workflow with its stages in order.
	GetByID(ctx context.Context, id string) (Workflow, error)
	Create(ctx context.Context, w Workflow) (Workflow, error)
	Update(ctx context.Context, req UpdateWorkflowRequest) error
	SetStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error

	// ReplaceStages drops every stage of the workflow and inserts the given ones.
	ReplaceStages(ctx context.Context, workflowID string, stages []Stage) error
	AddStage(ctx context.Context, s Stage) (Stage, error)
	GetStage(ctx context.Context, id string) (Stage, error)
}

type InstanceRepository interface {
	Create(ctx context.Context, i Instance) (Instance, error)
	GetByID(ctx context.Context, id string) (Instance, error)
	// LockByID takes a row lock for the rest of the transaction.
	LockByID(ctx context.Context, id string) (Instance, error)
	List(ctx context.Context, filter InstanceFilter) ([]Instance, int64, error)
	UpdateState(ctx context.Context, i Instance) error

	CreateTask(ctx context.Context, t Task) (Task, error)
	GetTask(ctx context.Context, id string) (Task, error)
	ListTasks(ctx context.Context, instanceID string) ([]Task, error)
	ListAssignedTasks(ctx context.Context, filter TaskFilter) ([]Task, int64, error)
	UpdateTask(ctx context.Context, t Task) error
	// CloseOpenTasks moves pending and in-progress tasks of the instance to status.
	CloseOpenTasks(ctx context.Context, instanceID string, status TaskStatus, notes *string) (int64, error)
	// CountStageTasks counts tasks ever created for a stage, used to rotate round robin.
	CountStageTasks(ctx context.Context, stageID string) (int64, error)

	// MarkOverdueTasks flags in-progress tasks due before now and returns them.
	MarkOverdueTasks(ctx context.Context, now time.Time) ([]Task, error)
	MarkOverdueInstances(ctx context.Context, now time.Time) (int64, error)
}

package workflow

import "context"

type ProcessService interface {
	List(ctx context.Context, filter ProcessFilter) (ListProcessResponse, error)
	Create(ctx context.Context, req CreateProcessRequest) (ProcessResponse, error)
	Get(ctx context.Context, id string) (ProcessResponse, error)
	Update(ctx context.Context, req UpdateProcessRequest) (ProcessResponse, error)
	Delete(ctx context.Context, id string) error
	Activate(ctx context.Context, id string) (ProcessResponse, error)
}

type DefinitionService interface {
	List(ctx context.Context, filter WorkflowFilter) (ListWorkflowResponse, error)
	Create(ctx context.Context, req CreateWorkflowRequest) (WorkflowResponse, error)
	Get(ctx context.Context, id string) (WorkflowResponse, error)
	Update(ctx context.Context, req UpdateWorkflowRequest) (WorkflowResponse, error)
	Delete(ctx context.Context, id string) error
	Activate(ctx context.Context, id string) (WorkflowResponse, error)
	Deactivate(ctx context.Context, id string) (WorkflowResponse, error)
	AddStage(ctx context.Context, workflowID string, req AddStageRequest) (WorkflowResponse, error)
}

// Engine runs workflow instances through their stages.
type Engine interface {
	StartInstance(ctx context.Context, req StartInstanceRequest) (InstanceDetailResponse, error)
	GetInstance(ctx context.Context, id string) (InstanceDetailResponse, error)
	ListInstances(ctx context.Context, filter InstanceFilter) (ListInstanceResponse, error)
	MyTasks(ctx context.Context, filter TaskFilter) (ListTaskResponse, error)

	CompleteTask(ctx context.Context, taskID string, req CompleteTaskRequest) (TaskResponse, error)
	SkipTask(ctx context.Context, taskID string, req SkipTaskRequest) (TaskResponse, error)
	AssignTask(ctx context.Context, taskID string, req AssignTaskRequest) (TaskResponse, error)
	CancelInstance(ctx context.Context, instanceID string, req CloseInstanceRequest) (InstanceDetailResponse, error)
	FailInstance(ctx context.Context, instanceID string, req CloseInstanceRequest) (InstanceDetailResponse, error)

	CheckSLABreaches(ctx context.Context) (BreachReport, error)
}

package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/user"
	"github.com/bpo-ops/ops-backend-go/internal/domain/workflow"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/database"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/jwt"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/pagination"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/sse"
	"github.com/bpo-ops/ops-backend-go/internal/repository/postgresql"
	"github.com/jackc/pgx/v5"
)

type EngineImpl struct {
	db           *database.DB
	workflowRepo workflow.WorkflowRepository
	instanceRepo workflow.InstanceRepository
	userRepo     user.UserRepository
	hub          *sse.Hub
	now          func() time.Time
}

func NewEngine(db *database.DB, workflowRepo workflow.WorkflowRepository, instanceRepo workflow.InstanceRepository, userRepo user.UserRepository, hub *sse.Hub) workflow.Engine {
	return &EngineImpl{
		db:           db,
		workflowRepo: workflowRepo,
		instanceRepo: instanceRepo,
		userRepo:     userRepo,
		hub:          hub,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// notify sends task events once the surrounding transaction has committed.
func (e *EngineImpl) notify(eventType string, tasks ...workflow.Task) {
	if e.hub == nil {
		return
	}
	for _, t := range tasks {
		if t.AssignedToID == nil {
			continue
		}
		e.hub.Publish(*t.AssignedToID, sse.Event{
			UserID: *t.AssignedToID,
			Event:  eventType,
			Data:   workflow.TaskEvent{Type: eventType, Task: workflow.ToTaskResponse(t)},
		})
	}
}

// StartInstance implements workflow.Engine.
func (e *EngineImpl) StartInstance(ctx context.Context, req workflow.StartInstanceRequest) (workflow.InstanceDetailResponse, error) {
	if err := req.Validate(); err != nil {
		return workflow.InstanceDetailResponse{}, err
	}

	wf, err := e.workflowRepo.GetByID(ctx, req.WorkflowID)
	if err != nil {
		if errors.Is(err, workflow.ErrWorkflowNotFound) {
			return workflow.InstanceDetailResponse{}, workflow.ErrWorkflowNotActive
		}
		return workflow.InstanceDetailResponse{}, err
	}
	if wf.Status != workflow.StatusActive {
		return workflow.InstanceDetailResponse{}, workflow.ErrWorkflowNotActive
	}
	if len(wf.Stages) == 0 {
		return workflow.InstanceDetailResponse{}, workflow.ErrWorkflowNoStages
	}
	stages := wf.Stages
	workflow.SortStages(stages)

	var createdBy *string
	if claims, err := jwt.ClaimsFromContext(ctx); err == nil {
		createdBy = &claims.UserID
	}

	now := e.now()
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = wf.Name
	}
	totalSLA := workflow.TotalSLA(stages)

	var (
		instance workflow.Instance
		first    workflow.Task
	)
	err = postgresql.WithTransaction(ctx, e.db, func(tx pgx.Tx) error {
		txCtx := postgresql.WithTx(ctx, tx)

		var err error
		instance, err = e.instanceRepo.Create(txCtx, workflow.Instance{
			WorkflowID:      wf.ID,
			ReferenceNumber: workflow.NewReferenceNumber(now),
			Title:           title,
			Status:          workflow.InstanceInProgress,
			Priority:        *req.Priority,
			Data:            req.Data,
			CurrentStageID:  &stages[0].ID,
			StartedAt:       &now,
			DueAt:           workflow.DueAt(now, &totalSLA),
			CreatedBy:       createdBy,
		})
		if err != nil {
			return err
		}

		for idx, stage := range stages {
			task := workflow.Task{InstanceID: instance.ID, StageID: stage.ID, Status: workflow.TaskPending}
			if idx == 0 {
				task.Status = workflow.TaskInProgress
				task.StartedAt = &now
				task.DueAt = workflow.DueAt(now, stage.SLAMinutes)
				if task.AssignedToID, err = e.resolveAssignee(txCtx, stage); err != nil {
					return err
				}
			}
			created, err := e.instanceRepo.CreateTask(txCtx, task)
			if err != nil {
				return err
			}
			if idx == 0 {
				first = created
			}
		}
		return nil
	})
	if err != nil {
		return workflow.InstanceDetailResponse{}, err
	}

	slog.Info("Workflow instance started", "instance_id", instance.ID, "reference", instance.ReferenceNumber, "workflow_id", wf.ID)
	e.notify(workflow.EventTaskAssigned, first)
	return e.GetInstance(ctx, instance.ID)
}

// GetInstance implements workflow.Engine.
func (e *EngineImpl) GetInstance(ctx context.Context, id string) (workflow.InstanceDetailResponse, error) {
	instance, err := e.instanceRepo.GetByID(ctx, id)
	if err != nil {
		return workflow.InstanceDetailResponse{}, err
	}
	tasks, err := e.instanceRepo.ListTasks(ctx, id)
	if err != nil {
		return workflow.InstanceDetailResponse{}, err
	}

	resp := workflow.InstanceDetailResponse{
		InstanceResponse: workflow.ToInstanceResponse(instance),
		Tasks:            make([]workflow.TaskResponse, 0, len(tasks)),
	}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, workflow.ToTaskResponse(t))
	}
	return resp, nil
}

// ListInstances implements workflow.Engine.
func (e *EngineImpl) ListInstances(ctx context.Context, filter workflow.InstanceFilter) (workflow.ListInstanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return workflow.ListInstanceResponse{}, err
	}
	instances, total, err := e.instanceRepo.List(ctx, filter)
	if err != nil {
		return workflow.ListInstanceResponse{}, err
	}

	out := make([]workflow.InstanceResponse, 0, len(instances))
	for _, i := range instances {
		out = append(out, workflow.ToInstanceResponse(i))
	}
	return workflow.ListInstanceResponse{
		Instances:  out,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: pagination.TotalPages(total, filter.Limit),
	}, nil
}

// MyTasks implements workflow.Engine. The assignee defaults to the caller.
func (e *EngineImpl) MyTasks(ctx context.Context, filter workflow.TaskFilter) (workflow.ListTaskResponse, error) {
	if filter.AssignedTo == "" {
		claims, err := jwt.ClaimsFromContext(ctx)
		if err != nil {
			return workflow.ListTaskResponse{}, err
		}
		filter.AssignedTo = claims.UserID
	}
	filter.Params = filter.Params.Normalize()

	tasks, total, err := e.instanceRepo.ListAssignedTasks(ctx, filter)
	if err != nil {
		return workflow.ListTaskResponse{}, err
	}

	out := make([]workflow.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, workflow.ToTaskResponse(t))
	}
	return workflow.ListTaskResponse{
		Tasks:      out,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: pagination.TotalPages(total, filter.Limit),
	}, nil
}

// lockTask loads a task after locking its instance, so concurrent completions serialise.
func (e *EngineImpl) lockTask(ctx context.Context, taskID string) (workflow.Task, workflow.Instance, error) {
	task, err := e.instanceRepo.GetTask(ctx, taskID)
	if err != nil {
		return workflow.Task{}, workflow.Instance{}, err
	}
	instance, err := e.instanceRepo.LockByID(ctx, task.InstanceID)
	if err != nil {
		return workflow.Task{}, workflow.Instance{}, err
	}
	task, err = e.instanceRepo.GetTask(ctx, taskID)
	if err != nil {
		return workflow.Task{}, workflow.Instance{}, err
	}
	if task.Status.Done() {
		return workflow.Task{}, workflow.Instance{}, workflow.ErrTaskAlreadyDone
	}
	if instance.Status.Closed() {
		return workflow.Task{}, workflow.Instance{}, workflow.ErrInstanceClosed
	}
	return task, instance, nil
}

// advance starts the next pending task after afterOrder or completes the instance.
func (e *EngineImpl) advance(ctx context.Context, instance workflow.Instance, afterOrder int, now time.Time) (*workflow.Task, error) {
	tasks, err := e.instanceRepo.ListTasks(ctx, instance.ID)
	if err != nil {
		return nil, err
	}

	next, ok := workflow.NextPending(tasks, afterOrder)
	if !ok {
		instance.Status = workflow.InstanceCompleted
		instance.CompletedAt = &now
		instance.CurrentStageID = nil
		return nil, e.instanceRepo.UpdateState(ctx, instance)
	}

	stage, err := e.workflowRepo.GetStage(ctx, next.StageID)
	if err != nil {
		return nil, err
	}
	next.Status = workflow.TaskInProgress
	next.StartedAt = &now
	next.DueAt = workflow.DueAt(now, stage.SLAMinutes)
	if next.AssignedToID == nil {
		if next.AssignedToID, err = e.resolveAssignee(ctx, stage); err != nil {
			return nil, err
		}
	}
	if err := e.instanceRepo.UpdateTask(ctx, next); err != nil {
		return nil, err
	}

	instance.Status = workflow.InstanceInProgress
	instance.CurrentStageID = &next.StageID
	if err := e.instanceRepo.UpdateState(ctx, instance); err != nil {
		return nil, err
	}
	return &next, nil
}

// CompleteTask implements workflow.Engine. Finishing after the due date flags the task as breached.
func (e *EngineImpl) CompleteTask(ctx context.Context, taskID string, req workflow.CompleteTaskRequest) (workflow.TaskResponse, error) {
	now := e.now()
	var next *workflow.Task

	err := postgresql.WithTransaction(ctx, e.db, func(tx pgx.Tx) error {
		txCtx := postgresql.WithTx(ctx, tx)

		task, instance, err := e.lockTask(txCtx, taskID)
		if err != nil {
			return err
		}
		if task.Status != workflow.TaskInProgress {
			return workflow.ErrTaskNotActive
		}

		task.Status = workflow.TaskCompleted
		task.CompletedAt = &now
		task.SLABreached = task.SLABreached || workflow.Breached(task.DueAt, now)
		if req.Data != nil {
			task.Data = req.Data
		}
		if req.Notes != nil {
			task.Notes = req.Notes
		}
		if err := e.instanceRepo.UpdateTask(txCtx, task); err != nil {
			return err
		}

		next, err = e.advance(txCtx, instance, task.StageOrder, now)
		return err
	})
	if err != nil {
		return workflow.TaskResponse{}, err
	}

	slog.Info("Task completed", "task_id", taskID, "next_task_id", taskIDOf(next))
	if next != nil {
		e.notify(workflow.EventTaskAssigned, *next)
	}
	return e.taskResponse(ctx, taskID)
}

// SkipTask implements workflow.Engine. Skipping the active task advances the instance; skipping a later
// pending task only marks it so it is passed over.
func (e *EngineImpl) SkipTask(ctx context.Context, taskID string, req workflow.SkipTaskRequest) (workflow.TaskResponse, error) {
	now := e.now()
	var next *workflow.Task

	err := postgresql.WithTransaction(ctx, e.db, func(tx pgx.Tx) error {
		txCtx := postgresql.WithTx(ctx, tx)

		task, instance, err := e.lockTask(txCtx, taskID)
		if err != nil {
			return err
		}
		if task.IsRequired {
			return workflow.ErrTaskRequired
		}
		if task.Status != workflow.TaskInProgress && task.Status != workflow.TaskPending {
			return workflow.ErrTaskNotActive
		}

		wasActive := task.Status == workflow.TaskInProgress
		task.Status = workflow.TaskSkipped
		task.CompletedAt = &now
		if req.Reason != nil {
			task.Notes = req.Reason
		}
		if err := e.instanceRepo.UpdateTask(txCtx, task); err != nil {
			return err
		}
		if !wasActive {
			return nil
		}
		next, err = e.advance(txCtx, instance, task.StageOrder, now)
		return err
	})
	if err != nil {
		return workflow.TaskResponse{}, err
	}

	slog.Info("Task skipped", "task_id", taskID)
	if next != nil {
		e.notify(workflow.EventTaskAssigned, *next)
	}
	return e.taskResponse(ctx, taskID)
}

// AssignTask implements workflow.Engine.
func (e *EngineImpl) AssignTask(ctx context.Context, taskID string, req workflow.AssignTaskRequest) (workflow.TaskResponse, error) {
	if err := req.Validate(); err != nil {
		return workflow.TaskResponse{}, err
	}
	assignee, err := e.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return workflow.TaskResponse{}, workflow.ErrAssigneeNotFound
		}
		return workflow.TaskResponse{}, err
	}
	if !assignee.IsActive {
		return workflow.TaskResponse{}, workflow.ErrAssigneeNotFound
	}

	err = postgresql.WithTransaction(ctx, e.db, func(tx pgx.Tx) error {
		txCtx := postgresql.WithTx(ctx, tx)
		task, _, err := e.lockTask(txCtx, taskID)
		if err != nil {
			return err
		}
		task.AssignedToID = &assignee.ID
		return e.instanceRepo.UpdateTask(txCtx, task)
	})
	if err != nil {
		return workflow.TaskResponse{}, err
	}

	resp, err := e.instanceRepo.GetTask(ctx, taskID)
	if err != nil {
		return workflow.TaskResponse{}, err
	}
	slog.Info("Task assigned", "task_id", taskID, "assignee_id", assignee.ID)
	e.notify(workflow.EventTaskAssigned, resp)
	return workflow.ToTaskResponse(resp), nil
}

// CancelInstance implements workflow.Engine.
func (e *EngineImpl) CancelInstance(ctx context.Context, instanceID string, req workflow.CloseInstanceRequest) (workflow.InstanceDetailResponse, error) {
	return e.close(ctx, instanceID, workflow.InstanceCancelled, workflow.TaskCancelled, req.Reason)
}

// FailInstance implements workflow.Engine.
func (e *EngineImpl) FailInstance(ctx context.Context, instanceID string, req workflow.CloseInstanceRequest) (workflow.InstanceDetailResponse, error) {
	return e.close(ctx, instanceID, workflow.InstanceFailed, workflow.TaskFailed, req.Reason)
}

func (e *EngineImpl) close(ctx context.Context, instanceID string, status workflow.InstanceStatus, taskStatus workflow.TaskStatus, reason *string) (workflow.InstanceDetailResponse, error) {
	now := e.now()
	err := postgresql.WithTransaction(ctx, e.db, func(tx pgx.Tx) error {
		txCtx := postgresql.WithTx(ctx, tx)

		instance, err := e.instanceRepo.LockByID(txCtx, instanceID)
		if err != nil {
			return err
		}
		if instance.Status.Closed() {
			return workflow.ErrInstanceClosed
		}
		if _, err := e.instanceRepo.CloseOpenTasks(txCtx, instanceID, taskStatus, reason); err != nil {
			return err
		}

		instance.Status = status
		instance.CompletedAt = &now
		instance.CurrentStageID = nil
		return e.instanceRepo.UpdateState(txCtx, instance)
	})
	if err != nil {
		return workflow.InstanceDetailResponse{}, err
	}
	slog.Info("Workflow instance closed", "instance_id", instanceID, "status", status)
	return e.GetInstance(ctx, instanceID)
}

// CheckSLABreaches implements workflow.Engine.
func (e *EngineImpl) CheckSLABreaches(ctx context.Context) (workflow.BreachReport, error) {
	now := e.now()
	var report workflow.BreachReport

	err := postgresql.WithTransaction(ctx, e.db, func(tx pgx.Tx) error {
		txCtx := postgresql.WithTx(ctx, tx)
		var err error
		if report.Tasks, err = e.instanceRepo.MarkOverdueTasks(txCtx, now); err != nil {
			return err
		}
		report.Instances, err = e.instanceRepo.MarkOverdueInstances(txCtx, now)
		return err
	})
	if err != nil {
		return workflow.BreachReport{}, err
	}

	report.TaskCount = len(report.Tasks)
	if report.TaskCount > 0 || report.Instances > 0 {
		slog.Warn("SLA breaches recorded", "tasks", report.TaskCount, "instances", report.Instances)
	}
	e.notify(workflow.EventTaskBreached, report.Tasks...)
	return report, nil
}

func (e *EngineImpl) taskResponse(ctx context.Context, taskID string) (workflow.TaskResponse, error) {
	t, err := e.instanceRepo.GetTask(ctx, taskID)
	if err != nil {
		return workflow.TaskResponse{}, err
	}
	return workflow.ToTaskResponse(t), nil
}

func taskIDOf(t *workflow.Task) string {
	if t == nil {
		return ""
	}
	return t.ID
}

package workflow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bpo-ops/ops-backend-go/internal/domain/workflow"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/database"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/pagination"
	"github.com/bpo-ops/ops-backend-go/internal/repository/postgresql"
	"github.com/jackc/pgx/v5"
)

type DefinitionServiceImpl struct {
	db           *database.DB
	workflowRepo workflow.WorkflowRepository
	processRepo  workflow.ProcessRepository
}

func NewDefinitionService(db *database.DB, workflowRepo workflow.WorkflowRepository, processRepo workflow.ProcessRepository) workflow.DefinitionService {
	return &DefinitionServiceImpl{db: db, workflowRepo: workflowRepo, processRepo: processRepo}
}

func toStages(reqs []workflow.StageRequest) []workflow.Stage {
	stages := make([]workflow.Stage, 0, len(reqs))
	for i, r := range reqs {
		stages = append(stages, r.ToStage("", i+1))
	}
	workflow.SortStages(stages)
	return stages
}

// List implements workflow.DefinitionService.
func (s *DefinitionServiceImpl) List(ctx context.Context, filter workflow.WorkflowFilter) (workflow.ListWorkflowResponse, error) {
	if err := filter.Validate(); err != nil {
		return workflow.ListWorkflowResponse{}, err
	}
	workflows, total, err := s.workflowRepo.List(ctx, filter)
	if err != nil {
		return workflow.ListWorkflowResponse{}, err
	}

	out := make([]workflow.WorkflowResponse, 0, len(workflows))
	for _, w := range workflows {
		out = append(out, workflow.ToWorkflowResponse(w))
	}
	return workflow.ListWorkflowResponse{
		Workflows:  out,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: pagination.TotalPages(total, filter.Limit),
	}, nil
}

// Create implements workflow.DefinitionService. The workflow and its stages are written together as a draft.
func (s *DefinitionServiceImpl) Create(ctx context.Context, req workflow.CreateWorkflowRequest) (workflow.WorkflowResponse, error) {
	if err := req.Validate(); err != nil {
		return workflow.WorkflowResponse{}, err
	}
	if _, err := s.processRepo.GetByID(ctx, req.ProcessID); err != nil {
		return workflow.WorkflowResponse{}, err
	}

	var created workflow.Workflow
	err := postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		created, err = s.workflowRepo.Create(postgresql.WithTx(ctx, tx), workflow.Workflow{
			Name:        strings.TrimSpace(req.Name),
			Code:        req.Code,
			Description: req.Description,
			Status:      workflow.StatusDraft,
			ProcessID:   req.ProcessID,
			Stages:      toStages(req.Stages),
		})
		return err
	})
	if err != nil {
		return workflow.WorkflowResponse{}, err
	}
	slog.Info("Workflow created", "workflow_id", created.ID, "stages", len(created.Stages))
	return workflow.ToWorkflowResponse(created), nil
}

// Get implements workflow.DefinitionService.
func (s *DefinitionServiceImpl) Get(ctx context.Context, id string) (workflow.WorkflowResponse, error) {
	w, err := s.workflowRepo.GetByID(ctx, id)
	if err != nil {
		return workflow.WorkflowResponse{}, err
	}
	return workflow.ToWorkflowResponse(w), nil
}

// Update implements workflow.DefinitionService. Stages may only be replaced while the workflow is a draft.
func (s *DefinitionServiceImpl) Update(ctx context.Context, req workflow.UpdateWorkflowRequest) (workflow.WorkflowResponse, error) {
	if err := req.Validate(); err != nil {
		return workflow.WorkflowResponse{}, err
	}
	current, err := s.workflowRepo.GetByID(ctx, req.ID)
	if err != nil {
		return workflow.WorkflowResponse{}, err
	}
	if req.Stages != nil && current.Status != workflow.StatusDraft {
		return workflow.WorkflowResponse{}, workflow.ErrWorkflowNotDraft
	}

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := postgresql.WithTx(ctx, tx)
		if err := s.workflowRepo.Update(txCtx, req); err != nil {
			return err
		}
		if req.Stages != nil {
			return s.workflowRepo.ReplaceStages(txCtx, req.ID, toStages(*req.Stages))
		}
		return nil
	})
	if err != nil {
		return workflow.WorkflowResponse{}, err
	}
	return s.Get(ctx, req.ID)
}

// Delete implements workflow.DefinitionService.
func (s *DefinitionServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.workflowRepo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("Workflow deleted", "workflow_id", id)
	return nil
}

// Activate implements workflow.DefinitionService.
func (s *DefinitionServiceImpl) Activate(ctx context.Context, id string) (workflow.WorkflowResponse, error) {
	w, err := s.workflowRepo.GetByID(ctx, id)
	if err != nil {
		return workflow.WorkflowResponse{}, err
	}
	if len(w.Stages) == 0 {
		return workflow.WorkflowResponse{}, workflow.ErrWorkflowNoStages
	}
	if err := s.workflowRepo.SetStatus(ctx, id, workflow.StatusActive); err != nil {
		return workflow.WorkflowResponse{}, err
	}
	return s.Get(ctx, id)
}

// Deactivate implements workflow.DefinitionService. Running instances are unaffected.
func (s *DefinitionServiceImpl) Deactivate(ctx context.Context, id string) (workflow.WorkflowResponse, error) {
	if err := s.workflowRepo.SetStatus(ctx, id, workflow.StatusInactive); err != nil {
		return workflow.WorkflowResponse{}, err
	}
	return s.Get(ctx, id)
}

// AddStage implements workflow.DefinitionService. Without an explicit order the stage goes last.
func (s *DefinitionServiceImpl) AddStage(ctx context.Context, workflowID string, req workflow.AddStageRequest) (workflow.WorkflowResponse, error) {
	if err := req.Validate(); err != nil {
		return workflow.WorkflowResponse{}, err
	}
	w, err := s.workflowRepo.GetByID(ctx, workflowID)
	if err != nil {
		return workflow.WorkflowResponse{}, err
	}

	last := 0
	for _, st := range w.Stages {
		if st.Code == req.Code {
			return workflow.WorkflowResponse{}, workflow.ErrStageCodeExists
		}
		if st.Order > last {
			last = st.Order
		}
	}

	if _, err := s.workflowRepo.AddStage(ctx, req.ToStage(workflowID, last+1)); err != nil {
		return workflow.WorkflowResponse{}, err
	}
	return s.Get(ctx, workflowID)
}

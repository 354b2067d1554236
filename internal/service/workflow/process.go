package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/bpo-ops/ops-backend-go/internal/domain/department"
	"github.com/bpo-ops/ops-backend-go/internal/domain/user"
	"github.com/bpo-ops/ops-backend-go/internal/domain/workflow"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/pagination"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/validator"
	"github.com/jackc/pgx/v5"
)

type ProcessServiceImpl struct {
	processRepo    workflow.ProcessRepository
	departmentRepo department.DepartmentRepository
	userRepo       user.UserRepository
}

func NewProcessService(processRepo workflow.ProcessRepository, departmentRepo department.DepartmentRepository, userRepo user.UserRepository) workflow.ProcessService {
	return &ProcessServiceImpl{processRepo: processRepo, departmentRepo: departmentRepo, userRepo: userRepo}
}

// List implements workflow.ProcessService.
func (s *ProcessServiceImpl) List(ctx context.Context, filter workflow.ProcessFilter) (workflow.ListProcessResponse, error) {
	if err := filter.Validate(); err != nil {
		return workflow.ListProcessResponse{}, err
	}
	processes, total, err := s.processRepo.List(ctx, filter)
	if err != nil {
		return workflow.ListProcessResponse{}, err
	}

	out := make([]workflow.ProcessResponse, 0, len(processes))
	for _, p := range processes {
		out = append(out, workflow.ToProcessResponse(p))
	}
	return workflow.ListProcessResponse{
		Processes:  out,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: pagination.TotalPages(total, filter.Limit),
	}, nil
}

// Create implements workflow.ProcessService. New processes start as drafts.
func (s *ProcessServiceImpl) Create(ctx context.Context, req workflow.CreateProcessRequest) (workflow.ProcessResponse, error) {
	if err := req.Validate(); err != nil {
		return workflow.ProcessResponse{}, err
	}
	if err := s.checkRefs(ctx, &req.DepartmentID, req.OwnerID); err != nil {
		return workflow.ProcessResponse{}, err
	}

	created, err := s.processRepo.Create(ctx, workflow.Process{
		Name:              strings.TrimSpace(req.Name),
		Code:              req.Code,
		Description:       req.Description,
		Status:            workflow.ProcessDraft,
		TargetSLAMinutes:  req.TargetSLAMinutes,
		WarningSLAMinutes: req.WarningSLAMinutes,
		DepartmentID:      req.DepartmentID,
		OwnerID:           req.OwnerID,
	})
	if err != nil {
		return workflow.ProcessResponse{}, err
	}
	slog.Info("Process created", "process_id", created.ID, "code", created.Code)
	return workflow.ToProcessResponse(created), nil
}

// Get implements workflow.ProcessService.
func (s *ProcessServiceImpl) Get(ctx context.Context, id string) (workflow.ProcessResponse, error) {
	p, err := s.processRepo.GetByID(ctx, id)
	if err != nil {
		return workflow.ProcessResponse{}, err
	}
	return workflow.ToProcessResponse(p), nil
}

// Update implements workflow.ProcessService.
func (s *ProcessServiceImpl) Update(ctx context.Context, req workflow.UpdateProcessRequest) (workflow.ProcessResponse, error) {
	if err := req.Validate(); err != nil {
		return workflow.ProcessResponse{}, err
	}
	current, err := s.processRepo.GetByID(ctx, req.ID)
	if err != nil {
		return workflow.ProcessResponse{}, err
	}

	target, warning := current.TargetSLAMinutes, current.WarningSLAMinutes
	if req.TargetSLAMinutes != nil {
		target = req.TargetSLAMinutes
	}
	if req.WarningSLAMinutes != nil {
		warning = req.WarningSLAMinutes
	}
	if target != nil && warning != nil && *warning > *target {
		var errs validator.ValidationErrors
		errs.Add("warning_sla_minutes", "warning_sla_minutes must not exceed target_sla_minutes")
		return workflow.ProcessResponse{}, errs
	}

	owner := req.OwnerID
	if owner != nil && *owner == "" {
		owner = nil
	}
	if err := s.checkRefs(ctx, req.DepartmentID, owner); err != nil {
		return workflow.ProcessResponse{}, err
	}

	if err := s.processRepo.Update(ctx, req); err != nil {
		return workflow.ProcessResponse{}, err
	}
	return s.Get(ctx, req.ID)
}

// Delete implements workflow.ProcessService.
func (s *ProcessServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.processRepo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("Process deleted", "process_id", id)
	return nil
}

// Activate implements workflow.ProcessService.
func (s *ProcessServiceImpl) Activate(ctx context.Context, id string) (workflow.ProcessResponse, error) {
	if err := s.processRepo.SetStatus(ctx, id, workflow.ProcessActive); err != nil {
		return workflow.ProcessResponse{}, err
	}
	return s.Get(ctx, id)
}

func (s *ProcessServiceImpl) checkRefs(ctx context.Context, departmentID, ownerID *string) error {
	if departmentID != nil {
		if _, err := s.departmentRepo.GetByID(ctx, *departmentID); err != nil {
			if errors.Is(err, department.ErrDepartmentNotFound) {
				return workflow.ErrDepartmentNotFound
			}
			return err
		}
	}
	if ownerID != nil {
		if _, err := s.userRepo.GetByID(ctx, *ownerID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return user.ErrUserNotFound
			}
			return err
		}
	}
	return nil
}

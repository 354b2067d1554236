package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/bpo-ops/ops-backend-go/internal/domain/user"
	"github.com/bpo-ops/ops-backend-go/internal/domain/workflow"
	"github.com/jackc/pgx/v5"
)

// resolveAssignee picks the user a stage's task goes to. A nil result leaves the task unassigned.
func (e *EngineImpl) resolveAssignee(ctx context.Context, stage workflow.Stage) (*string, error) {
	var role *user.Role
	if stage.AssignedRole != nil {
		r := user.Role(*stage.AssignedRole)
		role = &r
	}

	switch stage.AssignmentRule {
	case workflow.AssignSpecificUser:
		return stage.AssignedUserID, nil

	case workflow.AssignRoleBased:
		if role == nil {
			return nil, nil
		}
		ids, err := e.userRepo.ListActiveIDsByRole(ctx, *role)
		if err != nil || len(ids) == 0 {
			return nil, err
		}
		return &ids[0], nil

	case workflow.AssignRoundRobin:
		if role == nil {
			return nil, nil
		}
		ids, err := e.userRepo.ListActiveIDsByRole(ctx, *role)
		if err != nil || len(ids) == 0 {
			return nil, err
		}
		n, err := e.instanceRepo.CountStageTasks(ctx, stage.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count stage tasks: %w", err)
		}
		return &ids[n%int64(len(ids))], nil

	case workflow.AssignLeastLoaded:
		id, err := e.userRepo.LeastLoadedByRole(ctx, role)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to find least loaded user: %w", err)
		}
		return &id, nil
	}
	return nil, nil
}

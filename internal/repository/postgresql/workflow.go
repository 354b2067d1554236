package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/bpo-ops/ops-backend-go/internal/domain/workflow"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const workflowColumns = `
	w.id, w.name, w.code, w.description, w.status, w.version, w.process_id, w.created_at, w.updated_at,
	p.name AS process_name,
	(SELECT COUNT(*) FROM workflow_stages s WHERE s.workflow_id = w.id) AS stage_count,
	(SELECT COUNT(*) FROM workflow_instances i WHERE i.workflow_id = w.id) AS instance_count`

const stageColumns = `
	id, workflow_id, name, code, description, stage_order, is_required, assignment_rule,
	assigned_role, assigned_user_id, sla_minutes, created_at, updated_at`

type workflowRepositoryImpl struct {
	db *database.DB
}

func NewWorkflowRepository(db *database.DB) workflow.WorkflowRepository {
	return &workflowRepositoryImpl{db: db}
}

func scanWorkflow(row pgx.Row) (workflow.Workflow, error) {
	var w workflow.Workflow
	err := row.Scan(
		&w.ID, &w.Name, &w.Code, &w.Description, &w.Status, &w.Version, &w.ProcessID, &w.CreatedAt, &w.UpdatedAt,
		&w.ProcessName, &w.StageCount, &w.InstanceCount,
	)
	return w, err
}

func scanStage(row pgx.Row) (workflow.Stage, error) {
	var s workflow.Stage
	err := row.Scan(
		&s.ID, &s.WorkflowID, &s.Name, &s.Code, &s.Description, &s.Order, &s.IsRequired, &s.AssignmentRule,
		&s.AssignedRole, &s.AssignedUserID, &s.SLAMinutes, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// List implements workflow.WorkflowRepository. Stages are not loaded.
func (r *workflowRepositoryImpl) List(ctx context.Context, filter workflow.WorkflowFilter) ([]workflow.Workflow, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(w.name ILIKE $%d OR w.code ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("w.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.ProcessID != nil && *filter.ProcessID != "" {
		conditions = append(conditions, fmt.Sprintf("w.process_id = $%d", argIdx))
		args = append(args, *filter.ProcessID)
		argIdx++
	}
	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM workflows w WHERE %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count workflows: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM workflows w
		JOIN processes p ON p.id = w.process_id
		WHERE %s
		ORDER BY w.created_at DESC
		LIMIT $%d OFFSET $%d
	`, workflowColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	out := make([]workflow.Workflow, 0)
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan workflow: %w", err)
		}
		out = append(out, w)
	}
	return out, total, rows.Err()
}

// GetByID implements workflow.WorkflowRepository.
func (r *workflowRepositoryImpl) GetByID(ctx context.Context, id string) (workflow.Workflow, error) {
	q := GetQuerier(ctx, r.db)
	w, err := scanWorkflow(q.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM workflows w JOIN processes p ON p.id = w.process_id WHERE w.id = $1
	`, workflowColumns), id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return workflow.Workflow{}, workflow.ErrWorkflowNotFound
		}
		return workflow.Workflow{}, err
	}

	rows, err := q.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM workflow_stages WHERE workflow_id = $1 ORDER BY stage_order, created_at
	`, stageColumns), id)
	if err != nil {
		return workflow.Workflow{}, fmt.Errorf("failed to load stages: %w", err)
	}
	defer rows.Close()

	w.Stages = make([]workflow.Stage, 0)
	for rows.Next() {
		s, err := scanStage(rows)
		if err != nil {
			return workflow.Workflow{}, fmt.Errorf("failed to scan stage: %w", err)
		}
		w.Stages = append(w.Stages, s)
	}
	return w, rows.Err()
}

// Create implements workflow.WorkflowRepository. Stages are inserted in the same call.
func (r *workflowRepositoryImpl) Create(ctx context.Context, w workflow.Workflow) (workflow.Workflow, error) {
	q := GetQuerier(ctx, r.db)

	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO workflows (name, code, description, status, process_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, w.Name, w.Code, w.Description, w.Status, w.ProcessID).Scan(&id)
	if err != nil {
		if IsUniqueViolation(err) {
			return workflow.Workflow{}, workflow.ErrWorkflowCodeExists
		}
		if IsForeignKeyViolation(err) {
			return workflow.Workflow{}, workflow.ErrProcessNotFound
		}
		return workflow.Workflow{}, fmt.Errorf("failed to create workflow: %w", err)
	}

	for _, s := range w.Stages {
		s.WorkflowID = id
		if _, err := r.AddStage(ctx, s); err != nil {
			return workflow.Workflow{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Update implements workflow.WorkflowRepository. Stage changes go through ReplaceStages.
func (r *workflowRepositoryImpl) Update(ctx context.Context, req workflow.UpdateWorkflowRequest) error {
	q := GetQuerier(ctx, r.db)

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = nullable(*req.Description)
	}
	if len(updates) == 0 {
		return nil
	}

	setClauses := make([]string, 0, len(updates)+1)
	args := make([]interface{}, 0, len(updates)+1)
	i := 1
	for col, val := range updates {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, val)
		i++
	}
	setClauses = append(setClauses, "updated_at = NOW()")
	sql := fmt.Sprintf("UPDATE workflows SET %s WHERE id = $%d", strings.Join(setClauses, ", "), i)
	args = append(args, req.ID)

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update workflow with id %s: %w", req.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrWorkflowNotFound
	}
	return nil
}

// SetStatus implements workflow.WorkflowRepository.
func (r *workflowRepositoryImpl) SetStatus(ctx context.Context, id string, status workflow.Status) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE workflows SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to set workflow status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrWorkflowNotFound
	}
	return nil
}

// Delete implements workflow.WorkflowRepository.
func (r *workflowRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return workflow.ErrWorkflowInUse
		}
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrWorkflowNotFound
	}
	return nil
}

// ReplaceStages implements workflow.WorkflowRepository and bumps the workflow version.
func (r *workflowRepositoryImpl) ReplaceStages(ctx context.Context, workflowID string, stages []workflow.Stage) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM workflow_stages WHERE workflow_id = $1`, workflowID); err != nil {
		if IsForeignKeyViolation(err) {
			return workflow.ErrWorkflowInUse
		}
		return fmt.Errorf("failed to clear stages: %w", err)
	}
	for _, s := range stages {
		s.WorkflowID = workflowID
		if _, err := r.AddStage(ctx, s); err != nil {
			return err
		}
	}
	_, err := q.Exec(ctx, `UPDATE workflows SET version = version + 1, updated_at = NOW() WHERE id = $1`, workflowID)
	return err
}

// AddStage implements workflow.WorkflowRepository.
func (r *workflowRepositoryImpl) AddStage(ctx context.Context, s workflow.Stage) (workflow.Stage, error) {
	q := GetQuerier(ctx, r.db)
	created, err := scanStage(q.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO workflow_stages (workflow_id, name, code, description, stage_order, is_required, assignment_rule,
			assigned_role, assigned_user_id, sla_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING %s
	`, stageColumns), s.WorkflowID, s.Name, s.Code, s.Description, s.Order, s.IsRequired, s.AssignmentRule,
		s.AssignedRole, s.AssignedUserID, s.SLAMinutes))
	if err != nil {
		if IsForeignKeyViolation(err) {
			return workflow.Stage{}, workflow.ErrAssigneeNotFound
		}
		return workflow.Stage{}, fmt.Errorf("failed to add stage: %w", err)
	}
	return created, nil
}

// GetStage implements workflow.WorkflowRepository.
func (r *workflowRepositoryImpl) GetStage(ctx context.Context, id string) (workflow.Stage, error) {
	q := GetQuerier(ctx, r.db)
	s, err := scanStage(q.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM workflow_stages WHERE id = $1`, stageColumns), id))
	if err == pgx.ErrNoRows {
		return workflow.Stage{}, workflow.ErrWorkflowNotFound
	}
	return s, err
}

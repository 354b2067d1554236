package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/workflow"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const instanceColumns = `
	i.id, i.workflow_id, i.reference_number, i.title, i.status, i.priority, i.data, i.current_stage_id,
	i.started_at, i.completed_at, i.due_at, i.sla_breached, i.created_by, i.created_at, i.updated_at,
	w.name AS workflow_name,
	cs.name AS current_stage_name`

const instanceFrom = `
	FROM workflow_instances i
	JOIN workflows w ON w.id = i.workflow_id
	LEFT JOIN workflow_stages cs ON cs.id = i.current_stage_id`

const taskColumns = `
	t.id, t.instance_id, t.stage_id, t.status, t.assigned_to_id, t.started_at, t.completed_at, t.due_at,
	t.sla_breached, t.data, t.notes, t.created_at, t.updated_at,
	s.name, s.code, s.stage_order, s.is_required,
	i.reference_number, i.title, i.priority,
	u.full_name`

const taskFrom = `
	FROM workflow_tasks t
	JOIN workflow_stages s ON s.id = t.stage_id
	JOIN workflow_instances i ON i.id = t.instance_id
	LEFT JOIN users u ON u.id = t.assigned_to_id`

type instanceRepositoryImpl struct {
	db *database.DB
}

func NewInstanceRepository(db *database.DB) workflow.InstanceRepository {
	return &instanceRepositoryImpl{db: db}
}

func scanInstance(row pgx.Row) (workflow.Instance, error) {
	var i workflow.Instance
	err := row.Scan(
		&i.ID, &i.WorkflowID, &i.ReferenceNumber, &i.Title, &i.Status, &i.Priority, &i.Data, &i.CurrentStageID,
		&i.StartedAt, &i.CompletedAt, &i.DueAt, &i.SLABreached, &i.CreatedBy, &i.CreatedAt, &i.UpdatedAt,
		&i.WorkflowName, &i.CurrentStageName,
	)
	return i, err
}

func scanTask(row pgx.Row) (workflow.Task, error) {
	var t workflow.Task
	err := row.Scan(
		&t.ID, &t.InstanceID, &t.StageID, &t.Status, &t.AssignedToID, &t.StartedAt, &t.CompletedAt, &t.DueAt,
		&t.SLABreached, &t.Data, &t.Notes, &t.CreatedAt, &t.UpdatedAt,
		&t.StageName, &t.StageCode, &t.StageOrder, &t.IsRequired,
		&t.ReferenceNumber, &t.InstanceTitle, &t.Priority,
		&t.AssigneeName,
	)
	return t, err
}

func collectTasks(rows pgx.Rows) ([]workflow.Task, error) {
	defer rows.Close()
	out := make([]workflow.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Create implements workflow.InstanceRepository.
func (r *instanceRepositoryImpl) Create(ctx context.Context, i workflow.Instance) (workflow.Instance, error) {
	q := GetQuerier(ctx, r.db)

	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO workflow_instances (workflow_id, reference_number, title, status, priority, data, current_stage_id,
			started_at, due_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, i.WorkflowID, i.ReferenceNumber, i.Title, i.Status, i.Priority, i.Data, i.CurrentStageID,
		i.StartedAt, i.DueAt, i.CreatedBy).Scan(&id)
	if err != nil {
		return workflow.Instance{}, fmt.Errorf("failed to create workflow instance: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID implements workflow.InstanceRepository.
func (r *instanceRepositoryImpl) GetByID(ctx context.Context, id string) (workflow.Instance, error) {
	q := GetQuerier(ctx, r.db)
	i, err := scanInstance(q.QueryRow(ctx, fmt.Sprintf(`SELECT %s %s WHERE i.id = $1`, instanceColumns, instanceFrom), id))
	if err == pgx.ErrNoRows {
		return workflow.Instance{}, workflow.ErrInstanceNotFound
	}
	return i, err
}

// LockByID implements workflow.InstanceRepository.
func (r *instanceRepositoryImpl) LockByID(ctx context.Context, id string) (workflow.Instance, error) {
	q := GetQuerier(ctx, r.db)
	var locked string
	if err := q.QueryRow(ctx, `SELECT id FROM workflow_instances WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
		if err == pgx.ErrNoRows {
			return workflow.Instance{}, workflow.ErrInstanceNotFound
		}
		return workflow.Instance{}, fmt.Errorf("failed to lock workflow instance: %w", err)
	}
	return r.GetByID(ctx, id)
}

// List implements workflow.InstanceRepository.
func (r *instanceRepositoryImpl) List(ctx context.Context, filter workflow.InstanceFilter) ([]workflow.Instance, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("i.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.WorkflowID != nil && *filter.WorkflowID != "" {
		conditions = append(conditions, fmt.Sprintf("i.workflow_id = $%d", argIdx))
		args = append(args, *filter.WorkflowID)
		argIdx++
	}
	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("i.priority = $%d", argIdx))
		args = append(args, *filter.Priority)
		argIdx++
	}
	if filter.AssignedTo != nil && *filter.AssignedTo != "" {
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM workflow_tasks wt
			WHERE wt.instance_id = i.id AND wt.assigned_to_id = $%d AND wt.status = 'in_progress'
		)`, argIdx))
		args = append(args, *filter.AssignedTo)
		argIdx++
	}
	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM workflow_instances i WHERE %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count workflow instances: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY i.priority DESC, i.created_at DESC LIMIT $%d OFFSET $%d`,
		instanceColumns, instanceFrom, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list workflow instances: %w", err)
	}
	defer rows.Close()

	out := make([]workflow.Instance, 0)
	for rows.Next() {
		i, err := scanInstance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan workflow instance: %w", err)
		}
		out = append(out, i)
	}
	return out, total, rows.Err()
}

// UpdateState implements workflow.InstanceRepository.
func (r *instanceRepositoryImpl) UpdateState(ctx context.Context, i workflow.Instance) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE workflow_instances
		SET status = $1, current_stage_id = $2, completed_at = $3, sla_breached = $4, updated_at = NOW()
		WHERE id = $5
	`, i.Status, i.CurrentStageID, i.CompletedAt, i.SLABreached, i.ID)
	if err != nil {
		return fmt.Errorf("failed to update workflow instance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrInstanceNotFound
	}
	return nil
}

// CreateTask implements workflow.InstanceRepository.
func (r *instanceRepositoryImpl) CreateTask(ctx context.Context, t workflow.Task) (workflow.Task, error) {
	q := GetQuerier(ctx, r.db)

	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO workflow_tasks (instance_id, stage_id, status, assigned_to_id, started_at, due_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, t.InstanceID, t.StageID, t.Status, t.AssignedToID, t.StartedAt, t.DueAt).Scan(&id)
	if err != nil {
		return workflow.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return r.GetTask(ctx, id)
}

// GetTask implements workflow.InstanceRepository.
func (r *instanceRepositoryImpl) GetTask(ctx context.Context, id string) (workflow.Task, error) {
	q := GetQuerier(ctx, r.db)
	t, err := scanTask(q.QueryRow(ctx, fmt.Sprintf(`SELECT %s %s WHERE t.id = $1`, taskColumns, taskFrom), id))
	if err == pgx.ErrNoRows {
		return workflow.Task{}, workflow.ErrTaskNotFound
	}
	return t, err
}

// ListTasks implements workflow.InstanceRepository.
func (r *instanceRepositoryImpl) ListTasks(ctx context.Context, instanceID string) ([]workflow.Task, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, fmt.Sprintf(`SELECT %s %s WHERE t.instance_id = $1 ORDER BY s.stage_order`, taskColumns, taskFrom), instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return collectTasks(rows)
}

// ListAssignedTasks implements workflow.InstanceRepository. Without a status filter only open tasks are listed.
func (r *instanceRepositoryImpl) ListAssignedTasks(ctx context.Context, filter workflow.TaskFilter) ([]workflow.Task, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"t.assigned_to_id = $1"}
	args := []interface{}{filter.AssignedTo}
	argIdx := 2
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	} else {
		conditions = append(conditions, "t.status IN ('pending', 'in_progress')")
	}
	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM workflow_tasks t WHERE %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s %s
		WHERE %s
		ORDER BY i.priority DESC, t.due_at ASC NULLS LAST, t.created_at
		LIMIT $%d OFFSET $%d
	`, taskColumns, taskFrom, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assigned tasks: %w", err)
	}
	tasks, err := collectTasks(rows)
	return tasks, total, err
}

// UpdateTask implements workflow.InstanceRepository.
func (r *instanceRepositoryImpl) UpdateTask(ctx context.Context, t workflow.Task) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE workflow_tasks
		SET status = $1, assigned_to_id = $2, started_at = $3, completed_at = $4, due_at = $5,
			sla_breached = $6, data = $7, notes = $8, updated_at = NOW()
		WHERE id = $9
	`, t.Status, t.AssignedToID, t.StartedAt, t.CompletedAt, t.DueAt, t.SLABreached, t.Data, t.Notes, t.ID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return workflow.ErrAssigneeNotFound
		}
		return fmt.Errorf("failed to update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrTaskNotFound
	}
	return nil
}

// CloseOpenTasks implements workflow.InstanceRepository.
func (r *instanceRepositoryImpl) CloseOpenTasks(ctx context.Context, instanceID string, status workflow.TaskStatus, notes *string) (int64, error) {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE workflow_tasks
		SET status = $1, notes = COALESCE($2, notes), updated_at = NOW()
		WHERE instance_id = $3 AND status IN ('pending', 'in_progress')
	`, status, notes, instanceID)
	if err != nil {
		return 0, fmt.Errorf("failed to close open tasks: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountStageTasks implements workflow.InstanceRepository.
func (r *instanceRepositoryImpl) CountStageTasks(ctx context.Context, stageID string) (int64, error) {
	q := GetQuerier(ctx, r.db)
	var n int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM workflow_tasks WHERE stage_id = $1 AND assigned_to_id IS NOT NULL`, stageID).Scan(&n)
	return n, err
}

// MarkOverdueTasks implements workflow.InstanceRepository.
func (r *instanceRepositoryImpl) MarkOverdueTasks(ctx context.Context, now time.Time) ([]workflow.Task, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		UPDATE workflow_tasks
		SET sla_breached = TRUE, updated_at = NOW()
		WHERE status = 'in_progress' AND due_at < $1 AND sla_breached = FALSE
		RETURNING id
	`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to mark overdue tasks: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}

	tasks := make([]workflow.Task, 0, len(ids))
	for _, id := range ids {
		t, err := r.GetTask(ctx, id)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// MarkOverdueInstances implements workflow.InstanceRepository.
func (r *instanceRepositoryImpl) MarkOverdueInstances(ctx context.Context, now time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE workflow_instances
		SET sla_breached = TRUE, updated_at = NOW()
		WHERE status IN ('pending', 'in_progress') AND due_at < $1 AND sla_breached = FALSE
	`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue instances: %w", err)
	}
	return tag.RowsAffected(), nil
}

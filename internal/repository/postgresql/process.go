package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/bpo-ops/ops-backend-go/internal/domain/workflow"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const processColumns = `
	p.id, p.name, p.code, p.description, p.status, p.version, p.target_sla_minutes, p.warning_sla_minutes,
	p.department_id, p.owner_id, p.created_at, p.updated_at,
	d.name AS department_name,
	o.full_name AS owner_name,
	(SELECT COUNT(*) FROM workflows w WHERE w.process_id = p.id) AS workflow_count`

const processFrom = `
	FROM processes p
	JOIN departments d ON d.id = p.department_id
	LEFT JOIN users o ON o.id = p.owner_id`

type processRepositoryImpl struct {
	db *database.DB
}

func NewProcessRepository(db *database.DB) workflow.ProcessRepository {
	return &processRepositoryImpl{db: db}
}

func scanProcess(row pgx.Row) (workflow.Process, error) {
	var p workflow.Process
	err := row.Scan(
		&p.ID, &p.Name, &p.Code, &p.Description, &p.Status, &p.Version, &p.TargetSLAMinutes, &p.WarningSLAMinutes,
		&p.DepartmentID, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt,
		&p.DepartmentName, &p.OwnerName, &p.WorkflowCount,
	)
	return p, err
}

// List implements workflow.ProcessRepository.
func (r *processRepositoryImpl) List(ctx context.Context, filter workflow.ProcessFilter) ([]workflow.Process, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE $%d OR p.code ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.DepartmentID != nil && *filter.DepartmentID != "" {
		conditions = append(conditions, fmt.Sprintf("p.department_id = $%d", argIdx))
		args = append(args, *filter.DepartmentID)
		argIdx++
	}
	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM processes p WHERE %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count processes: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`,
		processColumns, processFrom, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list processes: %w", err)
	}
	defer rows.Close()

	out := make([]workflow.Process, 0)
	for rows.Next() {
		p, err := scanProcess(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan process: %w", err)
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// GetByID implements workflow.ProcessRepository.
func (r *processRepositoryImpl) GetByID(ctx context.Context, id string) (workflow.Process, error) {
	q := GetQuerier(ctx, r.db)
	p, err := scanProcess(q.QueryRow(ctx, fmt.Sprintf(`SELECT %s %s WHERE p.id = $1`, processColumns, processFrom), id))
	if err == pgx.ErrNoRows {
		return workflow.Process{}, workflow.ErrProcessNotFound
	}
	return p, err
}

// Create implements workflow.ProcessRepository.
func (r *processRepositoryImpl) Create(ctx context.Context, p workflow.Process) (workflow.Process, error) {
	q := GetQuerier(ctx, r.db)

	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO processes (name, code, description, status, target_sla_minutes, warning_sla_minutes, department_id, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, p.Name, p.Code, p.Description, p.Status, p.TargetSLAMinutes, p.WarningSLAMinutes, p.DepartmentID, p.OwnerID).Scan(&id)
	if err != nil {
		if IsUniqueViolation(err) {
			return workflow.Process{}, workflow.ErrProcessCodeExists
		}
		if IsForeignKeyViolation(err) {
			return workflow.Process{}, workflow.ErrDepartmentNotFound
		}
		return workflow.Process{}, fmt.Errorf("failed to create process: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Update implements workflow.ProcessRepository. Every update bumps the version.
func (r *processRepositoryImpl) Update(ctx context.Context, req workflow.UpdateProcessRequest) error {
	q := GetQuerier(ctx, r.db)

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = nullable(*req.Description)
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.DepartmentID != nil {
		updates["department_id"] = *req.DepartmentID
	}
	if req.OwnerID != nil {
		updates["owner_id"] = nullable(*req.OwnerID)
	}
	if req.TargetSLAMinutes != nil {
		updates["target_sla_minutes"] = *req.TargetSLAMinutes
	}
	if req.WarningSLAMinutes != nil {
		updates["warning_sla_minutes"] = *req.WarningSLAMinutes
	}
	if len(updates) == 0 {
		return nil
	}

	setClauses := make([]string, 0, len(updates)+2)
	args := make([]interface{}, 0, len(updates)+1)
	i := 1
	for col, val := range updates {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, val)
		i++
	}
	setClauses = append(setClauses, "version = version + 1", "updated_at = NOW()")
	sql := fmt.Sprintf("UPDATE processes SET %s WHERE id = $%d RETURNING id", strings.Join(setClauses, ", "), i)
	args = append(args, req.ID)

	var updatedID string
	if err := q.QueryRow(ctx, sql, args...).Scan(&updatedID); err != nil {
		if err == pgx.ErrNoRows {
			return workflow.ErrProcessNotFound
		}
		if IsForeignKeyViolation(err) {
			return workflow.ErrDepartmentNotFound
		}
		return fmt.Errorf("failed to update process with id %s: %w", req.ID, err)
	}
	return nil
}

// SetStatus implements workflow.ProcessRepository.
func (r *processRepositoryImpl) SetStatus(ctx context.Context, id string, status workflow.ProcessStatus) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE processes SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to set process status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrProcessNotFound
	}
	return nil
}

// Delete implements workflow.ProcessRepository.
func (r *processRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM processes WHERE id = $1`, id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return workflow.ErrProcessInUse
		}
		return fmt.Errorf("failed to delete process: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrProcessNotFound
	}
	return nil
}

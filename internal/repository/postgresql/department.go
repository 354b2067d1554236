package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/department"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const departmentColumns = `
	d.id, d.name, d.code, d.description, d.is_active, d.parent_id, d.manager_id, d.created_at, d.updated_at,
	p.name AS parent_name,
	m.full_name AS manager_name,
	(SELECT COUNT(*) FROM department_users du WHERE du.department_id = d.id) AS member_count`

const departmentFrom = `
	FROM departments d
	LEFT JOIN departments p ON p.id = d.parent_id
	LEFT JOIN users m ON m.id = d.manager_id`

type departmentRepositoryImpl struct {
	db *database.DB
}

func NewDepartmentRepository(db *database.DB) department.DepartmentRepository {
	return &departmentRepositoryImpl{db: db}
}

func scanDepartment(row pgx.Row) (department.Department, error) {
	var d department.Department
	err := row.Scan(
		&d.ID, &d.Name, &d.Code, &d.Description, &d.IsActive, &d.ParentID, &d.ManagerID, &d.CreatedAt, &d.UpdatedAt,
		&d.ParentName, &d.ManagerName, &d.MemberCount,
	)
	return d, err
}

func collectDepartments(rows pgx.Rows) ([]department.Department, error) {
	defer rows.Close()
	out := make([]department.Department, 0)
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// List implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) List(ctx context.Context, filter department.DepartmentFilter) ([]department.Department, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(d.name ILIKE $%d OR d.code ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("d.is_active = $%d", argIdx))
		args = append(args, *filter.IsActive)
		argIdx++
	}
	if filter.ParentID != nil && *filter.ParentID != "" {
		conditions = append(conditions, fmt.Sprintf("d.parent_id = $%d", argIdx))
		args = append(args, *filter.ParentID)
		argIdx++
	}
	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM departments d WHERE %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count departments: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY d.name LIMIT $%d OFFSET $%d`,
		departmentColumns, departmentFrom, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list departments: %w", err)
	}
	out, err := collectDepartments(rows)
	return out, total, err
}

// ListAll implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) ListAll(ctx context.Context, activeOnly bool) ([]department.Department, error) {
	q := GetQuerier(ctx, r.db)
	query := fmt.Sprintf(`SELECT %s %s WHERE ($1 = FALSE OR d.is_active) ORDER BY d.name`, departmentColumns, departmentFrom)
	rows, err := q.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return collectDepartments(rows)
}

// GetByID implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) GetByID(ctx context.Context, id string) (department.Department, error) {
	q := GetQuerier(ctx, r.db)
	d, err := scanDepartment(q.QueryRow(ctx, fmt.Sprintf(`SELECT %s %s WHERE d.id = $1`, departmentColumns, departmentFrom), id))
	if err == pgx.ErrNoRows {
		return department.Department{}, department.ErrDepartmentNotFound
	}
	return d, err
}

// Children implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Children(ctx context.Context, id string) ([]department.Ref, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT id, name, code FROM departments WHERE parent_id = $1 ORDER BY name`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list child departments: %w", err)
	}
	defer rows.Close()

	out := make([]department.Ref, 0)
	for rows.Next() {
		var ref department.Ref
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Code); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

// AncestorIDs implements department.DepartmentRepository. The depth guard stops at 100 levels should the
// stored data already contain a loop.
func (r *departmentRepositoryImpl) AncestorIDs(ctx context.Context, id string) ([]string, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		WITH RECURSIVE chain AS (
			SELECT parent_id, 1 AS depth FROM departments WHERE id = $1
			UNION ALL
			SELECT d.parent_id, c.depth + 1
			FROM departments d
			JOIN chain c ON d.id = c.parent_id
			WHERE c.depth < 100
		)
		SELECT parent_id FROM chain WHERE parent_id IS NOT NULL ORDER BY depth
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to walk department ancestors: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var pid string
		if err := rows.Scan(&pid); err != nil {
			return nil, err
		}
		ids = append(ids, pid)
	}
	return ids, rows.Err()
}

// Create implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Create(ctx context.Context, d department.Department) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO departments (name, code, description, is_active, parent_id, manager_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, d.Name, d.Code, d.Description, d.IsActive, d.ParentID, d.ManagerID).Scan(&id)
	if err != nil {
		if IsUniqueViolation(err) {
			return department.Department{}, department.ErrDepartmentCodeExists
		}
		if IsForeignKeyViolation(err) {
			return department.Department{}, department.ErrManagerNotFound
		}
		return department.Department{}, fmt.Errorf("failed to create department: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Update implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Update(ctx context.Context, req department.UpdateDepartmentRequest) error {
	q := GetQuerier(ctx, r.db)

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		updates["code"] = *req.Code
	}
	if req.Description != nil {
		updates["description"] = nullable(*req.Description)
	}
	if req.ParentID != nil {
		updates["parent_id"] = nullable(*req.ParentID)
	}
	if req.ManagerID != nil {
		updates["manager_id"] = nullable(*req.ManagerID)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()

	setClauses := make([]string, 0, len(updates))
	args := make([]interface{}, 0, len(updates)+1)
	i := 1
	for col, val := range updates {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, val)
		i++
	}
	sql := fmt.Sprintf("UPDATE departments SET %s WHERE id = $%d RETURNING id", strings.Join(setClauses, ", "), i)
	args = append(args, req.ID)

	var updatedID string
	if err := q.QueryRow(ctx, sql, args...).Scan(&updatedID); err != nil {
		if err == pgx.ErrNoRows {
			return department.ErrDepartmentNotFound
		}
		if IsUniqueViolation(err) {
			return department.ErrDepartmentCodeExists
		}
		if IsForeignKeyViolation(err) {
			return department.ErrManagerNotFound
		}
		return fmt.Errorf("failed to update department with id %s: %w", req.ID, err)
	}
	return nil
}

// Delete implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return department.ErrDepartmentInUse
		}
		return fmt.Errorf("failed to delete department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return department.ErrDepartmentNotFound
	}
	return nil
}

// Count implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Count(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)
	var n int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM departments WHERE is_active`).Scan(&n)
	return n, err
}

// AddMember implements department.DepartmentRepository. Re-adding an existing member updates is_primary; a
// primary assignment clears the user's other primary flags.
func (r *departmentRepositoryImpl) AddMember(ctx context.Context, departmentID string, req department.AddMemberRequest) error {
	q := GetQuerier(ctx, r.db)

	if req.IsPrimary {
		if _, err := q.Exec(ctx, `
			UPDATE department_users SET is_primary = FALSE
			WHERE user_id = $1 AND department_id <> $2 AND is_primary
		`, req.UserID, departmentID); err != nil {
			return fmt.Errorf("failed to clear primary department: %w", err)
		}
	}

	_, err := q.Exec(ctx, `
		INSERT INTO department_users (department_id, user_id, is_primary)
		VALUES ($1, $2, $3)
		ON CONFLICT (department_id, user_id) DO UPDATE SET is_primary = EXCLUDED.is_primary
	`, departmentID, req.UserID, req.IsPrimary)
	if err != nil {
		return fmt.Errorf("failed to add department member: %w", err)
	}
	return nil
}

// RemoveMember implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) RemoveMember(ctx context.Context, departmentID, userID string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM department_users WHERE department_id = $1 AND user_id = $2`, departmentID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove department member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return department.ErrMemberNotFound
	}
	return nil
}

// ListMembers implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) ListMembers(ctx context.Context, departmentID string) ([]department.Member, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT u.id, u.email, u.full_name, du.is_primary, du.assigned_at
		FROM department_users du
		JOIN users u ON u.id = du.user_id
		WHERE du.department_id = $1
		ORDER BY du.is_primary DESC, u.full_name
	`, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list department members: %w", err)
	}
	defer rows.Close()

	out := make([]department.Member, 0)
	for rows.Next() {
		var m department.Member
		if err := rows.Scan(&m.UserID, &m.Email, &m.FullName, &m.IsPrimary, &m.AssignedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

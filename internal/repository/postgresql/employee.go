package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/employee"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const employeeColumns = `
	e.id, e.user_id, e.employee_number, e.first_name, e.last_name, e.email, e.phone, e.position,
	e.department, e.campaign, e.status, e.join_date, e.last_working_date, e.personal_email,
	e.emergency_name, e.emergency_phone, e.notes, e.created_at, e.updated_at`

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.UserID, &emp.EmployeeNumber, &emp.FirstName, &emp.LastName, &emp.Email, &emp.Phone,
		&emp.Position, &emp.Department, &emp.Campaign, &emp.Status, &emp.JoinDate, &emp.LastWorkingDate,
		&emp.PersonalEmail, &emp.EmergencyName, &emp.EmergencyPhone, &emp.Notes, &emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}

func collectEmployees(rows pgx.Rows) ([]employee.Employee, error) {
	defer rows.Close()
	employees := make([]employee.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)
	emp, err := scanEmployee(q.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM employees e WHERE e.id = $1`, employeeColumns), id))
	if err == pgx.ErrNoRows {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, err
}

// GetByNumber implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByNumber(ctx context.Context, employeeNumber string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)
	emp, err := scanEmployee(q.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM employees e WHERE e.employee_number = $1`, employeeColumns), employeeNumber))
	if err == pgx.ErrNoRows {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, err
}

// GetByNumbers implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByNumbers(ctx context.Context, employeeNumbers []string) (map[string]employee.Employee, error) {
	out := make(map[string]employee.Employee, len(employeeNumbers))
	if len(employeeNumbers) == 0 {
		return out, nil
	}
	q := GetQuerier(ctx, e.db)
	rows, err := q.Query(ctx, fmt.Sprintf(`SELECT %s FROM employees e WHERE e.employee_number = ANY($1)`, employeeColumns), employeeNumbers)
	if err != nil {
		return nil, fmt.Errorf("failed to look up employees: %w", err)
	}
	employees, err := collectEmployees(rows)
	if err != nil {
		return nil, err
	}
	for _, emp := range employees {
		out[emp.EmployeeNumber] = emp
	}
	return out, nil
}

// Create implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := fmt.Sprintf(`
		INSERT INTO employees AS e (
			user_id, employee_number, first_name, last_name, email, phone, position, department, campaign,
			status, join_date, last_working_date, personal_email, emergency_name, emergency_phone, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING %s
	`, employeeColumns)

	created, err := scanEmployee(q.QueryRow(ctx, query,
		newEmployee.UserID,
		newEmployee.EmployeeNumber,
		newEmployee.FirstName,
		newEmployee.LastName,
		newEmployee.Email,
		newEmployee.Phone,
		newEmployee.Position,
		newEmployee.Department,
		newEmployee.Campaign,
		newEmployee.Status,
		newEmployee.JoinDate,
		newEmployee.LastWorkingDate,
		newEmployee.PersonalEmail,
		newEmployee.EmergencyName,
		newEmployee.EmergencyPhone,
		newEmployee.Notes,
	))
	if err != nil {
		if IsUniqueViolation(err) {
			return employee.Employee{}, employee.ErrEmployeeNumberExists
		}
		if IsForeignKeyViolation(err) {
			return employee.Employee{}, employee.ErrLinkedUserNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return created, nil
}

// nullable turns "" into NULL for optional columns.
func nullable(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

// nullableDate parses YYYY-MM-DD, "" becomes NULL.
func nullableDate(v string) interface{} {
	if v == "" {
		return nil
	}
	t, _ := time.Parse("2006-01-02", v)
	return t
}

// Update implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Update(ctx context.Context, req employee.UpdateEmployeeRequest) error {
	q := GetQuerier(ctx, e.db)

	updates := make(map[string]interface{})

	if req.UserID != nil {
		updates["user_id"] = nullable(*req.UserID)
	}
	if req.EmployeeNumber != nil {
		updates["employee_number"] = strings.TrimSpace(*req.EmployeeNumber)
	}
	if req.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		updates["email"] = nullable(*req.Email)
	}
	if req.Phone != nil {
		updates["phone"] = nullable(*req.Phone)
	}
	if req.Position != nil {
		updates["position"] = nullable(*req.Position)
	}
	if req.Department != nil {
		updates["department"] = *req.Department
	}
	if req.Campaign != nil {
		updates["campaign"] = *req.Campaign
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.JoinDate != nil {
		updates["join_date"] = nullableDate(*req.JoinDate)
	}
	if req.LastWorkingDate != nil {
		updates["last_working_date"] = nullableDate(*req.LastWorkingDate)
	}
	if req.PersonalEmail != nil {
		updates["personal_email"] = nullable(*req.PersonalEmail)
	}
	if req.EmergencyName != nil {
		updates["emergency_name"] = nullable(*req.EmergencyName)
	}
	if req.EmergencyPhone != nil {
		updates["emergency_phone"] = nullable(*req.EmergencyPhone)
	}
	if req.Notes != nil {
		updates["notes"] = nullable(*req.Notes)
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

	sql := fmt.Sprintf("UPDATE employees SET %s WHERE id = $%d RETURNING id", strings.Join(setClauses, ", "), i)
	args = append(args, req.ID)

	var updatedID string
	if err := q.QueryRow(ctx, sql, args...).Scan(&updatedID); err != nil {
		if err == pgx.ErrNoRows {
			return employee.ErrEmployeeNotFound
		}
		if IsUniqueViolation(err) {
			return employee.ErrEmployeeNumberExists
		}
		if IsForeignKeyViolation(err) {
			return employee.ErrLinkedUserNotFound
		}
		return fmt.Errorf("failed to update employee with id %s: %w", req.ID, err)
	}
	return nil
}

// Delete implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, e.db)
	tag, err := q.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// List implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, e.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(e.first_name ILIKE $%d OR e.last_name ILIKE $%d OR e.email ILIKE $%d OR e.employee_number ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx))
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.Campaign != nil && *filter.Campaign != "" {
		conditions = append(conditions, fmt.Sprintf("e.campaign = $%d", argIdx))
		args = append(args, *filter.Campaign)
		argIdx++
	}
	if filter.Department != nil && *filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("e.department = $%d", argIdx))
		args = append(args, *filter.Department)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM employees e WHERE %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	validSortColumns := map[string]string{
		"first_name":      "e.first_name",
		"last_name":       "e.last_name",
		"employee_number": "e.employee_number",
		"join_date":       "e.join_date",
		"campaign":        "e.campaign",
		"department":      "e.department",
		"status":          "e.status",
		"created_at":      "e.created_at",
	}
	sortColumn, ok := validSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "e.created_at"
	}
	sortOrder := "DESC"
	if strings.ToUpper(filter.SortOrder) == "ASC" {
		sortOrder = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM employees e
		WHERE %s
		ORDER BY %s %s, e.id
		LIMIT $%d OFFSET $%d
	`, employeeColumns, whereClause, sortColumn, sortOrder, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	employees, err := collectEmployees(rows)
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

// ListActive implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)
	rows, err := q.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM employees e
		WHERE e.status = 'active'
		ORDER BY e.campaign, e.last_name, e.first_name
	`, employeeColumns))
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	return collectEmployees(rows)
}

// ListByDepartment implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListByDepartment(ctx context.Context, department string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)
	rows, err := q.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM employees e
		WHERE e.department = $1
		ORDER BY e.last_name, e.first_name
	`, employeeColumns), department)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees by department: %w", err)
	}
	return collectEmployees(rows)
}

// Stats implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Stats(ctx context.Context, monthStart time.Time) (employee.Stats, error) {
	q := GetQuerier(ctx, e.db)

	stats := employee.Stats{
		ByStatus:     make(map[string]int64),
		ByCampaign:   make(map[string]int64),
		ByDepartment: make(map[string]int64),
	}

	err := q.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE join_date >= $1)
		FROM employees
	`, monthStart).Scan(&stats.Total, &stats.JoinedThisMonth)
	if err != nil {
		return employee.Stats{}, fmt.Errorf("failed to count employees: %w", err)
	}

	groups := []struct {
		column string
		into   map[string]int64
	}{
		{"status", stats.ByStatus},
		{"campaign", stats.ByCampaign},
		{"department", stats.ByDepartment},
	}
	for _, g := range groups {
		rows, err := q.Query(ctx, fmt.Sprintf(`SELECT %s, COUNT(*) FROM employees GROUP BY %s`, g.column, g.column))
		if err != nil {
			return employee.Stats{}, fmt.Errorf("failed to group employees by %s: %w", g.column, err)
		}
		for rows.Next() {
			var key string
			var n int64
			if err := rows.Scan(&key, &n); err != nil {
				rows.Close()
				return employee.Stats{}, err
			}
			g.into[key] = n
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return employee.Stats{}, err
		}
	}
	return stats, nil
}

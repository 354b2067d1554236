package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/schedule"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const shiftColumns = `
	s.id, s.employee_id, s.day_of_week, s.start_time, s.end_time, s.shift_type, s.notes,
	s.created_at, s.updated_at, s.deleted_at,
	e.first_name || ' ' || e.last_name, e.employee_number`

const entryColumns = `
	se.id, se.employee_id, se.date, se.shift_code, se.is_off, se.shift_start, se.shift_end,
	se.blocks, se.campaign, se.created_at,
	e.first_name || ' ' || e.last_name, e.employee_number`

type scheduleRepositoryImpl struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) schedule.ScheduleRepository {
	return &scheduleRepositoryImpl{db: db}
}

func scanShift(row pgx.Row) (schedule.Shift, error) {
	var s schedule.Shift
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.DayOfWeek, &s.StartTime, &s.EndTime, &s.ShiftType, &s.Notes,
		&s.CreatedAt, &s.UpdatedAt, &s.DeletedAt,
		&s.EmployeeName, &s.EmployeeNumber,
	)
	return s, err
}

func (r *scheduleRepositoryImpl) ListShifts(ctx context.Context, day *int) ([]schedule.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM shifts s
		JOIN employees e ON e.id = s.employee_id
		WHERE s.deleted_at IS NULL AND ($1::smallint IS NULL OR s.day_of_week = $1)
		ORDER BY s.day_of_week, s.start_time, e.employee_number
	`, shiftColumns)
	rows, err := q.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	defer rows.Close()

	shifts := make([]schedule.Shift, 0)
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, s)
	}
	return shifts, rows.Err()
}

func (r *scheduleRepositoryImpl) GetShift(ctx context.Context, id string) (schedule.Shift, error) {
	q := GetQuerier(ctx, r.db)
	query := fmt.Sprintf(`
		SELECT %s
		FROM shifts s
		JOIN employees e ON e.id = s.employee_id
		WHERE s.id = $1 AND s.deleted_at IS NULL
	`, shiftColumns)
	s, err := scanShift(q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return schedule.Shift{}, schedule.ErrShiftNotFound
	}
	return s, err
}

func (r *scheduleRepositoryImpl) CreateShift(ctx context.Context, s schedule.Shift) (schedule.Shift, error) {
	q := GetQuerier(ctx, r.db)

	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO shifts (employee_id, day_of_week, start_time, end_time, shift_type, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, s.EmployeeID, s.DayOfWeek, s.StartTime, s.EndTime, s.ShiftType, s.Notes).Scan(&id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return schedule.Shift{}, schedule.ErrEmployeeNotFound
		}
		return schedule.Shift{}, fmt.Errorf("failed to create shift: %w", err)
	}
	return r.GetShift(ctx, id)
}

func (r *scheduleRepositoryImpl) UpdateShift(ctx context.Context, req schedule.UpdateShiftRequest) error {
	q := GetQuerier(ctx, r.db)

	updates := make(map[string]interface{})
	if req.DayOfWeek != nil {
		updates["day_of_week"] = *req.DayOfWeek
	}
	if req.StartTime != nil {
		updates["start_time"] = *req.StartTime
	}
	if req.EndTime != nil {
		updates["end_time"] = *req.EndTime
	}
	if req.ShiftType != nil {
		updates["shift_type"] = *req.ShiftType
	}
	if req.Notes != nil {
		updates["notes"] = nullable(*req.Notes)
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
	args = append(args, req.ID)

	sql := fmt.Sprintf("UPDATE shifts SET %s WHERE id = $%d AND deleted_at IS NULL", strings.Join(setClauses, ", "), i)
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update shift %s: %w", req.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrShiftNotFound
	}
	return nil
}

func (r *scheduleRepositoryImpl) SoftDeleteShift(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `UPDATE shifts SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrShiftNotFound
	}
	return nil
}

// LastChange is the latest write to the weekly roster, deletions included.
func (r *scheduleRepositoryImpl) LastChange(ctx context.Context) (time.Time, error) {
	q := GetQuerier(ctx, r.db)
	var last *time.Time
	if err := q.QueryRow(ctx, `SELECT MAX(updated_at) FROM shifts`).Scan(&last); err != nil {
		return time.Time{}, err
	}
	if last == nil {
		return time.Time{}, nil
	}
	return *last, nil
}

func (r *scheduleRepositoryImpl) UpsertEntries(ctx context.Context, entries []schedule.Entry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	batch := &pgx.Batch{}
	for _, e := range entries {
		blocks := e.Blocks
		if blocks == nil {
			blocks = []string{}
		}
		batch.Queue(`
			INSERT INTO schedule_entries (employee_id, date, shift_code, is_off, shift_start, shift_end, blocks, campaign)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (employee_id, date) DO UPDATE SET
				shift_code = EXCLUDED.shift_code,
				is_off = EXCLUDED.is_off,
				shift_start = EXCLUDED.shift_start,
				shift_end = EXCLUDED.shift_end,
				blocks = EXCLUDED.blocks,
				campaign = EXCLUDED.campaign
		`, e.EmployeeID, e.Date, e.ShiftCode, e.IsOff, e.ShiftStart, e.ShiftEnd, blocks, e.Campaign)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	var n int64
	for range entries {
		tag, err := results.Exec()
		if err != nil {
			if IsForeignKeyViolation(err) {
				return n, schedule.ErrEmployeeNotFound
			}
			return n, fmt.Errorf("failed to write schedule entry: %w", err)
		}
		n += tag.RowsAffected()
	}
	return n, nil
}

func (r *scheduleRepositoryImpl) ListEntries(ctx context.Context, filter schedule.EntryFilter) ([]schedule.Entry, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("se.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.From != nil && *filter.From != "" {
		conditions = append(conditions, fmt.Sprintf("se.date >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil && *filter.To != "" {
		conditions = append(conditions, fmt.Sprintf("se.date <= $%d", argIdx))
		args = append(args, *filter.To)
		argIdx++
	}
	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM schedule_entries se WHERE %s", whereClause)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count schedule entries: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM schedule_entries se
		JOIN employees e ON e.id = se.employee_id
		WHERE %s
		ORDER BY se.date, e.employee_number
		LIMIT $%d OFFSET $%d
	`, entryColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list schedule entries: %w", err)
	}
	defer rows.Close()

	entries := make([]schedule.Entry, 0)
	for rows.Next() {
		var e schedule.Entry
		if err := rows.Scan(
			&e.ID, &e.EmployeeID, &e.Date, &e.ShiftCode, &e.IsOff, &e.ShiftStart, &e.ShiftEnd,
			&e.Blocks, &e.Campaign, &e.CreatedAt,
			&e.EmployeeName, &e.EmployeeNumber,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/analytics"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type analyticsRepositoryImpl struct {
	db *database.DB
}

func NewAnalyticsRepository(db *database.DB) analytics.AnalyticsRepository {
	return &analyticsRepositoryImpl{db: db}
}

// DashboardCounts returns every dashboard tile in a single query
func (r *analyticsRepositoryImpl) DashboardCounts(ctx context.Context, now time.Time) (analytics.DashboardCounts, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			(SELECT COUNT(*) FROM employees),
			(SELECT COUNT(*) FROM employees WHERE status = 'active'),
			(SELECT COUNT(*) FROM departments WHERE is_active = TRUE),
			(SELECT COUNT(*) FROM workflows WHERE status = 'active'),
			(SELECT COUNT(*) FROM workflow_tasks WHERE status IN ('pending', 'in_progress')),
			(SELECT COUNT(*) FROM workflow_tasks WHERE status = 'in_progress' AND due_at < $1),
			(SELECT COUNT(*) FROM workflow_tasks WHERE sla_breached = TRUE)
	`
	var c analytics.DashboardCounts
	err := q.QueryRow(ctx, query, now).Scan(
		&c.TotalEmployees, &c.ActiveEmployees, &c.Departments, &c.ActiveWorkflows,
		&c.OpenTasks, &c.OverdueTasks, &c.BreachedTasks,
	)
	if err != nil {
		return analytics.DashboardCounts{}, fmt.Errorf("failed to get dashboard counts: %w", err)
	}
	return c, nil
}

func (r *analyticsRepositoryImpl) InstanceStatusCounts(ctx context.Context) (map[string]int64, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT status, COUNT(*) FROM workflow_instances GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count instances by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func collectDaily(rows pgx.Rows) ([]analytics.DailyCount, error) {
	defer rows.Close()
	out := make([]analytics.DailyCount, 0)
	for rows.Next() {
		var d analytics.DailyCount
		if err := rows.Scan(&d.Day, &d.Opened, &d.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan daily count: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// TaskTrend counts tasks created and completed per day since the given time
func (r *analyticsRepositoryImpl) TaskTrend(ctx context.Context, since time.Time) ([]analytics.DailyCount, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT day, SUM(opened)::bigint, SUM(completed)::bigint
		FROM (
			SELECT created_at::date AS day, 1 AS opened, 0 AS completed
			FROM workflow_tasks WHERE created_at >= $1
			UNION ALL
			SELECT completed_at::date, 0, 1
			FROM workflow_tasks WHERE status = 'completed' AND completed_at >= $1
		) t
		GROUP BY day
		ORDER BY day
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get task trend: %w", err)
	}
	return collectDaily(rows)
}

// WorkflowTrend counts instances started and completed per day since the given time
func (r *analyticsRepositoryImpl) WorkflowTrend(ctx context.Context, since time.Time) ([]analytics.DailyCount, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT day, SUM(opened)::bigint, SUM(completed)::bigint
		FROM (
			SELECT started_at::date AS day, 1 AS opened, 0 AS completed
			FROM workflow_instances WHERE started_at >= $1
			UNION ALL
			SELECT completed_at::date, 0, 1
			FROM workflow_instances WHERE status = 'completed' AND completed_at >= $1
		) t
		GROUP BY day
		ORDER BY day
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow trend: %w", err)
	}
	return collectDaily(rows)
}

func (r *analyticsRepositoryImpl) ProcessPerformance(ctx context.Context, since time.Time) ([]analytics.ProcessStats, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT p.id, p.name, p.code,
			COUNT(i.id),
			COUNT(i.id) FILTER (WHERE i.status = 'completed'),
			COUNT(i.id) FILTER (WHERE i.sla_breached),
			COALESCE(AVG(EXTRACT(EPOCH FROM (i.completed_at - i.started_at)) / 60)
				FILTER (WHERE i.status = 'completed' AND i.started_at IS NOT NULL), 0)::float8
		FROM processes p
		LEFT JOIN workflows w ON w.process_id = p.id
		LEFT JOIN workflow_instances i ON i.workflow_id = w.id AND i.created_at >= $1
		GROUP BY p.id, p.name, p.code
		ORDER BY COUNT(i.id) DESC, p.name
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get process performance: %w", err)
	}
	defer rows.Close()

	out := make([]analytics.ProcessStats, 0)
	for rows.Next() {
		var s analytics.ProcessStats
		if err := rows.Scan(&s.ProcessID, &s.Name, &s.Code, &s.Instances, &s.Completed, &s.Breached, &s.AvgCompletionMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan process performance: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *analyticsRepositoryImpl) UserProductivity(ctx context.Context, since time.Time, limit int) ([]analytics.UserStats, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT u.id, u.full_name,
			COUNT(t.id),
			COUNT(t.id) FILTER (WHERE NOT t.sla_breached),
			COALESCE(AVG(EXTRACT(EPOCH FROM (t.completed_at - t.started_at)) / 60)
				FILTER (WHERE t.started_at IS NOT NULL), 0)::float8
		FROM workflow_tasks t
		JOIN users u ON u.id = t.assigned_to_id
		WHERE t.status = 'completed' AND t.completed_at >= $1
		GROUP BY u.id, u.full_name
		ORDER BY COUNT(t.id) DESC, u.full_name
		LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get user productivity: %w", err)
	}
	defer rows.Close()

	out := make([]analytics.UserStats, 0)
	for rows.Next() {
		var s analytics.UserStats
		if err := rows.Scan(&s.UserID, &s.Name, &s.Completed, &s.OnTime, &s.AvgMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan user productivity: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SLASummary only counts work that carried a due date.
func (r *analyticsRepositoryImpl) SLASummary(ctx context.Context, since time.Time) (analytics.SLAStats, error) {
	q := GetQuerier(ctx, r.db)
	var s analytics.SLAStats
	err := q.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM workflow_tasks WHERE due_at IS NOT NULL AND created_at >= $1),
			(SELECT COUNT(*) FROM workflow_tasks WHERE due_at IS NOT NULL AND created_at >= $1 AND sla_breached),
			(SELECT COUNT(*) FROM workflow_instances WHERE due_at IS NOT NULL AND created_at >= $1),
			(SELECT COUNT(*) FROM workflow_instances WHERE due_at IS NOT NULL AND created_at >= $1 AND sla_breached)
	`, since).Scan(&s.TrackedTasks, &s.BreachedTasks, &s.TrackedInstances, &s.BreachedInstances)
	if err != nil {
		return analytics.SLAStats{}, fmt.Errorf("failed to get sla summary: %w", err)
	}
	return s, nil
}

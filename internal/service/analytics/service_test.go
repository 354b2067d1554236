package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/analytics"
	"github.com/bpo-ops/ops-backend-go/internal/repository/postgresql"
	"github.com/bpo-ops/ops-backend-go/internal/repository/postgresql/pgtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	analytics.AnalyticsRepository
	since     time.Time
	statusErr error
}

func (s *stubRepo) DashboardCounts(context.Context, time.Time) (analytics.DashboardCounts, error) {
	return analytics.DashboardCounts{TotalEmployees: 12, OpenTasks: 5, OverdueTasks: 2}, nil
}

func (s *stubRepo) InstanceStatusCounts(context.Context) (map[string]int64, error) {
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	return map[string]int64{"in_progress": 3, "completed": 9}, nil
}

func (s *stubRepo) TaskTrend(_ context.Context, since time.Time) ([]analytics.DailyCount, error) {
	s.since = since
	return []analytics.DailyCount{{Day: since.AddDate(0, 0, 1), Opened: 2, Completed: 1}}, nil
}

func (s *stubRepo) SLASummary(context.Context, time.Time) (analytics.SLAStats, error) {
	return analytics.SLAStats{TrackedTasks: 20, BreachedTasks: 5}, nil
}

func newStubService(repo *stubRepo) *AnalyticsServiceImpl {
	svc := NewAnalyticsService(repo).(*AnalyticsServiceImpl)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestDashboard(t *testing.T) {
	svc := newStubService(&stubRepo{})
	res, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), res.TotalEmployees)
	assert.Equal(t, int64(9), res.InstancesByStatus["completed"])

	svc = newStubService(&stubRepo{statusErr: errors.New("boom")})
	_, err = svc.Dashboard(context.Background())
	assert.EqualError(t, err, "boom")
}

func TestTaskTrends(t *testing.T) {
	repo := &stubRepo{}
	svc := newStubService(repo)

	res, err := svc.TaskTrends(context.Background(), analytics.RangeFilter{Days: 3})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), repo.since)
	require.Len(t, res.Points, 3)
	assert.Equal(t, "2026-03-09", res.Points[1].Date)
	assert.Equal(t, int64(2), res.Points[1].Created)
	assert.Equal(t, "2026-03-10", res.Points[2].Date)

	_, err = svc.TaskTrends(context.Background(), analytics.RangeFilter{Days: -1})
	assert.Error(t, err)
}

func TestSLASummary(t *testing.T) {
	svc := newStubService(&stubRepo{})
	res, err := svc.SLASummary(context.Background(), analytics.RangeFilter{})
	require.NoError(t, err)
	assert.Equal(t, 30, res.Days)
	assert.Equal(t, 75.0, res.TaskCompliance)
	assert.Equal(t, 100.0, res.InstanceCompliance)
}

func TestQueriesOnEmptyDatabase(t *testing.T) {
	db := pgtest.Open(t)
	ctx := context.Background()
	svc := NewAnalyticsService(postgresql.NewAnalyticsRepository(db))

	dash, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Zero(t, dash.TotalEmployees)
	assert.Empty(t, dash.InstancesByStatus)

	f := analytics.RangeFilter{Days: 7}
	trend, err := svc.WorkflowTrends(ctx, f)
	require.NoError(t, err)
	assert.Len(t, trend.Points, 7)

	procs, err := svc.ProcessPerformance(ctx, f)
	require.NoError(t, err)
	assert.Empty(t, procs)

	users, err := svc.UserProductivity(ctx, f)
	require.NoError(t, err)
	assert.Empty(t, users)

	sla, err := svc.SLASummary(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 100.0, sla.TaskCompliance)
}

package analytics

import (
	"context"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/analytics"
	"golang.org/x/sync/errgroup"
)

type AnalyticsServiceImpl struct {
	analytics.AnalyticsRepository
	now func() time.Time
}

func NewAnalyticsService(repo analytics.AnalyticsRepository) analytics.AnalyticsService {
	return &AnalyticsServiceImpl{
		AnalyticsRepository: repo,
		now:                 time.Now,
	}
}

// Dashboard loads the tile counts and the instance status breakdown in parallel
func (s *AnalyticsServiceImpl) Dashboard(ctx context.Context) (analytics.DashboardResponse, error) {
	now := s.now()

	var (
		counts   analytics.DashboardCounts
		statuses map[string]int64
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.DashboardCounts(gCtx, now)
		return err
	})
	g.Go(func() error {
		var err error
		statuses, err = s.InstanceStatusCounts(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return analytics.DashboardResponse{}, err
	}

	return analytics.DashboardResponse{
		TotalEmployees:    counts.TotalEmployees,
		ActiveEmployees:   counts.ActiveEmployees,
		Departments:       counts.Departments,
		ActiveWorkflows:   counts.ActiveWorkflows,
		InstancesByStatus: statuses,
		OpenTasks:         counts.OpenTasks,
		OverdueTasks:      counts.OverdueTasks,
		BreachedTasks:     counts.BreachedTasks,
		GeneratedAt:       now,
	}, nil
}

// TaskTrends returns created/completed tasks for each of the last N days
func (s *AnalyticsServiceImpl) TaskTrends(ctx context.Context, filter analytics.RangeFilter) (analytics.TrendResponse, error) {
	if err := filter.Validate(); err != nil {
		return analytics.TrendResponse{}, err
	}
	since := filter.Since(s.now())
	rows, err := s.TaskTrend(ctx, since)
	if err != nil {
		return analytics.TrendResponse{}, err
	}

	points := make([]analytics.TrendPoint, 0, filter.Days)
	for _, d := range analytics.FillDays(rows, since, filter.Days) {
		points = append(points, analytics.TrendPoint{Date: d.Day.Format("2006-01-02"), Created: d.Opened, Completed: d.Completed})
	}
	return analytics.TrendResponse{Days: filter.Days, Points: points}, nil
}

// WorkflowTrends returns started/completed instances for each of the last N days
func (s *AnalyticsServiceImpl) WorkflowTrends(ctx context.Context, filter analytics.RangeFilter) (analytics.TrendResponse, error) {
	if err := filter.Validate(); err != nil {
		return analytics.TrendResponse{}, err
	}
	since := filter.Since(s.now())
	rows, err := s.WorkflowTrend(ctx, since)
	if err != nil {
		return analytics.TrendResponse{}, err
	}

	points := make([]analytics.TrendPoint, 0, filter.Days)
	for _, d := range analytics.FillDays(rows, since, filter.Days) {
		points = append(points, analytics.TrendPoint{Date: d.Day.Format("2006-01-02"), Started: d.Opened, Completed: d.Completed})
	}
	return analytics.TrendResponse{Days: filter.Days, Points: points}, nil
}

func (s *AnalyticsServiceImpl) ProcessPerformance(ctx context.Context, filter analytics.RangeFilter) ([]analytics.ProcessPerformance, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	stats, err := s.AnalyticsRepository.ProcessPerformance(ctx, filter.Since(s.now()))
	if err != nil {
		return nil, err
	}
	out := make([]analytics.ProcessPerformance, 0, len(stats))
	for _, st := range stats {
		out = append(out, analytics.ToProcessPerformance(st))
	}
	return out, nil
}

func (s *AnalyticsServiceImpl) UserProductivity(ctx context.Context, filter analytics.RangeFilter) ([]analytics.UserProductivity, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	stats, err := s.AnalyticsRepository.UserProductivity(ctx, filter.Since(s.now()), filter.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]analytics.UserProductivity, 0, len(stats))
	for _, st := range stats {
		out = append(out, analytics.ToUserProductivity(st))
	}
	return out, nil
}

func (s *AnalyticsServiceImpl) SLASummary(ctx context.Context, filter analytics.RangeFilter) (analytics.SLASummaryResponse, error) {
	if err := filter.Validate(); err != nil {
		return analytics.SLASummaryResponse{}, err
	}
	st, err := s.AnalyticsRepository.SLASummary(ctx, filter.Since(s.now()))
	if err != nil {
		return analytics.SLASummaryResponse{}, err
	}
	return analytics.SLASummaryResponse{
		Days:               filter.Days,
		TotalTasks:         st.TrackedTasks,
		BreachedTasks:      st.BreachedTasks,
		TaskCompliance:     analytics.Compliance(st.TrackedTasks, st.BreachedTasks),
		TotalInstances:     st.TrackedInstances,
		BreachedInstances:  st.BreachedInstances,
		InstanceCompliance: analytics.Compliance(st.TrackedInstances, st.BreachedInstances),
	}, nil
}

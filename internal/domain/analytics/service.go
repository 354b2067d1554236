package analytics

import "context"

type AnalyticsService interface {
	// Dashboard returns the headline counts, loaded concurrently
	Dashboard(ctx context.Context) (DashboardResponse, error)
	TaskTrends(ctx context.Context, filter RangeFilter) (TrendResponse, error)
	WorkflowTrends(ctx context.Context, filter RangeFilter) (TrendResponse, error)
	ProcessPerformance(ctx context.Context, filter RangeFilter) ([]ProcessPerformance, error)
	UserProductivity(ctx context.Context, filter RangeFilter) ([]UserProductivity, error)
	SLASummary(ctx context.Context, filter RangeFilter) (SLASummaryResponse, error)
}

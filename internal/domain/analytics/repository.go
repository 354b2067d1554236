package analytics

import (
	"context"
	"time"
)

// DashboardCounts is the single-row summary behind the dashboard tiles.
type DashboardCounts struct {
	TotalEmployees  int64
	ActiveEmployees int64
	Departments     int64
	ActiveWorkflows int64
	OpenTasks       int64
	OverdueTasks    int64
	BreachedTasks   int64
}

// DailyCount is one day of a two-series trend, e.g. created/completed.
type DailyCount struct {
	Day       time.Time
	Opened    int64
	Completed int64
}

type ProcessStats struct {
	ProcessID            string
	Name                 string
	Code                 string
	Instances            int64
	Completed            int64
	Breached             int64
	AvgCompletionMinutes float64
}

type UserStats struct {
	UserID     string
	Name       string
	Completed  int64
	OnTime     int64
	AvgMinutes float64
}

type SLAStats struct {
	TrackedTasks      int64
	BreachedTasks     int64
	TrackedInstances  int64
	BreachedInstances int64
}

type AnalyticsRepository interface {
	DashboardCounts(ctx context.Context, now time.Time) (DashboardCounts, error)
	InstanceStatusCounts(ctx context.Context) (map[string]int64, error)
	TaskTrend(ctx context.Context, since time.Time) ([]DailyCount, error)
	WorkflowTrend(ctx context.Context, since time.Time) ([]DailyCount, error)
	ProcessPerformance(ctx context.Context, since time.Time) ([]ProcessStats, error)
	UserProductivity(ctx context.Context, since time.Time, limit int) ([]UserStats, error)
	SLASummary(ctx context.Context, since time.Time) (SLAStats, error)
}

package analytics

import (
	"math"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/pkg/validator"
)

const (
	DefaultDays = 30
	MaxDays     = 365
	DefaultTop  = 10
)

// ========== FILTER ==========

// RangeFilter selects the trailing window, in days, a report covers.
type RangeFilter struct {
	Days  int
	Limit int
}

func (f *RangeFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Days == 0 {
		f.Days = DefaultDays
	}
	if f.Days < 1 || f.Days > MaxDays {
		errs.Add("days", "days must be between 1 and 365")
	}
	if f.Limit == 0 {
		f.Limit = DefaultTop
	}
	if f.Limit < 1 || f.Limit > 100 {
		errs.Add("limit", "limit must be between 1 and 100")
	}
	return errs.OrNil()
}

// Since is the start of the window: midnight of the first day, days-1 days before now.
func (f RangeFilter) Since(now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, -(f.Days - 1))
}

// ========== DASHBOARD ==========

type DashboardResponse struct {
	TotalEmployees    int64            `json:"total_employees"`
	ActiveEmployees   int64            `json:"active_employees"`
	Departments       int64            `json:"departments"`
	ActiveWorkflows   int64            `json:"active_workflows"`
	InstancesByStatus map[string]int64 `json:"instances_by_status"`
	OpenTasks         int64            `json:"open_tasks"`
	OverdueTasks      int64            `json:"overdue_tasks"`
	BreachedTasks     int64            `json:"breached_tasks"`
	GeneratedAt       time.Time        `json:"generated_at"`
}

// ========== TRENDS ==========

type TrendPoint struct {
	Date      string `json:"date"`
	Created   int64  `json:"created,omitempty"`
	Started   int64  `json:"started,omitempty"`
	Completed int64  `json:"completed"`
}

type TrendResponse struct {
	Days   int          `json:"days"`
	Points []TrendPoint `json:"points"`
}

// FillDays returns one count per day starting at from, with zeroes where rows has no entry.
func FillDays(rows []DailyCount, from time.Time, days int) []DailyCount {
	byDay := make(map[string]DailyCount, len(rows))
	for _, r := range rows {
		byDay[r.Day.Format("2006-01-02")] = r
	}
	out := make([]DailyCount, days)
	for i := 0; i < days; i++ {
		d := from.AddDate(0, 0, i)
		c := byDay[d.Format("2006-01-02")]
		c.Day = d
		out[i] = c
	}
	return out
}

// ========== PERFORMANCE ==========

type ProcessPerformance struct {
	ProcessID            string  `json:"process_id"`
	Name                 string  `json:"name"`
	Code                 string  `json:"code"`
	Instances            int64   `json:"instances"`
	Completed            int64   `json:"completed"`
	AvgCompletionMinutes float64 `json:"avg_completion_minutes"`
	BreachRate           float64 `json:"breach_rate"`
}

type UserProductivity struct {
	UserID     string  `json:"user_id"`
	Name       string  `json:"name"`
	Completed  int64   `json:"completed"`
	OnTime     int64   `json:"on_time"`
	OnTimeRate float64 `json:"on_time_rate"`
	AvgMinutes float64 `json:"avg_minutes"`
}

// ========== SLA ==========

type SLASummaryResponse struct {
	Days               int     `json:"days"`
	TotalTasks         int64   `json:"total_tasks"`
	BreachedTasks      int64   `json:"breached_tasks"`
	TaskCompliance     float64 `json:"task_compliance"`
	TotalInstances     int64   `json:"total_instances"`
	BreachedInstances  int64   `json:"breached_instances"`
	InstanceCompliance float64 `json:"instance_compliance"`
}

// Percent is part/total as a percentage rounded to two decimals; 0 when total is 0.
func Percent(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}

// Compliance is the share of items that did not breach. An empty set is fully compliant.
func Compliance(total, breached int64) float64 {
	if total <= 0 {
		return 100
	}
	return Percent(total-breached, total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ToProcessPerformance(s ProcessStats) ProcessPerformance {
	return ProcessPerformance{
		ProcessID:            s.ProcessID,
		Name:                 s.Name,
		Code:                 s.Code,
		Instances:            s.Instances,
		Completed:            s.Completed,
		AvgCompletionMinutes: round2(s.AvgCompletionMinutes),
		BreachRate:           Percent(s.Breached, s.Instances),
	}
}

func ToUserProductivity(s UserStats) UserProductivity {
	return UserProductivity{
		UserID:     s.UserID,
		Name:       s.Name,
		Completed:  s.Completed,
		OnTime:     s.OnTime,
		OnTimeRate: Percent(s.OnTime, s.Completed),
		AvgMinutes: round2(s.AvgMinutes),
	}
}

package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeFilter(t *testing.T) {
	f := RangeFilter{}
	require.NoError(t, f.Validate())
	assert.Equal(t, DefaultDays, f.Days)
	assert.Equal(t, DefaultTop, f.Limit)

	f = RangeFilter{Days: 400, Limit: -1}
	err := f.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "days")
	assert.Contains(t, err.Error(), "limit")

	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), RangeFilter{Days: 7}.Since(now))
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), RangeFilter{Days: 1}.Since(now))
}

func TestFillDays(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []DailyCount{
		{Day: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), Opened: 4, Completed: 1},
		{Day: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), Completed: 3},
	}
	out := FillDays(rows, from, 4)
	require.Len(t, out, 4)
	assert.Equal(t, int64(0), out[0].Opened)
	assert.Equal(t, int64(4), out[1].Opened)
	assert.Equal(t, int64(0), out[2].Completed)
	assert.Equal(t, int64(3), out[3].Completed)
	assert.Equal(t, "2026-03-04", out[3].Day.Format("2006-01-02"))
}

func TestRates(t *testing.T) {
	assert.Equal(t, 0.0, Percent(3, 0))
	assert.Equal(t, 33.33, Percent(1, 3))
	assert.Equal(t, 100.0, Compliance(0, 0))
	assert.Equal(t, 75.0, Compliance(4, 1))

	p := ToProcessPerformance(ProcessStats{Instances: 8, Breached: 2, AvgCompletionMinutes: 12.3456})
	assert.Equal(t, 25.0, p.BreachRate)
	assert.Equal(t, 12.35, p.AvgCompletionMinutes)

	u := ToUserProductivity(UserStats{Completed: 0})
	assert.Equal(t, 0.0, u.OnTimeRate)
}

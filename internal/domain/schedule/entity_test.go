package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShiftCode(t *testing.T) {
	tests := []struct {
		code    string
		off     bool
		start   int
		end     int
		wantErr bool
	}{
		{code: "o", off: true},
		{code: " X ", off: true},
		{code: "a2307", start: 23, end: 7},
		{code: "A0716", start: 7, end: 16},
		{code: "a2407", wantErr: true},
		{code: "b0716", wantErr: true},
		{code: "a07", wantErr: true},
		{code: "a07xx", wantErr: true},
		{code: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			c, err := ParseShiftCode(tt.code)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidShiftCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.off, c.Off)
			assert.Equal(t, tt.start, c.StartHour)
			assert.Equal(t, tt.end, c.EndHour)
		})
	}
}

func TestShiftCodeBlocks(t *testing.T) {
	overnight, err := ParseShiftCode("a2307")
	require.NoError(t, err)
	blocks := overnight.Blocks()
	require.Len(t, blocks, 16)
	assert.Equal(t, "23:00-23:30", blocks[0])
	assert.Equal(t, "23:30-00:00", blocks[1])
	assert.Equal(t, "06:30-07:00", blocks[15])
	assert.Equal(t, "23:00", overnight.Start())
	assert.Equal(t, "07:00", overnight.End())

	day, err := ParseShiftCode("a0716")
	require.NoError(t, err)
	assert.Len(t, day.Blocks(), 18)

	off, err := ParseShiftCode("o")
	require.NoError(t, err)
	assert.Empty(t, off.Blocks())
}

func TestShiftCodeExpandDates(t *testing.T) {
	// 2026-01-12 is a Monday.
	from := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC)

	work, _ := ParseShiftCode("a0716")
	assert.Len(t, work.ExpandDates(from, to), 7)

	off, _ := ParseShiftCode("o")
	days := off.ExpandDates(from, to)
	require.Len(t, days, 5)
	assert.Equal(t, time.Friday, days[4].Weekday())

	assert.Empty(t, work.ExpandDates(to, from))
}

func TestDayHelpers(t *testing.T) {
	idx, ok := DayIndex("wednesday")
	assert.True(t, ok)
	assert.Equal(t, 2, idx)
	_, ok = DayIndex("someday")
	assert.False(t, ok)

	assert.Equal(t, 0, Weekday(time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 6, Weekday(time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC)))
}

func TestShiftDuration(t *testing.T) {
	assert.Equal(t, 9*time.Hour, Shift{StartTime: "07:00", EndTime: "16:00", ShiftType: ShiftRegular}.Duration())
	assert.Equal(t, 8*time.Hour, Shift{StartTime: "23:00", EndTime: "07:00", ShiftType: ShiftNight}.Duration())
	assert.Zero(t, Shift{ShiftType: ShiftOff}.Duration())
	assert.Zero(t, Shift{StartTime: "bad", EndTime: "07:00"}.Duration())
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "AM", Initials("ana maria cruz"))
	assert.Equal(t, "J", Initials("Jo"))
	assert.Equal(t, "", Initials("  "))
}

func TestAddShiftRequestValidate(t *testing.T) {
	day := 3
	req := AddShiftRequest{EmployeeID: "0199a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b", Day: "Friday", StartTime: "07:00", EndTime: "16:00"}
	require.NoError(t, req.Validate())
	assert.Equal(t, 4, *req.DayOfWeek)
	assert.Equal(t, "regular", req.ShiftType)

	req = AddShiftRequest{EmployeeID: "0199a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b", DayOfWeek: &day, ShiftType: "off"}
	require.NoError(t, req.Validate())

	req = AddShiftRequest{StartTime: "7am"}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "employee_id")
	assert.Contains(t, err.Error(), "day_of_week")
	assert.Contains(t, err.Error(), "start_time")
}

package attendance

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(date, cluster, campaign, name string, s Status) Record {
	return Record{Date: date, Cluster: cluster, Campaign: campaign, EmployeeName: name, Status: s}
}

func TestDeduction(t *testing.T) {
	tests := []struct {
		status Status
		hours  int
	}{
		{StatusPresent, 0},
		{StatusHalfDay, 4},
		{StatusLate, 1},
		{StatusAbsent, 8},
		{StatusVacation, 0},
		{StatusSuspended, 0},
		{StatusDayOff, 0},
		{StatusTerminated, 8},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got, ok := Deduction(tt.status)
			require.True(t, ok)
			assert.Equal(t, tt.hours, got)
		})
	}

	_, ok := Deduction("X")
	assert.False(t, ok)
	assert.Len(t, Statuses, len(StatusConfig))
}

func TestSummarize(t *testing.T) {
	rows := []Record{
		rec("2024-03-01", "Sup A", "Alpha", "Ana", StatusPresent),
		rec("2024-03-02", "Sup A", "Alpha", "Ana", StatusAbsent),
		rec("2024-03-02", "Sup A", "Alpha", "Ben", StatusHalfDay),
		rec("2024-03-02", "Sup B", "Beta", "Cid", StatusLate),
		rec("2024-03-03", "Sup B", "Beta", "Cid", "??"),
	}

	s := Summarize(rows)

	assert.Equal(t, 1, s.Overall.P)
	assert.Equal(t, 1, s.Overall.A)
	assert.Equal(t, 1, s.Overall.HD)
	assert.Equal(t, 1, s.Overall.L)
	assert.Equal(t, 13, s.Overall.LostHours)

	require.Contains(t, s.Campaigns, "Alpha")
	require.Contains(t, s.Campaigns, "Beta")
	assert.Equal(t, 12, s.Campaigns["Alpha"].LostHours)
	assert.Equal(t, 1, s.Campaigns["Beta"].LostHours)
	assert.Equal(t, 1, s.Campaigns["Beta"].L)
}

func TestBuildCalendars(t *testing.T) {
	rows := []Record{
		rec("2024-03-01", "Sup A", "Alpha", "Ana", StatusPresent),
		rec("2024-03-31", "Sup A", "Alpha", "Ana", StatusDayOff),
		rec("2024-03-15", "Sup A", "Alpha", "Ben", ""),
		rec("bad-date", "Sup A", "Alpha", "Ana", StatusAbsent),
	}

	cal := BuildCalendars(rows)

	ana := cal["Alpha"]["Ana"]
	require.Len(t, ana, CalendarDays)
	assert.Equal(t, "P", ana[0])
	assert.Equal(t, "Off", ana[30])
	assert.Equal(t, NoEntry, ana[14])

	ben := cal["Alpha"]["Ben"]
	require.Len(t, ben, CalendarDays)
	assert.Equal(t, NoEntry, ben[14], "empty status renders as NA")
}

func TestFilterRows(t *testing.T) {
	rows := []Record{
		rec("2024-03-01", "Sup A", "Alpha", "Ana", StatusPresent),
		rec("2024-04-01", "Sup A", "Alpha", "Ana", StatusPresent),
		rec("2024-03-05", "Sup B", "Beta", "Cid", StatusLate),
		rec("garbage", "Sup B", "Beta", "Cid", StatusLate),
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"no filter keeps everything", Filter{}, 4},
		{"month only", Filter{Month: 3}, 2},
		{"cluster only", Filter{Cluster: "Sup B"}, 2},
		{"month and cluster", Filter{Month: 3, Cluster: "Sup A"}, 1},
		{"no match", Filter{Month: 12}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, FilterRows(rows, tt.filter), tt.want)
		})
	}
}

func TestClusters(t *testing.T) {
	rows := []Record{
		rec("2024-03-01", "Sup B", "", "", StatusPresent),
		rec("2024-03-01", "", "", "", StatusPresent),
		rec("2024-03-01", "Sup A", "", "", StatusPresent),
		rec("2024-03-02", "Sup B", "", "", StatusPresent),
	}
	assert.Equal(t, []string{"Sup A", "Sup B"}, Clusters(rows))
}

func TestSummarizeDay(t *testing.T) {
	rows := []Record{
		rec("2024-03-01", "Sup A", "Alpha", "Ana", StatusPresent),
		rec("2024-03-01", "Sup A", "Alpha", "Ben", StatusLate),
		rec("2024-03-01", "Sup A", "Alpha", "Cid", StatusVacation),
		rec("2024-03-01", "Sup A", "Alpha", "Dee", StatusSuspended),
	}

	s := SummarizeDay(rows)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Present)
	assert.Equal(t, 1, s.Late)
	assert.Equal(t, 0, s.Absent)
	assert.Equal(t, 1, s.OnLeave)
	assert.Equal(t, 1, s.ByStatus[StatusSuspended])
	assert.Equal(t, 0, s.ByStatus[StatusTerminated])

	raw, err := json.Marshal(SummarizeDay(rows[:1]))
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":1,"present":1,"late":0,"absent":0,"onLeave":0,
		"byStatus":{"P":1,"HD":0,"L":0,"A":0,"VL":0,"SUS":0,"Off":0,"T":0}}`, string(raw))
}

func TestSameName(t *testing.T) {
	assert.True(t, SameName(" sup a", "Sup A "))
	assert.False(t, SameName("Sup A", "Sup B"))

	r := rec("2024-03-01", "Sup A", "Alpha", "Ana", StatusPresent)
	assert.True(t, r.Matches(Key{Date: "2024-03-01", Supervisor: "SUP A", Agent: "ana"}))
	assert.False(t, r.Matches(Key{Date: "2024-03-02", Supervisor: "Sup A", Agent: "Ana"}))
}

func TestDiff(t *testing.T) {
	old := Record{Date: "2024-03-01", Cluster: "Sup A", EmployeeName: "Ana", Status: StatusPresent, ShiftStart: "08:00"}
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	entries := Diff(old, Change{Status: StatusLate, ShiftStart: "08:00", Notes: "traffic"}, "lead@example.com", at)

	require.Len(t, entries, 2)
	assert.Equal(t, "Status", entries[0].Field)
	assert.Equal(t, "P", entries[0].OldValue)
	assert.Equal(t, "L", entries[0].NewValue)
	assert.Equal(t, "Notes", entries[1].Field)
	assert.Equal(t, "lead@example.com", entries[1].EditedBy)

	assert.Empty(t, Diff(old, Change{Status: StatusPresent, ShiftStart: "08:00"}, "x", at))
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("", "Sup A")
	require.NoError(t, err)
	assert.Equal(t, Filter{Cluster: "Sup A"}, f)

	f, err = ParseFilter("3", "")
	require.NoError(t, err)
	assert.Equal(t, 3, f.Month)

	_, err = ParseFilter("13", "")
	assert.ErrorIs(t, err, ErrInvalidMonth)
	_, err = ParseFilter("march", "")
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestSaveRecordRequestValidate(t *testing.T) {
	valid := SaveRecordRequest{Date: "2024-03-01", Supervisor: "Sup A", AgentName: "Ana", Status: "P", ShiftStart: "08:00"}
	assert.NoError(t, valid.Validate())

	bad := SaveRecordRequest{Date: "03/01/2024", Status: "Z", ShiftEnd: "25:00"}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status")
}

package attendance

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/attendance"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/workbook"
	"github.com/bpo-ops/ops-backend-go/internal/repository/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *AttendanceServiceImpl {
	t.Helper()
	store, err := workbook.Open(filepath.Join(t.TempDir(), "ops.xlsx"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, sheet.Bootstrap(store))

	svc := NewAttendanceService(sheet.NewAttendanceRepository(store)).(*AttendanceServiceImpl)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	for _, m := range []attendance.TeamMemberRequest{
		{Supervisor: "Sup A", Agent: "Ana", Campaign: "Alpha"},
		{Supervisor: "Sup A", Agent: "Ben", Campaign: "Alpha"},
		{Supervisor: "Sup B", Agent: "Cid", Campaign: "Beta"},
	} {
		require.NoError(t, svc.AddTeamMember(ctx, m))
	}
	return svc
}

func saveReq(agent, status string) attendance.SaveRecordRequest {
	return attendance.SaveRecordRequest{
		Date:       "2024-03-01",
		Supervisor: "Sup A",
		AgentName:  agent,
		Status:     status,
		ShiftStart: "08:00",
		ShiftEnd:   "17:00",
	}
}

func TestListSupervisors(t *testing.T) {
	svc := newTestService(t)
	got, err := svc.ListSupervisors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Sup A", "Sup B"}, got)
}

func TestAddTeamMember_Duplicate(t *testing.T) {
	svc := newTestService(t)
	err := svc.AddTeamMember(context.Background(), attendance.TeamMemberRequest{Supervisor: "sup a", Agent: " ana "})
	assert.ErrorIs(t, err, attendance.ErrTeamMemberExists)
}

func TestSaveRecord_DuplicateIsRejected(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.SaveRecord(ctx, saveReq("Ana", "P"))
	require.NoError(t, err)
	assert.True(t, first.Success)

	second, err := svc.SaveRecord(ctx, saveReq("Ana", "A"))
	require.NoError(t, err)
	assert.False(t, second.Success)
	assert.True(t, second.Duplicate)
	assert.Equal(t, "Record for Ana already exists.", second.Message)

	records, err := svc.GetRecords(ctx, "2024-03-01", "Sup A")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "P", records[0].Status)
	assert.Equal(t, "Unknown User", records[0].RecordedBy)
}

func TestSaveRecord_ConcurrentDuplicates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	saved := 0
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.SaveRecord(ctx, saveReq("Ben", "L"))
			if err == nil && res.Success {
				mu.Lock()
				saved++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, saved)
}

func TestSaveRecord_InvalidStatus(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.SaveRecord(context.Background(), saveReq("Ana", "ZZ"))
	assert.Error(t, err)
}

func TestGetTeamList_FlagsExisting(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.SaveRecord(ctx, saveReq("Ana", "P"))
	require.NoError(t, err)

	team, err := svc.GetTeamList(ctx, "Sup A", "2024-03-01")
	require.NoError(t, err)
	require.Len(t, team, 2)
	assert.Equal(t, "Ana", team[0].Agent)
	assert.True(t, team[0].Exists)
	assert.False(t, team[1].Exists)
}

func TestSaveRecord_MixedCaseUsesRosterSpelling(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.SaveRecord(ctx, attendance.SaveRecordRequest{
		Date: "2024-03-01", Supervisor: "sup a", AgentName: " ana ", Status: "A",
	})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "Saved new record for Ana", res.Message)

	team, err := svc.GetTeamList(ctx, "Sup A", "2024-03-01")
	require.NoError(t, err)
	require.Len(t, team, 2)
	assert.True(t, team[0].Exists)

	records, err := svc.GetRecords(ctx, "SUP A", "2024-03-01")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ana", records[0].Agent)

	summary, err := svc.DailySummary(ctx, "2024-03-01", "Sup A")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)

	dup, err := svc.SaveRecord(ctx, saveReq("Ana", "P"))
	require.NoError(t, err)
	assert.True(t, dup.Duplicate)

	dash, err := svc.Summary(ctx, attendance.Filter{})
	require.NoError(t, err)
	assert.NotContains(t, dash.Campaigns, "")
	require.Contains(t, dash.Campaigns, "Alpha")
	assert.Equal(t, 8, dash.Campaigns["Alpha"].LostHours)

	raw, err := svc.Raw(ctx, attendance.Filter{})
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, "Sup A", raw[0].Cluster)
	assert.Equal(t, "Ana", raw[0].EmployeeName)
}

func TestQueryDates_NormalisedOrRejected(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.SaveRecord(ctx, saveReq("Ana", "P"))
	require.NoError(t, err)

	for _, date := range []string{"2024-3-1", "3/1/2024", "2024-03-01"} {
		records, err := svc.GetRecords(ctx, date, "Sup A")
		require.NoError(t, err, date)
		assert.Len(t, records, 1, date)
	}

	_, err = svc.GetRecords(ctx, "yesterday", "Sup A")
	assert.ErrorIs(t, err, attendance.ErrInvalidDate)
	_, err = svc.DailySummary(ctx, "", "Sup A")
	assert.ErrorIs(t, err, attendance.ErrInvalidDate)
	_, err = svc.GetTeamList(ctx, "Sup A", "2024-13-01")
	assert.ErrorIs(t, err, attendance.ErrInvalidDate)

	res, err := svc.SaveRecord(ctx, attendance.SaveRecordRequest{Date: "2024-3-1", Supervisor: "Sup A", AgentName: "Ana", Status: "P"})
	require.NoError(t, err)
	assert.True(t, res.Duplicate, "unpadded date hits the same key")
}

func TestUpdateRecord_WritesHistory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.SaveRecord(ctx, saveReq("Ana", "P"))
	require.NoError(t, err)

	res, err := svc.UpdateRecord(ctx, attendance.UpdateRecordRequest{
		Date: "2024-03-01", Supervisor: "Sup A", AgentName: "Ana",
		Status: "L", ShiftStart: "08:30", ShiftEnd: "17:00", Notes: "traffic",
	})
	require.NoError(t, err)
	assert.True(t, res.Success)

	history, err := svc.ListHistory(ctx, attendance.HistoryFilter{Agent: "Ana"})
	require.NoError(t, err)
	require.Len(t, history, 3)
	fields := []string{history[0].Field, history[1].Field, history[2].Field}
	assert.Equal(t, []string{"Status", "Shift Start", "Notes"}, fields)

	summary, err := svc.DailySummary(ctx, "2024-03-01", "Sup A")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Late)
}

func TestUpdateRecord_Missing(t *testing.T) {
	svc := newTestService(t)
	res, err := svc.UpdateRecord(context.Background(), attendance.UpdateRecordRequest{
		Date: "2024-03-01", Supervisor: "Sup A", AgentName: "Nobody", Status: "P",
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "No record found to update.", res.Message)
}

func TestDashboard(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.SaveRecord(ctx, saveReq("Ana", "A"))
	require.NoError(t, err)
	_, err = svc.SaveRecord(ctx, attendance.SaveRecordRequest{Date: "2024-04-02", Supervisor: "Sup B", AgentName: "Cid", Status: "HD"})
	require.NoError(t, err)

	clusters, err := svc.Clusters(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sup A", "Sup B"}, clusters)

	summary, err := svc.Summary(ctx, attendance.Filter{Month: 3})
	require.NoError(t, err)
	assert.Equal(t, 8, summary.Overall.LostHours)
	assert.Contains(t, summary.Campaigns, "Alpha")
	assert.NotContains(t, summary.Campaigns, "Beta")

	cal, err := svc.Calendars(ctx, attendance.Filter{Cluster: "Sup B"})
	require.NoError(t, err)
	assert.Equal(t, "HD", cal["Beta"]["Cid"][1])

	raw, err := svc.Raw(ctx, attendance.Filter{})
	require.NoError(t, err)
	assert.Len(t, raw, 2)
}

package schedule

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/employee"
	"github.com/bpo-ops/ops-backend-go/internal/domain/schedule"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/validator"
	"github.com/bpo-ops/ops-backend-go/internal/repository/postgresql"
	"github.com/bpo-ops/ops-backend-go/internal/repository/postgresql/pgtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type stubEmployees struct {
	employee.EmployeeRepository
	list []employee.Employee
}

func (s *stubEmployees) ListActive(context.Context) ([]employee.Employee, error) { return s.list, nil }

func (s *stubEmployees) GetByNumbers(_ context.Context, numbers []string) (map[string]employee.Employee, error) {
	out := make(map[string]employee.Employee)
	for _, e := range s.list {
		for _, n := range numbers {
			if e.EmployeeNumber == n {
				out[n] = e
			}
		}
	}
	return out, nil
}

type stubSchedules struct {
	schedule.ScheduleRepository
	shifts   []schedule.Shift
	calls    int
	fail     bool
	upserted []schedule.Entry
}

func (s *stubSchedules) ListShifts(context.Context, *int) ([]schedule.Shift, error) {
	s.calls++
	if s.fail {
		return nil, errors.New("connection refused")
	}
	return s.shifts, nil
}

func (s *stubSchedules) LastChange(context.Context) (time.Time, error) { return time.Time{}, nil }

func (s *stubSchedules) UpsertEntries(_ context.Context, entries []schedule.Entry) (int64, error) {
	s.upserted = append(s.upserted, entries...)
	return int64(len(entries)), nil
}

func TestGetSchedule_CachesAndFallsBackToStale(t *testing.T) {
	emps := &stubEmployees{list: []employee.Employee{{ID: "e1", EmployeeNumber: "EMP1", FirstName: "Ana", LastName: "Cruz"}}}
	repo := &stubSchedules{shifts: []schedule.Shift{
		{ID: "s1", EmployeeID: "e1", DayOfWeek: 0, StartTime: "07:00", EndTime: "16:00", ShiftType: schedule.ShiftRegular},
		{ID: "s2", EmployeeID: "e1", DayOfWeek: 1, StartTime: "23:00", EndTime: "07:00", ShiftType: schedule.ShiftNight},
	}}
	svc := NewScheduleService(repo, emps, time.Minute, 0, nil).(*ScheduleServiceImpl)
	svc.now = func() time.Time { return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	view, err := svc.GetSchedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-12", view.Metadata.WeekStart)
	assert.Equal(t, "2026-01-18", view.Metadata.WeekEnd)
	require.Len(t, view.Employees, 1)
	assert.Equal(t, "AC", view.Employees[0].Initials)
	assert.InDelta(t, 17.0, view.Employees[0].HoursPerWeek, 0.001)

	_, err = svc.GetSchedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)

	monday := 0
	shifts, err := svc.GetShifts(ctx, &monday)
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, "s1", shifts[0].ID)

	bad := 9
	_, err = svc.GetShifts(ctx, &bad)
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	svc.invalidate()
	repo.fail = true
	view, err = svc.GetSchedule(ctx)
	require.NoError(t, err)
	assert.Len(t, view.Shifts, 2)
	assert.Equal(t, 2, repo.calls)
}

func TestGetSchedule_ErrorWithoutStaleCopy(t *testing.T) {
	svc := NewScheduleService(&stubSchedules{fail: true}, &stubEmployees{}, time.Minute, 0, nil)
	_, err := svc.GetSchedule(context.Background())
	assert.Error(t, err)
}

func TestTemplate(t *testing.T) {
	svc := NewScheduleService(&stubSchedules{}, &stubEmployees{}, time.Minute, 0, nil)
	lines := strings.Split(strings.TrimSpace(string(svc.Template())), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "employee_code,start_date,end_date,shift_code", lines[0])
	assert.Equal(t, "EMP1004,2026-01-12,2026-01-16,o", lines[4])
}

func TestBulkUpload_XLSXDateCells(t *testing.T) {
	emps := &stubEmployees{list: []employee.Employee{{ID: "e1", EmployeeNumber: "EMP1001", Campaign: "Acme"}}}
	repo := &stubSchedules{}
	svc := NewScheduleService(repo, emps, time.Minute, 10<<20, time.UTC)

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"employee_code", "start_date", "end_date", "shift_code"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{
		"EMP1001",
		time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC),
		"a0716",
	}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"EMP1001", 46037, 46037, "o"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	res, err := svc.BulkUpload(context.Background(), bytes.NewReader(buf.Bytes()), "roster.xlsx")
	require.NoError(t, err)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, 4, res.Inserted)
	require.Len(t, repo.upserted, 4)
	assert.Equal(t, "2026-01-12", repo.upserted[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2026-01-14", repo.upserted[2].Date.Format("2006-01-02"))
	assert.Equal(t, "2026-01-15", repo.upserted[3].Date.Format("2006-01-02"))
	assert.True(t, repo.upserted[3].IsOff)
}

func TestScheduleFlow(t *testing.T) {
	db := pgtest.Open(t)
	ctx := context.Background()

	employeeRepo := postgresql.NewEmployeeRepository(db)
	svc := NewScheduleService(postgresql.NewScheduleRepository(db), employeeRepo, time.Minute, 10<<20, time.UTC)

	ana, err := employeeRepo.Create(ctx, employee.Employee{EmployeeNumber: "EMP1001", FirstName: "Ana", LastName: "Cruz", Campaign: "Acme", Status: employee.StatusActive})
	require.NoError(t, err)
	_, err = employeeRepo.Create(ctx, employee.Employee{EmployeeNumber: "EMP1004", FirstName: "Ben", LastName: "Reyes", Campaign: "Acme", Status: employee.StatusActive})
	require.NoError(t, err)

	t.Run("weekly shifts", func(t *testing.T) {
		created, err := svc.AddShift(ctx, schedule.AddShiftRequest{EmployeeID: ana.ID, Day: "Monday", StartTime: "07:00", EndTime: "16:00"})
		require.NoError(t, err)
		assert.Equal(t, "Monday", created.Day)
		assert.Equal(t, 9.0, created.Hours)

		_, err = svc.AddShift(ctx, schedule.AddShiftRequest{EmployeeID: "0199a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b", Day: "Monday", StartTime: "07:00", EndTime: "16:00"})
		assert.ErrorIs(t, err, schedule.ErrEmployeeNotFound)

		view, err := svc.GetSchedule(ctx)
		require.NoError(t, err)
		assert.Len(t, view.Shifts, 1)

		end := "17:00"
		updated, err := svc.UpdateShift(ctx, schedule.UpdateShiftRequest{ID: created.ID, EndTime: &end})
		require.NoError(t, err)
		assert.Equal(t, "17:00", updated.EndTime)

		view, err = svc.GetSchedule(ctx)
		require.NoError(t, err)
		assert.Equal(t, "17:00", view.Shifts[0].EndTime)

		tuesday := 1
		res, err := svc.BatchUpdateShifts(ctx, schedule.BatchUpdateRequest{Shifts: []schedule.UpdateShiftRequest{{ID: created.ID, DayOfWeek: &tuesday}}})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Updated)

		var buf bytes.Buffer
		require.NoError(t, svc.ExportRoster(ctx, &buf))
		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		cell, err := f.GetCellValue("Roster", "E2")
		require.NoError(t, err)
		assert.Equal(t, "07:00-17:00", cell)

		require.NoError(t, svc.DeleteShift(ctx, created.ID))
		assert.ErrorIs(t, svc.DeleteShift(ctx, created.ID), schedule.ErrShiftNotFound)
		shifts, err := svc.GetShifts(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, shifts)
	})

	t.Run("bulk upload", func(t *testing.T) {
		csv := strings.Join([]string{
			"Employee_Code,Start_Date,End_Date,Shift_Code",
			"EMP1001,2026-01-12,2026-01-18,a2307",
			"EMP1004,2026-01-12,2026-01-18,o",
			"EMP9999,2026-01-12,2026-01-16,a0716",
			"EMP1001,2026-01-12,2026-01-16,zz",
		}, "\n")
		res, err := svc.BulkUpload(ctx, strings.NewReader(csv), "roster.csv")
		require.NoError(t, err)
		assert.Equal(t, 12, res.Inserted)
		require.Len(t, res.Skipped, 2)
		assert.Equal(t, 4, res.Skipped[0].Row)
		assert.Equal(t, "unknown employee", res.Skipped[0].Reason)
		assert.Equal(t, 5, res.Skipped[1].Row)

		from, to := "2026-01-12", "2026-01-12"
		list, err := svc.ListEntries(ctx, schedule.EntryFilter{EmployeeID: &ana.ID, From: &from, To: &to})
		require.NoError(t, err)
		require.Len(t, list.Entries, 1)
		entry := list.Entries[0]
		assert.Equal(t, "a2307", entry.ShiftCode)
		assert.Equal(t, "23:00", *entry.ShiftStart)
		assert.Len(t, entry.Blocks, 16)
		assert.Equal(t, "Acme", entry.Campaign)

		_, err = svc.BulkUpload(ctx, strings.NewReader("employee_code,shift_code\nEMP1001,o"), "roster.csv")
		assert.ErrorIs(t, err, schedule.ErrMissingColumns)
	})
}

package schedule

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/employee"
	"github.com/bpo-ops/ops-backend-go/internal/domain/schedule"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/pagination"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/tabular"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/validator"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/workbook"
	"github.com/patrickmn/go-cache"
	"github.com/xuri/excelize/v2"
)

const (
	viewKey      = "schedule:view"
	staleViewKey = "schedule:view:stale"
)

var templateRows = [][]string{
	{"employee_code", "start_date", "end_date", "shift_code"},
	{"EMP1001", "2026-01-12", "2026-01-16", "a2307"},
	{"EMP1002", "2026-01-12", "2026-01-16", "a0716"},
	{"EMP1003", "2026-01-12", "2026-01-16", "a1019"},
	{"EMP1004", "2026-01-12", "2026-01-16", "o"},
}

var uploadColumns = []string{"employee_code", "start_date", "end_date", "shift_code"}

type ScheduleServiceImpl struct {
	scheduleRepo   schedule.ScheduleRepository
	employeeRepo   employee.EmployeeRepository
	cache          *cache.Cache
	maxUploadBytes int64
	location       *time.Location
	now            func() time.Time
}

// NewScheduleService builds the service. The roster view is cached for ttl; a copy of the last good view is
// kept without expiry and served when reloading fails.
func NewScheduleService(scheduleRepo schedule.ScheduleRepository, employeeRepo employee.EmployeeRepository, ttl time.Duration, maxUploadBytes int64, location *time.Location) schedule.ScheduleService {
	if location == nil {
		location = time.UTC
	}
	return &ScheduleServiceImpl{
		scheduleRepo:   scheduleRepo,
		employeeRepo:   employeeRepo,
		cache:          cache.New(ttl, 2*ttl),
		maxUploadBytes: maxUploadBytes,
		location:       location,
		now:            time.Now,
	}
}

func (s *ScheduleServiceImpl) invalidate() {
	s.cache.Delete(viewKey)
}

// GetSchedule implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) GetSchedule(ctx context.Context) (schedule.View, error) {
	if cached, found := s.cache.Get(viewKey); found {
		return cached.(schedule.View), nil
	}

	view, err := s.load(ctx)
	if err != nil {
		if stale, found := s.cache.Get(staleViewKey); found {
			slog.Warn("Serving stale schedule view", "error", err)
			return stale.(schedule.View), nil
		}
		return schedule.View{}, err
	}

	s.cache.SetDefault(viewKey, view)
	s.cache.Set(staleViewKey, view, cache.NoExpiration)
	return view, nil
}

func (s *ScheduleServiceImpl) load(ctx context.Context) (schedule.View, error) {
	employees, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return schedule.View{}, fmt.Errorf("failed to list employees: %w", err)
	}
	shifts, err := s.scheduleRepo.ListShifts(ctx, nil)
	if err != nil {
		return schedule.View{}, err
	}
	lastChange, err := s.scheduleRepo.LastChange(ctx)
	if err != nil {
		return schedule.View{}, fmt.Errorf("failed to read last schedule change: %w", err)
	}

	hours := make(map[string]float64)
	shiftResponses := make([]schedule.ShiftResponse, 0, len(shifts))
	for _, sh := range shifts {
		hours[sh.EmployeeID] += sh.Duration().Hours()
		shiftResponses = append(shiftResponses, schedule.ToShiftResponse(sh))
	}

	roster := make([]schedule.RosterEmployee, 0, len(employees))
	for _, emp := range employees {
		roster = append(roster, schedule.RosterEmployee{
			ID:             emp.ID,
			EmployeeNumber: emp.EmployeeNumber,
			Name:           emp.FullName(),
			Initials:       schedule.Initials(emp.FullName()),
			Position:       emp.Position,
			Campaign:       emp.Campaign,
			HoursPerWeek:   hours[emp.ID],
		})
	}

	now := s.now().In(s.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	weekStart := today.AddDate(0, 0, -schedule.Weekday(today))

	return schedule.View{
		Employees: roster,
		Shifts:    shiftResponses,
		Metadata: schedule.Metadata{
			WeekStart:      weekStart.Format("2006-01-02"),
			WeekEnd:        weekStart.AddDate(0, 0, 6).Format("2006-01-02"),
			Timezone:       s.location.String(),
			TotalEmployees: len(roster),
			TotalShifts:    len(shiftResponses),
			LastUpdated:    lastChange,
		},
	}, nil
}

// GetEmployees implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) GetEmployees(ctx context.Context) ([]schedule.RosterEmployee, error) {
	view, err := s.GetSchedule(ctx)
	if err != nil {
		return nil, err
	}
	return view.Employees, nil
}

// GetShifts implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) GetShifts(ctx context.Context, day *int) ([]schedule.ShiftResponse, error) {
	if day != nil && (*day < 0 || *day > 6) {
		var errs validator.ValidationErrors
		errs.Add("day", "day must be between 0 (Monday) and 6 (Sunday)")
		return nil, errs
	}
	view, err := s.GetSchedule(ctx)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return view.Shifts, nil
	}
	shifts := make([]schedule.ShiftResponse, 0)
	for _, sh := range view.Shifts {
		if sh.DayOfWeek == *day {
			shifts = append(shifts, sh)
		}
	}
	return shifts, nil
}

// GetMetadata implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) GetMetadata(ctx context.Context) (schedule.Metadata, error) {
	view, err := s.GetSchedule(ctx)
	if err != nil {
		return schedule.Metadata{}, err
	}
	return view.Metadata, nil
}

// AddShift implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) AddShift(ctx context.Context, req schedule.AddShiftRequest) (schedule.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.ShiftResponse{}, err
	}
	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return schedule.ShiftResponse{}, schedule.ErrEmployeeNotFound
		}
		return schedule.ShiftResponse{}, err
	}

	shift := schedule.Shift{
		EmployeeID: req.EmployeeID,
		DayOfWeek:  *req.DayOfWeek,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		ShiftType:  schedule.ShiftType(req.ShiftType),
		Notes:      req.Notes,
	}
	if shift.ShiftType == schedule.ShiftOff {
		shift.StartTime, shift.EndTime = "", ""
	}

	created, err := s.scheduleRepo.CreateShift(ctx, shift)
	if err != nil {
		return schedule.ShiftResponse{}, err
	}
	s.invalidate()
	slog.Info("Shift added", "shift_id", created.ID, "employee_id", created.EmployeeID, "day", created.DayOfWeek)
	return schedule.ToShiftResponse(created), nil
}

// UpdateShift implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) UpdateShift(ctx context.Context, req schedule.UpdateShiftRequest) (schedule.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.ShiftResponse{}, err
	}
	if err := s.scheduleRepo.UpdateShift(ctx, req); err != nil {
		return schedule.ShiftResponse{}, err
	}
	s.invalidate()

	updated, err := s.scheduleRepo.GetShift(ctx, req.ID)
	if err != nil {
		return schedule.ShiftResponse{}, err
	}
	return schedule.ToShiftResponse(updated), nil
}

// BatchUpdateShifts implements schedule.ScheduleService. Every item is validated before any is written.
func (s *ScheduleServiceImpl) BatchUpdateShifts(ctx context.Context, req schedule.BatchUpdateRequest) (schedule.BatchUpdateResponse, error) {
	var errs validator.ValidationErrors
	if len(req.Shifts) == 0 {
		errs.Add("shifts", "at least one shift is required")
	}
	for i := range req.Shifts {
		if err := req.Shifts[i].Validate(); err != nil {
			var itemErrs validator.ValidationErrors
			if errors.As(err, &itemErrs) {
				for _, e := range itemErrs {
					errs.Add(fmt.Sprintf("shifts[%d].%s", i, e.Field), e.Message)
				}
			}
		}
	}
	if err := errs.OrNil(); err != nil {
		return schedule.BatchUpdateResponse{}, err
	}

	updated := 0
	for _, item := range req.Shifts {
		if err := s.scheduleRepo.UpdateShift(ctx, item); err != nil {
			if updated > 0 {
				s.invalidate()
			}
			return schedule.BatchUpdateResponse{Updated: updated}, fmt.Errorf("shift %s: %w", item.ID, err)
		}
		updated++
	}
	s.invalidate()
	return schedule.BatchUpdateResponse{Updated: updated}, nil
}

// DeleteShift implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) DeleteShift(ctx context.Context, id string) error {
	if err := s.scheduleRepo.SoftDeleteShift(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// BulkUpload implements schedule.ScheduleService. Rows that cannot be applied are reported back rather than
// failing the whole file.
func (s *ScheduleServiceImpl) BulkUpload(ctx context.Context, file io.Reader, filename string) (schedule.UploadResult, error) {
	rows, err := tabular.ReadRows(file, filename, s.maxUploadBytes)
	if err != nil {
		return schedule.UploadResult{}, err
	}

	idx := tabular.HeaderIndex(rows[0])
	var missing []string
	for _, col := range uploadColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return schedule.UploadResult{}, fmt.Errorf("%w: %s", schedule.ErrMissingColumns, strings.Join(missing, ", "))
	}

	codes := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if code := strings.TrimSpace(tabular.Cell(row, idx["employee_code"])); code != "" {
			codes = append(codes, code)
		}
	}
	employees, err := s.employeeRepo.GetByNumbers(ctx, codes)
	if err != nil {
		return schedule.UploadResult{}, err
	}

	result := schedule.UploadResult{Skipped: []schedule.SkippedRow{}}
	var entries []schedule.Entry
	for i, row := range rows[1:] {
		rowNum := i + 2
		code := strings.TrimSpace(tabular.Cell(row, idx["employee_code"]))
		skip := func(reason string) {
			result.Skipped = append(result.Skipped, schedule.SkippedRow{Row: rowNum, EmployeeCode: code, Reason: reason})
		}

		if code == "" {
			skip("employee_code is empty")
			continue
		}
		emp, ok := employees[code]
		if !ok {
			skip("unknown employee")
			continue
		}
		// Excel date cells arrive in their display format (e.g. 01-12-26) or as serials.
		from, okFrom := workbook.ParseDate(tabular.Cell(row, idx["start_date"]))
		to, okTo := workbook.ParseDate(tabular.Cell(row, idx["end_date"]))
		if !okFrom || !okTo {
			skip("start_date and end_date must be dates")
			continue
		}
		if to.Before(from) {
			skip(schedule.ErrInvalidDateRange.Error())
			continue
		}
		shiftCode, err := schedule.ParseShiftCode(tabular.Cell(row, idx["shift_code"]))
		if err != nil {
			skip(err.Error())
			continue
		}

		for _, day := range shiftCode.ExpandDates(from, to) {
			entry := schedule.Entry{
				EmployeeID: emp.ID,
				Date:       day,
				ShiftCode:  shiftCode.Raw,
				IsOff:      shiftCode.Off,
				Blocks:     shiftCode.Blocks(),
				Campaign:   emp.Campaign,
			}
			if !shiftCode.Off {
				start, end := shiftCode.Start(), shiftCode.End()
				entry.ShiftStart, entry.ShiftEnd = &start, &end
			}
			entries = append(entries, entry)
		}
	}

	n, err := s.scheduleRepo.UpsertEntries(ctx, entries)
	if err != nil {
		return schedule.UploadResult{}, err
	}
	result.Inserted = int(n)
	slog.Info("Schedule uploaded", "file", filename, "entries", n, "skipped", len(result.Skipped))
	return result, nil
}

// Template implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) Template() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.WriteAll(templateRows)
	return buf.Bytes()
}

// ExportRoster implements schedule.ScheduleService. One row per employee, one column per day.
func (s *ScheduleServiceImpl) ExportRoster(ctx context.Context, w io.Writer) error {
	view, err := s.GetSchedule(ctx)
	if err != nil {
		return err
	}

	byEmployee := make(map[string][]string)
	for _, sh := range view.Shifts {
		cells := byEmployee[sh.EmployeeID]
		if cells == nil {
			cells = make([]string, len(schedule.DayNames))
		}
		label := sh.ShiftType
		if sh.ShiftType != string(schedule.ShiftOff) {
			label = fmt.Sprintf("%s-%s", sh.StartTime, sh.EndTime)
		}
		if cells[sh.DayOfWeek] != "" {
			label = cells[sh.DayOfWeek] + ", " + label
		}
		cells[sh.DayOfWeek] = label
		byEmployee[sh.EmployeeID] = cells
	}

	employees := append([]schedule.RosterEmployee(nil), view.Employees...)
	sort.Slice(employees, func(i, j int) bool { return employees[i].EmployeeNumber < employees[j].EmployeeNumber })

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Roster"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := append([]interface{}{"Employee No", "Name", "Campaign"}, toInterfaces(schedule.DayNames)...)
	header = append(header, "Hours/Week")
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, emp := range employees {
		row := []interface{}{emp.EmployeeNumber, emp.Name, emp.Campaign}
		cells := byEmployee[emp.ID]
		if cells == nil {
			cells = make([]string, len(schedule.DayNames))
		}
		row = append(row, toInterfaces(cells)...)
		row = append(row, emp.HoursPerWeek)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// ListEntries implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) ListEntries(ctx context.Context, filter schedule.EntryFilter) (schedule.ListEntryResponse, error) {
	if err := filter.Validate(); err != nil {
		return schedule.ListEntryResponse{}, err
	}
	entries, total, err := s.scheduleRepo.ListEntries(ctx, filter)
	if err != nil {
		return schedule.ListEntryResponse{}, err
	}

	out := make([]schedule.EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, schedule.ToEntryResponse(e))
	}
	return schedule.ListEntryResponse{
		Entries:    out,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: pagination.TotalPages(total, filter.Limit),
	}, nil
}

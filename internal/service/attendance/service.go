package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/attendance"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/jwt"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/workbook"
)

const unknownUser = "Unknown User"

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	now func() time.Time
}

func NewAttendanceService(repo attendance.AttendanceRepository) attendance.AttendanceService {
	return &AttendanceServiceImpl{AttendanceRepository: repo, now: time.Now}
}

// actor is the e-mail of the signed-in user, or "Unknown User" for anonymous calls.
func actor(ctx context.Context) string {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil || claims.Email == "" {
		return unknownUser
	}
	return claims.Email
}

// ListSupervisors implements attendance.AttendanceService. Order follows the roster sheet.
func (s *AttendanceServiceImpl) ListSupervisors(ctx context.Context) ([]string, error) {
	team, err := s.AttendanceRepository.ListTeam(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, m := range team {
		if m.Supervisor == "" {
			continue
		}
		if _, ok := seen[m.Supervisor]; ok {
			continue
		}
		seen[m.Supervisor] = struct{}{}
		out = append(out, m.Supervisor)
	}
	return out, nil
}

// GetTeamList implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetTeamList(ctx context.Context, supervisor, date string) ([]attendance.TeamListItem, error) {
	team, err := s.AttendanceRepository.ListTeam(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.recordsFor(ctx, date, supervisor)
	if err != nil {
		return nil, err
	}
	out := make([]attendance.TeamListItem, 0)
	for _, m := range team {
		if !attendance.SameName(m.Supervisor, supervisor) {
			continue
		}
		exists := false
		for _, r := range records {
			if attendance.SameName(r.EmployeeName, m.Agent) {
				exists = true
				break
			}
		}
		out = append(out, attendance.TeamListItem{Agent: m.Agent, Campaign: m.Campaign, Exists: exists})
	}
	return out, nil
}

// GetRecords implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetRecords(ctx context.Context, date, supervisor string) ([]attendance.RecordView, error) {
	records, err := s.recordsFor(ctx, date, supervisor)
	if err != nil {
		return nil, err
	}
	out := make([]attendance.RecordView, 0, len(records))
	for _, r := range records {
		recordedBy := r.RecordedBy
		if recordedBy == "" {
			recordedBy = "—"
		}
		out = append(out, attendance.RecordView{
			Agent:      r.EmployeeName,
			Status:     string(r.Status),
			Start:      r.ShiftStart,
			End:        r.ShiftEnd,
			Notes:      r.Notes,
			RecordedBy: recordedBy,
		})
	}
	return out, nil
}

// SaveRecord implements attendance.AttendanceService. A duplicate is reported in the result, not as an error.
func (s *AttendanceServiceImpl) SaveRecord(ctx context.Context, req attendance.SaveRecordRequest) (attendance.SaveResult, error) {
	req.Date = normalizeDate(req.Date)
	if err := req.Validate(); err != nil {
		return attendance.SaveResult{}, err
	}

	// Rostered agents are stored with the roster's spelling so every later lookup sees one name.
	member, err := s.rosterEntry(ctx, req.Supervisor, req.AgentName)
	if err != nil {
		return attendance.SaveResult{}, err
	}

	rec := attendance.Record{
		Date:         req.Date,
		Cluster:      member.Supervisor,
		Campaign:     member.Campaign,
		EmployeeName: member.Agent,
		Status:       attendance.Status(req.Status),
		ShiftStart:   req.ShiftStart,
		ShiftEnd:     req.ShiftEnd,
		Notes:        req.Notes,
		Timestamp:    s.now().Format("2006-01-02 15:04:05"),
		RecordedBy:   actor(ctx),
	}

	inserted, err := s.AttendanceRepository.InsertUnique(ctx, rec)
	if err != nil {
		return attendance.SaveResult{}, err
	}
	if !inserted {
		return attendance.SaveResult{
			Success:   false,
			Duplicate: true,
			Message:   fmt.Sprintf("Record for %s already exists.", req.AgentName),
		}, nil
	}

	slog.Info("Attendance recorded", "date", rec.Date, "supervisor", rec.Cluster, "agent", rec.EmployeeName, "status", rec.Status)
	return attendance.SaveResult{Success: true, Message: fmt.Sprintf("Saved new record for %s", member.Agent)}, nil
}

// UpdateRecord implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) UpdateRecord(ctx context.Context, req attendance.UpdateRecordRequest) (attendance.SaveResult, error) {
	req.Date = normalizeDate(req.Date)
	if err := req.Validate(); err != nil {
		return attendance.SaveResult{}, err
	}

	key := attendance.Key{Date: req.Date, Supervisor: req.Supervisor, Agent: req.AgentName}
	change := attendance.Change{
		Status:     attendance.Status(req.Status),
		ShiftStart: req.ShiftStart,
		ShiftEnd:   req.ShiftEnd,
		Notes:      req.Notes,
	}

	entries, err := s.AttendanceRepository.Update(ctx, key, change, actor(ctx), s.now())
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.SaveResult{Success: false, Message: "No record found to update."}, nil
		}
		return attendance.SaveResult{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	slog.Info("Attendance updated", "date", key.Date, "supervisor", key.Supervisor, "agent", key.Agent, "changes", len(entries))
	return attendance.SaveResult{Success: true, Message: fmt.Sprintf("Updated %s", req.AgentName)}, nil
}

// DailySummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DailySummary(ctx context.Context, date, supervisor string) (attendance.DailySummary, error) {
	records, err := s.recordsFor(ctx, date, supervisor)
	if err != nil {
		return attendance.DailySummary{}, err
	}
	return attendance.SummarizeDay(records), nil
}

// ListHistory implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListHistory(ctx context.Context, filter attendance.HistoryFilter) ([]attendance.HistoryEntry, error) {
	return s.AttendanceRepository.ListHistory(ctx, filter)
}

// AddTeamMember implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) AddTeamMember(ctx context.Context, req attendance.TeamMemberRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.AttendanceRepository.AddTeamMember(ctx, attendance.TeamMember{
		Supervisor: req.Supervisor,
		Agent:      req.Agent,
		Campaign:   req.Campaign,
	})
}

// RemoveTeamMember implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RemoveTeamMember(ctx context.Context, supervisor, agent string) error {
	return s.AttendanceRepository.RemoveTeamMember(ctx, supervisor, agent)
}

// Clusters implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Clusters(ctx context.Context) ([]string, error) {
	records, err := s.AttendanceRepository.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	return attendance.Clusters(records), nil
}

// Raw implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Raw(ctx context.Context, f attendance.Filter) ([]attendance.RawEntry, error) {
	records, err := s.filtered(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]attendance.RawEntry, 0, len(records))
	for _, r := range records {
		out = append(out, attendance.ToRawEntry(r))
	}
	return out, nil
}

// Summary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Summary(ctx context.Context, f attendance.Filter) (attendance.Summary, error) {
	records, err := s.filtered(ctx, f)
	if err != nil {
		return attendance.Summary{}, err
	}
	return attendance.Summarize(records), nil
}

// Calendars implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Calendars(ctx context.Context, f attendance.Filter) (attendance.Calendars, error) {
	records, err := s.filtered(ctx, f)
	if err != nil {
		return nil, err
	}
	return attendance.BuildCalendars(records), nil
}

func (s *AttendanceServiceImpl) filtered(ctx context.Context, f attendance.Filter) ([]attendance.Record, error) {
	records, err := s.AttendanceRepository.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	return attendance.FilterRows(records, f), nil
}

// recordsFor returns one supervisor's records for a day. The date may be in any layout the workbook accepts.
func (s *AttendanceServiceImpl) recordsFor(ctx context.Context, date, supervisor string) ([]attendance.Record, error) {
	day, ok := workbook.NormalizeDate(date)
	if !ok {
		return nil, attendance.ErrInvalidDate
	}
	records, err := s.AttendanceRepository.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]attendance.Record, 0)
	for _, r := range records {
		if r.Date == day && attendance.SameName(r.Cluster, supervisor) {
			out = append(out, r)
		}
	}
	return out, nil
}

// rosterEntry finds the agent on the supervisor's team. Agents missing from the roster keep the request's
// spelling and an empty campaign.
func (s *AttendanceServiceImpl) rosterEntry(ctx context.Context, supervisor, agent string) (attendance.TeamMember, error) {
	team, err := s.AttendanceRepository.ListTeam(ctx)
	if err != nil {
		return attendance.TeamMember{}, err
	}
	for _, m := range team {
		if attendance.SameName(m.Supervisor, supervisor) && attendance.SameName(m.Agent, agent) {
			return m, nil
		}
	}
	return attendance.TeamMember{Supervisor: strings.TrimSpace(supervisor), Agent: strings.TrimSpace(agent)}, nil
}

func normalizeDate(v string) string {
	if d, ok := workbook.NormalizeDate(v); ok {
		return d
	}
	return v
}

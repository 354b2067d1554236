package attendance

import (
	"strconv"

	"github.com/bpo-ops/ops-backend-go/internal/pkg/validator"
)

// SaveRecordRequest creates one attendance entry.
type SaveRecordRequest struct {
	Date       string `json:"date"`
	Supervisor string `json:"supervisor"`
	AgentName  string `json:"agentName"`
	Status     string `json:"status"`
	ShiftStart string `json:"shiftStart"`
	ShiftEnd   string `json:"shiftEnd"`
	Notes      string `json:"notes"`
}

func (r *SaveRecordRequest) Validate() error {
	var errs validator.ValidationErrors
	validateKey(&errs, r.Date, r.Supervisor, r.AgentName)
	validateChange(&errs, r.Status, r.ShiftStart, r.ShiftEnd)
	return errs.OrNil()
}

// UpdateRecordRequest overwrites status, shift and notes of an existing entry.
type UpdateRecordRequest struct {
	Date       string `json:"date"`
	Supervisor string `json:"supervisor"`
	AgentName  string `json:"agentName"`
	Status     string `json:"status"`
	ShiftStart string `json:"shiftStart"`
	ShiftEnd   string `json:"shiftEnd"`
	Notes      string `json:"notes"`
}

func (r *UpdateRecordRequest) Validate() error {
	var errs validator.ValidationErrors
	validateKey(&errs, r.Date, r.Supervisor, r.AgentName)
	validateChange(&errs, r.Status, r.ShiftStart, r.ShiftEnd)
	return errs.OrNil()
}

func validateKey(errs *validator.ValidationErrors, date, supervisor, agent string) {
	if validator.IsEmpty(date) {
		errs.Add("date", "date is required")
	} else if _, ok := validator.IsValidDate(date); !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	if validator.IsEmpty(supervisor) {
		errs.Add("supervisor", "supervisor is required")
	}
	if validator.IsEmpty(agent) {
		errs.Add("agentName", "agentName is required")
	}
}

func validateChange(errs *validator.ValidationErrors, status, start, end string) {
	if validator.IsEmpty(status) {
		errs.Add("status", "status is required")
	} else if !Status(status).Valid() {
		errs.Add("status", "status must be one of P, HD, L, A, VL, SUS, Off, T")
	}
	if start != "" && !validator.IsValidClock(start) {
		errs.Add("shiftStart", "shiftStart must be HH:MM")
	}
	if end != "" && !validator.IsValidClock(end) {
		errs.Add("shiftEnd", "shiftEnd must be HH:MM")
	}
}

// SaveResult mirrors the tracker's reply shape, including the duplicate flag.
type SaveResult struct {
	Success   bool   `json:"success"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Message   string `json:"message"`
}

// TeamListItem is a roster entry flagged when a record already exists for the requested date.
type TeamListItem struct {
	Agent    string `json:"agent"`
	Campaign string `json:"campaign,omitempty"`
	Exists   bool   `json:"exists"`
}

// RecordView is a day's record as shown in the tracker.
type RecordView struct {
	Agent      string `json:"agent"`
	Status     string `json:"status"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Notes      string `json:"notes"`
	RecordedBy string `json:"recordedBy"`
}

// RawEntry is a dashboard row keyed by the sheet's column names.
type RawEntry struct {
	Date         string `json:"Date"`
	Cluster      string `json:"Cluster"`
	Campaign     string `json:"Campaign"`
	EmployeeName string `json:"Employee Name"`
	Status       string `json:"Status"`
	ShiftStart   string `json:"Shift Start,omitempty"`
	ShiftEnd     string `json:"Shift End,omitempty"`
	Notes        string `json:"Notes,omitempty"`
	RecordedBy   string `json:"Recorded By,omitempty"`
}

func ToRawEntry(r Record) RawEntry {
	return RawEntry{
		Date:         r.Date,
		Cluster:      r.Cluster,
		Campaign:     r.Campaign,
		EmployeeName: r.EmployeeName,
		Status:       string(r.Status),
		ShiftStart:   r.ShiftStart,
		ShiftEnd:     r.ShiftEnd,
		Notes:        r.Notes,
		RecordedBy:   r.RecordedBy,
	}
}

// ParseFilter reads the dashboard month and cluster query values. An empty month means all months.
func ParseFilter(month, cluster string) (Filter, error) {
	f := Filter{Cluster: cluster}
	if month == "" {
		return f, nil
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return Filter{}, ErrInvalidMonth
	}
	f.Month = m
	return f, nil
}

type TeamMemberRequest struct {
	Supervisor string `json:"supervisor"`
	Agent      string `json:"agent"`
	Campaign   string `json:"campaign"`
}

func (r *TeamMemberRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Supervisor) {
		errs.Add("supervisor", "supervisor is required")
	}
	if validator.IsEmpty(r.Agent) {
		errs.Add("agent", "agent is required")
	}
	return errs.OrNil()
}

type HistoryFilter struct {
	Date       string
	Supervisor string
	Agent      string
}

type StatusOption struct {
	Code      Status `json:"code"`
	Label     string `json:"label"`
	Deduction int    `json:"deduction_hours"`
}

func StatusOptions() []StatusOption {
	out := make([]StatusOption, 0, len(Statuses))
	for _, s := range Statuses {
		info := StatusConfig[s]
		out = append(out, StatusOption{Code: s, Label: info.Label, Deduction: info.Deduction})
	}
	return out
}

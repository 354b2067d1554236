package schedule

import (
	"strings"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/pkg/pagination"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/validator"
)

type ShiftResponse struct {
	ID             string    `json:"id"`
	EmployeeID     string    `json:"employee_id"`
	EmployeeName   string    `json:"employee_name,omitempty"`
	EmployeeNumber string    `json:"employee_number,omitempty"`
	DayOfWeek      int       `json:"day_of_week"`
	Day            string    `json:"day"`
	StartTime      string    `json:"start_time"`
	EndTime        string    `json:"end_time"`
	ShiftType      string    `json:"shift_type"`
	Hours          float64   `json:"hours"`
	Notes          *string   `json:"notes,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func ToShiftResponse(s Shift) ShiftResponse {
	return ShiftResponse{
		ID:             s.ID,
		EmployeeID:     s.EmployeeID,
		EmployeeName:   s.EmployeeName,
		EmployeeNumber: s.EmployeeNumber,
		DayOfWeek:      s.DayOfWeek,
		Day:            DayNames[s.DayOfWeek],
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		ShiftType:      string(s.ShiftType),
		Hours:          s.Duration().Hours(),
		Notes:          s.Notes,
		UpdatedAt:      s.UpdatedAt,
	}
}

// AddShiftRequest accepts the day either as day_of_week or as a day name.
type AddShiftRequest struct {
	EmployeeID string  `json:"employee_id"`
	DayOfWeek  *int    `json:"day_of_week,omitempty"`
	Day        string  `json:"day,omitempty"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	ShiftType  string  `json:"shift_type"`
	Notes      *string `json:"notes,omitempty"`
}

func validateDay(errs *validator.ValidationErrors, dayOfWeek **int, day string) {
	if *dayOfWeek == nil && day != "" {
		if idx, ok := DayIndex(day); ok {
			*dayOfWeek = &idx
		} else {
			errs.Add("day", "day must be a weekday name such as Monday")
			return
		}
	}
	if *dayOfWeek == nil {
		errs.Add("day_of_week", "day_of_week is required")
	} else if **dayOfWeek < 0 || **dayOfWeek > 6 {
		errs.Add("day_of_week", "day_of_week must be between 0 (Monday) and 6 (Sunday)")
	}
}

func (r *AddShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ShiftType == "" {
		r.ShiftType = string(ShiftRegular)
	}
	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	validateDay(&errs, &r.DayOfWeek, r.Day)
	if !validator.IsInSlice(r.ShiftType, ShiftTypes) {
		errs.Add("shift_type", "shift_type must be one of "+strings.Join(ShiftTypes, ", "))
	}
	if r.ShiftType != string(ShiftOff) {
		if !validator.IsValidClock(r.StartTime) {
			errs.Add("start_time", "start_time must be HH:MM")
		}
		if !validator.IsValidClock(r.EndTime) {
			errs.Add("end_time", "end_time must be HH:MM")
		}
	}
	return errs.OrNil()
}

type UpdateShiftRequest struct {
	ID        string  `json:"id"`
	DayOfWeek *int    `json:"day_of_week,omitempty"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	ShiftType *string `json:"shift_type,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

func (r *UpdateShiftRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}
	if r.DayOfWeek != nil && (*r.DayOfWeek < 0 || *r.DayOfWeek > 6) {
		errs.Add("day_of_week", "day_of_week must be between 0 (Monday) and 6 (Sunday)")
	}
	if r.StartTime != nil && !validator.IsValidClock(*r.StartTime) {
		errs.Add("start_time", "start_time must be HH:MM")
	}
	if r.EndTime != nil && !validator.IsValidClock(*r.EndTime) {
		errs.Add("end_time", "end_time must be HH:MM")
	}
	if r.ShiftType != nil && !validator.IsInSlice(*r.ShiftType, ShiftTypes) {
		errs.Add("shift_type", "shift_type must be one of "+strings.Join(ShiftTypes, ", "))
	}
	return errs.OrNil()
}

type BatchUpdateRequest struct {
	Shifts []UpdateShiftRequest `json:"shifts"`
}

type BatchUpdateResponse struct {
	Updated int `json:"updated"`
}

type RosterEmployee struct {
	ID             string  `json:"id"`
	EmployeeNumber string  `json:"employee_number"`
	Name           string  `json:"name"`
	Initials       string  `json:"initials"`
	Position       *string `json:"position,omitempty"`
	Campaign       string  `json:"campaign"`
	HoursPerWeek   float64 `json:"hours_per_week"`
}

type Metadata struct {
	WeekStart      string    `json:"week_start"`
	WeekEnd        string    `json:"week_end"`
	Timezone       string    `json:"timezone"`
	TotalEmployees int       `json:"total_employees"`
	TotalShifts    int       `json:"total_shifts"`
	LastUpdated    time.Time `json:"last_updated"`
}

// View is the whole weekly roster as served to the schedule board.
type View struct {
	Employees []RosterEmployee `json:"employees"`
	Shifts    []ShiftResponse  `json:"shifts"`
	Metadata  Metadata         `json:"metadata"`
}

type EntryResponse struct {
	ID             string   `json:"id"`
	EmployeeID     string   `json:"employee_id"`
	EmployeeName   string   `json:"employee_name"`
	EmployeeNumber string   `json:"employee_number"`
	Date           string   `json:"date"`
	ShiftCode      string   `json:"shift_code"`
	IsOff          bool     `json:"is_off"`
	ShiftStart     *string  `json:"shift_start,omitempty"`
	ShiftEnd       *string  `json:"shift_end,omitempty"`
	Blocks         []string `json:"blocks"`
	Campaign       string   `json:"campaign,omitempty"`
}

func ToEntryResponse(e Entry) EntryResponse {
	blocks := e.Blocks
	if blocks == nil {
		blocks = []string{}
	}
	return EntryResponse{
		ID:             e.ID,
		EmployeeID:     e.EmployeeID,
		EmployeeName:   e.EmployeeName,
		EmployeeNumber: e.EmployeeNumber,
		Date:           e.Date.Format("2006-01-02"),
		ShiftCode:      e.ShiftCode,
		IsOff:          e.IsOff,
		ShiftStart:     e.ShiftStart,
		ShiftEnd:       e.ShiftEnd,
		Blocks:         blocks,
		Campaign:       e.Campaign,
	}
}

type EntryFilter struct {
	EmployeeID *string
	From       *string
	To         *string
	pagination.Params
}

func (f *EntryFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.EmployeeID != nil && *f.EmployeeID != "" && !validator.IsValidUUID(*f.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	var from, to time.Time
	var okFrom, okTo bool
	if f.From != nil && *f.From != "" {
		if from, okFrom = validator.IsValidDate(*f.From); !okFrom {
			errs.Add("from", invalidDateMessage)
		}
	}
	if f.To != nil && *f.To != "" {
		if to, okTo = validator.IsValidDate(*f.To); !okTo {
			errs.Add("to", invalidDateMessage)
		}
	}
	if okFrom && okTo && to.Before(from) {
		errs.Add("to", "to must not be before from")
	}
	f.Params = f.Params.Normalize()
	return errs.OrNil()
}

const invalidDateMessage = "must be a date in YYYY-MM-DD format"

type ListEntryResponse struct {
	Entries    []EntryResponse `json:"entries"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

type SkippedRow struct {
	Row          int    `json:"row"`
	EmployeeCode string `json:"employee_code"`
	Reason       string `json:"reason"`
}

type UploadResult struct {
	Inserted int          `json:"inserted"`
	Skipped  []SkippedRow `json:"skipped"`
}

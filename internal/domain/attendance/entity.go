package attendance

import (
	"strings"
	"time"
)

// Status is an attendance code as entered by supervisors.
type Status string

const (
	StatusPresent    Status = "P"
	StatusHalfDay    Status = "HD"
	StatusLate       Status = "L"
	StatusAbsent     Status = "A"
	StatusVacation   Status = "VL"
	StatusSuspended  Status = "SUS"
	StatusDayOff     Status = "Off"
	StatusTerminated Status = "T"
)

// StatusInfo describes how a status counts against worked hours.
type StatusInfo struct {
	Label     string
	Deduction int // hours lost
}

// StatusConfig is the fixed status table.
var StatusConfig = map[Status]StatusInfo{
	StatusPresent:    {Label: "Present", Deduction: 0},
	StatusHalfDay:    {Label: "Half Day", Deduction: 4},
	StatusLate:       {Label: "Late", Deduction: 1},
	StatusAbsent:     {Label: "Absent", Deduction: 8},
	StatusVacation:   {Label: "Vacation Leave", Deduction: 0},
	StatusSuspended:  {Label: "Suspension", Deduction: 0},
	StatusDayOff:     {Label: "Day Off", Deduction: 0},
	StatusTerminated: {Label: "Terminated", Deduction: 8},
}

// Statuses lists the codes in display order.
var Statuses = []Status{
	StatusPresent, StatusLate, StatusHalfDay, StatusAbsent,
	StatusVacation, StatusSuspended, StatusDayOff, StatusTerminated,
}

// Deduction returns the hours lost for a status and whether the status is known.
func Deduction(s Status) (int, bool) {
	info, ok := StatusConfig[s]
	return info.Deduction, ok
}

func (s Status) Valid() bool {
	_, ok := StatusConfig[s]
	return ok
}

// Record is one row of the attendance sheet. Cluster holds the supervisor the agent reports to.
type Record struct {
	Row          int
	Date         string // yyyy-mm-dd
	Cluster      string
	Campaign     string
	EmployeeName string
	Status       Status
	ShiftStart   string
	ShiftEnd     string
	Notes        string
	Timestamp    string
	RecordedBy   string
}

// Key identifies a record; at most one record exists per key.
type Key struct {
	Date       string
	Supervisor string
	Agent      string
}

func (r Record) Key() Key {
	return Key{Date: r.Date, Supervisor: r.Cluster, Agent: r.EmployeeName}
}

// SameName compares supervisor and agent names the way every lookup does: trimmed and case-insensitive.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Matches reports whether the record belongs to key.
func (r Record) Matches(k Key) bool {
	return r.Date == k.Date && SameName(r.Cluster, k.Supervisor) && SameName(r.EmployeeName, k.Agent)
}

// TeamMember is one row of the team roster.
type TeamMember struct {
	Supervisor string
	Agent      string
	Campaign   string
}

// HistoryEntry logs one changed field of an attendance record.
type HistoryEntry struct {
	Date       string    `json:"date"`
	Supervisor string    `json:"supervisor"`
	Agent      string    `json:"agent"`
	Field      string    `json:"field"`
	OldValue   string    `json:"old_value"`
	NewValue   string    `json:"new_value"`
	EditedBy   string    `json:"edited_by"`
	Timestamp  time.Time `json:"timestamp"`
}

// Change is the editable part of a record.
type Change struct {
	Status     Status
	ShiftStart string
	ShiftEnd   string
	Notes      string
}

// Diff lists one history entry per field that differs between the stored record and the change.
func Diff(old Record, c Change, editor string, at time.Time) []HistoryEntry {
	fields := []struct {
		name     string
		old, new string
	}{
		{"Status", string(old.Status), string(c.Status)},
		{"Shift Start", old.ShiftStart, c.ShiftStart},
		{"Shift End", old.ShiftEnd, c.ShiftEnd},
		{"Notes", old.Notes, c.Notes},
	}

	var out []HistoryEntry
	for _, f := range fields {
		if f.old == f.new {
			continue
		}
		out = append(out, HistoryEntry{
			Date:       old.Date,
			Supervisor: old.Cluster,
			Agent:      old.EmployeeName,
			Field:      f.name,
			OldValue:   f.old,
			NewValue:   f.new,
			EditedBy:   editor,
			Timestamp:  at,
		})
	}
	return out
}

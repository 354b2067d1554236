package attendance

import (
	"sort"
	"time"
)

// CalendarDays is the fixed width of a month row in the calendar view.
const CalendarDays = 31

// NoEntry marks a calendar day without a recorded status.
const NoEntry = "NA"

// Tally counts statuses and the hours they cost.
type Tally struct {
	P         int `json:"P"`
	L         int `json:"L"`
	HD        int `json:"HD"`
	A         int `json:"A"`
	VL        int `json:"VL"`
	SUS       int `json:"SUS"`
	Off       int `json:"Off"`
	T         int `json:"T"`
	LostHours int `json:"lostHours"`
}

// Add counts one occurrence of s. Unknown statuses are ignored and reported as false.
func (t *Tally) Add(s Status) bool {
	deduction, ok := Deduction(s)
	if !ok {
		return false
	}
	switch s {
	case StatusPresent:
		t.P++
	case StatusLate:
		t.L++
	case StatusHalfDay:
		t.HD++
	case StatusAbsent:
		t.A++
	case StatusVacation:
		t.VL++
	case StatusSuspended:
		t.SUS++
	case StatusDayOff:
		t.Off++
	case StatusTerminated:
		t.T++
	}
	t.LostHours += deduction
	return true
}

// Summary is the overall tally plus one tally per campaign.
type Summary struct {
	Overall   Tally             `json:"overall"`
	Campaigns map[string]*Tally `json:"campaigns"`
}

// Calendars maps campaign -> employee -> status per day of month (index 0 is day 1).
type Calendars map[string]map[string][]string

// Filter narrows dashboard rows. Month 0 and an empty cluster match everything.
type Filter struct {
	Month   int
	Cluster string
}

// Clusters returns the distinct non-empty clusters, sorted.
func Clusters(rows []Record) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range rows {
		if r.Cluster == "" {
			continue
		}
		if _, ok := seen[r.Cluster]; ok {
			continue
		}
		seen[r.Cluster] = struct{}{}
		out = append(out, r.Cluster)
	}
	sort.Strings(out)
	return out
}

// FilterRows keeps rows whose date falls in f.Month and whose cluster equals f.Cluster. Rows with an
// unreadable date only pass when no month is requested.
func FilterRows(rows []Record, f Filter) []Record {
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		if f.Cluster != "" && r.Cluster != f.Cluster {
			continue
		}
		if f.Month != 0 {
			d, ok := recordDate(r)
			if !ok || int(d.Month()) != f.Month {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// Summarize folds rows into per-status counts and lost hours, overall and per campaign.
func Summarize(rows []Record) Summary {
	s := Summary{Campaigns: make(map[string]*Tally)}
	for _, r := range rows {
		if !r.Status.Valid() {
			continue
		}
		s.Overall.Add(r.Status)
		camp, ok := s.Campaigns[r.Campaign]
		if !ok {
			camp = &Tally{}
			s.Campaigns[r.Campaign] = camp
		}
		camp.Add(r.Status)
	}
	return s
}

// BuildCalendars places each row's status on its day of month. Later rows overwrite earlier ones for the
// same employee and day.
func BuildCalendars(rows []Record) Calendars {
	cal := make(Calendars)
	for _, r := range rows {
		d, ok := recordDate(r)
		if !ok {
			continue
		}
		employees, ok := cal[r.Campaign]
		if !ok {
			employees = make(map[string][]string)
			cal[r.Campaign] = employees
		}
		days, ok := employees[r.EmployeeName]
		if !ok {
			days = make([]string, CalendarDays)
			for i := range days {
				days[i] = NoEntry
			}
			employees[r.EmployeeName] = days
		}
		status := string(r.Status)
		if status == "" {
			status = NoEntry
		}
		days[d.Day()-1] = status
	}
	return cal
}

// DailySummary counts one supervisor's records for one day.
type DailySummary struct {
	Total    int            `json:"total"`
	Present  int            `json:"present"`
	Late     int            `json:"late"`
	Absent   int            `json:"absent"`
	OnLeave  int            `json:"onLeave"`
	ByStatus map[Status]int `json:"byStatus"`
}

func SummarizeDay(rows []Record) DailySummary {
	s := DailySummary{Total: len(rows), ByStatus: make(map[Status]int, len(Statuses))}
	for _, st := range Statuses {
		s.ByStatus[st] = 0
	}
	for _, r := range rows {
		if !r.Status.Valid() {
			continue
		}
		s.ByStatus[r.Status]++
		switch r.Status {
		case StatusPresent:
			s.Present++
		case StatusLate:
			s.Late++
		case StatusAbsent:
			s.Absent++
		case StatusVacation:
			s.OnLeave++
		}
	}
	return s
}

func recordDate(r Record) (time.Time, bool) {
	d, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

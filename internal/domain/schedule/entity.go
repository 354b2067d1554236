package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Days are numbered Monday=0 .. Sunday=6.
var DayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DayIndex maps a day name (any case) to its number.
func DayIndex(name string) (int, bool) {
	for i, d := range DayNames {
		if strings.EqualFold(d, strings.TrimSpace(name)) {
			return i, true
		}
	}
	return 0, false
}

// Weekday converts a date to the Monday-based day number.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

type ShiftType string

const (
	ShiftRegular  ShiftType = "regular"
	ShiftNight    ShiftType = "night"
	ShiftOvertime ShiftType = "overtime"
	ShiftTraining ShiftType = "training"
	ShiftOff      ShiftType = "off"
)

var ShiftTypes = []string{string(ShiftRegular), string(ShiftNight), string(ShiftOvertime), string(ShiftTraining), string(ShiftOff)}

// Shift is one weekly slot of an employee's recurring roster.
type Shift struct {
	ID         string
	EmployeeID string
	DayOfWeek  int
	StartTime  string
	EndTime    string
	ShiftType  ShiftType
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time

	EmployeeName   string
	EmployeeNumber string
}

// Duration is the worked time of the shift; an end at or before the start runs into the next day.
func (s Shift) Duration() time.Duration {
	if s.ShiftType == ShiftOff {
		return 0
	}
	start, ok1 := clockMinutes(s.StartTime)
	end, ok2 := clockMinutes(s.EndTime)
	if !ok1 || !ok2 {
		return 0
	}
	if end <= start {
		end += 24 * 60
	}
	return time.Duration(end-start) * time.Minute
}

func clockMinutes(hhmm string) (int, bool) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// Entry is one dated roster line produced by a bulk upload.
type Entry struct {
	ID         string
	EmployeeID string
	Date       time.Time
	ShiftCode  string
	IsOff      bool
	ShiftStart *string
	ShiftEnd   *string
	Blocks     []string
	Campaign   string
	CreatedAt  time.Time

	EmployeeName   string
	EmployeeNumber string
}

// ShiftCode is a parsed roster code: "o" or "x" for a day off, "aHHhh" for a shift from HH:00 to hh:00.
type ShiftCode struct {
	Raw       string
	Off       bool
	StartHour int
	EndHour   int
}

func ParseShiftCode(code string) (ShiftCode, error) {
	c := strings.ToLower(strings.TrimSpace(code))
	if c == "o" || c == "x" {
		return ShiftCode{Raw: c, Off: true}, nil
	}
	if len(c) != 5 || c[0] != 'a' {
		return ShiftCode{}, fmt.Errorf("%w: %q", ErrInvalidShiftCode, code)
	}
	start, err1 := strconv.Atoi(c[1:3])
	end, err2 := strconv.Atoi(c[3:5])
	if err1 != nil || err2 != nil || start > 23 || end > 23 {
		return ShiftCode{}, fmt.Errorf("%w: %q", ErrInvalidShiftCode, code)
	}
	return ShiftCode{Raw: c, StartHour: start, EndHour: end}, nil
}

func (c ShiftCode) Start() string { return fmt.Sprintf("%02d:00", c.StartHour) }
func (c ShiftCode) End() string   { return fmt.Sprintf("%02d:00", c.EndHour) }

// Blocks lists the 30-minute slots of the shift as "HH:MM-HH:MM". An end hour at or before the start
// hour crosses midnight.
func (c ShiftCode) Blocks() []string {
	if c.Off {
		return []string{}
	}
	start := c.StartHour * 60
	end := c.EndHour * 60
	if end <= start {
		end += 24 * 60
	}
	blocks := make([]string, 0, (end-start)/30)
	for m := start; m < end; m += 30 {
		blocks = append(blocks, fmt.Sprintf("%s-%s", clock(m), clock(m+30)))
	}
	return blocks
}

func clock(minutes int) string {
	minutes %= 24 * 60
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ExpandDates lists the dates in [from, to] the code applies to. Off codes only cover Monday to Friday;
// working codes cover every day.
func (c ShiftCode) ExpandDates(from, to time.Time) []time.Time {
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if c.Off && Weekday(d) >= 5 {
			continue
		}
		days = append(days, d)
	}
	return days
}

// Initials returns up to two upper-case initials of a name.
func Initials(name string) string {
	var out []rune
	for _, part := range strings.Fields(name) {
		out = append(out, []rune(strings.ToUpper(part))[0])
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}

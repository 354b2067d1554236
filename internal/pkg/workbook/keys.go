package workbook

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
)

const DateLayout = "2006-01-02"

// CamelKey turns a header such as "Employee Name" into "employeeName". Characters other than ASCII letters,
// digits and spaces are dropped, the first word is lower-cased and later words get an upper-case first letter.
func CamelKey(header string) string {
	var cleaned strings.Builder
	for _, r := range header {
		if r == ' ' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))) {
			cleaned.WriteRune(r)
		}
	}

	words := strings.Split(cleaned.String(), " ")
	var out strings.Builder
	for i, w := range words {
		if w == "" {
			continue
		}
		if i == 0 {
			out.WriteString(strings.ToLower(w))
			continue
		}
		out.WriteString(strings.ToUpper(w[:1]))
		out.WriteString(w[1:])
	}
	return out.String()
}

var dateLayouts = []string{
	DateLayout,
	"2006-1-2",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"01/02/06",
	"01-02-06",
	"1-2-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2006/01/02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"1/2/2006 15:04:05",
	time.RFC3339,
}

// NormalizeDate turns any date a spreadsheet is likely to hold into yyyy-mm-dd: ISO strings, US style
// m/d/y strings, RFC3339 timestamps and Excel serial numbers.
func NormalizeDate(value string) (string, bool) {
	t, ok := ParseDate(value)
	if !ok {
		return "", false
	}
	return t.Format(DateLayout), true
}

// ParseDate is NormalizeDate returning the parsed time.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial >= 1 && serial <= 2958465 {
			if parsed, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// Package sheet implements repositories on top of the workbook store.
package sheet

import (
	"fmt"
	"strings"

	"github.com/bpo-ops/ops-backend-go/internal/pkg/workbook"
)

const (
	SheetTeamList      = "Team_List"
	SheetAttendance    = "Attendance_DB"
	SheetUpdateHistory = "Update_History"
	SheetNTE           = "IR_NTE"
	SheetFormData      = "Form_Data"
)

var (
	teamListHeaders   = []string{"Supervisor", "Agent", "Campaign"}
	attendanceHeaders = []string{"Date", "Cluster", "Campaign", "Employee Name", "Status", "Shift Start", "Shift End", "Notes", "Timestamp", "Recorded By"}
	historyHeaders    = []string{"Date", "Supervisor", "Agent", "Field", "Old Value", "New Value", "Edited By", "Timestamp"}
	nteHeaders        = []string{"ID", "Employee Name", "Employee Number", "Department", "Supervisor", "Date Issued", "Date of Incident", "Place of Incident", "Narration of Incident", "Explanation", "Consequence", "Status", "Created At"}
	formDataHeaders   = []string{"Timestamp", "Document Title", "Date", "Prepared By", "Client Name", "Category", "Description Notes"}
)

// Bootstrap creates every sheet the repositories use.
func Bootstrap(store *workbook.Store) error {
	sheets := []struct {
		name    string
		headers []string
	}{
		{SheetTeamList, teamListHeaders},
		{SheetAttendance, attendanceHeaders},
		{SheetUpdateHistory, historyHeaders},
		{SheetNTE, nteHeaders},
		{SheetFormData, formDataHeaders},
	}
	for _, s := range sheets {
		if err := store.EnsureSheet(s.name, s.headers); err != nil {
			return fmt.Errorf("failed to ensure sheet %s: %w", s.name, err)
		}
	}
	return nil
}

// dateOf normalises a stored date cell. Unreadable values are kept as-is.
func dateOf(v string) string {
	if d, ok := workbook.NormalizeDate(v); ok {
		return d
	}
	return strings.TrimSpace(v)
}

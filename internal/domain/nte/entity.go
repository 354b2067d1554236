package nte

import "strconv"

// Form statuses.
const (
	StatusIssued    = "Issued"
	StatusResponded = "Responded"
	StatusClosed    = "Closed"
)

var Statuses = []string{StatusIssued, StatusResponded, StatusClosed}

// Form is one incident report with its notice to explain. Values are kept as entered.
type Form struct {
	ID                  int    `json:"id"`
	EmployeeName        string `json:"employeeName"`
	EmployeeNumber      string `json:"employeeNumber"`
	Department          string `json:"department"`
	Supervisor          string `json:"supervisor"`
	DateIssued          string `json:"dateIssued"`
	DateOfIncident      string `json:"dateOfIncident"`
	PlaceOfIncident     string `json:"placeOfIncident"`
	NarrationOfIncident string `json:"narrationOfIncident"`
	Explanation         string `json:"explanation"`
	Consequence         string `json:"consequence"`
	Status              string `json:"status"`
	CreatedAt           string `json:"createdAt"`
}

// Values returns the form keyed by the camelCase column keys.
func (f Form) Values() map[string]string {
	return map[string]string{
		"id":                  strconv.Itoa(f.ID),
		"employeeName":        f.EmployeeName,
		"employeeNumber":      f.EmployeeNumber,
		"department":          f.Department,
		"supervisor":          f.Supervisor,
		"dateIssued":          f.DateIssued,
		"dateOfIncident":      f.DateOfIncident,
		"placeOfIncident":     f.PlaceOfIncident,
		"narrationOfIncident": f.NarrationOfIncident,
		"explanation":         f.Explanation,
		"consequence":         f.Consequence,
		"status":              f.Status,
		"createdAt":           f.CreatedAt,
	}
}

// FormFromValues is the inverse of Values. A sheet that labels the column "Position Department" still
// fills Department.
func FormFromValues(id int, v map[string]string) Form {
	department := v["department"]
	if pd := v["positionDepartment"]; pd != "" {
		department = pd
	}
	return Form{
		ID:                  id,
		EmployeeName:        v["employeeName"],
		EmployeeNumber:      v["employeeNumber"],
		Department:          department,
		Supervisor:          v["supervisor"],
		DateIssued:          v["dateIssued"],
		DateOfIncident:      v["dateOfIncident"],
		PlaceOfIncident:     v["placeOfIncident"],
		NarrationOfIncident: v["narrationOfIncident"],
		Explanation:         v["explanation"],
		Consequence:         v["consequence"],
		Status:              v["status"],
		CreatedAt:           v["createdAt"],
	}
}

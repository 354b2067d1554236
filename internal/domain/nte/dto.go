package nte

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/bpo-ops/ops-backend-go/internal/pkg/validator"
)

// ID accepts both 12 and "12" on the wire.
type ID int

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*id = 0
		return nil
	}
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		s = string(b)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*id = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*id = ID(int(f))
	return nil
}

type CreateFormRequest struct {
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
}

func (r *CreateFormRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeName) {
		errs.Add("employeeName", "employeeName is required")
	}
	if r.DateIssued != "" {
		if _, ok := validator.IsValidDate(r.DateIssued); !ok {
			errs.Add("dateIssued", "dateIssued must be in YYYY-MM-DD format")
		}
	}
	if r.DateOfIncident != "" {
		if _, ok := validator.IsValidDate(r.DateOfIncident); !ok {
			errs.Add("dateOfIncident", "dateOfIncident must be in YYYY-MM-DD format")
		}
	}
	if r.Status != "" && !validator.IsInSlice(r.Status, Statuses) {
		errs.Add("status", "status must be one of Issued, Responded, Closed")
	}
	return errs.OrNil()
}

// UpdateFormRequest carries only the fields to change; nil fields keep their stored value.
type UpdateFormRequest struct {
	ID                  ID      `json:"id"`
	EmployeeName        *string `json:"employeeName"`
	EmployeeNumber      *string `json:"employeeNumber"`
	Department          *string `json:"department"`
	Supervisor          *string `json:"supervisor"`
	DateIssued          *string `json:"dateIssued"`
	DateOfIncident      *string `json:"dateOfIncident"`
	PlaceOfIncident     *string `json:"placeOfIncident"`
	NarrationOfIncident *string `json:"narrationOfIncident"`
	Explanation         *string `json:"explanation"`
	Consequence         *string `json:"consequence"`
	Status              *string `json:"status"`
}

func (r *UpdateFormRequest) Validate() error {
	if r.ID <= 0 {
		return ErrMissingID
	}
	var errs validator.ValidationErrors
	if r.EmployeeName != nil && validator.IsEmpty(*r.EmployeeName) {
		errs.Add("employeeName", "employeeName cannot be empty")
	}
	for field, v := range map[string]*string{"dateIssued": r.DateIssued, "dateOfIncident": r.DateOfIncident} {
		if v == nil || *v == "" {
			continue
		}
		if _, ok := validator.IsValidDate(*v); !ok {
			errs.Add(field, field+" must be in YYYY-MM-DD format")
		}
	}
	if r.Status != nil && !validator.IsInSlice(*r.Status, Statuses) {
		errs.Add("status", "status must be one of Issued, Responded, Closed")
	}
	return errs.OrNil()
}

// Patch lists the non-nil fields by column key.
func (r *UpdateFormRequest) Patch() map[string]string {
	patch := make(map[string]string)
	set := func(key string, v *string) {
		if v != nil {
			patch[key] = *v
		}
	}
	set("employeeName", r.EmployeeName)
	set("employeeNumber", r.EmployeeNumber)
	set("department", r.Department)
	set("supervisor", r.Supervisor)
	set("dateIssued", r.DateIssued)
	set("dateOfIncident", r.DateOfIncident)
	set("placeOfIncident", r.PlaceOfIncident)
	set("narrationOfIncident", r.NarrationOfIncident)
	set("explanation", r.Explanation)
	set("consequence", r.Consequence)
	set("status", r.Status)
	return patch
}

// Preview holds the rendered Incident Report and Notice to Explain pages.
type Preview struct {
	DocumentName string   `json:"documentName"`
	Pages        []string `json:"pages"`
}

type ExportedDocument struct {
	FileName string `json:"fileName"`
	Path     string `json:"path"`
	URL      string `json:"url"`
}

// MacroRequest is the POST body of the spreadsheet-style endpoint.
type MacroRequest struct {
	Action string          `json:"action"`
	ID     ID              `json:"id"`
	Data   json.RawMessage `json:"data"`
}

package employee

import (
	"strings"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/pkg/pagination"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

type EmployeeResponse struct {
	ID              string    `json:"id"`
	UserID          *string   `json:"user_id,omitempty"`
	EmployeeNumber  string    `json:"employee_number"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	FullName        string    `json:"full_name"`
	Email           *string   `json:"email,omitempty"`
	Phone           *string   `json:"phone,omitempty"`
	Position        *string   `json:"position,omitempty"`
	Department      string    `json:"department"`
	Campaign        string    `json:"campaign"`
	Status          string    `json:"status"`
	JoinDate        *string   `json:"join_date,omitempty"`
	LastWorkingDate *string   `json:"last_working_date,omitempty"`
	PersonalEmail   *string   `json:"personal_email,omitempty"`
	EmergencyName   *string   `json:"emergency_name,omitempty"`
	EmergencyPhone  *string   `json:"emergency_phone,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func ToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:              e.ID,
		UserID:          e.UserID,
		EmployeeNumber:  e.EmployeeNumber,
		FirstName:       e.FirstName,
		LastName:        e.LastName,
		FullName:        e.FullName(),
		Email:           e.Email,
		Phone:           e.Phone,
		Position:        e.Position,
		Department:      e.Department,
		Campaign:        e.Campaign,
		Status:          string(e.Status),
		JoinDate:        formatDate(e.JoinDate),
		LastWorkingDate: formatDate(e.LastWorkingDate),
		PersonalEmail:   e.PersonalEmail,
		EmergencyName:   e.EmergencyName,
		EmergencyPhone:  e.EmergencyPhone,
		Notes:           e.Notes,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

type CreateEmployeeRequest struct {
	UserID          *string `json:"user_id,omitempty"`
	EmployeeNumber  string  `json:"employee_number"`
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Position        *string `json:"position,omitempty"`
	Department      string  `json:"department"`
	Campaign        string  `json:"campaign"`
	Status          string  `json:"status"`
	JoinDate        *string `json:"join_date,omitempty"`
	LastWorkingDate *string `json:"last_working_date,omitempty"`
	PersonalEmail   *string `json:"personal_email,omitempty"`
	EmergencyName   *string `json:"emergency_name,omitempty"`
	EmergencyPhone  *string `json:"emergency_phone,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	r.EmployeeNumber = strings.TrimSpace(r.EmployeeNumber)
	if validator.IsEmpty(r.EmployeeNumber) {
		errs.Add("employee_number", "employee_number is required")
	} else if len(r.EmployeeNumber) > 50 {
		errs.Add("employee_number", "employee_number must not exceed 50 characters")
	}
	if validator.IsEmpty(r.FirstName) {
		errs.Add("first_name", "first_name is required")
	} else if len(r.FirstName) > 100 {
		errs.Add("first_name", "first_name must not exceed 100 characters")
	}
	if validator.IsEmpty(r.LastName) {
		errs.Add("last_name", "last_name is required")
	} else if len(r.LastName) > 100 {
		errs.Add("last_name", "last_name must not exceed 100 characters")
	}
	if r.Status == "" {
		r.Status = string(StatusActive)
	} else if !validator.IsInSlice(r.Status, Statuses) {
		errs.Add("status", ErrInvalidStatus.Error())
	}
	validateContact(&errs, r.Email, r.PersonalEmail, r.Phone, r.EmergencyPhone)
	validateDates(&errs, r.JoinDate, r.LastWorkingDate)

	return errs.OrNil()
}

// UpdateEmployeeRequest has PATCH semantics: nil fields are untouched, an empty string clears optional fields.
type UpdateEmployeeRequest struct {
	ID              string  `json:"-"`
	UserID          *string `json:"user_id,omitempty"`
	EmployeeNumber  *string `json:"employee_number,omitempty"`
	FirstName       *string `json:"first_name,omitempty"`
	LastName        *string `json:"last_name,omitempty"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Position        *string `json:"position,omitempty"`
	Department      *string `json:"department,omitempty"`
	Campaign        *string `json:"campaign,omitempty"`
	Status          *string `json:"status,omitempty"`
	JoinDate        *string `json:"join_date,omitempty"`
	LastWorkingDate *string `json:"last_working_date,omitempty"`
	PersonalEmail   *string `json:"personal_email,omitempty"`
	EmergencyName   *string `json:"emergency_name,omitempty"`
	EmergencyPhone  *string `json:"emergency_phone,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeNumber != nil && validator.IsEmpty(*r.EmployeeNumber) {
		errs.Add("employee_number", "employee_number cannot be empty")
	}
	if r.FirstName != nil && validator.IsEmpty(*r.FirstName) {
		errs.Add("first_name", "first_name cannot be empty")
	}
	if r.LastName != nil && validator.IsEmpty(*r.LastName) {
		errs.Add("last_name", "last_name cannot be empty")
	}
	if r.Status != nil && !validator.IsInSlice(*r.Status, Statuses) {
		errs.Add("status", ErrInvalidStatus.Error())
	}
	validateContact(&errs, r.Email, r.PersonalEmail, r.Phone, r.EmergencyPhone)
	validateDates(&errs, r.JoinDate, r.LastWorkingDate)

	return errs.OrNil()
}

func validateContact(errs *validator.ValidationErrors, email, personalEmail, phone, emergencyPhone *string) {
	if email != nil && *email != "" && !validator.IsValidEmail(*email) {
		errs.Add("email", "email must be a valid email address")
	}
	if personalEmail != nil && *personalEmail != "" && !validator.IsValidEmail(*personalEmail) {
		errs.Add("personal_email", "personal_email must be a valid email address")
	}
	if phone != nil && *phone != "" && !validator.IsValidPhoneNumber(*phone) {
		errs.Add("phone", "phone must be 7-15 digits")
	}
	if emergencyPhone != nil && *emergencyPhone != "" && !validator.IsValidPhoneNumber(*emergencyPhone) {
		errs.Add("emergency_phone", "emergency_phone must be 7-15 digits")
	}
}

func validateDates(errs *validator.ValidationErrors, joinDate, lastWorkingDate *string) {
	var join, last time.Time
	var okJoin, okLast bool
	if joinDate != nil && *joinDate != "" {
		if join, okJoin = validator.IsValidDate(*joinDate); !okJoin {
			errs.Add("join_date", "join_date must be in YYYY-MM-DD format")
		}
	}
	if lastWorkingDate != nil && *lastWorkingDate != "" {
		if last, okLast = validator.IsValidDate(*lastWorkingDate); !okLast {
			errs.Add("last_working_date", "last_working_date must be in YYYY-MM-DD format")
		}
	}
	if okJoin && okLast && last.Before(join) {
		errs.Add("last_working_date", ErrLastWorkingBeforeJoin.Error())
	}
}

type EmployeeFilter struct {
	Search     *string `json:"search,omitempty"`
	Status     *string `json:"status,omitempty"`
	Campaign   *string `json:"campaign,omitempty"`
	Department *string `json:"department,omitempty"`
	pagination.Params
	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`
}

func (f *EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Status != nil && *f.Status != "" && !validator.IsInSlice(*f.Status, Statuses) {
		errs.Add("status", ErrInvalidStatus.Error())
	}
	if f.SortOrder != "" && !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
		errs.Add("sort_order", "sort_order must be asc or desc")
	}
	f.Params = f.Params.Normalize()
	return errs.OrNil()
}

type ListEmployeeResponse struct {
	Employees  []EmployeeResponse `json:"employees"`
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

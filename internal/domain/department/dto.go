package department

import (
	"strings"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/pkg/pagination"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/validator"
)

type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type DepartmentResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	ParentID    *string   `json:"parent_id,omitempty"`
	ParentName  *string   `json:"parent_name,omitempty"`
	ManagerID   *string   `json:"manager_id,omitempty"`
	ManagerName *string   `json:"manager_name,omitempty"`
	MemberCount int       `json:"user_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToResponse(d Department) DepartmentResponse {
	return DepartmentResponse{
		ID:          d.ID,
		Name:        d.Name,
		Code:        d.Code,
		Description: d.Description,
		IsActive:    d.IsActive,
		ParentID:    d.ParentID,
		ParentName:  d.ParentName,
		ManagerID:   d.ManagerID,
		ManagerName: d.ManagerName,
		MemberCount: d.MemberCount,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type DepartmentDetailResponse struct {
	DepartmentResponse
	Children []Ref    `json:"children"`
	Members  []Member `json:"users"`
}

type CreateDepartmentRequest struct {
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Description *string `json:"description,omitempty"`
	ParentID    *string `json:"parent_id,omitempty"`
	ManagerID   *string `json:"manager_id,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (r *CreateDepartmentRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 200 {
		errs.Add("name", "name must not exceed 200 characters")
	}
	if !validator.IsValidCode(r.Code) {
		errs.Add("code", "code must be 2-50 characters of A-Z, 0-9, _ or -")
	}
	if r.ParentID != nil && *r.ParentID != "" && !validator.IsValidUUID(*r.ParentID) {
		errs.Add("parent_id", "parent_id must be a valid UUID")
	}
	if r.ManagerID != nil && *r.ManagerID != "" && !validator.IsValidUUID(*r.ManagerID) {
		errs.Add("manager_id", "manager_id must be a valid UUID")
	}
	return errs.OrNil()
}

// UpdateDepartmentRequest is a partial update. An empty parent_id or manager_id clears it.
type UpdateDepartmentRequest struct {
	ID          string  `json:"-"`
	Name        *string `json:"name,omitempty"`
	Code        *string `json:"code,omitempty"`
	Description *string `json:"description,omitempty"`
	ParentID    *string `json:"parent_id,omitempty"`
	ManagerID   *string `json:"manager_id,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (r *UpdateDepartmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name cannot be empty")
	}
	if r.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*r.Code))
		r.Code = &code
		if !validator.IsValidCode(code) {
			errs.Add("code", "code must be 2-50 characters of A-Z, 0-9, _ or -")
		}
	}
	if r.ParentID != nil && *r.ParentID != "" && !validator.IsValidUUID(*r.ParentID) {
		errs.Add("parent_id", "parent_id must be a valid UUID")
	}
	if r.ManagerID != nil && *r.ManagerID != "" && !validator.IsValidUUID(*r.ManagerID) {
		errs.Add("manager_id", "manager_id must be a valid UUID")
	}
	return errs.OrNil()
}

type DepartmentFilter struct {
	Search   *string
	IsActive *bool
	ParentID *string
	pagination.Params
}

type ListDepartmentResponse struct {
	Departments []DepartmentResponse `json:"departments"`
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
}

type AddMemberRequest struct {
	UserID    string `json:"user_id"`
	IsPrimary bool   `json:"is_primary"`
}

func (r *AddMemberRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.UserID) {
		errs.Add("user_id", "user_id is required")
	} else if !validator.IsValidUUID(r.UserID) {
		errs.Add("user_id", "user_id must be a valid UUID")
	}
	return errs.OrNil()
}

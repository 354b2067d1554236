package employee

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/employee"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/pagination"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/validator"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	now          func() time.Time
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{employeeRepo: employeeRepo, now: time.Now}
}

func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, ok := validator.IsValidDate(*s)
	if !ok {
		return nil
	}
	return &t
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	employees, total, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	out := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, employee.ToResponse(e))
	}
	return employee.ListEmployeeResponse{
		Employees:  out,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: pagination.TotalPages(total, filter.Limit),
	}, nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	e, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.ToResponse(e), nil
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	created, err := s.employeeRepo.Create(ctx, employee.Employee{
		UserID:          trimmed(req.UserID),
		EmployeeNumber:  req.EmployeeNumber,
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Email:           trimmed(req.Email),
		Phone:           trimmed(req.Phone),
		Position:        trimmed(req.Position),
		Department:      strings.TrimSpace(req.Department),
		Campaign:        strings.TrimSpace(req.Campaign),
		Status:          employee.Status(req.Status),
		JoinDate:        parseDate(req.JoinDate),
		LastWorkingDate: parseDate(req.LastWorkingDate),
		PersonalEmail:   trimmed(req.PersonalEmail),
		EmergencyName:   trimmed(req.EmergencyName),
		EmergencyPhone:  trimmed(req.EmergencyPhone),
		Notes:           req.Notes,
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("Employee created", "employee_id", created.ID, "employee_number", created.EmployeeNumber)
	return employee.ToResponse(created), nil
}

// UpdateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	current, err := s.employeeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	// A date changed on one side must still be consistent with the stored other side.
	join, last := current.JoinDate, current.LastWorkingDate
	if req.JoinDate != nil {
		join = parseDate(req.JoinDate)
	}
	if req.LastWorkingDate != nil {
		last = parseDate(req.LastWorkingDate)
	}
	if join != nil && last != nil && last.Before(*join) {
		var errs validator.ValidationErrors
		errs.Add("last_working_date", employee.ErrLastWorkingBeforeJoin.Error())
		return employee.EmployeeResponse{}, errs
	}

	if err := s.employeeRepo.Update(ctx, req); err != nil {
		return employee.EmployeeResponse{}, err
	}
	return s.GetEmployee(ctx, req.ID)
}

// DeleteEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, id string) error {
	if err := s.employeeRepo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("Employee deleted", "employee_id", id)
	return nil
}

// ListByDepartment implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListByDepartment(ctx context.Context, department string) ([]employee.EmployeeResponse, error) {
	employees, err := s.employeeRepo.ListByDepartment(ctx, department)
	if err != nil {
		return nil, err
	}
	out := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, employee.ToResponse(e))
	}
	return out, nil
}

// Stats implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Stats(ctx context.Context) (employee.Stats, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return s.employeeRepo.Stats(ctx, monthStart)
}

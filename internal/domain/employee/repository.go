package employee

import (
	"context"
	"time"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByNumber(ctx context.Context, employeeNumber string) (Employee, error)
	// GetByNumbers resolves employee numbers in bulk; unknown numbers are absent from the map.
	GetByNumbers(ctx context.Context, employeeNumbers []string) (map[string]Employee, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	Update(ctx context.Context, req UpdateEmployeeRequest) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, int64, error)
	ListActive(ctx context.Context) ([]Employee, error)
	ListByDepartment(ctx context.Context, department string) ([]Employee, error)
	Stats(ctx context.Context, monthStart time.Time) (Stats, error)
}

package employee

import (
	"context"
	"testing"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/employee"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/validator"
	"github.com/bpo-ops/ops-backend-go/internal/repository/postgresql"
	"github.com/bpo-ops/ops-backend-go/internal/repository/postgresql/pgtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreateEmployeeRequestValidate(t *testing.T) {
	tests := []struct {
		name   string
		req    employee.CreateEmployeeRequest
		fields []string
	}{
		{
			name: "valid with defaults",
			req:  employee.CreateEmployeeRequest{EmployeeNumber: "EMP1001", FirstName: "Ana", LastName: "Cruz"},
		},
		{
			name:   "missing names",
			req:    employee.CreateEmployeeRequest{EmployeeNumber: "EMP1001"},
			fields: []string{"first_name", "last_name"},
		},
		{
			name: "bad status and email",
			req: employee.CreateEmployeeRequest{
				EmployeeNumber: "EMP1001", FirstName: "Ana", LastName: "Cruz",
				Status: "fired", Email: strPtr("nope"),
			},
			fields: []string{"status", "email"},
		},
		{
			name: "last working date before join date",
			req: employee.CreateEmployeeRequest{
				EmployeeNumber: "EMP1001", FirstName: "Ana", LastName: "Cruz",
				JoinDate: strPtr("2024-05-01"), LastWorkingDate: strPtr("2024-04-30"),
			},
			fields: []string{"last_working_date"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if len(tt.fields) == 0 {
				require.NoError(t, err)
				assert.Equal(t, "active", tt.req.Status)
				return
			}
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.ElementsMatch(t, tt.fields, keys(verrs.ToMap()))
		})
	}
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestEmployeeService_Lifecycle(t *testing.T) {
	db := pgtest.Open(t)
	svc := NewEmployeeService(postgresql.NewEmployeeRepository(db)).(*EmployeeServiceImpl)
	svc.now = func() time.Time { return time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	ana, err := svc.CreateEmployee(ctx, employee.CreateEmployeeRequest{
		EmployeeNumber: "EMP1001", FirstName: "Ana", LastName: "Cruz",
		Department: "Operations", Campaign: "Acme", JoinDate: strPtr("2024-05-02"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Cruz", ana.FullName)
	assert.Equal(t, "2024-05-02", *ana.JoinDate)

	_, err = svc.CreateEmployee(ctx, employee.CreateEmployeeRequest{EmployeeNumber: "EMP1001", FirstName: "X", LastName: "Y"})
	assert.ErrorIs(t, err, employee.ErrEmployeeNumberExists)

	_, err = svc.CreateEmployee(ctx, employee.CreateEmployeeRequest{
		EmployeeNumber: "EMP1002", FirstName: "Ben", LastName: "Reyes",
		Department: "Support", Campaign: "Acme", Status: "on_leave", JoinDate: strPtr("2023-01-10"),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{ID: ana.ID, Campaign: strPtr("Globex"), Phone: strPtr("+63 917 555 0100")})
	require.NoError(t, err)
	assert.Equal(t, "Globex", updated.Campaign)
	assert.Equal(t, "Operations", updated.Department, "untouched fields keep their value")

	_, err = svc.UpdateEmployee(ctx, employee.UpdateEmployeeRequest{ID: ana.ID, LastWorkingDate: strPtr("2024-01-01")})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs, "last working date checked against the stored join date")

	list, err := svc.ListEmployees(ctx, employee.EmployeeFilter{Campaign: strPtr("Acme")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.TotalCount)
	assert.Equal(t, "EMP1002", list.Employees[0].EmployeeNumber)

	byDept, err := svc.ListByDepartment(ctx, "Operations")
	require.NoError(t, err)
	require.Len(t, byDept, 1)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.ByStatus["on_leave"])
	assert.Equal(t, int64(1), stats.JoinedThisMonth)

	require.NoError(t, svc.DeleteEmployee(ctx, ana.ID))
	_, err = svc.GetEmployee(ctx, ana.ID)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	assert.ErrorIs(t, svc.DeleteEmployee(ctx, ana.ID), employee.ErrEmployeeNotFound)
}

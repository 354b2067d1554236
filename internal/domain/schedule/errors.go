package schedule

import "errors"

var (
	ErrShiftNotFound    = errors.New("shift not found")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrInvalidShiftCode = errors.New("invalid shift code")
	ErrInvalidDateRange = errors.New("end_date must not be before start_date")
	ErrMissingColumns   = errors.New("upload must have employee_code, start_date, end_date and shift_code columns")
)

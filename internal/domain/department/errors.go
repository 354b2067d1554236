package department

import "errors"

var (
	ErrDepartmentNotFound    = errors.New("department not found")
	ErrDepartmentCodeExists  = errors.New("department code already exists")
	ErrParentNotFound        = errors.New("parent department not found")
	ErrCircularParent        = errors.New("parent change would create a cycle")
	ErrDepartmentHasChildren = errors.New("department has child departments")
	ErrDepartmentInUse       = errors.New("department is referenced by processes")
	ErrMemberNotFound        = errors.New("user is not a member of this department")
	ErrManagerNotFound       = errors.New("manager user not found")
)

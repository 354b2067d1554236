package employee

import "errors"

var (
	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrEmployeeNumberExists  = errors.New("employee number already exists")
	ErrInvalidStatus         = errors.New("status must be one of active, on_leave, resigned, inactive")
	ErrLastWorkingBeforeJoin = errors.New("last working date cannot be before join date")
	ErrLinkedUserNotFound    = errors.New("linked user not found")
)

package attendance

import "errors"

var (
	ErrRecordNotFound   = errors.New("attendance record not found")
	ErrDuplicateRecord  = errors.New("attendance record already exists")
	ErrInvalidStatus    = errors.New("invalid attendance status")
	ErrInvalidMonth     = errors.New("month must be between 1 and 12")
	ErrInvalidDate      = errors.New("date must be a valid date, e.g. 2024-03-01")
	ErrTeamMemberExists = errors.New("agent already belongs to this supervisor")
	ErrTeamMemberAbsent = errors.New("agent not found in supervisor's team")
)

package nte

import "errors"

var (
	ErrFormNotFound  = errors.New("Record not found")
	ErrMissingID     = errors.New("Missing id for update")
	ErrUnknownAction = errors.New("Unknown action")
)

package document

import "errors"

var (
	ErrNoData       = errors.New("No data available in sheet.")
	ErrFormNotFound = errors.New("document form not found")

	ErrInvalidImageType = errors.New("invalid file type: only jpg, jpeg, png allowed")
)

package performance

import "errors"

var (
	ErrInvalidMonth     = errors.New("invalid month name")
	ErrEmployeeNotFound = errors.New("employee not found")
)

package annotation

import "errors"

var (
	ErrGeneratorDisabled   = errors.New("text generator is not configured")
	ErrEmptyResponse       = errors.New("text generator returned an empty response")
	ErrUnparseableResponse = errors.New("text generator response could not be parsed")
)

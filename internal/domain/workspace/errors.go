package workspace

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionMismatch = errors.New("session token does not match the requested session")
	ErrSessionChanged  = errors.New("session changed while the request was running, retry")
	ErrNoEmployees     = errors.New("session has no employee data")
	ErrNotRanked       = errors.New("session has not been ranked yet")
	ErrNoFiles         = errors.New("at least one CSV file is required")
	ErrTooManyFiles    = errors.New("too many files in one upload")
	ErrInvalidFileType = errors.New("invalid file type: only .csv allowed")
	ErrNoRowsImported  = errors.New("file contains no employee rows")
)

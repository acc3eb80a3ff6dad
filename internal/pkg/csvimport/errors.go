package csvimport

import "errors"

var (
	ErrSemicolonDelimiter = errors.New("file uses semicolon (;) as delimiter, use comma (,)")
	ErrMalformedCSV       = errors.New("malformed CSV")
)

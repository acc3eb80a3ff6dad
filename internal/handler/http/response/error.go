package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/performance"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/workspace"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/csvimport"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/storage"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		PayloadTooLarge(w, "Upload exceeds the size limit")
		return
	}

	switch {
	// Session errors
	case errors.Is(err, jwt.ErrInvalidSessionToken):
		Unauthorized(w, "Invalid session token")
	case errors.Is(err, workspace.ErrSessionMismatch):
		Forbidden(w, err.Error())
	case errors.Is(err, workspace.ErrSessionNotFound):
		NotFound(w, "Session not found")
	case errors.Is(err, workspace.ErrSessionChanged):
		Conflict(w, err.Error())

	// Import errors, the message names the offending file
	case errors.Is(err, workspace.ErrNoFiles),
		errors.Is(err, workspace.ErrTooManyFiles),
		errors.Is(err, workspace.ErrInvalidFileType),
		errors.Is(err, workspace.ErrNoRowsImported),
		errors.Is(err, csvimport.ErrSemicolonDelimiter),
		errors.Is(err, csvimport.ErrMalformedCSV):
		BadRequest(w, err.Error(), nil)

	// Evaluation errors
	case errors.Is(err, workspace.ErrNoEmployees):
		BadRequest(w, "Session has no employee data", nil)
	case errors.Is(err, workspace.ErrNotRanked):
		Conflict(w, "Run the ranking first")

	case errors.Is(err, performance.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Storage errors
	case errors.Is(err, storage.ErrFileNotFound):
		NotFound(w, "File not found")
	case errors.Is(err, storage.ErrInvalidPath):
		BadRequest(w, "Invalid file path", nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

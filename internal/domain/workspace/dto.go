package workspace

import (
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/validator"
)

// ========================================
// SESSION
// ========================================

type CreateSessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionResponse struct {
	ID        string    `json:"id"`
	Employees int       `json:"employees"`
	Ranked    bool      `json:"ranked"`
	Status    string    `json:"status"`
	Warning   string    `json:"warning,omitempty"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSessionResponse(s Session) SessionResponse {
	return SessionResponse{
		ID:        s.ID,
		Employees: len(s.Registry),
		Ranked:    s.Ranked(),
		Status:    s.Status,
		Warning:   s.Warning,
		Version:   s.Version,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// ========================================
// IMPORT
// ========================================

type ImportMode string

const (
	ImportModeReplace ImportMode = "replace"
	ImportModeAppend  ImportMode = "append"
)

// UploadedFile is one CSV file of an import request.
type UploadedFile struct {
	Filename string
	Size     int64
	Content  io.Reader
}

type ImportRequest struct {
	Mode     ImportMode
	Files    []UploadedFile
	MaxFiles int
	MaxBytes int64
}

func (r *ImportRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Files) == 0 {
		return ErrNoFiles
	}
	if r.Mode == ImportModeReplace && len(r.Files) != 1 {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "replace accepts exactly one file",
		})
	}
	if r.MaxFiles > 0 && len(r.Files) > r.MaxFiles {
		return fmt.Errorf("%w: %d files, limit is %d", ErrTooManyFiles, len(r.Files), r.MaxFiles)
	}

	for i, f := range r.Files {
		field := fmt.Sprintf("files[%d]", i)
		if validator.IsEmpty(f.Filename) {
			errs = append(errs, validator.ValidationError{Field: field, Message: "filename is required"})
			continue
		}
		if !validator.IsCSVFilename(f.Filename) {
			errs = append(errs, validator.ValidationError{Field: field, Message: ErrInvalidFileType.Error()})
		}
		if r.MaxBytes > 0 && f.Size > r.MaxBytes {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s exceeds %d bytes", f.Filename, r.MaxBytes),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ImportResponse struct {
	Mode             ImportMode `json:"mode"`
	Files            int        `json:"files"`
	RowsRead         int        `json:"rows_read"`
	Inserted         int        `json:"inserted"`
	Merged           int        `json:"merged"`
	MonthsOverridden int        `json:"months_overridden"`
	Employees        int        `json:"employees"`
	Status           string     `json:"status"`
}

// ========================================
// RANKING & ANNOTATION
// ========================================

type RankedRow struct {
	Rank           int     `json:"rank"`
	Score          float64 `json:"score"`
	Name           string  `json:"name"`
	Title          string  `json:"title"`
	Department     string  `json:"department"`
	AverageScore   float64 `json:"average_score"`
	TotalCompleted int     `json:"total_completed"`
	TotalAbsence   int     `json:"total_absence"`
	Note           string  `json:"note"`
}

type RankResponse struct {
	Ranked     []RankedRow `json:"ranked"`
	NoteSource string      `json:"note_source"`
	Warning    string      `json:"warning,omitempty"`
	Version    int64       `json:"version"`
}

type SuggestionsResponse struct {
	Year        int               `json:"year"`
	Suggestions map[string]string `json:"suggestions"`
	Source      string            `json:"source"`
	Warning     string            `json:"warning,omitempty"`
}

type InsightsResponse struct {
	Insights string `json:"insights"`
	Source   string `json:"source"`
	Warning  string `json:"warning,omitempty"`
}

// ========================================
// EXPORT
// ========================================

type ArchiveResponse struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

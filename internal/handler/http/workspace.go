package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/workspace"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

const exportFilename = "karyawan_perankingan.csv"

type WorkspaceHandler interface {
	// Session lifecycle
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)

	// Data
	ImportReplace(w http.ResponseWriter, r *http.Request)
	ImportAppend(w http.ResponseWriter, r *http.Request)
	Reset(w http.ResponseWriter, r *http.Request)

	// Evaluation
	Rank(w http.ResponseWriter, r *http.Request)
	Suggest(w http.ResponseWriter, r *http.Request)
	Insights(w http.ResponseWriter, r *http.Request)

	// Views
	ListEmployees(w http.ResponseWriter, r *http.Request)
	GetEmployee(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	Charts(w http.ResponseWriter, r *http.Request)

	// Export
	ExportCSV(w http.ResponseWriter, r *http.Request)
	ArchiveExport(w http.ResponseWriter, r *http.Request)
}

// UploadLimits bounds multipart imports
type UploadLimits struct {
	MaxBytes int64
	MaxFiles int
}

type workspaceHandlerImpl struct {
	workspaceService workspace.WorkspaceService
	limits           UploadLimits
}

func NewWorkspaceHandler(workspaceService workspace.WorkspaceService, limits UploadLimits) WorkspaceHandler {
	if limits.MaxBytes <= 0 {
		limits.MaxBytes = 10 << 20
	}
	if limits.MaxFiles <= 0 {
		limits.MaxFiles = 12
	}
	return &workspaceHandlerImpl{
		workspaceService: workspaceService,
		limits:           limits,
	}
}

func sessionID(r *http.Request) string {
	if id := middleware.SessionID(r.Context()); id != "" {
		return id
	}
	return chi.URLParam(r, middleware.SessionURLParam)
}

// ========================================
// SESSION LIFECYCLE
// ========================================

// Create handles POST /sessions
func (h *workspaceHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	result, err := h.workspaceService.Create(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Session created", result)
}

// Get handles GET /sessions/{sessionID}
func (h *workspaceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.workspaceService.Get(r.Context(), sessionID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Delete handles DELETE /sessions/{sessionID}
func (h *workspaceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.workspaceService.Delete(r.Context(), sessionID(r)); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Session deleted", nil)
}

// ========================================
// DATA
// ========================================

// ImportReplace handles POST /sessions/{sessionID}/imports/replace
func (h *workspaceHandlerImpl) ImportReplace(w http.ResponseWriter, r *http.Request) {
	h.importFiles(w, r, workspace.ImportModeReplace, "file")
}

// ImportAppend handles POST /sessions/{sessionID}/imports/append
func (h *workspaceHandlerImpl) ImportAppend(w http.ResponseWriter, r *http.Request) {
	h.importFiles(w, r, workspace.ImportModeAppend, "files")
}

func (h *workspaceHandlerImpl) importFiles(w http.ResponseWriter, r *http.Request, mode workspace.ImportMode, field string) {
	// one extra megabyte for multipart framing
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxBytes*int64(h.limits.MaxFiles)+1<<20)
	if err := r.ParseMultipartForm(h.limits.MaxBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			response.HandleError(w, err)
			return
		}
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[field]
	files, closeAll, err := openUploads(headers)
	defer closeAll()
	if err != nil {
		slog.Error("Failed to open uploaded file", "error", err)
		response.BadRequest(w, "Failed to read uploaded file", nil)
		return
	}

	result, err := h.workspaceService.Import(r.Context(), sessionID(r), workspace.ImportRequest{
		Mode:     mode,
		Files:    files,
		MaxFiles: h.limits.MaxFiles,
		MaxBytes: h.limits.MaxBytes,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Status, result)
}

// openUploads opens the parts in form order. The returned func closes every opened part.
func openUploads(headers []*multipart.FileHeader) ([]workspace.UploadedFile, func(), error) {
	files := make([]workspace.UploadedFile, 0, len(headers))
	closers := make([]io.Closer, 0, len(headers))
	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, f)
		files = append(files, workspace.UploadedFile{
			Filename: fh.Filename,
			Size:     fh.Size,
			Content:  f,
		})
	}
	return files, closeAll, nil
}

// Reset handles POST /sessions/{sessionID}/reset
func (h *workspaceHandlerImpl) Reset(w http.ResponseWriter, r *http.Request) {
	result, err := h.workspaceService.ResetDemo(r.Context(), sessionID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Status, result)
}

// ========================================
// EVALUATION
// ========================================

// Rank handles POST /sessions/{sessionID}/ranking
func (h *workspaceHandlerImpl) Rank(w http.ResponseWriter, r *http.Request) {
	result, err := h.workspaceService.Rank(r.Context(), sessionID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Suggest handles POST /sessions/{sessionID}/suggestions
func (h *workspaceHandlerImpl) Suggest(w http.ResponseWriter, r *http.Request) {
	result, err := h.workspaceService.Suggest(r.Context(), sessionID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Insights handles POST /sessions/{sessionID}/insights
func (h *workspaceHandlerImpl) Insights(w http.ResponseWriter, r *http.Request) {
	result, err := h.workspaceService.Insights(r.Context(), sessionID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========================================
// VIEWS
// ========================================

// ListEmployees handles GET /sessions/{sessionID}/employees
func (h *workspaceHandlerImpl) ListEmployees(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := dashboard.ListRequest{
		Query:  query.Get("q"),
		SortBy: query.Get("sort_by"),
		Order:  query.Get("order"),
	}

	details := make(map[string]string)
	if p := query.Get("page"); p != "" {
		page, err := strconv.Atoi(p)
		if err != nil {
			details["page"] = "page must be a number"
		}
		req.Page = page
	}
	if pp := query.Get("per_page"); pp != "" {
		perPage, err := strconv.Atoi(pp)
		if err != nil {
			details["per_page"] = "per_page must be a number"
		}
		req.PerPage = perPage
	}
	if len(details) > 0 {
		response.BadRequest(w, "Invalid pagination parameters", details)
		return
	}

	result, err := h.workspaceService.ListEmployees(r.Context(), sessionID(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Rows, response.PageMeta(result.Pagination))
}

// GetEmployee handles GET /sessions/{sessionID}/employees/{name}
func (h *workspaceHandlerImpl) GetEmployee(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	result, err := h.workspaceService.GetEmployee(r.Context(), sessionID(r), name)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Summary handles GET /sessions/{sessionID}/summary
func (h *workspaceHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	result, err := h.workspaceService.Summary(r.Context(), sessionID(r), r.URL.Query().Get("q"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Charts handles GET /sessions/{sessionID}/charts
func (h *workspaceHandlerImpl) Charts(w http.ResponseWriter, r *http.Request) {
	result, err := h.workspaceService.Charts(r.Context(), sessionID(r), r.URL.Query().Get("q"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========================================
// EXPORT
// ========================================

// ExportCSV handles GET /sessions/{sessionID}/export.csv
func (h *workspaceHandlerImpl) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.workspaceService.ExportCSV(r.Context(), sessionID(r), &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, "text/csv; charset=utf-8", exportFilename, &buf)
}

// ArchiveExport handles POST /sessions/{sessionID}/exports
func (h *workspaceHandlerImpl) ArchiveExport(w http.ResponseWriter, r *http.Request) {
	result, err := h.workspaceService.ArchiveExport(r.Context(), sessionID(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Export archived", result)
}

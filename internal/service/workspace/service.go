package workspace

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/annotation"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/performance"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/ranking"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/workspace"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/fixtures"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/csvimport"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/sse"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/service/file"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Event names published to the session hub
const (
	EventImportStarted    = "import.started"
	EventImportCompleted  = "import.completed"
	EventRankingCompleted = "ranking.completed"
	EventSessionReset     = "session.reset"
)

const (
	statusDemo  = "Menampilkan data demo."
	statusReset = "Data dikembalikan ke data demo."
)

// Config holds the reporting defaults and session limits of the service
type Config struct {
	Year         int
	DefaultScore float64
	SessionTTL   time.Duration
}

// Deps groups the collaborators of the workspace service
type Deps struct {
	Repository workspace.SessionRepository
	Ranking    ranking.RankingService
	Annotation annotation.AnnotationService
	Dashboard  dashboard.DashboardService
	Files      file.FileService
	Tokens     jwt.Service
	Hub        *sse.Hub
	Metrics    *metrics.Manager
}

type workspaceServiceImpl struct {
	Deps
	config Config
	now    func() time.Time
}

func NewWorkspaceService(deps Deps, cfg Config) workspace.WorkspaceService {
	if cfg.Year == 0 {
		cfg.Year = time.Now().Year()
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 2 * time.Hour
	}
	if deps.Hub == nil {
		deps.Hub = sse.NewHub()
	}
	return &workspaceServiceImpl{
		Deps:   deps,
		config: cfg,
		now:    time.Now,
	}
}

// ========================================
// SESSION LIFECYCLE
// ========================================

// Create implements workspace.WorkspaceService. A new session starts with the demo dataset.
func (s *workspaceServiceImpl) Create(ctx context.Context) (workspace.CreateSessionResponse, error) {
	id := uuid.NewString()

	token, expiresAt, err := s.Tokens.GenerateSessionToken(id)
	if err != nil {
		return workspace.CreateSessionResponse{}, fmt.Errorf("failed to issue session token: %w", err)
	}

	session := workspace.Session{
		ID:        id,
		Registry:  fixtures.DemoEmployees(s.config.Year),
		Status:    statusDemo,
		CreatedAt: s.now(),
	}
	if err := s.Repository.Create(ctx, session); err != nil {
		return workspace.CreateSessionResponse{}, fmt.Errorf("failed to create session: %w", err)
	}
	s.refreshActiveSessions(ctx)

	slog.Info("Session created", "session_id", id)

	return workspace.CreateSessionResponse{
		SessionID: id,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Get implements workspace.WorkspaceService.
func (s *workspaceServiceImpl) Get(ctx context.Context, id string) (workspace.SessionResponse, error) {
	session, err := s.Repository.Get(ctx, id)
	if err != nil {
		return workspace.SessionResponse{}, err
	}
	return workspace.NewSessionResponse(session), nil
}

// Delete implements workspace.WorkspaceService.
func (s *workspaceServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.Repository.Delete(ctx, id); err != nil {
		return err
	}
	s.Hub.Close(id)
	s.removeExports(ctx, id)
	s.refreshActiveSessions(ctx)

	slog.Info("Session deleted", "session_id", id)
	return nil
}

// EvictIdle implements workspace.WorkspaceService.
func (s *workspaceServiceImpl) EvictIdle(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.config.SessionTTL)

	removed, err := s.Repository.DeleteIdleSince(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to evict idle sessions: %w", err)
	}
	for _, id := range removed {
		s.Hub.Close(id)
		s.removeExports(ctx, id)
	}
	s.refreshActiveSessions(ctx)

	return len(removed), nil
}

// removeExports drops archived files of a session that no longer exists. The
// session is already gone, so a failure is only logged.
func (s *workspaceServiceImpl) removeExports(ctx context.Context, id string) {
	if err := s.Files.DeleteExports(ctx, id); err != nil {
		slog.Warn("Failed to delete session exports", "session_id", id, "error", err)
	}
}

func (s *workspaceServiceImpl) refreshActiveSessions(ctx context.Context) {
	n, err := s.Repository.Count(ctx)
	if err != nil {
		slog.Warn("Failed to count sessions", "error", err)
		return
	}
	s.Metrics.SetActiveSessions(n)
}

// ========================================
// DATA
// ========================================

// Import implements workspace.WorkspaceService. Files are parsed concurrently and
// merged in upload order; a file that fails to parse aborts the whole import.
func (s *workspaceServiceImpl) Import(ctx context.Context, id string, req workspace.ImportRequest) (workspace.ImportResponse, error) {
	if err := req.Validate(); err != nil {
		return workspace.ImportResponse{}, err
	}
	if _, err := s.Repository.Get(ctx, id); err != nil {
		return workspace.ImportResponse{}, err
	}

	s.publish(id, EventImportStarted, map[string]any{
		"mode":  req.Mode,
		"files": len(req.Files),
	})

	batches, err := s.parseFiles(ctx, req.Files)
	if err != nil {
		return workspace.ImportResponse{}, err
	}

	resp := workspace.ImportResponse{
		Mode:  req.Mode,
		Files: len(req.Files),
	}

	updated, err := s.Repository.Update(ctx, id, func(session *workspace.Session) error {
		registry := session.Registry
		if req.Mode == workspace.ImportModeReplace {
			registry = performance.Registry{}
		}

		for _, batch := range batches {
			countChanges(registry, batch, &resp)
			registry = performance.ReconcileBatch(registry, batch)
		}

		session.Registry = registry
		session.Evaluations = make(map[string]ranking.Evaluation)
		session.Warning = ""
		session.Status = importStatus(req.Mode, len(req.Files), len(registry))
		return nil
	})
	if err != nil {
		return workspace.ImportResponse{}, err
	}

	resp.Employees = len(updated.Registry)
	resp.Status = updated.Status
	s.Metrics.ObserveImport(string(req.Mode), resp.Inserted, resp.Merged, resp.MonthsOverridden)

	slog.Info("Import completed",
		"session_id", id,
		"mode", req.Mode,
		"files", resp.Files,
		"rows", resp.RowsRead,
		"inserted", resp.Inserted,
		"merged", resp.Merged,
	)
	s.publish(id, EventImportCompleted, resp)

	return resp, nil
}

func (s *workspaceServiceImpl) parseFiles(ctx context.Context, files []workspace.UploadedFile) ([][]performance.EmployeeRecord, error) {
	parser := csvimport.Parser{
		Year:         s.config.Year,
		DefaultScore: s.config.DefaultScore,
		Now:          s.now,
	}

	batches := make([][]performance.EmployeeRecord, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, err := parser.Parse(f.Content)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Filename, err)
			}
			if len(records) == 0 {
				return fmt.Errorf("%s: %w", f.Filename, workspace.ErrNoRowsImported)
			}
			batches[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

// countChanges tallies what applying batch to registry will do.
func countChanges(registry performance.Registry, batch []performance.EmployeeRecord, resp *workspace.ImportResponse) {
	for _, incoming := range batch {
		resp.RowsRead++

		existing, ok := registry[incoming.Name]
		if !ok {
			resp.Inserted++
			continue
		}
		resp.Merged++
		for _, m := range performance.Months() {
			if performance.HasObservedData(incoming.History.At(m)) && performance.HasObservedData(existing.History.At(m)) {
				resp.MonthsOverridden++
			}
		}
	}
}

func importStatus(mode workspace.ImportMode, files, employees int) string {
	if mode == workspace.ImportModeReplace {
		return fmt.Sprintf("Data diganti dari 1 file. Total %d karyawan.", employees)
	}
	return fmt.Sprintf("%d file digabungkan. Total %d karyawan.", files, employees)
}

// ResetDemo implements workspace.WorkspaceService.
func (s *workspaceServiceImpl) ResetDemo(ctx context.Context, id string) (workspace.SessionResponse, error) {
	updated, err := s.Repository.Update(ctx, id, func(session *workspace.Session) error {
		session.Registry = fixtures.DemoEmployees(s.config.Year)
		session.Evaluations = make(map[string]ranking.Evaluation)
		session.Status = statusReset
		session.Warning = ""
		return nil
	})
	if err != nil {
		return workspace.SessionResponse{}, err
	}

	resp := workspace.NewSessionResponse(updated)
	s.publish(id, EventSessionReset, resp)
	return resp, nil
}

// ========================================
// EVALUATION
// ========================================

// Rank implements workspace.WorkspaceService. The result is stored only when the
// session did not change while the notes were generated.
func (s *workspaceServiceImpl) Rank(ctx context.Context, id string) (workspace.RankResponse, error) {
	session, err := s.Repository.Get(ctx, id)
	if err != nil {
		return workspace.RankResponse{}, err
	}
	if len(session.Registry) == 0 {
		return workspace.RankResponse{}, workspace.ErrNoEmployees
	}

	ranked := s.Ranking.Rank(session.Registry)
	notes := s.Annotation.Annotate(ctx, ranked)
	for i := range ranked {
		if note, ok := notes.Notes[ranked[i].Name]; ok {
			ranked[i].Note = note
		}
	}

	updated, err := s.Repository.Update(ctx, id, func(current *workspace.Session) error {
		if current.Version != session.Version {
			return workspace.ErrSessionChanged
		}

		evaluations := make(map[string]ranking.Evaluation, len(ranked))
		for _, r := range ranked {
			evaluations[r.Name] = ranking.Evaluation{
				Rank:       r.Rank,
				Score:      r.Score,
				Note:       r.Note,
				NoteSource: string(notes.Source),
			}
		}
		current.Evaluations = evaluations
		current.Status = fmt.Sprintf("Ranking selesai untuk %d karyawan.", len(ranked))
		current.Warning = notes.Warning
		return nil
	})
	if err != nil {
		return workspace.RankResponse{}, err
	}

	resp := workspace.RankResponse{
		Ranked:     make([]workspace.RankedRow, 0, len(ranked)),
		NoteSource: string(notes.Source),
		Warning:    notes.Warning,
		Version:    updated.Version,
	}
	for _, r := range ranked {
		resp.Ranked = append(resp.Ranked, workspace.RankedRow{
			Rank:           r.Rank,
			Score:          r.Score,
			Name:           r.Name,
			Title:          r.Title,
			Department:     r.Department,
			AverageScore:   r.AverageScore,
			TotalCompleted: r.TotalCompleted,
			TotalAbsence:   r.TotalAbsence,
			Note:           r.Note,
		})
	}

	slog.Info("Ranking completed", "session_id", id, "employees", len(ranked), "note_source", notes.Source)
	s.publish(id, EventRankingCompleted, map[string]any{
		"employees":   len(ranked),
		"note_source": notes.Source,
		"version":     updated.Version,
	})

	return resp, nil
}

// Suggest implements workspace.WorkspaceService.
func (s *workspaceServiceImpl) Suggest(ctx context.Context, id string) (workspace.SuggestionsResponse, error) {
	ranked, err := s.rankedEmployees(ctx, id)
	if err != nil {
		return workspace.SuggestionsResponse{}, err
	}

	result := s.Annotation.Suggest(ctx, ranked, s.config.Year)
	return workspace.SuggestionsResponse{
		Year:        s.config.Year,
		Suggestions: result.Suggestions,
		Source:      string(result.Source),
		Warning:     result.Warning,
	}, nil
}

// Insights implements workspace.WorkspaceService.
func (s *workspaceServiceImpl) Insights(ctx context.Context, id string) (workspace.InsightsResponse, error) {
	ranked, err := s.rankedEmployees(ctx, id)
	if err != nil {
		return workspace.InsightsResponse{}, err
	}

	result := s.Annotation.Insights(ctx, ranked, s.Ranking.Weights())
	return workspace.InsightsResponse{
		Insights: result.Text,
		Source:   string(result.Source),
		Warning:  result.Warning,
	}, nil
}

// rankedEmployees rebuilds the ranked list of the latest ranking run, with the
// stored ranks and notes, best first.
func (s *workspaceServiceImpl) rankedEmployees(ctx context.Context, id string) ([]ranking.RankedEmployee, error) {
	session, err := s.Repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(session.Registry) == 0 {
		return nil, workspace.ErrNoEmployees
	}
	if !session.Ranked() {
		return nil, workspace.ErrNotRanked
	}

	ranked := s.Ranking.Rank(session.Registry)
	for i := range ranked {
		if eval, ok := session.Evaluations[ranked[i].Name]; ok {
			ranked[i].Rank = eval.Rank
			ranked[i].Score = eval.Score
			ranked[i].Note = eval.Note
		}
	}
	slices.SortStableFunc(ranked, func(a, b ranking.RankedEmployee) int {
		return cmp.Compare(a.Rank, b.Rank)
	})
	return ranked, nil
}

// ========================================
// VIEWS
// ========================================

func (s *workspaceServiceImpl) view(ctx context.Context, id string) (dashboard.View, error) {
	session, err := s.Repository.Get(ctx, id)
	if err != nil {
		return dashboard.View{}, err
	}
	return dashboard.View{
		Registry:    session.Registry,
		Evaluations: session.Evaluations,
		Now:         s.now(),
	}, nil
}

// ListEmployees implements workspace.WorkspaceService.
func (s *workspaceServiceImpl) ListEmployees(ctx context.Context, id string, req dashboard.ListRequest) (dashboard.ListResponse, error) {
	view, err := s.view(ctx, id)
	if err != nil {
		return dashboard.ListResponse{}, err
	}
	return s.Dashboard.List(view, req)
}

// GetEmployee implements workspace.WorkspaceService.
func (s *workspaceServiceImpl) GetEmployee(ctx context.Context, id, name string) (dashboard.EmployeeDetail, error) {
	view, err := s.view(ctx, id)
	if err != nil {
		return dashboard.EmployeeDetail{}, err
	}
	return s.Dashboard.Detail(view, name)
}

// Summary implements workspace.WorkspaceService.
func (s *workspaceServiceImpl) Summary(ctx context.Context, id, query string) (dashboard.Summary, error) {
	view, err := s.view(ctx, id)
	if err != nil {
		return dashboard.Summary{}, err
	}
	return s.Dashboard.Summary(view, query), nil
}

// Charts implements workspace.WorkspaceService.
func (s *workspaceServiceImpl) Charts(ctx context.Context, id, query string) (dashboard.Charts, error) {
	view, err := s.view(ctx, id)
	if err != nil {
		return dashboard.Charts{}, err
	}
	return s.Dashboard.Charts(view, query), nil
}

// ========================================
// EXPORT
// ========================================

// ExportCSV implements workspace.WorkspaceService. Ranked employees come first in
// rank order, the rest follow by name.
func (s *workspaceServiceImpl) ExportCSV(ctx context.Context, id string, w io.Writer) error {
	session, err := s.Repository.Get(ctx, id)
	if err != nil {
		return err
	}
	if len(session.Registry) == 0 {
		return workspace.ErrNoEmployees
	}

	rows := make([]csvimport.ExportRow, 0, len(session.Registry))
	for name, rec := range session.Registry {
		eval := session.Evaluations[name]
		rows = append(rows, csvimport.ExportRow{
			Record: rec,
			Rank:   eval.Rank,
			Note:   eval.Note,
		})
	}
	slices.SortFunc(rows, compareExportRows)

	return csvimport.Write(w, rows)
}

func compareExportRows(a, b csvimport.ExportRow) int {
	switch {
	case a.Rank > 0 && b.Rank == 0:
		return -1
	case a.Rank == 0 && b.Rank > 0:
		return 1
	}
	if c := cmp.Compare(a.Rank, b.Rank); c != 0 {
		return c
	}
	return cmp.Compare(a.Record.Name, b.Record.Name)
}

// ArchiveExport implements workspace.WorkspaceService.
func (s *workspaceServiceImpl) ArchiveExport(ctx context.Context, id string) (workspace.ArchiveResponse, error) {
	var buf bytes.Buffer
	if err := s.ExportCSV(ctx, id, &buf); err != nil {
		return workspace.ArchiveResponse{}, err
	}

	path, err := s.Files.SaveExport(ctx, id, &buf)
	if err != nil {
		return workspace.ArchiveResponse{}, fmt.Errorf("failed to archive export: %w", err)
	}
	url, err := s.Files.GetFileURL(ctx, path, 0)
	if err != nil {
		return workspace.ArchiveResponse{}, fmt.Errorf("failed to resolve export url: %w", err)
	}

	slog.Info("Export archived", "session_id", id, "path", path)
	return workspace.ArchiveResponse{Path: path, URL: url}, nil
}

func (s *workspaceServiceImpl) publish(id, event string, data any) {
	s.Hub.Publish(id, sse.Event{
		SessionID: id,
		Event:     event,
		Data:      data,
	})
}

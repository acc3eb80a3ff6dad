package workspace

import (
	"context"
	"io"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/dashboard"
)

type WorkspaceService interface {
	// Session lifecycle
	Create(ctx context.Context) (CreateSessionResponse, error)
	Get(ctx context.Context, id string) (SessionResponse, error)
	Delete(ctx context.Context, id string) error
	EvictIdle(ctx context.Context) (int, error)

	// Data
	Import(ctx context.Context, id string, req ImportRequest) (ImportResponse, error)
	ResetDemo(ctx context.Context, id string) (SessionResponse, error)

	// Evaluation
	Rank(ctx context.Context, id string) (RankResponse, error)
	Suggest(ctx context.Context, id string) (SuggestionsResponse, error)
	Insights(ctx context.Context, id string) (InsightsResponse, error)

	// Views
	ListEmployees(ctx context.Context, id string, req dashboard.ListRequest) (dashboard.ListResponse, error)
	GetEmployee(ctx context.Context, id, name string) (dashboard.EmployeeDetail, error)
	Summary(ctx context.Context, id, query string) (dashboard.Summary, error)
	Charts(ctx context.Context, id, query string) (dashboard.Charts, error)

	// Export
	ExportCSV(ctx context.Context, id string, w io.Writer) error
	ArchiveExport(ctx context.Context, id string) (ArchiveResponse, error)
}

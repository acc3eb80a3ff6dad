package annotation

import (
	"context"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/ranking"
)

// TextGenerator is the LLM provider behind the annotation service
type TextGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// AnnotationService produces free-text evaluations for ranked employees.
// None of its operations fail: provider errors degrade to local text.
type AnnotationService interface {
	// Annotate returns one evaluation note per employee
	Annotate(ctx context.Context, ranked []ranking.RankedEmployee) NotesResult

	// Suggest returns one coaching suggestion per employee for the next year
	Suggest(ctx context.Context, ranked []ranking.RankedEmployee, year int) SuggestionsResult

	// Insights summarizes the top of the ranking for the whole team
	Insights(ctx context.Context, ranked []ranking.RankedEmployee, weights ranking.Weights) InsightsResult
}

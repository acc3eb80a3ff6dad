package annotation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/annotation"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/ranking"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/metrics"
)

const (
	kindNotes       = "notes"
	kindSuggestions = "suggestions"
	kindInsights    = "insights"

	warningNoGenerator = "GEMINI_API_KEY tidak ditemukan. Menggunakan fallback heuristik lokal."
)

var errNothingToAnnotate = errors.New("no ranked employees")

type annotationServiceImpl struct {
	generator   annotation.TextGenerator
	temperature float64
	metrics     *metrics.Manager
	now         func() time.Time
}

// NewAnnotationService builds the service. A nil generator makes every
// operation answer with local fallback text.
func NewAnnotationService(generator annotation.TextGenerator, temperature float64, m *metrics.Manager, now func() time.Time) annotation.AnnotationService {
	if now == nil {
		now = time.Now
	}
	return &annotationServiceImpl{
		generator:   generator,
		temperature: temperature,
		metrics:     m,
		now:         now,
	}
}

// Annotate implements annotation.AnnotationService.
func (s *annotationServiceImpl) Annotate(ctx context.Context, ranked []ranking.RankedEmployee) annotation.NotesResult {
	start := time.Now()
	now := s.now()

	result := annotation.NotesResult{
		Notes:  make(map[string]string, len(ranked)),
		Source: annotation.SourceFallback,
	}
	defer func() { s.metrics.ObserveAnnotation(kindNotes, string(result.Source), time.Since(start)) }()

	var parsed map[string]string
	text, err := s.generate(ctx, annotation.FormatNoteList, notesPrompt(ranked), len(ranked))
	if err == nil {
		parsed, err = ParseNotes(text)
	}
	if err != nil && !errors.Is(err, errNothingToAnnotate) {
		result.Warning = warningFor(err, "catatan")
		slog.Warn("annotation: notes fell back to local text", "error", err, "employees", len(ranked))
	}

	fromModel := 0
	for _, e := range ranked {
		if note, ok := parsed[e.Name]; ok {
			result.Notes[e.Name] = note
			fromModel++
			continue
		}
		result.Notes[e.Name] = FallbackNote(e, now)
	}

	result.Source = sourceOf(fromModel, len(ranked))
	if result.Source == annotation.SourceMixed && result.Warning == "" {
		result.Warning = fmt.Sprintf("Gemini hanya mengembalikan %d dari %d catatan, sisanya memakai catatan cadangan.", fromModel, len(ranked))
	}
	return result
}

// Suggest implements annotation.AnnotationService.
func (s *annotationServiceImpl) Suggest(ctx context.Context, ranked []ranking.RankedEmployee, year int) annotation.SuggestionsResult {
	start := time.Now()
	result := annotation.SuggestionsResult{
		Suggestions: make(map[string]string, len(ranked)),
		Source:      annotation.SourceFallback,
	}
	defer func() { s.metrics.ObserveAnnotation(kindSuggestions, string(result.Source), time.Since(start)) }()

	var parsed map[string]string
	text, err := s.generate(ctx, annotation.FormatSuggestionMap, suggestionsPrompt(ranked, year), len(ranked))
	if err == nil {
		parsed, err = ParseSuggestions(text)
	}
	if err != nil && !errors.Is(err, errNothingToAnnotate) {
		result.Warning = warningFor(err, "saran")
		slog.Warn("annotation: suggestions fell back to local text", "error", err, "employees", len(ranked))
	}

	fromModel := 0
	for _, e := range ranked {
		if suggestion, ok := parsed[e.Name]; ok {
			result.Suggestions[e.Name] = suggestion
			fromModel++
			continue
		}
		result.Suggestions[e.Name] = FallbackSuggestion(e.Rank)
	}

	result.Source = sourceOf(fromModel, len(ranked))
	return result
}

// Insights implements annotation.AnnotationService.
func (s *annotationServiceImpl) Insights(ctx context.Context, ranked []ranking.RankedEmployee, weights ranking.Weights) annotation.InsightsResult {
	start := time.Now()
	result := annotation.InsightsResult{Source: annotation.SourceFallback}
	defer func() { s.metrics.ObserveAnnotation(kindInsights, string(result.Source), time.Since(start)) }()

	text, err := s.generate(ctx, annotation.FormatText, insightsPrompt(ranked, weights), len(ranked))
	if err != nil {
		result.Text = FallbackInsights(ranked)
		if !errors.Is(err, errNothingToAnnotate) {
			result.Warning = warningFor(err, "insight")
			slog.Warn("annotation: insights fell back to local summary", "error", err)
		}
		return result
	}

	result.Text = text
	result.Source = annotation.SourceAI
	return result
}

func (s *annotationServiceImpl) generate(ctx context.Context, format annotation.Format, prompt string, employees int) (string, error) {
	if s.generator == nil {
		return "", annotation.ErrGeneratorDisabled
	}
	if employees == 0 {
		return "", errNothingToAnnotate
	}

	text, err := s.generator.Generate(ctx, annotation.GenerateRequest{
		Prompt:      prompt,
		Format:      format,
		Temperature: s.temperature,
	})
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", annotation.ErrEmptyResponse
	}
	return text, nil
}

func sourceOf(fromModel, total int) annotation.Source {
	switch {
	case total > 0 && fromModel == total:
		return annotation.SourceAI
	case fromModel > 0:
		return annotation.SourceMixed
	default:
		return annotation.SourceFallback
	}
}

func warningFor(err error, what string) string {
	switch {
	case errors.Is(err, annotation.ErrGeneratorDisabled):
		return warningNoGenerator
	case errors.Is(err, annotation.ErrUnparseableResponse):
		return fmt.Sprintf("Respon Gemini untuk %s tidak valid. Menggunakan %s cadangan.", what, what)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("Gemini tidak merespon tepat waktu. Menggunakan %s cadangan.", what)
	default:
		return fmt.Sprintf("Gagal memuat %s dari Gemini AI. Menggunakan %s cadangan. Detail: %v", what, what, err)
	}
}

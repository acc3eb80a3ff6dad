package ranking

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/performance"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/ranking"
)

const daysPerYear = 365.25

type rankingServiceImpl struct {
	weights ranking.Weights
	now     func() time.Time
}

func NewRankingService(weights ranking.Weights, now func() time.Time) ranking.RankingService {
	if now == nil {
		now = time.Now
	}
	return &rankingServiceImpl{
		weights: weights,
		now:     now,
	}
}

// Weights implements ranking.RankingService.
func (s *rankingServiceImpl) Weights() ranking.Weights {
	return s.weights
}

// Rank implements ranking.RankingService.
func (s *rankingServiceImpl) Rank(registry performance.Registry) []ranking.RankedEmployee {
	now := s.now()

	ranked := make([]ranking.RankedEmployee, 0, len(registry))
	for _, rec := range registry {
		tenure := TenureYears(rec.Base.StartDate, now)
		absence := rec.TotalAttendance()

		ranked = append(ranked, ranking.RankedEmployee{
			Score:          s.score(rec, absence, tenure),
			Name:           rec.Name,
			Title:          rec.Base.Title,
			Department:     rec.Base.Department,
			Age:            rec.Base.Age,
			Salary:         rec.Base.Salary,
			StartDate:      rec.Base.StartDate,
			AverageScore:   rec.AverageScore,
			TotalCompleted: rec.TotalCompleted,
			TotalAbsence:   absence,
			TenureYears:    tenure,
			History:        rec.History,
		})
	}

	slices.SortFunc(ranked, func(a, b ranking.RankedEmployee) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
		ranked[i].Note = DefaultNote(ranked[i].Score, ranked[i].Rank)
	}

	return ranked
}

func (s *rankingServiceImpl) score(rec performance.EmployeeRecord, absence int, tenure float64) float64 {
	w := s.weights
	return rec.AverageScore*w.AverageScore +
		float64(rec.TotalCompleted)*w.TotalCompleted +
		float64(absence)*w.TotalAbsence +
		tenure*w.TenureYears +
		float64(rec.Base.Age)*w.Age
}

// DefaultNote is the note every ranked employee carries before annotation.
func DefaultNote(score float64, rank int) string {
	return fmt.Sprintf("Skor AI: %.1f / Rank: %d", score, rank)
}

// TenureYears returns the fractional years between start and now, never negative.
func TenureYears(start, now time.Time) float64 {
	if start.IsZero() {
		return 0
	}
	years := now.Sub(start).Hours() / 24 / daysPerYear
	if years < 0 {
		return 0
	}
	return years
}

// TenureLabel renders tenure as "N tahun M bulan".
func TenureLabel(start, now time.Time) string {
	if start.IsZero() {
		return "-"
	}

	years := now.Year() - start.Year()
	months := int(now.Month()) - int(start.Month())
	if months < 0 {
		years--
		months += 12
	}
	if years < 0 || (years == 0 && months == 0) {
		return "Baru masuk"
	}
	return fmt.Sprintf("%d tahun %d bulan", years, months)
}

package ranking

import (
	"time"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/performance"
	"github.com/shopspring/decimal"
)

// Weights are the coefficients of the linear ranking score.
type Weights struct {
	AverageScore   float64 `json:"avg_skor"`
	TotalCompleted float64 `json:"total_proyek"`
	TotalAbsence   float64 `json:"total_absen"`
	TenureYears    float64 `json:"masa_kerja_tahun"`
	Age            float64 `json:"umur"`
}

func DefaultWeights() Weights {
	return Weights{
		AverageScore:   10,
		TotalCompleted: 2,
		TotalAbsence:   -5,
		TenureYears:    1.5,
		Age:            0.1,
	}
}

// RankedEmployee is one row of a ranking run.
type RankedEmployee struct {
	Rank           int
	Score          float64
	Name           string
	Title          string
	Department     string
	Age            int
	Salary         decimal.Decimal
	StartDate      time.Time
	AverageScore   float64
	TotalCompleted int
	TotalAbsence   int
	TenureYears    float64
	History        performance.History
	Note           string
}

// Evaluation is what a session keeps per employee after a ranking run.
type Evaluation struct {
	Rank       int     `json:"rank"`
	Score      float64 `json:"score"`
	Note       string  `json:"note"`
	NoteSource string  `json:"note_source"`
}

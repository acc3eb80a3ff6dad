package ranking

import (
	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/performance"
)

// RankingService scores and orders the employees of a registry
type RankingService interface {
	// Rank returns every employee ordered by score, best first, with ranks 1..n
	Rank(registry performance.Registry) []RankedEmployee

	// Weights returns the coefficients in use
	Weights() Weights
}

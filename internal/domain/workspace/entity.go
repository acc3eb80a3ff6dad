package workspace

import (
	"maps"
	"time"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/performance"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/ranking"
)

// Session owns one registry and the evaluations of its latest ranking run.
// Version increases on every successful mutation.
type Session struct {
	ID             string
	Registry       performance.Registry
	Evaluations    map[string]ranking.Evaluation
	Status         string
	Warning        string
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastAccessedAt time.Time
}

// Clone returns a copy that shares no maps with s.
func (s Session) Clone() Session {
	out := s
	out.Registry = s.Registry.Clone()
	out.Evaluations = maps.Clone(s.Evaluations)
	if out.Evaluations == nil {
		out.Evaluations = make(map[string]ranking.Evaluation)
	}
	return out
}

// Ranked reports whether the session holds evaluations for its current registry.
func (s Session) Ranked() bool {
	return len(s.Evaluations) > 0
}

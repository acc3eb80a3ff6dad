package performance

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// HasObservedData reports whether a month carries input data. A month with no
// absences and no completed projects is a placeholder, whatever its score.
func HasObservedData(r MonthlyRecord) bool {
	return r.AttendanceCount > 0 || r.CompletedCount > 0
}

// CountsTowardAverage reports whether a month enters the average score.
// An observed month whose score is exactly zero is excluded, so a real zero
// score cannot be told apart from a missing one.
func CountsTowardAverage(r MonthlyRecord) bool {
	return HasObservedData(r) && r.PerformanceScore > 0
}

// NormalizeName trims, collapses runs of whitespace and applies Unicode NFC.
// Case is preserved.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.Join(strings.Fields(name), " "))
}

// Recompute refreshes TotalCompleted and AverageScore from the history.
func Recompute(e *EmployeeRecord) {
	total := 0
	sum := 0.0
	scored := 0
	for _, r := range e.History {
		total += r.CompletedCount
		if CountsTowardAverage(r) {
			sum += r.PerformanceScore
			scored++
		}
	}

	e.TotalCompleted = total
	e.AverageScore = 0
	if scored > 0 {
		e.AverageScore = sum / float64(scored)
	}
}

// Merge folds incoming into existing. Base fields are replaced wholesale; a month
// is replaced only when the incoming month has observed data.
func Merge(existing, incoming EmployeeRecord) EmployeeRecord {
	merged := existing
	merged.Base = incoming.Base

	for _, m := range Months() {
		in := incoming.History.At(m)
		if HasObservedData(in) {
			in.Month = m
			merged.History.Set(in)
		}
	}

	Recompute(&merged)
	return merged
}

// Reconcile returns a new registry with incoming merged in. The given registry
// is not modified.
func Reconcile(registry Registry, incoming EmployeeRecord) Registry {
	out := registry.Clone()
	apply(out, incoming)
	return out
}

// ReconcileBatch applies every record of batch in slice order. Later records win
// on months that more than one record reports.
func ReconcileBatch(registry Registry, batch []EmployeeRecord) Registry {
	out := registry.Clone()
	for _, incoming := range batch {
		apply(out, incoming)
	}
	return out
}

func apply(registry Registry, incoming EmployeeRecord) {
	existing, ok := registry[incoming.Name]
	if !ok {
		registry[incoming.Name] = incoming
		return
	}
	registry[incoming.Name] = Merge(existing, incoming)
}

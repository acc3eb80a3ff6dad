package performance

import (
	"time"

	"github.com/shopspring/decimal"
)

type EmploymentStatus string

const (
	EmploymentStatusPermanent EmploymentStatus = "Tetap"
	EmploymentStatusContract  EmploymentStatus = "Kontrak"
	EmploymentStatusFreelance EmploymentStatus = "Freelance"
)

// MonthlyRecord is one employee's figures for one month.
type MonthlyRecord struct {
	Month            Month   `json:"month"`
	Year             int     `json:"year"`
	AttendanceCount  int     `json:"attendance_count"` // absence days
	CompletedCount   int     `json:"completed_count"`  // completed projects
	PerformanceScore float64 `json:"performance_score"`
	ManagerNote      string  `json:"manager_note,omitempty"`
}

// BaseFields are the demographic and employment attributes of an employee.
// A later batch always supersedes them as a whole.
type BaseFields struct {
	Age        int              `json:"age"`
	Residence  string           `json:"residence"`
	Title      string           `json:"title"`
	Department string           `json:"department"`
	Salary     decimal.Decimal  `json:"salary"`
	StartDate  time.Time        `json:"start_date"`
	Status     EmploymentStatus `json:"status"`
}

// History holds exactly one record per month, indexed by calendar order.
type History [MonthsPerYear]MonthlyRecord

// At returns the record for m.
func (h History) At(m Month) MonthlyRecord {
	return h[m.index()]
}

// Set stores r in the slot for r.Month.
func (h *History) Set(r MonthlyRecord) {
	h[r.Month.index()] = r
}

// EmployeeRecord is the accumulated state of one employee. Name is the identity key.
type EmployeeRecord struct {
	Name           string     `json:"name"`
	Base           BaseFields `json:"base"`
	History        History    `json:"history"`
	TotalCompleted int        `json:"total_completed"`
	AverageScore   float64    `json:"average_score"`
}

// NewEmployeeRecord returns a record whose twelve history slots are empty placeholders for year.
func NewEmployeeRecord(name string, year int) EmployeeRecord {
	rec := EmployeeRecord{Name: name}
	for _, m := range Months() {
		rec.History.Set(MonthlyRecord{Month: m, Year: year})
	}
	return rec
}

// TotalAttendance sums absence days over the whole history.
func (e EmployeeRecord) TotalAttendance() int {
	total := 0
	for _, r := range e.History {
		total += r.AttendanceCount
	}
	return total
}

// Registry maps employee name to its accumulated record.
type Registry map[string]EmployeeRecord

// Clone returns a shallow copy. Records are values, so entries are not shared.
func (r Registry) Clone() Registry {
	out := make(Registry, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

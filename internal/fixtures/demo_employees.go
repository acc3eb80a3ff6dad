package fixtures

import (
	"time"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/performance"
	"github.com/shopspring/decimal"
)

// ==========================================
// DEMO EMPLOYEES
// ==========================================

// demoMonth is the figure every month of a demo employee carries
type demoMonth struct {
	Absence   int
	Completed int
	Score     float64
}

type demoEmployee struct {
	Name       string
	Age        int
	Residence  string
	Title      string
	Department string
	Salary     int64
	StartDate  string
	Status     performance.EmploymentStatus
	Month      demoMonth
}

const demoManagerNote = "Kinerja standar."

var demoEmployees = []demoEmployee{
	{
		Name:       "Yova Pradnyana",
		Age:        28,
		Residence:  "Jakarta",
		Title:      "Software Engineer",
		Department: "IT",
		Salary:     9_000_000,
		StartDate:  "2022-08-15",
		Status:     performance.EmploymentStatusPermanent,
		Month:      demoMonth{Absence: 1, Completed: 1, Score: 4.5},
	},
}

// DemoEmployees returns the dataset a session starts from and returns to on reset.
// Every month of year carries the same observed figures.
func DemoEmployees(year int) performance.Registry {
	registry := make(performance.Registry, len(demoEmployees))
	for _, d := range demoEmployees {
		start, _ := time.Parse("2006-01-02", d.StartDate)

		rec := performance.NewEmployeeRecord(d.Name, year)
		rec.Base = performance.BaseFields{
			Age:        d.Age,
			Residence:  d.Residence,
			Title:      d.Title,
			Department: d.Department,
			Salary:     decimal.NewFromInt(d.Salary),
			StartDate:  start,
			Status:     d.Status,
		}
		for _, m := range performance.Months() {
			rec.History.Set(performance.MonthlyRecord{
				Month:            m,
				Year:             year,
				AttendanceCount:  d.Month.Absence,
				CompletedCount:   d.Month.Completed,
				PerformanceScore: d.Month.Score,
				ManagerNote:      demoManagerNote,
			})
		}
		performance.Recompute(&rec)

		registry[rec.Name] = rec
	}
	return registry
}

package dashboard

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/performance"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/service/ranking"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const dateLayout = "2006-01-02"

type dashboardServiceImpl struct {
	defaultPerPage int
}

func NewDashboardService(defaultPerPage int) dashboard.DashboardService {
	if defaultPerPage <= 0 {
		defaultPerPage = 10
	}
	return &dashboardServiceImpl{
		defaultPerPage: defaultPerPage,
	}
}

// List implements dashboard.DashboardService.
func (s *dashboardServiceImpl) List(view dashboard.View, req dashboard.ListRequest) (dashboard.ListResponse, error) {
	req.Normalize(s.defaultPerPage)
	if err := req.Validate(); err != nil {
		return dashboard.ListResponse{}, err
	}

	rows := s.rows(view, filter(view.Registry, req.Query))
	sortRows(rows, req.SortBy, req.Order == dashboard.OrderDesc)

	totalItems := len(rows)
	totalPages := max(1, int(math.Ceil(float64(totalItems)/float64(req.PerPage))))

	start := totalItems
	if req.Page <= totalPages {
		start = (req.Page - 1) * req.PerPage
	}
	end := min(start+req.PerPage, totalItems)

	return dashboard.ListResponse{
		Rows: rows[start:end],
		Pagination: dashboard.Pagination{
			Page:       req.Page,
			PerPage:    req.PerPage,
			TotalItems: totalItems,
			TotalPages: totalPages,
		},
	}, nil
}

// Summary implements dashboard.DashboardService.
func (s *dashboardServiceImpl) Summary(view dashboard.View, query string) dashboard.Summary {
	matched := filter(view.Registry, query)

	summary := dashboard.Summary{
		TotalEmployees: len(matched),
		TotalSalary:    decimal.Zero,
	}
	absence := 0
	for _, rec := range matched {
		summary.TotalSalary = summary.TotalSalary.Add(rec.Base.Salary)
		absence += rec.TotalAttendance()
		if _, ok := view.Evaluations[rec.Name]; ok {
			summary.RankedEmployees++
		}
	}
	if len(matched) > 0 {
		summary.AverageAnnualAbsence = int(math.Round(float64(absence) / float64(len(matched))))
	}

	return summary
}

// Charts implements dashboard.DashboardService.
func (s *dashboardServiceImpl) Charts(view dashboard.View, query string) dashboard.Charts {
	matched := filter(view.Registry, query)

	salary := make(map[string]decimal.Decimal)
	headcount := make(map[string]int)
	for _, rec := range matched {
		dept := rec.Base.Department
		salary[dept] = salary[dept].Add(rec.Base.Salary)
		headcount[dept]++
	}

	departments := make([]string, 0, len(headcount))
	for dept := range headcount {
		departments = append(departments, dept)
	}
	slices.Sort(departments)

	charts := dashboard.Charts{
		SalaryByDepartment:    make([]dashboard.DepartmentSalary, 0, len(departments)),
		HeadcountByDepartment: make([]dashboard.DepartmentHeadcount, 0, len(departments)),
		AbsenceByMonth:        make([]dashboard.MonthlyAbsence, 0, performance.MonthsPerYear),
	}
	for _, dept := range departments {
		charts.SalaryByDepartment = append(charts.SalaryByDepartment, dashboard.DepartmentSalary{Department: dept, Total: salary[dept]})
		charts.HeadcountByDepartment = append(charts.HeadcountByDepartment, dashboard.DepartmentHeadcount{Department: dept, Count: headcount[dept]})
	}

	// absences per month are averaged over every employee, not the filtered set
	employees := max(1, len(view.Registry))
	for _, m := range performance.Months() {
		total := 0
		for _, rec := range view.Registry {
			total += rec.History.At(m).AttendanceCount
		}
		charts.AbsenceByMonth = append(charts.AbsenceByMonth, dashboard.MonthlyAbsence{
			Month:   m,
			Average: int(math.Round(float64(total) / float64(employees))),
		})
	}

	return charts
}

// Detail implements dashboard.DashboardService.
func (s *dashboardServiceImpl) Detail(view dashboard.View, name string) (dashboard.EmployeeDetail, error) {
	rec, ok := view.Registry[performance.NormalizeName(name)]
	if !ok {
		return dashboard.EmployeeDetail{}, performance.ErrEmployeeNotFound
	}

	history := make([]performance.MonthlyRecord, 0, performance.MonthsPerYear)
	for _, m := range performance.Months() {
		history = append(history, rec.History.At(m))
	}

	return dashboard.EmployeeDetail{
		EmployeeRow: s.row(view, rec),
		History:     history,
	}, nil
}

func (s *dashboardServiceImpl) rows(view dashboard.View, records []performance.EmployeeRecord) []dashboard.EmployeeRow {
	rows := make([]dashboard.EmployeeRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, s.row(view, rec))
	}
	return rows
}

func (s *dashboardServiceImpl) row(view dashboard.View, rec performance.EmployeeRecord) dashboard.EmployeeRow {
	row := dashboard.EmployeeRow{
		Name:           rec.Name,
		Age:            rec.Base.Age,
		Residence:      rec.Base.Residence,
		Title:          rec.Base.Title,
		Department:     rec.Base.Department,
		Salary:         rec.Base.Salary,
		Tenure:         ranking.TenureLabel(rec.Base.StartDate, view.Now),
		Status:         string(rec.Base.Status),
		TotalCompleted: rec.TotalCompleted,
		AverageScore:   rec.AverageScore,
		TotalAbsence:   rec.TotalAttendance(),
	}
	if !rec.Base.StartDate.IsZero() {
		row.StartDate = rec.Base.StartDate.Format(dateLayout)
	}
	if eval, ok := view.Evaluations[rec.Name]; ok {
		rank, score := eval.Rank, eval.Score
		row.Rank = &rank
		row.Score = &score
		row.Note = eval.Note
	}
	return row
}

// filter keeps records whose name, residence, title or department contains
// query, ignoring case. Records come back sorted by name.
func filter(registry performance.Registry, query string) []performance.EmployeeRecord {
	collator := collate.New(language.Indonesian, collate.IgnoreCase)
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(query))

	out := make([]performance.EmployeeRecord, 0, len(registry))
	for _, rec := range registry {
		if needle == "" || matches(fold, needle, rec) {
			out = append(out, rec)
		}
	}
	slices.SortFunc(out, func(a, b performance.EmployeeRecord) int {
		if c := collator.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

func matches(fold cases.Caser, needle string, rec performance.EmployeeRecord) bool {
	for _, field := range []string{rec.Name, rec.Base.Residence, rec.Base.Title, rec.Base.Department} {
		if strings.Contains(fold.String(field), needle) {
			return true
		}
	}
	return false
}

// sortRows orders rows by key. Unranked rows stay last when sorting by rank
// or score, whatever the direction. Ties keep name order.
func sortRows(rows []dashboard.EmployeeRow, key string, desc bool) {
	collator := collate.New(language.Indonesian, collate.IgnoreCase)
	text := func(a, b string) int { return collator.CompareString(a, b) }

	slices.SortStableFunc(rows, func(a, b dashboard.EmployeeRow) int {
		var c int
		switch key {
		case dashboard.SortByRank, dashboard.SortByScore:
			if (a.Rank == nil) != (b.Rank == nil) {
				if a.Rank == nil {
					return 1
				}
				return -1
			}
			if a.Rank == nil {
				return 0
			}
			if key == dashboard.SortByRank {
				c = cmp.Compare(*a.Rank, *b.Rank)
			} else {
				c = cmp.Compare(*a.Score, *b.Score)
			}
		case dashboard.SortByName:
			c = text(a.Name, b.Name)
		case dashboard.SortByAge:
			c = cmp.Compare(a.Age, b.Age)
		case dashboard.SortBySalary:
			c = a.Salary.Cmp(b.Salary)
		case dashboard.SortByDepartment:
			c = text(a.Department, b.Department)
		case dashboard.SortByTitle:
			c = text(a.Title, b.Title)
		case dashboard.SortByResidence:
			c = text(a.Residence, b.Residence)
		case dashboard.SortByStartDate:
			c = cmp.Compare(a.StartDate, b.StartDate)
		case dashboard.SortByStatus:
			c = text(a.Status, b.Status)
		case dashboard.SortByTotalCompleted:
			c = cmp.Compare(a.TotalCompleted, b.TotalCompleted)
		case dashboard.SortByAverageScore:
			c = cmp.Compare(a.AverageScore, b.AverageScore)
		case dashboard.SortByTotalAbsence:
			c = cmp.Compare(a.TotalAbsence, b.TotalAbsence)
		}
		if desc {
			c = -c
		}
		return c
	})
}

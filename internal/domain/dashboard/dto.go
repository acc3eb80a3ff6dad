package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/performance"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/ranking"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// View is the read-only state a dashboard is rendered from.
type View struct {
	Registry    performance.Registry
	Evaluations map[string]ranking.Evaluation
	Now         time.Time
}

// ========================================
// EMPLOYEE TABLE
// ========================================

const (
	SortByRank           = "rank"
	SortByName           = "name"
	SortByAge            = "age"
	SortBySalary         = "salary"
	SortByDepartment     = "department"
	SortByTitle          = "title"
	SortByResidence      = "residence"
	SortByStartDate      = "start_date"
	SortByStatus         = "status"
	SortByTotalCompleted = "total_completed"
	SortByAverageScore   = "average_score"
	SortByTotalAbsence   = "total_absence"
	SortByScore          = "score"

	OrderAsc  = "asc"
	OrderDesc = "desc"

	MaxPerPage = 100
)

var sortKeys = []string{
	SortByRank, SortByName, SortByAge, SortBySalary, SortByDepartment, SortByTitle,
	SortByResidence, SortByStartDate, SortByStatus, SortByTotalCompleted,
	SortByAverageScore, SortByTotalAbsence, SortByScore,
}

type ListRequest struct {
	Query   string `json:"q"`
	SortBy  string `json:"sort_by"`
	Order   string `json:"order"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

// Normalize fills defaults for empty fields.
func (r *ListRequest) Normalize(defaultPerPage int) {
	r.Query = strings.TrimSpace(r.Query)
	r.SortBy = strings.ToLower(strings.TrimSpace(r.SortBy))
	r.Order = strings.ToLower(strings.TrimSpace(r.Order))
	if r.SortBy == "" {
		r.SortBy = SortByRank
	}
	if r.Order == "" {
		r.Order = OrderAsc
	}
	if r.Page == 0 {
		r.Page = 1
	}
	if r.PerPage == 0 {
		r.PerPage = defaultPerPage
	}
}

func (r *ListRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.SortBy, sortKeys) {
		errs = append(errs, validator.ValidationError{
			Field:   "sort_by",
			Message: fmt.Sprintf("sort_by must be one of %s", strings.Join(sortKeys, ", ")),
		})
	}

	if !validator.IsInSlice(r.Order, []string{OrderAsc, OrderDesc}) {
		errs = append(errs, validator.ValidationError{
			Field:   "order",
			Message: "order must be asc or desc",
		})
	}

	if r.Page < 1 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be at least 1",
		})
	}

	if !validator.IsInRange(r.PerPage, 1, MaxPerPage) {
		errs = append(errs, validator.ValidationError{
			Field:   "per_page",
			Message: fmt.Sprintf("per_page must be between 1 and %d", MaxPerPage),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeRow struct {
	Rank           *int            `json:"rank"`
	Score          *float64        `json:"score"`
	Name           string          `json:"name"`
	Age            int             `json:"age"`
	Residence      string          `json:"residence"`
	Title          string          `json:"title"`
	Department     string          `json:"department"`
	Salary         decimal.Decimal `json:"salary"`
	StartDate      string          `json:"start_date"`
	Tenure         string          `json:"tenure"`
	Status         string          `json:"status"`
	TotalCompleted int             `json:"total_completed"`
	AverageScore   float64         `json:"average_score"`
	TotalAbsence   int             `json:"total_absence"`
	Note           string          `json:"note,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

type ListResponse struct {
	Rows       []EmployeeRow `json:"rows"`
	Pagination Pagination    `json:"pagination"`
}

// ========================================
// EMPLOYEE DETAIL
// ========================================

type EmployeeDetail struct {
	EmployeeRow
	History []performance.MonthlyRecord `json:"history"`
}

// ========================================
// SUMMARY & CHARTS
// ========================================

type Summary struct {
	TotalEmployees       int             `json:"total_employees"`
	RankedEmployees      int             `json:"ranked_employees"`
	TotalSalary          decimal.Decimal `json:"total_salary"`
	AverageAnnualAbsence int             `json:"average_annual_absence"`
}

type DepartmentSalary struct {
	Department string          `json:"department"`
	Total      decimal.Decimal `json:"total"`
}

type DepartmentHeadcount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

type MonthlyAbsence struct {
	Month   performance.Month `json:"month"`
	Average int               `json:"average"`
}

type Charts struct {
	SalaryByDepartment    []DepartmentSalary    `json:"salary_by_department"`
	HeadcountByDepartment []DepartmentHeadcount `json:"headcount_by_department"`
	AbsenceByMonth        []MonthlyAbsence      `json:"absence_by_month"`
}

package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/performance"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const defaultDepartment = "General"

var (
	tenureRe    = regexp.MustCompile(`(?i)(\d+)\s*tahun`)
	dateLayouts = []string{"2006/01/02", "02/01/2006", "02-01-2006", time.RFC3339}
)

// Parser turns one CSV file into employee records. Zero values of Year and Now
// default to the current year and time.Now.
type Parser struct {
	Year         int
	DefaultScore float64
	Now          func() time.Time
}

// row is one CSV line keyed by normalized header.
type row map[string]string

// first returns the first non-empty value among keys.
func (r row) first(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r[k]); v != "" {
			return v
		}
	}
	return ""
}

// Parse reads every row of r. Rows without a name are skipped and the first row
// wins when a name repeats. Records come back in file order.
func (p Parser) Parse(r io.Reader) ([]performance.EmployeeRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}
	if len(header) == 1 && strings.Contains(header[0], ";") {
		return nil, ErrSemicolonDelimiter
	}

	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = NormalizeHeader(h)
	}

	var records []performance.EmployeeRecord
	seen := make(map[string]bool)
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
		}

		raw := make(row, len(keys))
		for i, k := range keys {
			if i < len(fields) {
				raw[k] = fields[i]
			}
		}

		rec, ok := p.parseRow(raw)
		if !ok || seen[rec.Name] {
			continue
		}
		seen[rec.Name] = true
		records = append(records, rec)
	}

	return records, nil
}

func (p Parser) parseRow(raw row) (performance.EmployeeRecord, bool) {
	name := performance.NormalizeName(raw.first("nama", "name"))
	if name == "" {
		return performance.EmployeeRecord{}, false
	}

	year := parseCount(raw.first("tahun"))
	if year == 0 {
		year = p.year()
	}

	score := parseNumber(raw.first("avg_skor_kinerja", "avgskorkinerja", "avg_skor"))
	if score == 0 {
		if total := parseCount(raw.first("proyek_selesai", "total_proyek_selesai")); total > 0 {
			score = ScoreFromCompleted(total)
		} else {
			score = p.DefaultScore
		}
	}

	rec := performance.NewEmployeeRecord(name, year)
	for _, m := range performance.Months() {
		completed := parseCount(raw.first("proyek_selesai_"+m.Short(), "proyek_selesai_"+m.Key()))
		month := performance.MonthlyRecord{
			Month:           m,
			Year:            year,
			AttendanceCount: parseCount(raw.first("absensi_" + m.Key())),
			CompletedCount:  completed,
		}
		if performance.HasObservedData(month) {
			month.PerformanceScore = score
			// per-month columns written by Write take precedence, an explicit 0 included
			if s := raw.first("skor_" + m.Key()); s != "" {
				month.PerformanceScore = parseNumber(s)
			}
			month.ManagerNote = raw.first("catatan_manajer_"+m.Key(), "catatanmanajer")
		}
		rec.History.Set(month)
	}

	rec.Base = performance.BaseFields{
		Age:        parseCount(raw.first("umur", "age")),
		Residence:  raw.first("tempattinggal", "kotatinggal", "city"),
		Title:      raw.first("jabatan", "posisi", "position"),
		Department: raw.first("departemen", "department"),
		Salary:     parseDecimal(raw.first("gaji", "salary")),
		StartDate:  p.startDate(raw),
		Status:     ParseStatus(raw.first("status")),
	}
	if rec.Base.Department == "" {
		rec.Base.Department = defaultDepartment
	}

	performance.Recompute(&rec)
	return rec, true
}

func (p Parser) year() int {
	if p.Year > 0 {
		return p.Year
	}
	return p.now().Year()
}

func (p Parser) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// startDate reads the join date, falling back to a tenure such as "3 tahun"
// and finally to one year ago.
func (p Parser) startDate(raw row) time.Time {
	if s := raw.first("tanggalmasuk", "join_date"); s != "" {
		if t, ok := validator.IsValidDate(s); ok {
			return t
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	}

	now := p.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if m := tenureRe.FindStringSubmatch(raw.first("masakerja", "masakerja_tahun")); m != nil {
		years, _ := strconv.Atoi(m[1])
		return today.AddDate(-years, 0, 0)
	}
	return today.AddDate(-1, 0, 0)
}

// ScoreFromCompleted estimates a score between 2.5 and 5 from a yearly project total.
func ScoreFromCompleted(total int) float64 {
	perMonth := float64(total) / performance.MonthsPerYear
	score := 2.5 + math.Min(1.5, perMonth/4*1.5)
	return math.Max(2.5, math.Min(5.0, score))
}

// ParseStatus maps free text onto an employment status. Anything that is not
// permanent or freelance counts as contract.
func ParseStatus(raw string) performance.EmploymentStatus {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "tetap"):
		return performance.EmploymentStatusPermanent
	case strings.Contains(s, "freelance"):
		return performance.EmploymentStatusFreelance
	default:
		return performance.EmploymentStatusContract
	}
}

// parseNumber accepts a decimal comma. Invalid, missing and negative values are 0.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseCount(s string) int {
	return int(parseNumber(s))
}

// parseDecimal reads amounts such as "9000000", "9.000.000" or "Rp 9.000.000,50".
func parseDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "rp"))
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero
	}

	switch {
	case strings.Count(s, ".") > 1 || (strings.Contains(s, ".") && strings.Contains(s, ",")):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case strings.Contains(s, ","):
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

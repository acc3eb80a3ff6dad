package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/performance"
	"github.com/shopspring/decimal"
)

// ExportRow is one employee line of an export. Rank 0 means not ranked.
type ExportRow struct {
	Record performance.EmployeeRecord
	Rank   int
	Note   string
}

// ExportHeader returns the column titles of an export file. The per-month score
// and note columns let the file be imported again without losing history.
func ExportHeader() []string {
	header := []string{
		"nama", "umur", "tempatTinggal", "jabatan", "departemen", "gaji", "tanggalMasuk", "status",
		"rank_ai", "catatan_ai", "total_proyek_selesai", "avg_skor_kinerja",
	}
	for _, m := range performance.Months() {
		header = append(header, "absensi_"+m.Key())
	}
	for _, m := range performance.Months() {
		header = append(header, "proyek_selesai_"+m.Short())
	}
	for _, m := range performance.Months() {
		header = append(header, "skor_"+m.Key())
	}
	for _, m := range performance.Months() {
		header = append(header, "catatan_manajer_"+m.Key())
	}
	return header
}

// Write encodes rows in the given order.
func Write(w io.Writer, rows []ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range rows {
		if err := cw.Write(exportFields(r)); err != nil {
			return fmt.Errorf("write row %q: %w", r.Record.Name, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func exportFields(r ExportRow) []string {
	rec := r.Record
	rank := "-"
	if r.Rank > 0 {
		rank = strconv.Itoa(r.Rank)
	}
	startDate := ""
	if !rec.Base.StartDate.IsZero() {
		startDate = rec.Base.StartDate.Format("2006-01-02")
	}

	fields := []string{
		rec.Name,
		strconv.Itoa(rec.Base.Age),
		rec.Base.Residence,
		rec.Base.Title,
		rec.Base.Department,
		rec.Base.Salary.String(),
		startDate,
		string(rec.Base.Status),
		rank,
		strings.ReplaceAll(r.Note, `"`, ""),
		strconv.Itoa(rec.TotalCompleted),
		decimal.NewFromFloat(rec.AverageScore).Round(2).String(),
	}
	for _, m := range performance.Months() {
		fields = append(fields, strconv.Itoa(rec.History.At(m).AttendanceCount))
	}
	for _, m := range performance.Months() {
		fields = append(fields, strconv.Itoa(rec.History.At(m).CompletedCount))
	}
	// placeholders stay blank, the parser ignores them
	for _, m := range performance.Months() {
		score := ""
		if month := rec.History.At(m); performance.HasObservedData(month) {
			score = strconv.FormatFloat(month.PerformanceScore, 'f', -1, 64)
		}
		fields = append(fields, score)
	}
	for _, m := range performance.Months() {
		note := ""
		if month := rec.History.At(m); performance.HasObservedData(month) {
			note = month.ManagerNote
		}
		fields = append(fields, note)
	}
	return fields
}

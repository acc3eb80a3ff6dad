package annotation

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/ranking"
	rankingsvc "github.com/cmlabs-hris/performance-dashboard-go/internal/service/ranking"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var rupiah = message.NewPrinter(language.Indonesian)

// FormatRupiah renders whole rupiah with Indonesian digit grouping, e.g. 9.000.000.
func FormatRupiah(amount decimal.Decimal) string {
	return rupiah.Sprintf("%d", amount.Round(0).IntPart())
}

// FallbackNote is the local note used when the model gives none for an employee.
func FallbackNote(e ranking.RankedEmployee, now time.Time) string {
	return fmt.Sprintf(
		"%s ada di peringkat %d dengan absensi %d kali, gaji Rp%s, dan masa kerja %s. Evaluasi detail tidak tersedia karena AI gagal, mohon review manual.",
		e.Name, e.Rank, e.TotalAbsence, FormatRupiah(e.Salary), rankingsvc.TenureLabel(e.StartDate, now),
	)
}

// FallbackSuggestion picks a coaching line by rank tier.
func FallbackSuggestion(rank int) string {
	switch {
	case rank == 1:
		return "Bagus, terus pertahankan dan cari peluang mentoring junior serta pimpin satu proyek kecil tahun ini."
	case rank <= 3:
		return "Kinerja baik, fokuskan pada peningkatan komunikasi tim dan dokumentasi untuk naik ke level berikutnya."
	default:
		return "Prioritaskan kehadiran dan ikuti pelatihan teknis; minta pairing dengan senior untuk meningkatkan kualitas kerja."
	}
}

// FallbackInsights summarizes the top of the ranking without a model.
func FallbackInsights(ranked []ranking.RankedEmployee) string {
	top := topN(ranked, insightsTopN)
	if len(top) == 0 {
		return "Belum ada data ranking untuk dianalisis."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Ringkasan %d karyawan teratas:\n", len(top))

	candidates := topN(top, 3)
	for _, e := range candidates {
		fmt.Fprintf(&b, "- Kandidat #%d: %s (%s, %s), skor %.1f.\n", e.Rank, e.Name, e.Title, e.Department, e.Score)
	}

	var avgScore float64
	absence, completed := 0, 0
	highAbsence := make([]string, 0)
	for _, e := range top {
		avgScore += e.AverageScore
		absence += e.TotalAbsence
		completed += e.TotalCompleted
		if e.TotalAbsence > 12 {
			highAbsence = append(highAbsence, e.Name)
		}
	}
	avgScore /= float64(len(top))

	fmt.Fprintf(&b, "- Rata-rata skor kinerja: %.2f, total proyek selesai: %d, total absensi: %d.\n", avgScore, completed, absence)
	if len(highAbsence) > 0 {
		fmt.Fprintf(&b, "- Risiko kehadiran: %s.\n", strings.Join(highAbsence, ", "))
	} else {
		b.WriteString("- Tidak ada risiko kehadiran yang menonjol.\n")
	}
	b.WriteString("- Insight AI tidak tersedia, mohon review manual.")

	return b.String()
}

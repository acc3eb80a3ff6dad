package annotation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/performance"
	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/ranking"
)

const insightsTopN = 10

func notesPrompt(ranked []ranking.RankedEmployee) string {
	lines := make([]string, 0, len(ranked))
	for _, e := range ranked {
		lines = append(lines, fmt.Sprintf("Rank: %d, Nama: %s, Jabatan: %s, Skor AI: %.1f", e.Rank, e.Name, e.Title, e.Score))
	}

	return `Anda adalah seorang HR Analyst. Berikan catatan singkat, padat, dan profesional (Maksimal 2 kalimat) untuk setiap karyawan berdasarkan ranking dan skor mereka. Fokus pada area yang perlu ditingkatkan (misalnya, 'Perlu fokus meningkatkan produktivitas proyek' jika skor rendah) atau pujian (misalnya, 'Performa stabil dan konsisten' jika skor tinggi).

DATA KARYAWAN:

` + strings.Join(lines, "\n") + `

OUTPUT FORMAT:
Hanya kembalikan array JSON yang berisi objek { nama: string, catatan: string }. Jangan tambahkan teks lain.

CONTOH OUTPUT:
[
  { "nama": "Andi Pratama", "catatan": "Performa luar biasa. Rekomendasi kenaikan jabatan dalam 6 bulan." },
  { "nama": "Dika Saputra", "catatan": "Skor berada di bawah rata-rata. Perlu fokus meningkatkan penyelesaian proyek." }
]
`
}

type promptMonth struct {
	Month     string  `json:"bulan"`
	Year      int     `json:"tahun"`
	Absence   int     `json:"absensi"`
	Completed int     `json:"proyekSelesai"`
	Score     float64 `json:"skorKinerja"`
}

type promptEmployee struct {
	Name       string        `json:"nama"`
	Rank       int           `json:"rank"`
	Department string        `json:"departemen"`
	Salary     string        `json:"gaji"`
	History    []promptMonth `json:"performanceHistory"`
}

func suggestionsPrompt(ranked []ranking.RankedEmployee, year int) string {
	employees := make([]promptEmployee, 0, len(ranked))
	for _, e := range ranked {
		pe := promptEmployee{
			Name:       e.Name,
			Rank:       e.Rank,
			Department: e.Department,
			Salary:     e.Salary.String(),
		}
		for _, m := range performance.Months() {
			r := e.History.At(m)
			if !performance.HasObservedData(r) {
				continue
			}
			pe.History = append(pe.History, promptMonth{
				Month:     m.String(),
				Year:      r.Year,
				Absence:   r.AttendanceCount,
				Completed: r.CompletedCount,
				Score:     r.PerformanceScore,
			})
		}
		employees = append(employees, pe)
	}
	data, _ := json.MarshalIndent(map[string]any{"employees": employees}, "", "  ")

	return fmt.Sprintf(`You are an HR coaching assistant. Given a list of employees with their rank (1 = best) and simple monthly performance numbers for a year (%d), produce a concise motivating suggestion in Indonesian for each employee to help them improve next year.

Output (MUST be valid JSON): an object with key "suggestions" mapping names to a short suggestion string (max 2-3 sentences each). Example:
{
  "suggestions": {
    "Andi Pratama": "Saran singkat...",
    "Dika Saputra": "Saran singkat..."
  }
}

Guidelines:
- Tone: supportive and motivating. Mention one concrete improvement action per person (ex: "ikut mentoring", "prioritaskan quality over speed", "kurangi absen dengan ...").
- If rank is 1, congratulate and suggest stretch goals.
- If rank low, suggest concrete steps (training, pairing with senior, task prioritization).
- Keep each suggestion short (<= 40 words).
- Return only the JSON object (no extra commentary).

Input:
%s
`, year, data)
}

type promptTopEmployee struct {
	Name       string  `json:"nama"`
	Title      string  `json:"jabatan"`
	Department string  `json:"departemen"`
	Score      float64 `json:"aiScore"`
	Note       string  `json:"aiNote"`
}

func insightsPrompt(ranked []ranking.RankedEmployee, weights ranking.Weights) string {
	top := topN(ranked, insightsTopN)
	rows := make([]promptTopEmployee, 0, len(top))
	for _, e := range top {
		rows = append(rows, promptTopEmployee{
			Name:       e.Name,
			Title:      e.Title,
			Department: e.Department,
			Score:      e.Score,
			Note:       e.Note,
		})
	}
	weightsJSON, _ := json.Marshal(weights)
	rowsJSON, _ := json.MarshalIndent(rows, "", "  ")

	return fmt.Sprintf(`Kamu adalah asisten HR yang ringkas dan to the point.
Berikan:
1) 5 rekomendasi praktis untuk optimasi kinerja.
2) 3 kandidat teratas beserta alasan singkat.
3) 3 risiko atau area perbaikan tim secara umum.

Bobot yang digunakan: %s
Top %d ranking (nama, jabatan, departemen, aiScore, aiNote):
%s
Tuliskan secara bullet, <= 120 kata.`, weightsJSON, len(rows), rowsJSON)
}

func topN(ranked []ranking.RankedEmployee, n int) []ranking.RankedEmployee {
	if len(ranked) < n {
		return ranked
	}
	return ranked[:n]
}

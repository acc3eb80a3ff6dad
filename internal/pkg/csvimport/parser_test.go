package csvimport

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/performance"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func newParser() Parser {
	return Parser{Year: 2025, DefaultScore: 3.0, Now: func() time.Time { return fixedNow }}
}

func TestNormalizeHeader(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Nama", "nama"},
		{"  Tempat Tinggal ", "tempat_tinggal"},
		{"tempatTinggal", "tempattinggal"},
		{"Absensi Januari 2025", "absensi_januari"},
		{"absensi_maret_2025", "absensi_maret"},
		{"Proyek Selesai (Mar)", "proyek_selesai_maret"},
		{"proyek_selesai_(agu)", "proyek_selesai_agustus"},
		{"proyek_selesai_2025", "proyek_selesai"},
		{"Avg Skor Kinerja", "avg_skor_kinerja"},
		{"\ufeffnama", "nama"},
		{"Gaji (Rp)", "gaji_(rp)"},
	}
	for _, c := range cases {
		if got := NormalizeHeader(c.input); got != c.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", c.input, got, c.want)
		}
	}
}

func TestParse_FullRow(t *testing.T) {
	input := "Nama,Umur,tempatTinggal,Jabatan,Departemen,Gaji,tanggalMasuk,Status,avg_skor_kinerja,Absensi Maret,Proyek Selesai (Mar),absensi_juli,proyek_selesai_jul,catatanManajer\n" +
		"  Andi   Pratama ,30,Bandung,Engineer,IT,\"9.000.000\",2021-03-01,Karyawan Tetap,\"4,5\",1,3,0,2,Rajin\n"

	records, err := newParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Andi Pratama", rec.Name)
	assert.Equal(t, 30, rec.Base.Age)
	assert.Equal(t, "Bandung", rec.Base.Residence)
	assert.Equal(t, "Engineer", rec.Base.Title)
	assert.Equal(t, "IT", rec.Base.Department)
	assert.True(t, decimal.NewFromInt(9_000_000).Equal(rec.Base.Salary), rec.Base.Salary.String())
	assert.True(t, time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC).Equal(rec.Base.StartDate))
	assert.Equal(t, performance.EmploymentStatusPermanent, rec.Base.Status)

	maret := rec.History.At(performance.Maret)
	assert.Equal(t, 1, maret.AttendanceCount)
	assert.Equal(t, 3, maret.CompletedCount)
	assert.InDelta(t, 4.5, maret.PerformanceScore, 1e-9)
	assert.Equal(t, "Rajin", maret.ManagerNote)
	assert.Equal(t, 2025, maret.Year)

	juli := rec.History.At(performance.Juli)
	assert.Equal(t, 2, juli.CompletedCount)
	assert.InDelta(t, 4.5, juli.PerformanceScore, 1e-9)

	// months without data stay placeholders
	januari := rec.History.At(performance.Januari)
	assert.False(t, performance.HasObservedData(januari))
	assert.Zero(t, januari.PerformanceScore)
	assert.Empty(t, januari.ManagerNote)

	assert.Equal(t, 5, rec.TotalCompleted)
	assert.InDelta(t, 4.5, rec.AverageScore, 1e-9)
}

func TestParse_ScoreDerivation(t *testing.T) {
	t.Run("from project total", func(t *testing.T) {
		input := "nama,proyek_selesai_2025,absensi_januari\nBudi,24,1\n"
		records, err := newParser().Parse(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.InDelta(t, 3.25, records[0].History.At(performance.Januari).PerformanceScore, 1e-9)
		// the total column does not count as completed projects
		assert.Zero(t, records[0].TotalCompleted)
	})

	t.Run("default score", func(t *testing.T) {
		input := "nama,absensi_januari\nCici,2\n"
		records, err := newParser().Parse(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.InDelta(t, 3.0, records[0].AverageScore, 1e-9)
	})
}

func TestScoreFromCompleted(t *testing.T) {
	assert.InDelta(t, 2.5, ScoreFromCompleted(0), 1e-9)
	assert.InDelta(t, 3.25, ScoreFromCompleted(24), 1e-9)
	assert.InDelta(t, 4.0, ScoreFromCompleted(48), 1e-9)
	assert.InDelta(t, 4.0, ScoreFromCompleted(500), 1e-9)
}

func TestParse_RowRules(t *testing.T) {
	input := "nama,umur,status,departemen,absensi_mei\n" +
		"Andi,30,freelance,,1\n" +
		",40,tetap,HR,1\n" +
		"Andi ,99,tetap,Finance,5\n" +
		"Dewi,-3,kontrak,Finance,abc\n"

	records, err := newParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	andi := records[0]
	assert.Equal(t, "Andi", andi.Name)
	assert.Equal(t, 30, andi.Base.Age, "first row wins for a repeated name")
	assert.Equal(t, performance.EmploymentStatusFreelance, andi.Base.Status)
	assert.Equal(t, "General", andi.Base.Department)

	dewi := records[1]
	assert.Zero(t, dewi.Base.Age)
	assert.Zero(t, dewi.History.At(performance.Mei).AttendanceCount)
	assert.Equal(t, performance.EmploymentStatusContract, dewi.Base.Status)
}

func TestParse_StartDateFallbacks(t *testing.T) {
	input := "nama,masakerja\nAndi,3 tahun\nBudi,\n"

	records, err := newParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.True(t, time.Date(2022, 6, 15, 0, 0, 0, 0, time.UTC).Equal(records[0].Base.StartDate))
	assert.True(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC).Equal(records[1].Base.StartDate))
}

func TestParse_YearColumn(t *testing.T) {
	input := "nama,tahun,absensi_januari\nAndi,2024,1\nBudi,,1\n"

	records, err := newParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 2024, records[0].History.At(performance.Januari).Year)
	assert.Equal(t, 2025, records[1].History.At(performance.Januari).Year)
}

func TestParse_Errors(t *testing.T) {
	_, err := newParser().Parse(strings.NewReader("nama;umur;gaji\nAndi;30;100\n"))
	assert.ErrorIs(t, err, ErrSemicolonDelimiter)

	_, err = newParser().Parse(strings.NewReader("nama,umur\n\"Andi,30\n"))
	assert.ErrorIs(t, err, ErrMalformedCSV)

	records, err := newParser().Parse(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestExport_RoundTrip(t *testing.T) {
	rec := performance.NewEmployeeRecord("Andi", 2025)
	rec.Base = performance.BaseFields{
		Age:        30,
		Residence:  "Bandung",
		Title:      "Engineer",
		Department: "IT",
		Salary:     decimal.NewFromInt(9_000_000),
		StartDate:  time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:     performance.EmploymentStatusPermanent,
	}
	rec.History.Set(performance.MonthlyRecord{Month: performance.Maret, Year: 2025, AttendanceCount: 1, CompletedCount: 3, PerformanceScore: 4})
	rec.History.Set(performance.MonthlyRecord{Month: performance.Juli, Year: 2025, AttendanceCount: 2, CompletedCount: 5, PerformanceScore: 4})
	performance.Recompute(&rec)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []ExportRow{{Record: rec, Rank: 1, Note: `Sangat "baik", pertahankan`}}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "nama,umur,tempatTinggal,jabatan,departemen,gaji,tanggalMasuk,status,rank_ai,catatan_ai,total_proyek_selesai,avg_skor_kinerja,absensi_januari"))
	assert.Contains(t, lines[0], "proyek_selesai_nov,proyek_selesai_des,skor_januari")
	assert.True(t, strings.HasSuffix(lines[0], "catatan_manajer_november,catatan_manajer_desember"))
	assert.Contains(t, lines[1], `"Sangat baik, pertahankan"`)

	records, err := newParser().Parse(&buf)
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, rec.Name, got.Name)
	assert.Equal(t, rec.History, got.History)
	assert.Equal(t, rec.TotalCompleted, got.TotalCompleted)
	assert.InDelta(t, rec.AverageScore, got.AverageScore, 1e-9)
	assert.Equal(t, rec.Base.Age, got.Base.Age)
	assert.Equal(t, rec.Base.Residence, got.Base.Residence)
	assert.Equal(t, rec.Base.Title, got.Base.Title)
	assert.Equal(t, rec.Base.Status, got.Base.Status)
	assert.True(t, rec.Base.Salary.Equal(got.Base.Salary))
	assert.True(t, rec.Base.StartDate.Equal(got.Base.StartDate))
}

func TestExport_RoundTripKeepsMonthlyScoresAndNotes(t *testing.T) {
	rec := performance.NewEmployeeRecord("Sari", 2025)
	rec.Base.Department = "Finance"
	rec.History.Set(performance.MonthlyRecord{Month: performance.Januari, Year: 2025, CompletedCount: 2, PerformanceScore: 4.25, ManagerNote: "Rapi"})
	rec.History.Set(performance.MonthlyRecord{Month: performance.Februari, Year: 2025, AttendanceCount: 3, PerformanceScore: 2.5, ManagerNote: `Sering "izin"`})
	// observed month with a real zero score
	rec.History.Set(performance.MonthlyRecord{Month: performance.Juni, Year: 2025, CompletedCount: 1})
	performance.Recompute(&rec)

	zero := performance.NewEmployeeRecord("Tono", 2025)
	zero.Base.Department = "IT"
	zero.History.Set(performance.MonthlyRecord{Month: performance.Mei, Year: 2025, CompletedCount: 24})
	performance.Recompute(&zero)
	require.Zero(t, zero.AverageScore)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []ExportRow{{Record: rec, Rank: 1}, {Record: zero}}))

	records, err := newParser().Parse(&buf)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, rec.History, records[0].History)
	assert.InDelta(t, rec.AverageScore, records[0].AverageScore, 1e-9)
	assert.Equal(t, zero.History, records[1].History)
	assert.Zero(t, records[1].AverageScore)
}

func TestExport_UnrankedRow(t *testing.T) {
	rec := performance.NewEmployeeRecord("Budi", 2025)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []ExportRow{{Record: rec}}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	fields := strings.Split(lines[1], ",")
	assert.Equal(t, "-", fields[8])
	assert.Equal(t, "0", fields[11])
	assert.Len(t, fields, len(ExportHeader()))
}

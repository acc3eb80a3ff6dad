package csvimport

import (
	"regexp"
	"strings"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/performance"
)

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	disallowedRe   = regexp.MustCompile(`[^a-z0-9_()]`)
	projectMonthRe = regexp.MustCompile(`proyek_selesai_\((.*?)\)`)
	yearTokenRe    = regexp.MustCompile(`_(?:19|20)\d{2}(_|$)`)
)

// NormalizeHeader maps a raw column title onto the keys the parser looks up.
//
//	"Absensi Januari 2025" -> "absensi_januari"
//	"Proyek Selesai (Mar)" -> "proyek_selesai_maret"
//	"tempatTinggal"        -> "tempattinggal"
func NormalizeHeader(h string) string {
	s := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	s = whitespaceRe.ReplaceAllString(s, "_")
	s = disallowedRe.ReplaceAllString(s, "")

	if m := projectMonthRe.FindStringSubmatch(s); m != nil {
		month := m[1]
		if parsed, err := performance.ParseMonth(month); err == nil {
			month = parsed.Key()
		}
		s = "proyek_selesai_" + month
	}

	return yearTokenRe.ReplaceAllString(s, "$1")
}

package performance

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Month is a calendar month, 1 (Januari) through 12 (Desember).
type Month int

const (
	Januari Month = iota + 1
	Februari
	Maret
	April
	Mei
	Juni
	Juli
	Agustus
	September
	Oktober
	November
	Desember
)

// MonthsPerYear is the number of history slots every employee carries.
const MonthsPerYear = 12

var monthNames = [MonthsPerYear]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// short forms used by the data files, plus English abbreviations
var monthAliases = map[string]Month{
	"jan": Januari, "feb": Februari, "mar": Maret, "apr": April,
	"mei": Mei, "jun": Juni, "jul": Juli, "agu": Agustus, "agt": Agustus,
	"sep": September, "okt": Oktober, "nov": November, "des": Desember,
	"may": Mei, "aug": Agustus, "oct": Oktober, "dec": Desember,
}

// Months returns all twelve months in calendar order.
func Months() []Month {
	months := make([]Month, MonthsPerYear)
	for i := range months {
		months[i] = Month(i + 1)
	}
	return months
}

func (m Month) Valid() bool {
	return m >= Januari && m <= Desember
}

func (m Month) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Month(%d)", int(m))
	}
	return monthNames[m-1]
}

// Key is the lower-case month name used in CSV headers, e.g. "agustus".
func (m Month) Key() string {
	return strings.ToLower(m.String())
}

// Short is the three-letter lower-case form used in CSV headers, e.g. "agu".
func (m Month) Short() string {
	return m.Key()[:3]
}

func (m Month) index() int {
	return int(m) - 1
}

// ParseMonth resolves a full month name or a known abbreviation, ignoring case.
func ParseMonth(raw string) (Month, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, ErrInvalidMonth
	}
	for i, name := range monthNames {
		if strings.ToLower(name) == s {
			return Month(i + 1), nil
		}
	}
	if m, ok := monthAliases[s]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMonth, raw)
}

func (m Month) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Month) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"asc", "desc"}
	if !IsInSlice("asc", slice) {
		t.Errorf("IsInSlice('asc') = false, want true")
	}
	if IsInSlice("up", slice) {
		t.Errorf("IsInSlice('up') = true, want false")
	}
}

func TestIsInRange(t *testing.T) {
	cases := []struct {
		v, lo, hi int
		want      bool
	}{
		{1, 1, 100, true},
		{100, 1, 100, true},
		{0, 1, 100, false},
		{101, 1, 100, false},
	}
	for _, c := range cases {
		if got := IsInRange(c.v, c.lo, c.hi); got != c.want {
			t.Errorf("IsInRange(%d, %d, %d) = %v, want %v", c.v, c.lo, c.hi, got, c.want)
		}
	}
}

func TestIsCSVFilename(t *testing.T) {
	valid := []string{"januari.csv", "DATA.CSV", " maret.csv "}
	invalid := []string{"januari.xlsx", "csv", ""}
	for _, s := range valid {
		if !IsCSVFilename(s) {
			t.Errorf("IsCSVFilename(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsCSVFilename(s) {
			t.Errorf("IsCSVFilename(%q) = true, want false", s)
		}
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "page", Message: "must be at least 1"},
		{Field: "order", Message: "must be asc or desc"},
	}
	got := errs.Error()
	want := "page: must be at least 1; order: must be asc or desc"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "page", Message: "must be at least 1"},
		{Field: "order", Message: "must be asc or desc"},
	}
	got := errs.ToMap()
	want := map[string]string{"page": "must be at least 1", "order": "must be asc or desc"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

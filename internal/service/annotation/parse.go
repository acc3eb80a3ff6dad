package annotation

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/cmlabs-hris/performance-dashboard-go/internal/domain/annotation"
)

var (
	openFenceRe  = regexp.MustCompile("^\\s*```(?:json)?\\s*")
	closeFenceRe = regexp.MustCompile("\\s*```\\s*$")
	arrayRe      = regexp.MustCompile(`\[[\s\S]*\]`)
	objectRe     = regexp.MustCompile(`\{[\s\S]*\}`)
)

func stripFences(text string) string {
	text = openFenceRe.ReplaceAllString(text, "")
	text = closeFenceRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// ParseNotes reads a [{nama, catatan}] array. When the whole text is not JSON,
// the outermost bracketed span is tried.
func ParseNotes(text string) (map[string]string, error) {
	var notes []annotation.Note
	if err := json.Unmarshal([]byte(stripFences(text)), &notes); err != nil {
		span := arrayRe.FindString(text)
		if span == "" {
			return nil, annotation.ErrUnparseableResponse
		}
		if err := json.Unmarshal([]byte(span), &notes); err != nil {
			return nil, annotation.ErrUnparseableResponse
		}
	}

	out := make(map[string]string, len(notes))
	for _, n := range notes {
		name := strings.TrimSpace(n.Name)
		text := strings.TrimSpace(n.Text)
		if name == "" || text == "" {
			continue
		}
		out[name] = text
	}
	return out, nil
}

// ParseSuggestions reads {"suggestions": {name: text}} or a bare {name: text} object.
func ParseSuggestions(text string) (map[string]string, error) {
	decode := func(raw string) (map[string]string, bool) {
		var wrapped struct {
			Suggestions map[string]string `json:"suggestions"`
		}
		if err := json.Unmarshal([]byte(raw), &wrapped); err == nil && wrapped.Suggestions != nil {
			return wrapped.Suggestions, true
		}
		var flat map[string]string
		if err := json.Unmarshal([]byte(raw), &flat); err == nil {
			return flat, true
		}
		return nil, false
	}

	parsed, ok := decode(stripFences(text))
	if !ok {
		span := objectRe.FindString(text)
		if span == "" {
			return nil, annotation.ErrUnparseableResponse
		}
		if parsed, ok = decode(span); !ok {
			return nil, annotation.ErrUnparseableResponse
		}
	}

	out := make(map[string]string, len(parsed))
	for name, s := range parsed {
		if name, s = strings.TrimSpace(name), strings.TrimSpace(s); name != "" && s != "" {
			out[name] = s
		}
	}
	return out, nil
}

package annotation

// Source tells where the notes of a result came from.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
	SourceMixed    Source = "mixed"
)

// Note is the wire shape the model is asked to produce.
type Note struct {
	Name string `json:"nama"`
	Text string `json:"catatan"`
}

// Format selects the structured output the generator should enforce.
type Format int

const (
	FormatText Format = iota
	FormatNoteList
	FormatSuggestionMap
)

type GenerateRequest struct {
	Prompt      string
	Format      Format
	Temperature float64
}

// NotesResult always holds one note per ranked employee.
type NotesResult struct {
	Notes   map[string]string
	Source  Source
	Warning string
}

type SuggestionsResult struct {
	Suggestions map[string]string
	Source      Source
	Warning     string
}

type InsightsResult struct {
	Text    string
	Source  Source
	Warning string
}

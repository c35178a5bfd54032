package domain

// Source identifies which coding-agent tool produced a log record.
type Source string

const (
	SourceClaude   Source = "claude"
	SourceCodex    Source = "codex"
	SourceOpenclaw Source = "openclaw"
	SourceUnknown  Source = "unknown"
)

// ParseSource normalizes a raw source label to a known Source value.
func ParseSource(s string) Source {
	switch s {
	case "claude":
		return SourceClaude
	case "codex":
		return SourceCodex
	case "openclaw":
		return SourceOpenclaw
	default:
		return SourceUnknown
	}
}

// Known reports whether the source is a recognized agent tool.
func (s Source) Known() bool {
	return s == SourceClaude || s == SourceCodex || s == SourceOpenclaw
}

// TaskRecord is one normalized unit of engineer activity extracted from a
// log line. Text is always non-empty and collapsed to single spaces;
// Timestamp is milliseconds since epoch, 0 when unknown.
type TaskRecord struct {
	Engineer  string `json:"engineer"`
	Source    Source `json:"source"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	SessionID string `json:"sessionId,omitempty"`
	Project   string `json:"project,omitempty"`
	File      string `json:"file"`
	Line      int    `json:"line"`
}

// ScoredMatch is a TaskRecord ranked against a query. Text is truncated
// to 600 characters for output.
type ScoredMatch struct {
	TaskRecord
	Score float64 `json:"score"`
}

// EngineerLogLocation is the resolved log directory for one engineer.
// Team is empty for the flat layout.
type EngineerLogLocation struct {
	Team     string
	Engineer string
	LogDir   string
}

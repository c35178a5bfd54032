package logscan

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gosuda/taskscout/internal/domain"
)

// recordShape is the recognized schema of one decoded log line.
type recordShape int

const (
	shapeUnrecognized recordShape = iota
	shapeCodexHistory
	shapeClaudeHistory
	shapeUserTrace
)

var slashCommandRe = regexp.MustCompile(`^/[\w-]+$`)

// classifyShape decides which known schema a decoded line matches.
// Shapes are tried in a fixed priority order; a line matches at most one.
func classifyShape(obj map[string]any) recordShape {
	if _, ok := obj["text"].(string); ok {
		switch ts := obj["ts"].(type) {
		case float64:
			return shapeCodexHistory
		case string:
			if _, err := strconv.ParseFloat(ts, 64); err == nil {
				return shapeCodexHistory
			}
		}
	}

	if _, ok := obj["display"].(string); ok {
		switch obj["timestamp"].(type) {
		case float64, string:
			return shapeClaudeHistory
		}
	}

	if t, ok := obj["type"].(string); ok && t == "user" {
		return shapeUserTrace
	}

	return shapeUnrecognized
}

// classifySource applies the path/field heuristic that may override a
// shape's default source. Codex markers win over Claude markers.
func classifySource(path string, obj map[string]any) domain.Source {
	if pathHasSegment(path, ".codex") || isNumber(obj["ts"]) || isString(obj["session_id"]) {
		return domain.SourceCodex
	}
	if pathHasSegment(path, ".claude") || isString(obj["display"]) {
		return domain.SourceClaude
	}
	return domain.SourceUnknown
}

// ParseLine turns one decoded JSON object from a log file into zero or one
// TaskRecords. Unrecognized shapes and non-actionable text yield nothing.
func ParseLine(path string, line int, engineer string, obj map[string]any) []domain.TaskRecord {
	var rec domain.TaskRecord

	switch classifyShape(obj) {
	case shapeCodexHistory:
		rec = domain.TaskRecord{
			Source:    domain.SourceCodex,
			Text:      obj["text"].(string),
			Timestamp: parseTimestamp(obj["ts"]),
		}
		if sid, ok := obj["session_id"].(string); ok {
			rec.SessionID = sid
		}

	case shapeClaudeHistory:
		rec = domain.TaskRecord{
			Source:    domain.SourceClaude,
			Text:      obj["display"].(string),
			Timestamp: parseTimestamp(obj["timestamp"]),
		}
		if sid, ok := obj["sessionId"].(string); ok {
			rec.SessionID = sid
		}
		if proj, ok := obj["project"].(string); ok {
			rec.Project = proj
		}

	case shapeUserTrace:
		rec = domain.TaskRecord{
			Source:    domain.SourceUnknown,
			Text:      traceMessageText(obj),
			Timestamp: parseTimestamp(obj["timestamp"]),
		}
		if sid, ok := obj["sessionId"].(string); ok {
			rec.SessionID = sid
		} else if sid, ok := obj["session_id"].(string); ok {
			rec.SessionID = sid
		}

	case shapeUnrecognized:
		return nil
	}

	if src := classifySource(path, obj); src != domain.SourceUnknown {
		rec.Source = src
	}

	rec.Text = collapseWhitespace(rec.Text)
	if !looksActionable(rec.Text) {
		return nil
	}

	rec.Engineer = engineer
	rec.File = path
	rec.Line = line
	return []domain.TaskRecord{rec}
}

// traceMessageText extracts the text of a session-trace user message.
// message.content is either a plain string or an array of {text} parts,
// joined with newlines.
func traceMessageText(obj map[string]any) string {
	msg, ok := obj["message"].(map[string]any)
	if !ok {
		return ""
	}

	switch content := msg["content"].(type) {
	case string:
		return content
	case []any:
		var parts []string
		for _, item := range content {
			part, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if text, ok := part["text"].(string); ok && text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, "\n")
	}
	return ""
}

// parseTimestamp converts a raw timestamp value to milliseconds since
// epoch. Numbers above 10^12 are already milliseconds; smaller numbers
// are seconds. Strings are tried as numbers first, then calendar dates.
// Anything unparseable yields 0.
func parseTimestamp(v any) int64 {
	switch t := v.(type) {
	case float64:
		return numberToMillis(t)
	case string:
		if n, err := strconv.ParseFloat(t, 64); err == nil {
			return numberToMillis(n)
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.UnixMilli()
			}
		}
	}
	return 0
}

func numberToMillis(n float64) int64 {
	if n > 1e12 {
		return int64(n)
	}
	return int64(n * 1000)
}

// collapseWhitespace trims and collapses all whitespace runs to single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// looksActionable filters out noise: empty or near-empty text and bare
// slash-command invocations like "/compact".
func looksActionable(text string) bool {
	if len(text) < 4 {
		return false
	}
	return !slashCommandRe.MatchString(text)
}

func pathHasSegment(path, segment string) bool {
	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == segment {
			return true
		}
	}
	return false
}

func isNumber(v any) bool {
	_, ok := v.(float64)
	return ok
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/taskscout/internal/domain"
)

// DefaultWorkers is the bounded concurrency of one dump batch.
const DefaultWorkers = 6

var unsafeFilenameRe = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// DumperOptions configure where and how session dumps are written.
type DumperOptions struct {
	OutDir    string
	RawOutput bool // also write _raw/<name>.json per session
	Workers   int
}

// Dumper materializes selected sessions as per-session .jsonl files plus
// an index document in the output directory the query side later scans.
type Dumper struct {
	fetcher ContextFetcher
	opts    DumperOptions
	now     func() time.Time
}

func NewDumper(fetcher ContextFetcher, opts DumperOptions) *Dumper {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &Dumper{fetcher: fetcher, opts: opts, now: time.Now}
}

// indexSession is one entry in the index document.
type indexSession struct {
	Source       domain.Source `json:"source"`
	Host         string        `json:"host"`
	EngineerID   string        `json:"engineerId"`
	SessionID    string        `json:"sessionId"`
	ContextID    string        `json:"contextId"`
	UpdatedAt    int64         `json:"updatedAt"`
	UserMessages int           `json:"userMessages"`
	File         string        `json:"file"`
	RawFile      string        `json:"rawFile,omitempty"`
}

type indexDocument struct {
	DumpedAt          string         `json:"dumpedAt"`
	Filters           Filters        `json:"filters"`
	TotalSessions     int            `json:"totalSessions"`
	TotalUserMessages int            `json:"totalUserMessages"`
	Sessions          []indexSession `json:"sessions"`
}

// RunSummary reports one completed dump batch.
type RunSummary struct {
	Sessions     int
	UserMessages int
	Failed       int
}

// DumpAll fetches and writes every selected row with bounded concurrency,
// then writes the index. Failures are isolated per session: one bad fetch
// does not abort the batch, and the index lists the successes in
// selected-row order regardless of completion order. The run fails only
// when every session fails or the index cannot be written.
func (d *Dumper) DumpAll(ctx context.Context, rows []domain.SessionCacheRow, f Filters) (*RunSummary, error) {
	if err := os.MkdirAll(d.opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("syncer.Dumper.DumpAll: %w", err)
	}

	results := make([]*domain.DumpResult, len(rows))
	errs := make([]error, len(rows))

	sem := make(chan struct{}, d.opts.Workers)
	var wg sync.WaitGroup
	for i, row := range rows {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := d.dumpOne(ctx, row)
			if err != nil {
				errs[i] = err
				log.Warn().Str("key", row.Key).Err(err).Msg("session dump failed")
				return
			}
			results[i] = res
		}()
	}
	wg.Wait()

	summary := &RunSummary{}
	doc := indexDocument{
		DumpedAt: d.now().UTC().Format(time.RFC3339),
		Filters:  f,
		Sessions: []indexSession{},
	}
	for i, res := range results {
		if res == nil {
			summary.Failed++
			continue
		}
		row := rows[i]
		doc.Sessions = append(doc.Sessions, indexSession{
			Source:       row.Source,
			Host:         row.Host,
			EngineerID:   row.EngineerID,
			SessionID:    row.SessionID,
			ContextID:    row.ContextID,
			UpdatedAt:    row.UpdatedAt,
			UserMessages: res.UserMessages,
			File:         res.File,
			RawFile:      res.RawFile,
		})
		summary.Sessions++
		summary.UserMessages += res.UserMessages
	}
	doc.TotalSessions = summary.Sessions
	doc.TotalUserMessages = summary.UserMessages

	if len(rows) > 0 && summary.Sessions == 0 {
		return nil, fmt.Errorf("syncer.Dumper.DumpAll: all %d sessions failed, first error: %w", len(rows), firstError(errs))
	}

	if err := writePrettyJSON(filepath.Join(d.opts.OutDir, "index.json"), doc); err != nil {
		return nil, fmt.Errorf("syncer.Dumper.DumpAll: write index: %w", err)
	}
	return summary, nil
}

// dumpOne fetches one session and writes its user-message file, plus the
// raw payload when enabled.
func (d *Dumper) dumpOne(ctx context.Context, row domain.SessionCacheRow) (*domain.DumpResult, error) {
	detail, err := d.fetcher.GetContext(ctx, row.ContextID)
	if err != nil {
		return nil, err
	}

	name := SanitizeFilename(string(row.Source) + "-" + row.SessionID)
	relPath := name + ".jsonl"

	var lines []string
	for _, msg := range detail.Messages {
		if !isUserMessage(msg) {
			continue
		}
		text := collapseWhitespace(messageText(msg))
		if text == "" {
			continue
		}

		line, err := json.Marshal(map[string]any{
			"type":      "user",
			"source":    row.Source,
			"timestamp": messageTimestamp(msg, detail.CreatedAt),
			"sessionId": row.SessionID,
			"contextId": row.ContextID,
			"message":   map[string]any{"content": text},
		})
		if err != nil {
			return nil, fmt.Errorf("syncer.Dumper.dumpOne: marshal message: %w", err)
		}
		lines = append(lines, string(line))
	}

	outPath := filepath.Join(d.opts.OutDir, relPath)
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("syncer.Dumper.dumpOne: %w", err)
	}

	result := &domain.DumpResult{Row: row, UserMessages: len(lines), File: relPath}

	if d.opts.RawOutput {
		rawRel := filepath.Join("_raw", name+".json")
		rawDoc := map[string]any{
			"pulledAt": d.now().UTC().Format(time.RFC3339),
			"cache":    row,
			"detail":   detail.Payload,
		}
		if err := os.MkdirAll(filepath.Join(d.opts.OutDir, "_raw"), 0o755); err != nil {
			return nil, fmt.Errorf("syncer.Dumper.dumpOne: %w", err)
		}
		if err := writePrettyJSON(filepath.Join(d.opts.OutDir, rawRel), rawDoc); err != nil {
			return nil, fmt.Errorf("syncer.Dumper.dumpOne: write raw: %w", err)
		}
		result.RawFile = rawRel
	}

	return result, nil
}

// isUserMessage recognizes user-authored messages: a role marker directly
// on the message, or nested under a raw sub-object, or a nested
// type=="user" marker.
func isUserMessage(msg map[string]any) bool {
	if role, ok := msg["role"].(string); ok && role == "user" {
		return true
	}
	if raw, ok := msg["raw"].(map[string]any); ok {
		if role, ok := raw["role"].(string); ok && role == "user" {
			return true
		}
		if t, ok := raw["type"].(string); ok && t == "user" {
			return true
		}
	}
	if t, ok := msg["type"].(string); ok && t == "user" {
		return true
	}
	return false
}

// messageText pulls the message body from the common payload layouts:
// content as a string, content as {text} parts, a bare text field, or a
// nested message.content.
func messageText(msg map[string]any) string {
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
		if len(parts) > 0 {
			return strings.Join(parts, "\n")
		}
	}
	if text, ok := msg["text"].(string); ok {
		return text
	}
	if nested, ok := msg["message"].(map[string]any); ok {
		if content, ok := nested["content"].(string); ok {
			return content
		}
	}
	return ""
}

// messageTimestamp resolves a message time as ISO-8601, trying the raw
// sub-object, metadata, the message itself, its creation field, and
// finally the session's overall creation time.
func messageTimestamp(msg map[string]any, sessionCreatedAt string) string {
	candidates := []any{}
	if raw, ok := msg["raw"].(map[string]any); ok {
		candidates = append(candidates, raw["timestamp"], raw["ts"])
	}
	if meta, ok := msg["metadata"].(map[string]any); ok {
		candidates = append(candidates, meta["timestamp"])
	}
	candidates = append(candidates, msg["timestamp"], msg["created_at"], sessionCreatedAt)

	for _, c := range candidates {
		if ms := timestampMillis(c); ms > 0 {
			return time.UnixMilli(ms).UTC().Format(time.RFC3339)
		}
	}
	return ""
}

// timestampMillis mirrors the extraction side's numeric-or-string-date
// rule for timestamps.
func timestampMillis(v any) int64 {
	switch t := v.(type) {
	case float64:
		if t > 1e12 {
			return int64(t)
		}
		return int64(t * 1000)
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.UnixMilli()
			}
		}
	}
	return 0
}

// SanitizeFilename replaces every character outside [A-Za-z0-9._-] with
// an underscore.
func SanitizeFilename(name string) string {
	return unsafeFilenameRe.ReplaceAllString(name, "_")
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func writePrettyJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

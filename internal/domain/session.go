package domain

import (
	"fmt"
	"strings"
)

// CacheKeyPrefix is the fixed key prefix for session pointer rows in the
// external key-value cache.
const CacheKeyPrefix = "ctx:session:"

// SessionCacheRow is one session pointer decoded from a cache key of the
// form ctx:session:<source>:<host>:<engineerId>:<sessionId...>. The
// session-id segment may itself contain colons.
type SessionCacheRow struct {
	Key        string `json:"key"`
	ContextID  string `json:"contextId"`
	UpdatedAt  int64  `json:"updatedAt"` // seconds since epoch
	Source     Source `json:"source"`
	Host       string `json:"host"`
	EngineerID string `json:"engineerId"`
	SessionID  string `json:"sessionId"`
}

// DedupKey is the composite identity of the session this row points at.
// Rows sharing a DedupKey are collapsed to the most recently updated one.
func (r SessionCacheRow) DedupKey() string {
	return string(r.Source) + "\x00" + r.Host + "\x00" + r.EngineerID + "\x00" + r.SessionID
}

// ParseSessionCacheKey decodes a raw cache key into its session pointer
// parts. Keys with fewer than 6 colon-delimited segments, or whose first
// two segments are not exactly "ctx","session", are rejected.
func ParseSessionCacheKey(key string) (SessionCacheRow, error) {
	parts := strings.Split(key, ":")
	if len(parts) < 6 {
		return SessionCacheRow{}, fmt.Errorf("domain.ParseSessionCacheKey: key %q has %d segments, want >= 6: %w", key, len(parts), ErrBadCacheKey)
	}
	if parts[0] != "ctx" || parts[1] != "session" {
		return SessionCacheRow{}, fmt.Errorf("domain.ParseSessionCacheKey: key %q missing ctx:session prefix: %w", key, ErrBadCacheKey)
	}

	return SessionCacheRow{
		Key:        key,
		Source:     ParseSource(parts[2]),
		Host:       parts[3],
		EngineerID: parts[4],
		SessionID:  strings.Join(parts[5:], ":"),
	}, nil
}

// DumpResult is the outcome of materializing one selected session.
type DumpResult struct {
	Row          SessionCacheRow
	UserMessages int
	File         string // relative to the output directory
	RawFile      string // empty when raw output is disabled
}

package logscan

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gosuda/taskscout/internal/domain"
)

const (
	// DefaultLimit is the match-list size when the caller gives none.
	DefaultLimit = 20
	// MaxLimit caps the match-list size.
	MaxLimit = 200

	matchTextMax = 600
)

var tokenSplitRe = regexp.MustCompile(`[^a-z0-9]+`)

// Tokenize lowercases the query and splits it on non-alphanumeric runs.
// Single-character tokens are dropped.
func Tokenize(query string) []string {
	var tokens []string
	for _, tok := range tokenSplitRe.Split(strings.ToLower(query), -1) {
		if len(tok) > 1 {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// Score computes the relevance of a record against a lowercased query and
// its token set. Rules are additive:
//
//	+10  empty query (everything matches equally)
//	+80  text contains the full query string
//	+10  per query token found in the text
//	 +5  known source (codex/claude preferred over unknown)
//	recency: +max(0, 25 - ageDays/2) when the timestamp is known
func Score(rec domain.TaskRecord, query string, tokens []string, now time.Time) float64 {
	text := strings.ToLower(rec.Text)

	var score float64
	if query == "" {
		score += 10
	} else {
		if strings.Contains(text, query) {
			score += 80
		}
		for _, tok := range tokens {
			if strings.Contains(text, tok) {
				score += 10
			}
		}
	}

	if rec.Source.Known() {
		score += 5
	}

	if rec.Timestamp > 0 {
		ageDays := float64(now.UnixMilli()-rec.Timestamp) / float64(24*time.Hour/time.Millisecond)
		if bonus := 25 - ageDays/2; bonus > 0 {
			score += bonus
		}
	}

	return score
}

// eligible reports whether a record can appear in the match list at all:
// empty query, full query substring, or at least one token hit.
func eligible(rec domain.TaskRecord, query string, tokens []string) bool {
	if query == "" {
		return true
	}
	text := strings.ToLower(rec.Text)
	if strings.Contains(text, query) {
		return true
	}
	for _, tok := range tokens {
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}

// Rank filters, scores, orders, and truncates records against a query.
// Ordering is descending score with descending timestamp as tie-break;
// the sort is stable so equal records keep their input order.
func Rank(records []domain.TaskRecord, query string, limit int, now time.Time) []domain.ScoredMatch {
	query = strings.ToLower(strings.TrimSpace(query))
	tokens := Tokenize(query)

	var matches []domain.ScoredMatch
	for _, rec := range records {
		if !eligible(rec, query, tokens) {
			continue
		}
		m := domain.ScoredMatch{TaskRecord: rec, Score: Score(rec, query, tokens, now)}
		if len(m.Text) > matchTextMax {
			m.Text = m.Text[:matchTextMax]
		}
		matches = append(matches, m)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Timestamp > matches[j].Timestamp
	})

	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

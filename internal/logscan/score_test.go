package logscan_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/taskscout/internal/domain"
	"github.com/gosuda/taskscout/internal/logscan"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "splits_on_non_alphanumeric", query: "fix login-bug now!", want: []string{"fix", "login", "bug", "now"}},
		{name: "drops_single_char_tokens", query: "a b cd", want: []string{"cd"}},
		{name: "empty_query", query: "", want: nil},
		{name: "punctuation_only", query: "?!., -", want: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, logscan.Tokenize(strings.ToLower(tc.query)))
		})
	}
}

func TestScore(t *testing.T) {
	t.Parallel()

	now := time.Now()
	fresh := domain.TaskRecord{
		Source:    domain.SourceCodex,
		Text:      "fix the login bug",
		Timestamp: now.UnixMilli(),
	}

	t.Run("full_query_substring", func(t *testing.T) {
		t.Parallel()

		// 80 full match + 10 token + 5 source + 25 recency.
		score := logscan.Score(fresh, "login", []string{"login"}, now)
		assert.InDelta(t, 120, score, 0.01)
	})

	t.Run("empty_query_flat_bonus", func(t *testing.T) {
		t.Parallel()

		rec := fresh
		rec.Timestamp = 0
		score := logscan.Score(rec, "", nil, now)
		assert.InDelta(t, 15, score, 0.001) // 10 empty + 5 source
	})

	t.Run("token_hits_are_additive", func(t *testing.T) {
		t.Parallel()

		rec := domain.TaskRecord{Source: domain.SourceUnknown, Text: "fix the login bug"}
		// Query string itself absent, two tokens hit.
		score := logscan.Score(rec, "login fix", []string{"login", "fix"}, now)
		assert.InDelta(t, 20, score, 0.001)
	})

	t.Run("recency_decays", func(t *testing.T) {
		t.Parallel()

		old := fresh
		old.Timestamp = now.Add(-20 * 24 * time.Hour).UnixMilli()
		// 25 - 20/2 = 15 recency.
		score := logscan.Score(old, "", nil, now)
		assert.InDelta(t, 30, score, 0.01)

		ancient := fresh
		ancient.Timestamp = now.Add(-100 * 24 * time.Hour).UnixMilli()
		score = logscan.Score(ancient, "", nil, now)
		assert.InDelta(t, 15, score, 0.01) // recency bonus floored at 0
	})

	t.Run("unknown_source_no_bonus", func(t *testing.T) {
		t.Parallel()

		rec := domain.TaskRecord{Source: domain.SourceUnknown, Text: "fix the login bug"}
		score := logscan.Score(rec, "", nil, now)
		assert.InDelta(t, 10, score, 0.001)
	})
}

func TestRank(t *testing.T) {
	t.Parallel()

	now := time.Now()

	t.Run("filters_ineligible_records", func(t *testing.T) {
		t.Parallel()

		records := []domain.TaskRecord{
			{Text: "fix the login bug", Source: domain.SourceCodex},
			{Text: "write release notes", Source: domain.SourceCodex},
		}

		matches := logscan.Rank(records, "login", 0, now)
		require.Len(t, matches, 1)
		assert.Equal(t, "fix the login bug", matches[0].Text)
	})

	t.Run("empty_query_returns_everything", func(t *testing.T) {
		t.Parallel()

		records := []domain.TaskRecord{
			{Text: "fix the login bug"},
			{Text: "write release notes"},
		}

		matches := logscan.Rank(records, "", 0, now)
		assert.Len(t, matches, 2)
	})

	t.Run("orders_by_score_then_timestamp", func(t *testing.T) {
		t.Parallel()

		older := now.Add(-48 * time.Hour).UnixMilli()
		newer := now.Add(-1 * time.Hour).UnixMilli()
		records := []domain.TaskRecord{
			{Text: "touch login config", Source: domain.SourceCodex, Timestamp: older},
			{Text: "touch login config", Source: domain.SourceCodex, Timestamp: newer},
			{Text: "minor login note", Source: domain.SourceUnknown, Timestamp: newer},
		}

		matches := logscan.Rank(records, "touch login", 0, now)
		require.Len(t, matches, 3)
		assert.Equal(t, newer, matches[0].Timestamp)
		assert.Equal(t, older, matches[1].Timestamp)
		assert.Equal(t, "minor login note", matches[2].Text)
	})

	t.Run("stable_for_equal_score_and_timestamp", func(t *testing.T) {
		t.Parallel()

		records := []domain.TaskRecord{
			{Text: "login fix one", Source: domain.SourceCodex, File: "a"},
			{Text: "login fix two", Source: domain.SourceCodex, File: "b"},
		}

		for range 5 {
			matches := logscan.Rank(records, "", 0, now)
			require.Len(t, matches, 2)
			assert.Equal(t, "a", matches[0].File)
			assert.Equal(t, "b", matches[1].File)
		}
	})

	t.Run("limit_clamped", func(t *testing.T) {
		t.Parallel()

		var records []domain.TaskRecord
		for range 250 {
			records = append(records, domain.TaskRecord{Text: "login related work"})
		}

		assert.Len(t, logscan.Rank(records, "", 0, now), logscan.DefaultLimit)
		assert.Len(t, logscan.Rank(records, "", 500, now), logscan.MaxLimit)
		assert.Len(t, logscan.Rank(records, "", 3, now), 3)
	})

	t.Run("long_text_truncated", func(t *testing.T) {
		t.Parallel()

		records := []domain.TaskRecord{
			{Text: "login " + strings.Repeat("x", 700)},
		}

		matches := logscan.Rank(records, "login", 0, now)
		require.Len(t, matches, 1)
		assert.Len(t, matches[0].Text, 600)
	})
}

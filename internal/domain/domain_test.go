package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/taskscout/internal/domain"
)

func TestParseSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want domain.Source
	}{
		{in: "claude", want: domain.SourceClaude},
		{in: "codex", want: domain.SourceCodex},
		{in: "openclaw", want: domain.SourceOpenclaw},
		{in: "", want: domain.SourceUnknown},
		{in: "cursor", want: domain.SourceUnknown},
		{in: "Claude", want: domain.SourceUnknown},
	}

	for _, tc := range tests {
		t.Run("in_"+tc.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, domain.ParseSource(tc.in))
		})
	}
}

func TestSourceKnown(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.SourceClaude.Known())
	assert.True(t, domain.SourceCodex.Known())
	assert.True(t, domain.SourceOpenclaw.Known())
	assert.False(t, domain.SourceUnknown.Known())
}

func TestParseSessionCacheKey(t *testing.T) {
	t.Parallel()

	t.Run("basic_key", func(t *testing.T) {
		t.Parallel()

		row, err := domain.ParseSessionCacheKey("ctx:session:codex:hostA:eng1:sess1")
		require.NoError(t, err)
		assert.Equal(t, domain.SourceCodex, row.Source)
		assert.Equal(t, "hostA", row.Host)
		assert.Equal(t, "eng1", row.EngineerID)
		assert.Equal(t, "sess1", row.SessionID)
		assert.Equal(t, "ctx:session:codex:hostA:eng1:sess1", row.Key)
	})

	t.Run("session_id_with_colons", func(t *testing.T) {
		t.Parallel()

		row, err := domain.ParseSessionCacheKey("ctx:session:claude:h:e:2024-01-01T10:00:00Z")
		require.NoError(t, err)
		assert.Equal(t, "2024-01-01T10:00:00Z", row.SessionID)
	})

	t.Run("unknown_source_is_kept", func(t *testing.T) {
		t.Parallel()

		row, err := domain.ParseSessionCacheKey("ctx:session:cursor:h:e:s")
		require.NoError(t, err)
		assert.Equal(t, domain.SourceUnknown, row.Source)
	})

	t.Run("rejects_short_keys", func(t *testing.T) {
		t.Parallel()

		_, err := domain.ParseSessionCacheKey("ctx:session:codex:hostA:eng1")
		require.ErrorIs(t, err, domain.ErrBadCacheKey)
	})

	t.Run("rejects_wrong_prefix", func(t *testing.T) {
		t.Parallel()

		_, err := domain.ParseSessionCacheKey("ctx:task:codex:hostA:eng1:sess1")
		require.ErrorIs(t, err, domain.ErrBadCacheKey)

		_, err = domain.ParseSessionCacheKey("cache:session:codex:hostA:eng1:sess1")
		require.ErrorIs(t, err, domain.ErrBadCacheKey)
	})
}

func TestSessionCacheRowDedupKey(t *testing.T) {
	t.Parallel()

	a, err := domain.ParseSessionCacheKey("ctx:session:codex:hostA:eng1:sess1")
	require.NoError(t, err)
	b, err := domain.ParseSessionCacheKey("ctx:session:codex:hostA:eng1:sess1")
	require.NoError(t, err)
	c, err := domain.ParseSessionCacheKey("ctx:session:codex:hostB:eng1:sess1")
	require.NoError(t, err)

	assert.Equal(t, a.DedupKey(), b.DedupKey())
	assert.NotEqual(t, a.DedupKey(), c.DedupKey())
}

package logscan_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/taskscout/internal/domain"
	"github.com/gosuda/taskscout/internal/logscan"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func locationNames(locs []domain.EngineerLogLocation) []string {
	names := make([]string, 0, len(locs))
	for _, loc := range locs {
		if loc.Team != "" {
			names = append(names, loc.Team+"/"+loc.Engineer)
		} else {
			names = append(names, loc.Engineer)
		}
	}
	return names
}

func TestDiscoverEngineers(t *testing.T) {
	t.Parallel()

	t.Run("mixed_layouts", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, filepath.Join(root, "alice", "log", "a.jsonl"), "")
		writeFile(t, filepath.Join(root, "teamA", "bob", "log", "b.jsonl"), "")
		writeFile(t, filepath.Join(root, "teamA", "carol", "log", "c.jsonl"), "")
		// Team member without a log dir is skipped.
		require.NoError(t, os.MkdirAll(filepath.Join(root, "teamA", "dave"), 0o755))

		locs := logscan.DiscoverEngineers(root, nil, nil)
		assert.ElementsMatch(t, []string{"alice", "teamA/bob", "teamA/carol"}, locationNames(locs))
	})

	t.Run("team_filter", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, filepath.Join(root, "teamA", "bob", "log", "b.jsonl"), "")
		writeFile(t, filepath.Join(root, "teamB", "eve", "log", "e.jsonl"), "")

		locs := logscan.DiscoverEngineers(root, []string{"teamA"}, nil)
		assert.Equal(t, []string{"teamA/bob"}, locationNames(locs))
	})

	t.Run("engineer_filter_applies_to_both_layouts", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, filepath.Join(root, "alice", "log", "a.jsonl"), "")
		writeFile(t, filepath.Join(root, "teamA", "bob", "log", "b.jsonl"), "")
		writeFile(t, filepath.Join(root, "teamA", "carol", "log", "c.jsonl"), "")

		locs := logscan.DiscoverEngineers(root, nil, []string{"alice", "carol"})
		assert.ElementsMatch(t, []string{"alice", "teamA/carol"}, locationNames(locs))
	})

	t.Run("missing_root_is_empty", func(t *testing.T) {
		t.Parallel()

		locs := logscan.DiscoverEngineers(filepath.Join(t.TempDir(), "nope"), nil, nil)
		assert.Empty(t, locs)
	})

	t.Run("plain_files_at_root_ignored", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, filepath.Join(root, "README.md"), "hi")
		writeFile(t, filepath.Join(root, "alice", "log", "a.jsonl"), "")

		locs := logscan.DiscoverEngineers(root, nil, nil)
		assert.Equal(t, []string{"alice"}, locationNames(locs))
	})
}

func TestListLogFiles(t *testing.T) {
	t.Parallel()

	t.Run("recursive_jsonl_only", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		logDir := filepath.Join(root, "log")
		writeFile(t, filepath.Join(logDir, "a.jsonl"), "")
		writeFile(t, filepath.Join(logDir, "2024", "05", "b.jsonl"), "")
		writeFile(t, filepath.Join(logDir, "notes.txt"), "")

		files := logscan.ListLogFiles(logDir)
		require.Len(t, files, 2)
		for _, f := range files {
			assert.Contains(t, f, ".jsonl")
		}
	})

	t.Run("missing_dir_is_empty", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, logscan.ListLogFiles(filepath.Join(t.TempDir(), "nope")))
	})
}

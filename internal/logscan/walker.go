package logscan

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/taskscout/internal/domain"
)

// maxLogDepth bounds recursion below a log directory. The documented
// layouts are shallow; the bound guards against symlink cycles.
const maxLogDepth = 8

// DiscoverEngineers resolves the engineer log directories under root.
// Two topologies are supported and may be mixed at the top level:
//
//	<root>/<engineer>/log          (flat)
//	<root>/<team>/<engineer>/log   (nested)
//
// An entry that directly contains a log subdirectory is treated as a
// flat-layout engineer; otherwise it is tried as a team. A missing root
// yields an empty result, not an error.
func DiscoverEngineers(root string, teams, engineers []string) []domain.EngineerLogLocation {
	entries, err := os.ReadDir(root)
	if err != nil {
		log.Debug().Str("root", root).Err(err).Msg("log root not readable")
		return nil
	}

	teamSet := toSet(teams)
	engineerSet := toSet(engineers)

	var locations []domain.EngineerLogLocation
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()

		logDir := filepath.Join(root, name, "log")
		if dirExists(logDir) {
			if excluded(engineerSet, name) {
				continue
			}
			locations = append(locations, domain.EngineerLogLocation{Engineer: name, LogDir: logDir})
			continue
		}

		// Nested layout: entry is a team directory.
		if excluded(teamSet, name) {
			continue
		}
		members, err := os.ReadDir(filepath.Join(root, name))
		if err != nil {
			continue
		}
		for _, member := range members {
			if !member.IsDir() || excluded(engineerSet, member.Name()) {
				continue
			}
			memberLog := filepath.Join(root, name, member.Name(), "log")
			if dirExists(memberLog) {
				locations = append(locations, domain.EngineerLogLocation{
					Team:     name,
					Engineer: member.Name(),
					LogDir:   memberLog,
				})
			}
		}
	}

	return locations
}

// ListLogFiles enumerates all .jsonl files below a log directory.
// Unreadable subdirectories are skipped, never fatal.
func ListLogFiles(logDir string) []string {
	var files []string

	_ = filepath.WalkDir(logDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			rel, relErr := filepath.Rel(logDir, path)
			if relErr == nil && strings.Count(rel, string(filepath.Separator)) >= maxLogDepth {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".jsonl") {
			files = append(files, path)
		}
		return nil
	})

	return files
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func toSet(names []string) map[string]struct{} {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// excluded reports whether name is filtered out. A nil set means no filter.
func excluded(set map[string]struct{}, name string) bool {
	if set == nil {
		return false
	}
	_, ok := set[name]
	return !ok
}

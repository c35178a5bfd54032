package logscan

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/taskscout/internal/domain"
)

// QueryInput are the parameters of one end-to-end search.
type QueryInput struct {
	Query     string
	Root      string // overrides the default root when non-empty
	Teams     []string
	Engineers []string
	Limit     int
}

// QueryResult is the envelope returned for one search, consumed verbatim
// by the transport layer.
type QueryResult struct {
	Root             string               `json:"root"`
	Query            string               `json:"query"`
	Teams            []string             `json:"teams"`
	Engineers        []string             `json:"engineers"`
	FilesScanned     int                  `json:"filesScanned"`
	RecordsExtracted int                  `json:"recordsExtracted"`
	Matches          []domain.ScoredMatch `json:"matches"`
}

// Searcher runs queries against a team log tree. It holds no state beyond
// the default root; every query re-scans the tree.
type Searcher struct {
	defaultRoot string
	now         func() time.Time
}

func NewSearcher(defaultRoot string) *Searcher {
	return &Searcher{defaultRoot: defaultRoot, now: time.Now}
}

// Query walks the tree, extracts every actionable record, ranks the
// records against the query, and shapes the result envelope. It never
// fails: an empty or missing tree is an empty, valid result.
func (s *Searcher) Query(in QueryInput) *QueryResult {
	root := in.Root
	if root == "" {
		root = s.defaultRoot
	}
	query := strings.ToLower(strings.TrimSpace(in.Query))

	locations := DiscoverEngineers(root, in.Teams, in.Engineers)

	// Per-location file sets, extracted concurrently. Each file read is
	// independent and side-effect-free; the final sort restores
	// determinism regardless of completion order.
	type fileJob struct {
		path     string
		engineer string
		team     string
	}
	var jobs []fileJob
	for _, loc := range locations {
		for _, path := range ListLogFiles(loc.LogDir) {
			jobs = append(jobs, fileJob{path: path, engineer: loc.Engineer, team: loc.Team})
		}
	}

	perFile := make([][]domain.TaskRecord, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			perFile[i] = ExtractFile(job.path, job.engineer)
		}()
	}
	wg.Wait()

	var records []domain.TaskRecord
	for _, recs := range perFile {
		records = append(records, recs...)
	}

	matches := Rank(records, query, in.Limit, s.now())

	teams := make([]string, 0)
	engineers := make([]string, 0)
	seenTeams := map[string]struct{}{}
	seenEngineers := map[string]struct{}{}
	for _, loc := range locations {
		if loc.Team != "" {
			if _, ok := seenTeams[loc.Team]; !ok {
				seenTeams[loc.Team] = struct{}{}
				teams = append(teams, loc.Team)
			}
		}
		if _, ok := seenEngineers[loc.Engineer]; !ok {
			seenEngineers[loc.Engineer] = struct{}{}
			engineers = append(engineers, loc.Engineer)
		}
	}
	sort.Strings(teams)
	sort.Strings(engineers)

	log.Debug().
		Str("root", root).
		Str("query", query).
		Int("files", len(jobs)).
		Int("records", len(records)).
		Int("matches", len(matches)).
		Msg("query complete")

	if matches == nil {
		matches = []domain.ScoredMatch{}
	}
	return &QueryResult{
		Root:             root,
		Query:            query,
		Teams:            teams,
		Engineers:        engineers,
		FilesScanned:     len(jobs),
		RecordsExtracted: len(records),
		Matches:          matches,
	}
}

package v1

import "github.com/gosuda/taskscout/internal/logscan"

// TaskSearcher abstracts the query pipeline for handler testing.
// *logscan.Searcher satisfies this interface.
type TaskSearcher interface {
	Query(in logscan.QueryInput) *logscan.QueryResult
}

// SyncEnqueuer abstracts the sync coordinator for handler testing.
// *syncer.Coordinator satisfies this interface.
type SyncEnqueuer interface {
	Enqueue()
}

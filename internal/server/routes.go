package server

import (
	"github.com/danielgtaylor/huma/v2"

	v1 "github.com/gosuda/taskscout/internal/api/v1"
)

func registerAPIRoutes(api huma.API, searcher v1.TaskSearcher, enqueuer v1.SyncEnqueuer) {
	v1.RegisterSearchRoutes(api, searcher)
	v1.RegisterSyncRoutes(api, enqueuer)
}

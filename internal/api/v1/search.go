package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/taskscout/internal/logscan"
)

type SearchTasksInput struct {
	Body struct {
		Query     string   `json:"query" maxLength:"1000" doc:"Free-text query; empty matches everything"`
		Root      string   `json:"root,omitempty" doc:"Override the configured log root"`
		Teams     []string `json:"teams,omitempty" doc:"Restrict to these teams"`
		Engineers []string `json:"engineers,omitempty" doc:"Restrict to these engineers"`
		Limit     int      `json:"limit,omitempty" minimum:"1" maximum:"200" doc:"Max matches (default 20)"`
	}
}

type SearchTasksOutput struct {
	Body *logscan.QueryResult
}

func RegisterSearchRoutes(api huma.API, searcher TaskSearcher) {
	huma.Register(api, huma.Operation{
		OperationID: "search-tasks",
		Method:      http.MethodPost,
		Path:        "/search",
		Summary:     "Search task utterances across the team log tree",
		Tags:        []string{"Search"},
	}, func(_ context.Context, input *SearchTasksInput) (*SearchTasksOutput, error) {
		res := searcher.Query(logscan.QueryInput{
			Query:     input.Body.Query,
			Root:      input.Body.Root,
			Teams:     input.Body.Teams,
			Engineers: input.Body.Engineers,
			Limit:     input.Body.Limit,
		})
		return &SearchTasksOutput{Body: res}, nil
	})
}

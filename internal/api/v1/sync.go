package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

type TriggerSyncOutput struct {
	Status int
	Body   struct {
		Status string `json:"status" doc:"Always \"queued\""`
	}
}

// RegisterSyncRoutes exposes the fire-and-forget sync trigger. The
// coordinator coalesces bursts, so the endpoint always accepts.
func RegisterSyncRoutes(api huma.API, enqueuer SyncEnqueuer) {
	huma.Register(api, huma.Operation{
		OperationID: "trigger-sync",
		Method:      http.MethodPost,
		Path:        "/sync",
		Summary:     "Trigger a session sync run",
		Tags:        []string{"Sync"},
	}, func(_ context.Context, _ *struct{}) (*TriggerSyncOutput, error) {
		enqueuer.Enqueue()

		out := &TriggerSyncOutput{Status: http.StatusAccepted}
		out.Body.Status = "queued"
		return out, nil
	})
}

package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ContextDetail is one fetched session document from the remote content
// service. Payload keeps the full decoded body for raw dumps.
type ContextDetail struct {
	Payload   map[string]any
	Messages  []map[string]any
	CreatedAt string
}

// ContextFetcher fetches full session content by external context id.
type ContextFetcher interface {
	GetContext(ctx context.Context, contextID string) (*ContextDetail, error)
}

// ContextClient talks to the remote content service over HTTP with
// bearer-token authentication.
type ContextClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewContextClient(baseURL, apiKey string) *ContextClient {
	return &ContextClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// GetContext fetches GET {base}/contexts/{id}. Any non-2xx response is a
// hard failure for that session.
func (c *ContextClient) GetContext(ctx context.Context, contextID string) (*ContextDetail, error) {
	url := c.baseURL + "/contexts/" + contextID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("syncer.ContextClient.GetContext: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("syncer.ContextClient.GetContext: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("syncer.ContextClient.GetContext: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("syncer.ContextClient.GetContext: %s returned %d: %s",
			url, resp.StatusCode, truncateBody(body))
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("syncer.ContextClient.GetContext: decode: %w", err)
	}

	detail := &ContextDetail{Payload: payload}
	if created, ok := payload["created_at"].(string); ok {
		detail.CreatedAt = created
	}
	if data, ok := payload["data"].([]any); ok {
		for _, item := range data {
			if msg, ok := item.(map[string]any); ok {
				detail.Messages = append(detail.Messages, msg)
			}
		}
	}
	return detail, nil
}

func truncateBody(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

package llm

import (
	"context"
	"fmt"
	"slices"

	"legalrag/internal/apperr"
)

// ModelInfo describes one entry of the /v1/models listing.
type ModelInfo struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// ModelsResponse represents the response from the /v1/models endpoint.
type ModelsResponse struct {
	Data []ModelInfo `json:"data"`
}

// ListModels returns the IDs of the models the server can serve.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var modelsResp ModelsResponse
	if err := getJSON(ctx, c.client, c.BaseURL+"/v1/models", c.APIKey, &modelsResp); err != nil {
		return nil, apperr.ExternalService("list models", err)
	}

	ids := make([]string, 0, len(modelsResp.Data))
	for _, m := range modelsResp.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// Ping checks that the server is reachable and serves the client's model.
// Ollama lists tagged names ("phi3:latest"), so a bare name also matches its :latest tag.
func (c *Client) Ping(ctx context.Context) error {
	ids, err := c.ListModels(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(ids, c.Model) || slices.Contains(ids, c.Model+":latest") {
		return nil
	}
	return apperr.ExternalService("ping", fmt.Errorf("model %q not available (have %v)", c.Model, ids))
}

package llm

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"legalrag/internal/apperr"
)

// EmbeddingsClient is a client for an OpenAI-compatible embeddings API
// (Ollama, llama.cpp server, vLLM).
type EmbeddingsClient struct {
	BaseURL      string
	APIKey       string
	Model        string
	ExpectedSize int // Expected vector size for validation
	client       *http.Client
}

// NewEmbeddingsClient creates a new embeddings client.
// expectedSize is the expected vector size (from VECTOR_SIZE config).
// All embeddings returned by EmbedTexts will be validated against this size.
func NewEmbeddingsClient(baseURL, apiKey, model string, expectedSize int) *EmbeddingsClient {
	return &EmbeddingsClient{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		Model:        model,
		ExpectedSize: expectedSize,
		client:       &http.Client{Timeout: DefaultTimeout},
	}
}

// EmbeddingsRequest represents the request payload for embeddings API.
type EmbeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingData represents a single embedding in the response.
type EmbeddingData struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

// EmbeddingsResponse represents the response from the embeddings API.
type EmbeddingsResponse struct {
	Data []EmbeddingData `json:"data"`
}

// Dimension returns the vector width every embedding is validated against.
func (c *EmbeddingsClient) Dimension() int {
	return c.ExpectedSize
}

// EmbedTexts generates embeddings for the given texts in one request.
// Returns a slice of float32 vectors, one per input text, in input order.
// Validates that all returned vectors match the expected size.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, apperr.ExternalService("embed texts", fmt.Errorf("empty input array"))
	}

	var embeddingsResp EmbeddingsResponse
	err := postJSON(ctx, c.client, c.BaseURL+"/v1/embeddings", c.APIKey, EmbeddingsRequest{
		Model: c.Model,
		Input: texts,
	}, &embeddingsResp)
	if err != nil {
		return nil, apperr.ExternalService("embed texts", err)
	}

	if len(embeddingsResp.Data) != len(texts) {
		return nil, apperr.ExternalService("embed texts", fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embeddingsResp.Data)))
	}

	// Servers may answer out of order; index ties an embedding to its input
	sort.SliceStable(embeddingsResp.Data, func(i, j int) bool {
		return embeddingsResp.Data[i].Index < embeddingsResp.Data[j].Index
	})

	result := make([][]float32, len(embeddingsResp.Data))
	for i, data := range embeddingsResp.Data {
		if len(data.Embedding) != c.ExpectedSize {
			return nil, apperr.ExternalService("embed texts", fmt.Errorf("embedding %d has size %d, expected %d", i, len(data.Embedding), c.ExpectedSize))
		}

		// Convert []float64 to []float32
		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}
		result[i] = vec
	}

	return result, nil
}

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"legalrag/internal/apperr"
)

// OCRClient calls an HTTP OCR service. The service accepts the raw file as
// the request body on POST /ocr and answers {"text": "..."}.
type OCRClient struct {
	baseURL    string
	httpClient *http.Client
}

type ocrResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// NewOCRClient creates a client for the OCR service at baseURL.
func NewOCRClient(baseURL string, httpClient *http.Client) *OCRClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &OCRClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Extract sends data to the OCR service and returns the recognised text.
func (c *OCRClient) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ocr", bytes.NewReader(data))
	if err != nil {
		return "", apperr.ExternalService("ocr", fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", http.DetectContentType(data))
	req.Header.Set("X-Filename", filename)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.ExternalService("ocr", fmt.Errorf("failed to send request: %w", err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", apperr.ExternalService("ocr", fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var out ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperr.ExternalService("ocr", fmt.Errorf("failed to decode response: %w", err))
	}
	if out.Error != "" {
		return "", apperr.ExternalService("ocr", fmt.Errorf("ocr service: %s", out.Error))
	}
	return out.Text, nil
}

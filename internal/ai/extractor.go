// Package ai calls the document extraction service and prepares document
// text for it.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ExtractionResult is the structured output for one document.
type ExtractionResult struct {
	DocType    string         `json:"doc_type"`
	Fields     map[string]any `json:"fields"`
	Summary    string         `json:"summary"`
	Alerts     []string       `json:"alerts"`
	Confidence float64        `json:"confidence"`
}

// Fallback is the degraded result stored when extraction fails. Confidence
// zero forces operator review.
func Fallback(reason string) ExtractionResult {
	return ExtractionResult{
		Fields:     map[string]any{},
		Alerts:     []string{reason},
		Confidence: 0,
	}
}

// Client talks to the extraction endpoint over HTTP.
type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewClient constructs a client targeting the provided endpoint.
func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

// Extract sends the prepared text and returns the structured result. One
// retry on transport or 5xx failure; the caller degrades on error.
func (c *Client) Extract(ctx context.Context, docType, text string) (ExtractionResult, error) {
	payload := map[string]any{
		"doc_type": docType,
		"text":     text,
	}
	body, _ := json.Marshal(payload)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ExtractionResult{}, ctx.Err()
			case <-time.After(time.Second):
			}
		}
		result, err := c.post(ctx, body)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return ExtractionResult{}, lastErr
}

func (c *Client) post(ctx context.Context, body []byte) (ExtractionResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return ExtractionResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return ExtractionResult{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return ExtractionResult{}, fmt.Errorf("extraction failed: %s", resp.Status)
	}

	var result ExtractionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return ExtractionResult{}, err
	}
	if result.Fields == nil {
		result.Fields = map[string]any{}
	}
	return result, nil
}

// Package textgen asks a completion endpoint for a short free-text
// elaboration of a place and its weather.
package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	metrics "skyledger/internal/metrics"
	"skyledger/pkg/customerrors"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	metrics    *metrics.Metrics
}

func NewClient(baseURL, apiKey string, timeout time.Duration, m *metrics.Metrics) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    m,
	}
}

type completionRequest struct {
	Prompt string `json:"prompt"`
}

type completionResponse struct {
	Text string `json:"text"`
}

// Describe returns a generated one-paragraph description for the prompt.
func (c *Client) Describe(ctx context.Context, prompt string) (text string, err error) {
	defer func(start time.Time) {
		c.metrics.ObserveProvider("textgen", start, err)
	}(time.Now())

	body, err := json.Marshal(completionRequest{Prompt: prompt})
	if err != nil {
		return "", customerrors.WrapUpstream(err, "textgen")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", customerrors.WrapUpstream(err, "textgen")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", customerrors.WrapUpstream(err, "textgen")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("status %d", resp.StatusCode)
		return "", customerrors.WrapUpstream(err, "textgen")
	}

	var payload completionResponse
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", customerrors.WrapUpstream(err, "textgen")
	}
	return payload.Text, nil
}

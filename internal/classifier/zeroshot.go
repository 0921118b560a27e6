// Package classifier talks to the external zero-shot text classification
// endpoint and provides the deterministic keyword fallback.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrMissingCredential is returned before any request when no API key is configured.
	ErrMissingCredential = errors.New("classifier: api key not configured")

	// ErrMalformedResponse is returned when labels and scores cannot be paired.
	ErrMalformedResponse = errors.New("classifier: malformed response")
)

// Config describes how to reach the zero-shot endpoint.
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Result ranks every candidate label; index 0 is the best match.
type Result struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

// Top returns the best-ranked label and its score.
func (r *Result) Top() (string, float64) {
	return r.Labels[0], r.Scores[0]
}

// ZeroShotClient calls a Hugging Face style zero-shot classification model.
type ZeroShotClient struct {
	url    string
	apiKey string
	http   *http.Client
}

// NewZeroShotClient validates the configuration and returns a client.
func NewZeroShotClient(cfg Config) (*ZeroShotClient, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("classifier: url required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ZeroShotClient{
		url:    cfg.URL,
		apiKey: strings.TrimSpace(cfg.APIKey),
		http:   &http.Client{Timeout: timeout},
	}, nil
}

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type zeroShotResponse struct {
	Result
	Error string `json:"error"`
}

// Classify submits text with the candidate labels and returns the ranking.
func (c *ZeroShotClient) Classify(ctx context.Context, text string, labels []string) (*Result, error) {
	if c.apiKey == "" {
		return nil, ErrMissingCredential
	}

	payload, err := json.Marshal(zeroShotRequest{
		Inputs:     text,
		Parameters: zeroShotParameters{CandidateLabels: labels},
	})
	if err != nil {
		return nil, fmt.Errorf("classifier: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("classifier: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("classifier: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("classifier: %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	var out zeroShotResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("classifier: decode response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("classifier: upstream error: %s", out.Error)
	}
	if len(out.Labels) == 0 || len(out.Labels) != len(out.Scores) {
		return nil, ErrMalformedResponse
	}

	return &out.Result, nil
}

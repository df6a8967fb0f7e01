package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/helmcode/neuropath/pkg/model"
)

const DefaultRelayURL = "http://localhost:8080/analyze-decision"

// HTTPRelay calls the relay service over HTTP.
type HTTPRelay struct {
	url    string
	client *http.Client
}

// NewHTTPRelay posts to url. The client timeout sits above the relay's own
// upstream timeout so the relay gets to answer first.
func NewHTTPRelay(url string) *HTTPRelay {
	return &HTTPRelay{
		url:    url,
		client: &http.Client{Timeout: 90 * time.Second},
	}
}

func (h *HTTPRelay) WithHTTPClient(c *http.Client) *HTTPRelay {
	h.client = c
	return h
}

// Analyze returns a *RelayError for structured error payloads and a plain
// wrapped error for anything at the transport level.
func (h *HTTPRelay) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("relay request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("relay read body: %w", err)
	}

	var payload struct {
		model.AnalysisResult
		Error  string `json:"error"`
		Status int    `json:"status"`
	}
	if err := json.Unmarshal(respBytes, &payload); err != nil {
		return nil, fmt.Errorf("relay decode response (status %d): %w", resp.StatusCode, err)
	}

	if payload.Error != "" {
		status := payload.Status
		if status == 0 {
			status = resp.StatusCode
		}
		return nil, &RelayError{Message: payload.Error, Status: status}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("relay returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBytes)))
	}

	result := payload.AnalysisResult
	return &result, nil
}

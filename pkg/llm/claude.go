package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	ClaudeURL          = "https://api.anthropic.com/v1"
	DefaultClaudeModel = "claude-sonnet-4-20250514"
)

type Claude struct {
	apiKey  string
	baseURL string
	client  *http.Client
	model   string
}

func NewClaude(apiKey string) *Claude {
	return NewClaudeWithModel(apiKey, ClaudeURL, DefaultClaudeModel)
}

func NewClaudeWithModel(apiKey, baseURL, model string) *Claude {
	return &Claude{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
		model:   model,
	}
}

func (c *Claude) WithHTTPClient(hc *http.Client) *Claude {
	c.client = hc
	return c
}

// Chat sends the conversation to the Messages API. System messages are
// lifted into the top-level "system" field.
func (c *Claude) Chat(ctx context.Context, messages []Message) (string, error) {
	var system []string
	turns := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}

	body := map[string]interface{}{
		"model":       c.model,
		"messages":    turns,
		"max_tokens":  4000,
		"temperature": 0,
	}
	if len(system) > 0 {
		body["system"] = strings.Join(system, "\n\n")
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("Claude request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("Claude read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Provider: "Claude", StatusCode: resp.StatusCode, Body: string(respBytes)}
	}

	// Minimal struct to pull out the content text.
	var claudeResp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &claudeResp); err != nil {
		return "", fmt.Errorf("Claude decode response: %w", err)
	}
	if claudeResp.Error.Message != "" {
		return "", fmt.Errorf("Claude API error: %s", claudeResp.Error.Message)
	}
	if len(claudeResp.Content) == 0 || strings.TrimSpace(claudeResp.Content[0].Text) == "" {
		return "", ErrEmptyResponse
	}
	return claudeResp.Content[0].Text, nil
}

func (c *Claude) Model() string {
	return c.model
}

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
	DefaultGatewayURL   = "https://ai.gateway.lovable.dev/v1"
	DefaultGatewayModel = "google/gemini-3-flash-preview"
	OpenAIURL           = "https://api.openai.com/v1"
	DefaultOpenAIModel  = "gpt-4o"
)

// Gateway talks to any OpenAI-compatible /chat/completions endpoint.
type Gateway struct {
	name    string
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewGateway(apiKey string) *Gateway {
	return NewGatewayWithModel(apiKey, DefaultGatewayURL, DefaultGatewayModel)
}

func NewGatewayWithModel(apiKey, baseURL, model string) *Gateway {
	return &Gateway{
		name:    "AI gateway",
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func NewOpenAIWithModel(apiKey, model string) *Gateway {
	g := NewGatewayWithModel(apiKey, OpenAIURL, model)
	g.name = "OpenAI"
	return g
}

// WithHTTPClient replaces the underlying client, e.g. to change its timeout.
func (g *Gateway) WithHTTPClient(c *http.Client) *Gateway {
	g.client = c
	return g
}

func (g *Gateway) Chat(ctx context.Context, messages []Message) (string, error) {
	body := map[string]interface{}{
		"model":    g.model,
		"messages": messages,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", g.apiKey))

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s request: %w", g.name, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s read body: %w", g.name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Provider: g.name, StatusCode: resp.StatusCode, Body: string(respBytes)}
	}

	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &chatResp); err != nil {
		return "", fmt.Errorf("%s decode response: %w", g.name, err)
	}
	if chatResp.Error.Message != "" {
		return "", fmt.Errorf("%s API error: %s", g.name, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return chatResp.Choices[0].Message.Content, nil
}

// Model returns the model identifier sent upstream.
func (g *Gateway) Model() string {
	return g.model
}

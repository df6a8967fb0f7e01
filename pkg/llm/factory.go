package llm

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Provider represents the LLM provider type
type Provider string

const (
	ProviderGateway Provider = "gateway"
	ProviderOpenAI  Provider = "openai"
	ProviderClaude  Provider = "claude"
)

// ParseProvider normalizes a provider name. Empty means the gateway.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ProviderGateway, nil
	case ProviderGateway, ProviderOpenAI, ProviderClaude:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported LLM provider: %s (supported: gateway, openai, claude)", s)
	}
}

// Settings selects and configures an upstream. Empty BaseURL and Model fall
// back to the provider defaults.
type Settings struct {
	Provider Provider
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
}

// Factory creates LLM instances based on provider
type Factory struct{}

// NewFactory creates a new LLM factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateLLM creates an LLM instance from the given settings.
func (f *Factory) CreateLLM(s Settings) (LLM, error) {
	provider, err := ParseProvider(string(s.Provider))
	if err != nil {
		return nil, err
	}
	if s.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", provider)
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	hc := &http.Client{Timeout: timeout}

	switch provider {
	case ProviderClaude:
		return NewClaudeWithModel(s.APIKey, orDefault(s.BaseURL, ClaudeURL), orDefault(s.Model, DefaultClaudeModel)).WithHTTPClient(hc), nil
	case ProviderOpenAI:
		g := NewOpenAIWithModel(s.APIKey, orDefault(s.Model, DefaultOpenAIModel))
		if s.BaseURL != "" {
			g.baseURL = strings.TrimSuffix(s.BaseURL, "/")
		}
		return g.WithHTTPClient(hc), nil
	default:
		return NewGatewayWithModel(s.APIKey, orDefault(s.BaseURL, DefaultGatewayURL), orDefault(s.Model, DefaultGatewayModel)).WithHTTPClient(hc), nil
	}
}

// GetAvailableProviders returns a list of available LLM providers
func (f *Factory) GetAvailableProviders() []Provider {
	return []Provider{ProviderGateway, ProviderOpenAI, ProviderClaude}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

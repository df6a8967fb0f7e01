package llm

import (
	"context"
	"errors"
	"fmt"
)

// LLM is a chat-completion backend.
type LLM interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	Model() string
}

// Role of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ErrEmptyResponse is returned when the upstream answered 2xx without any text.
var ErrEmptyResponse = errors.New("empty response from upstream")

// StatusError is returned for any non-2xx upstream answer.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

package llm

import (
	"context"
	"errors"
)

// Message roles for completion requests
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged message in a completion request
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Embedder maps text to a fixed-length vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Completer maps an ordered list of messages to a free-text completion
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

var (
	ErrEmbeddingFailed  = errors.New("failed to generate embedding")
	ErrCompletionFailed = errors.New("failed to generate completion")
	ErrMissingAPIKey    = errors.New("API key not set")
)

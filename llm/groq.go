package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const chatCompletionsAPI = "https://api.groq.com/openai/v1/chat/completions"

// GroqCompleter generates completions via the Groq chat completions API
type GroqCompleter struct {
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// GroqOption configures a GroqCompleter
type GroqOption func(*GroqCompleter)

// GroqWithModel sets the completion model name
func GroqWithModel(model string) GroqOption {
	return func(c *GroqCompleter) {
		if model != "" {
			c.model = model
		}
	}
}

// GroqWithTemperature sets the sampling temperature
func GroqWithTemperature(t float64) GroqOption {
	return func(c *GroqCompleter) {
		c.temperature = t
	}
}

// GroqWithMaxTokens sets the completion token limit
func GroqWithMaxTokens(n int) GroqOption {
	return func(c *GroqCompleter) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// NewGroqCompleter creates a completer for the given API key
func NewGroqCompleter(apiKey string, opts ...GroqOption) *GroqCompleter {
	c := &GroqCompleter{
		apiKey:      apiKey,
		model:       "llama-3.3-70b-versatile",
		temperature: 0.1,
		maxTokens:   2000,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason,omitempty"`
	} `json:"choices"`
	Error struct {
		Message string `json:"message,omitempty"`
		Type    string `json:"type,omitempty"`
	} `json:"error,omitempty"`
}

// Complete sends the messages to the chat completions API and returns the text
func (c *GroqCompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	reqBody := chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", chatCompletionsAPI, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("Groq API error: Status %d, Body: %s", resp.StatusCode, string(bodyBytes))
		return "", fmt.Errorf("API error: %d", resp.StatusCode)
	}

	var apiResp chatCompletionResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.Error.Message != "" {
		return "", fmt.Errorf("API error: %s", apiResp.Error.Message)
	}

	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("API returned no choices")
	}

	content := apiResp.Choices[0].Message.Content
	if content == "" {
		return "", ErrCompletionFailed
	}

	return content, nil
}

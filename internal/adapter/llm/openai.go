// Package llm contains the hosted model backends the answer pipeline can
// dispatch to. Both adapt their native API shape to port.Generator.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"docqa/internal/domain"
)

// OpenAIGenerator generates answers through an OpenAI-compatible
// /chat/completions endpoint. It does not report token usage.
type OpenAIGenerator struct {
	apiKey      string
	apiKeyEnv   string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
	client      *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// OpenAIOptions configures the OpenAI backend.
type OpenAIOptions struct {
	APIKeyEnv   string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// NewOpenAIGenerator builds the backend. A missing API key is not an error
// here: the pipeline checks Configured() before dispatching, so the UI can
// surface the condition instead of crashing at startup.
func NewOpenAIGenerator(opts OpenAIOptions) *OpenAIGenerator {
	if opts.APIKeyEnv == "" {
		opts.APIKeyEnv = "OPENAI_API_KEY"
	}
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com/v1"
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 3000
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	return &OpenAIGenerator{
		apiKey:      os.Getenv(opts.APIKeyEnv),
		apiKeyEnv:   opts.APIKeyEnv,
		model:       opts.Model,
		baseURL:     opts.BaseURL,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		client:      &http.Client{Timeout: opts.Timeout},
	}
}

func (g *OpenAIGenerator) Name() string {
	return "openai"
}

func (g *OpenAIGenerator) Configured() error {
	if g.apiKey == "" {
		return fmt.Errorf("API key not found in environment variable: %s", g.apiKeyEnv)
	}
	return nil
}

// Generate sends the prompt as a single user turn.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (domain.Generation, error) {
	req := chatRequest{
		Model:       g.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return domain.Generation{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return domain.Generation{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return domain.Generation{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Generation{}, fmt.Errorf("failed to read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return domain.Generation{}, fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}
	if chatResp.Error != nil {
		return domain.Generation{}, fmt.Errorf("API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return domain.Generation{}, fmt.Errorf("no response from model")
	}

	return domain.Generation{Text: chatResp.Choices[0].Message.Content}, nil
}

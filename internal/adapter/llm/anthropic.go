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

const anthropicVersion = "2023-06-01"

// AnthropicGenerator generates answers through the Anthropic messages API.
// Unlike the OpenAI backend it reports input/output token counts.
type AnthropicGenerator struct {
	apiKey      string
	apiKeyEnv   string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
	client      *http.Client
}

type messagesRequest struct {
	Model       string           `json:"model"`
	MaxTokens   int              `json:"max_tokens"`
	Temperature float64          `json:"temperature,omitempty"`
	Messages    []messageContent `json:"messages"`
}

type messageContent struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// AnthropicOptions configures the Anthropic backend.
type AnthropicOptions struct {
	APIKeyEnv   string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// NewAnthropicGenerator builds the backend. Like the OpenAI variant, a missing
// key surfaces through Configured(), not here.
func NewAnthropicGenerator(opts AnthropicOptions) *AnthropicGenerator {
	if opts.APIKeyEnv == "" {
		opts.APIKeyEnv = "ANTHROPIC_API_KEY"
	}
	if opts.Model == "" {
		opts.Model = "claude-3-5-sonnet-20240620"
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.anthropic.com/v1"
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	return &AnthropicGenerator{
		apiKey:      os.Getenv(opts.APIKeyEnv),
		apiKeyEnv:   opts.APIKeyEnv,
		model:       opts.Model,
		baseURL:     opts.BaseURL,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		client:      &http.Client{Timeout: opts.Timeout},
	}
}

func (g *AnthropicGenerator) Name() string {
	return "anthropic"
}

func (g *AnthropicGenerator) Configured() error {
	if g.apiKey == "" {
		return fmt.Errorf("API key not found in environment variable: %s", g.apiKeyEnv)
	}
	return nil
}

// Generate sends the prompt as a structured user turn and returns the response
// text plus token usage.
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (domain.Generation, error) {
	req := messagesRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
		Messages: []messageContent{
			{Role: "user", Content: []contentBlock{{Type: "text", Text: prompt}}},
		},
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return domain.Generation{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return domain.Generation{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", g.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return domain.Generation{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Generation{}, fmt.Errorf("failed to read response: %w", err)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return domain.Generation{}, fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}
	if msgResp.Error != nil {
		return domain.Generation{}, fmt.Errorf("API error (%s): %s", msgResp.Error.Type, msgResp.Error.Message)
	}
	if len(msgResp.Content) == 0 {
		return domain.Generation{}, fmt.Errorf("no response from model")
	}

	return domain.Generation{
		Text: msgResp.Content[0].Text,
		Usage: &domain.Usage{
			InputTokens:  msgResp.Usage.InputTokens,
			OutputTokens: msgResp.Usage.OutputTokens,
		},
	}, nil
}

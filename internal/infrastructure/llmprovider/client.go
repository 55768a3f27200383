package llmprovider

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/TesslaRay/claudio-aleph-2025/internal/domain/llm"
	"github.com/TesslaRay/claudio-aleph-2025/internal/infrastructure/metrics"
)

// Client implements llm.Provider against an OpenAI-compatible
// chat-completions endpoint.
type Client struct {
	httpClient *resty.Client
	log        zerolog.Logger
}

// NewClient creates a Resty-backed client. apiKey may be empty for gateways
// that authenticate by network placement.
func NewClient(baseURL, apiKey string, timeout time.Duration, log zerolog.Logger) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if apiKey != "" {
		rc.SetAuthToken(apiKey)
	}
	return &Client{
		httpClient: rc,
		log:        log.With().Str("component", "llm-client").Logger(),
	}
}

// Ensure interface compliance.
var _ llm.Provider = (*Client)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string            `json:"model"`
	Messages    []chatMessage     `json:"messages"`
	Temperature *float64          `json:"temperature,omitempty"`
	MaxTokens   *int              `json:"max_tokens,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete calls /chat/completions and returns the first choice.
func (c *Client) Complete(ctx context.Context, params llm.CompletionParams) (*llm.Completion, error) {
	messages := make([]chatMessage, 0, 2)
	if params.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: params.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: params.Prompt})

	req := chatCompletionRequest{
		Model:       params.Model,
		Messages:    messages,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
		Metadata:    params.Tags,
	}

	started := time.Now()
	var completion chatCompletionResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&completion).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("completion request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("llm api error: %s: %s", resp.Status(), resp.String())
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("llm api returned no choices")
	}

	metrics.RecordLLMCall(params.Tags["process"], params.Model, time.Since(started).Seconds())

	c.log.Debug().
		Str("model", completion.Model).
		Int("total_tokens", completion.Usage.TotalTokens).
		Dur("duration", time.Since(started)).
		Msg("completion finished")

	return &llm.Completion{
		Text:  completion.Choices[0].Message.Content,
		Model: completion.Model,
		Usage: llm.Usage{
			PromptTokens:     completion.Usage.PromptTokens,
			CompletionTokens: completion.Usage.CompletionTokens,
			TotalTokens:      completion.Usage.TotalTokens,
		},
	}, nil
}

package llm

import "context"

// CompletionParams carries one text-completion request: the assembled user
// prompt, the fixed system prompt, the model selector and free-form metadata
// tags forwarded to the provider for attribution.
type CompletionParams struct {
	Prompt       string
	SystemPrompt string
	Model        string
	Temperature  *float64
	MaxTokens    *int
	Tags         map[string]string
}

// Usage reports provider-side token accounting.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the raw provider output. Text is handed verbatim to the
// intake extractor; nothing in this package interprets it.
type Completion struct {
	Text  string
	Model string
	Usage Usage
}

// Provider is the text-completion collaborator. Implementations are
// fallible, latent and non-deterministic; callers must treat the returned
// text as untrusted free-form output.
type Provider interface {
	Complete(ctx context.Context, params CompletionParams) (*Completion, error)
}

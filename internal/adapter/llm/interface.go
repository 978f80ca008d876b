// Package llm provides the generation backends that draft assistant replies.
package llm

import (
	"context"
	"errors"

	"github.com/theIndrajeet/AskSarkar/internal/domain"
)

// ErrProviderQuota is returned when the remote provider rejects a call for quota reasons.
var ErrProviderQuota = errors.New("provider quota exceeded")

// GenerationRequest carries one turn's prompt and the state it was built from.
type GenerationRequest struct {
	Model        string
	SystemPrompt string
	Prompt       string
	Temperature  *float64
	MaxTokens    *int

	// Info and PriorMessages let offline generators answer without a model.
	Info          domain.ExtractedInfo
	PriorMessages int
}

// Generation is the raw text produced for a request.
type Generation struct {
	Text         string
	Model        string
	PromptTokens int
	OutputTokens int
}

// Generator produces reply text for a prompt.
type Generator interface {
	Generate(ctx context.Context, req *GenerationRequest) (*Generation, error)
	// Name identifies the backend in logs and events.
	Name() string
	// Remote reports whether calls consume the daily quota.
	Remote() bool
}

var (
	_ Generator = (*Client)(nil)
	_ Generator = (*GeminiClient)(nil)
	_ Generator = (*MockClient)(nil)
)

package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// EnvGogoMode is the environment variable name for mode selection.
	EnvGogoMode = "GOGO_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// Provider names accepted by NewGenerator.
const (
	ProviderMock   = "mock"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Options selects and configures a generator.
type Options struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// NewGenerator creates a generator for opts. GOGO_MODE=MOCK or a missing
// API key selects the offline mock.
func NewGenerator(ctx context.Context, opts Options) (Generator, error) {
	if os.Getenv(EnvGogoMode) == ModeMock {
		log.Info("GOGO_MODE=MOCK detected, using mock generator")
		return NewMockClient(), nil
	}

	provider := strings.ToLower(opts.Provider)
	switch provider {
	case ProviderMock:
		return NewMockClient(), nil
	case ProviderGemini:
		if opts.APIKey == "" {
			log.Warn("No Gemini API key configured, using mock generator")
			return NewMockClient(), nil
		}
		return NewGeminiClient(ctx, opts.APIKey, opts.Model, opts.BaseURL)
	case ProviderOpenAI, "":
		if opts.BaseURL == "" {
			return nil, fmt.Errorf("base URL required for provider %q", ProviderOpenAI)
		}
		return NewClient(opts.BaseURL, opts.APIKey, opts.Model, opts.Timeout), nil
	}
	return nil, fmt.Errorf("unknown LLM provider %q", opts.Provider)
}

package llm

import (
	"context"
	"fmt"

	"devkit/internal/domain/repository"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Options selects and configures a completion backend.
type Options struct {
	Provider   string
	APIKey     string
	BaseURL    string
	Model      string
	AuthHeader string
	MaxTokens  int
}

func NewGenerator(ctx context.Context, opts Options) (repository.TextGenerator, error) {
	switch opts.Provider {
	case ProviderGemini, "":
		return NewGeminiGenerator(ctx, opts.APIKey, opts.Model, opts.BaseURL)
	case ProviderOpenAI:
		if opts.APIKey == "" {
			return nil, fmt.Errorf("openai API key is required")
		}
		if opts.Model == "" {
			return nil, fmt.Errorf("openai model is required")
		}
		return NewChatGenerator(opts), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
}

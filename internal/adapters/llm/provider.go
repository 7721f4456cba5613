package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rippleeffect/charity-service/internal/config"
	"github.com/rippleeffect/charity-service/internal/ports"
)

// New selects the text generator named by cfg.Provider.
func New(ctx context.Context, cfg config.LLMConfig, logger zerolog.Logger) (ports.TextGenerator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "gemini":
		return NewGeminiAdapter(ctx, cfg.APIKey, cfg.Model, cfg.BaseURL, logger)
	case "openai":
		return NewOpenAIAdapter(cfg.APIKey, cfg.Model, cfg.BaseURL, logger)
	case "ollama":
		return NewOllamaAdapter(cfg.BaseURL, cfg.Model, logger), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

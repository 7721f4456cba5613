package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

type GeminiAdapter struct {
	client *genai.Client
	model  string
	logger zerolog.Logger
}

func NewGeminiAdapter(ctx context.Context, apiKey, model, baseURL string, logger zerolog.Logger) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiAdapter{
		client: client,
		model:  model,
		logger: logger.With().Str("provider", "gemini").Logger(),
	}, nil
}

func (g *GeminiAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		g.logger.Error().Err(err).Msg("GenAI generate failed")
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := resp.Text()
	g.logger.Debug().Str("model", g.model).Str("full_response", text).Msg("gemini full response")
	if text == "" {
		return "", errors.New("gemini returned empty response")
	}
	return text, nil
}

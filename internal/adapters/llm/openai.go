package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

type OpenAIAdapter struct {
	client *openai.Client
	model  string
	logger zerolog.Logger
}

// NewOpenAIAdapter builds a chat-completion backed generator. baseURL is
// optional and points the client at an OpenAI compatible endpoint.
func NewOpenAIAdapter(apiKey, model, baseURL string, logger zerolog.Logger) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key not configured")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIAdapter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger.With().Str("provider", "openai").Logger(),
	}, nil
}

func (a *OpenAIAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
	})
	if err != nil {
		a.logger.Error().Err(err).Msg("OpenAI chat completion failed")
		return "", fmt.Errorf("failed to call OpenAI API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	text := resp.Choices[0].Message.Content
	a.logger.Debug().Str("model", resp.Model).Str("full_response", text).Msg("openai full response")
	return text, nil
}

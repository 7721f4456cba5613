package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// OllamaAdapter talks to a local Ollama server's /api/generate endpoint.
type OllamaAdapter struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewOllamaAdapter(baseURL, model string, logger zerolog.Logger) *OllamaAdapter {
	if model == "" {
		model = "llama3.1"
	}
	return &OllamaAdapter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{},
		logger:     logger.With().Str("provider", "ollama").Logger(),
	}
}

func (o *OllamaAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	payload := AIRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: false,
		Options: &AIOptions{
			NumPredict:  1024,
			Temperature: 0,
		},
	}

	raw, err := o.sendRequest(ctx, payload)
	if err != nil {
		return "", err
	}
	defer raw.Body.Close()

	return o.parseNonStreamResponse(raw)
}

func (o *OllamaAdapter) sendRequest(ctx context.Context, payload AIRequest) (*http.Response, error) {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		o.logger.Error().Err(err).Msg("Error marshalling JSON")
		return nil, fmt.Errorf("internal error")
	}

	url := fmt.Sprintf("%s%s", o.baseURL, "/api/generate")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := o.httpClient.Do(req)
	if err != nil {
		o.logger.Error().Err(err).Msg("Error connecting to Ollama API")
		return nil, fmt.Errorf("ollama API connection error: %w", err)
	}

	if raw.StatusCode != http.StatusOK {
		defer raw.Body.Close()
		body, _ := io.ReadAll(raw.Body)
		return nil, fmt.Errorf("ollama API error: %d - %s", raw.StatusCode, string(body))
	}

	return raw, nil
}

func (o *OllamaAdapter) parseNonStreamResponse(resp *http.Response) (string, error) {
	var out aiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		o.logger.Error().Err(err).Msg("failed to decode ollama response json")
		return "", err
	}

	o.logger.Debug().
		Str("model", out.Model).
		Str("full_response", out.Response).
		Msg("ollama full response")

	if out.Response == "" {
		return "", errors.New("ollama returned empty response")
	}
	return out.Response, nil
}

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaAdapterGenerate(t *testing.T) {
	var got AIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(aiResponse{Model: got.Model, Response: "STATUS: YES", Done: true})
	}))
	defer srv.Close()

	a := NewOllamaAdapter(srv.URL+"/", "llama3.1", zerolog.Nop())
	text, err := a.Generate(context.Background(), "is it real?")
	require.NoError(t, err)
	assert.Equal(t, "STATUS: YES", text)
	assert.Equal(t, "is it real?", got.Prompt)
	assert.False(t, got.Stream)
	require.NotNil(t, got.Options)
	assert.Zero(t, got.Options.Temperature)
}

func TestOllamaAdapterErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non 200",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not loaded", http.StatusServiceUnavailable)
			},
		},
		{
			name: "empty response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"model":"llama3.1","response":"","done":true}`))
			},
		},
		{
			name: "bad json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewOllamaAdapter(srv.URL, "", zerolog.Nop()).Generate(context.Background(), "x")
			assert.Error(t, err)
		})
	}
}

func TestOllamaAdapterHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewOllamaAdapter(srv.URL, "", zerolog.Nop()).Generate(ctx, "x")
	assert.Error(t, err)
}

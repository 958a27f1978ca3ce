package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datagent/internal/config"
	"datagent/ports"
)

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(config.AIConfig{})
	assert.Error(t, err)
}

func TestOpenAIClient_ChatCompletion(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"gpt-test","choices":[{"message":{"content":"hello"}}],"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(config.AIConfig{OpenAIKey: "sk-test", BaseURL: srv.URL + "/v1/", OpenAIModel: "gpt-test", MaxTokens: 10})
	require.NoError(t, err)

	resp, err := client.ChatCompletion(context.Background(), []ports.Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)

	assert.Equal(t, "hello", resp.Content)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 4, resp.Usage.TotalTokens)
	assert.Equal(t, "gpt-test", got.Model)
	assert.Equal(t, 10, got.MaxTokens)
	assert.Equal(t, []ports.Message{{Role: "user", Content: "hi"}}, got.Messages)
}

func TestOpenAIClient_Errors(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		},
		"no choices": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		},
		"bad json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{`))
		},
	}
	for name, handler := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			client, err := NewOpenAIClient(config.AIConfig{OpenAIKey: "k", BaseURL: srv.URL, OpenAIModel: "m"})
			require.NoError(t, err)
			_, err = client.ChatCompletion(context.Background(), []ports.Message{{Role: "user", Content: "x"}})
			assert.Error(t, err)
		})
	}
}

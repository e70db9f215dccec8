package openrouter_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	llmhttp "github.com/phabreview/phabreview/internal/adapter/llm/http"
	"github.com/phabreview/phabreview/internal/adapter/llm/openrouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() llmhttp.RetryConfig {
	return llmhttp.RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 5 * time.Millisecond,
		MaxBackoff:     20 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func completionJSON(content string) map[string]any {
	return map[string]any{
		"id":      "gen-123",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "xiaomi/mimo-v2-flash:free",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     100,
			"completion_tokens": 50,
			"total_tokens":      150,
		},
	}
}

func errorJSON(message, errType string) map[string]any {
	return map[string]any{
		"error": map[string]any{
			"message": message,
			"type":    errType,
		},
	}
}

func TestNewClient(t *testing.T) {
	client := openrouter.NewClient("test-api-key", "xiaomi/mimo-v2-flash:free")

	assert.NotNil(t, client)
	assert.Equal(t, "xiaomi/mimo-v2-flash:free", client.Model())
}

func TestClient_Review_Success(t *testing.T) {
	review := "```json\n{\"summary\": [\"Looks solid\"], \"requested_changes\": [{\"path\": \"app.py\", \"line\": 7, \"change\": \"Use is None\"}]}\n```"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		assert.Equal(t, "xiaomi/mimo-v2-flash:free", body["model"])
		assert.Equal(t, 0.0, body["temperature"])
		assert.Equal(t, float64(12345), body["seed"])
		assert.Equal(t, float64(16384), body["max_tokens"])

		messages, ok := body["messages"].([]any)
		require.True(t, ok)
		require.Len(t, messages, 2)
		first := messages[0].(map[string]any)
		second := messages[1].(map[string]any)
		assert.Equal(t, "system", first["role"])
		assert.Equal(t, "You review diffs.", first["content"])
		assert.Equal(t, "user", second["role"])
		assert.Equal(t, "please review", second["content"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionJSON(review))
	}))
	defer server.Close()

	client := openrouter.NewClient("test-api-key", "xiaomi/mimo-v2-flash:free")
	client.SetBaseURL(server.URL)
	client.SetRetryConfig(fastRetry())

	resp, err := client.Review(context.Background(), openrouter.Request{
		System:    "You review diffs.",
		Prompt:    "please review",
		Seed:      12345,
		MaxTokens: 16384,
	})

	require.NoError(t, err)
	assert.Equal(t, "xiaomi/mimo-v2-flash:free", resp.Model)
	assert.Equal(t, []string{"Looks solid"}, resp.Result.Summary)
	require.Len(t, resp.Result.RequestedChanges, 1)
	assert.Equal(t, "app.py", resp.Result.RequestedChanges[0].Path)
	assert.Equal(t, "7", resp.Result.RequestedChanges[0].Line)
	assert.Equal(t, review, resp.Result.RawResponse)
	assert.Equal(t, 100, resp.Usage.TokensIn)
	assert.Equal(t, 50, resp.Usage.TokensOut)
}

func TestClient_Review_AuthenticationError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(errorJSON("Invalid API key", "invalid_request_error"))
	}))
	defer server.Close()

	client := openrouter.NewClient("bad-key", "xiaomi/mimo-v2-flash:free")
	client.SetBaseURL(server.URL)
	client.SetRetryConfig(fastRetry())

	_, err := client.Review(context.Background(), openrouter.Request{Prompt: "test"})

	require.Error(t, err)
	var httpErr *llmhttp.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, llmhttp.ErrTypeAuthentication, httpErr.Type)
	assert.Contains(t, httpErr.Message, "Invalid API key")
	assert.Equal(t, 1, attempts, "auth failures must not be retried")
}

func TestClient_Review_RetriesRateLimit(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(errorJSON("Rate limit exceeded", "rate_limit_error"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionJSON(`{"summary": ["ok"], "requested_changes": []}`))
	}))
	defer server.Close()

	client := openrouter.NewClient("test-key", "xiaomi/mimo-v2-flash:free")
	client.SetBaseURL(server.URL)
	client.SetRetryConfig(fastRetry())

	resp, err := client.Review(context.Background(), openrouter.Request{Prompt: "test"})

	require.NoError(t, err, "should succeed after retries")
	assert.Equal(t, []string{"ok"}, resp.Result.Summary)
	assert.Equal(t, 3, attempts, "should have retried twice")
}

func TestClient_Review_ServerErrorExhaustsRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := openrouter.NewClient("test-key", "xiaomi/mimo-v2-flash:free")
	client.SetBaseURL(server.URL)
	client.SetRetryConfig(fastRetry())

	_, err := client.Review(context.Background(), openrouter.Request{Prompt: "test"})

	require.Error(t, err)
	var httpErr *llmhttp.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, llmhttp.ErrTypeServiceUnavailable, httpErr.Type)
	assert.Equal(t, 4, attempts, "initial attempt plus three retries")
}

func TestClient_Review_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "gen-123",
			"object":  "chat.completion",
			"model":   "xiaomi/mimo-v2-flash:free",
			"choices": []any{},
		})
	}))
	defer server.Close()

	client := openrouter.NewClient("test-key", "xiaomi/mimo-v2-flash:free")
	client.SetBaseURL(server.URL)
	client.SetRetryConfig(fastRetry())

	_, err := client.Review(context.Background(), openrouter.Request{Prompt: "test"})

	require.Error(t, err)
	var httpErr *llmhttp.Error
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, llmhttp.ErrTypeInvalidRequest, httpErr.Type)
}

func TestClient_Review_EmptyContentBecomesPlaceholder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionJSON(""))
	}))
	defer server.Close()

	client := openrouter.NewClient("test-key", "xiaomi/mimo-v2-flash:free")
	client.SetBaseURL(server.URL)
	client.SetRetryConfig(fastRetry())

	resp, err := client.Review(context.Background(), openrouter.Request{Prompt: "test"})

	require.NoError(t, err)
	assert.Equal(t, []string{"(model returned empty response)"}, resp.Result.Summary)
}

package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"market-khabri/internal/entity"
	"market-khabri/internal/khabri/dto"
	"market-khabri/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAICompatibleRepository_Complete(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  {\"query_type\":\"REAL_STOCK\"}  "},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	repo := NewOpenAICompatibleRepository(OpenAICompatibleConfig{
		Provider: "groq",
		APIKey:   "test-key",
		BaseURL:  server.URL,
		Model:    "default-model",
	}, logger.NewNop())

	out, err := repo.Complete(context.Background(), dto.CompletionRequest{
		Model:        "fast-model",
		SystemPrompt: "system",
		Messages: []entity.ChatTurn{
			{Role: entity.ChatRoleUser, Content: "hi"},
			{Role: entity.ChatRoleAssistant, Content: "hello"},
			{Role: entity.ChatRoleUser, Content: "how is TCS?"},
		},
		Temperature: 0.1,
		MaxTokens:   50,
		JSONMode:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"query_type":"REAL_STOCK"}`, out)

	assert.Equal(t, "fast-model", captured["model"])
	messages, ok := captured["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 4)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
	assert.Equal(t, "assistant", messages[2].(map[string]interface{})["role"])
	format, ok := captured["response_format"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "json_object", format["type"])
	assert.Equal(t, "groq/default-model", repo.Name())
}

func TestOpenAICompatibleRepository_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer server.Close()

	repo := NewOpenAICompatibleRepository(OpenAICompatibleConfig{
		Provider: "openai",
		APIKey:   "k",
		BaseURL:  server.URL,
		Model:    "m",
	}, logger.NewNop())

	_, err := repo.Complete(context.Background(), dto.CompletionRequest{Messages: []entity.ChatTurn{{Role: entity.ChatRoleUser, Content: "x"}}})
	assert.Error(t, err)
}

package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAICompatibleChatModel_RequiresKey(t *testing.T) {
	_, err := NewOpenAICompatibleChatModel("  ", "", "")
	require.Error(t, err)

	m, err := NewOpenAICompatibleChatModel("sk-test", "", "")
	require.NoError(t, err)
	assert.Equal(t, defaultModelName, m.modelName)
	assert.Equal(t, defaultAPIURL, m.apiURL)
}

func TestOpenAICompatibleChatModel_Generate(t *testing.T) {
	var got chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","model":"qwen-turbo","choices":[{"index":0,"message":{"role":"assistant","content":"{\"ok\":true}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	m, err := NewOpenAICompatibleChatModel("sk-test", "qwen-turbo", srv.URL, WithTemperature(0.2))
	require.NoError(t, err)

	msg, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hello")})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, msg.Content)
	assert.Equal(t, schema.Assistant, msg.Role)

	assert.Equal(t, "qwen-turbo", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "hello", got.Messages[0].Content)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.2, *got.Temperature, 1e-6)
}

func TestOpenAICompatibleChatModel_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"非200状态", http.StatusTooManyRequests, `{"error":{"message":"rate limited"}}`},
		{"空choices", http.StatusOK, `{"choices":[]}`},
		{"业务错误", http.StatusOK, `{"error":{"message":"bad key","code":"invalid_api_key"}}`},
		{"非JSON", http.StatusOK, `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			m, err := NewOpenAICompatibleChatModel("sk-test", "", srv.URL)
			require.NoError(t, err)
			_, err = m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
			assert.Error(t, err)
		})
	}
}

func TestMockChatModel_Sequential(t *testing.T) {
	m := NewMockChatModelSequential([]MockResponse{
		{Content: "first"},
		{Error: assert.AnError},
		{Content: "last"},
	})
	ctx := context.Background()
	in := []*schema.Message{schema.UserMessage("q")}

	msg, err := m.Generate(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "first", msg.Content)

	_, err = m.Generate(ctx, in)
	assert.ErrorIs(t, err, assert.AnError)

	for i := 0; i < 2; i++ {
		msg, err = m.Generate(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, "last", msg.Content)
	}
	assert.Equal(t, 4, m.Calls())
}

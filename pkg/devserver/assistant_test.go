package devserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIAssistant(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"We open at 8."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	a := NewOpenAIAssistant("sk-test", "", srv.URL+"/v1")
	reply, err := a.Reply(context.Background(), "system prompt", []Turn{
		{RoleUser, "hours?"},
		{RoleAssistant, "let me check"},
		{RoleUser, "when do you open?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "We open at 8.", reply)

	assert.Equal(t, DefaultModel, got.Model)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "system prompt", got.Messages[0].Content)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, "when do you open?", got.Messages[3].Content)
}

func TestOpenAIAssistantErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"api error", http.StatusInternalServerError, `{"error":{"message":"upstream boom","type":"server_error"}}`, "upstream boom"},
		{"no choices", http.StatusOK, `{"id":"c1","object":"chat.completion","choices":[]}`, "no choices"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOpenAIAssistant("sk-test", "gpt-x", srv.URL+"/v1").Reply(context.Background(), "s", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEchoAssistant(t *testing.T) {
	reply, err := EchoAssistant{}.Reply(context.Background(), "", []Turn{
		{RoleUser, "first"},
		{RoleAssistant, "ok"},
		{RoleUser, "second"},
	})
	require.NoError(t, err)
	assert.Contains(t, reply, `"second"`)
	assert.Contains(t, reply, disclaimer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = EchoAssistant{}.Reply(ctx, "", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

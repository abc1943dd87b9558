package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, ChatRequest{ClinicID: "c1", Message: "Hello", SessionID: "s0"}, req)

		_, _ = w.Write([]byte(`{"reply":"Hi there","session_id":"s1","booking_url":"https://book.example","handoff":true,"handoff_reason":"emergency"}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", WithHTTPClient(srv.Client()))
	resp, err := c.Chat(context.Background(), ChatRequest{ClinicID: "c1", Message: "Hello", SessionID: "s0"})
	require.NoError(t, err)
	assert.Equal(t, &ChatResponse{
		Reply:         "Hi there",
		SessionID:     "s1",
		BookingURL:    "https://book.example",
		Handoff:       true,
		HandoffReason: "emergency",
	}, resp)
}

func TestClientChatHTTPErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{name: "string detail", status: 500, body: `{"detail":"overloaded"}`, wantDetail: "overloaded"},
		{name: "no body", status: 502, body: ``, wantDetail: ""},
		{name: "non json body", status: 503, body: `<html>down</html>`, wantDetail: ""},
		{name: "null detail", status: 404, body: `{"detail":null}`, wantDetail: ""},
		{name: "structured detail", status: 422, body: `{"detail": [ {"loc": ["body","message"], "msg": "too short"} ]}`, wantDetail: `[{"loc":["body","message"],"msg":"too short"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := New(srv.URL, WithHTTPClient(srv.Client()))
			_, err := c.Chat(context.Background(), ChatRequest{ClinicID: "c1", Message: "x"})
			var httpErr *HTTPError
			require.True(t, errors.As(err, &httpErr), "got %v", err)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.wantDetail, httpErr.Detail)
		})
	}
}

func TestClientChatMalformedBody(t *testing.T) {
	for _, body := range []string{`not json`, ``, `["a"]`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		}))

		c := New(srv.URL, WithHTTPClient(srv.Client()))
		_, err := c.Chat(context.Background(), ChatRequest{ClinicID: "c1", Message: "x"})
		srv.Close()

		var tErr *TransportError
		require.True(t, errors.As(err, &tErr), "body %q: got %v", body, err)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	}
}

func TestClientTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url)
	_, err := c.Chat(context.Background(), ChatRequest{ClinicID: "c1", Message: "x"})
	var tErr *TransportError
	require.True(t, errors.As(err, &tErr))
	assert.NotEmpty(t, tErr.Diagnostic())
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := New(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := c.Chat(context.Background(), ChatRequest{ClinicID: "c1", Message: "x"})
	var tErr *TransportError
	assert.True(t, errors.As(err, &tErr))
}

func TestClientSubmitLead(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/leads", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()))
	err := c.SubmitLead(context.Background(), LeadRequest{ClinicID: "c1", Phone: "123"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"clinic_id": "c1", "phone": "123"}, raw)
}

func TestClientSubmitLeadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"detail":"Rate limit exceeded"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()))
	err := c.SubmitLead(context.Background(), LeadRequest{ClinicID: "c1"})
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 429, httpErr.StatusCode)
	assert.Equal(t, "Rate limit exceeded", httpErr.Detail)
	assert.Equal(t, "remote returned status 429: Rate limit exceeded", httpErr.Error())
}

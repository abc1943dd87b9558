package chat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/mattsolo1/grove-widget/pkg/api"
	"github.com/mattsolo1/grove-widget/pkg/session"
	"github.com/mattsolo1/grove-widget/pkg/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAPI records requests and delegates to ChatFunc.
type mockAPI struct {
	mu       sync.Mutex
	Requests []api.ChatRequest
	ChatFunc func(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
}

func (m *mockAPI) Chat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, req)
	}
	return &api.ChatResponse{}, nil
}

func (m *mockAPI) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

type recordingComposer struct {
	events []string
}

func (r *recordingComposer) ClearInput() { r.events = append(r.events, "clear") }
func (r *recordingComposer) FocusInput() { r.events = append(r.events, "focus") }

type entry struct {
	Role transcript.Role
	Text string
}

func entries(s *transcript.Store) []entry {
	var out []entry
	for _, m := range s.Messages() {
		out = append(out, entry{m.Role, m.Text})
	}
	return out
}

func newTestController(client API) (*Controller, *session.Context, *transcript.Store, *recordingComposer) {
	sess := session.New("", session.WithIDGenerator(func() string { return "sess-fallback" }))
	store := transcript.NewStore(nil)
	comp := &recordingComposer{}
	return NewController(client, "smile-city-001", sess, store, comp), sess, store, comp
}

func TestSendReplyAssignsSession(t *testing.T) {
	client := &mockAPI{ChatFunc: func(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error) {
		return &api.ChatResponse{Reply: "Hi there", SessionID: "s1"}, nil
	}}
	c, sess, store, comp := newTestController(client)

	res, err := c.Send(context.Background(), "  Hello  ")
	require.NoError(t, err)

	assert.Equal(t, OutcomeReplied, res.Outcome)
	assert.Equal(t, []entry{{transcript.RoleUser, "Hello"}, {transcript.RoleBot, "Hi there"}}, entries(store))
	assert.Equal(t, "s1", sess.SessionID())
	assert.False(t, sess.Sending())
	assert.Equal(t, []string{"clear", "focus"}, comp.events)

	require.Len(t, client.Requests, 1)
	assert.Equal(t, api.ChatRequest{ClinicID: "smile-city-001", Message: "Hello", SessionID: "sess-fallback"}, client.Requests[0])
}

func TestSendHTTPError(t *testing.T) {
	client := &mockAPI{ChatFunc: func(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error) {
		return nil, &api.HTTPError{StatusCode: 500, Detail: "overloaded"}
	}}
	c, sess, store, _ := newTestController(client)

	res, err := c.Send(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, OutcomeHTTPError, res.Outcome)
	assert.Equal(t, []entry{{transcript.RoleUser, "Hello"}, {transcript.RoleBot, "Error 500: overloaded"}}, entries(store))
	assert.False(t, sess.Sending())

	// The widget stays usable.
	_, err = c.Send(context.Background(), "again")
	require.NoError(t, err)
	assert.Equal(t, 2, client.count())
}

func TestSendAgainstHTTPServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"overloaded"}`))
	}))
	defer srv.Close()

	c, sess, store, _ := newTestController(api.New(srv.URL, api.WithHTTPClient(srv.Client())))
	_, err := c.Send(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, []entry{{transcript.RoleUser, "Hello"}, {transcript.RoleBot, "Error 500: overloaded"}}, entries(store))
	assert.False(t, sess.Sending())
}

func TestSendFailureTexts(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		outcome Outcome
		want    string
	}{
		{"http without detail", &api.HTTPError{StatusCode: 404}, OutcomeHTTPError, "Error 404"},
		{"transport", &api.TransportError{Op: "POST /chat", Err: errors.New("connection refused")}, OutcomeNetworkError, "Network error: connection refused"},
		{"malformed", &api.TransportError{Op: "decode", Err: api.ErrMalformedResponse}, OutcomeNetworkError, "Network error: malformed response"},
		{"bare error", errors.New("boom"), OutcomeNetworkError, "Network error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockAPI{ChatFunc: func(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error) {
				return nil, tt.err
			}}
			c, sess, store, _ := newTestController(client)

			res, err := c.Send(context.Background(), "Hello")
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, res.Outcome)
			assert.Equal(t, tt.want, res.BotText)
			assert.Equal(t, tt.want, store.Messages()[1].Text)
			assert.ErrorIs(t, res.Err, tt.err)
			assert.False(t, sess.Sending())
		})
	}
}

func TestSendEmptyReplyPlaceholder(t *testing.T) {
	c, _, store, _ := newTestController(&mockAPI{})
	_, err := c.Send(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, NoReplyText, store.Messages()[1].Text)
}

func TestSendEmptyTextIsRefused(t *testing.T) {
	client := &mockAPI{}
	c, sess, store, comp := newTestController(client)

	_, err := c.Send(context.Background(), "   \n ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, client.count())
	assert.False(t, sess.Sending())
	assert.Empty(t, comp.events)
}

func TestSendIsSingleFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	client := &mockAPI{ChatFunc: func(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error) {
		close(started)
		<-release
		return &api.ChatResponse{Reply: "first reply"}, nil
	}}
	c, sess, store, _ := newTestController(client)

	first, err := c.Begin("first")
	require.NoError(t, err)

	done := make(chan Result)
	go func() { done <- first.Dispatch(context.Background()) }()
	<-started

	for i := 0; i < 3; i++ {
		_, err := c.Begin("again")
		assert.ErrorIs(t, err, ErrSendInFlight)
	}
	assert.Equal(t, 1, client.count())
	assert.Equal(t, []entry{{transcript.RoleUser, "first"}}, entries(store), "rejected sends must not echo")

	close(release)
	<-done
	assert.False(t, sess.Sending())

	client.ChatFunc = nil
	_, err = c.Send(context.Background(), "after")
	require.NoError(t, err)
	assert.Equal(t, 2, client.count())
}

func TestUserMessageAppendedBeforeRequest(t *testing.T) {
	var store *transcript.Store
	client := &mockAPI{}
	client.ChatFunc = func(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error) {
		msgs := store.Messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, transcript.RoleUser, msgs[0].Role)
		return &api.ChatResponse{Reply: "ok"}, nil
	}
	var c *Controller
	c, _, store, _ = newTestController(client)
	_, err := c.Send(context.Background(), "hi")
	require.NoError(t, err)
}

func TestDispatchTwiceIsNoop(t *testing.T) {
	client := &mockAPI{ChatFunc: func(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error) {
		return &api.ChatResponse{Reply: "once"}, nil
	}}
	c, _, store, _ := newTestController(client)

	attempt, err := c.Begin("hi")
	require.NoError(t, err)
	r1 := attempt.Dispatch(context.Background())
	r2 := attempt.Dispatch(context.Background())
	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, client.count())
	assert.Equal(t, 2, store.Len())
}

func TestBookingURLAndSessionRules(t *testing.T) {
	responses := []*api.ChatResponse{
		{Reply: "a", SessionID: "s1", BookingURL: "u1"},
		{Reply: "b", SessionID: "s2"},
	}
	i := 0
	client := &mockAPI{ChatFunc: func(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error) {
		r := responses[i]
		i++
		return r, nil
	}}
	c, sess, _, _ := newTestController(client)

	_, err := c.Send(context.Background(), "one")
	require.NoError(t, err)
	_, err = c.Send(context.Background(), "two")
	require.NoError(t, err)

	assert.Equal(t, "s1", sess.SessionID())
	assert.Equal(t, "u1", sess.BookingURL())
	assert.Equal(t, "sess-fallback", client.Requests[0].SessionID)
	assert.Equal(t, "s1", client.Requests[1].SessionID)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "replied", OutcomeReplied.String())
	assert.Equal(t, "http_error", OutcomeHTTPError.String())
	assert.Equal(t, "network_error", OutcomeNetworkError.String())
	assert.Equal(t, "outcome(9)", Outcome(9).String())
}

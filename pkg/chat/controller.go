// Package chat drives message sends against the remote chat endpoint and
// records their outcome in the transcript.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/mattsolo1/grove-widget/pkg/api"
	"github.com/mattsolo1/grove-widget/pkg/session"
	"github.com/mattsolo1/grove-widget/pkg/transcript"
	"github.com/sirupsen/logrus"
)

// NoReplyText is shown when the service answers with an empty reply.
const NoReplyText = "(no reply)"

var (
	// ErrEmptyMessage is returned when the trimmed text is empty.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrSendInFlight is returned while a previous send has not resolved.
	ErrSendInFlight = errors.New("a message is already being sent")
)

var log = grovelogging.NewLogger("grove-widget.chat")

// API is the remote chat endpoint. *api.Client satisfies it.
type API interface {
	Chat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
}

// Composer is the compose-field capability.
type Composer interface {
	ClearInput()
	FocusInput()
}

// Outcome is how a dispatched send resolved.
type Outcome int

const (
	OutcomeReplied Outcome = iota
	OutcomeHTTPError
	OutcomeNetworkError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReplied:
		return "replied"
	case OutcomeHTTPError:
		return "http_error"
	case OutcomeNetworkError:
		return "network_error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result describes a resolved send.
type Result struct {
	Outcome Outcome
	// BotText is the bot message appended to the transcript.
	BotText string
	// Response is set when Outcome is OutcomeReplied.
	Response *api.ChatResponse
	// Err is the underlying failure for the error outcomes.
	Err error
}

// Controller sends chat messages for one widget instance.
type Controller struct {
	api        API
	clinicID   string
	session    *session.Context
	transcript *transcript.Store
	composer   Composer
}

// NewController wires a controller to its collaborators. composer may be nil.
func NewController(client API, clinicID string, sess *session.Context, store *transcript.Store, composer Composer) *Controller {
	return &Controller{
		api:        client,
		clinicID:   clinicID,
		session:    sess,
		transcript: store,
		composer:   composer,
	}
}

// Attempt is a granted send whose user message is already in the
// transcript. It must be dispatched to release the send flag.
type Attempt struct {
	c    *Controller
	text string

	once   sync.Once
	result Result
}

// Text is the trimmed message being sent.
func (a *Attempt) Text() string { return a.text }

// Begin validates text and acquires the send flag. On success the user
// message has been appended and the compose field cleared.
func (c *Controller) Begin(text string) (*Attempt, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if !c.session.TryAcquireSend() {
		log.Debug("send rejected: previous send still in flight")
		return nil, ErrSendInFlight
	}

	c.transcript.AppendUser(text)
	if c.composer != nil {
		c.composer.ClearInput()
	}
	return &Attempt{c: c, text: text}, nil
}

// Send is Begin followed by Dispatch.
func (c *Controller) Send(ctx context.Context, text string) (Result, error) {
	attempt, err := c.Begin(text)
	if err != nil {
		return Result{}, err
	}
	return attempt.Dispatch(ctx), nil
}

// Dispatch performs the request and records its outcome. Only the first
// call does any work; later calls return the same Result.
func (a *Attempt) Dispatch(ctx context.Context) Result {
	a.once.Do(func() {
		a.result = a.c.dispatch(ctx, a.text)
	})
	return a.result
}

func (c *Controller) dispatch(ctx context.Context, text string) (res Result) {
	defer func() {
		c.session.ReleaseSend()
		if c.composer != nil {
			c.composer.FocusInput()
		}
	}()

	req := api.ChatRequest{
		ClinicID:  c.clinicID,
		Message:   text,
		SessionID: c.session.RequestSessionID(),
	}
	logger := log.WithFields(logrus.Fields{
		"clinic_id":  req.ClinicID,
		"session_id": req.SessionID,
	})
	logger.Debug("dispatching chat message")

	resp, err := c.api.Chat(ctx, req)
	if err != nil {
		res = failureResult(err)
		logger.WithError(err).WithField("outcome", res.Outcome.String()).Info("chat send failed")
		c.transcript.AppendBot(res.BotText)
		return res
	}

	if c.session.SetSessionID(resp.SessionID) {
		logger.WithField("assigned_session_id", resp.SessionID).Debug("session assigned by server")
	}
	c.session.SetBookingURL(resp.BookingURL)
	if resp.Handoff {
		logger.WithField("handoff_reason", resp.HandoffReason).Info("assistant requested handoff")
	}

	reply := resp.Reply
	if strings.TrimSpace(reply) == "" {
		reply = NoReplyText
	}
	c.transcript.AppendBot(reply)
	return Result{Outcome: OutcomeReplied, BotText: reply, Response: resp}
}

func failureResult(err error) Result {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		return Result{Outcome: OutcomeHTTPError, BotText: HTTPErrorText(httpErr), Err: err}
	}
	return Result{Outcome: OutcomeNetworkError, BotText: NetworkErrorText(err), Err: err}
}

// HTTPErrorText formats a remote rejection for the transcript.
func HTTPErrorText(e *api.HTTPError) string {
	if e.Detail == "" {
		return fmt.Sprintf("Error %d", e.StatusCode)
	}
	return fmt.Sprintf("Error %d: %s", e.StatusCode, e.Detail)
}

// NetworkErrorText formats a transport failure for the transcript.
func NetworkErrorText(err error) string {
	var tErr *api.TransportError
	if errors.As(err, &tErr) {
		return "Network error: " + tErr.Diagnostic()
	}
	if err == nil {
		return "Network error"
	}
	return "Network error: " + err.Error()
}

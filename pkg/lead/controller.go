// Package lead implements the callback-request modal: a small state machine
// that submits contact details to the remote lead endpoint.
package lead

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/mattsolo1/grove-widget/pkg/api"
	"github.com/mattsolo1/grove-widget/pkg/session"
	"github.com/mattsolo1/grove-widget/pkg/transcript"
	"github.com/sirupsen/logrus"
)

// DefaultCloseDelay is how long the confirmation stays visible before the
// modal closes after a successful submission.
const DefaultCloseDelay = 900 * time.Millisecond

// Status and transcript texts.
const (
	StatusSending      = "Sending…"
	StatusSent         = "Sent! The clinic will contact you."
	StatusNetworkError = "Network error. Please try again."
	ConfirmationText   = "We'll call you shortly — thank you!"
	fallbackDetail     = "Could not send"
)

// ErrNotOpen is returned by Submit unless the modal is open.
var ErrNotOpen = errors.New("lead form is not open")

var log = grovelogging.NewLogger("grove-widget.lead")

// State is the modal's lifecycle state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// API is the remote lead endpoint. *api.Client satisfies it.
type API interface {
	SubmitLead(ctx context.Context, req api.LeadRequest) error
}

// Scheduler runs f once after d. time.AfterFunc is the default.
type Scheduler func(d time.Duration, f func())

func afterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }

// Fields are the optional contact details entered in the form.
type Fields struct {
	Name    string
	Phone   string
	Message string
}

// Result describes a finished submission.
type Result struct {
	OK     bool
	Status string
	Err    error
}

// Option configures a Controller.
type Option func(*Controller)

// WithCloseDelay overrides DefaultCloseDelay.
func WithCloseDelay(d time.Duration) Option {
	return func(c *Controller) { c.closeDelay = d }
}

// WithScheduler overrides how the delayed close is scheduled.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) {
		if s != nil {
			c.schedule = s
		}
	}
}

// Controller owns the lead modal state for one widget instance.
type Controller struct {
	api        API
	clinicID   string
	session    *session.Context
	transcript *transcript.Store
	closeDelay time.Duration
	schedule   Scheduler

	mu       sync.Mutex
	state    State
	status   string
	gen      uint64
	watchers []func(from, to State)
}

// NewController returns a closed lead modal.
func NewController(client API, clinicID string, sess *session.Context, store *transcript.Store, opts ...Option) *Controller {
	c := &Controller{
		api:        client,
		clinicID:   clinicID,
		session:    sess,
		transcript: store,
		closeDelay: DefaultCloseDelay,
		schedule:   afterFunc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnTransition registers fn to observe every state change.
func (c *Controller) OnTransition(fn func(from, to State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watchers = append(c.watchers, fn)
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status returns the status line shown in the modal.
func (c *Controller) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Open shows the modal. It reports false if the modal was not closed.
func (c *Controller) Open() bool {
	c.mu.Lock()
	if c.state != StateClosed {
		c.mu.Unlock()
		return false
	}
	notify := c.transitionLocked(StateOpen)
	c.mu.Unlock()
	notify()
	return true
}

// Cancel closes the modal from any state and clears the status line.
// Backdrop dismissal and the close button behave the same way.
func (c *Controller) Cancel() {
	c.mu.Lock()
	c.status = ""
	c.gen++
	notify := c.transitionLocked(StateClosed)
	c.mu.Unlock()
	notify()
}

// Attempt is a submission that has already moved the modal to submitting.
// It must be dispatched to leave that state.
type Attempt struct {
	c   *Controller
	gen uint64
	req api.LeadRequest

	once   sync.Once
	result Result
}

// Begin moves the modal from open to submitting and captures the request.
// It returns ErrNotOpen in any other state, so a repeated submit while a
// request is in flight is rejected here.
func (c *Controller) Begin(fields Fields) (*Attempt, error) {
	c.mu.Lock()
	if c.state != StateOpen {
		c.mu.Unlock()
		return nil, ErrNotOpen
	}
	c.status = StatusSending
	c.gen++
	gen := c.gen
	notify := c.transitionLocked(StateSubmitting)
	c.mu.Unlock()
	notify()

	return &Attempt{
		c:   c,
		gen: gen,
		req: api.LeadRequest{
			ClinicID:  c.clinicID,
			SessionID: c.session.SessionID(),
			Name:      strings.TrimSpace(fields.Name),
			Phone:     strings.TrimSpace(fields.Phone),
			Message:   strings.TrimSpace(fields.Message),
		},
	}, nil
}

// Submit is Begin followed by Dispatch. It blocks for the duration of the
// request.
func (c *Controller) Submit(ctx context.Context, fields Fields) (Result, error) {
	attempt, err := c.Begin(fields)
	if err != nil {
		return Result{}, err
	}
	return attempt.Dispatch(ctx), nil
}

// Dispatch sends the request. A successful submission closes the modal
// after the close delay; a failed one returns it to open with an error
// status. Only the first call does any work.
func (a *Attempt) Dispatch(ctx context.Context) Result {
	a.once.Do(func() {
		a.result = a.c.dispatch(ctx, a.gen, a.req)
	})
	return a.result
}

func (c *Controller) dispatch(ctx context.Context, gen uint64, req api.LeadRequest) Result {
	logger := log.WithFields(logrus.Fields{
		"clinic_id":  req.ClinicID,
		"session_id": req.SessionID,
		"has_phone":  req.Phone != "",
	})

	err := c.api.SubmitLead(ctx, req)
	if err != nil {
		status := failureStatus(err)
		logger.WithError(err).Info("lead submission failed")
		notify := func() {}
		c.mu.Lock()
		if c.gen == gen && c.state == StateSubmitting {
			c.status = status
			notify = c.transitionLocked(StateOpen)
		}
		c.mu.Unlock()
		notify()
		return Result{Status: status, Err: err}
	}

	logger.Info("lead submitted")
	c.mu.Lock()
	if c.gen == gen {
		c.status = StatusSent
	}
	c.mu.Unlock()
	c.transcript.AppendBot(ConfirmationText)

	c.schedule(c.closeDelay, func() { c.closeAfterSuccess(gen) })
	return Result{OK: true, Status: StatusSent}
}

// closeAfterSuccess closes the modal unless it was cancelled or reopened
// since the submission identified by gen.
func (c *Controller) closeAfterSuccess(gen uint64) {
	c.mu.Lock()
	if c.gen != gen || c.state != StateSubmitting {
		c.mu.Unlock()
		return
	}
	c.status = ""
	notify := c.transitionLocked(StateClosed)
	c.mu.Unlock()
	notify()
}

// transitionLocked moves to next and returns a func that notifies watchers;
// call it after releasing the lock.
func (c *Controller) transitionLocked(next State) func() {
	prev := c.state
	if prev == next {
		return func() {}
	}
	c.state = next
	watchers := append(([]func(from, to State))(nil), c.watchers...)
	return func() {
		log.WithFields(logrus.Fields{"from": prev.String(), "to": next.String()}).Debug("lead state changed")
		for _, fn := range watchers {
			fn(prev, next)
		}
	}
}

func failureStatus(err error) string {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		detail := httpErr.Detail
		if detail == "" {
			detail = fallbackDetail
		}
		return fmt.Sprintf("Error %d: %s", httpErr.StatusCode, detail)
	}
	return StatusNetworkError
}

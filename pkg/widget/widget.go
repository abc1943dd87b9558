// Package widget assembles the chat widget: session, transcript, chat and
// lead controllers bound to a host-provided rendering surface.
package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"

	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/mattsolo1/grove-widget/pkg/api"
	"github.com/mattsolo1/grove-widget/pkg/chat"
	"github.com/mattsolo1/grove-widget/pkg/lead"
	"github.com/mattsolo1/grove-widget/pkg/session"
	"github.com/mattsolo1/grove-widget/pkg/transcript"
	"github.com/sirupsen/logrus"
)

var log = grovelogging.NewLogger("grove-widget.widget")

var (
	// ErrActionDisabled is returned when clicking an action that is not enabled.
	ErrActionDisabled = errors.New("action is disabled")
	// ErrNoSuchAction is returned when the message does not carry the action.
	ErrNoSuchAction = errors.New("message has no such action")
)

// Surface is everything the widget needs from the rendering layer.
type Surface interface {
	ScrollToLatest()
	ClearInput()
	FocusInput()
	// OpenURL opens url in a new browsing context.
	OpenURL(url string) error
}

// Client is the remote service. *api.Client satisfies it.
type Client interface {
	chat.API
	lead.API
}

// Option customizes construction beyond the host's Options.
type Option func(*settings)

type settings struct {
	client      Client
	leadOpts    []lead.Option
	sessionOpts []session.Option
}

// WithClient replaces the HTTP client built from Options.APIURL.
func WithClient(c Client) Option {
	return func(s *settings) { s.client = c }
}

// WithLeadOptions passes options through to the lead controller.
func WithLeadOptions(opts ...lead.Option) Option {
	return func(s *settings) { s.leadOpts = append(s.leadOpts, opts...) }
}

// WithSessionOptions passes options through to the session context.
func WithSessionOptions(opts ...session.Option) Option {
	return func(s *settings) { s.sessionOpts = append(s.sessionOpts, opts...) }
}

// Widget is one widget instance.
type Widget struct {
	opts    Options
	surface Surface

	session    *session.Context
	transcript *transcript.Store
	chat       *chat.Controller
	lead       *lead.Controller

	mu        sync.Mutex
	panelOpen bool
}

// New builds a widget. A missing clinic id is reported as
// ErrMissingClinicID and logged; nothing is started in that case.
func New(opts Options, surface Surface, extra ...Option) (*Widget, error) {
	if err := opts.Validate(); err != nil {
		log.WithError(err).Warn("Widget not started")
		return nil, err
	}
	if surface == nil {
		return nil, fmt.Errorf("widget surface is nil")
	}
	opts = opts.withDefaults()

	var s settings
	for _, o := range extra {
		o(&s)
	}
	if s.client == nil {
		s.client = api.New(opts.APIURL, api.WithTimeout(opts.Timeout))
	}
	if opts.LeadCloseDelay > 0 {
		s.leadOpts = append(s.leadOpts, lead.WithCloseDelay(opts.LeadCloseDelay))
	}

	w := &Widget{opts: opts, surface: surface}
	w.session = session.New(opts.SessionID, s.sessionOpts...)
	w.transcript = transcript.NewStore(surface)
	w.chat = chat.NewController(s.client, opts.ClinicID, w.session, w.transcript, surface)
	w.lead = lead.NewController(s.client, opts.ClinicID, w.session, w.transcript, s.leadOpts...)

	log.WithFields(logrus.Fields{
		"api_url":   opts.APIURL,
		"clinic_id": opts.ClinicID,
	}).Debug("Widget created")
	return w, nil
}

// Options returns the effective options, defaults applied.
func (w *Widget) Options() Options { return w.opts }

func (w *Widget) Session() *session.Context     { return w.session }
func (w *Widget) Transcript() *transcript.Store { return w.transcript }
func (w *Widget) Chat() *chat.Controller        { return w.chat }
func (w *Widget) Lead() *lead.Controller        { return w.lead }

// TogglePanel opens or closes the panel and returns the new state.
func (w *Widget) TogglePanel() bool {
	w.mu.Lock()
	w.panelOpen = !w.panelOpen
	open := w.panelOpen
	w.mu.Unlock()
	if open {
		w.surface.FocusInput()
	}
	return open
}

// PanelOpen reports whether the panel is showing.
func (w *Widget) PanelOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.panelOpen
}

// Actions resolves the actions of the message at index against the
// current session.
func (w *Widget) Actions(index int) []transcript.Action {
	msg, ok := w.transcript.At(index)
	if !ok {
		return nil
	}
	return msg.ResolveActions(w.session)
}

// ClickAction activates an action on the message at index. Booking uses
// the booking URL known now, not the one known when the message arrived.
func (w *Widget) ClickAction(index int, kind transcript.ActionKind) error {
	msg, ok := w.transcript.At(index)
	if !ok || !msg.HasAction(kind) {
		return fmt.Errorf("%w: %s at %d", ErrNoSuchAction, kind, index)
	}

	switch kind {
	case transcript.ActionBookAppointment:
		url := w.session.BookingURL()
		if url == "" {
			return ErrActionDisabled
		}
		if err := w.surface.OpenURL(url); err != nil {
			return fmt.Errorf("open booking url: %w", err)
		}
		log.WithField("booking_url", url).Info("Opened booking page")
		return nil
	case transcript.ActionRequestCallback:
		w.lead.Open()
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrNoSuchAction, kind)
	}
}

// ClickSend begins a send of draft. The caller dispatches the attempt.
func (w *Widget) ClickSend(draft string) (*chat.Attempt, error) {
	return w.chat.Begin(draft)
}

// Send sends draft and waits for the outcome.
func (w *Widget) Send(ctx context.Context, draft string) (chat.Result, error) {
	return w.chat.Send(ctx, draft)
}

func (w *Widget) OpenLead() bool { return w.lead.Open() }
func (w *Widget) CancelLead()    { w.lead.Cancel() }

// BeginLead moves the lead form to submitting. The caller dispatches the
// attempt.
func (w *Widget) BeginLead(fields lead.Fields) (*lead.Attempt, error) {
	return w.lead.Begin(fields)
}

func (w *Widget) SubmitLead(ctx context.Context, fields lead.Fields) (lead.Result, error) {
	return w.lead.Submit(ctx, fields)
}

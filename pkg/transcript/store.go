// Package transcript keeps the ordered, append-only list of chat messages
// shown by the widget.
package transcript

import (
	"sync"

	"github.com/mattsolo1/grove-widget/pkg/linkify"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// ActionKind is a call to action offered under a bot message.
type ActionKind string

const (
	ActionBookAppointment ActionKind = "book_appointment"
	ActionRequestCallback ActionKind = "request_callback"
)

// botActions is the fixed set and order of actions attached to bot messages.
var botActions = []ActionKind{ActionBookAppointment, ActionRequestCallback}

// Action is an ActionKind resolved against live session state.
type Action struct {
	Kind    ActionKind
	Enabled bool
	Target  string
}

// BookingSource supplies the current booking target. session.Context
// satisfies it.
type BookingSource interface {
	BookingURL() string
}

// Message is one transcript entry. Messages handed out by a Store are
// copies; mutating them does not affect the transcript.
type Message struct {
	Role    Role
	Text    string
	Actions []ActionKind
}

// Segments returns the message text split into text and link segments.
func (m Message) Segments() []linkify.Segment {
	return linkify.Split(m.Text)
}

// ResolveActions reports each action's enabled state and target as of now.
func (m Message) ResolveActions(src BookingSource) []Action {
	out := make([]Action, 0, len(m.Actions))
	for _, kind := range m.Actions {
		out = append(out, resolve(kind, src))
	}
	return out
}

// HasAction reports whether kind is offered under this message.
func (m Message) HasAction(kind ActionKind) bool {
	for _, k := range m.Actions {
		if k == kind {
			return true
		}
	}
	return false
}

func resolve(kind ActionKind, src BookingSource) Action {
	switch kind {
	case ActionBookAppointment:
		url := ""
		if src != nil {
			url = src.BookingURL()
		}
		return Action{Kind: kind, Enabled: url != "", Target: url}
	default:
		return Action{Kind: kind, Enabled: true}
	}
}

func (m Message) clone() Message {
	m.Actions = append([]ActionKind(nil), m.Actions...)
	return m
}

// Viewport is the rendering capability the store drives: after every
// append the view must present the latest message.
type Viewport interface {
	ScrollToLatest()
}

// Store is a goroutine-safe transcript.
type Store struct {
	mu          sync.RWMutex
	messages    []Message
	viewport    Viewport
	subscribers []func(Message)
}

// NewStore returns an empty transcript driving viewport, which may be nil.
func NewStore(viewport Viewport) *Store {
	return &Store{viewport: viewport}
}

// Subscribe registers fn to be called with a copy of each appended message.
func (s *Store) Subscribe(fn func(Message)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Append adds msg to the end of the transcript. Bot messages receive the
// standard actions; any actions set by the caller are replaced.
func (s *Store) Append(msg Message) {
	if msg.Role == RoleBot {
		msg.Actions = append([]ActionKind(nil), botActions...)
	} else {
		msg.Actions = nil
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	subs := append(([]func(Message))(nil), s.subscribers...)
	vp := s.viewport
	s.mu.Unlock()

	for _, fn := range subs {
		fn(msg.clone())
	}
	if vp != nil {
		vp.ScrollToLatest()
	}
}

// AppendUser appends a user message.
func (s *Store) AppendUser(text string) { s.Append(Message{Role: RoleUser, Text: text}) }

// AppendBot appends a bot message.
func (s *Store) AppendBot(text string) { s.Append(Message{Role: RoleBot, Text: text}) }

// Len returns the number of messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// At returns the message at index i.
func (s *Store) At(i int) (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.messages) {
		return Message{}, false
	}
	return s.messages[i].clone(), true
}

// LastBot returns the index of the most recent bot message, or -1.
func (s *Store) LastBot() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == RoleBot {
			return i
		}
	}
	return -1
}

// Messages returns a copy of the transcript in order.
func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	for i, m := range s.messages {
		out[i] = m.clone()
	}
	return out
}

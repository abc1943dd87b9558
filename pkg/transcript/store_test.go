package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingViewport struct{ scrolls int }

func (v *countingViewport) ScrollToLatest() { v.scrolls++ }

type staticBooking string

func (s staticBooking) BookingURL() string { return string(s) }

func TestAppendKeepsOrderAndScrolls(t *testing.T) {
	vp := &countingViewport{}
	s := NewStore(vp)

	s.AppendUser("Hello")
	s.AppendBot("Hi there")
	s.AppendUser("Thanks")

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "Hello", msgs[0].Text)
	assert.Equal(t, RoleBot, msgs[1].Role)
	assert.Equal(t, "Hi there", msgs[1].Text)
	assert.Equal(t, "Thanks", msgs[2].Text)
	assert.Equal(t, 3, vp.scrolls)
}

func TestBotMessagesGetFixedActions(t *testing.T) {
	s := NewStore(nil)
	s.AppendUser("q")
	s.Append(Message{Role: RoleBot, Text: "a", Actions: []ActionKind{ActionRequestCallback}})

	user, _ := s.At(0)
	bot, _ := s.At(1)
	assert.Empty(t, user.Actions)
	assert.Equal(t, []ActionKind{ActionBookAppointment, ActionRequestCallback}, bot.Actions)
}

func TestResolveActionsReadsLiveBooking(t *testing.T) {
	s := NewStore(nil)
	s.AppendBot("first")
	first, _ := s.At(0)

	actions := first.ResolveActions(staticBooking(""))
	require.Len(t, actions, 2)
	assert.Equal(t, Action{Kind: ActionBookAppointment, Enabled: false}, actions[0])
	assert.Equal(t, Action{Kind: ActionRequestCallback, Enabled: true}, actions[1])

	// Learned later: the earlier message's Book action becomes enabled.
	actions = first.ResolveActions(staticBooking("https://book.example"))
	assert.Equal(t, Action{Kind: ActionBookAppointment, Enabled: true, Target: "https://book.example"}, actions[0])

	actions = first.ResolveActions(nil)
	assert.False(t, actions[0].Enabled)
}

func TestMessagesAreCopies(t *testing.T) {
	s := NewStore(nil)
	s.AppendBot("a")

	msgs := s.Messages()
	msgs[0].Text = "changed"
	msgs[0].Actions[0] = ActionRequestCallback

	again, ok := s.At(0)
	require.True(t, ok)
	assert.Equal(t, "a", again.Text)
	assert.Equal(t, ActionBookAppointment, again.Actions[0])
}

func TestAtAndLastBot(t *testing.T) {
	s := NewStore(nil)
	assert.Equal(t, -1, s.LastBot())
	_, ok := s.At(0)
	assert.False(t, ok)

	s.AppendUser("u")
	s.AppendBot("b1")
	s.AppendUser("u2")
	assert.Equal(t, 1, s.LastBot())
	assert.Equal(t, 3, s.Len())
}

func TestSubscribe(t *testing.T) {
	s := NewStore(nil)
	var seen []string
	s.Subscribe(func(m Message) { seen = append(seen, string(m.Role)+":"+m.Text) })
	s.AppendUser("x")
	s.AppendBot("y")
	assert.Equal(t, []string{"user:x", "bot:y"}, seen)
}

func TestSegments(t *testing.T) {
	m := Message{Role: RoleBot, Text: "go https://a.example"}
	segs := m.Segments()
	require.Len(t, segs, 2)
	assert.Equal(t, "https://a.example", segs[1].Href)
}

package widget_tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattsolo1/grove-widget/pkg/chat"
	"github.com/mattsolo1/grove-widget/pkg/lead"
	"github.com/mattsolo1/grove-widget/pkg/transcript"
	"github.com/mattsolo1/grove-widget/pkg/widget"
)

// Message types
type surfaceMsg struct{ kind eventKind }
type chatDoneMsg struct{ Result chat.Result }
type leadDoneMsg struct{ Result lead.Result }
type bookDoneMsg struct{ Err error }

// waitForEvent delivers the next surface event. Update re-arms it after
// each delivery.
func waitForEvent(events <-chan eventKind) tea.Cmd {
	return func() tea.Msg {
		return surfaceMsg{kind: <-events}
	}
}

func dispatchCmd(ctx context.Context, attempt *chat.Attempt) tea.Cmd {
	return func() tea.Msg {
		return chatDoneMsg{Result: attempt.Dispatch(ctx)}
	}
}

func submitLeadCmd(ctx context.Context, attempt *lead.Attempt) tea.Cmd {
	return func() tea.Msg {
		return leadDoneMsg{Result: attempt.Dispatch(ctx)}
	}
}

func bookCmd(w *widget.Widget, index int) tea.Cmd {
	return func() tea.Msg {
		return bookDoneMsg{Err: w.ClickAction(index, transcript.ActionBookAppointment)}
	}
}

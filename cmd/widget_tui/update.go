package widget_tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattsolo1/grove-widget/pkg/chat"
	"github.com/mattsolo1/grove-widget/pkg/lead"
	"github.com/mattsolo1/grove-widget/pkg/transcript"
	"github.com/mattsolo1/grove-widget/pkg/widget"
)

// Notices shown under the transcript.
const (
	noticeSending     = "Still sending the previous message…"
	noticeNoBooking   = "No booking link yet. Ask the assistant about appointments."
	noticeNoBotAction = "Say hello first."
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case surfaceMsg:
		cmd := m.handleSurface(msg.kind)
		return m, tea.Batch(cmd, waitForEvent(m.surface.events))

	case chatDoneMsg:
		if msg.Result.Outcome != chat.OutcomeReplied {
			log.WithError(msg.Result.Err).Debug("send did not get a reply")
		}
		return m, nil

	case leadDoneMsg:
		// the outcome is shown as the modal's status line
		if !msg.Result.OK {
			log.WithError(msg.Result.Err).Debug("lead submission did not go through")
		}
		return m, nil

	case bookDoneMsg:
		switch {
		case errors.Is(msg.Err, widget.ErrActionDisabled):
			m.notice = noticeNoBooking
		case msg.Err != nil:
			m.notice = msg.Err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.transcript, cmd = m.transcript.Update(msg)
	return m, cmd
}

func (m *Model) handleSurface(kind eventKind) tea.Cmd {
	switch kind {
	case eventScroll:
		m.refreshTranscript(true)
	case eventClear:
		m.applyClear()
	case eventFocus:
		if m.widget.PanelOpen() && m.widget.Lead().State() == lead.StateClosed {
			return m.composer.Focus()
		}
	case eventLead:
		switch m.widget.Lead().State() {
		case lead.StateClosed:
			m.resetLeadInputs()
			if m.widget.PanelOpen() {
				return m.composer.Focus()
			}
		case lead.StateOpen:
			m.composer.Blur()
			return m.focusLeadInput(m.leadFocus)
		}
	}
	return nil
}

// applyClear resets the composer if the chat controller asked for it.
func (m *Model) applyClear() {
	if m.surface.takeClear() {
		m.composer.Reset()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if m.help.ShowAll {
		if key.Matches(msg, m.keys.Help) || msg.Type == tea.KeyEsc {
			m.help.ShowAll = false
		}
		return m, nil
	}
	if key.Matches(msg, m.keys.Help) {
		m.help.ShowAll = true
		return m, nil
	}

	if m.widget.Lead().State() != lead.StateClosed {
		return m.handleLeadKey(msg)
	}

	if key.Matches(msg, m.keys.Toggle) {
		m.notice = ""
		if !m.widget.TogglePanel() {
			m.composer.Blur()
		}
		return m, nil
	}
	if !m.widget.PanelOpen() {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Book):
		m.notice = ""
		idx := m.widget.Transcript().LastBot()
		if idx < 0 {
			m.notice = noticeNoBotAction
			return m, nil
		}
		return m, bookCmd(m.widget, idx)

	case key.Matches(msg, m.keys.Callback):
		m.notice = ""
		idx := m.widget.Transcript().LastBot()
		if idx < 0 {
			m.widget.OpenLead()
			return m, nil
		}
		if err := m.widget.ClickAction(idx, transcript.ActionRequestCallback); err != nil {
			m.notice = err.Error()
		}
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.transcript.SetYOffset(m.transcript.YOffset - m.transcript.Height/2)
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.transcript.SetYOffset(m.transcript.YOffset + m.transcript.Height/2)
		return m, nil
	}

	if k, ok := composeKey(msg); ok {
		res := m.widget.ComposeKey(k, m.composer.Value())
		m.applyClear()
		if res.Suppressed {
			switch {
			case res.Attempt != nil:
				m.notice = ""
				return m, dispatchCmd(m.ctx, res.Attempt)
			case errors.Is(res.Err, chat.ErrSendInFlight):
				m.notice = noticeSending
			}
			return m, nil
		}
		if k.Shift || k.Alt {
			m.composer.InsertString("\n")
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

// composeKey maps a terminal key onto the widget's key model. Terminals do
// not report Shift+Enter; ctrl+j stands in for it.
func composeKey(msg tea.KeyMsg) (widget.Key, bool) {
	switch {
	case msg.Type == tea.KeyEnter:
		return widget.Key{Name: widget.KeyEnter, Alt: msg.Alt}, true
	case msg.Type == tea.KeyCtrlJ:
		return widget.Key{Name: widget.KeyEnter, Shift: true}, true
	}
	return widget.Key{}, false
}

func (m Model) handleLeadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Cancel) {
		m.widget.CancelLead()
		return m, nil
	}
	if m.widget.Lead().State() != lead.StateOpen {
		// submitting; inputs are frozen
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		attempt, err := m.widget.BeginLead(m.leadFields())
		if err != nil {
			return m, nil
		}
		return m, submitLeadCmd(m.ctx, attempt)
	case key.Matches(msg, m.keys.NextField):
		return m, m.focusLeadInput(m.leadFocus + 1)
	case key.Matches(msg, m.keys.PrevField):
		return m, m.focusLeadInput(m.leadFocus - 1)
	}

	var cmd tea.Cmd
	m.leadInputs[m.leadFocus], cmd = m.leadInputs[m.leadFocus].Update(msg)
	return m, cmd
}

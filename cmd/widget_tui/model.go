// Package widget_tui renders the chat widget in the terminal.
package widget_tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/mattsolo1/grove-core/tui/components/help"
	"github.com/mattsolo1/grove-core/tui/theme"
	"github.com/mattsolo1/grove-widget/pkg/lead"
	"github.com/mattsolo1/grove-widget/pkg/widget"
)

var log = grovelogging.NewLogger("grove-widget.tui")

const (
	fieldName = iota
	fieldPhone
	fieldMessage
	fieldCount
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	composerLines = 3
)

// Model is the bubbletea model of one widget instance.
type Model struct {
	ctx     context.Context
	widget  *widget.Widget
	surface *Surface

	keys KeyMap
	help help.Model

	composer   textarea.Model
	transcript viewport.Model
	leadInputs []textinput.Model
	leadFocus  int

	header   lipgloss.Style
	launcher lipgloss.Style

	width, height int
	notice        string
	quitting      bool
}

// New builds the model around w, whose surface must be s.
func New(ctx context.Context, w *widget.Widget, s *Surface) Model {
	keys := NewKeyMap()

	composer := textarea.New()
	composer.Placeholder = "Type your message..."
	composer.ShowLineNumbers = false
	composer.SetHeight(composerLines)
	composer.CharLimit = 2000
	// enter is handled by the widget; newlines come from alt+enter/ctrl+j
	composer.KeyMap.InsertNewline.SetEnabled(false)

	inputs := make([]textinput.Model, fieldCount)
	for i, placeholder := range []string{"Name", "Phone", "Message (optional)"} {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = placeholder
		inputs[i].CharLimit = 200
		inputs[i].Width = 40
	}

	m := Model{
		ctx:        ctx,
		widget:     w,
		surface:    s,
		keys:       keys,
		help:       help.New(keys),
		composer:   composer,
		transcript: viewport.New(defaultWidth, defaultHeight),
		leadInputs: inputs,
		width:      defaultWidth,
		height:     defaultHeight,
	}
	m.header, m.launcher = accentStyles(w.Options().Theme)
	m.resize(defaultWidth, defaultHeight)

	w.Lead().OnTransition(func(from, to lead.State) { s.LeadChanged() })
	return m
}

// accentStyles derives the header and launcher styles from an accent
// colour, falling back to the terminal theme.
func accentStyles(accent string) (lipgloss.Style, lipgloss.Style) {
	if accent == "" {
		header := theme.DefaultTheme.Header.Copy().Bold(true).Padding(0, 1)
		launcher := theme.DefaultTheme.Box.Copy().Padding(0, 2)
		return header, launcher
	}
	c := lipgloss.Color(accent)
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1).
		Foreground(lipgloss.Color("#ffffff")).
		Background(c)
	launcher := lipgloss.NewStyle().Padding(0, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c).
		Foreground(c)
	return header, launcher
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForEvent(m.surface.events))
}

// resize lays the panel out for a width x height terminal.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	contentWidth := width - 2
	if contentWidth < 20 {
		contentWidth = 20
	}
	m.composer.SetWidth(contentWidth)

	// header, notice, composer and its margin, help footer
	chrome := 1 + 1 + composerLines + 2 + 1
	vpHeight := height - chrome
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.transcript.Width = contentWidth
	m.transcript.Height = vpHeight
	m.refreshTranscript(false)
}

func (m *Model) refreshTranscript(gotoBottom bool) {
	m.transcript.SetContent(renderTranscript(m.widget, m.transcript.Width, m.header))
	if gotoBottom {
		m.transcript.GotoBottom()
	}
}

func (m *Model) focusLeadInput(i int) tea.Cmd {
	m.leadFocus = (i + fieldCount) % fieldCount
	var cmd tea.Cmd
	for j := range m.leadInputs {
		if j == m.leadFocus {
			cmd = m.leadInputs[j].Focus()
		} else {
			m.leadInputs[j].Blur()
		}
	}
	return cmd
}

func (m *Model) resetLeadInputs() {
	for i := range m.leadInputs {
		m.leadInputs[i].Reset()
		m.leadInputs[i].Blur()
	}
	m.leadFocus = 0
}

func (m Model) leadFields() lead.Fields {
	return lead.Fields{
		Name:    m.leadInputs[fieldName].Value(),
		Phone:   m.leadInputs[fieldPhone].Value(),
		Message: m.leadInputs[fieldMessage].Value(),
	}
}

// Run starts the widget TUI and blocks until the user quits.
func Run(opts widget.Options) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	surface := NewSurface(nil)
	w, err := widget.New(opts, surface)
	if err != nil {
		return fmt.Errorf("cannot start widget: %w", err)
	}

	p := tea.NewProgram(New(ctx, w, surface), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running widget: %w", err)
	}
	log.WithField("messages", w.Transcript().Len()).Debug("Widget closed")
	return nil
}

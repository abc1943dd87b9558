package widget_tui

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattsolo1/grove-core/tui/theme"
	"github.com/mattsolo1/grove-widget/pkg/lead"
	"github.com/mattsolo1/grove-widget/pkg/linkify"
	"github.com/mattsolo1/grove-widget/pkg/transcript"
	"github.com/mattsolo1/grove-widget/pkg/widget"
	"github.com/muesli/termenv"
)

var actionLabels = map[transcript.ActionKind]string{
	transcript.ActionBookAppointment: "Book appointment",
	transcript.ActionRequestCallback: "Request callback",
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.help.ShowAll {
		return m.help.View()
	}

	opts := m.widget.Options()
	if !m.widget.PanelOpen() {
		launcher := m.launcher.Render(opts.ButtonLabel)
		hint := theme.DefaultTheme.Muted.Render("ctrl+o to open • ctrl+c to quit")
		return lipgloss.JoinVertical(lipgloss.Left, launcher, hint)
	}

	header := m.header.Width(m.transcript.Width).Render(opts.Title)

	var bottom string
	if m.widget.Lead().State() != lead.StateClosed {
		bottom = m.renderLeadModal()
	} else {
		bottom = m.composer.View()
	}

	notice := ""
	if m.notice != "" {
		notice = theme.DefaultTheme.Warning.Render(m.notice)
	} else if m.widget.Session().Sending() {
		notice = theme.DefaultTheme.Muted.Render("…")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.transcript.View(),
		notice,
		bottom,
		m.help.View(),
	)
}

func (m Model) renderLeadModal() string {
	var b strings.Builder
	b.WriteString(theme.DefaultTheme.Bold.Render("Request a callback"))
	b.WriteString("\n\n")
	for i, in := range m.leadInputs {
		b.WriteString(in.View())
		if i < len(m.leadInputs)-1 {
			b.WriteString("\n")
		}
	}
	if status := m.widget.Lead().Status(); status != "" {
		b.WriteString("\n\n")
		b.WriteString(statusStyle(status).Render(status))
	}
	b.WriteString("\n\n")
	b.WriteString(theme.DefaultTheme.Muted.Render("enter submit • tab next field • esc cancel"))

	return theme.DefaultTheme.Box.Copy().Padding(0, 1).Width(m.transcript.Width - 2).Render(b.String())
}

func statusStyle(status string) lipgloss.Style {
	switch {
	case status == lead.StatusSent:
		return theme.DefaultTheme.Success
	case status == lead.StatusSending:
		return theme.DefaultTheme.Muted
	default:
		return theme.DefaultTheme.Error
	}
}

// renderTranscript renders every message with its resolved actions.
func renderTranscript(w *widget.Widget, width int, botLabel lipgloss.Style) string {
	msgs := w.Transcript().Messages()
	if len(msgs) == 0 {
		return theme.DefaultTheme.Muted.Render("Ask us anything about the clinic.")
	}

	title := w.Options().Title
	body := lipgloss.NewStyle().Width(width)
	var blocks []string
	for _, msg := range msgs {
		var who string
		if msg.Role == transcript.RoleUser {
			who = theme.DefaultTheme.Info.Bold(true).Render("You")
		} else {
			who = botLabel.UnsetPadding().UnsetBackground().Bold(true).Render(title)
		}
		block := who + "\n" + body.Render(renderSegments(linkify.Split(sanitize(msg.Text))))
		if actions := msg.ResolveActions(w.Session()); len(actions) > 0 {
			block += "\n" + renderActions(actions)
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n")
}

// renderSegments writes text and links as OSC 8 hyperlinks. Terminal
// control sequences in either are dropped; a link whose target carries
// one is written as plain text.
func renderSegments(segs []linkify.Segment) string {
	var b strings.Builder
	link := theme.DefaultTheme.Info.Underline(true)
	for _, s := range segs {
		switch s.Type {
		case linkify.SegmentLink:
			label := sanitize(s.Label)
			if hasControl(s.Href) {
				b.WriteString(label)
				continue
			}
			b.WriteString(termenv.Hyperlink(s.Href, link.Render(label)))
		default:
			b.WriteString(sanitize(s.Value))
		}
	}
	return b.String()
}

// sanitize removes escape sequences and every control character except
// newline and tab from remote text.
func sanitize(s string) string {
	s = ansi.Strip(s)
	if !hasControl(s) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isUnsafeControl(r) {
			return -1
		}
		return r
	}, s)
}

func hasControl(s string) bool { return strings.IndexFunc(s, isUnsafeControl) >= 0 }

func isUnsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t'
}

func renderActions(actions []transcript.Action) string {
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		label := fmt.Sprintf("[%s]", actionLabels[a.Kind])
		if a.Enabled {
			parts = append(parts, theme.DefaultTheme.Success.Render(label))
		} else {
			parts = append(parts, theme.DefaultTheme.Faint.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

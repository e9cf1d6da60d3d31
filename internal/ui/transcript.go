package ui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/marcward/clack/internal/domain"
)

// scrolledToEndMsg is emitted when the transcript reaches its end, which
// clears the new-messages banner.
type scrolledToEndMsg struct{}

// TranscriptModel renders the open conversation in a viewport.
type TranscriptModel struct {
	viewport viewport.Model
	focused  bool
	width    int
	height   int
	peerName string
	localID  string
	messages []domain.Message
	typing   []string
}

func NewTranscriptModel() TranscriptModel {
	return TranscriptModel{viewport: viewport.New()}
}

func (m TranscriptModel) Update(msg tea.Msg) (TranscriptModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "j":
			m.viewport.ScrollDown(1)
			return m, m.checkScrollEnd()
		case "k":
			m.viewport.ScrollUp(1)
			return m, nil
		case "G":
			m.viewport.GotoBottom()
			return m, m.checkScrollEnd()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)

	var cmds []tea.Cmd
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	if endCmd := m.checkScrollEnd(); endCmd != nil {
		cmds = append(cmds, endCmd)
	}
	return m, tea.Batch(cmds...)
}

func (m TranscriptModel) checkScrollEnd() tea.Cmd {
	if m.viewport.AtBottom() && len(m.messages) > 0 {
		return func() tea.Msg { return scrolledToEndMsg{} }
	}
	return nil
}

func (m TranscriptModel) View() string {
	contentH := m.height - 2
	if contentH < 0 {
		contentH = 0
	}

	content := truncateHeight(m.viewport.View(), contentH)

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(m.width).
		Height(m.height)
	style = applyBorderColor(style, m.focused)

	return style.Render(content)
}

func (m TranscriptModel) SetSize(w, h int) TranscriptModel {
	m.width = w
	m.height = h
	vpW := w - 2
	vpH := h - 2
	if vpW < 1 {
		vpW = 1
	}
	if vpH < 1 {
		vpH = 1
	}
	m.viewport.SetWidth(vpW)
	m.viewport.SetHeight(vpH)
	return m.renderContent()
}

func (m TranscriptModel) SetFocused(f bool) TranscriptModel {
	m.focused = f
	return m
}

func (m TranscriptModel) SetPeerName(name string) TranscriptModel {
	m.peerName = name
	return m
}

func (m TranscriptModel) SetLocalID(id string) TranscriptModel {
	m.localID = id
	return m
}

func (m TranscriptModel) SetMessages(msgs []domain.Message) TranscriptModel {
	m.messages = msgs
	return m.renderContent()
}

func (m TranscriptModel) SetTyping(usernames []string) TranscriptModel {
	m.typing = usernames
	return m.renderContent()
}

func (m TranscriptModel) renderContent() TranscriptModel {
	var b strings.Builder
	var currentDate string

	if len(m.messages) == 0 && m.peerName != "" {
		b.WriteString(timeStyle.Render("No messages with " + m.peerName + " yet."))
	}

	for _, msg := range m.messages {
		msgDate := msg.Timestamp.Format("January 2, 2006")
		if msgDate != currentDate {
			if currentDate != "" {
				b.WriteString("\n")
			}
			sep := daySeparatorStyle.Render(fmt.Sprintf("───── %s ─────", msgDate))
			b.WriteString(sep + "\n")
			currentDate = msgDate
		}

		ts := timeStyle.Render(msg.Timestamp.Format("15:04"))

		var name string
		if msg.SenderID == m.localID {
			name = ownNameStyle.Render(msg.Sender.Username + ":")
		} else {
			name = peerNameStyle.Render(msg.Sender.Username + ":")
		}

		fmt.Fprintf(&b, "%s %s %s\n", ts, name, renderBody(msg))
	}

	if len(m.typing) > 0 {
		b.WriteString("\n")
		b.WriteString(typingStyle.Render(typingLine(m.typing)))
	}

	// Stay pinned to the live end of the conversation, but leave the view
	// alone when the user has scrolled back.
	pinned := m.viewport.AtBottom()

	wrapped := lipgloss.NewStyle().Width(m.viewport.Width()).Render(b.String())
	m.viewport.SetContent(wrapped)
	if pinned {
		m.viewport.GotoBottom()
	}
	return m
}

func renderBody(msg domain.Message) string {
	switch msg.Kind {
	case domain.KindFile:
		label := msg.FileName
		if msg.FileSize > 0 {
			label = fmt.Sprintf("%s (%s)", msg.FileName, humanSize(msg.FileSize))
		}
		return attachmentStyle.Render("📎 " + label)
	case domain.KindImage:
		return attachmentStyle.Render("🖼 " + msg.FileName)
	case domain.KindGIF:
		return attachmentStyle.Render("[GIF] " + msg.Content)
	default:
		return msg.Content
	}
}

func typingLine(usernames []string) string {
	if len(usernames) == 1 {
		return usernames[0] + " is typing..."
	}
	return strings.Join(usernames, ", ") + " are typing..."
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

package ui

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// InputModel is the message composer. Besides producing sendMessageMsg on
// Enter, it reports every transition between empty and non-empty so the
// local typing signal can follow the input.
type InputModel struct {
	input   textinput.Model
	focused bool
	width   int
	height  int
}

func NewInputModel() InputModel {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	return InputModel{input: ti}
}

func (m InputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m InputModel) Update(msg tea.Msg) (InputModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.SetValue("")
		return m, tea.Batch(
			func() tea.Msg { return sendMessageMsg{text: text} },
			func() tea.Msg { return typingFlippedMsg{isTyping: false} },
		)
	}

	wasEmpty := m.input.Value() == ""
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	isEmpty := m.input.Value() == ""

	if wasEmpty != isEmpty {
		flip := func() tea.Msg { return typingFlippedMsg{isTyping: !isEmpty} }
		return m, tea.Batch(cmd, flip)
	}
	return m, cmd
}

func (m InputModel) View() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(m.width).
		Height(m.height)
	style = applyBorderColor(style, m.focused)

	return style.Render(m.input.View())
}

func (m InputModel) SetSize(w, h int) InputModel {
	m.width = w
	m.height = h
	innerW := w - 2
	if innerW < 1 {
		innerW = 1
	}
	m.input.SetWidth(innerW)
	return m
}

func (m InputModel) SetFocused(f bool) InputModel {
	m.focused = f
	if f {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	return m
}

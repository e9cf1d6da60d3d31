package ui

import (
	"fmt"
	"io"

	"charm.land/bubbles/v2/list"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/marcward/clack/internal/domain"
)

// userItem implements list.Item for the peer roster.
type userItem struct {
	user   domain.Identity
	unread int
	online bool
}

func (i userItem) FilterValue() string { return i.user.Username }

type userItemDelegate struct{}

func (d userItemDelegate) Height() int  { return 1 }
func (d userItemDelegate) Spacing() int { return 0 }
func (d userItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d userItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ui, ok := item.(userItem)
	if !ok {
		return
	}

	name := ui.user.Username
	if ui.unread > 0 {
		name = fmt.Sprintf("%s (%d)", name, ui.unread)
	}

	dot := " "
	if ui.online {
		dot = onlineDotStyle.Render("●")
	}

	contentWidth := m.Width() - 4
	if contentWidth < 1 {
		contentWidth = 1
	}
	style := lipgloss.NewStyle().MaxWidth(contentWidth).MaxHeight(1)

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
		style = style.Foreground(lipgloss.Color("170")).Bold(true)
	}
	if ui.unread > 0 {
		style = style.Bold(true)
	}

	fmt.Fprintf(w, "%s%s %s", cursor, dot, style.Render(name))
}

// UserListModel wraps bubbles/list for the peer sidebar.
type UserListModel struct {
	list    list.Model
	focused bool
	width   int
	height  int
}

func NewUserListModel() UserListModel {
	l := list.New(nil, userItemDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()

	return UserListModel{list: l}
}

func (m UserListModel) Update(msg tea.Msg) (UserListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" && m.list.FilterState() != list.Filtering {
			if item, ok := m.list.SelectedItem().(userItem); ok {
				return m, func() tea.Msg {
					return PeerSelectedMsg{Peer: item.user}
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Filtering reports whether the roster filter prompt is capturing
// keystrokes.
func (m UserListModel) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m UserListModel) View() string {
	contentH := m.height - 2
	if contentH < 0 {
		contentH = 0
	}

	content := truncateHeight(m.list.View(), contentH)

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(m.width).
		Height(m.height)
	style = applyBorderColor(style, m.focused)

	return style.Render(content)
}

// WithUsers replaces the roster items, preserving the cursor.
func (m UserListModel) WithUsers(users []domain.Identity, unread func(string) int, online func(string) bool) UserListModel {
	items := make([]list.Item, len(users))
	for i, u := range users {
		items[i] = userItem{
			user:   u,
			unread: unread(u.ID),
			online: online(u.ID),
		}
	}
	m.list.SetItems(items)
	return m
}

func (m UserListModel) SetSize(w, h int) UserListModel {
	m.width = w
	m.height = h
	innerW := w - 2
	innerH := h - 2
	if innerW < 1 {
		innerW = 1
	}
	if innerH < 1 {
		innerH = 1
	}
	m.list.SetSize(innerW, innerH)
	return m
}

func (m UserListModel) SetFocused(f bool) UserListModel {
	m.focused = f
	return m
}

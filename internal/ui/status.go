package ui

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/marcward/clack/internal/domain"
)

var (
	statusBarBg     = lipgloss.Color("#353533")
	statusPillBg    = lipgloss.Color("#FF5FAF")
	statusPillBgOff = lipgloss.Color("#6C5098")
)

type statusModel struct {
	state    domain.ConnectionState
	warning  string
	banner   bool
	toast    string
	userName string
	width    int
}

func newStatusModel() statusModel {
	return statusModel{state: domain.StateConnecting}
}

func (m statusModel) SetWidth(w int) statusModel {
	m.width = w
	return m
}

// View renders a full-width status bar:
// [CONNECTION pill] [toast/warning] ... [banner] [user name]
func (m statusModel) View() string {
	pillBg := statusPillBgOff
	if m.state == domain.StateConnected {
		pillBg = statusPillBg
	}
	pill := lipgloss.NewStyle().
		Background(pillBg).
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true).
		Padding(0, 1).
		Render(strings.ToUpper(m.state.String()))

	var middle string
	switch {
	case m.toast != "":
		middle = toastStyle.Render(m.toast)
	case m.warning != "":
		middle = lipgloss.NewStyle().
			Background(statusBarBg).
			Foreground(lipgloss.Color("11")).
			Padding(0, 1).
			Render(m.warning)
	}

	var right string
	if m.banner {
		right += bannerStyle.Render("new messages")
	}
	right += lipgloss.NewStyle().
		Background(lipgloss.Color("#7B5EA7")).
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true).
		Padding(0, 1).
		Render(m.userName)

	left := pill + middle

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	filler := lipgloss.NewStyle().
		Background(statusBarBg).
		Render(strings.Repeat(" ", gap))

	return lipgloss.NewStyle().
		Background(statusBarBg).
		Width(m.width).
		Render(left + filler + right)
}

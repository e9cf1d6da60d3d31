package ui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

var (
	daySeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	timeStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	ownNameStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	peerNameStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	typingStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	attachmentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	bannerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11")).Bold(true).Padding(0, 1)
	toastStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("13")).Padding(0, 1)
	onlineDotStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	dimColor = lipgloss.Color("240")

	focusedBorderColor = lipgloss.Color("170")
)

// applyBorderColor highlights the border of the focused pane.
func applyBorderColor(s lipgloss.Style, focused bool) lipgloss.Style {
	if focused {
		return s.BorderForeground(focusedBorderColor)
	}
	return s.BorderForeground(dimColor)
}

// truncateHeight limits s to at most maxLines lines.
func truncateHeight(s string, maxLines int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= maxLines {
		return s
	}
	return strings.Join(lines[:maxLines], "\n")
}

package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var placeholderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Foreground(lipgloss.Color("240")).
	Align(lipgloss.Center, lipgloss.Center)

// Placeholder draws the neutral frame shown while resolving or without art
func Placeholder(width, height int) string {
	return PlaceholderLabel(width, height, "♪")
}

// PlaceholderLabel is Placeholder with custom centred text
func PlaceholderLabel(width, height int, label string) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if width < 3 || height < 3 {
		return strings.TrimSuffix(strings.Repeat(strings.Repeat(" ", width)+"\n", height), "\n")
	}
	if lipgloss.Width(label) > width-2 {
		label = ""
	}
	return placeholderStyle.
		Width(width - 2).
		Height(height - 2).
		Render(label)
}

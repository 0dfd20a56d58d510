package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// --- UI Styles ---
var (
	brandColor = lipgloss.Color("#509EE3")

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(brandColor)
	sectionStyle   = lipgloss.NewStyle().Bold(true).Margin(1, 0)
	subtleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	linkStyle      = lipgloss.NewStyle().Foreground(brandColor).Underline(true)
	dividerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	focusStyle     = lipgloss.NewStyle().Bold(true)
	cursorStyle    = lipgloss.NewStyle().Background(lipgloss.Color("#2A2B3D")).Bold(true)
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(brandColor)

	promptBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(brandColor).
			Foreground(brandColor).
			Padding(0, 2).
			Margin(1, 0)
	emptyBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 4).
			Margin(1, 0).
			Align(lipgloss.Center)
	collectionButtonStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(0, 1).
				Width(collectionButtonWidth).
				Align(lipgloss.Center)
	collectionButtonFocusStyle = collectionButtonStyle.
					BorderForeground(brandColor).
					Bold(true)
)

// collectionButtonWidth is the inner width of one grid cell.
const collectionButtonWidth = 20

// renderFooter renders an optional status line and help lines.
func renderFooter(statusLine string, helpLines ...string) string {
	var b strings.Builder
	if statusLine != "" {
		b.WriteString(subtleStyle.Render(statusLine) + "\n")
	}
	for _, line := range helpLines {
		b.WriteString(helpStyle.Render(line) + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func divider(width int) string {
	return dividerStyle.Render(strings.Repeat("─", max(10, width-2)))
}

// swatch renders a small colored block for a collection color.
func swatch(hex string) string {
	if hex == "" {
		hex = "#509EE3"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("■")
}

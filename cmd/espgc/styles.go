package main

import "github.com/charmbracelet/lipgloss"

var (
	// Color palette
	primaryColor   = lipgloss.Color("#7D56F4")
	secondaryColor = lipgloss.Color("#00D7FF")
	successColor   = lipgloss.Color("#04B575")
	warningColor   = lipgloss.Color("#FFA500")
	errorColor     = lipgloss.Color("#FF4B4B")
	mutedColor     = lipgloss.Color("#666666")
	borderColor    = lipgloss.Color("#383838")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)

	offsetStyle = lipgloss.NewStyle().Foreground(mutedColor)
	labelStyle  = lipgloss.NewStyle().Foreground(secondaryColor)
	okStyle     = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(errorColor).Bold(true)

	// Cell styles, one per arena map glyph
	whiteCellStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	blackCellStyle  = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	extentCellStyle = lipgloss.NewStyle().Foreground(secondaryColor)
	freeCellStyle   = lipgloss.NewStyle().Foreground(warningColor)
	bumpCellStyle   = lipgloss.NewStyle().Foreground(mutedColor)
)

// paint renders s with st unless color is disabled.
func paint(st lipgloss.Style, s string) string {
	if noColor {
		return s
	}
	return st.Render(s)
}

package tui

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	primaryColor   = lipgloss.Color("#EA580C") // Orange
	secondaryColor = lipgloss.Color("#16A34A") // Green
	warningColor   = lipgloss.Color("#EAB308") // Yellow
	errorColor     = lipgloss.Color("#DC2626") // Red
	mutedColor     = lipgloss.Color("#737373") // Gray
	textColor      = lipgloss.Color("#FAFAF9") // Off-white
	accentColor    = lipgloss.Color("#0EA5E9") // Sky blue
)

// Styles
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor).
			Background(primaryColor).
			Padding(0, 1).
			MarginBottom(1)

	navStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginBottom(1)

	navActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	navInactiveStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 2)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	metricLabelStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Width(22)

	metricValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(textColor)

	bestStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(secondaryColor)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor).
				Padding(0, 1)

	tableRowStyle = lipgloss.NewStyle().
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	dangerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	confidenceStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	barFullStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	barEmptyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// RenderMetric renders a label/value pair on one line
func RenderMetric(label, value string) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		metricLabelStyle.Render(label),
		metricValueStyle.Render(value),
	)
}

// RenderBar renders a horizontal ratio bar
func RenderBar(ratio float64, width int) string {
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += barFullStyle.Render("█")
		} else {
			bar += barEmptyStyle.Render("░")
		}
	}
	return bar
}

// RenderKeyHelp renders a key binding help item
func RenderKeyHelp(key, desc string) string {
	return helpKeyStyle.Render(key) + " " + helpDescStyle.Render(desc)
}

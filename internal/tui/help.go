package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the static key-binding reference
type HelpModel struct{}

// NewHelpModel creates the help screen model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init does nothing
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	sections := []struct {
		title string
		keys  [][2]string
	}{
		{"Navigation", [][2]string{
			{"1", "Cockpit"},
			{"2", "Volume"},
			{"3", "Records"},
			{"4", "Projections"},
			{"5", "Analysis"},
			{"?", "This help"},
			{"esc", "Back"},
			{"q", "Quit"},
		}},
		{"Data", [][2]string{
			{"r", "Refresh current screen (forces a sync)"},
		}},
		{"Records screen", [][2]string{
			{"tab", "Switch distance class"},
			{"↑/↓", "Scroll attempts"},
		}},
		{"Volume screen", [][2]string{
			{"w/m/y", "Weekly / monthly / yearly buckets"},
		}},
	}

	var blocks []string
	for _, s := range sections {
		lines := []string{cardTitleStyle.Render(s.title)}
		for _, k := range s.keys {
			lines = append(lines, RenderKeyHelp("  "+k[0], k[1]))
		}
		blocks = append(blocks, lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

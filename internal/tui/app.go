package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"paceboard/internal/config"
	"paceboard/internal/service"
)

// Screen identifiers
type Screen int

const (
	ScreenCockpit Screen = iota
	ScreenVolume
	ScreenRecords
	ScreenProjections
	ScreenAnalysis
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	cockpit     CockpitModel
	volume      VolumeModel
	records     RecordsModel
	projections ProjectionsModel
	analysis    AnalysisModel
	help        HelpModel

	queryService *service.QueryService
	units        Units

	width  int
	height int
}

// NewApp wires all screens to the query service
func NewApp(qs *service.QueryService, display config.DisplayConfig) *App {
	units := NewUnits(display)
	return &App{
		screen:       ScreenCockpit,
		queryService: qs,
		units:        units,
		cockpit:      NewCockpitModel(qs, units),
		volume:       NewVolumeModel(qs, units),
		records:      NewRecordsModel(qs, units),
		projections:  NewProjectionsModel(qs, units),
		analysis:     NewAnalysisModel(qs, units),
		help:         NewHelpModel(),
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.cockpit.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "1":
			a.screen = ScreenCockpit
			return a, a.cockpit.Init()
		case "2":
			a.screen = ScreenVolume
			return a, a.volume.Init()
		case "3":
			a.screen = ScreenRecords
			return a, a.records.Init()
		case "4":
			a.screen = ScreenProjections
			return a, a.projections.Init()
		case "5":
			a.screen = ScreenAnalysis
			return a, a.analysis.Init()
		case "?":
			if a.screen != ScreenHelp {
				a.prevScreen = a.screen
				a.screen = ScreenHelp
			}
			return a, nil
		case "esc":
			if a.screen == ScreenHelp {
				a.screen = a.prevScreen
				return a, nil
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
	}

	var cmd tea.Cmd
	switch a.screen {
	case ScreenCockpit:
		var m tea.Model
		m, cmd = a.cockpit.Update(msg)
		a.cockpit = m.(CockpitModel)
	case ScreenVolume:
		var m tea.Model
		m, cmd = a.volume.Update(msg)
		a.volume = m.(VolumeModel)
	case ScreenRecords:
		var m tea.Model
		m, cmd = a.records.Update(msg)
		a.records = m.(RecordsModel)
	case ScreenProjections:
		var m tea.Model
		m, cmd = a.projections.Update(msg)
		a.projections = m.(ProjectionsModel)
	case ScreenAnalysis:
		var m tea.Model
		m, cmd = a.analysis.Update(msg)
		a.analysis = m.(AnalysisModel)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	header := headerStyle.Render("Paceboard")
	nav := a.renderNav()

	var content string
	switch a.screen {
	case ScreenCockpit:
		content = a.cockpit.View()
	case ScreenVolume:
		content = a.volume.View()
	case ScreenRecords:
		content = a.records.View()
	case ScreenProjections:
		content = a.projections.View()
	case ScreenAnalysis:
		content = a.analysis.View()
	case ScreenHelp:
		content = a.help.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, nav, content)
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Cockpit", ScreenCockpit},
		{"2", "Volume", ScreenVolume},
		{"3", "Records", ScreenRecords},
		{"4", "Projections", ScreenProjections},
		{"5", "Analysis", ScreenAnalysis},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}
		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}
	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

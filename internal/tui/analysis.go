package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"paceboard/internal/service"
)

// AnalysisModel shows the physiological series
type AnalysisModel struct {
	queryService *service.QueryService
	units        Units
	view         *service.AnalysisView
	loading      bool
	err          error
}

// NewAnalysisModel creates the analysis screen model
func NewAnalysisModel(qs *service.QueryService, units Units) AnalysisModel {
	return AnalysisModel{
		queryService: qs,
		units:        units,
		loading:      true,
	}
}

// Init starts loading
func (m AnalysisModel) Init() tea.Cmd {
	return m.load(false)
}

func (m AnalysisModel) load(force bool) tea.Cmd {
	return func() tea.Msg {
		view, err := m.queryService.Analysis(context.Background(), force)
		return analysisMsg{view: view, err: err}
	}
}

type analysisMsg struct {
	view *service.AnalysisView
	err  error
}

// Update handles messages
func (m AnalysisModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case analysisMsg:
		m.loading = false
		m.err = msg.err
		m.view = msg.view
	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.load(true)
		}
	}
	return m, nil
}

// View renders the analysis screen
func (m AnalysisModel) View() string {
	if m.loading {
		return "\n  Loading analysis..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if m.view == nil {
		return "\n  No data."
	}

	var sections []string
	if chart := m.renderPaceChart(); chart != "" {
		sections = append(sections, chart)
	}
	if chart := m.renderEfficiencyChart(); chart != "" {
		sections = append(sections, chart)
	}
	if card := m.renderLoadVsPerformance(); card != "" {
		sections = append(sections, card)
	}
	if len(sections) == 0 {
		return "\n  Not enough history for analysis yet."
	}

	sections = append(sections, statusStyle.Render("r: refresh"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m AnalysisModel) renderPaceChart() string {
	points := m.view.PaceStability
	if len(points) < 3 {
		return ""
	}

	series := make([]float64, len(points))
	for i, p := range points {
		series[i] = p.PaceSecondsPerKm / 60
	}

	title := cardTitleStyle.Render("Pace Stability (min/km, runs over 3 km)")
	graph := asciigraph.Plot(series,
		asciigraph.Height(7),
		asciigraph.Width(70),
		asciigraph.Precision(1),
	)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m AnalysisModel) renderEfficiencyChart() string {
	points := m.view.CardiacEfficiency
	if len(points) < 3 {
		return ""
	}

	series := make([]float64, len(points))
	for i, p := range points {
		series[i] = p.Efficiency
	}

	title := cardTitleStyle.Render("Cardiac Efficiency (km/h per bpm, higher is fitter)")
	graph := asciigraph.Plot(series,
		asciigraph.Height(7),
		asciigraph.Width(70),
		asciigraph.Precision(3),
	)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m AnalysisModel) renderLoadVsPerformance() string {
	points := m.view.LoadVsPerformance
	if len(points) == 0 {
		return ""
	}
	if len(points) > 10 {
		points = points[len(points)-10:]
	}

	title := cardTitleStyle.Render("Training Load vs 10K Performance")
	header := tableHeaderStyle.Render(fmt.Sprintf("%-12s  %8s  %12s",
		"Date", "10K", "30d volume"))
	rows := []string{header}
	for _, p := range points {
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-12s  %8s  %12s",
			p.Date,
			FormatRaceTime(p.Time10KSeconds),
			m.units.FormatKm(p.Volume30DayKm),
		)))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title,
		lipgloss.JoinVertical(lipgloss.Left, rows...)))
}

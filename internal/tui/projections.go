package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"paceboard/internal/service"
)

// ProjectionsModel shows Riegel race-time projections
type ProjectionsModel struct {
	queryService *service.QueryService
	units        Units
	view         *service.PerformanceView
	loading      bool
	err          error
}

// NewProjectionsModel creates the projections screen model
func NewProjectionsModel(qs *service.QueryService, units Units) ProjectionsModel {
	return ProjectionsModel{
		queryService: qs,
		units:        units,
		loading:      true,
	}
}

// Init starts loading
func (m ProjectionsModel) Init() tea.Cmd {
	return m.load(false)
}

func (m ProjectionsModel) load(force bool) tea.Cmd {
	return func() tea.Msg {
		view, err := m.queryService.Performance(context.Background(), force)
		return projectionsMsg{view: view, err: err}
	}
}

type projectionsMsg struct {
	view *service.PerformanceView
	err  error
}

// Update handles messages
func (m ProjectionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case projectionsMsg:
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

// View renders the projections screen
func (m ProjectionsModel) View() string {
	if m.loading {
		return "\n  Loading projections..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if m.view == nil {
		return "\n  No data."
	}

	p := m.view.Projections

	sections := []string{m.renderCurrent()}
	if chart := m.renderTimeline(); chart != "" {
		sections = append(sections, chart)
	}

	conf := confidenceStyle.Render(fmt.Sprintf("Confidence: %s", p.Confidence)) +
		statusStyle.Render(fmt.Sprintf(" (%.1f km over the last 90 days)", p.Volume90DayKm))
	sections = append(sections, conf)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ProjectionsModel) renderCurrent() string {
	title := cardTitleStyle.Render("Current Projections")

	current := m.view.Projections.Current
	if len(current) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title,
			helpDescStyle.Render("Run a 10k or half-marathon to unlock projections")))
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-22s  %9s  %12s  %10s",
		"Projection", "Time", "From", "Set on"))
	rows := []string{header}
	for _, p := range current {
		label := fmt.Sprintf("%s from %s", className(p.Target), className(p.Source))
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-22s  %9s  %12s  %10s",
			label,
			FormatRaceTime(p.ProjectedSeconds),
			FormatRaceTime(p.SourceTimeSeconds),
			p.SourceDate.Format("2006-01-02"),
		)))
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title,
		lipgloss.JoinVertical(lipgloss.Left, rows...)))
}

func (m ProjectionsModel) renderTimeline() string {
	var series []float64
	for _, pt := range m.view.Projections.Timeline {
		if pt.MarathonFrom10K != nil {
			series = append(series, float64(*pt.MarathonFrom10K)/60)
		}
	}
	if len(series) < 3 {
		return ""
	}

	title := cardTitleStyle.Render("Marathon Projection over Time (minutes)")
	graph := asciigraph.Plot(series,
		asciigraph.Height(8),
		asciigraph.Width(70),
		asciigraph.Precision(0),
	)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

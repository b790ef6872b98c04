package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"paceboard/internal/service"
)

type volumeTab int

const (
	tabWeekly volumeTab = iota
	tabMonthly
	tabYearly
)

// VolumeModel shows training-load aggregates
type VolumeModel struct {
	queryService *service.QueryService
	units        Units
	view         *service.VolumeView
	tab          volumeTab
	loading      bool
	err          error
}

// NewVolumeModel creates the volume screen model
func NewVolumeModel(qs *service.QueryService, units Units) VolumeModel {
	return VolumeModel{
		queryService: qs,
		units:        units,
		loading:      true,
	}
}

// Init starts loading
func (m VolumeModel) Init() tea.Cmd {
	return m.load(false)
}

func (m VolumeModel) load(force bool) tea.Cmd {
	return func() tea.Msg {
		view, err := m.queryService.Volume(context.Background(), force, nil)
		return volumeMsg{view: view, err: err}
	}
}

type volumeMsg struct {
	view *service.VolumeView
	err  error
}

// Update handles messages
func (m VolumeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case volumeMsg:
		m.loading = false
		m.err = msg.err
		m.view = msg.view
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.load(true)
		case "w":
			m.tab = tabWeekly
		case "m":
			m.tab = tabMonthly
		case "y":
			m.tab = tabYearly
		}
	}
	return m, nil
}

// View renders the volume screen
func (m VolumeModel) View() string {
	if m.loading {
		return "\n  Loading volume..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if m.view == nil {
		return "\n  No data."
	}

	sections := []string{m.renderRollingChart()}

	switch m.tab {
	case tabWeekly:
		sections = append(sections, m.renderWeekly())
	case tabMonthly:
		sections = append(sections, m.renderMonthly())
	case tabYearly:
		sections = append(sections, m.renderYearly())
	}

	sections = append(sections,
		statusStyle.Render("w: weekly · m: monthly · y: yearly · r: refresh"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m VolumeModel) renderRollingChart() string {
	title := cardTitleStyle.Render("Rolling 90-Day Volume (" + m.units.DistanceLabel() + ")")

	points := m.view.Rolling90
	if len(points) < 3 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title,
			helpDescStyle.Render("Not enough history yet")))
	}

	series := make([]float64, len(points))
	for i, p := range points {
		series[i] = p.Km
	}

	graph := asciigraph.Plot(series,
		asciigraph.Height(8),
		asciigraph.Width(70),
		asciigraph.Precision(0),
	)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m VolumeModel) renderWeekly() string {
	title := cardTitleStyle.Render("Weekly")

	weeks := m.view.Weekly
	if len(weeks) > 12 {
		weeks = weeks[len(weeks)-12:]
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-9s  %8s  %5s  %8s",
		"Week", "Dist", "Runs", "4w avg"))
	rows := []string{header}
	for _, w := range weeks {
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%d-W%02d  %8s  %5d  %8s",
			w.Year, w.Week,
			m.units.FormatKm(w.Km),
			w.Runs,
			m.units.FormatKm(w.MovingAvgKm),
		)))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title,
		lipgloss.JoinVertical(lipgloss.Left, rows...)))
}

func (m VolumeModel) renderMonthly() string {
	title := cardTitleStyle.Render("Monthly")

	months := m.view.Monthly
	if len(months) > 12 {
		months = months[len(months)-12:]
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-9s  %8s  %5s", "Month", "Dist", "Runs"))
	rows := []string{header}
	for _, b := range months {
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%d-%02d   %8s  %5d",
			b.Year, int(b.Month), m.units.FormatKm(b.Km), b.Runs)))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title,
		lipgloss.JoinVertical(lipgloss.Left, rows...)))
}

func (m VolumeModel) renderYearly() string {
	title := cardTitleStyle.Render("Yearly")

	header := tableHeaderStyle.Render(fmt.Sprintf("%-6s  %9s  %5s  %8s",
		"Year", "Dist", "Runs", "Climb"))
	rows := []string{header}
	for _, b := range m.view.Yearly {
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-6d  %9s  %5d  %7.0fm",
			b.Year, m.units.FormatKm(b.Km), b.Runs, b.ElevationGain)))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title,
		lipgloss.JoinVertical(lipgloss.Left, rows...)))
}

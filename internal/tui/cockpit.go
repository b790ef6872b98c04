package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"paceboard/internal/analysis"
	"paceboard/internal/service"
)

// CockpitModel is the summary screen
type CockpitModel struct {
	queryService *service.QueryService
	units        Units
	spinner      spinner.Model
	view         *service.CockpitView
	loading      bool
	err          error
}

// NewCockpitModel creates the cockpit screen model
func NewCockpitModel(qs *service.QueryService, units Units) CockpitModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(primaryColor)
	return CockpitModel{
		queryService: qs,
		units:        units,
		spinner:      sp,
		loading:      true,
	}
}

// Init starts loading
func (m CockpitModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load(false))
}

func (m CockpitModel) load(force bool) tea.Cmd {
	return func() tea.Msg {
		view, err := m.queryService.Cockpit(context.Background(), force)
		return cockpitMsg{view: view, err: err}
	}
}

type cockpitMsg struct {
	view *service.CockpitView
	err  error
}

// Update handles messages
func (m CockpitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case cockpitMsg:
		m.loading = false
		m.err = msg.err
		m.view = msg.view
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.load(true))
		}
	}
	return m, nil
}

// View renders the cockpit
func (m CockpitModel) View() string {
	if m.loading {
		return fmt.Sprintf("\n  %s Syncing activities...", m.spinner.View())
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if m.view == nil {
		return "\n  No data."
	}

	c := m.view.Cockpit

	var sections []string

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderLoadCard(c), "  ", m.renderProjectionsCard(c.Projections))
	sections = append(sections, top)

	if len(c.Alerts) > 0 {
		sections = append(sections, m.renderAlerts(c.Alerts))
	}
	if len(c.RecentRuns) > 0 {
		sections = append(sections, m.renderRecentRuns(c.RecentRuns))
	}

	sections = append(sections, m.renderSyncLine())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m CockpitModel) renderLoadCard(c analysis.Cockpit) string {
	title := cardTitleStyle.Render("Training Load")

	lines := []string{
		RenderMetric("This week", m.units.FormatKm(c.WeekVolumeKm)),
		RenderMetric("4-week average", m.units.FormatKm(c.Avg4WeekKm)),
		RenderMetric("Last 90 days", m.units.FormatKm(c.Volume90DayKm)),
		RenderMetric("PRs in 90 days", fmt.Sprintf("%d", c.PRLast90Days)),
		RenderMetric("Total activities", fmt.Sprintf("%d", c.TotalActivities)),
	}
	if c.Avg4WeekKm > 0 {
		lines = append(lines, "", RenderBar(c.WeekVolumeKm/c.Avg4WeekKm, 24))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(42).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m CockpitModel) renderProjectionsCard(projections []analysis.Projection) string {
	title := cardTitleStyle.Render("Race Projections")

	if len(projections) == 0 {
		hint := helpDescStyle.Render("Run a 10k or half to unlock projections")
		return cardStyle.Width(42).Render(lipgloss.JoinVertical(lipgloss.Left, title, hint))
	}

	var lines []string
	for _, p := range projections {
		label := fmt.Sprintf("%s from %s", className(p.Target), className(p.Source))
		lines = append(lines, RenderMetric(label, FormatRaceTime(p.ProjectedSeconds)))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(42).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m CockpitModel) renderAlerts(alerts []analysis.Alert) string {
	var lines []string
	for _, a := range alerts {
		style := warningStyle
		if a.Level == analysis.AlertDanger {
			style = dangerStyle
		}
		lines = append(lines, style.Render("! "+a.Message))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m CockpitModel) renderRecentRuns(runs []analysis.RecentRun) string {
	title := cardTitleStyle.Render("Recent Runs")

	header := tableHeaderStyle.Render(fmt.Sprintf("%-10s  %-28s  %9s",
		"Date", "Name", "Distance"))

	rows := []string{header}
	for i, r := range runs {
		if i >= 5 {
			break
		}
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-10s  %-28s  %9s",
			r.Date.Format("Jan 02"),
			truncateName(r.Name, 28),
			m.units.FormatKm(r.DistanceKm),
		)))
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))
}

func (m CockpitModel) renderSyncLine() string {
	s := m.view.Sync
	line := "Synced " + FormatSince(s.SyncedAt, time.Now())
	if s.SyncErr != nil {
		line = warningStyle.Render("Sync failed, showing cached data") + statusStyle.Render(" · "+line)
		return line
	}
	if s.FromCache {
		line += " (cache)"
	}
	return statusStyle.Render(line + " · press 'r' to refresh")
}

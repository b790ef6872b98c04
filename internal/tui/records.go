package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"paceboard/internal/analysis"
	"paceboard/internal/service"
)

// RecordsModel shows per-class attempts and personal bests
type RecordsModel struct {
	queryService *service.QueryService
	units        Units
	view         *service.PerformanceView
	class        int // index into analysis.Classes
	table        table.Model
	loading      bool
	err          error
}

// NewRecordsModel creates the records screen model
func NewRecordsModel(qs *service.QueryService, units Units) RecordsModel {
	return RecordsModel{
		queryService: qs,
		units:        units,
		class:        1, // default to 10k, the most contested distance
		loading:      true,
	}
}

// Init starts loading
func (m RecordsModel) Init() tea.Cmd {
	return m.load(false)
}

func (m RecordsModel) load(force bool) tea.Cmd {
	return func() tea.Msg {
		view, err := m.queryService.Performance(context.Background(), force)
		return recordsMsg{view: view, err: err}
	}
}

type recordsMsg struct {
	view *service.PerformanceView
	err  error
}

// Update handles messages
func (m RecordsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case recordsMsg:
		m.loading = false
		m.err = msg.err
		m.view = msg.view
		m.rebuildTable()
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.load(true)
		case "tab", "right", "l":
			m.class = (m.class + 1) % len(analysis.Classes)
			m.rebuildTable()
		case "shift+tab", "left", "h":
			m.class = (m.class + len(analysis.Classes) - 1) % len(analysis.Classes)
			m.rebuildTable()
		default:
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *RecordsModel) rebuildTable() {
	if m.view == nil {
		return
	}
	class := analysis.Classes[m.class]
	attempts := m.view.Records[class]

	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Time", Width: 10},
		{Title: "Pace", Width: 10},
		{Title: "Off best", Width: 10},
	}

	rows := make([]table.Row, 0, len(attempts))
	for _, rec := range attempts {
		off := fmt.Sprintf("+%.1f%%", rec.PercentOffBest)
		if rec.IsBest {
			off = "PB"
		}
		rows = append(rows, table.Row{
			rec.Date.Format("2006-01-02"),
			FormatRaceTime(rec.TimeSeconds),
			m.units.FormatPaceSeconds(rec.PaceSecondsPerKm(class)),
			off,
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(primaryColor)
	styles.Selected = styles.Selected.Background(primaryColor).Foreground(textColor)
	t.SetStyles(styles)
	m.table = t
}

// View renders the records screen
func (m RecordsModel) View() string {
	if m.loading {
		return "\n  Loading records..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if m.view == nil {
		return "\n  No data."
	}

	var tabs string
	for i, class := range analysis.Classes {
		if i > 0 {
			tabs += "  "
		}
		label := className(class)
		if i == m.class {
			tabs += navActiveStyle.Render("[" + label + "]")
		} else {
			tabs += navInactiveStyle.Render(" " + label + " ")
		}
	}

	class := analysis.Classes[m.class]
	attempts := m.view.Records[class]

	var body string
	if len(attempts) == 0 {
		body = helpDescStyle.Render(fmt.Sprintf("No %s attempts yet.", className(class)))
	} else {
		best := attempts[0]
		bestLine := bestStyle.Render(fmt.Sprintf("Best: %s on %s",
			FormatRaceTime(best.TimeSeconds), best.Date.Format("2006-01-02")))
		body = lipgloss.JoinVertical(lipgloss.Left, bestLine, "", m.table.View())
	}

	yearly := m.renderBestByYear(class)
	help := statusStyle.Render("tab: switch distance · ↑/↓: scroll · r: refresh")

	return lipgloss.JoinVertical(lipgloss.Left, navStyle.Render(tabs), body, yearly, help)
}

func (m RecordsModel) renderBestByYear(class analysis.DistanceClass) string {
	bests := m.view.BestByYear[class]
	if len(bests) == 0 {
		return ""
	}

	title := cardTitleStyle.Render("Best by Year")
	var lines []string
	for _, b := range bests {
		lines = append(lines, RenderMetric(fmt.Sprintf("%d", b.Year), FormatRaceTime(b.TimeSeconds)))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title,
		lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

// className is the display label of a distance class
func className(class analysis.DistanceClass) string {
	switch class {
	case analysis.Class5K:
		return "5K"
	case analysis.Class10K:
		return "10K"
	case analysis.ClassHalf:
		return "Half"
	case analysis.ClassMarathon:
		return "Marathon"
	}
	return string(class)
}

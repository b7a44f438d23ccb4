package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pmaojo/hexalens/internal/hexalens/analysis"
	"github.com/pmaojo/hexalens/internal/hexalens/audit"
	"github.com/pmaojo/hexalens/internal/hexalens/domain"
	"github.com/pmaojo/hexalens/internal/hexalens/graph"
)

var (
	focusedStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))

	normalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	violationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff5555")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().Bold(true)
)

type item struct {
	title, desc string
	id          domain.TypeID
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title }

// Model is the terminal classification browser: one column per layer,
// a detail viewport for the selected type underneath.
type Model struct {
	graph  *graph.Graph
	query  *audit.Query
	report *analysis.Report

	lists    []list.Model
	focused  int
	viewport viewport.Model

	ready  bool
	width  int
	height int
}

var layerColumns = []string{
	audit.LayerPresentation,
	audit.LayerApplication,
	audit.LayerDomain,
	audit.LayerInfrastructure,
}

func NewModel(g *graph.Graph, q *audit.Query, report *analysis.Report) Model {
	grouped := make(map[string][]list.Item)
	// g.Types() is ordered by qualified name, so the columns are too
	for _, t := range g.Types() {
		layer := q.LayerOf(t.ID)
		desc := string(t.Kind)
		if res, ok := q.Results().ByID[t.ID]; ok && res.Status == domain.StatusClassified {
			desc = res.Kind
			if res.Direction != "" {
				desc = fmt.Sprintf("%s %s", res.Direction, res.Kind)
			}
		}
		column := layer
		if layer == audit.LayerUnknown {
			column = audit.LayerDomain
		}
		grouped[column] = append(grouped[column], item{
			title: t.Simple,
			desc:  desc,
			id:    t.ID,
		})
	}

	lists := make([]list.Model, len(layerColumns))
	for i, layer := range layerColumns {
		lists[i] = list.New(grouped[layer], list.NewDefaultDelegate(), 0, 0)
		lists[i].Title = strings.ToUpper(layer[:1]) + layer[1:]
		lists[i].SetShowHelp(false)
	}

	return Model{
		graph:  g,
		query:  q,
		report: report,
		lists:  lists,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "left", "h":
			m.focused--
			if m.focused < 0 {
				m.focused = len(m.lists) - 1
			}
		case "right", "l":
			m.focused++
			if m.focused >= len(m.lists) {
				m.focused = 0
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height/3)
			m.viewport.YPosition = msg.Height - msg.Height/3
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height / 3
		}

		colWidth := msg.Width / len(m.lists)
		listHeight := msg.Height - m.viewport.Height - 5

		for i := range m.lists {
			m.lists[i].SetSize(colWidth-2, listHeight)
		}
	}

	m.lists[m.focused], cmd = m.lists[m.focused].Update(msg)
	cmds = append(cmds, cmd)

	if selected := m.lists[m.focused].SelectedItem(); selected != nil {
		m.viewport.SetContent(m.renderDetails(selected.(item).id))
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	cols := make([]string, len(m.lists))
	for i, l := range m.lists {
		style := normalStyle
		if i == m.focused {
			style = focusedStyle
		}
		cols[i] = style.Render(l.View())
	}

	board := lipgloss.JoinHorizontal(lipgloss.Left, cols...)

	header := headerStyle.Render(fmt.Sprintf("hexalens  health %d (%s)  violations %d  cycles %d",
		m.report.Health.Overall, m.report.Health.Grade,
		len(m.report.Violations), len(m.report.Cycles)))

	details := detailStyle.Width(m.width - 4).Render(m.viewport.View())

	return lipgloss.JoinVertical(lipgloss.Left, header, board, details)
}

func (m Model) renderDetails(id domain.TypeID) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Type: %s\n", id))
	sb.WriteString(fmt.Sprintf("Layer: %s\n", m.query.LayerOf(id)))

	if res, ok := m.query.Results().ByID[id]; ok {
		sb.WriteString(fmt.Sprintf("Status: %s\n", res.Status))
		if res.Status == domain.StatusClassified {
			sb.WriteString(fmt.Sprintf("Kind: %s (%s, by %s)\n", res.Kind, res.Confidence, res.Criterion))
			sb.WriteString(fmt.Sprintf("Why: %s\n", res.Justification))
		}
		for _, c := range res.Conflicts {
			sb.WriteString(fmt.Sprintf("Contender: %s -> %s\n", c.Criterion, c.Kind))
		}
	}

	sb.WriteString("\nViolations:\n")
	found := false
	for _, v := range m.report.Violations {
		for _, t := range v.Types {
			if t == id {
				sb.WriteString(violationStyle.Render(fmt.Sprintf("- [%s] %s", v.Severity, v.Message)) + "\n")
				found = true
				break
			}
		}
	}
	if !found {
		sb.WriteString("No violations found.\n")
	}

	sb.WriteString(fmt.Sprintf("\nDepends on (%d transitively):\n", m.query.DependsOnScore(id)))
	for _, dep := range m.graph.DependenciesOf(id) {
		sb.WriteString(fmt.Sprintf("-> %s\n", dep))
	}

	sb.WriteString("\nDepended on by:\n")
	for _, dep := range m.graph.DependentsOf(id) {
		sb.WriteString(fmt.Sprintf("<- %s\n", dep))
	}

	return sb.String()
}

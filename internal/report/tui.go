package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mabhi256/jmuzzle/internal/muzzle"
	"github.com/mabhi256/jmuzzle/utils"
)

type TabType int

const (
	SummaryTab TabType = iota
	MismatchesTab
	tabCount
)

type KeyMap struct {
	Tab1   key.Binding
	Tab2   key.Binding
	Left   key.Binding
	Right  key.Binding
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Help   key.Binding
	Quit   key.Binding
	Switch key.Binding
}

func k(keys []string, help, desc string) key.Binding {
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(help, desc),
	)
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab1:   k([]string{"1"}, "1", "summary"),
		Tab2:   k([]string{"2"}, "2", "mismatches"),
		Switch: k([]string{"tab"}, "tab", "next tab"),
		Left:   k([]string{"left", "h"}, "←/h", "prev kind"),
		Right:  k([]string{"right", "l"}, "→/l", "next kind"),
		Up:     k([]string{"up", "k"}, "↑/k", "up"),
		Down:   k([]string{"down", "j"}, "↓/j", "down"),
		Enter:  k([]string{"enter", " "}, "enter", "expand"),
		Help:   k([]string{"?"}, "?", "help"),
		Quit:   k([]string{"q", "ctrl+c"}, "q", "quit"),
	}
}

func (km KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{km.Switch, km.Up, km.Down, km.Enter, km.Help, km.Quit}
}

func (km KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{km.Tab1, km.Tab2, km.Switch},
		{km.Left, km.Right, km.Up, km.Down},
		{km.Enter, km.Help, km.Quit},
	}
}

// Model is the bubbletea model of the interactive report
type Model struct {
	report *Report

	currentTab TabType
	width      int
	height     int

	// mismatches tab
	kinds    []muzzle.MismatchKind // kinds present, in report order
	kindIdx  int
	selected int
	expanded map[int]bool
	viewport viewport.Model

	keys KeyMap
	help help.Model
}

func NewModel(r *Report) *Model {
	var kinds []muzzle.MismatchKind
	counts := r.Counts()
	for _, kind := range muzzle.AllMismatchKinds {
		if counts[kind] > 0 {
			kinds = append(kinds, kind)
		}
	}

	return &Model{
		report:   r,
		kinds:    kinds,
		expanded: make(map[int]bool),
		viewport: viewport.New(0, 0),
		keys:     DefaultKeyMap(),
		help:     help.New(),
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, m.bodyHeight())
		m.refreshMismatches()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.viewport.Height = max(1, m.bodyHeight())
		case key.Matches(msg, m.keys.Tab1):
			m.currentTab = SummaryTab
		case key.Matches(msg, m.keys.Tab2):
			m.currentTab = MismatchesTab
		case key.Matches(msg, m.keys.Switch):
			m.currentTab = utils.CycleEnum(m.currentTab, 1, int(tabCount))
		default:
			if m.currentTab == MismatchesTab {
				return m.handleMismatchKeys(msg)
			}
		}
	}

	return m, nil
}

func (m *Model) handleMismatchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.visibleMismatches()

	switch {
	case key.Matches(msg, m.keys.Left):
		if len(m.kinds) > 1 {
			m.kindIdx = utils.CycleEnum(m.kindIdx, -1, len(m.kinds))
			m.selected = 0
			m.expanded = make(map[int]bool)
		}
	case key.Matches(msg, m.keys.Right):
		if len(m.kinds) > 1 {
			m.kindIdx = utils.CycleEnum(m.kindIdx, 1, len(m.kinds))
			m.selected = 0
			m.expanded = make(map[int]bool)
		}
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(visible)-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Enter):
		m.expanded[m.selected] = !m.expanded[m.selected]
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	m.refreshMismatches()
	return m, nil
}

// bodyHeight is what remains after the header and the help line
func (m *Model) bodyHeight() int {
	return m.height - 2 - lipgloss.Height(m.help.View(m.keys))
}

func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.currentTab {
	case SummaryTab:
		content = renderSummaryTab(m.report, m.width, m.bodyHeight())
	case MismatchesTab:
		content = m.viewport.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		content,
		m.help.View(m.keys),
	)
}

func (m *Model) renderHeader() string {
	names := []string{"Summary", "Mismatches"}
	tabs := make([]string, 0, len(names))

	for i, name := range names {
		style := utils.TabInactiveStyle
		indicator := " "
		if TabType(i) == m.currentTab {
			style = utils.TabActiveStyle
			indicator = "●"
		}
		tabs = append(tabs, style.Render(fmt.Sprintf("%s %s [%d]", indicator, name, i+1)))
	}

	status := utils.GoodStyle.Render("MATCH")
	if !m.report.Matched() {
		status = utils.CriticalStyle.Render("MISMATCH")
	}

	line := strings.Join(tabs, "  ") + "   " + utils.TitleStyle.Render(m.report.Module) + " " + status
	return lipgloss.JoinVertical(lipgloss.Left, line, strings.Repeat("─", m.width))
}

func StartTUI(r *Report) error {
	program := tea.NewProgram(
		NewModel(r),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run report UI: %w", err)
	}
	return nil
}

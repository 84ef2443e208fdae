package report

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/mabhi256/jmuzzle/internal/muzzle"
	"github.com/mabhi256/jmuzzle/utils"
)

var chartLabels = map[muzzle.MismatchKind]string{
	muzzle.MissingClass:    "class",
	muzzle.MissingField:    "field",
	muzzle.MissingMethod:   "method",
	muzzle.MissingFlag:     "flag",
	muzzle.ResolutionError: "error",
}

func severityColor(kind muzzle.MismatchKind) lipgloss.Color {
	switch Severity(kind) {
	case "critical":
		return utils.CriticalColor
	case "warning":
		return utils.WarningColor
	default:
		return utils.InfoColor
	}
}

// renderKindChart draws one bar per mismatch kind
func renderKindChart(r *Report, width, height int) string {
	counts := r.Counts()

	data := make([]barchart.BarData, 0, len(muzzle.AllMismatchKinds))
	for _, kind := range muzzle.AllMismatchKinds {
		data = append(data, barchart.BarData{
			Label: chartLabels[kind],
			Values: []barchart.BarValue{{
				Name:  kind.Label(),
				Value: float64(counts[kind]),
				Style: lipgloss.NewStyle().Foreground(severityColor(kind)),
			}},
		})
	}

	chart := barchart.New(width, height)
	chart.PushAll(data)
	chart.Draw()
	return chart.View()
}

func renderSummaryTab(r *Report, width, height int) string {
	facts := []string{
		utils.FormatKeyValue("Space", utils.TruncateString(r.Space, max(10, width-16)), 14),
		utils.FormatKeyValue("References", fmt.Sprintf("%d checked, %d helpers skipped", r.Checked, r.References-r.Checked), 14),
		utils.FormatKeyValue("Mismatches", fmt.Sprintf("%d across %d classes", len(r.Mismatches), r.FailingClasses()), 14),
		utils.FormatKeyValue("Elapsed", utils.FormatDuration(r.Elapsed), 14),
	}
	if len(r.Locators) > 0 {
		facts = append(facts, utils.FormatKeyValue("Class path", utils.TruncateString(strings.Join(r.Locators, ", "), max(10, width-16)), 14))
	}

	sections := []string{lipgloss.JoinVertical(lipgloss.Left, facts...), ""}

	chartHeight := height - len(facts) - 4
	if r.Matched() {
		sections = append(sections, utils.GoodStyle.Render("✅ All references satisfied"))
	} else if chartHeight >= 4 {
		sections = append(sections,
			utils.TitleStyle.Render("Mismatches by kind"),
			renderKindChart(r, min(width-2, 60), min(chartHeight, 12)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) visibleMismatches() []muzzle.Mismatch {
	if len(m.kinds) == 0 {
		return nil
	}
	return m.report.ByKind(m.kinds[m.kindIdx])
}

// refreshMismatches re-renders the mismatch list into the viewport and
// scrolls so the selected entry stays visible
func (m *Model) refreshMismatches() {
	if len(m.kinds) == 0 {
		m.viewport.SetContent(utils.GoodStyle.Render("✅ No mismatches"))
		return
	}

	counts := m.report.Counts()
	filters := make([]string, 0, len(m.kinds))
	for i, kind := range m.kinds {
		style := utils.TabInactiveStyle
		if i == m.kindIdx {
			style = utils.TabActiveStyle
		}
		filters = append(filters, style.Render(fmt.Sprintf("%s %s: %d", utils.GetSeverityIcon(Severity(kind)), kind.Label(), counts[kind])))
	}

	lines := []string{strings.Join(filters, "  "), ""}
	selectedLine := 0

	for i, mm := range m.visibleMismatches() {
		marker := "  "
		style := utils.TextStyle
		if i == m.selected {
			marker = "▶ "
			style = utils.SelectedStyle
			selectedLine = len(lines)
		}
		lines = append(lines, style.Render(marker+utils.TruncateString(mm.Symbol, max(10, m.width-4))))

		if !m.expanded[i] {
			continue
		}
		if detail := mismatchDetail(mm); detail != "" {
			for _, l := range utils.WrapText(detail, m.width-6) {
				lines = append(lines, "    "+utils.TextStyle.Render(l))
			}
		}
		if len(mm.Sources) > 0 {
			lines = append(lines, "    "+utils.MutedStyle.Render("from "+formatSources(mm)))
		}
	}

	m.viewport.SetContent(strings.Join(lines, "\n"))

	if selectedLine < m.viewport.YOffset {
		m.viewport.SetYOffset(selectedLine)
	} else if bottom := m.viewport.YOffset + m.viewport.Height - 1; selectedLine > bottom {
		m.viewport.SetYOffset(selectedLine - m.viewport.Height + 1)
	}
}

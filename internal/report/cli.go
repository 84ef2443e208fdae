package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mabhi256/jmuzzle/internal/muzzle"
	"github.com/mabhi256/jmuzzle/utils"
)

const cliWidth = 80

// RenderCLI renders r for a terminal: a summary box followed by the
// mismatches grouped by kind
func RenderCLI(r *Report) string {
	sections := []string{renderSummary(r)}

	if r.Matched() {
		sections = append(sections, utils.GoodStyle.Render("✅ All references satisfied"))
		return strings.Join(sections, "\n\n") + "\n"
	}

	counts := r.Counts()
	for _, kind := range muzzle.AllMismatchKinds {
		if counts[kind] == 0 {
			continue
		}
		sections = append(sections, renderKindSection(kind, r.ByKind(kind)))
	}

	return strings.Join(sections, "\n\n") + "\n"
}

func WriteCLI(w io.Writer, r *Report) error {
	if _, err := io.WriteString(w, RenderCLI(r)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func renderSummary(r *Report) string {
	status := utils.GoodStyle.Render("MATCH")
	if !r.Matched() {
		status = utils.CriticalStyle.Render("MISMATCH")
	}

	satisfied := 1.0
	if r.Checked > 0 {
		satisfied = float64(r.Checked-r.FailingClasses()) / float64(r.Checked)
	}
	barColor := utils.GoodColor
	if !r.Matched() {
		barColor = utils.CriticalColor
	}

	lines := []string{
		utils.TitleStyle.Render("Module " + r.Module),
		"",
		utils.FormatKeyValue("Status", status, 12),
		utils.FormatKeyValue("Space", r.Space, 12),
		utils.FormatKeyValue("References", fmt.Sprintf("%d checked, %d helper classes skipped", r.Checked, r.References-r.Checked), 12),
		utils.FormatKeyValue("Mismatches", fmt.Sprintf("%d across %d classes", len(r.Mismatches), r.FailingClasses()), 12),
		utils.FormatKeyValue("Elapsed", utils.FormatDuration(r.Elapsed), 12),
		"",
		utils.CreateProgressBarWithLabel(satisfied, cliWidth-6, barColor, fmt.Sprintf("%.0f%% classes clean", satisfied*100)),
	}

	return utils.BoxStyle.Width(cliWidth).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderKindSection(kind muzzle.MismatchKind, mismatches []muzzle.Mismatch) string {
	severity := Severity(kind)
	style := utils.GetSeverityStyle(severity)

	var b strings.Builder
	b.WriteString(style.Render(fmt.Sprintf("%s %s (%d)", utils.GetSeverityIcon(severity), kind.Label(), len(mismatches))))

	for _, m := range mismatches {
		b.WriteString("\n  • ")
		b.WriteString(m.Symbol)
		if detail := mismatchDetail(m); detail != "" {
			b.WriteString("\n    ")
			b.WriteString(utils.TextStyle.Render(detail))
		}
		if len(m.Sources) > 0 {
			b.WriteString("\n    ")
			b.WriteString(utils.MutedStyle.Render("from " + formatSources(m)))
		}
	}

	return b.String()
}

func mismatchDetail(m muzzle.Mismatch) string {
	switch m.Kind {
	case muzzle.MissingFlag:
		return fmt.Sprintf("expected %s, actual %s", m.Expected, m.Actual)
	case muzzle.ResolutionError:
		if m.Cause != nil {
			return m.Cause.Error()
		}
	}
	return ""
}

func formatSources(m muzzle.Mismatch) string {
	sources := make([]string, len(m.Sources))
	for i, s := range m.Sources {
		sources[i] = s.String()
	}
	return strings.Join(sources, ", ")
}

package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/scoutlint/scout/internal/domain"
)

// ── Warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Bold(true).Foreground(fg)
	lineStyle     = lipgloss.NewStyle().Foreground(accent)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// Summary is the one-line verdict printed after every run.
func Summary(report *domain.Report) string {
	if !report.Dirty() {
		return "No warnings raised in your diff, you're good to go!"
	}
	tool := report.Tool
	if tool == "" {
		tool = "scout"
	}
	return fmt.Sprintf("%s found %d warnings", tool, len(report.Findings))
}

// RenderReport renders the findings of a run grouped by file, most severe
// first within a file.
func RenderReport(report *domain.Report) string {
	var b strings.Builder

	// ── Header ──
	title := headerStyle.Render("scout")
	subtitle := dimStyle.Render(fmt.Sprintf("%s vs %s", toolLabel(report.Tool), report.Target))
	stats := dimStyle.Render(fmt.Sprintf("%d changed sections  ·  %d roots analyzed",
		len(report.Sections), len(report.Roots)))

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + stats))
	b.WriteString("\n\n")

	if !report.Dirty() {
		b.WriteString("  " + passStyle.Render(Summary(report)) + "\n\n")
		return b.String()
	}

	// ── Findings ──
	errorCount, warnCount, infoCount := countSeverities(report.Findings)
	b.WriteString("  ")
	b.WriteString(titleStyle.Render("Findings"))
	b.WriteString("  ")
	if errorCount > 0 {
		b.WriteString(errorTagStyle.Render(fmt.Sprintf("%d errors", errorCount)))
		b.WriteString("  ")
	}
	if warnCount > 0 {
		b.WriteString(warnTagStyle.Render(fmt.Sprintf("%d warnings", warnCount)))
		b.WriteString("  ")
	}
	if infoCount > 0 {
		b.WriteString(infoTagStyle.Render(fmt.Sprintf("%d info", infoCount)))
	}
	b.WriteString("\n")

	for _, group := range groupByFile(report.Findings) {
		b.WriteString("\n  " + fileStyle.Render(group.path) + "\n")
		for _, f := range group.findings {
			renderFinding(&b, f)
		}
	}

	b.WriteString("\n  " + separatorLine + "\n")
	b.WriteString("  " + failStyle.Render(Summary(report)) + "\n\n")
	return b.String()
}

type fileGroup struct {
	path     string
	findings []domain.Finding
}

func groupByFile(findings []domain.Finding) []fileGroup {
	var groups []fileGroup
	index := make(map[string]int)
	for _, f := range findings {
		i, ok := index[f.Path]
		if !ok {
			i = len(groups)
			index[f.Path] = i
			groups = append(groups, fileGroup{path: f.Path})
		}
		groups[i].findings = append(groups[i].findings, f)
	}
	for _, g := range groups {
		sortBySeverity(g.findings)
	}
	return groups
}

func renderFinding(b *strings.Builder, f domain.Finding) {
	tag := severityTag(f.Severity)
	lines := lineStyle.Render(lineLabel(f.LineStart, f.LineEnd))

	head := fmt.Sprintf("    %s %s", tag, lines)
	if f.Code != "" {
		head += "  " + dimStyle.Render(f.Code)
	}
	b.WriteString(head + "\n")

	// Multi-line messages (clippy's rendered output, rustfmt diffs) keep
	// their shape under the tag.
	for _, l := range strings.Split(strings.TrimRight(f.Message, "\n"), "\n") {
		fmt.Fprintf(b, "         %s\n", dimStyle.Render(l))
	}
}

func lineLabel(start, end int) string {
	if start == end {
		return fmt.Sprintf("L%d", start)
	}
	return fmt.Sprintf("L%d-%d", start, end)
}

func severityTag(severity string) string {
	switch severity {
	case domain.SeverityError:
		return errorTagStyle.Render("error")
	case domain.SeverityWarning, "":
		return warnTagStyle.Render("warn ")
	default:
		return infoTagStyle.Render("info ")
	}
}

func countSeverities(findings []domain.Finding) (errors, warnings, infos int) {
	for _, f := range findings {
		switch f.Severity {
		case domain.SeverityError:
			errors++
		case domain.SeverityWarning, "":
			warnings++
		default:
			infos++
		}
	}
	return
}

func sortBySeverity(findings []domain.Finding) {
	order := map[string]int{
		domain.SeverityError:   0,
		domain.SeverityWarning: 1,
		"":                     1,
		domain.SeverityInfo:    2,
	}
	sort.SliceStable(findings, func(i, j int) bool {
		return order[findings[i].Severity] < order[findings[j].Severity]
	})
}

func toolLabel(tool string) string {
	if tool == "" {
		return "no tool"
	}
	return tool
}

// RenderHistory formats run history for terminal output.
func RenderHistory(entries []domain.RunEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No run history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Run History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, e := range entries {
		hash := e.Commit
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}
		day := e.Timestamp
		if len(day) > 10 {
			day = day[:10]
		}

		color := success
		if e.Findings > 0 {
			color = danger
		}
		count := lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("%d findings", e.Findings))

		line := fmt.Sprintf("  %s  %s  %s  %s  %s",
			dimStyle.Render(day),
			faintStyle.Render(hash),
			padRight(e.Tool, 14),
			dimStyle.Render(fmt.Sprintf("vs %s", e.Target)),
			count,
		)

		if i > 0 {
			diff := e.Findings - entries[i-1].Findings
			if diff < 0 {
				line += "  " + passStyle.Render(fmt.Sprintf("↓%d", -diff))
			} else if diff > 0 {
				line += "  " + failStyle.Render(fmt.Sprintf("↑%d", diff))
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

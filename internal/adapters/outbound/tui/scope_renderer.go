package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/scoutlint/scout/internal/domain"
)

const sectionsMaxRows = 40

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle          = lipgloss.NewStyle().Foreground(dim).Italic(true)
)

// RenderSections lists the changed-line sections of a diff, one file per
// line, and which workspace roots they touch.
func RenderSections(target string, sections []domain.Section, ws domain.Workspace, selected []domain.ScanRoot) string {
	var b strings.Builder

	title := headerStyle.Render("Changed Sections")
	stats := dimStyle.Render(fmt.Sprintf("vs %s  ·  %d sections  ·  %d files",
		target, len(sections), len(fileRanges(sections))))
	b.WriteString(boxStyle.Render(title + "\n" + stats))
	b.WriteString("\n")

	if len(sections) == 0 {
		b.WriteString("\n  " + passStyle.Render("No changes against "+target+".") + "\n\n")
		return b.String()
	}

	renderFiles(&b, sections)
	renderRoots(&b, ws, selected)

	b.WriteString("\n")
	return b.String()
}

func renderFiles(b *strings.Builder, sections []domain.Section) {
	files := fileRanges(sections)
	fmt.Fprintf(b, "\n  %s %s\n", sectionHeaderStyle.Render("Files"), dimStyle.Render(fmt.Sprintf("(%d)", len(files))))

	for i, f := range files {
		if i == sectionsMaxRows {
			fmt.Fprintf(b, "    %s\n", faintStyle.Render(fmt.Sprintf("… %d more", len(files)-sectionsMaxRows)))
			break
		}
		labels := make([]string, len(f.ranges))
		for j, r := range f.ranges {
			labels[j] = lineLabel(r.Start, r.End)
		}
		fmt.Fprintf(b, "    %s  %s\n", fileStyle.Render(f.path), lineStyle.Render(strings.Join(labels, " ")))
	}
}

func renderRoots(b *strings.Builder, ws domain.Workspace, selected []domain.ScanRoot) {
	if len(ws.Roots) == 0 {
		return
	}
	touched := make(map[string]bool, len(selected))
	for _, r := range selected {
		touched[r.Path] = true
	}

	fmt.Fprintf(b, "\n  %s %s\n", sectionHeaderStyle.Render("Roots"), dimStyle.Render(fmt.Sprintf("(%s)", ws.Kind)))
	for _, r := range ws.Roots {
		if touched[r.Path] {
			fmt.Fprintf(b, "    %s %s\n", passStyle.Render("●"), r.Path)
		} else {
			fmt.Fprintf(b, "    %s %s\n", faintStyle.Render("○"), faintStyle.Render(r.Path))
		}
	}
	if !ws.PerRootIterationRequired() {
		b.WriteString("    " + hintStyle.Render("analyzed in a single invocation") + "\n")
	}
}

type fileRange struct {
	path   string
	ranges []domain.LineRange
}

// fileRanges groups sections by path, keeping first-seen order.
func fileRanges(sections []domain.Section) []fileRange {
	var out []fileRange
	index := make(map[string]int)
	for _, s := range sections {
		i, ok := index[s.Path]
		if !ok {
			i = len(out)
			index[s.Path] = i
			out = append(out, fileRange{path: s.Path})
		}
		out[i].ranges = append(out[i].ranges, s.Range())
	}
	return out
}

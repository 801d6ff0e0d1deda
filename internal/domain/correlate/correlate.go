// Package correlate matches findings against changed-line sections.
package correlate

import (
	"strings"

	"github.com/scoutlint/scout/internal/domain"
)

// Overlaps reports whether two closed line ranges share at least one line.
// Whichever range starts first must reach the start of the other.
func Overlaps(a, b domain.LineRange) bool {
	return (a.Start <= b.Start && b.Start <= a.End) ||
		(b.Start <= a.Start && a.Start <= b.End)
}

// SamePath compares two relative paths ignoring the separator style.
func SamePath(a, b string) bool {
	return normalize(a) == normalize(b)
}

func normalize(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// Filter returns every finding that overlaps a section. Sections drive the
// outer loop, so output follows section order and a finding appears once for
// each section it overlaps.
func Filter(findings []domain.Finding, sections []domain.Section) []domain.Finding {
	kept := make([]domain.Finding, 0)
	if len(findings) == 0 || len(sections) == 0 {
		return kept
	}

	paths := make([]string, len(findings))
	for i, f := range findings {
		paths[i] = normalize(f.Path)
	}

	for _, s := range sections {
		sp := normalize(s.Path)
		for i, f := range findings {
			if paths[i] == sp && Overlaps(f.Range(), s.Range()) {
				kept = append(kept, f)
			}
		}
	}
	return kept
}

// Unique drops repeated findings while keeping first-seen order.
func Unique(findings []domain.Finding) []domain.Finding {
	seen := make(map[domain.Finding]struct{}, len(findings))
	out := make([]domain.Finding, 0, len(findings))
	for _, f := range findings {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Package scope decides which scan roots are worth invoking a tool on.
package scope

import (
	"strings"

	"github.com/scoutlint/scout/internal/domain"
)

// WholeProject is the root used when a single invocation covers everything.
var WholeProject = domain.ScanRoot{Path: "."}

// Select returns the roots to analyze, in declared order.
//
// Without a per-root policy one invocation over the whole project is enough,
// provided anything changed at all. Otherwise a root is kept when some
// section path starts with the root path. The test is a plain string prefix:
// root "foo" also selects "foobar/x.go".
func Select(ws domain.Workspace, sections []domain.Section) []domain.ScanRoot {
	if len(sections) == 0 {
		return nil
	}
	if !ws.PerRootIterationRequired() {
		return []domain.ScanRoot{WholeProject}
	}

	paths := make([]string, len(sections))
	for i, s := range sections {
		paths[i] = clean(s.Path)
	}

	var selected []domain.ScanRoot
	for _, root := range ws.Roots {
		prefix := clean(root.Path)
		for _, p := range paths {
			if prefix == "." || strings.HasPrefix(p, prefix) {
				selected = append(selected, root)
				break
			}
		}
	}
	return selected
}

func clean(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	if p == "" {
		return "."
	}
	return p
}

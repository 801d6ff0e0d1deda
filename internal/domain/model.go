package domain

import (
	"fmt"
	"time"
)

// Section is one contiguous run of added lines in one file.
// Lines are 1-based and inclusive; Path is repo-relative.
type Section struct {
	Path      string `json:"path"`
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`
}

func (s Section) Range() LineRange { return LineRange{Start: s.LineStart, End: s.LineEnd} }

func (s Section) Validate() error {
	if s.LineStart > s.LineEnd {
		return fmt.Errorf("section %s: line_start %d is after line_end %d", s.Path, s.LineStart, s.LineEnd)
	}
	return nil
}

func (s Section) String() string {
	return fmt.Sprintf("%s:%d-%d", s.Path, s.LineStart, s.LineEnd)
}

// Finding is a single issue reported by an analysis tool or formatter.
type Finding struct {
	Tool      string `json:"tool,omitempty"`
	Code      string `json:"code,omitempty"`
	Severity  string `json:"severity,omitempty"`
	Message   string `json:"message"`
	Path      string `json:"path"`
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`
}

func (f Finding) Range() LineRange { return LineRange{Start: f.LineStart, End: f.LineEnd} }

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// LineRange is a closed interval of line numbers.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ScanRoot is a sub-project directory the analysis tool may run against.
// Separate is set when the root must be analyzed in its own invocation.
type ScanRoot struct {
	Path     string `json:"path"`
	Separate bool   `json:"separate"`
}

// Workspace is the ordered set of scan roots declared by a project.
type Workspace struct {
	Kind  string     `json:"kind"`
	Roots []ScanRoot `json:"roots"`
}

const (
	WorkspaceSingle = "single"
	WorkspaceGoWork = "go.work"
	WorkspaceCargo  = "cargo"
	WorkspaceStatic = "static"
	WorkspaceFound  = "discovered"
)

// PerRootIterationRequired reports whether the tool has to be invoked once
// per root instead of once over the whole project.
func (w Workspace) PerRootIterationRequired() bool {
	for _, r := range w.Roots {
		if r.Separate {
			return true
		}
	}
	return false
}

// Report is the outcome of one scout run.
type Report struct {
	Target    string    `json:"target"`
	Commit    string    `json:"commit,omitempty"`
	Tool      string    `json:"tool"`
	Timestamp time.Time `json:"timestamp"`
	Sections  []Section `json:"sections"`
	Roots     []string  `json:"roots"`
	Findings  []Finding `json:"findings"`
}

// Dirty reports whether findings remain after filtering.
func (r *Report) Dirty() bool { return len(r.Findings) > 0 }

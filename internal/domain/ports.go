package domain

// VCS produces the changed-line sections of a working tree relative to target.
type VCS interface {
	Sections(repoPath, target string) ([]Section, error)
}

// WorkspaceLoader enumerates the scan roots of a project.
type WorkspaceLoader interface {
	Load(projectPath string) (Workspace, error)
}

// Linter runs an analysis tool against one root and returns its findings
// with paths relative to projectPath.
type Linter interface {
	Name() string
	Lints(projectPath string, root ScanRoot) ([]Finding, error)
}

// Healer applies automatic fixes for the given findings.
type Healer interface {
	Heal(projectPath string, findings []Finding) error
}

// ConfigLoader loads project-level configuration.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
}

// RunHistory persists a summary of every run.
type RunHistory interface {
	Save(projectPath string, entry RunEntry) error
	Load(projectPath string) ([]RunEntry, error)
}

// ReportCache keeps the last report so fixes can be applied without
// re-running the tool.
type ReportCache interface {
	Load(projectPath string) (*Report, error)
	Save(projectPath string, report *Report) error
	Invalidate(projectPath string) error
}

// RunEntry is one line of run history.
type RunEntry struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Target    string `json:"target"`
	Commit    string `json:"commit,omitempty"`
	Tool      string `json:"tool"`
	Sections  int    `json:"sections"`
	Roots     int    `json:"roots"`
	Findings  int    `json:"findings"`
}

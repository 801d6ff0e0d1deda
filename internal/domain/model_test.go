package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/scoutlint/scout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSection_Validate(t *testing.T) {
	assert.NoError(t, domain.Section{Path: "a.go", LineStart: 3, LineEnd: 3}.Validate())
	assert.NoError(t, domain.Section{Path: "a.go", LineStart: 1, LineEnd: 10}.Validate())

	err := domain.Section{Path: "a.go", LineStart: 5, LineEnd: 4}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.go")
}

func TestSection_String(t *testing.T) {
	assert.Equal(t, "src/app.rs:2-4", domain.Section{Path: "src/app.rs", LineStart: 2, LineEnd: 4}.String())
}

func TestWorkspace_PerRootIterationRequired(t *testing.T) {
	assert.False(t, domain.Workspace{}.PerRootIterationRequired())
	assert.False(t, domain.Workspace{Roots: []domain.ScanRoot{{Path: "a"}, {Path: "b"}}}.PerRootIterationRequired())
	assert.True(t, domain.Workspace{Roots: []domain.ScanRoot{{Path: "a"}, {Path: "b", Separate: true}}}.PerRootIterationRequired())
}

func TestReport_Dirty(t *testing.T) {
	r := &domain.Report{}
	assert.False(t, r.Dirty())
	r.Findings = append(r.Findings, domain.Finding{Path: "a.go", LineStart: 1, LineEnd: 1})
	assert.True(t, r.Dirty())
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("boom")

	var vcsErr *domain.VcsError
	err := fmt.Errorf("running: %w", &domain.VcsError{Op: "resolve master", Err: cause})
	require.True(t, errors.As(err, &vcsErr))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "resolve master")

	var toolErr *domain.ToolError
	err = &domain.ToolError{Tool: "clippy", Dir: "member1", Stderr: "error[E0425]", Err: cause}
	require.True(t, errors.As(err, &toolErr))
	assert.Contains(t, err.Error(), "error[E0425]")
	assert.ErrorIs(t, err, cause)

	err = &domain.ConfigError{Path: "Cargo.toml", Err: cause}
	assert.Equal(t, "config Cargo.toml: boom", err.Error())
	assert.ErrorIs(t, err, cause)
}

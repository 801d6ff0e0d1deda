package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDirtyResult signals that findings remain after filtering. It is not
	// an engine failure; the CLI decides whether it becomes a non-zero exit.
	ErrDirtyResult = errors.New("findings remain in the diff")

	// ErrMalformedHunk is returned when a hunk header cannot be decoded.
	ErrMalformedHunk = errors.New("malformed hunk header")
)

// VcsError reports a repository, ref resolution or diff decoding failure.
type VcsError struct {
	Op  string
	Err error
}

func (e *VcsError) Error() string { return fmt.Sprintf("vcs: %s: %v", e.Op, e.Err) }
func (e *VcsError) Unwrap() error { return e.Err }

// ConfigError reports that scan roots or settings could not be determined.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}
func (e *ConfigError) Unwrap() error { return e.Err }

// ToolError reports a failed or non-zero external tool invocation.
type ToolError struct {
	Tool   string
	Dir    string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s in %s: %v", e.Tool, e.Dir, e.Err)
	if e.Stderr != "" {
		msg += "\n" + e.Stderr
	}
	return msg
}
func (e *ToolError) Unwrap() error { return e.Err }

package linter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/scoutlint/scout/internal/domain"
)

type cargoMessage struct {
	Reason  string `json:"reason"`
	Message *struct {
		Message  string `json:"message"`
		Level    string `json:"level"`
		Rendered string `json:"rendered"`
		Code     *struct {
			Code string `json:"code"`
		} `json:"code"`
		Spans []cargoSpan `json:"spans"`
	} `json:"message"`
}

type cargoSpan struct {
	FileName  string `json:"file_name"`
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`
	IsPrimary bool   `json:"is_primary"`
}

// ClippyOptions mirrors the cargo flags that change clippy's output.
type ClippyOptions struct {
	Features domain.FeatureConfig
	Preview  bool
	Verbose  bool
	// WorkspaceDir is the directory of the workspace Cargo.toml relative to
	// the project; cargo reports file names relative to it.
	WorkspaceDir string
}

// Clippy runs `cargo clippy` with pedantic warnings and JSON messages.
type Clippy struct {
	runner Runner
	opts   ClippyOptions
}

func NewClippy(runner Runner, opts ClippyOptions) *Clippy {
	return &Clippy{runner: runner, opts: opts}
}

func (c *Clippy) Name() string { return domain.ToolClippy }

func (c *Clippy) Command(projectPath string, root domain.ScanRoot) Command {
	var args []string
	if c.opts.Preview {
		args = []string{"+nightly", "clippy-preview", "-Z", "unstable-options", "--message-format", "json"}
	} else {
		args = []string{"clippy", "--message-format", "json"}
	}
	if c.opts.Verbose {
		args = append(args, "--verbose")
	}
	if c.opts.Features.NoDefault {
		args = append(args, "--no-default-features")
	}
	if c.opts.Features.All {
		args = append(args, "--all-features")
	}
	if len(c.opts.Features.List) > 0 {
		args = append(args, "--features", strings.Join(c.opts.Features.List, ","))
	}
	args = append(args, "--", "-W", "clippy::pedantic")

	cmd := Command{Dir: rootDir(projectPath, root), Name: "cargo", Args: args}
	if c.opts.Verbose {
		cmd.Env = []string{"RUST_BACKTRACE=full"}
	}
	return cmd
}

func (c *Clippy) Lints(projectPath string, root domain.ScanRoot) ([]domain.Finding, error) {
	res, err := run(c.runner, c.Name(), c.Command(projectPath, root))
	if err != nil {
		return nil, err
	}
	return ParseClippy(res.Stdout, projectPath, c.opts.WorkspaceDir), nil
}

// ParseClippy maps cargo JSON messages to findings. Lines that are not JSON
// objects, fail to decode, or carry no span are dropped.
func ParseClippy(out []byte, projectPath, workspaceDir string) []domain.Finding {
	findings := []domain.Finding{}
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		var msg cargoMessage
		if json.Unmarshal(line, &msg) != nil {
			continue
		}
		if msg.Message == nil || len(msg.Message.Spans) == 0 {
			continue
		}
		if msg.Reason != "" && msg.Reason != "compiler-message" {
			continue
		}

		span := msg.Message.Spans[0]
		for _, s := range msg.Message.Spans {
			if s.IsPrimary {
				span = s
				break
			}
		}
		if span.FileName == "" || span.LineStart <= 0 {
			continue
		}
		end := span.LineEnd
		if end < span.LineStart {
			end = span.LineStart
		}

		text := strings.TrimRight(msg.Message.Rendered, "\n")
		if text == "" {
			text = msg.Message.Message
		}
		code := ""
		if msg.Message.Code != nil {
			code = msg.Message.Code.Code
		}

		findings = append(findings, domain.Finding{
			Tool:      domain.ToolClippy,
			Code:      code,
			Severity:  severity(msg.Message.Level, domain.SeverityWarning),
			Message:   text,
			Path:      relPath(projectPath, filepath.ToSlash(workspaceDir), span.FileName),
			LineStart: span.LineStart,
			LineEnd:   end,
		})
	}
	return findings
}

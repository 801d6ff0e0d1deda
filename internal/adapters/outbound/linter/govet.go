package linter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/scoutlint/scout/internal/domain"
)

type vetDiagnostic struct {
	Posn    string `json:"posn"`
	Message string `json:"message"`
}

// GoVet runs `go vet -json`, which prints one JSON object per package to
// stderr, each preceded by a "# package" comment line.
type GoVet struct {
	runner Runner
	tags   []string
}

func NewGoVet(runner Runner, buildTags []string) *GoVet {
	return &GoVet{runner: runner, tags: buildTags}
}

func (v *GoVet) Name() string { return domain.ToolGoVet }

func (v *GoVet) Command(projectPath string, root domain.ScanRoot) Command {
	args := []string{"vet", "-json"}
	if len(v.tags) > 0 {
		args = append(args, "-tags="+strings.Join(v.tags, ","))
	}
	args = append(args, "./...")
	return Command{Dir: rootDir(projectPath, root), Name: "go", Args: args}
}

func (v *GoVet) Lints(projectPath string, root domain.ScanRoot) ([]domain.Finding, error) {
	res, err := run(v.runner, v.Name(), v.Command(projectPath, root))
	if err != nil {
		return nil, err
	}
	return ParseGoVet(res.Stderr, projectPath, root.Path), nil
}

// ParseGoVet maps go vet JSON output to findings. Analyzer entries that are
// not diagnostic lists, and positions that cannot be read, are dropped.
func ParseGoVet(out []byte, projectPath, base string) []domain.Finding {
	var stripped bytes.Buffer
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for sc.Scan() {
		if strings.HasPrefix(sc.Text(), "#") {
			continue
		}
		stripped.Write(sc.Bytes())
		stripped.WriteByte('\n')
	}

	findings := []domain.Finding{}
	dec := json.NewDecoder(&stripped)
	for {
		var pkgs map[string]map[string]json.RawMessage
		if err := dec.Decode(&pkgs); err != nil {
			break // io.EOF or a truncated trailing object
		}
		for _, analyzers := range pkgs {
			for name, raw := range analyzers {
				var diags []vetDiagnostic
				if json.Unmarshal(raw, &diags) != nil {
					continue
				}
				for _, d := range diags {
					file, line, ok := splitPosn(d.Posn)
					if !ok {
						continue
					}
					findings = append(findings, domain.Finding{
						Tool:      domain.ToolGoVet,
						Code:      name,
						Severity:  domain.SeverityWarning,
						Message:   d.Message,
						Path:      relPath(projectPath, base, file),
						LineStart: line,
						LineEnd:   line,
					})
				}
			}
		}
	}
	sortFindings(findings)
	return findings
}

// splitPosn splits "file:line:col" or "file:line" from the right so that
// Windows drive letters survive.
func splitPosn(posn string) (string, int, bool) {
	rest := posn
	var nums []int
	for len(nums) < 2 {
		i := strings.LastIndexByte(rest, ':')
		if i < 0 {
			break
		}
		n, err := strconv.Atoi(rest[i+1:])
		if err != nil {
			break
		}
		nums = append(nums, n)
		rest = rest[:i]
	}
	if len(nums) == 0 || rest == "" {
		return "", 0, false
	}
	line := nums[len(nums)-1]
	if line <= 0 {
		return "", 0, false
	}
	return rest, line, true
}

// Package hunk turns unified-diff text into the changed-line sections of
// each file. Only added lines are tracked; removals never produce a section.
package hunk

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/scoutlint/scout/internal/domain"
)

const devNull = "/dev/null"

// Header is a decoded "@@ -o,c +n,c @@" line.
type Header struct {
	OldStart, OldLines int
	NewStart, NewLines int
}

// parser holds the state of a single pass over a diff.
type parser struct {
	sections []domain.Section

	file    string
	hasFile bool
	line    int // last consumed line of the new file

	pending  bool
	runStart int
	runEnd   int

	// remaining body lines declared by the current hunk header
	oldLeft, newLeft int
}

// Parse converts raw unified-diff text into sections, one per contiguous run
// of added lines. It only fails when a hunk header cannot be decoded.
func Parse(text string) ([]domain.Section, error) {
	p := &parser{}

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if err := p.consume(strings.TrimSuffix(sc.Text(), "\r")); err != nil {
			return nil, &domain.VcsError{Op: fmt.Sprintf("parse diff line %d", lineNo), Err: err}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &domain.VcsError{Op: "read diff", Err: err}
	}
	p.flush()

	if p.sections == nil {
		return []domain.Section{}, nil
	}
	return p.sections, nil
}

func (p *parser) consume(l string) error {
	inHunk := p.oldLeft > 0 || p.newLeft > 0

	switch {
	case strings.HasPrefix(l, "+++ ") && !(inHunk && p.newLeft > 0):
		p.flush()
		p.file, p.hasFile = filePath(l[len("+++ "):])
		p.oldLeft, p.newLeft = 0, 0

	case strings.HasPrefix(l, "--- ") && !(inHunk && p.oldLeft > 0):
		p.flush()
		p.oldLeft, p.newLeft = 0, 0

	case strings.HasPrefix(l, "@@"):
		h, err := ParseHeader(l)
		if err != nil {
			return err
		}
		p.flush()
		p.line = h.NewStart - 1
		p.oldLeft, p.newLeft = h.OldLines, h.NewLines

	case strings.HasPrefix(l, "+"):
		p.line++
		p.newLeft--
		if !p.pending {
			p.pending = true
			p.runStart = p.line
		}
		p.runEnd = p.line

	case strings.HasPrefix(l, "-"):
		// Removed lines do not exist in the new file: the cursor stays put
		// and a run interrupted only by removals stays contiguous.
		p.oldLeft--

	case strings.HasPrefix(l, " "), l == "" && inHunk:
		// Some tools strip the leading space of blank context lines.
		p.line++
		p.oldLeft--
		p.newLeft--
		p.flush()

	case strings.HasPrefix(l, `\`):
		// "\ No newline at end of file"

	default:
		p.flush()
		p.oldLeft, p.newLeft = 0, 0
	}

	return nil
}

func (p *parser) flush() {
	if !p.pending {
		return
	}
	p.pending = false
	if !p.hasFile {
		return
	}
	p.sections = append(p.sections, domain.Section{
		Path:      p.file,
		LineStart: p.runStart,
		LineEnd:   p.runEnd,
	})
}

// ParseHeader decodes a hunk header. A missing count defaults to 1.
func ParseHeader(l string) (Header, error) {
	if !strings.HasPrefix(l, "@@ ") {
		return Header{}, fmt.Errorf("%w: %q", domain.ErrMalformedHunk, l)
	}
	rest := l[len("@@ "):]
	end := strings.Index(rest, " @@")
	if end < 0 {
		return Header{}, fmt.Errorf("%w: %q", domain.ErrMalformedHunk, l)
	}
	fields := strings.Fields(rest[:end])
	if len(fields) != 2 || !strings.HasPrefix(fields[0], "-") || !strings.HasPrefix(fields[1], "+") {
		return Header{}, fmt.Errorf("%w: %q", domain.ErrMalformedHunk, l)
	}

	var h Header
	var err error
	if h.OldStart, h.OldLines, err = parseRange(fields[0][1:]); err != nil {
		return Header{}, fmt.Errorf("%w: %q: %v", domain.ErrMalformedHunk, l, err)
	}
	if h.NewStart, h.NewLines, err = parseRange(fields[1][1:]); err != nil {
		return Header{}, fmt.Errorf("%w: %q: %v", domain.ErrMalformedHunk, l, err)
	}
	return h, nil
}

func parseRange(s string) (start, count int, err error) {
	startStr, countStr, hasCount := strings.Cut(s, ",")
	start, err = strconv.Atoi(startStr)
	if err != nil || start < 0 {
		return 0, 0, fmt.Errorf("bad start %q", startStr)
	}
	if !hasCount {
		return start, 1, nil
	}
	count, err = strconv.Atoi(countStr)
	if err != nil || count < 0 {
		return 0, 0, fmt.Errorf("bad count %q", countStr)
	}
	return start, count, nil
}

// filePath strips the diff-specific decoration from a "+++" header value.
func filePath(raw string) (string, bool) {
	if i := strings.IndexByte(raw, '\t'); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, `"`) {
		if unq, err := strconv.Unquote(raw); err == nil {
			raw = unq
		}
	}
	if raw == devNull {
		return "", false
	}
	raw = strings.TrimPrefix(raw, "b/")
	return raw, raw != ""
}

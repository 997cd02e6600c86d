package parser

import "strings"

// scanner is the line buffer plus a forward-only cursor. The parser is the
// sole mutator; sub-phases that hit a terminator line leave it unconsumed for
// the outer loop instead of rewinding.
type scanner struct {
	lines []string
	pos   int
}

func newScanner(data []byte) *scanner {
	return &scanner{lines: splitLines(string(data))}
}

// splitLines matches the original tool's line iteration: \r\n normalized to
// \n, no terminators retained, and no phantom empty line after a trailing
// newline. Interior blank lines survive.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

func (s *scanner) peek() (string, bool) {
	if s.atEnd() {
		return "", false
	}
	return s.lines[s.pos], true
}

func (s *scanner) advance() {
	if s.pos < len(s.lines) {
		s.pos++
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.lines)
}

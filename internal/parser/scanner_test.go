package parser

import "testing"

func TestSplitLinesDropsTrailingNewlineOnly(t *testing.T) {
	lines := splitLines("a\n\nb\n")
	if len(lines) != 3 || lines[0] != "a" || lines[1] != "" || lines[2] != "b" {
		t.Fatalf("unexpected lines %q", lines)
	}
	if got := splitLines(""); got != nil {
		t.Fatalf("empty input should yield no lines, got %q", got)
	}
}

func TestSplitLinesNormalizesCRLF(t *testing.T) {
	lines := splitLines("a\r\nb\r\n")
	if len(lines) != 2 || lines[0] != "a" || lines[1] != "b" {
		t.Fatalf("unexpected lines %q", lines)
	}
}

func TestScannerCursor(t *testing.T) {
	sc := newScanner([]byte("one\ntwo\n"))
	if sc.atEnd() {
		t.Fatalf("fresh scanner should not be at end")
	}
	line, ok := sc.peek()
	if !ok || line != "one" {
		t.Fatalf("peek should not consume: %q %v", line, ok)
	}
	sc.advance()
	sc.advance()
	if !sc.atEnd() {
		t.Fatalf("scanner should be exhausted")
	}
	if _, ok := sc.peek(); ok {
		t.Fatalf("peek past end must report absence")
	}
	sc.advance() // must not panic past the end
}

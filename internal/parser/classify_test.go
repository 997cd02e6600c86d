package parser

import "testing"

func TestIsSeparator(t *testing.T) {
	if !isSeparator("###") || !isSeparator("### name") {
		t.Fatalf("hash runs should classify as separators")
	}
	if isSeparator("## heading") || isSeparator("body ###") {
		t.Fatalf("non-leading hashes must not classify as separators")
	}
}

func TestIsProtocolHeaderIsCaseSensitive(t *testing.T) {
	for _, line := range []string{"WEBSOCKET ws://h", "RSOCKET ws://h", "GRAPHQL http://h"} {
		if !isProtocolHeader(line) {
			t.Fatalf("expected %q to classify as protocol header", line)
		}
	}
	for _, line := range []string{"websocket ws://h", "Graphql http://h", "GET https://h"} {
		if isProtocolHeader(line) {
			t.Fatalf("%q must not classify as protocol header", line)
		}
	}
}

func TestIsMethodWord(t *testing.T) {
	for _, tok := range []string{"get", "POST", "Delete", "WEBSOCKET", "graphql", "rsocket"} {
		if !isMethodWord(tok) {
			t.Fatalf("expected %q to be a method word", tok)
		}
	}
	if isMethodWord("FETCH") || isMethodWord("") {
		t.Fatalf("unknown tokens must not be method words")
	}
}

func TestLooksLikeURL(t *testing.T) {
	for _, line := range []string{"http://a", "https://a/b", "ws://host:1/p", "custom://thing"} {
		if !looksLikeURL(line) {
			t.Fatalf("expected %q to look like a url", line)
		}
	}
	if looksLikeURL("Accept: text/plain") || looksLikeURL("plain name") {
		t.Fatalf("non-urls must not match")
	}
}

func TestCommentAndAnnotationSplit(t *testing.T) {
	if !isComment("# x") || !isComment("// x") {
		t.Fatalf("comment prefixes not recognized")
	}
	if !isNameAnnotation("# @name Create User") {
		t.Fatalf("name annotation not recognized")
	}
	if isNameAnnotation("# @tag smoke") {
		t.Fatalf("other annotations must not match the name annotation")
	}
	if !isAnnotation("# @tag smoke") || isAnnotation("# plain") {
		t.Fatalf("annotation split broken")
	}
}

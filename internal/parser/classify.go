package parser

import "strings"

// Section classifier. Every disambiguation rule of the request-file grammar
// lives here so the per-variant phases cannot drift apart. All predicates
// expect an already-trimmed line unless noted.

const (
	keywordWebSocket = "WEBSOCKET"
	keywordRSocket   = "RSOCKET"
	keywordGraphQL   = "GRAPHQL"

	nameAnnotation = "# @name"
)

var methodWords = map[string]struct{}{
	"GET":     {},
	"POST":    {},
	"PUT":     {},
	"DELETE":  {},
	"PATCH":   {},
	"HEAD":    {},
	"OPTIONS": {},
	keywordWebSocket: {},
	keywordGraphQL:   {},
	keywordRSocket:   {},
}

func isSeparator(trimmed string) bool {
	return strings.HasPrefix(trimmed, "###")
}

// Keyword match is a case-sensitive prefix test, not a token test. That is
// how the format has always behaved, so a line like "WEBSOCKETS ..." also
// enters the WebSocket phase.
func isProtocolHeader(trimmed string) bool {
	return strings.HasPrefix(trimmed, keywordWebSocket) ||
		strings.HasPrefix(trimmed, keywordRSocket) ||
		strings.HasPrefix(trimmed, keywordGraphQL)
}

func isComment(trimmed string) bool {
	return strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#")
}

// "# @name ..." and friends are annotations, not plain comments; they never
// land in a descriptor's comment list.
func isAnnotation(trimmed string) bool {
	return strings.HasPrefix(trimmed, "# @")
}

func isNameAnnotation(trimmed string) bool {
	return strings.HasPrefix(trimmed, nameAnnotation)
}

func isMethodWord(token string) bool {
	_, ok := methodWords[strings.ToUpper(token)]
	return ok
}

func looksLikeURL(line string) bool {
	return strings.HasPrefix(line, "http://") ||
		strings.HasPrefix(line, "https://") ||
		strings.Contains(line, "://")
}

// isBlockTerminator reports whether a trimmed line ends the current body or
// message phase. The terminator is left for the scanning loop to consume.
func isBlockTerminator(trimmed string) bool {
	return isSeparator(trimmed) || isProtocolHeader(trimmed)
}

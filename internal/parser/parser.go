package parser

import (
	"encoding/json"
	"strings"

	"github.com/earthfall/RestClient/internal/restfile"
)

// Parse scans the request file once, front to back, and returns every block
// that resolved to a usable descriptor, in file order. Malformed blocks are
// dropped, never fatal: the goal is to extract as many runnable requests as
// an imperfect file allows.
func Parse(path string, data []byte) *restfile.Document {
	sc := newScanner(data)
	doc := &restfile.Document{Path: path, Raw: data}

	for !sc.atEnd() {
		line, _ := sc.peek()
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			sc.advance()
		case isSeparator(trimmed):
			name := separatorName(trimmed)
			sc.advance()
			if req := parseHTTPBlock(sc, name); req != nil {
				doc.Requests = append(doc.Requests, restfile.Request{HTTP: req})
			}
		case strings.HasPrefix(trimmed, keywordWebSocket):
			if uri, headers, messages, ok := parseMessageBlock(sc); ok {
				doc.Requests = append(doc.Requests, restfile.Request{
					WebSocket: &restfile.WebSocketRequest{
						URI:      uri,
						Headers:  headers,
						Messages: messages,
					},
				})
			}
		case strings.HasPrefix(trimmed, keywordRSocket):
			if uri, headers, messages, ok := parseMessageBlock(sc); ok {
				doc.Requests = append(doc.Requests, restfile.Request{
					RSocket: &restfile.RSocketRequest{
						URI:      uri,
						Headers:  headers,
						Messages: messages,
					},
				})
			}
		case strings.HasPrefix(trimmed, keywordGraphQL):
			if req := parseGraphQLBlock(sc); req != nil {
				doc.Requests = append(doc.Requests, restfile.Request{GraphQL: req})
			}
		default:
			// Stray text outside any recognized block.
			sc.advance()
		}
	}

	return doc
}

// separatorName pulls an inline name off a "### ..." line. A bare uppercase
// method or protocol keyword after the hashes is a hint about the block, not
// a name; mixed-case words like "Get" stay names.
func separatorName(trimmed string) string {
	rest := strings.TrimSpace(trimmed[3:])
	if rest == "" || (rest == strings.ToUpper(rest) && isMethodWord(rest)) {
		return ""
	}
	return rest
}

func parseHTTPBlock(sc *scanner, name string) *restfile.HTTPRequest {
	req := &restfile.HTTPRequest{
		Name:    name,
		Method:  "GET",
		Headers: map[string]string{},
	}

	// Name line: plain text right after the separator that cannot be a URL,
	// a comment, or a header wins over the separator-inline name.
	if line, ok := sc.peek(); ok {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" &&
			!strings.HasPrefix(trimmed, "http") &&
			!isComment(trimmed) {
			first := firstField(trimmed)
			if !isMethodWord(first) &&
				!strings.Contains(trimmed, ":") &&
				!looksLikeURL(trimmed) {
				req.Name = trimmed
				sc.advance()
			}
		}
	}

	// Leading comments and annotations. "# @name" overrides every earlier
	// name source; other annotations are swallowed without being recorded.
	for {
		line, ok := sc.peek()
		if !ok {
			break
		}
		trimmed := strings.TrimSpace(line)
		if isNameAnnotation(trimmed) {
			req.Name = strings.TrimSpace(trimmed[len(nameAnnotation):])
			sc.advance()
			continue
		}
		if isComment(trimmed) {
			if !isAnnotation(trimmed) {
				req.Comments = append(req.Comments, trimmed)
			}
			sc.advance()
			continue
		}
		break
	}

	// Request line. A bare URL is GET shorthand; otherwise token 0 is the
	// method, token 1 the URI, and anything after that the HTTP version.
	if line, ok := sc.peek(); ok {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
			req.URI = trimmed
		} else if fields := strings.Fields(trimmed); len(fields) > 0 {
			req.Method = strings.ToUpper(fields[0])
			if len(fields) > 1 {
				req.URI = fields[1]
			}
			if len(fields) > 2 {
				req.HTTPVersion = strings.Join(fields[2:], " ")
			}
		}
		sc.advance()
	}

	inBody := parseHeaders(sc, req.Headers, &req.Comments)

	if inBody {
		var bodyLines []string
		for {
			line, ok := sc.peek()
			if !ok {
				break
			}
			if isBlockTerminator(strings.TrimSpace(line)) {
				break
			}
			bodyLines = append(bodyLines, line)
			sc.advance()
		}
		if len(bodyLines) > 0 {
			req.Body = restfile.BodyOf(strings.Join(bodyLines, "\n"))
		}
	}

	// No URI means the block never became a request; drop it quietly.
	if req.URI == "" {
		return nil
	}
	return req
}

// parseHeaders consumes header lines until the first blank line (which it
// eats) and reports whether a body section follows. Comment lines are stored
// when the caller keeps a comment list (HTTP blocks); message and GraphQL
// blocks pass nil and drop them.
func parseHeaders(sc *scanner, headers map[string]string, comments *[]string) bool {
	for {
		line, ok := sc.peek()
		if !ok {
			return false
		}
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			sc.advance()
			return true
		}

		if isComment(trimmed) {
			if comments != nil && !isAnnotation(trimmed) {
				*comments = append(*comments, trimmed)
			}
			sc.advance()
			continue
		}

		if idx := strings.Index(trimmed, ":"); idx != -1 {
			key := strings.TrimSpace(trimmed[:idx])
			value := strings.TrimSpace(trimmed[idx+1:])
			headers[key] = value
		}
		sc.advance()
	}
}

// parseMessageBlock handles both WebSocket and RSocket scripts; the two
// sub-grammars are identical, only the descriptor variant differs.
func parseMessageBlock(sc *scanner) (uri string, headers map[string]string, messages []restfile.Message, ok bool) {
	line, _ := sc.peek()
	fields := strings.Fields(strings.TrimSpace(line))
	sc.advance()
	if len(fields) < 2 {
		return "", nil, nil, false
	}
	uri = fields[1]

	headers = map[string]string{}
	parseHeaders(sc, headers, nil)

	var buffer []string
	waitCount := 0

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		messages = append(messages, restfile.Message{
			Content:       strings.Join(buffer, "\n"),
			WaitForServer: waitCount,
		})
		buffer = buffer[:0]
	}

	for {
		raw, present := sc.peek()
		if !present {
			break
		}
		trimmed := strings.TrimSpace(raw)
		if isBlockTerminator(trimmed) {
			break
		}

		switch {
		case trimmed == "===" || strings.HasPrefix(trimmed, "=== wait-for-server"):
			flush()
			if strings.Contains(trimmed, "wait-for-server") {
				waitCount++
			} else {
				waitCount = 0
			}
		case isComment(trimmed):
			// dropped, not buffered
		default:
			buffer = append(buffer, raw)
		}
		sc.advance()
	}

	flush()
	return uri, headers, messages, true
}

func parseGraphQLBlock(sc *scanner) *restfile.GraphQLRequest {
	line, _ := sc.peek()
	fields := strings.Fields(strings.TrimSpace(line))
	sc.advance()
	if len(fields) < 2 {
		return nil
	}

	req := &restfile.GraphQLRequest{
		URI:     fields[1],
		Headers: map[string]string{},
	}
	parseHeaders(sc, req.Headers, nil)

	var queryLines []string
	for {
		raw, present := sc.peek()
		if !present {
			break
		}
		trimmed := strings.TrimSpace(raw)
		if isBlockTerminator(trimmed) {
			break
		}
		if isComment(trimmed) {
			sc.advance()
			continue
		}

		// A brace-initial line after at least one query line is assumed to
		// start the JSON variables block. A query whose own continuation
		// begins a line with "{" misfires here; that ambiguity is part of
		// the format and is kept as-is.
		if strings.HasPrefix(trimmed, "{") && len(queryLines) > 0 {
			parseGraphQLVariables(sc, req)
			continue
		}

		queryLines = append(queryLines, raw)
		sc.advance()
	}

	req.Query = strings.Join(queryLines, "\n")
	return req
}

// parseGraphQLVariables collects lines until one ends with "}" and tries to
// decode the blob as JSON. A failed decode is discarded without touching the
// query collected so far.
func parseGraphQLVariables(sc *scanner, req *restfile.GraphQLRequest) {
	raw, _ := sc.peek()
	varLines := []string{raw}
	sc.advance()

	for {
		next, present := sc.peek()
		if !present {
			break
		}
		trimmed := strings.TrimSpace(next)
		if isBlockTerminator(trimmed) {
			break
		}
		varLines = append(varLines, next)
		sc.advance()
		if strings.HasSuffix(trimmed, "}") {
			break
		}
	}

	var value interface{}
	if err := json.Unmarshal([]byte(strings.Join(varLines, "\n")), &value); err == nil {
		req.Variables = value
	}
}

func firstField(trimmed string) string {
	if fields := strings.Fields(trimmed); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// Package curlconv converts between curl invocations and request-file blocks.
// It is intentionally line oriented: the input is whatever someone pasted out
// of a browser's "copy as cURL", not a shell script, so a handful of anchored
// patterns beats a full shell tokenizer here.
package curlconv

import (
	"regexp"
	"strings"
)

var (
	urlPattern    = regexp.MustCompile(`(?:^|\s)['"]?([^'"\s]+://[^'"\s]+)['"]?`)
	methodPattern = regexp.MustCompile(`-X\s+(\w+)`)
	headerPattern = regexp.MustCompile(`-H\s+['"]([^'"]+)['"]`)
	dataPattern   = regexp.MustCompile(`(?:-d|--data)\s+(?:'([^']*(?:\\'[^']*)*)'|"([^"]*(?:\\"[^"]*)*)"|([^\s]+))`)
)

type header struct {
	key   string
	value string
}

// CurlToHTTP renders a curl command line as a ###-delimited request block.
// A -d payload on a command without -X promotes the method to POST, matching
// what curl itself does.
func CurlToHTTP(command string) string {
	command = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(command), "curl"))

	method := "GET"
	url := ""
	var headers []header
	var body string

	if m := urlPattern.FindStringSubmatch(command); m != nil {
		url = m[1]
	}
	if m := methodPattern.FindStringSubmatch(command); m != nil {
		method = strings.ToUpper(m[1])
	}
	for _, m := range headerPattern.FindAllStringSubmatch(command, -1) {
		if idx := strings.Index(m[1], ":"); idx >= 0 {
			headers = append(headers, header{
				key:   strings.TrimSpace(m[1][:idx]),
				value: strings.TrimSpace(m[1][idx+1:]),
			})
		}
	}
	if m := dataPattern.FindStringSubmatch(command); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if raw == "" {
			raw = m[3]
		}
		if raw != "" {
			body = strings.NewReplacer(`\"`, `"`, `\'`, `'`).Replace(raw)
			if method == "GET" {
				method = "POST"
			}
		}
	}

	var b strings.Builder
	b.WriteString("# Converted from cURL\n")
	b.WriteString("###\n")
	b.WriteString(method + " " + url + "\n")
	for _, h := range headers {
		b.WriteString(h.key + ": " + h.value + "\n")
	}
	if body != "" {
		b.WriteString("\n")
		b.WriteString(body + "\n")
	}
	return b.String()
}

// HTTPToCurl renders the first request block of a file as a curl command.
// Comments and separators are dropped; the first blank line starts the body.
func HTTPToCurl(request string) string {
	method := "GET"
	url := ""
	var headers []string
	var bodyLines []string
	inBody := false

	for _, line := range strings.Split(request, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			inBody = true
			continue
		}
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		if inBody {
			bodyLines = append(bodyLines, line)
			continue
		}
		if strings.Contains(line, "://") {
			parts := strings.Fields(line)
			switch {
			case len(parts) >= 2:
				method = parts[0]
				url = parts[1]
			case len(parts) == 1:
				url = parts[0]
			}
			continue
		}
		if strings.Contains(line, ":") &&
			!strings.HasPrefix(line, "http") && !strings.HasPrefix(line, "ws") {
			headers = append(headers, line)
		}
	}

	var b strings.Builder
	b.WriteString("curl ")
	if method != "GET" {
		b.WriteString("-X " + method + " ")
	}
	b.WriteString(shellQuote(url))
	for _, h := range headers {
		b.WriteString(" -H " + shellQuote(h))
	}
	if len(bodyLines) > 0 {
		b.WriteString(" -d " + shellQuote(strings.Join(bodyLines, "\n")))
	}
	return b.String()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

package restfile

import "strings"

type Kind string

const (
	KindHTTP      Kind = "http"
	KindWebSocket Kind = "websocket"
	KindGraphQL   Kind = "graphql"
	KindRSocket   Kind = "rsocket"
)

// HTTPRequest is one ###-delimited block. Header keys are stored as written;
// case-insensitive lookups are the consumer's job.
type HTTPRequest struct {
	Name        string
	Method      string
	URI         string
	HTTPVersion string
	Headers     map[string]string
	Body        *string
	Comments    []string
}

// Message is one send unit of a WebSocket or RSocket script. WaitForServer is
// the number of inbound exchanges to consume before this message goes out.
type Message struct {
	Content       string
	WaitForServer int
}

type WebSocketRequest struct {
	URI      string
	Headers  map[string]string
	Messages []Message
}

// RSocketRequest mirrors WebSocketRequest on purpose: RSocket traffic rides a
// WebSocket-compatible transport, only the executor differs.
type RSocketRequest struct {
	URI      string
	Headers  map[string]string
	Messages []Message
}

type GraphQLRequest struct {
	URI       string
	Query     string
	Variables interface{}
	Headers   map[string]string
}

// Request holds exactly one variant. Values are immutable once the parser
// appends them to a Document.
type Request struct {
	HTTP      *HTTPRequest
	WebSocket *WebSocketRequest
	GraphQL   *GraphQLRequest
	RSocket   *RSocketRequest
}

func (r Request) Kind() Kind {
	switch {
	case r.HTTP != nil:
		return KindHTTP
	case r.WebSocket != nil:
		return KindWebSocket
	case r.GraphQL != nil:
		return KindGraphQL
	case r.RSocket != nil:
		return KindRSocket
	default:
		return ""
	}
}

type Document struct {
	Path     string
	Requests []Request
	Raw      []byte
}

func BodyOf(text string) *string {
	return &text
}

// HeaderValue does the case-insensitive lookup the parser deliberately does
// not: descriptors keep header keys exactly as written.
func HeaderValue(headers map[string]string, name string) (string, bool) {
	if value, ok := headers[name]; ok {
		return value, true
	}
	for key, value := range headers {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}
	return "", false
}

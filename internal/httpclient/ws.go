package httpclient

import (
	"context"
	"errors"
	"net/http"
	"time"

	"nhooyr.io/websocket"

	"github.com/earthfall/RestClient/internal/errdef"
	"github.com/earthfall/RestClient/internal/restfile"
)

type SocketEvent struct {
	Direction string    `json:"direction"`
	Type      string    `json:"type"`
	Text      string    `json:"text,omitempty"`
	Size      int       `json:"size"`
	Timestamp time.Time `json:"timestamp"`
	Code      int       `json:"code,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

type SocketTranscript struct {
	Events   []SocketEvent `json:"events"`
	Sent     int           `json:"sent"`
	Received int           `json:"received"`
	ClosedBy string        `json:"closedBy"`
	Duration time.Duration `json:"duration"`
}

// ExecuteWebSocket runs one message script over a single connection. Each
// message first drains WaitForServer inbound frames, then goes out, then -
// when it did not wait - reads one response cycle. The whole exchange is
// bounded by the configured timeout so a silent peer cannot hang the run.
func (c *Client) ExecuteWebSocket(
	ctx context.Context,
	req *restfile.WebSocketRequest,
	envName string,
) (*SocketTranscript, error) {
	uri := c.env.ResolveString(envName, req.URI)

	ctx, cancel := context.WithTimeout(ctx, c.opts.timeout())
	defer cancel()

	client, err := c.httpFactory(c.opts)
	if err != nil {
		return nil, err
	}
	// The overall deadline lives on ctx; a client timeout would kill the
	// connection mid-session.
	client.Timeout = 0

	header := make(http.Header, len(req.Headers))
	for key, value := range req.Headers {
		header.Set(key, c.env.ResolveString(envName, value))
	}

	conn, _, err := websocket.Dial(ctx, uri, &websocket.DialOptions{
		HTTPHeader: header,
		HTTPClient: client,
	})
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeWebSocket, err, "dial websocket %s", uri)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	start := time.Now()
	transcript := &SocketTranscript{}

	for _, message := range req.Messages {
		for i := 0; i < message.WaitForServer; i++ {
			closed, err := c.receiveOne(ctx, conn, transcript)
			if err != nil {
				return transcript, err
			}
			if closed {
				transcript.Duration = time.Since(start)
				return transcript, nil
			}
		}

		content := c.env.ResolveString(envName, message.Content)
		if err := conn.Write(ctx, websocket.MessageText, []byte(content)); err != nil {
			return transcript, errdef.Wrap(errdef.CodeWebSocket, err, "send websocket message")
		}
		transcript.record(SocketEvent{
			Direction: "send",
			Type:      "text",
			Text:      content,
			Size:      len(content),
			Timestamp: time.Now(),
		})

		if message.WaitForServer == 0 {
			closed, err := c.receiveOne(ctx, conn, transcript)
			if err != nil {
				return transcript, err
			}
			if closed {
				transcript.Duration = time.Since(start)
				return transcript, nil
			}
		}
	}

	// Keep listening until the peer closes or the deadline lands.
	for {
		closed, err := c.receiveOne(ctx, conn, transcript)
		if err != nil {
			return transcript, err
		}
		if closed {
			break
		}
	}

	transcript.Duration = time.Since(start)
	return transcript, nil
}

// receiveOne reads a single frame into the transcript. A server close or a
// lapsed deadline is not an error; both report closed=true so callers can
// stop the script.
func (c *Client) receiveOne(
	ctx context.Context,
	conn *websocket.Conn,
	transcript *SocketTranscript,
) (bool, error) {
	msgType, data, err := conn.Read(ctx)
	if err != nil {
		var ce websocket.CloseError
		if errors.As(err, &ce) {
			transcript.record(SocketEvent{
				Direction: "receive",
				Type:      "close",
				Timestamp: time.Now(),
				Code:      int(ce.Code),
				Reason:    ce.Reason,
			})
			transcript.ClosedBy = "server"
			return true, nil
		}
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			transcript.ClosedBy = "timeout"
			return true, nil
		}
		return false, errdef.Wrap(errdef.CodeWebSocket, err, "read websocket message")
	}

	event := SocketEvent{
		Direction: "receive",
		Type:      "binary",
		Size:      len(data),
		Timestamp: time.Now(),
	}
	if msgType == websocket.MessageText {
		event.Type = "text"
		event.Text = string(data)
	}
	transcript.record(event)
	return false, nil
}

func (t *SocketTranscript) record(event SocketEvent) {
	t.Events = append(t.Events, event)
	switch event.Direction {
	case "send":
		t.Sent++
	case "receive":
		t.Received++
	}
}

package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"

	"github.com/earthfall/RestClient/internal/restfile"
	"github.com/earthfall/RestClient/internal/vars"
)

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

// echoServer answers every text frame with echo:<frame> and closes after
// seeing a frame equal to "bye".
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusInternalError, "")
		ctx := r.Context()
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			if string(data) == "bye" {
				conn.Close(websocket.StatusNormalClosure, "goodbye")
				return
			}
			if err := conn.Write(ctx, websocket.MessageText, append([]byte("echo:"), data...)); err != nil {
				return
			}
		}
	}))
}

func TestExecuteWebSocketEchoExchange(t *testing.T) {
	server := echoServer(t)
	defer server.Close()

	client := NewClient(newTestManager(t, ""), Options{Timeout: 2 * time.Second})
	transcript, err := client.ExecuteWebSocket(context.Background(), &restfile.WebSocketRequest{
		URI: wsURL(server),
		Messages: []restfile.Message{
			{Content: "hello"},
			{Content: "bye"},
		},
	}, vars.DefaultEnvironment)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if transcript.Sent != 2 {
		t.Fatalf("sent = %d, want 2", transcript.Sent)
	}
	var echoed bool
	for _, event := range transcript.Events {
		if event.Direction == "receive" && event.Text == "echo:hello" {
			echoed = true
		}
	}
	if !echoed {
		t.Fatalf("no echo received, events: %+v", transcript.Events)
	}
	if transcript.ClosedBy != "server" {
		t.Fatalf("closedBy = %q, want server", transcript.ClosedBy)
	}
}

func TestExecuteWebSocketWaitForServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		ctx := r.Context()
		conn.Write(ctx, websocket.MessageText, []byte("welcome"))
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
		conn.Close(websocket.StatusNormalClosure, "")
	}))
	defer server.Close()

	client := NewClient(newTestManager(t, ""), Options{Timeout: 2 * time.Second})
	transcript, err := client.ExecuteWebSocket(context.Background(), &restfile.WebSocketRequest{
		URI: wsURL(server),
		Messages: []restfile.Message{
			{Content: "after-greeting", WaitForServer: 1},
		},
	}, vars.DefaultEnvironment)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(transcript.Events) < 2 {
		t.Fatalf("events = %+v", transcript.Events)
	}
	if transcript.Events[0].Direction != "receive" || transcript.Events[0].Text != "welcome" {
		t.Fatalf("first event = %+v, want the greeting", transcript.Events[0])
	}
	if transcript.Events[1].Direction != "send" || transcript.Events[1].Text != "after-greeting" {
		t.Fatalf("second event = %+v, want the send", transcript.Events[1])
	}
}

func TestExecuteWebSocketResolvesTemplates(t *testing.T) {
	received := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		_, data, err := conn.Read(r.Context())
		if err != nil {
			return
		}
		received <- string(data)
		conn.Close(websocket.StatusNormalClosure, "")
	}))
	defer server.Close()

	manager := newTestManager(t, `{"default": {"room": "lobby"}}`)
	client := NewClient(manager, Options{Timeout: 2 * time.Second})
	if _, err := client.ExecuteWebSocket(context.Background(), &restfile.WebSocketRequest{
		URI: wsURL(server),
		Messages: []restfile.Message{
			{Content: `{"join": "{{room}}"}`},
		},
	}, vars.DefaultEnvironment); err != nil {
		t.Fatalf("execute: %v", err)
	}
	select {
	case got := <-received:
		if got != `{"join": "lobby"}` {
			t.Fatalf("server saw %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the message")
	}
}

func TestExecuteWebSocketTimeoutEndsListenPhase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		// Swallow frames and never answer; the client deadline has to end
		// the session.
		for {
			if _, _, err := conn.Read(r.Context()); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	client := NewClient(newTestManager(t, ""), Options{Timeout: 300 * time.Millisecond})
	transcript, err := client.ExecuteWebSocket(context.Background(), &restfile.WebSocketRequest{
		URI: wsURL(server),
		Messages: []restfile.Message{
			{Content: "ping", WaitForServer: 0},
		},
	}, vars.DefaultEnvironment)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if transcript.ClosedBy != "timeout" {
		t.Fatalf("closedBy = %q, want timeout", transcript.ClosedBy)
	}
	if transcript.Sent != 1 {
		t.Fatalf("sent = %d", transcript.Sent)
	}
}

package rsocketclient

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rsocket/rsocket-go"
	"github.com/rsocket/rsocket-go/payload"

	"github.com/earthfall/RestClient/internal/errdef"
	"github.com/earthfall/RestClient/internal/restfile"
	"github.com/earthfall/RestClient/internal/vars"
)

const defaultTimeout = 30 * time.Second

// Client drives request/response exchanges over the WebSocket transport.
// Template substitution happens at execution time, same as the HTTP side.
type Client struct {
	env     *vars.Manager
	timeout time.Duration
}

func NewClient(env *vars.Manager, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{env: env, timeout: timeout}
}

// Exchange records one scripted message round trip. Drained counts the
// probe exchanges consumed before the request went out.
type Exchange struct {
	Request  string
	Response string
	Drained  int
}

// NormalizeTransportAddr maps the URI forms the request files use onto the
// WebSocket transport. rs:// and tcp:// are aliases kept for files written
// against brokers that advertise those schemes; anything else with an
// explicit scheme is rejected rather than guessed at.
func NormalizeTransportAddr(raw string) (string, error) {
	addr := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(addr, "ws://"), strings.HasPrefix(addr, "wss://"):
		return addr, nil
	case strings.HasPrefix(addr, "rs://"):
		return "ws://" + strings.TrimPrefix(addr, "rs://"), nil
	case strings.HasPrefix(addr, "tcp://"):
		return "ws://" + strings.TrimPrefix(addr, "tcp://"), nil
	case strings.Contains(addr, "://"):
		return "", errdef.New(errdef.CodeRSocket, "unsupported transport scheme in %q", addr)
	default:
		return "ws://" + addr, nil
	}
}

func (c *Client) Execute(
	ctx context.Context,
	req *restfile.RSocketRequest,
	envName string,
) ([]Exchange, error) {
	addr, err := NormalizeTransportAddr(c.env.ResolveString(envName, req.URI))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	builder := rsocket.Connect()
	if len(req.Headers) > 0 {
		resolved := make(map[string]string, len(req.Headers))
		for key, value := range req.Headers {
			resolved[key] = c.env.ResolveString(envName, value)
		}
		meta, err := json.Marshal(resolved)
		if err != nil {
			return nil, errdef.Wrap(errdef.CodeRSocket, err, "encode setup metadata")
		}
		builder = builder.SetupPayload(payload.New(nil, meta))
	}

	client, err := builder.
		Transport(rsocket.WebsocketClient().SetURL(addr).Build()).
		Start(ctx)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeRSocket, err, "connect rsocket %s", addr)
	}
	defer client.Close()

	var exchanges []Exchange
	for _, message := range req.Messages {
		// Probe exchanges stand in for "wait for the server": an empty
		// request forces a full round trip before the real payload goes out.
		for i := 0; i < message.WaitForServer; i++ {
			if _, err := client.RequestResponse(payload.NewString("", "")).Block(ctx); err != nil {
				return exchanges, errdef.Wrap(errdef.CodeRSocket, err, "probe exchange")
			}
		}

		content := c.env.ResolveString(envName, message.Content)
		resp, err := client.RequestResponse(payload.NewString(content, "")).Block(ctx)
		if err != nil {
			return exchanges, errdef.Wrap(errdef.CodeRSocket, err, "request/response exchange")
		}
		exchanges = append(exchanges, Exchange{
			Request:  content,
			Response: resp.DataUTF8(),
			Drained:  message.WaitForServer,
		})
	}
	return exchanges, nil
}

// Package runner executes the requests of one parsed file in order, writing a
// human readable transcript as it goes. Execution stops at the first failure;
// later requests in a file usually depend on the earlier ones having worked.
package runner

import (
	"context"
	"fmt"
	"io"

	"github.com/earthfall/RestClient/internal/errdef"
	"github.com/earthfall/RestClient/internal/httpclient"
	"github.com/earthfall/RestClient/internal/restfile"
	"github.com/earthfall/RestClient/internal/rsocketclient"
	"github.com/earthfall/RestClient/internal/vars"
)

type Runner struct {
	out     io.Writer
	http    *httpclient.Client
	rsocket *rsocketclient.Client
	envName string
	printer *printer
}

func New(out io.Writer, env *vars.Manager, opts httpclient.Options, envName string) *Runner {
	if envName == "" {
		envName = vars.DefaultEnvironment
	}
	return &Runner{
		out:     out,
		http:    httpclient.NewClient(env, opts),
		rsocket: rsocketclient.NewClient(env, opts.Timeout),
		envName: envName,
		printer: newPrinter(out),
	}
}

// HTTPClient exposes the underlying client so callers can swap its transport.
func (r *Runner) HTTPClient() *httpclient.Client {
	return r.http
}

func (r *Runner) Run(ctx context.Context, doc *restfile.Document) error {
	if len(doc.Requests) == 0 {
		fmt.Fprintln(r.out, "No requests found in file")
		return nil
	}

	for i, request := range doc.Requests {
		if i > 0 {
			r.printer.divider()
		}
		if err := r.runOne(ctx, request); err != nil {
			r.printer.failure(err)
			return err
		}
	}
	return nil
}

func (r *Runner) runOne(ctx context.Context, request restfile.Request) error {
	switch request.Kind() {
	case restfile.KindHTTP:
		return r.runHTTP(ctx, request.HTTP)
	case restfile.KindWebSocket:
		return r.runWebSocket(ctx, request.WebSocket)
	case restfile.KindGraphQL:
		return r.runGraphQL(ctx, request.GraphQL)
	case restfile.KindRSocket:
		return r.runRSocket(ctx, request.RSocket)
	default:
		return errdef.New(errdef.CodeUnknown, "request has no payload")
	}
}

func (r *Runner) runHTTP(ctx context.Context, req *restfile.HTTPRequest) error {
	r.printer.httpRequest(req)
	resp, err := r.http.Execute(ctx, req, r.envName)
	if err != nil {
		return err
	}
	r.printer.response(resp)
	return nil
}

func (r *Runner) runWebSocket(ctx context.Context, req *restfile.WebSocketRequest) error {
	r.printer.title("WebSocket Request")
	transcript, err := r.http.ExecuteWebSocket(ctx, req, r.envName)
	if transcript != nil {
		r.printer.socketTranscript(transcript)
	}
	return err
}

func (r *Runner) runGraphQL(ctx context.Context, req *restfile.GraphQLRequest) error {
	r.printer.title("GraphQL Request")
	r.printer.graphQLRequest(req)
	resp, err := r.http.ExecuteGraphQL(ctx, req, r.envName)
	if err != nil {
		return err
	}
	r.printer.response(resp)
	return nil
}

func (r *Runner) runRSocket(ctx context.Context, req *restfile.RSocketRequest) error {
	r.printer.title("RSocket Request")
	exchanges, err := r.rsocket.Execute(ctx, req, r.envName)
	r.printer.rsocketExchanges(exchanges)
	return err
}

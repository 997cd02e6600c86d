package runner

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/earthfall/RestClient/internal/httpclient"
	"github.com/earthfall/RestClient/internal/restfile"
	"github.com/earthfall/RestClient/internal/rsocketclient"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	methodStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	statusOK     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	statusBad    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dividerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	arrowOut     = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Render(">>")
	arrowIn      = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("<<")
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
)

type printer struct {
	out io.Writer
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out}
}

func (p *printer) divider() {
	fmt.Fprintf(p.out, "\n%s\n\n", dividerStyle.Render(strings.Repeat("=", 80)))
}

func (p *printer) title(text string) {
	fmt.Fprintf(p.out, "%s\n\n", titleStyle.Render("### "+text))
}

func (p *printer) failure(err error) {
	fmt.Fprintf(p.out, "%s %v\n", errorStyle.Render("error:"), err)
}

func (p *printer) httpRequest(req *restfile.HTTPRequest) {
	if req.Name != "" {
		p.title(req.Name)
	}
	fmt.Fprintf(p.out, "%s %s\n", methodStyle.Render(req.Method), req.URI)
	if len(req.Headers) > 0 {
		fmt.Fprintln(p.out, "Headers:")
		for key, value := range req.Headers {
			fmt.Fprintf(p.out, "  %s\n", headerStyle.Render(key+": "+value))
		}
	}
	if req.Body != nil {
		fmt.Fprintf(p.out, "Body:\n%s\n", *req.Body)
	}
	fmt.Fprintln(p.out)
}

func (p *printer) graphQLRequest(req *restfile.GraphQLRequest) {
	fmt.Fprintf(p.out, "Query:\n%s\n", req.Query)
	if req.Variables != nil {
		if pretty, err := json.MarshalIndent(req.Variables, "", "  "); err == nil {
			fmt.Fprintf(p.out, "Variables:\n%s\n", pretty)
		}
	}
	fmt.Fprintln(p.out)
}

func (p *printer) response(resp *httpclient.Response) {
	style := statusOK
	if resp.StatusCode >= 400 {
		style = statusBad
	}
	fmt.Fprintf(p.out, "%s %s\n", resp.Proto, style.Render(resp.Status))
	for key, values := range resp.Headers {
		for _, value := range values {
			fmt.Fprintf(p.out, "%s\n", headerStyle.Render(key+": "+value))
		}
	}
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, string(resp.Body))
}

func (p *printer) socketTranscript(t *httpclient.SocketTranscript) {
	for _, event := range t.Events {
		switch {
		case event.Direction == "send":
			fmt.Fprintf(p.out, "%s %s\n", arrowOut, event.Text)
		case event.Type == "close":
			fmt.Fprintf(p.out, "%s closed (%d %s)\n", arrowIn, event.Code, event.Reason)
		case event.Type == "binary":
			fmt.Fprintf(p.out, "%s [%d bytes]\n", arrowIn, event.Size)
		default:
			fmt.Fprintf(p.out, "%s %s\n", arrowIn, event.Text)
		}
	}
	fmt.Fprintf(p.out, "\nsent %d, received %d in %s (closed by %s)\n",
		t.Sent, t.Received, t.Duration.Round(time.Millisecond), t.ClosedBy)
}

func (p *printer) rsocketExchanges(exchanges []rsocketclient.Exchange) {
	for _, exchange := range exchanges {
		fmt.Fprintf(p.out, "%s %s\n", arrowOut, exchange.Request)
		fmt.Fprintf(p.out, "%s %s\n", arrowIn, exchange.Response)
	}
}

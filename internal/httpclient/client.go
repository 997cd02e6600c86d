package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/earthfall/RestClient/internal/errdef"
	"github.com/earthfall/RestClient/internal/restfile"
	"github.com/earthfall/RestClient/internal/vars"
)

// Client executes HTTP and GraphQL descriptors. Template substitution happens
// here, at execution time - descriptors arrive with their placeholders intact.
type Client struct {
	env         *vars.Manager
	opts        Options
	httpFactory func(Options) (*http.Client, error)
}

func NewClient(env *vars.Manager, opts Options) *Client {
	return &Client{
		env:         env,
		opts:        opts,
		httpFactory: buildHTTPClient,
	}
}

// SetHTTPFactory overrides how http.Client instances are created. Passing nil
// restores the default factory.
func (c *Client) SetHTTPFactory(factory func(Options) (*http.Client, error)) {
	if factory == nil {
		factory = buildHTTPClient
	}
	c.httpFactory = factory
}

type Response struct {
	Status       string
	StatusCode   int
	Proto        string
	Headers      http.Header
	Body         []byte
	Duration     time.Duration
	EffectiveURL string
}

func (c *Client) Execute(
	ctx context.Context,
	req *restfile.HTTPRequest,
	envName string,
) (*Response, error) {
	uri := c.env.ResolveString(envName, req.URI)
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Scheme == "" {
		return nil, errdef.New(errdef.CodeHTTP, "invalid url %q", uri)
	}

	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		resolved := c.env.ResolveString(envName, *req.Body)
		if contentType, ok := restfile.HeaderValue(req.Headers, "Content-Type"); ok &&
			strings.HasPrefix(strings.ToLower(contentType), "application/json") {
			if !json.Valid([]byte(resolved)) {
				return nil, errdef.New(errdef.CodeHTTP, "request body is not valid json")
			}
		}
		body = strings.NewReader(resolved)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, parsed.String(), body)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeHTTP, err, "build request")
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, c.env.ResolveString(envName, value))
	}

	client, err := c.httpFactory(c.opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeHTTP, err, "perform request")
	}
	defer func() {
		if closeErr := httpResp.Body.Close(); closeErr != nil && err == nil {
			err = errdef.Wrap(errdef.CodeHTTP, closeErr, "close response body")
		}
	}()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeHTTP, err, "read response body")
	}

	return &Response{
		Status:       httpResp.Status,
		StatusCode:   httpResp.StatusCode,
		Proto:        httpResp.Proto,
		Headers:      httpResp.Header.Clone(),
		Body:         data,
		Duration:     time.Since(start),
		EffectiveURL: httpResp.Request.URL.String(),
	}, nil
}

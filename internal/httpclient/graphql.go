package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/earthfall/RestClient/internal/errdef"
	"github.com/earthfall/RestClient/internal/restfile"
)

type graphQLEnvelope struct {
	Query     string      `json:"query"`
	Variables interface{} `json:"variables,omitempty"`
}

// ExecuteGraphQL posts the standard {query, variables} envelope. Variables
// pass through template resolution as JSON text so placeholders inside values
// resolve the same way they do in bodies.
func (c *Client) ExecuteGraphQL(
	ctx context.Context,
	req *restfile.GraphQLRequest,
	envName string,
) (*Response, error) {
	uri := c.env.ResolveString(envName, req.URI)
	if parsed, err := url.Parse(uri); err != nil || parsed.Scheme == "" {
		return nil, errdef.New(errdef.CodeGraphQL, "invalid graphql url %q", uri)
	}

	envelope := graphQLEnvelope{Query: c.env.ResolveString(envName, req.Query)}
	if req.Variables != nil {
		raw, err := json.Marshal(req.Variables)
		if err != nil {
			return nil, errdef.Wrap(errdef.CodeGraphQL, err, "encode variables")
		}
		resolved := c.env.ResolveString(envName, string(raw))
		var value interface{}
		if err := json.Unmarshal([]byte(resolved), &value); err != nil {
			return nil, errdef.Wrap(errdef.CodeGraphQL, err, "variables no longer valid json after substitution")
		}
		envelope.Variables = value
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeGraphQL, err, "encode graphql request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, bytes.NewReader(payload))
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeGraphQL, err, "build request")
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, c.env.ResolveString(envName, value))
	}
	if _, ok := restfile.HeaderValue(req.Headers, "Content-Type"); !ok {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	client, err := c.httpFactory(c.opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeGraphQL, err, "perform request")
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeGraphQL, err, "read response body")
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, errdef.New(errdef.CodeGraphQL,
			"graphql request failed with status %s: %s", httpResp.Status, data)
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

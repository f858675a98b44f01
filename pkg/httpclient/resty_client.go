package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout, "")}
}

// NewAuthenticatedRestyClient creates a RestyClient that sends the given
// bearer token on every request. Token refresh is not handled here.
func NewAuthenticatedRestyClient(timeout time.Duration, token string) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout, token)}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout, "")
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration, token string) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	if token != "" {
		c.SetAuthToken(token)
	}
	return c
}

// Get performs an HTTP GET request with the specified context, URL, and options.
func (r *RestyClient) Get(ctx context.Context, url string, opts *RequestOptions) (Response, error) {
	return r.execute(ctx, http.MethodGet, url, nil, opts)
}

// Post performs an HTTP POST request. A *File body is sent as a multipart
// form; any other non-nil body is sent as JSON.
func (r *RestyClient) Post(ctx context.Context, url string, body any, opts *RequestOptions) (Response, error) {
	return r.execute(ctx, http.MethodPost, url, body, opts)
}

// Delete performs an HTTP DELETE request with the specified context, URL, and options.
func (r *RestyClient) Delete(ctx context.Context, url string, opts *RequestOptions) (Response, error) {
	return r.execute(ctx, http.MethodDelete, url, nil, opts)
}

func (r *RestyClient) execute(ctx context.Context, method, url string, body any, opts *RequestOptions) (Response, error) {
	req := r.client.R().SetContext(ctx)

	if opts != nil {
		if len(opts.Query) > 0 {
			req.SetQueryParams(opts.Query)
		}
		if len(opts.Headers) > 0 {
			req.SetHeaders(opts.Headers)
		}
		if opts.Result != nil {
			req.SetResult(opts.Result)
		}
	}

	switch b := body.(type) {
	case nil:
	case *File:
		req.SetFileReader(b.FieldName, b.FileName, b.Reader)
	case File:
		req.SetFileReader(b.FieldName, b.FileName, b.Reader)
	default:
		req.SetHeader("Content-Type", "application/json")
		req.SetBody(body)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("http response status %d: %s", resp.StatusCode(), readBodySnippet(resp.Body()))
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// readBodySnippet trims an error body down to a loggable size.
func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }

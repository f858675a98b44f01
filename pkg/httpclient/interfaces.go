package httpclient

import (
	"context"
	"io"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// RequestOptions carries per-request query parameters, headers, and an
// optional Result pointer the transport decodes a successful JSON body into.
type RequestOptions struct {
	Query   map[string]string
	Headers map[string]string
	Result  any
}

// File describes a multipart upload. Passing it as a Post body makes the
// transport send a multipart form with the content under FieldName and set
// the multipart content-type header.
type File struct {
	FieldName string
	FileName  string
	Reader    io.Reader
}

// Client abstracts HTTP calls so callers can inject mocks or different
// transports. Implementations report non-2xx statuses as errors; callers
// receive transport failures unchanged.
type Client interface {
	Get(ctx context.Context, url string, opts *RequestOptions) (Response, error)
	Post(ctx context.Context, url string, body any, opts *RequestOptions) (Response, error)
	Delete(ctx context.Context, url string, opts *RequestOptions) (Response, error)
}

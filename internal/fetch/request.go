// Package fetch implements the Config-Resolving HTTP Fetcher: a dispatcher
// that resolves a logical URI against one of three backends (inline data
// URI, config-file manifest, or a retrying HTTP client) behind one uniform
// Request/Response shape.
package fetch

import (
	"fmt"
	"io"
	"net/http"
)

// Request describes one fetch: a logical URI, an HTTP method (ignored by
// the data and file resolvers), and a mutable header bag a caller or
// RequestConfigurator may add to before the request is dispatched.
//
// A Request may be dispatched at most once: Do takes ownership of it.
type Request struct {
	URI     string
	Method  string
	Headers http.Header

	bodyRequested bool
}

// NewRequest builds a Request for uri using method (defaulting to GET).
func NewRequest(uri, method string) *Request {
	if method == "" {
		method = http.MethodGet
	}
	return &Request{URI: uri, Method: method, Headers: make(http.Header)}
}

// SetHeader sets a single header on the request, overwriting any prior
// value under that key.
func (r *Request) SetHeader(key, value string) {
	r.Headers.Set(key, value)
}

// markBodyRequested enforces the "body stream requested at most once"
// invariant: transport bodies are not safe to read twice, and neither the
// HTTP nor the file resolver attempt to buffer and replay one.
func (r *Request) markBodyRequested() error {
	if r.bodyRequested {
		return fmt.Errorf("fetch: request body for %q already consumed", r.URI)
	}
	r.bodyRequested = true
	return nil
}

// Response is the uniform result of a dispatched Request. Synthetic
// responses (data URIs, file resolutions that don't involve a real HTTP
// round trip) always report StatusCode 200 and Reason "OK".
type Response struct {
	StatusCode int
	Reason     string
	Headers    http.Header
	Body       io.ReadCloser
}

// Close releases the response body, if any. Safe to call on a nil Body.
func (r *Response) Close() error {
	if r == nil || r.Body == nil {
		return nil
	}
	return r.Body.Close()
}

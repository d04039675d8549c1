package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mapfish/printplan/internal/ctxlog"
	"github.com/mapfish/printplan/internal/mdc"
)

// RequestConfigurator customizes a *http.Request before it is sent, run in
// registration order ahead of every attempt (not just the first), so a
// configurator reacting to e.g. a signed-URL expiry can refresh itself on
// retry.
type RequestConfigurator func(*http.Request) error

// RetryExhausted5xxError reports that the resolver ran out of attempts and
// the final attempt returned a server error status.
type RetryExhausted5xxError struct {
	URI         string
	Attempts    int
	LastStatus  int
	LastReason  string
}

func (e *RetryExhausted5xxError) Error() string {
	return fmt.Sprintf(
		"fetch: %q failed after %d attempt(s), last response %d %s",
		e.URI, e.Attempts, e.LastStatus, e.LastReason,
	)
}

// RetryExhaustedTransportError reports that the resolver ran out of
// attempts and the final attempt failed below the HTTP layer (DNS,
// connection refused, TLS, timeout) without getting a response.
type RetryExhaustedTransportError struct {
	URI      string
	Attempts int
	Cause    error
}

func (e *RetryExhaustedTransportError) Error() string {
	return fmt.Sprintf("fetch: %q failed after %d attempt(s): %v", e.URI, e.Attempts, e.Cause)
}

func (e *RetryExhaustedTransportError) Unwrap() error { return e.Cause }

// ErrInterrupted is returned when ctx is cancelled while the resolver is
// asleep between retry attempts, distinct from an exhausted-retries error:
// the caller asked to stop, the resolver didn't give up on its own.
type ErrInterrupted struct {
	URI string
}

func (e *ErrInterrupted) Error() string {
	return fmt.Sprintf("fetch: retrying %q interrupted", e.URI)
}

// HTTPResolver is the retrying resolver (C9): it builds one *http.Request
// per attempt, runs every registered RequestConfigurator, then injects
// correlation headers from the ambient MDC before every attempt, and retries
// transport errors and 5xx responses up to MaxAttempts times total.
type HTTPResolver struct {
	Client         *http.Client
	Configurators  []RequestConfigurator
	MaxAttempts    int
	RetryInterval  time.Duration
}

// NewHTTPResolver returns a resolver with sane defaults: the shared
// http.DefaultClient, 3 attempts, and a 1-second wait between them.
func NewHTTPResolver() *HTTPResolver {
	return &HTTPResolver{
		Client:        http.DefaultClient,
		MaxAttempts:   3,
		RetryInterval: time.Second,
	}
}

func (h *HTTPResolver) maxAttempts() int {
	if h.MaxAttempts <= 0 {
		return 1
	}
	return h.MaxAttempts
}

func (h *HTTPResolver) client() *http.Client {
	if h.Client == nil {
		return http.DefaultClient
	}
	return h.Client
}

// Resolve implements the retry loop. Per attempt: build the transport
// request fresh (a body, if req carries one, is only readable once; see
// Request.markBodyRequested), run every configurator, inject MDC-derived
// correlation headers, send, and classify the result.
func (h *HTTPResolver) Resolve(ctx context.Context, req *Request) (*Response, error) {
	if err := req.markBodyRequested(); err != nil {
		return nil, err
	}

	logger := ctxlog.FromContext(ctx).With("uri", req.URI, "method", req.Method)
	diagnostic := mdc.FromContext(ctx)

	attempts := h.maxAttempts()
	var lastErr error
	var lastResp *Response

	for attempt := 1; attempt <= attempts; attempt++ {
		logger.Debug("fetching URI resource", "attempt", attempt, "headers", req.Headers)

		httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URI, nil)
		if err != nil {
			return nil, fmt.Errorf("fetch: building request for %q: %w", req.URI, err)
		}
		for k, vs := range req.Headers {
			for _, v := range vs {
				httpReq.Header.Add(k, v)
			}
		}
		for _, configure := range h.Configurators {
			if err := configure(httpReq); err != nil {
				return nil, fmt.Errorf("fetch: configuring request for %q: %w", req.URI, err)
			}
		}
		injectCorrelationHeaders(httpReq, diagnostic)

		resp, err := h.client().Do(httpReq)
		if err != nil {
			lastErr = err
			lastResp = nil
		} else {
			lastErr = nil
			lastResp = &Response{
				StatusCode: resp.StatusCode,
				Reason:     http.StatusText(resp.StatusCode),
				Headers:    resp.Header,
				Body:       resp.Body,
			}
			if resp.StatusCode < 500 {
				return lastResp, nil
			}
			logger.Debug("retrying after server error", "attempt", attempt, "status", resp.StatusCode)
			if resp.Body != nil {
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
			}
		}

		if attempt == attempts {
			break
		}
		if err := interruptibleSleep(ctx, h.RetryInterval); err != nil {
			return nil, &ErrInterrupted{URI: req.URI}
		}
	}

	if lastErr != nil {
		return nil, &RetryExhaustedTransportError{URI: req.URI, Attempts: attempts, Cause: lastErr}
	}
	return nil, &RetryExhausted5xxError{
		URI:        req.URI,
		Attempts:   attempts,
		LastStatus: lastResp.StatusCode,
		LastReason: lastResp.Reason,
	}
}

// injectCorrelationHeaders sets the X-Request-ID/X-Job-ID/X-Application-ID
// headers from the ambient diagnostic context, overwriting any value the
// caller or a configurator already set, last and unconditionally, before
// every single attempt.
func injectCorrelationHeaders(httpReq *http.Request, diagnostic mdc.Context) {
	if jobID, ok := diagnostic[mdc.JobIDKey]; ok {
		httpReq.Header.Set("X-Request-ID", jobID)
		httpReq.Header.Set("X-Job-ID", jobID)
	}
	if appID, ok := diagnostic[mdc.ApplicationIDKey]; ok {
		httpReq.Header.Set("X-Application-ID", appID)
	}
}

// interruptibleSleep waits for d or until ctx is cancelled, whichever
// comes first.
func interruptibleSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

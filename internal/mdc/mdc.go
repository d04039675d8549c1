// Package mdc implements the mapped diagnostic context (MDC): a small
// per-task key-value map used to correlate log lines and propagate request
// identifiers across asynchronous work.
package mdc

import "context"

// Well-known keys the fetcher looks for when injecting correlation headers.
const (
	JobIDKey         = "jobId"
	ApplicationIDKey = "applicationId"
)

// Context is a diagnostic-context snapshot: a plain string map, safe to
// copy by value since maps are reference types; callers must use Copy to
// get an independent snapshot.
type Context map[string]string

// Copy returns an independent copy of c. A nil receiver copies to an empty,
// non-nil map.
func (c Context) Copy() Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Equal reports whether c and other hold the same keys and values.
func (c Context) Equal(other Context) bool {
	if len(c) != len(other) {
		return false
	}
	for k, v := range c {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

type ctxKey struct{}

// WithContext attaches mdc to ctx, replacing whatever was there.
func WithContext(ctx context.Context, mdc Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, mdc)
}

// FromContext returns the diagnostic context carried by ctx, or an empty,
// non-nil Context if none was attached.
func FromContext(ctx context.Context) Context {
	if v, ok := ctx.Value(ctxKey{}).(Context); ok {
		return v
	}
	return Context{}
}

// Swap saves the diagnostic context currently on ctx, installs snapshot onto
// a derived context if it differs from the current one, runs fn with that
// derived context, and always returns to the caller having left the
// original ctx's value untouched (ctx is never mutated; a new context is
// threaded through fn instead). The snapshot is installed only when it
// actually differs from the current context.
func Swap(ctx context.Context, snapshot Context, fn func(context.Context) error) error {
	current := FromContext(ctx)
	runCtx := ctx
	if !current.Equal(snapshot) {
		runCtx = WithContext(ctx, snapshot)
	}
	return fn(runCtx)
}

package fetch

import (
	"context"

	"github.com/mapfish/printplan/internal/config"
	"github.com/mapfish/printplan/internal/mdc"
)

// Factory creates and dispatches requests on behalf of processors that run
// on arbitrary workers, long after the task that created the factory has
// moved on. It captures a snapshot of the diagnostic context at creation
// time; every Do call then runs against that snapshot, installed only if
// it differs from whatever context the calling worker currently carries,
// and the worker's own diagnostic context is left untouched on every exit
// path, success or failure.
type Factory struct {
	dispatcher *Dispatcher
	snapshot   mdc.Context
}

// NewFactory builds a Factory around cfg, capturing the diagnostic context
// carried by ctx at this moment. cfg may be nil if no config-backed URIs
// will ever be dispatched.
func NewFactory(ctx context.Context, cfg config.Configuration) *Factory {
	return &Factory{
		dispatcher: NewDispatcher(cfg),
		snapshot:   mdc.FromContext(ctx).Copy(),
	}
}

// HTTP exposes the underlying retrying HTTP resolver so callers can adjust
// its attempt count, retry interval, client, or configurators before the
// first dispatch.
func (f *Factory) HTTP() *HTTPResolver {
	return f.dispatcher.HTTP
}

// NewRequest builds a Request for uri using method (defaulting to GET),
// ready to hand to Do.
func (f *Factory) NewRequest(uri, method string) *Request {
	return NewRequest(uri, method)
}

// Do dispatches req under the factory's captured diagnostic context, so
// correlation headers injected by the HTTP resolver reflect the job that
// created the factory rather than whichever worker happens to execute the
// fetch.
func (f *Factory) Do(ctx context.Context, req *Request) (*Response, error) {
	var resp *Response
	err := mdc.Swap(ctx, f.snapshot, func(runCtx context.Context) error {
		var dispatchErr error
		resp, dispatchErr = f.dispatcher.Do(runCtx, req)
		return dispatchErr
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

package fetch

import (
	"context"
	"fmt"

	"github.com/mapfish/printplan/internal/config"
)

// Dispatcher routes a Request to one of three backends by URI scheme:
// data: URIs resolve inline, local URIs (file, classpath, servlet, or no
// scheme at all) resolve through a Configuration, and everything else is
// handed to the retrying HTTP resolver.
type Dispatcher struct {
	Configuration config.Configuration
	HTTP          *HTTPResolver
}

// NewDispatcher returns a Dispatcher with a default HTTPResolver. cfg may
// be nil if the caller never dispatches config-file-backed URIs.
func NewDispatcher(cfg config.Configuration) *Dispatcher {
	return &Dispatcher{Configuration: cfg, HTTP: NewHTTPResolver()}
}

// Do resolves req against the appropriate backend: "data" goes inline,
// "file"/"classpath"/"servlet"/absent goes through the Configuration, and
// anything else (including unrecognized schemes) is handed to the
// transport.
func (d *Dispatcher) Do(ctx context.Context, req *Request) (*Response, error) {
	switch uriScheme(req.URI) {
	case "data":
		return resolveData(req.URI)
	case "file", "classpath", "servlet", "":
		if d.Configuration == nil {
			return nil, fmt.Errorf("fetch: %q needs a Configuration but none was configured", req.URI)
		}
		return resolveFile(ctx, d.Configuration, req)
	default:
		return d.HTTP.Resolve(ctx, req)
	}
}

// uriScheme extracts the scheme prefix of a URI string ("data" from
// "data:...", "http" from "http://..."), returning "" when the string has
// no valid scheme prefix at all, e.g. a bare filesystem path like
// "./testdata/foo.bin" or "/etc/foo", which must dispatch as a local
// resource rather than be mistaken for a scheme-carrying URI. A valid
// scheme is an ASCII letter followed by letters, digits, '+', '-', or '.',
// terminated by ':' (RFC 3986 §3.1), checked directly over the string
// rather than via net/url so malformed or opaque URIs never error here.
func uriScheme(uri string) string {
	for i := 0; i < len(uri); i++ {
		c := uri[i]
		switch {
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
			continue
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
			continue
		case c == ':' && i > 0:
			return uri[:i]
		default:
			return ""
		}
	}
	return ""
}

package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mapfish/printplan/internal/config"
)

// ConfigFileLoadFailed wraps a Configuration.Load failure with the URI that
// triggered it.
type ConfigFileLoadFailed struct {
	URI   string
	Cause error
}

func (e *ConfigFileLoadFailed) Error() string {
	return fmt.Sprintf("fetch: loading config-backed resource %q: %v", e.URI, e.Cause)
}

func (e *ConfigFileLoadFailed) Unwrap() error { return e.Cause }

// resolveFile implements C8: resolve req's URI through cfg, producing a
// synthetic 200 response. Content-Length is always the decoded byte count.
// Content-Type is set by probing the resolved file's extension only when
// Configuration.Locate reports a concrete on-disk path; an abstract
// resource (no path) gets no Content-Type header at all, rather than one
// guessed from the logical URI itself.
func resolveFile(ctx context.Context, cfg config.Configuration, req *Request) (*Response, error) {
	if err := req.markBodyRequested(); err != nil {
		return nil, err
	}

	data, err := cfg.Load(ctx, req.URI)
	if err != nil {
		return nil, &ConfigFileLoadFailed{URI: req.URI, Cause: err}
	}

	headers := make(http.Header)
	headers.Set("Content-Length", strconv.Itoa(len(data)))
	if path, ok := cfg.Locate(req.URI); ok {
		if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
			headers.Set("Content-Type", ct)
		}
	}

	return &Response{
		StatusCode: http.StatusOK,
		Reason:     "OK",
		Headers:    headers,
		Body:       io.NopCloser(strings.NewReader(string(data))),
	}, nil
}

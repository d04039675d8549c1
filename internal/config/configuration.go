// Package config provides the Configuration trait the fetcher's Config-File
// Resolver (C8) depends on: a way to turn a logical config-backed URI
// (file:, classpath:, servlet:, or scheme-less) into either loaded bytes
// or, when one exists, a concrete on-disk path.
package config

import "context"

// Configuration resolves logical configuration-file URIs. Load always
// succeeds or fails outright; Locate additionally reports whether the
// resource corresponds to a real filesystem path: some config-backed
// resources are abstract (classpath/servlet-style) and have no path to
// report.
type Configuration interface {
	Load(ctx context.Context, uri string) ([]byte, error)
	Locate(uri string) (path string, ok bool)
}

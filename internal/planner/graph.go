package planner

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/mapfish/printplan/internal/planner/events"
)

// Graph is the immutable, acyclic execution plan relating processors by
// data dependency: every processor's inputs are produced either by the
// attribute pool or by some earlier-running processor.
type Graph struct {
	// Roots holds every node with no unmet dependency.
	Roots []*Node
	// Nodes holds every node in the graph, in build (processor list) order.
	Nodes []*Node

	dag *adjacency
}

// Option configures a Build call.
type Option func(*buildConfig)

type buildConfig struct {
	emitter events.Emitter
}

// WithEmitter attaches an observability Emitter to every node the builder
// creates; each node reports its own lifecycle transitions to it during
// execution (outside this package's concern; Build itself never emits
// anything but PhaseScheduled, once, right after a node is created).
func WithEmitter(e events.Emitter) Option {
	return func(c *buildConfig) { c.emitter = e }
}

// freshSuffix returns a short, URL-safe random token used to disambiguate a
// renamed, colliding renameable output. A full UUID library would be
// overkill for a value that only needs to be unique within one graph build,
// so this generates 8 random bytes (hex-encoded) directly with
// crypto/rand.
func freshSuffix() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand.Read on a supported platform does not fail in
		// practice; if it somehow does, degrade to a fixed marker rather
		// than panicking mid-build.
		return "fallback"
	}
	return hex.EncodeToString(b[:])
}

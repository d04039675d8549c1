package planner

import (
	"fmt"

	"github.com/mapfish/printplan/internal/planner/events"
	"github.com/mapfish/printplan/internal/processor"
)

// Node wraps one processor instance with its resolved position in the
// dependency graph. Nodes are created once during Build and are never
// mutated afterward except by the builder itself while it is still
// assembling edges.
type Node struct {
	// Processor is the wrapped processor instance.
	Processor processor.Processor

	// ID is the node's observability key: a stable, human-readable
	// identifier combining the processor's position and type name.
	ID string

	// Root is true if this node has no unmet dependencies: every one of
	// its inputs is satisfied directly by an attribute.
	Root bool

	graph   *Graph
	emitter events.Emitter
}

// Dependents returns the IDs of every node that directly depends on n's
// output.
func (n *Node) Dependents() []string {
	return n.graph.dag.dependents(n.ID)
}

func (n *Node) notify(phase events.Phase, detail string) {
	if n.emitter == nil {
		return
	}
	n.emitter.Emit(n.ID, phase, detail)
}

func nodeID(index int, p processor.Processor) string {
	return fmt.Sprintf("processor[%d]:%T", index, p)
}

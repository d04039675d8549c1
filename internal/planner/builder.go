// Package planner builds the processor dependency graph (C3/C4) and fills
// declarative attributes through it (C5). It is the load-bearing core of
// this module: given an ordered processor list and an attribute catalogue,
// it produces a DAG in which every processor's inputs are satisfiably wired
// to either an attribute or an earlier processor's output, with duplicate
// and type-conflict detection along the way.
package planner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mapfish/printplan/internal/planner/events"
	"github.com/mapfish/printplan/internal/processor"
	"github.com/mapfish/printplan/internal/valueset"
	"github.com/zclconf/go-cty/cty"
)

// Build constructs a Graph from processors, in the given order, resolving
// each processor's inputs against attrs plus the fixed ambient catalogue
// and the outputs of earlier processors. The ordering is the contract: the
// caller decides priority, and a single forward pass both yields an acyclic
// graph and gives deterministic conflict diagnostics.
func Build(ctx context.Context, processors []processor.Processor, attrs map[string]cty.Type, opts ...Option) (*Graph, error) {
	logger := slog.Default()

	cfg := &buildConfig{emitter: events.Noop{}}
	for _, o := range opts {
		o(cfg)
	}
	logger.Debug("building processor graph", "processors", len(processors), "attributes", len(attrs))

	graph := &Graph{dag: newAdjacency()}

	producerByName := make(map[string]*Node)
	typeByName := make(map[string]cty.Type, len(attrs)+8)
	for k, v := range attrs {
		typeByName[k] = v
	}
	for k, v := range ambientAttributes() {
		typeByName[k] = v
	}

	for i, p := range processors {
		id := nodeID(i, p)
		graph.dag.addNode(id)
		node := &Node{Processor: p, ID: id, graph: graph, emitter: cfg.emitter}

		inputs, err := valueset.Describe(id, p)
		if err != nil {
			return nil, err
		}

		isRoot := true
		for _, in := range inputs {
			if in.ExternalName == processor.ValuesKey {
				linked, err := linkWildcard(node, p, producerByName, graph)
				if err != nil {
					return nil, err
				}
				if linked {
					isRoot = false
				}
				continue
			}

			producerType, known := typeByName[in.ExternalName]
			if !known {
				if in.HasDefault {
					continue
				}
				return nil, &MissingInputError{Processor: id, Input: in.ExternalName}
			}

			if !assignable(in.Type, producerType) {
				producerNode, hasProducer := producerByName[in.ExternalName]
				conflict := &TypeConflictError{
					Processor:    id,
					Input:        in.ExternalName,
					InputType:    typeString(in.Type),
					ProducerType: typeString(producerType),
				}
				if hasProducer {
					conflict.ProducerProcessor = producerNode.ID
				}
				return nil, conflict
			}

			if producerNode, hasProducer := producerByName[in.ExternalName]; hasProducer {
				if err := graph.dag.addEdge(producerNode.ID, node.ID); err != nil {
					return nil, fmt.Errorf("planner: linking %q -> %q: %w", producerNode.ID, node.ID, err)
				}
				isRoot = false
			}
		}

		node.Root = isRoot
		if isRoot {
			graph.Roots = append(graph.Roots, node)
		}

		outputs, err := valueset.DescribeOutputs(id, p)
		if err != nil {
			return nil, err
		}
		for _, out := range outputs {
			name := out.ExternalName
			if _, exists := typeByName[name]; exists {
				if out.Renameable {
					name = name + "_" + freshSuffix()
				} else if existingProducer, hasProducer := producerByName[name]; hasProducer {
					return nil, &DuplicateOutputError{Output: name, FirstProcessor: existingProducer.ID, ConflictingProcessor: id}
				} else {
					return nil, &OutputClashesWithAttributeError{Output: name, Processor: id}
				}
			}
			producerByName[name] = node
			typeByName[name] = out.Type
		}

		graph.Nodes = append(graph.Nodes, node)

		// Pass-through registration: an input also marked as an output
		// republishes under its own name, produced by this node, so later
		// processors see this node (not whatever produced it originally)
		// as the authority for that name.
		for _, in := range inputs {
			if in.IsAlsoOutput {
				producerByName[in.ExternalName] = node
			}
		}

		node.notify(events.PhaseScheduled, "")
	}

	if err := checkReachability(graph); err != nil {
		return nil, err
	}

	return graph, nil
}

// linkWildcard handles the reserved VALUES input: either narrowing to a
// CustomDependencies processor's declared names, or, lacking that
// capability, depending on every producer known so far. Returns whether
// any edge was actually added (so the caller can update isRoot).
func linkWildcard(node *Node, p processor.Processor, producerByName map[string]*Node, graph *Graph) (bool, error) {
	linked := false
	if cd, ok := p.(processor.CustomDependencies); ok {
		for _, name := range cd.Dependencies() {
			producerNode, hasProducer := producerByName[name]
			if !hasProducer {
				continue
			}
			if err := graph.dag.addEdge(producerNode.ID, node.ID); err != nil {
				return false, fmt.Errorf("planner: linking custom dependency %q -> %q: %w", producerNode.ID, node.ID, err)
			}
			linked = true
		}
		return linked, nil
	}

	for _, producerNode := range producerByName {
		if err := graph.dag.addEdge(producerNode.ID, node.ID); err != nil {
			return false, fmt.Errorf("planner: linking %q -> %q: %w", producerNode.ID, node.ID, err)
		}
		linked = true
	}
	return linked, nil
}

// assignable reports whether a value of producerType may satisfy an input
// declared with consumerType. cty.DynamicPseudoType acts as a wildcard on
// either side, the escape hatch for effectively-untyped inputs and
// outputs.
func assignable(consumerType, producerType cty.Type) bool {
	if consumerType.Equals(cty.DynamicPseudoType) || producerType.Equals(cty.DynamicPseudoType) {
		return true
	}
	return consumerType.Equals(producerType)
}

func typeString(t cty.Type) string {
	return t.FriendlyName()
}

// checkReachability guards against pathological loops in caller-supplied
// dependency hints: every processor passed to Build must end up reachable
// from the graph's roots.
func checkReachability(graph *Graph) error {
	rootIDs := make([]string, 0, len(graph.Roots))
	for _, r := range graph.Roots {
		rootIDs = append(rootIDs, r.ID)
	}
	reachable := graph.dag.reachableFromRoots(rootIDs)

	var missing []string
	for _, n := range graph.Nodes {
		if !reachable[n.ID] {
			missing = append(missing, n.ID)
		}
	}
	if len(missing) > 0 {
		return &UnreachableProcessorsError{Missing: missing}
	}

	if err := graph.dag.detectCycles(); err != nil {
		return fmt.Errorf("planner: %w", err)
	}
	return nil
}

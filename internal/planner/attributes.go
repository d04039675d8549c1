package planner

import (
	"context"

	"github.com/mapfish/printplan/internal/processor"
	"github.com/mapfish/printplan/internal/valueset"
)

// FillAttributes runs the graph's nodes, in build order, through a two-pass
// attribute exchange: each node first pulls whatever live attributes it
// requires out of the shared bag (if it implements RequireAttributes), then
// pushes whatever it produces back in (if it implements ProvideAttributes).
// The live bag starts as a copy of initial and is threaded node by node, so
// later processors see every earlier processor's contribution alongside the
// caller-supplied starting values.
//
// A processor's own
// declared attribute contribution always wins over whatever a later
// processor might otherwise overwrite it with, because writes only ever
// happen once, right after that processor's own pull.
func FillAttributes(ctx context.Context, graph *Graph, initial map[string]any) (map[string]any, error) {
	live := make(map[string]any, len(initial))
	for k, v := range initial {
		live[k] = v
	}

	for _, node := range graph.Nodes {
		if req, ok := node.Processor.(processor.RequireAttributes); ok {
			if err := pullAttributes(node, req, live); err != nil {
				return nil, err
			}
		}
		if prov, ok := node.Processor.(processor.ProvideAttributes); ok {
			if err := pushAttributes(node, prov, live); err != nil {
				return nil, err
			}
		}
	}

	return live, nil
}

// pushAttributes copies a node's provided attributes into the live bag,
// one per declared output descriptor: the provided map is keyed by
// internal (Go field) name, the live bag by the output's external name.
// An output with no corresponding entry in Attributes() is left alone.
func pushAttributes(node *Node, prov processor.ProvideAttributes, live map[string]any) error {
	outputs, err := valueset.DescribeOutputs(node.ID, node.Processor)
	if err != nil {
		return err
	}
	provided := prov.Attributes()
	for _, out := range outputs {
		if v, ok := provided[out.InternalName]; ok {
			live[out.ExternalName] = v
		}
	}
	return nil
}

// pullAttributes hands a node only the live values its own declared inputs
// name, translated into the internal field name the processor expects. A
// declared input absent from the live bag is silently skipped: C4 already
// proved every non-default input has a producer, so its absence here just
// means it is supplied by an earlier processor's output rather than by an
// attribute.
func pullAttributes(node *Node, req processor.RequireAttributes, live map[string]any) error {
	inputs, err := valueset.Describe(node.ID, node.Processor)
	if err != nil {
		return err
	}
	for _, in := range inputs {
		if in.ExternalName == processor.ValuesKey {
			for externalName, value := range live {
				if err := req.SetAttribute(externalName, value); err != nil {
					return &AttributeTypeMismatchError{
						Processor:    node.ID,
						ExternalName: externalName,
						InternalName: externalName,
						Cause:        err,
					}
				}
			}
			continue
		}

		value, present := live[in.ExternalName]
		if !present {
			continue
		}
		if err := req.SetAttribute(in.InternalName, value); err != nil {
			return &AttributeTypeMismatchError{
				Processor:    node.ID,
				ExternalName: in.ExternalName,
				InternalName: in.InternalName,
				Cause:        err,
			}
		}
	}
	return nil
}

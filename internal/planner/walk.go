package planner

import (
	"context"
	"sync"

	"github.com/mapfish/printplan/internal/planner/events"
)

// Walk executes fn once per node, respecting the graph's edges: a node is
// handed to fn only after fn has returned successfully for every node it
// depends on. Independent nodes run concurrently, each on its own
// goroutine. The first error (or a cancelled ctx) stops new nodes from
// being scheduled; nodes already in flight run to completion, and the
// first error observed is returned.
//
// Walk is a deliberately thin consumer of the graph: it is the minimal
// execution layer needed to exercise a built plan, not a scheduler.
func Walk(ctx context.Context, graph *Graph, fn func(context.Context, *Node) error) error {
	nodeByID := make(map[string]*Node, len(graph.Nodes))
	remaining := make(map[string]int, len(graph.Nodes))
	for _, n := range graph.Nodes {
		nodeByID[n.ID] = n
		remaining[n.ID] = len(graph.dag.nodes[n.ID].deps)
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		stopped  bool
	)

	var schedule func(n *Node)
	run := func(n *Node) {
		defer wg.Done()

		if err := ctx.Err(); err != nil {
			mu.Lock()
			defer mu.Unlock()
			if firstErr == nil {
				firstErr = err
			}
			stopped = true
			return
		}

		n.notify(events.PhaseRunning, "")
		err := fn(ctx, n)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			n.notify(events.PhaseFailed, err.Error())
			if firstErr == nil {
				firstErr = err
			}
			stopped = true
			return
		}
		n.notify(events.PhaseDone, "")
		if stopped {
			return
		}
		for _, depID := range graph.dag.dependents(n.ID) {
			remaining[depID]--
			if remaining[depID] == 0 {
				schedule(nodeByID[depID])
			}
		}
	}
	schedule = func(n *Node) {
		wg.Add(1)
		go run(n)
	}

	mu.Lock()
	for _, n := range graph.Nodes {
		if remaining[n.ID] == 0 {
			schedule(n)
		}
	}
	mu.Unlock()

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	return firstErr
}

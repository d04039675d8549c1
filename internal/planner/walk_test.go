package planner_test

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/mapfish/printplan/internal/planner"
	"github.com/mapfish/printplan/internal/planner/events"
	"github.com/mapfish/printplan/internal/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// orderRecorder collects the order nodes were handed to the walk callback,
// safely across the walker's goroutines.
type orderRecorder struct {
	mu    sync.Mutex
	order []string
}

func (r *orderRecorder) record(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, id)
}

func (r *orderRecorder) indexOf(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, got := range r.order {
		if got == id {
			return i
		}
	}
	return -1
}

func TestWalk_RespectsDependencyOrder(t *testing.T) {
	p1 := producer("P1", mapOut{})
	p2 := consumer("P2", &legendIn{}, legendOut{})

	graph, err := planner.Build(context.Background(), []processor.Processor{p1, p2}, nil)
	require.NoError(t, err)

	rec := &orderRecorder{}
	err = planner.Walk(context.Background(), graph, func(_ context.Context, n *planner.Node) error {
		rec.record(n.ID)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, rec.order, 2)
	var producerID, consumerID string
	for _, n := range graph.Nodes {
		if n.Processor == p1 {
			producerID = n.ID
		} else {
			consumerID = n.ID
		}
	}
	assert.Less(t, rec.indexOf(producerID), rec.indexOf(consumerID))
}

func TestWalk_VisitsEveryNodeExactlyOnce(t *testing.T) {
	processors := []processor.Processor{
		producer("P0", aOut{}),
		producer("P1", bOut{}),
		&testProcessor{name: "PWildcard", input: &valuesWildcardIn{}},
	}
	graph, err := planner.Build(context.Background(), processors, nil)
	require.NoError(t, err)

	rec := &orderRecorder{}
	err = planner.Walk(context.Background(), graph, func(_ context.Context, n *planner.Node) error {
		rec.record(n.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, rec.order, len(graph.Nodes))
}

func TestWalk_ErrorStopsDependents(t *testing.T) {
	p1 := producer("P1", mapOut{})
	p2 := consumer("P2", &legendIn{}, legendOut{})

	graph, err := planner.Build(context.Background(), []processor.Processor{p1, p2}, nil)
	require.NoError(t, err)

	boom := fmt.Errorf("boom")
	rec := &orderRecorder{}
	err = planner.Walk(context.Background(), graph, func(_ context.Context, n *planner.Node) error {
		rec.record(n.ID)
		return boom
	})

	assert.ErrorIs(t, err, boom)
	// Only the root ran: its failure stopped the dependent from scheduling.
	assert.Len(t, rec.order, 1)
}

func TestWalk_CancelledContextSurfaces(t *testing.T) {
	p1 := producer("P1", mapOut{})
	graph, err := planner.Build(context.Background(), []processor.Processor{p1}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &orderRecorder{}
	err = planner.Walk(ctx, graph, func(_ context.Context, n *planner.Node) error {
		rec.record(n.ID)
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.order, "fn must not run under an already-cancelled context")
}

// phaseRecorder is an events.Emitter capturing every emitted transition.
type phaseRecorder struct {
	mu     sync.Mutex
	phases map[string][]events.Phase
}

func newPhaseRecorder() *phaseRecorder {
	return &phaseRecorder{phases: make(map[string][]events.Phase)}
}

func (r *phaseRecorder) Emit(nodeID string, phase events.Phase, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases[nodeID] = append(r.phases[nodeID], phase)
}

func TestWalk_EmitsLifecyclePhases(t *testing.T) {
	p1 := &testProcessor{name: "P1", output: reflect.TypeOf(mapOut{})}
	rec := newPhaseRecorder()

	graph, err := planner.Build(context.Background(), []processor.Processor{p1}, nil, planner.WithEmitter(rec))
	require.NoError(t, err)
	require.Len(t, graph.Nodes, 1)
	id := graph.Nodes[0].ID

	require.NoError(t, planner.Walk(context.Background(), graph, func(context.Context, *planner.Node) error {
		return nil
	}))
	assert.Equal(t, []events.Phase{events.PhaseScheduled, events.PhaseRunning, events.PhaseDone}, rec.phases[id])
}

func TestWalk_EmitsFailedPhaseOnError(t *testing.T) {
	p1 := &testProcessor{name: "P1", output: reflect.TypeOf(mapOut{})}
	rec := newPhaseRecorder()

	graph, err := planner.Build(context.Background(), []processor.Processor{p1}, nil, planner.WithEmitter(rec))
	require.NoError(t, err)
	id := graph.Nodes[0].ID

	walkErr := planner.Walk(context.Background(), graph, func(context.Context, *planner.Node) error {
		return fmt.Errorf("processor exploded")
	})
	require.Error(t, walkErr)
	assert.Equal(t, []events.Phase{events.PhaseScheduled, events.PhaseRunning, events.PhaseFailed}, rec.phases[id])
}

package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjacency_AddNodeIdempotent(t *testing.T) {
	g := newAdjacency()
	g.addNode("a")
	g.addNode("a")
	assert.Len(t, g.nodes, 1)
}

func TestAdjacency_AddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := newAdjacency()
		g.addNode("a")
		g.addNode("b")

		require.NoError(t, g.addEdge("a", "b"))

		assert.Contains(t, g.nodes["a"].dependents, "b")
		assert.Contains(t, g.nodes["b"].deps, "a")
	})

	t.Run("error cases", func(t *testing.T) {
		g := newAdjacency()
		g.addNode("a")

		assert.ErrorContains(t, g.addEdge("dne", "a"), "source node not found")
		assert.ErrorContains(t, g.addEdge("a", "dne"), "destination node not found")
		assert.ErrorContains(t, g.addEdge("a", "a"), "self-referential edge")
	})
}

func TestAdjacency_DetectCycles(t *testing.T) {
	t.Run("dag has no cycle", func(t *testing.T) {
		g := newAdjacency()
		g.addNode("a")
		g.addNode("b")
		g.addNode("c")
		require.NoError(t, g.addEdge("a", "b"))
		require.NoError(t, g.addEdge("b", "c"))
		assert.NoError(t, g.detectCycles())
	})

	t.Run("direct cycle is detected", func(t *testing.T) {
		g := newAdjacency()
		g.addNode("a")
		g.addNode("b")
		require.NoError(t, g.addEdge("a", "b"))
		require.NoError(t, g.addEdge("b", "a"))
		assert.ErrorContains(t, g.detectCycles(), "cycle detected")
	})
}

func TestAdjacency_ReachableFromRoots(t *testing.T) {
	g := newAdjacency()
	g.addNode("root")
	g.addNode("mid")
	g.addNode("leaf")
	g.addNode("orphan")
	require.NoError(t, g.addEdge("root", "mid"))
	require.NoError(t, g.addEdge("mid", "leaf"))

	reachable := g.reachableFromRoots([]string{"root"})
	assert.True(t, reachable["root"])
	assert.True(t, reachable["mid"])
	assert.True(t, reachable["leaf"])
	assert.False(t, reachable["orphan"])
}

func TestAdjacency_Dependents(t *testing.T) {
	g := newAdjacency()
	g.addNode("a")
	g.addNode("b")
	g.addNode("c")
	require.NoError(t, g.addEdge("a", "b"))
	require.NoError(t, g.addEdge("a", "c"))

	assert.ElementsMatch(t, []string{"b", "c"}, g.dependents("a"))
	assert.Empty(t, g.dependents("dne"))
}

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/carve/internal/members"
)

func TestGraphNodesAndEdges(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddNode("b", members.KindMethod)
	g.AddNode("a", members.KindField)
	g.SetEdge(Edge{Source: "b", Target: "a", Weight: 0.5})

	assert.Equal(t, []string{"a", "b"}, g.Nodes())
	assert.Equal(t, members.KindField, g.Kind("a"))
	assert.True(t, g.HasNode("b"))
	assert.False(t, g.HasNode("c"))

	// Edge endpoints are stored in canonical order.
	edges := g.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, "a", edges[0].Source)
	assert.Equal(t, "b", edges[0].Target)

	assert.InDelta(t, 0.5, g.Weight("a", "b"), 1e-12)
	assert.InDelta(t, 0.5, g.Weight("b", "a"), 1e-12)
	assert.Zero(t, g.Weight("a", "c"))
}

func TestGraphIgnoresSelfLoops(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddNode("a", members.KindMethod)
	g.SetEdge(Edge{Source: "a", Target: "a", Weight: 1})

	assert.Zero(t, g.EdgeCount())
}

func TestGraphNeighbors(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddNode("a", members.KindMethod)
	g.AddNode("b", members.KindMethod)
	g.AddNode("c", members.KindMethod)
	g.SetEdge(Edge{Source: "a", Target: "b", Weight: 0.2})
	g.SetEdge(Edge{Source: "a", Target: "c", Weight: 0.8})

	neighbors := g.Neighbors("a")
	assert.Len(t, neighbors, 2)
	assert.InDelta(t, 0.2, neighbors["b"], 1e-12)
	assert.InDelta(t, 0.8, neighbors["c"], 1e-12)

	assert.InDelta(t, 0.8, g.MaxWeight(), 1e-12)
}

func TestGraphNodeAttrs(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddNode("a", members.KindMethod)

	g.SetNodeAttr("a", "pagerank", 0.3)
	g.SetNodeAttr("missing", "pagerank", 0.9)

	assert.InDelta(t, 0.3, g.NodeAttr("a", "pagerank"), 1e-12)
	assert.Zero(t, g.NodeAttr("missing", "pagerank"))
	assert.Equal(t, map[string]float64{"pagerank": 0.3}, g.NodeAttrs("a"))
}

package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/carve/internal/graph"
	"github.com/Sumatoshi-tech/carve/internal/members"
)

func TestNewPartitioner(t *testing.T) {
	t.Parallel()

	p, err := NewPartitioner(AlgorithmLouvain)
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = NewPartitioner("spectral")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestLouvainPartitionEmptyGraph(t *testing.T) {
	t.Parallel()

	p, err := NewPartitioner(AlgorithmLouvain)
	require.NoError(t, err)

	assert.Empty(t, p.Partition(graph.New(), 1.0))
}

func TestLouvainPartitionCoversAllNodes(t *testing.T) {
	t.Parallel()

	g := newTwoTriangleGraph()

	p, err := NewPartitioner(AlgorithmLouvain)
	require.NoError(t, err)

	groups := p.Partition(g, 1.0)

	seen := map[string]int{}
	for _, group := range groups {
		for _, m := range group {
			seen[m]++
		}
	}

	// Every node appears in exactly one group.
	assert.Len(t, seen, 6)

	for m, n := range seen {
		assert.Equal(t, 1, n, m)
	}
}

func TestSplitConnected(t *testing.T) {
	t.Parallel()

	g := graph.New()
	for _, name := range []string{"a", "b", "c", "d"} {
		g.AddNode(name, members.KindMethod)
	}

	g.SetEdge(graph.Edge{Source: "a", Target: "b", Weight: 1})
	g.SetEdge(graph.Edge{Source: "c", Target: "d", Weight: 1})

	// One group spanning two components splits in two.
	parts := splitConnected(g, []string{"a", "b", "c", "d"})
	require.Len(t, parts, 2)
	assert.Equal(t, []string{"a", "b"}, parts[0])
	assert.Equal(t, []string{"c", "d"}, parts[1])

	// A connected group stays whole, a singleton passes through.
	parts = splitConnected(g, []string{"a", "b"})
	require.Len(t, parts, 1)
	assert.Equal(t, []string{"a", "b"}, parts[0])

	parts = splitConnected(g, []string{"a"})
	require.Len(t, parts, 1)
	assert.Equal(t, []string{"a"}, parts[0])
}

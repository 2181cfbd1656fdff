package cluster

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/Sumatoshi-tech/carve/internal/graph"
)

// Algorithm identifiers.
const (
	AlgorithmLouvain = "louvain"
)

// Partitioner splits a graph into member groups. Groups may be disconnected;
// the detector splits them into connected components afterwards.
type Partitioner interface {
	Partition(g *graph.Graph, resolution float64) [][]string
}

// NewPartitioner resolves an algorithm identifier. Unknown identifiers are a
// configuration error.
func NewPartitioner(algorithm string) (Partitioner, error) {
	switch algorithm {
	case AlgorithmLouvain:
		return louvainPartitioner{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
}

// louvainPartitioner runs modularity maximization via gonum's Louvain
// implementation.
type louvainPartitioner struct{}

func (louvainPartitioner) Partition(g *graph.Graph, resolution float64) [][]string {
	names := g.Nodes()
	if len(names) == 0 {
		return nil
	}

	undirected := toWeightedUndirected(g, names)
	reduced := community.Modularize(undirected, resolution, nil)

	var groups [][]string

	for _, comm := range reduced.Communities() {
		group := make([]string, 0, len(comm))
		for _, node := range comm {
			group = append(group, names[node.ID()])
		}

		sort.Strings(group)
		groups = append(groups, group)
	}

	sortGroups(groups)

	return groups
}

// splitConnected splits one group into connected components within the
// subgraph it induces on g.
func splitConnected(g *graph.Graph, group []string) [][]string {
	if len(group) <= 1 {
		return [][]string{group}
	}

	index := make(map[string]int, len(group))
	for i, name := range group {
		index[name] = i
	}

	sub := simple.NewUndirectedGraph()
	for i := range group {
		sub.AddNode(simple.Node(i))
	}

	for i, name := range group {
		for neighbor := range g.Neighbors(name) {
			j, ok := index[neighbor]
			if ok && i < j {
				sub.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
			}
		}
	}

	var components [][]string

	for _, comp := range topo.ConnectedComponents(sub) {
		names := make([]string, 0, len(comp))
		for _, node := range comp {
			names = append(names, group[node.ID()])
		}

		sort.Strings(names)
		components = append(components, names)
	}

	sortGroups(components)

	return components
}

// toWeightedUndirected converts the member graph into gonum form using the
// position of each name in names as its node id.
func toWeightedUndirected(g *graph.Graph, names []string) *simple.WeightedUndirectedGraph {
	undirected := simple.NewWeightedUndirectedGraph(0, math.Inf(1))

	index := make(map[string]int64, len(names))
	for i, name := range names {
		index[name] = int64(i)
		undirected.AddNode(simple.Node(i))
	}

	for _, e := range g.Edges() {
		undirected.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(index[e.Source]),
			T: simple.Node(index[e.Target]),
			W: e.Weight,
		})
	}

	return undirected
}

// sortGroups orders groups by their (sorted) leading member for stable
// cluster ids across runs.
func sortGroups(groups [][]string) {
	sort.Slice(groups, func(i, j int) bool {
		return groups[i][0] < groups[j][0]
	})
}

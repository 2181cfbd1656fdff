package graph

import (
	"github.com/Sumatoshi-tech/carve/internal/evolution"
	"github.com/Sumatoshi-tech/carve/internal/members"
)

// BuildStaticGraph constructs the static dependency graph from a square
// dependency matrix. Each pair (i, j) with max(matrix[i][j], matrix[j][i]) > 0
// becomes one undirected edge weighted by that max.
func BuildStaticGraph(matrix [][]float64, names []string, kinds []members.Kind) *Graph {
	g := New()

	for i, name := range names {
		g.AddNode(name, kinds[i])
	}

	for i := range names {
		for j := i + 1; j < len(names); j++ {
			weight := max(matrix[i][j], matrix[j][i])
			if weight > 0 {
				g.SetEdge(Edge{Source: names[i], Target: names[j], Weight: weight})
			}
		}
	}

	return g
}

// BuildEvolutionaryGraph constructs the co-change graph from mined data.
// nameMapping optionally renames mined member names to fuller signatures;
// edges whose endpoints did not both resolve to graph nodes are dropped.
func BuildEvolutionaryGraph(data *evolution.Data, nameMapping map[string]string) *Graph {
	g := New()

	resolve := func(name string) string {
		if mapped, ok := nameMapping[name]; ok {
			return mapped
		}

		return name
	}

	for name, kind := range data.Members {
		g.AddNode(resolve(name), kind)
	}

	for pair, strength := range data.Coupling {
		source, target := resolve(pair.A), resolve(pair.B)
		if !g.HasNode(source) || !g.HasNode(target) {
			continue
		}

		g.SetEdge(Edge{Source: source, Target: target, Weight: strength})
	}

	return g
}

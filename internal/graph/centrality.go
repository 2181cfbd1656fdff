package graph

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/mat"
)

// Centrality metric names.
const (
	MetricDegree      = "degree"
	MetricBetweenness = "betweenness"
	MetricEigenvector = "eigenvector"
	MetricPageRank    = "pagerank"
)

const (
	pageRankDamping   = 0.85
	pageRankTolerance = 1e-6

	powerIterations = 100
	powerTolerance  = 1e-6
)

// NodeScore pairs a graph node with a metric score.
type NodeScore struct {
	Member string  `json:"member"`
	Score  float64 `json:"score"`
}

// Centrality computes degree, betweenness, eigenvector, and PageRank scores
// over the full graph, each ranked descending and limited to topN (0 keeps
// all). An empty graph yields an empty map.
func Centrality(g *Graph, topN int) map[string][]NodeScore {
	metrics := make(map[string][]NodeScore)

	if g.NodeCount() == 0 {
		return metrics
	}

	names := g.Nodes()

	metrics[MetricDegree] = rank(names, weightedDegree(g, names), topN)
	metrics[MetricBetweenness] = rank(names, betweenness(g, names), topN)
	metrics[MetricEigenvector] = rank(names, eigenvector(g, names), topN)
	metrics[MetricPageRank] = rank(names, pageRank(g, names), topN)

	return metrics
}

// AddCentralityToGraph computes all metrics and copies every node's score
// onto the node as an attribute named after the metric.
func AddCentralityToGraph(g *Graph) {
	for metric, scores := range Centrality(g, 0) {
		for _, ns := range scores {
			g.SetNodeAttr(ns.Member, metric, ns.Score)
		}
	}
}

// weightedDegree sums each node's incident edge weights.
func weightedDegree(g *Graph, names []string) []float64 {
	scores := make([]float64, len(names))

	for i, name := range names {
		for _, w := range g.Neighbors(name) {
			scores[i] += w
		}
	}

	return scores
}

// betweenness computes weighted betweenness centrality. Edge weights are
// similarities, so shortest-path distance uses their inverse.
func betweenness(g *Graph, names []string) []float64 {
	dist := simple.NewWeightedUndirectedGraph(0, math.Inf(1))

	for i := range names {
		dist.AddNode(simple.Node(i))
	}

	index := nameIndex(names)

	for _, e := range g.Edges() {
		if e.Weight <= 0 {
			continue
		}

		dist.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(index[e.Source]),
			T: simple.Node(index[e.Target]),
			W: 1 / e.Weight,
		})
	}

	byID := network.BetweennessWeighted(dist, path.DijkstraAllPaths(dist))

	scores := make([]float64, len(names))
	for i := range names {
		scores[i] = byID[int64(i)]
	}

	return scores
}

// eigenvector computes eigenvector centrality by power iteration on the
// weighted adjacency matrix, normalized to unit length each step.
func eigenvector(g *Graph, names []string) []float64 {
	n := len(names)
	adjacency := mat.NewSymDense(n, nil)
	index := nameIndex(names)

	for _, e := range g.Edges() {
		adjacency.SetSym(index[e.Source], index[e.Target], e.Weight)
	}

	vector := mat.NewVecDense(n, nil)
	for i := range n {
		vector.SetVec(i, 1/float64(n))
	}

	next := mat.NewVecDense(n, nil)

	for range powerIterations {
		next.MulVec(adjacency, vector)

		norm := mat.Norm(next, 2)
		if norm == 0 {
			break
		}

		next.ScaleVec(1/norm, next)

		maxDelta := 0.0
		for i := range n {
			maxDelta = math.Max(maxDelta, math.Abs(next.AtVec(i)-vector.AtVec(i)))
		}

		vector.CopyVec(next)

		if maxDelta < powerTolerance {
			break
		}
	}

	scores := make([]float64, n)
	for i := range n {
		scores[i] = vector.AtVec(i)
	}

	return scores
}

// pageRank runs PageRank over the directed expansion of the graph (each
// undirected edge contributes both directions with its weight).
func pageRank(g *Graph, names []string) []float64 {
	directed := simple.NewWeightedDirectedGraph(0, math.Inf(1))

	for i := range names {
		directed.AddNode(simple.Node(i))
	}

	index := nameIndex(names)

	for _, e := range g.Edges() {
		src, dst := int64(index[e.Source]), int64(index[e.Target])
		directed.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(src), T: simple.Node(dst), W: e.Weight})
		directed.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(dst), T: simple.Node(src), W: e.Weight})
	}

	byID := network.PageRank(directed, pageRankDamping, pageRankTolerance)

	scores := make([]float64, len(names))
	for i := range names {
		scores[i] = byID[int64(i)]
	}

	return scores
}

func nameIndex(names []string) map[string]int {
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}

	return index
}

// rank orders nodes by descending score, ties by name ascending.
func rank(names []string, scores []float64, topN int) []NodeScore {
	ranked := make([]NodeScore, len(names))
	for i, name := range names {
		ranked[i] = NodeScore{Member: name, Score: scores[i]}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}

		return ranked[i].Member < ranked[j].Member
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}

	return ranked
}

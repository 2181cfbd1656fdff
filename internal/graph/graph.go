// Package graph builds, fuses, and analyzes the member dependency graphs:
// a static graph from an externally computed dependency matrix, an
// evolutionary graph from mined co-change data, and their weighted fusion.
package graph

import (
	"sort"

	"github.com/Sumatoshi-tech/carve/internal/members"
)

// Edge is an undirected weighted edge with fusion provenance. StaticWeight,
// EvoWeight, and Alpha are zero until set by fusion.
type Edge struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	Weight       float64 `json:"weight"`
	StaticWeight float64 `json:"static_weight"`
	EvoWeight    float64 `json:"evo_weight"`
	Alpha        float64 `json:"alpha"`
}

// edgeKey identifies an undirected edge in canonical (A < B) order.
type edgeKey struct {
	A string
	B string
}

func keyOf(a, b string) edgeKey {
	if b < a {
		a, b = b, a
	}

	return edgeKey{A: a, B: b}
}

// Graph is an undirected weighted graph over class members. Nodes carry a
// member kind tag plus optional float attributes (centrality scores).
type Graph struct {
	nodes map[string]members.Kind
	edges map[edgeKey]Edge
	attrs map[string]map[string]float64
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]members.Kind),
		edges: make(map[edgeKey]Edge),
		attrs: make(map[string]map[string]float64),
	}
}

// AddNode adds a member node. Re-adding an existing node updates its kind.
func (g *Graph) AddNode(name string, kind members.Kind) {
	g.nodes[name] = kind
}

// HasNode reports whether the member is present.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.nodes[name]

	return ok
}

// Kind returns the member's kind tag.
func (g *Graph) Kind(name string) members.Kind {
	return g.nodes[name]
}

// SetEdge records an undirected edge between two existing nodes. Self-loops
// are ignored. The stored Source/Target follow canonical order.
func (g *Graph) SetEdge(e Edge) {
	if e.Source == e.Target {
		return
	}

	key := keyOf(e.Source, e.Target)
	e.Source, e.Target = key.A, key.B
	g.edges[key] = e
}

// EdgeBetween returns the edge between two members, if present.
func (g *Graph) EdgeBetween(a, b string) (Edge, bool) {
	e, ok := g.edges[keyOf(a, b)]

	return e, ok
}

// Weight returns the edge weight between two members, 0 if absent.
func (g *Graph) Weight(a, b string) float64 {
	return g.edges[keyOf(a, b)].Weight
}

// Nodes returns all member names in ascending order.
func (g *Graph) Nodes() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Edges returns all edges ordered by (source, target).
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		edges = append(edges, e)
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}

		return edges[i].Target < edges[j].Target
	})

	return edges
}

// Neighbors returns the members adjacent to name with their edge weights.
func (g *Graph) Neighbors(name string) map[string]float64 {
	adjacent := make(map[string]float64)

	for key, e := range g.edges {
		switch name {
		case key.A:
			adjacent[key.B] = e.Weight
		case key.B:
			adjacent[key.A] = e.Weight
		}
	}

	return adjacent
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// MaxWeight returns the largest edge weight, 0 for an edgeless graph.
func (g *Graph) MaxWeight() float64 {
	var maxW float64

	for _, e := range g.edges {
		if e.Weight > maxW {
			maxW = e.Weight
		}
	}

	return maxW
}

// SetNodeAttr attaches a named float attribute to a node.
func (g *Graph) SetNodeAttr(name, attr string, value float64) {
	if !g.HasNode(name) {
		return
	}

	if g.attrs[name] == nil {
		g.attrs[name] = make(map[string]float64)
	}

	g.attrs[name][attr] = value
}

// NodeAttr returns a node attribute, 0 if unset.
func (g *Graph) NodeAttr(name, attr string) float64 {
	return g.attrs[name][attr]
}

// NodeAttrs returns a copy of all attributes attached to a node.
func (g *Graph) NodeAttrs(name string) map[string]float64 {
	attrs := make(map[string]float64, len(g.attrs[name]))
	for k, v := range g.attrs[name] {
		attrs[k] = v
	}

	return attrs
}

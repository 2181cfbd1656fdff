package graph

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/carve/internal/members"
)

// Supported export formats.
const (
	FormatEdgeList = "edgelist"
	FormatGML      = "gml"
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatHTML     = "html"
)

// Export errors.
var (
	ErrUnknownFormat = errors.New("unknown export format")
)

const (
	htmlChartWidth  = "1200px"
	htmlChartHeight = "800px"
	htmlRepulsion   = 400
	htmlMinSymbol   = 8.0
	htmlMaxSymbol   = 30.0
)

// Export serializes the graph to w in the requested format. An unknown
// format is an error; a failed export never invalidates the graph.
func Export(g *Graph, w io.Writer, format string) error {
	switch format {
	case FormatEdgeList:
		return exportEdgeList(g, w)
	case FormatGML:
		return exportGML(g, w)
	case FormatJSON:
		return exportJSON(g, w)
	case FormatCSV:
		return exportCSV(g, w)
	case FormatHTML:
		return exportHTML(g, w)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func exportEdgeList(g *Graph, w io.Writer) error {
	for _, e := range g.Edges() {
		_, err := fmt.Fprintf(w, "%s %s %.6f\n", e.Source, e.Target, e.Weight)
		if err != nil {
			return fmt.Errorf("write edge list: %w", err)
		}
	}

	return nil
}

func exportGML(g *Graph, w io.Writer) error {
	names := g.Nodes()
	index := nameIndex(names)

	fmt.Fprintln(w, "graph [")
	fmt.Fprintln(w, "  directed 0")

	for i, name := range names {
		fmt.Fprintf(w, "  node [\n    id %d\n    label %q\n    kind %q\n  ]\n", i, name, string(g.Kind(name)))
	}

	for _, e := range g.Edges() {
		fmt.Fprintf(w, "  edge [\n    source %d\n    target %d\n    weight %.6f\n  ]\n",
			index[e.Source], index[e.Target], e.Weight)
	}

	_, err := fmt.Fprintln(w, "]")
	if err != nil {
		return fmt.Errorf("write gml: %w", err)
	}

	return nil
}

// nodeLink is the JSON node-link document shape.
type nodeLink struct {
	Nodes []nodeLinkNode `json:"nodes"`
	Links []Edge         `json:"links"`
}

type nodeLinkNode struct {
	ID    string             `json:"id"`
	Kind  members.Kind       `json:"kind"`
	Attrs map[string]float64 `json:"attrs,omitempty"`
}

func exportJSON(g *Graph, w io.Writer) error {
	doc := nodeLink{
		Nodes: make([]nodeLinkNode, 0, g.NodeCount()),
		Links: g.Edges(),
	}

	for _, name := range g.Nodes() {
		node := nodeLinkNode{ID: name, Kind: g.Kind(name)}
		if attrs := g.NodeAttrs(name); len(attrs) > 0 {
			node.Attrs = attrs
		}

		doc.Nodes = append(doc.Nodes, node)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(doc)
	if err != nil {
		return fmt.Errorf("write node-link json: %w", err)
	}

	return nil
}

func exportCSV(g *Graph, w io.Writer) error {
	cw := csv.NewWriter(w)

	err := cw.Write([]string{"source", "target", "weight", "static_weight", "evo_weight", "alpha"})
	if err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, e := range g.Edges() {
		record := []string{
			e.Source,
			e.Target,
			formatFloat(e.Weight),
			formatFloat(e.StaticWeight),
			formatFloat(e.EvoWeight),
			formatFloat(e.Alpha),
		}

		err = cw.Write(record)
		if err != nil {
			return fmt.Errorf("write csv edge: %w", err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}

// exportHTML renders a force-directed member graph. Node size scales with
// weighted degree.
func exportHTML(g *Graph, w io.Writer) error {
	names := g.Nodes()
	degrees := weightedDegree(g, names)

	maxDegree := 0.0
	for _, d := range degrees {
		if d > maxDegree {
			maxDegree = d
		}
	}

	nodes := make([]opts.GraphNode, 0, len(names))

	for i, name := range names {
		size := htmlMinSymbol
		if maxDegree > 0 {
			size += (htmlMaxSymbol - htmlMinSymbol) * degrees[i] / maxDegree
		}

		category := 0
		if g.Kind(name) == members.KindField {
			category = 1
		}

		nodes = append(nodes, opts.GraphNode{
			Name:       name,
			SymbolSize: size,
			Category:   category,
		})
	}

	links := make([]opts.GraphLink, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		links = append(links, opts.GraphLink{Source: e.Source, Target: e.Target, Value: float32(e.Weight)})
	}

	chart := charts.NewGraph()
	chart.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Member Coupling Graph",
			Subtitle: "Fused static and evolutionary coupling between class members",
		}),
		charts.WithInitializationOpts(opts.Initialization{Width: htmlChartWidth, Height: htmlChartHeight}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	chart.AddSeries("coupling", nodes, links,
		charts.WithGraphChartOpts(opts.GraphChart{
			Layout: "force",
			Force:  &opts.GraphForce{Repulsion: htmlRepulsion},
			Roam:   opts.Bool(true),
			Categories: []*opts.GraphCategory{
				{Name: "methods"},
				{Name: "fields"},
			},
		}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "right"}),
	)

	err := chart.Render(w)
	if err != nil {
		return fmt.Errorf("render html graph: %w", err)
	}

	return nil
}

// WriteCentrality serializes centrality rankings as JSON or CSV.
func WriteCentrality(metrics map[string][]NodeScore, w io.Writer, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(metrics)
		if err != nil {
			return fmt.Errorf("write centrality json: %w", err)
		}

		return nil
	case FormatCSV:
		return writeCentralityCSV(metrics, w)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeCentralityCSV(metrics map[string][]NodeScore, w io.Writer) error {
	cw := csv.NewWriter(w)

	err := cw.Write([]string{"metric", "member", "score"})
	if err != nil {
		return fmt.Errorf("write centrality header: %w", err)
	}

	for _, metric := range sortedKeys(metrics) {
		for _, ns := range metrics[metric] {
			err = cw.Write([]string{metric, ns.Member, formatFloat(ns.Score)})
			if err != nil {
				return fmt.Errorf("write centrality row: %w", err)
			}
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush centrality csv: %w", err)
	}

	return nil
}

func sortedKeys(metrics map[string][]NodeScore) []string {
	keys := make([]string, 0, len(metrics))
	for key := range metrics {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/carve/internal/config"
	"github.com/Sumatoshi-tech/carve/internal/graph"
)

// graphOptions holds flag state for the graph command.
type graphOptions struct {
	configPath    string
	repoPath      string
	matrixPath    string
	hotspotsPath  string
	alpha         float64
	edgeThreshold float64
	adaptive      bool
	noCache       bool

	output        string
	exportFormat  string
	centrality    bool
	centralityOut string
	centralityFmt string
}

// NewGraphCommand creates the graph subcommand.
func NewGraphCommand() *cobra.Command {
	opts := &graphOptions{}

	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Build and export the fused member coupling graph",
		Long: `Graph mines the file's co-change history, builds the static dependency
graph from the supplied matrix, fuses both signals, and exports the result.
Centrality metrics can be annotated onto the nodes and exported separately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&opts.repoPath, "repo", "r", ".", "git repository path")
	cmd.Flags().StringVarP(&opts.matrixPath, "matrix", "m", "", "dependency matrix JSON path (required)")
	cmd.Flags().StringVar(&opts.hotspotsPath, "hotspots", "", "hotspot score JSON path for adaptive fusion")
	cmd.Flags().Float64Var(&opts.alpha, "alpha", -1, "static signal share in [0,1] (overrides config)")
	cmd.Flags().Float64Var(&opts.edgeThreshold, "edge-threshold", -1, "minimum fused edge weight (overrides config)")
	cmd.Flags().BoolVar(&opts.adaptive, "adaptive", false, "hotspot-adaptive per-edge alpha")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the mining cache")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.exportFormat, "format", "f", graph.FormatJSON,
		"export format: edgelist, gml, json, csv, html")
	cmd.Flags().BoolVar(&opts.centrality, "centrality", false, "annotate nodes with centrality scores")
	cmd.Flags().StringVar(&opts.centralityOut, "centrality-out", "", "also write centrality rankings to this file")
	cmd.Flags().StringVar(&opts.centralityFmt, "centrality-format", graph.FormatJSON, "centrality file format: json, csv")

	_ = cmd.MarkFlagRequired("matrix")

	return cmd
}

func runGraph(cmd *cobra.Command, opts *graphOptions, file string) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	applyGraphOverrides(cfg, opts, cmd)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	log := slog.Default()

	pipeline, err := buildFused(cmd.Context(), cfg, opts.repoPath, file, opts.matrixPath, !opts.noCache, log)
	if err != nil {
		return err
	}

	if opts.centrality || opts.centralityOut != "" {
		graph.AddCentralityToGraph(pipeline.Fused)
	}

	if opts.centralityOut != "" {
		err = writeCentralityFile(pipeline, opts.centralityOut, opts.centralityFmt, cfg.Output.TopN)
		if err != nil {
			return err
		}
	}

	return withOutput(cmd.OutOrStdout(), opts.output, func(w io.Writer) error {
		return graph.Export(pipeline.Fused, w, opts.exportFormat)
	})
}

func applyGraphOverrides(cfg *config.Config, opts *graphOptions, cmd *cobra.Command) {
	if opts.alpha >= 0 {
		cfg.Fusion.Alpha = opts.alpha
	}

	if opts.edgeThreshold >= 0 {
		cfg.Fusion.EdgeThreshold = opts.edgeThreshold
	}

	if cmd.Flags().Changed("adaptive") {
		cfg.Fusion.Adaptive = opts.adaptive
	}

	if opts.hotspotsPath != "" {
		cfg.Fusion.HotspotsFile = opts.hotspotsPath
	}
}

func writeCentralityFile(pipeline *fusedPipeline, path, format string, topN int) error {
	metrics := graph.Centrality(pipeline.Fused, topN)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create centrality file: %w", err)
	}
	defer f.Close()

	return graph.WriteCentrality(metrics, f, format)
}

// withOutput writes through fn either to a file or to fallback when path is
// empty.
func withOutput(fallback io.Writer, path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(fallback)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	err = fn(f)
	if err != nil {
		return err
	}

	return f.Close()
}

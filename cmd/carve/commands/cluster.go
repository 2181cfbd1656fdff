package commands

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/carve/internal/cluster"
	"github.com/Sumatoshi-tech/carve/internal/config"
)

// clusterOptions holds flag state for the cluster command.
type clusterOptions struct {
	configPath   string
	repoPath     string
	matrixPath   string
	hotspotsPath string
	algorithm    string
	resolution   float64
	minSize      int
	maxSize      int
	minCohesion  float64
	adaptive     bool
	format       string
	noCache      bool
	showRejected bool
}

// NewClusterCommand creates the cluster subcommand.
func NewClusterCommand() *cobra.Command {
	opts := &clusterOptions{}

	cmd := &cobra.Command{
		Use:   "cluster <file>",
		Short: "Detect and rank extraction candidate clusters",
		Long: `Cluster runs the full pipeline: mine the file's co-change history, fuse it
with the static dependency matrix, partition the fused graph into communities,
and rank the surviving clusters as extract-class candidates.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCluster(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&opts.repoPath, "repo", "r", ".", "git repository path")
	cmd.Flags().StringVarP(&opts.matrixPath, "matrix", "m", "", "dependency matrix JSON path (required)")
	cmd.Flags().StringVar(&opts.hotspotsPath, "hotspots", "", "hotspot score JSON path for adaptive fusion")
	cmd.Flags().StringVar(&opts.algorithm, "algorithm", "", "clustering algorithm (overrides config)")
	cmd.Flags().Float64Var(&opts.resolution, "resolution", 0, "modularity resolution (overrides config)")
	cmd.Flags().IntVar(&opts.minSize, "min-size", 0, "minimum cluster size (overrides config)")
	cmd.Flags().IntVar(&opts.maxSize, "max-size", 0, "maximum cluster size (overrides config)")
	cmd.Flags().Float64Var(&opts.minCohesion, "min-cohesion", -1, "minimum cluster cohesion (overrides config)")
	cmd.Flags().BoolVar(&opts.adaptive, "adaptive", false, "hotspot-adaptive fusion")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: table, json, yaml")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the mining cache")
	cmd.Flags().BoolVar(&opts.showRejected, "show-rejected", false, "include rejected clusters in table output")

	_ = cmd.MarkFlagRequired("matrix")

	return cmd
}

func runCluster(cmd *cobra.Command, opts *clusterOptions, file string) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	applyClusterOverrides(cfg, opts, cmd)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	log := slog.Default()

	pipeline, err := buildFused(cmd.Context(), cfg, opts.repoPath, file, opts.matrixPath, !opts.noCache, log)
	if err != nil {
		return err
	}

	detector, err := cluster.NewDetector(cluster.Options{
		Algorithm:   cfg.Clustering.Algorithm,
		Resolution:  cfg.Clustering.Resolution,
		MinSize:     cfg.Clustering.MinSize,
		MaxSize:     cfg.Clustering.MaxSize,
		MinCohesion: cfg.Clustering.MinCohesion,
		Hotspots:    pipeline.Hotspots,
		Log:         log,
	})
	if err != nil {
		return err
	}

	result, err := detector.Detect(pipeline.Fused)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if cfg.Output.Format == formatTable {
		renderClusterTables(out, result, opts.showRejected)

		return nil
	}

	return renderMachine(out, cfg.Output.Format, result)
}

func applyClusterOverrides(cfg *config.Config, opts *clusterOptions, cmd *cobra.Command) {
	if opts.algorithm != "" {
		cfg.Clustering.Algorithm = opts.algorithm
	}

	if opts.resolution > 0 {
		cfg.Clustering.Resolution = opts.resolution
	}

	if opts.minSize > 0 {
		cfg.Clustering.MinSize = opts.minSize
	}

	if opts.maxSize > 0 {
		cfg.Clustering.MaxSize = opts.maxSize
	}

	if opts.minCohesion >= 0 {
		cfg.Clustering.MinCohesion = opts.minCohesion
	}

	if cmd.Flags().Changed("adaptive") {
		cfg.Fusion.Adaptive = opts.adaptive
	}

	if opts.hotspotsPath != "" {
		cfg.Fusion.HotspotsFile = opts.hotspotsPath
	}

	if opts.format != "" {
		cfg.Output.Format = opts.format
	}
}

func renderClusterTables(w io.Writer, result *cluster.Result, showRejected bool) {
	sectionHeader(w, "Extraction Candidates")

	if len(result.Accepted) == 0 {
		fmt.Fprintln(w, "No clusters passed filtering.")
	} else {
		tbl := newTable(w)
		tbl.AppendHeader(table.Row{"Rank", "ID", "Members", "Cohesion", "Modularity", "Quality", "Score"})

		for i, c := range result.Accepted {
			tbl.AppendRow(table.Row{
				i + 1,
				c.ID,
				strings.Join(c.Members, ", "),
				formatScore(c.Cohesion),
				formatScore(c.Modularity),
				formatScore(c.Quality),
				formatScore(c.RankScore),
			})
		}

		tbl.Render()
	}

	if !showRejected || len(result.Rejected) == 0 {
		return
	}

	fmt.Fprintln(w)
	sectionHeader(w, "Rejected Clusters")

	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"ID", "Members", "Cohesion", "Reason"})

	for _, c := range result.Rejected {
		tbl.AppendRow(table.Row{c.ID, strings.Join(c.Members, ", "), formatScore(c.Cohesion), c.RejectReason})
	}

	tbl.Render()
}

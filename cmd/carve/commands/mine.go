package commands

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/carve/internal/config"
	"github.com/Sumatoshi-tech/carve/internal/evolution"
)

// mineOptions holds flag state for the mine command.
type mineOptions struct {
	configPath string
	repoPath   string
	window     int
	minCommits int
	workers    int
	format     string
	topN       int
	noCache    bool
}

// mineReport is the machine-readable mining result.
type mineReport struct {
	File         string                  `json:"file"          yaml:"file"`
	TotalCommits int                     `json:"total_commits" yaml:"total_commits"`
	Members      int                     `json:"members"       yaml:"members"`
	Pairs        int                     `json:"coupled_pairs" yaml:"coupled_pairs"`
	Hubs         []evolution.MemberScore `json:"hubs"          yaml:"hubs"`
	Hotspots     []evolution.Hotspot     `json:"hotspots"      yaml:"hotspots"`
}

// NewMineCommand creates the mine subcommand.
func NewMineCommand() *cobra.Command {
	opts := &mineOptions{}

	cmd := &cobra.Command{
		Use:   "mine <file>",
		Short: "Mine member co-change coupling for one file",
		Long: `Mine walks the commit history of a single source file, maps diff hunks to
class member line ranges, and reports which members change together with
hub and hotspot rankings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMine(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&opts.repoPath, "repo", "r", ".", "git repository path")
	cmd.Flags().IntVar(&opts.window, "window", 0, "mining window in months (overrides config)")
	cmd.Flags().IntVar(&opts.minCommits, "min-commits", 0, "minimum commits per member (overrides config)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "mining worker count (overrides config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: table, json, yaml")
	cmd.Flags().IntVar(&opts.topN, "top", 0, "ranking length (overrides config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the mining cache")

	return cmd
}

func runMine(cmd *cobra.Command, opts *mineOptions, file string) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	applyMineOverrides(cfg, opts)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	log := slog.Default()

	miner, err := newMiner(cfg, opts.repoPath, !opts.noCache, log)
	if err != nil {
		return err
	}

	started := time.Now()

	data, err := miner.Mine(cmd.Context(), file)
	if err != nil {
		return fmt.Errorf("mine %s: %w", file, err)
	}

	log.Debug("mining finished", "file", file, "elapsed", time.Since(started))

	report := mineReport{
		File:         data.File,
		TotalCommits: data.TotalCommits,
		Members:      len(data.Members),
		Pairs:        len(data.Coupling),
		Hubs:         evolution.SumOfCoupling(data, cfg.Output.TopN),
		Hotspots:     evolution.MethodHotspots(data, cfg.Output.TopN, cfg.Mining.MinCommits),
	}

	out := cmd.OutOrStdout()

	if cfg.Output.Format == formatTable {
		renderMineTables(out, report, time.Since(started))

		return nil
	}

	return renderMachine(out, cfg.Output.Format, report)
}

func applyMineOverrides(cfg *config.Config, opts *mineOptions) {
	if opts.window > 0 {
		cfg.Mining.WindowMonths = opts.window
	}

	if opts.minCommits > 0 {
		cfg.Mining.MinCommits = opts.minCommits
	}

	if opts.workers > 0 {
		cfg.Mining.Workers = opts.workers
	}

	if opts.format != "" {
		cfg.Output.Format = opts.format
	}

	if opts.topN > 0 {
		cfg.Output.TopN = opts.topN
	}
}

func renderMineTables(w io.Writer, report mineReport, elapsed time.Duration) {
	sectionHeader(w, fmt.Sprintf("Coupling Mining: %s", report.File))
	fmt.Fprintf(w, "%s commits analyzed, %d members kept, %d coupled pairs (%s)\n\n",
		humanize.Comma(int64(report.TotalCommits)), report.Members, report.Pairs,
		elapsed.Round(time.Millisecond))

	if len(report.Hubs) > 0 {
		sectionHeader(w, "Coupling Hubs")

		tbl := newTable(w)
		tbl.AppendHeader(table.Row{"#", "Member", "Sum of Coupling"})

		for i, hub := range report.Hubs {
			tbl.AppendRow(table.Row{i + 1, hub.Member, formatScore(hub.Score)})
		}

		tbl.Render()
		fmt.Fprintln(w)
	}

	if len(report.Hotspots) > 0 {
		sectionHeader(w, "Method Hotspots")

		tbl := newTable(w)
		tbl.AppendHeader(table.Row{"#", "Member", "Commits", "Hotspot Score"})

		for i, h := range report.Hotspots {
			tbl.AppendRow(table.Row{i + 1, h.Member, h.Commits, formatScore(h.Score)})
		}

		tbl.Render()
	}
}

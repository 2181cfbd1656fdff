package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sumatoshi-tech/carve/internal/config"
	"github.com/Sumatoshi-tech/carve/internal/evolution"
	"github.com/Sumatoshi-tech/carve/internal/graph"
)

// newMiner builds a Miner from configuration. A malformed cache TTL falls
// back to the default rather than failing the run.
func newMiner(cfg *config.Config, repoPath string, useCache bool, log *slog.Logger) (*evolution.Miner, error) {
	var cache *evolution.Cache

	if useCache {
		ttl, err := time.ParseDuration(cfg.Mining.CacheTTL)
		if err != nil {
			log.Warn("invalid cache ttl, using default",
				"ttl", cfg.Mining.CacheTTL, "default", evolution.DefaultCacheTTL)

			ttl = evolution.DefaultCacheTTL
		}

		cache = evolution.NewCache(cfg.Mining.CacheDir, ttl, log)
	}

	miner, err := evolution.NewMiner(evolution.Options{
		RepoPath:     repoPath,
		WindowMonths: cfg.Mining.WindowMonths,
		MinCommits:   cfg.Mining.MinCommits,
		Workers:      cfg.Mining.Workers,
		Cache:        cache,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("configure miner: %w", err)
	}

	return miner, nil
}

// fusedPipeline holds the intermediate artifacts of a graph/cluster run.
type fusedPipeline struct {
	Data     *evolution.Data
	Static   *graph.Graph
	Evo      *graph.Graph
	Fused    *graph.Graph
	Hotspots map[string]float64
}

// buildFused runs mining, static graph construction, and fusion. When
// adaptive fusion is on and no hotspot file is configured, hotspot intensity
// is derived from the mined data itself.
func buildFused(
	ctx context.Context,
	cfg *config.Config,
	repoPath, file, matrixPath string,
	useCache bool,
	log *slog.Logger,
) (*fusedPipeline, error) {
	matrix, err := graph.LoadDependencyMatrix(matrixPath)
	if err != nil {
		return nil, err
	}

	kinds, err := matrix.KindTags()
	if err != nil {
		return nil, err
	}

	static := graph.BuildStaticGraph(matrix.Matrix, matrix.Members, kinds)

	miner, err := newMiner(cfg, repoPath, useCache, log)
	if err != nil {
		return nil, err
	}

	data, err := miner.Mine(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("mine %s: %w", file, err)
	}

	evo := graph.BuildEvolutionaryGraph(data, nil)

	var hotspots map[string]float64

	if cfg.Fusion.Adaptive {
		if cfg.Fusion.HotspotsFile != "" {
			hotspots, err = graph.LoadHotspots(cfg.Fusion.HotspotsFile)
			if err != nil {
				return nil, err
			}
		} else {
			ranked := evolution.MethodHotspots(data, 0, cfg.Mining.MinCommits)
			hotspots = evolution.HotspotIndex(ranked)
		}
	}

	fused, err := graph.Fuse(static, evo, graph.FuseOptions{
		Alpha:         cfg.Fusion.Alpha,
		EdgeThreshold: cfg.Fusion.EdgeThreshold,
		Adaptive:      cfg.Fusion.Adaptive,
		Hotspots:      hotspots,
		Log:           log,
	})
	if err != nil {
		return nil, fmt.Errorf("fuse graphs: %w", err)
	}

	log.Info("fused member graph",
		"file", file,
		"static_edges", static.EdgeCount(),
		"evo_edges", evo.EdgeCount(),
		"fused_edges", fused.EdgeCount())

	return &fusedPipeline{
		Data:     data,
		Static:   static,
		Evo:      evo,
		Fused:    fused,
		Hotspots: hotspots,
	}, nil
}

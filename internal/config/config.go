// Package config defines the carve configuration schema, defaults, and
// validation. All configuration errors are fatal before any mining or graph
// work begins.
package config

import "errors"

// Config is the top-level configuration struct for carve.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Mining     MiningConfig     `mapstructure:"mining"`
	Fusion     FusionConfig     `mapstructure:"fusion"`
	Clustering ClusteringConfig `mapstructure:"clustering"`
	Output     OutputConfig     `mapstructure:"output"`
}

// MiningConfig holds history mining settings.
type MiningConfig struct {
	WindowMonths int    `mapstructure:"window_months"`
	MinCommits   int    `mapstructure:"min_commits"`
	Workers      int    `mapstructure:"workers"`
	CacheDir     string `mapstructure:"cache_dir"`
	CacheTTL     string `mapstructure:"cache_ttl"`
}

// FusionConfig holds graph fusion settings.
type FusionConfig struct {
	Alpha         float64 `mapstructure:"alpha"`
	EdgeThreshold float64 `mapstructure:"edge_threshold"`
	Adaptive      bool    `mapstructure:"adaptive"`
	HotspotsFile  string  `mapstructure:"hotspots_file"`
}

// ClusteringConfig holds community detection and filtering settings.
type ClusteringConfig struct {
	Algorithm   string  `mapstructure:"algorithm"`
	Resolution  float64 `mapstructure:"resolution"`
	MinSize     int     `mapstructure:"min_size"`
	MaxSize     int     `mapstructure:"max_size"`
	MinCohesion float64 `mapstructure:"min_cohesion"`
}

// OutputConfig holds rendering settings for CLI results.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	TopN   int    `mapstructure:"top_n"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidWindowMonths indicates the mining window is not positive.
	ErrInvalidWindowMonths = errors.New("mining.window_months must be positive")
	// ErrInvalidMinCommits indicates the minimum commit count is not positive.
	ErrInvalidMinCommits = errors.New("mining.min_commits must be positive")
	// ErrInvalidWorkers indicates the worker count is not positive.
	ErrInvalidWorkers = errors.New("mining.workers must be positive")
	// ErrInvalidAlpha indicates the fusion alpha is out of range.
	ErrInvalidAlpha = errors.New("fusion.alpha must be between 0 and 1")
	// ErrInvalidEdgeThreshold indicates the edge threshold is out of range.
	ErrInvalidEdgeThreshold = errors.New("fusion.edge_threshold must be between 0 and 1")
	// ErrInvalidResolution indicates the clustering resolution is not positive.
	ErrInvalidResolution = errors.New("clustering.resolution must be positive")
	// ErrInvalidSizeBounds indicates the cluster size bounds are inconsistent.
	ErrInvalidSizeBounds = errors.New("clustering size bounds must satisfy 1 <= min_size <= max_size")
	// ErrInvalidMinCohesion indicates the cohesion floor is out of range.
	ErrInvalidMinCohesion = errors.New("clustering.min_cohesion must be between 0 and 1")
	// ErrInvalidOutputFormat indicates an unsupported output format.
	ErrInvalidOutputFormat = errors.New("output.format must be one of table, json, yaml")
	// ErrInvalidTopN indicates the ranking limit is negative.
	ErrInvalidTopN = errors.New("output.top_n must be non-negative")
)

// unitInterval is the inclusive upper bound shared by alpha, threshold, and
// cohesion values.
const unitInterval = 1.0

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	err := c.validateMining()
	if err != nil {
		return err
	}

	err = c.validateFusion()
	if err != nil {
		return err
	}

	err = c.validateClustering()
	if err != nil {
		return err
	}

	return c.validateOutput()
}

func (c *Config) validateMining() error {
	if c.Mining.WindowMonths < 1 {
		return ErrInvalidWindowMonths
	}

	if c.Mining.MinCommits < 1 {
		return ErrInvalidMinCommits
	}

	if c.Mining.Workers < 1 {
		return ErrInvalidWorkers
	}

	return nil
}

func (c *Config) validateFusion() error {
	if c.Fusion.Alpha < 0 || c.Fusion.Alpha > unitInterval {
		return ErrInvalidAlpha
	}

	if c.Fusion.EdgeThreshold < 0 || c.Fusion.EdgeThreshold > unitInterval {
		return ErrInvalidEdgeThreshold
	}

	return nil
}

func (c *Config) validateClustering() error {
	if c.Clustering.Resolution <= 0 {
		return ErrInvalidResolution
	}

	if c.Clustering.MinSize < 1 || c.Clustering.MaxSize < c.Clustering.MinSize {
		return ErrInvalidSizeBounds
	}

	if c.Clustering.MinCohesion < 0 || c.Clustering.MinCohesion > unitInterval {
		return ErrInvalidMinCohesion
	}

	return nil
}

func (c *Config) validateOutput() error {
	switch c.Output.Format {
	case "table", "json", "yaml":
	default:
		return ErrInvalidOutputFormat
	}

	if c.Output.TopN < 0 {
		return ErrInvalidTopN
	}

	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/carve/internal/cluster"
	"github.com/Sumatoshi-tech/carve/internal/evolution"
)

// configName is the config file name without extension.
const configName = ".carve"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for carve settings.
const envPrefix = "CARVE"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// Default configuration values.
const (
	DefaultWindowMonths = evolution.DefaultWindowMonths
	DefaultMinCommits   = evolution.DefaultMinCommits
	DefaultWorkers      = evolution.DefaultWorkers
	DefaultCacheDir     = ".carve-cache"
	DefaultCacheTTL     = "24h"

	DefaultAlpha         = 0.5
	DefaultEdgeThreshold = 0.1

	DefaultAlgorithm   = cluster.DefaultAlgorithm
	DefaultResolution  = cluster.DefaultResolution
	DefaultMinSize     = cluster.DefaultMinSize
	DefaultMaxSize     = cluster.DefaultMaxSize
	DefaultMinCohesion = 0.3

	DefaultOutputFormat = "table"
	DefaultTopN         = 10
)

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("mining.window_months", DefaultWindowMonths)
	viperCfg.SetDefault("mining.min_commits", DefaultMinCommits)
	viperCfg.SetDefault("mining.workers", DefaultWorkers)
	viperCfg.SetDefault("mining.cache_dir", DefaultCacheDir)
	viperCfg.SetDefault("mining.cache_ttl", DefaultCacheTTL)

	viperCfg.SetDefault("fusion.alpha", DefaultAlpha)
	viperCfg.SetDefault("fusion.edge_threshold", DefaultEdgeThreshold)
	viperCfg.SetDefault("fusion.adaptive", false)
	viperCfg.SetDefault("fusion.hotspots_file", "")

	viperCfg.SetDefault("clustering.algorithm", DefaultAlgorithm)
	viperCfg.SetDefault("clustering.resolution", DefaultResolution)
	viperCfg.SetDefault("clustering.min_size", DefaultMinSize)
	viperCfg.SetDefault("clustering.max_size", DefaultMaxSize)
	viperCfg.SetDefault("clustering.min_cohesion", DefaultMinCohesion)

	viperCfg.SetDefault("output.format", DefaultOutputFormat)
	viperCfg.SetDefault("output.top_n", DefaultTopN)
}

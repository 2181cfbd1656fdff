// Package cluster partitions the fused member graph into candidate groups,
// filters them against size and cohesion policy, and ranks the survivors as
// extraction candidates.
package cluster

import (
	"errors"
	"log/slog"
)

// Detection defaults.
const (
	DefaultAlgorithm  = AlgorithmLouvain
	DefaultResolution = 1.0
	DefaultMinSize    = 2
	DefaultMaxSize    = 15
)

// Validation errors.
var (
	ErrUnknownAlgorithm  = errors.New("unknown clustering algorithm")
	ErrInvalidResolution = errors.New("resolution must be positive")
	ErrInvalidSizeBounds = errors.New("cluster size bounds must satisfy 1 <= min <= max")
	ErrInvalidCohesion   = errors.New("minimum cohesion must be within [0, 1]")
)

// Cluster is one candidate member group. The member set is fixed at
// creation; only score fields and the rejection reason are set afterwards.
type Cluster struct {
	ID               int      `json:"id"            yaml:"id"`
	Members          []string `json:"members"       yaml:"members"`
	Cohesion         float64  `json:"cohesion"      yaml:"cohesion"`
	ExternalCoupling float64  `json:"external_coupling" yaml:"external_coupling"`
	Modularity       float64  `json:"modularity"    yaml:"modularity"`
	Conductance      float64  `json:"conductance"   yaml:"conductance"`
	Quality          float64  `json:"quality"       yaml:"quality"`
	RankScore        float64  `json:"rank_score"    yaml:"rank_score"`
	RejectReason     string   `json:"reject_reason,omitempty" yaml:"reject_reason,omitempty"`
}

// Size returns the number of members.
func (c *Cluster) Size() int { return len(c.Members) }

// FeasibilityChecker vets a cluster against static dependency constraints.
// A false result carries the rejection reason.
type FeasibilityChecker interface {
	Feasible(c *Cluster) (bool, string)
}

// Options configures cluster detection.
type Options struct {
	Algorithm   string
	Resolution  float64
	MinSize     int
	MaxSize     int
	MinCohesion float64
	// Hotspots optionally feeds member hotspot intensity into ranking.
	Hotspots map[string]float64
	// Feasibility optionally rejects structurally inextractable clusters.
	Feasibility FeasibilityChecker
	Log         *slog.Logger
}

// Validate checks option ranges. Unknown algorithms are caught separately by
// the partitioner registry.
func (o Options) Validate() error {
	if o.Resolution <= 0 {
		return ErrInvalidResolution
	}

	if o.MinSize < 1 || o.MaxSize < o.MinSize {
		return ErrInvalidSizeBounds
	}

	if o.MinCohesion < 0 || o.MinCohesion > 1 {
		return ErrInvalidCohesion
	}

	return nil
}

// applyDefaults fills zero-valued options.
func (o *Options) applyDefaults() {
	if o.Algorithm == "" {
		o.Algorithm = DefaultAlgorithm
	}

	if o.Resolution == 0 {
		o.Resolution = DefaultResolution
	}

	if o.MinSize == 0 {
		o.MinSize = DefaultMinSize
	}

	if o.MaxSize == 0 {
		o.MaxSize = DefaultMaxSize
	}

	if o.Log == nil {
		o.Log = slog.Default()
	}
}

// Result separates accepted clusters (ranked) from rejected ones (with
// reasons).
type Result struct {
	Accepted []*Cluster `json:"accepted" yaml:"accepted"`
	Rejected []*Cluster `json:"rejected" yaml:"rejected"`
}

package cluster

import (
	"fmt"
	"sort"

	"github.com/Sumatoshi-tech/carve/internal/graph"
)

// Composite ranking weights.
const (
	weightModularity = 0.4
	weightCohesion   = 0.4
	weightExternal   = 0.2
	weightHotspot    = 0.1
)

// Rejection reasons recorded on discarded clusters.
const (
	reasonTooSmall    = "below minimum cluster size"
	reasonTooLarge    = "above maximum cluster size"
	reasonLowCohesion = "cohesion below threshold"
)

// Detector runs community detection over a fused graph and applies the
// filtering and ranking policy.
type Detector struct {
	opts        Options
	partitioner Partitioner
}

// NewDetector validates options and resolves the partitioning algorithm.
func NewDetector(opts Options) (*Detector, error) {
	opts.applyDefaults()

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	partitioner, err := NewPartitioner(opts.Algorithm)
	if err != nil {
		return nil, err
	}

	return &Detector{opts: opts, partitioner: partitioner}, nil
}

// Detect partitions g and returns ranked accepted clusters plus rejected
// clusters with their reasons. Every returned cluster induces a connected
// subgraph of g.
func (d *Detector) Detect(g *graph.Graph) (*Result, error) {
	result := &Result{}

	if g.NodeCount() == 0 {
		return result, nil
	}

	var groups [][]string

	for _, group := range d.partitioner.Partition(g, d.opts.Resolution) {
		groups = append(groups, splitConnected(g, group)...)
	}

	sortGroups(groups)

	totalWeight := totalEdgeWeight(g)

	for id, members := range groups {
		c := &Cluster{ID: id, Members: members}
		d.score(c, g, totalWeight)

		if reason := d.filter(c); reason != "" {
			c.RejectReason = reason
			result.Rejected = append(result.Rejected, c)

			d.opts.Log.Debug("cluster rejected", "id", c.ID, "size", c.Size(), "reason", reason)

			continue
		}

		result.Accepted = append(result.Accepted, c)
	}

	rankClusters(result.Accepted)

	d.opts.Log.Info("cluster detection finished",
		"algorithm", d.opts.Algorithm,
		"accepted", len(result.Accepted),
		"rejected", len(result.Rejected))

	return result, nil
}

// score computes a cluster's structural metrics against the full graph.
func (d *Detector) score(c *Cluster, g *graph.Graph, totalWeight float64) {
	inside := make(map[string]bool, len(c.Members))
	for _, m := range c.Members {
		inside[m] = true
	}

	var internal, external float64

	for _, e := range g.Edges() {
		switch {
		case inside[e.Source] && inside[e.Target]:
			internal += e.Weight
		case inside[e.Source] || inside[e.Target]:
			external += e.Weight
		}
	}

	incident := internal + external
	if incident > 0 {
		c.Cohesion = internal / incident
		c.ExternalCoupling = external / incident
	}

	if volume := 2*internal + external; volume > 0 {
		c.Conductance = external / volume
	}

	if totalWeight > 0 {
		volume := 2*internal + external
		c.Modularity = internal/totalWeight - (volume/(2*totalWeight))*(volume/(2*totalWeight))
	}

	c.Quality = weightModularity*c.Modularity + weightCohesion*c.Cohesion - weightExternal*c.ExternalCoupling
	c.RankScore = c.Quality + weightHotspot*d.hotspotTier(c)
}

// hotspotTier averages the members' hotspot intensity, 0 without data.
func (d *Detector) hotspotTier(c *Cluster) float64 {
	if len(d.opts.Hotspots) == 0 || c.Size() == 0 {
		return 0
	}

	var sum float64
	for _, m := range c.Members {
		sum += d.opts.Hotspots[m]
	}

	return sum / float64(c.Size())
}

// filter returns the rejection reason for a cluster, empty if it passes.
func (d *Detector) filter(c *Cluster) string {
	if c.Size() < d.opts.MinSize {
		return reasonTooSmall
	}

	if c.Size() > d.opts.MaxSize {
		return reasonTooLarge
	}

	if c.Cohesion < d.opts.MinCohesion {
		return reasonLowCohesion
	}

	if d.opts.Feasibility != nil {
		ok, reason := d.opts.Feasibility.Feasible(c)
		if !ok {
			return fmt.Sprintf("infeasible extraction: %s", reason)
		}
	}

	return ""
}

// rankClusters orders clusters by descending rank score, ties by id
// ascending. Membership is never touched.
func rankClusters(clusters []*Cluster) {
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].RankScore != clusters[j].RankScore {
			return clusters[i].RankScore > clusters[j].RankScore
		}

		return clusters[i].ID < clusters[j].ID
	})
}

func totalEdgeWeight(g *graph.Graph) float64 {
	var total float64
	for _, e := range g.Edges() {
		total += e.Weight
	}

	return total
}

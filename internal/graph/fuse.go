package graph

import (
	"errors"
	"log/slog"
)

// Adaptive blending constants: effectiveAlpha = alphaBase - alphaSpan*h,
// where h is the average endpoint hotspot score in [0,1]. Cold edges lean
// toward the static signal (alpha 0.8), hot edges toward the evolutionary
// signal (alpha 0.2).
const (
	alphaBase = 0.8
	alphaSpan = 0.6
)

// Fusion validation errors.
var (
	ErrInvalidAlpha     = errors.New("alpha must be within [0, 1]")
	ErrInvalidThreshold = errors.New("edge threshold must be within [0, 1]")
)

// FuseOptions configures graph fusion.
type FuseOptions struct {
	// Alpha is the static-signal share in fixed mode.
	Alpha float64
	// EdgeThreshold drops fused edges with weight below it.
	EdgeThreshold float64
	// Adaptive enables hotspot-driven per-edge alpha.
	Adaptive bool
	// Hotspots maps member to hotspot intensity in [0,1]. Missing members
	// score 0.
	Hotspots map[string]float64
	Log      *slog.Logger
}

func (o FuseOptions) validate() error {
	if o.Alpha < 0 || o.Alpha > 1 {
		return ErrInvalidAlpha
	}

	if o.EdgeThreshold < 0 || o.EdgeThreshold > 1 {
		return ErrInvalidThreshold
	}

	return nil
}

// Fuse blends the static and evolutionary graphs into one weighted graph.
// Both inputs are first normalized by their own maximum edge weight, then
// every edge present in either input is blended as
// alpha*static + (1-alpha)*evo. Fused edges below the threshold, and edges
// whose fused weight is zero, are dropped. Each kept edge records the
// static/evo components and the alpha actually used.
func Fuse(static, evo *Graph, opts FuseOptions) (*Graph, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	log := opts.Log
	if log == nil {
		log = slog.Default()
	}

	if opts.Adaptive && len(opts.Hotspots) == 0 {
		log.Warn("adaptive fusion without hotspot data, every edge falls back to the base alpha",
			"alpha", alphaBase)
	}

	fused := New()

	for name, kind := range static.nodes {
		fused.AddNode(name, kind)
	}

	for name, kind := range evo.nodes {
		if !fused.HasNode(name) {
			fused.AddNode(name, kind)
		}
	}

	staticNorm := normalizer(static)
	evoNorm := normalizer(evo)

	for key := range unionEdgeKeys(static, evo) {
		staticWeight := static.Weight(key.A, key.B) / staticNorm
		evoWeight := evo.Weight(key.A, key.B) / evoNorm

		alpha := opts.Alpha
		if opts.Adaptive {
			h := (opts.Hotspots[key.A] + opts.Hotspots[key.B]) / 2
			alpha = alphaBase - alphaSpan*h
		}

		weight := alpha*staticWeight + (1-alpha)*evoWeight
		if weight <= 0 || weight < opts.EdgeThreshold {
			continue
		}

		fused.SetEdge(Edge{
			Source:       key.A,
			Target:       key.B,
			Weight:       weight,
			StaticWeight: staticWeight,
			EvoWeight:    evoWeight,
			Alpha:        alpha,
		})
	}

	return fused, nil
}

// normalizer returns the divisor that maps a graph's weights into [0,1].
// Edgeless graphs use 1.0 so absent signals stay zero.
func normalizer(g *Graph) float64 {
	maxW := g.MaxWeight()
	if maxW <= 0 {
		return 1.0
	}

	return maxW
}

func unionEdgeKeys(a, b *Graph) map[edgeKey]struct{} {
	keys := make(map[edgeKey]struct{}, len(a.edges)+len(b.edges))

	for key := range a.edges {
		keys[key] = struct{}{}
	}

	for key := range b.edges {
		keys[key] = struct{}{}
	}

	return keys
}

// Package evolution mines a git repository's history to discover which
// members of a class change together, and derives coupling-strength and
// hotspot rankings from the result.
package evolution

import (
	"math"
	"path/filepath"

	"github.com/Sumatoshi-tech/carve/internal/members"
)

// Pair is an unordered member pair stored in canonical (A < B) order.
type Pair struct {
	A string
	B string
}

// PairOf canonicalizes two member names into a Pair.
func PairOf(a, b string) Pair {
	if b < a {
		a, b = b, a
	}

	return Pair{A: a, B: b}
}

// Data is the mining result for one tracked file. It is built during a single
// mining pass and immutable afterward.
type Data struct {
	// File is the normalized repository-relative path (posix separators).
	File string
	// Members maps each qualifying member to its kind tag.
	Members map[string]members.Kind
	// MemberCommits counts the commits in which each member changed.
	MemberCommits map[string]int
	// CoChangeCounts counts the commits in which both members of a pair
	// changed, keyed canonically.
	CoChangeCounts map[Pair]int
	// Coupling holds the derived coupling strength per pair in [0,1].
	Coupling map[Pair]float64
	// TotalCommits is the number of commits touching the file in the
	// analyzed window.
	TotalCommits int
}

// NewData creates an empty mining result for file.
func NewData(file string) *Data {
	return &Data{
		File:           NormalizePath(file),
		Members:        make(map[string]members.Kind),
		MemberCommits:  make(map[string]int),
		CoChangeCounts: make(map[Pair]int),
		Coupling:       make(map[Pair]float64),
	}
}

// NormalizePath converts a file path to repository-relative posix form.
func NormalizePath(file string) string {
	return filepath.ToSlash(file)
}

// CouplingStrength returns the coupling strength between two members.
// The relation is symmetric and zero for self-pairs and unknown pairs.
func (d *Data) CouplingStrength(a, b string) float64 {
	if a == b {
		return 0
	}

	return d.Coupling[PairOf(a, b)]
}

// CoChanges returns the co-change count between two members.
func (d *Data) CoChanges(a, b string) int {
	if a == b {
		return 0
	}

	return d.CoChangeCounts[PairOf(a, b)]
}

// recordCommit folds one commit's changed-member set into the accumulators.
// Fold order over commits does not affect the result.
func (d *Data) recordCommit(changed map[string]members.Kind) {
	names := make([]string, 0, len(changed))

	for name, kind := range changed {
		d.Members[name] = kind
		d.MemberCommits[name]++
		names = append(names, name)
	}

	for i := range names {
		for j := i + 1; j < len(names); j++ {
			d.CoChangeCounts[PairOf(names[i], names[j])]++
		}
	}
}

// finalize drops members below the minimum commit threshold, purges pairs
// referencing dropped members, and computes coupling strengths:
// coChange(a,b) / sqrt(commits(a) * commits(b)).
func (d *Data) finalize(minCommits int) {
	for name, count := range d.MemberCommits {
		if count < minCommits {
			delete(d.MemberCommits, name)
			delete(d.Members, name)
		}
	}

	for pair := range d.CoChangeCounts {
		_, okA := d.MemberCommits[pair.A]
		_, okB := d.MemberCommits[pair.B]

		if !okA || !okB {
			delete(d.CoChangeCounts, pair)
		}
	}

	for pair, co := range d.CoChangeCounts {
		ca := d.MemberCommits[pair.A]
		cb := d.MemberCommits[pair.B]

		if ca > 0 && cb > 0 {
			d.Coupling[pair] = float64(co) / math.Sqrt(float64(ca)*float64(cb))
		}
	}
}

// CoupledWith returns all members with a recorded coupling to name.
func (d *Data) CoupledWith(name string) map[string]float64 {
	coupled := make(map[string]float64)

	for pair, strength := range d.Coupling {
		switch name {
		case pair.A:
			coupled[pair.B] = strength
		case pair.B:
			coupled[pair.A] = strength
		}
	}

	return coupled
}

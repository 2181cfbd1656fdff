package evolution

import "sort"

// MemberScore pairs a member with a derived score.
type MemberScore struct {
	Member string  `json:"member" yaml:"member"`
	Score  float64 `json:"score"  yaml:"score"`
}

// Hotspot describes a member with both high change frequency and high
// coupling, indicating refactoring urgency.
type Hotspot struct {
	Member  string  `json:"member"        yaml:"member"`
	Commits int     `json:"commits"       yaml:"commits"`
	Score   float64 `json:"hotspot_score" yaml:"hotspot_score"`
}

// SumOfCoupling ranks members by the sum of their coupling strengths to all
// coupled partners ("hub" ranking). Ties break by member name ascending.
func SumOfCoupling(d *Data, topN int) []MemberScore {
	scores := make([]MemberScore, 0, len(d.Members))

	for name := range d.Members {
		scores = append(scores, MemberScore{Member: name, Score: sumOfCoupling(d, name)})
	}

	sortByScoreDesc(scores)

	return truncate(scores, topN)
}

// MethodHotspots ranks members by change frequency weighted with coupling.
// Scores are normalized so the maximum observed score maps to 1.0, making the
// result directly usable as hotspot intensity for adaptive fusion.
func MethodHotspots(d *Data, topN, minCommits int) []Hotspot {
	var (
		hotspots []Hotspot
		maxScore float64
	)

	for name, commits := range d.MemberCommits {
		if commits < minCommits {
			continue
		}

		score := float64(commits) * sumOfCoupling(d, name)
		if score > maxScore {
			maxScore = score
		}

		hotspots = append(hotspots, Hotspot{Member: name, Commits: commits, Score: score})
	}

	if maxScore > 0 {
		for i := range hotspots {
			hotspots[i].Score /= maxScore
		}
	}

	sort.Slice(hotspots, func(i, j int) bool {
		if hotspots[i].Score != hotspots[j].Score {
			return hotspots[i].Score > hotspots[j].Score
		}

		return hotspots[i].Member < hotspots[j].Member
	})

	return truncate(hotspots, topN)
}

// HotspotIndex converts a hotspot ranking into the member → score lookup
// shape consumed by adaptive graph fusion.
func HotspotIndex(hotspots []Hotspot) map[string]float64 {
	index := make(map[string]float64, len(hotspots))

	for _, h := range hotspots {
		index[h.Member] = h.Score
	}

	return index
}

func sumOfCoupling(d *Data, name string) float64 {
	var sum float64

	for _, strength := range d.CoupledWith(name) {
		sum += strength
	}

	return sum
}

func sortByScoreDesc(scores []MemberScore) {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}

		return scores[i].Member < scores[j].Member
	})
}

func truncate[T any](items []T, topN int) []T {
	if topN > 0 && len(items) > topN {
		return items[:topN]
	}

	return items
}

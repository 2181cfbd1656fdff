package evolution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/carve/internal/members"
)

// newAnalyticsData builds a hub-shaped dataset: a co-changes with both b and c,
// while b and c never change together.
func newAnalyticsData() *Data {
	d := NewData("App.java")
	d.recordCommit(map[string]members.Kind{"a": members.KindMethod, "b": members.KindMethod})
	d.recordCommit(map[string]members.Kind{"a": members.KindMethod, "b": members.KindMethod})
	d.recordCommit(map[string]members.Kind{"a": members.KindMethod, "c": members.KindField})
	d.finalize(1)

	return d
}

func TestSumOfCouplingRanking(t *testing.T) {
	t.Parallel()

	d := newAnalyticsData()

	scores := SumOfCoupling(d, 0)
	require.Len(t, scores, 3)

	// The hub member carries the highest total coupling.
	assert.Equal(t, "a", scores[0].Member)

	for i := 1; i < len(scores); i++ {
		assert.GreaterOrEqual(t, scores[i-1].Score, scores[i].Score)
	}
}

func TestSumOfCouplingTopN(t *testing.T) {
	t.Parallel()

	d := newAnalyticsData()

	assert.Len(t, SumOfCoupling(d, 2), 2)
	assert.Len(t, SumOfCoupling(d, 10), 3)
}

func TestSumOfCouplingTieBreaksByName(t *testing.T) {
	t.Parallel()

	d := NewData("App.java")
	d.recordCommit(map[string]members.Kind{"x": members.KindMethod, "y": members.KindMethod})
	d.finalize(1)

	scores := SumOfCoupling(d, 0)
	require.Len(t, scores, 2)
	assert.Equal(t, "x", scores[0].Member)
	assert.Equal(t, "y", scores[1].Member)
}

func TestMethodHotspotsNormalization(t *testing.T) {
	t.Parallel()

	d := newAnalyticsData()

	hotspots := MethodHotspots(d, 0, 1)
	require.NotEmpty(t, hotspots)

	assert.Equal(t, "a", hotspots[0].Member)
	assert.InDelta(t, 1.0, hotspots[0].Score, 1e-9)

	for _, h := range hotspots {
		assert.GreaterOrEqual(t, h.Score, 0.0)
		assert.LessOrEqual(t, h.Score, 1.0)
	}
}

func TestMethodHotspotsMinCommitsFilter(t *testing.T) {
	t.Parallel()

	d := newAnalyticsData()

	hotspots := MethodHotspots(d, 0, 3)
	require.Len(t, hotspots, 1)
	assert.Equal(t, "a", hotspots[0].Member)
	assert.Equal(t, 3, hotspots[0].Commits)
}

func TestHotspotIndex(t *testing.T) {
	t.Parallel()

	index := HotspotIndex([]Hotspot{
		{Member: "a", Score: 1.0},
		{Member: "b", Score: 0.5},
	})

	assert.InDelta(t, 1.0, index["a"], 1e-12)
	assert.InDelta(t, 0.5, index["b"], 1e-12)
	assert.Zero(t, index["missing"])
}

func TestAnalyticsEmptyData(t *testing.T) {
	t.Parallel()

	d := NewData("App.java")

	assert.Empty(t, SumOfCoupling(d, 10))
	assert.Empty(t, MethodHotspots(d, 10, 1))
}

package evolution

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/carve/internal/members"
)

func TestPairOfCanonicalOrder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Pair{A: "a", B: "b"}, PairOf("a", "b"))
	assert.Equal(t, Pair{A: "a", B: "b"}, PairOf("b", "a"))
}

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "src/main/App.java", NormalizePath(`src\main\App.java`))
	assert.Equal(t, "src/App.java", NormalizePath("src/App.java"))
}

func TestRecordCommitAndFinalize(t *testing.T) {
	t.Parallel()

	d := NewData("App.java")
	d.recordCommit(map[string]members.Kind{"a": members.KindMethod, "b": members.KindMethod})
	d.recordCommit(map[string]members.Kind{"a": members.KindMethod, "b": members.KindMethod})
	d.recordCommit(map[string]members.Kind{"c": members.KindField})
	d.finalize(2)

	assert.Len(t, d.Members, 2)
	assert.NotContains(t, d.Members, "c")
	assert.Equal(t, 2, d.CoChanges("a", "b"))
	assert.InDelta(t, 1.0, d.CouplingStrength("a", "b"), 1e-9)

	// Pairs referencing a dropped member are purged.
	for pair := range d.CoChangeCounts {
		assert.Contains(t, d.Members, pair.A)
		assert.Contains(t, d.Members, pair.B)
	}
}

func TestCouplingPartialOverlap(t *testing.T) {
	t.Parallel()

	d := NewData("App.java")
	d.recordCommit(map[string]members.Kind{"a": members.KindMethod, "b": members.KindMethod})
	d.recordCommit(map[string]members.Kind{"a": members.KindMethod})
	d.recordCommit(map[string]members.Kind{"a": members.KindMethod})
	d.recordCommit(map[string]members.Kind{"b": members.KindMethod})
	d.finalize(1)

	// coChange=1, commits(a)=3, commits(b)=2: 1/sqrt(6).
	assert.InDelta(t, 0.4082482904638631, d.CouplingStrength("a", "b"), 1e-9)
	assert.InDelta(t, d.CouplingStrength("a", "b"), d.CouplingStrength("b", "a"), 1e-12)
}

func TestCoupledWith(t *testing.T) {
	t.Parallel()

	d := NewData("App.java")
	d.recordCommit(map[string]members.Kind{
		"a": members.KindMethod,
		"b": members.KindMethod,
		"c": members.KindField,
	})
	d.recordCommit(map[string]members.Kind{"a": members.KindMethod, "b": members.KindMethod})
	d.finalize(1)

	coupled := d.CoupledWith("a")
	assert.Len(t, coupled, 2)
	assert.InDelta(t, d.CouplingStrength("a", "b"), coupled["b"], 1e-12)
	assert.InDelta(t, d.CouplingStrength("a", "c"), coupled["c"], 1e-12)

	assert.Empty(t, d.CoupledWith("unknown"))
}

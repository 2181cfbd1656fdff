package evolution

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/carve/pkg/gitlib"
)

// classSource is a class with members a (lines 2-3), b (4-5), and c (6-7).
const classSource = `class T {
    void a() {
    }
    void b() {
    }
    void c() {
    }
}
`

var errSourceBroken = errors.New("source broken")

type fakeSource struct {
	head        gitlib.Hash
	blob        gitlib.Hash
	commits     []CommitInfo
	snapshots   map[gitlib.Hash][]byte
	patches     map[gitlib.Hash]string
	patchErrs   map[gitlib.Hash]error
	commitCalls atomic.Int32
	closed      bool
}

func (f *fakeSource) Signature(_ context.Context) (gitlib.Hash, gitlib.Hash, error) {
	return f.head, f.blob, nil
}

func (f *fakeSource) Commits(_ context.Context, _ time.Time) ([]CommitInfo, error) {
	f.commitCalls.Add(1)

	return f.commits, nil
}

func (f *fakeSource) Snapshot(_ context.Context, commit gitlib.Hash) ([]byte, error) {
	content, ok := f.snapshots[commit]
	if !ok {
		return nil, errSourceBroken
	}

	return content, nil
}

func (f *fakeSource) Patch(_ context.Context, info CommitInfo) (string, error) {
	if err := f.patchErrs[info.Hash]; err != nil {
		return "", err
	}

	return f.patches[info.Hash], nil
}

func (f *fakeSource) Close() { f.closed = true }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func hashOf(b byte) gitlib.Hash {
	var h gitlib.Hash

	h[0] = b

	return h
}

// newABCSource builds three commits changing {a,b}, {a,b}, and {c}.
func newABCSource() *fakeSource {
	c1, c2, c3 := hashOf(1), hashOf(2), hashOf(3)
	parent := hashOf(9)

	content := []byte(classSource)

	return &fakeSource{
		head: hashOf(42),
		blob: hashOf(43),
		commits: []CommitInfo{
			{Hash: c1, Parent: parent},
			{Hash: c2, Parent: parent},
			{Hash: c3, Parent: parent},
		},
		snapshots: map[gitlib.Hash][]byte{c1: content, c2: content, c3: content},
		patches: map[gitlib.Hash]string{
			c1: "@@ -2,4 +2,4 @@\n",
			c2: "@@ -2,4 +2,4 @@\n",
			c3: "@@ -6,2 +6,2 @@\n",
		},
	}
}

func newTestMiner(t *testing.T, opts Options, src FileSource, openErr error) *Miner {
	t.Helper()

	m, err := NewMiner(opts, testLogger())
	require.NoError(t, err)

	m.opener = func(_, _ string, _ int) (FileSource, error) {
		if openErr != nil {
			return nil, openErr
		}

		return src, nil
	}

	return m
}

func TestNewMinerValidation(t *testing.T) {
	t.Parallel()

	_, err := NewMiner(Options{WindowMonths: 0, MinCommits: 1}, nil)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = NewMiner(Options{WindowMonths: 1, MinCommits: 0}, nil)
	assert.ErrorIs(t, err, ErrInvalidMinCommits)

	_, err = NewMiner(Options{WindowMonths: 1, MinCommits: 1, Workers: -1}, nil)
	assert.ErrorIs(t, err, ErrInvalidWorkers)
}

func TestMineCoChangeScenario(t *testing.T) {
	t.Parallel()

	src := newABCSource()
	m := newTestMiner(t, Options{WindowMonths: 12, MinCommits: 2, Workers: 2}, src, nil)

	data, err := m.Mine(context.Background(), "src/T.java")
	require.NoError(t, err)

	assert.Equal(t, "src/T.java", data.File)
	assert.Equal(t, 3, data.TotalCommits)

	// c changed only once and is dropped by the minimum-commit threshold.
	assert.Len(t, data.Members, 2)
	assert.Contains(t, data.Members, "a")
	assert.Contains(t, data.Members, "b")

	assert.Equal(t, 2, data.CoChanges("a", "b"))
	assert.InDelta(t, 1.0, data.CouplingStrength("a", "b"), 1e-9)
	assert.InDelta(t, 1.0, data.CouplingStrength("b", "a"), 1e-9)
	assert.True(t, src.closed)
}

func TestMineCouplingBoundsAndSymmetry(t *testing.T) {
	t.Parallel()

	src := newABCSource()
	m := newTestMiner(t, Options{WindowMonths: 12, MinCommits: 1, Workers: 4}, src, nil)

	data, err := m.Mine(context.Background(), "T.java")
	require.NoError(t, err)

	for pair, strength := range data.Coupling {
		assert.GreaterOrEqual(t, strength, 0.0)
		assert.LessOrEqual(t, strength, 1.0)
		assert.InDelta(t, data.CouplingStrength(pair.A, pair.B), data.CouplingStrength(pair.B, pair.A), 1e-12)
	}

	// Self-coupling is zero by definition.
	assert.Zero(t, data.CouplingStrength("a", "a"))
}

func TestMineRootCommitCountsAllMembers(t *testing.T) {
	t.Parallel()

	root := hashOf(1)
	src := &fakeSource{
		head:      hashOf(42),
		blob:      hashOf(43),
		commits:   []CommitInfo{{Hash: root}},
		snapshots: map[gitlib.Hash][]byte{root: []byte(classSource)},
	}

	m := newTestMiner(t, Options{WindowMonths: 6, MinCommits: 1}, src, nil)

	data, err := m.Mine(context.Background(), "T.java")
	require.NoError(t, err)

	assert.Equal(t, 1, data.TotalCommits)
	assert.Len(t, data.Members, 3)
	assert.Equal(t, 1, data.MemberCommits["c"])
	assert.Equal(t, 1, data.CoChanges("a", "b"))
}

func TestMineSkipsUndiffableCommit(t *testing.T) {
	t.Parallel()

	src := newABCSource()
	src.patchErrs = map[gitlib.Hash]error{src.commits[2].Hash: errSourceBroken}

	m := newTestMiner(t, Options{WindowMonths: 12, MinCommits: 1}, src, nil)

	data, err := m.Mine(context.Background(), "T.java")
	require.NoError(t, err)

	// The skipped commit still touched the file.
	assert.Equal(t, 3, data.TotalCommits)
	assert.NotContains(t, data.Members, "c")
	assert.Equal(t, 2, data.MemberCommits["a"])
}

func TestMineUnopenableRepositoryReturnsEmpty(t *testing.T) {
	t.Parallel()

	m := newTestMiner(t, Options{WindowMonths: 12, MinCommits: 2}, nil, errSourceBroken)

	data, err := m.Mine(context.Background(), `src\T.java`)
	require.NoError(t, err)

	assert.Equal(t, "src/T.java", data.File)
	assert.Empty(t, data.Members)
	assert.Zero(t, data.TotalCommits)
}

func TestMineCanceledContext(t *testing.T) {
	t.Parallel()

	src := newABCSource()
	m := newTestMiner(t, Options{WindowMonths: 12, MinCommits: 1}, src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Mine(ctx, "T.java")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMineUsesCacheUntilSignatureChanges(t *testing.T) {
	t.Parallel()

	cache := NewCache(t.TempDir(), time.Hour, testLogger())
	src := newABCSource()
	m := newTestMiner(t, Options{WindowMonths: 12, MinCommits: 2, Cache: cache}, src, nil)

	first, err := m.Mine(context.Background(), "T.java")
	require.NoError(t, err)

	second, err := m.Mine(context.Background(), "T.java")
	require.NoError(t, err)

	// Second call was served from cache: no additional history walk.
	assert.Equal(t, int32(1), src.commitCalls.Load())
	assert.Equal(t, first, second)

	// A changed blob id invalidates the key and forces a fresh walk.
	src.blob = hashOf(99)
	c4 := hashOf(4)
	src.commits = append(src.commits, CommitInfo{Hash: c4, Parent: hashOf(9)})
	src.snapshots[c4] = []byte(classSource)
	src.patches[c4] = "@@ -6,2 +6,2 @@\n"

	third, err := m.Mine(context.Background(), "T.java")
	require.NoError(t, err)

	assert.Equal(t, int32(2), src.commitCalls.Load())
	assert.Equal(t, first.TotalCommits+1, third.TotalCommits)
}

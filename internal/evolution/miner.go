package evolution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/carve/internal/members"
	"github.com/Sumatoshi-tech/carve/pkg/gitlib"
)

// Mining defaults.
const (
	DefaultWindowMonths = 12
	DefaultMinCommits   = 2
	DefaultWorkers      = 4

	// windowMonthDays approximates one month when converting the mining
	// window to a wall-clock lower bound.
	windowMonthDays = 30
)

// Validation errors, surfaced before any repository work begins.
var (
	ErrInvalidWindow     = errors.New("window months must be at least 1")
	ErrInvalidMinCommits = errors.New("minimum commits must be at least 1")
	ErrInvalidWorkers    = errors.New("worker count must be at least 1")
)

// CommitInfo identifies one commit touching the tracked file.
type CommitInfo struct {
	Hash   gitlib.Hash
	Parent gitlib.Hash // Zero for root commits.
	When   time.Time
}

// FileSource provides read access to one tracked file's history.
// Implementations must be safe for concurrent use by the mining workers.
type FileSource interface {
	// Signature returns the current HEAD commit id and the tracked file's
	// blob id at HEAD (zero if the file is absent).
	Signature(ctx context.Context) (head, blob gitlib.Hash, err error)
	// Commits enumerates commits touching the file at or after since,
	// oldest first.
	Commits(ctx context.Context, since time.Time) ([]CommitInfo, error)
	// Snapshot returns the file content at the given commit.
	Snapshot(ctx context.Context, commit gitlib.Hash) ([]byte, error)
	// Patch returns a zero-context unified diff of the file between the
	// commit and its first parent.
	Patch(ctx context.Context, info CommitInfo) (string, error)
	// Close releases any underlying resources.
	Close()
}

// SourceOpener opens a FileSource for one file in a repository. The handles
// hint bounds concurrent repository access.
type SourceOpener func(repoPath, file string, handles int) (FileSource, error)

// Options configures a Miner.
type Options struct {
	RepoPath     string
	WindowMonths int
	MinCommits   int
	Workers      int
	Cache        *Cache // nil disables caching.
}

// Miner walks a file's commit history and accumulates member co-change data.
// Mining is best-effort: repository-level failures yield an empty result, and
// unreadable individual commits are skipped.
type Miner struct {
	opts   Options
	opener SourceOpener
	log    *slog.Logger
	now    func() time.Time
}

// NewMiner validates options and creates a Miner backed by the git source.
func NewMiner(opts Options, log *slog.Logger) (*Miner, error) {
	if opts.WindowMonths < 1 {
		return nil, ErrInvalidWindow
	}

	if opts.MinCommits < 1 {
		return nil, ErrInvalidMinCommits
	}

	if opts.Workers == 0 {
		opts.Workers = DefaultWorkers
	}

	if opts.Workers < 1 {
		return nil, ErrInvalidWorkers
	}

	if log == nil {
		log = slog.Default()
	}

	return &Miner{
		opts:   opts,
		opener: OpenGitSource,
		log:    log,
		now:    time.Now,
	}, nil
}

// Mine analyzes the history of file and returns its evolutionary data.
// An unopenable repository returns an empty result, not an error.
func (m *Miner) Mine(ctx context.Context, file string) (*Data, error) {
	file = NormalizePath(file)

	src, err := m.opener(m.opts.RepoPath, file, m.opts.Workers)
	if err != nil {
		m.log.Warn("cannot open repository, returning empty result",
			"repo", m.opts.RepoPath, "file", file, "err", err)

		return NewData(file), nil
	}
	defer src.Close()

	head, blob, err := src.Signature(ctx)
	if err != nil {
		m.log.Warn("cannot compute repository signature, returning empty result",
			"file", file, "err", err)

		return NewData(file), nil
	}

	key := CacheKey(head, blob, file, m.opts.WindowMonths)

	if cached := m.opts.Cache.Load(key); cached != nil {
		m.log.Debug("cache hit", "file", file, "key", key)

		return cached, nil
	}

	data, err := m.mine(ctx, src, file)
	if err != nil {
		return nil, err
	}

	m.opts.Cache.Store(key, data)

	return data, nil
}

// mine performs the actual history walk and fold.
func (m *Miner) mine(ctx context.Context, src FileSource, file string) (*Data, error) {
	since := m.now().AddDate(0, 0, -m.opts.WindowMonths*windowMonthDays)

	commits, err := src.Commits(ctx, since)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("enumerate commits: %w", err)
		}

		m.log.Warn("cannot enumerate commits, returning empty result", "file", file, "err", err)

		return NewData(file), nil
	}

	// Workers compute independent per-commit results; the fold below is
	// sequential in commit order, so the outcome does not depend on worker
	// completion order.
	results := make([]map[string]members.Kind, len(commits))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(m.opts.Workers)

	for i, info := range commits {
		group.Go(func() error {
			if ctxErr := groupCtx.Err(); ctxErr != nil {
				return ctxErr
			}

			results[i] = m.changedMembers(groupCtx, src, info)

			return nil
		})
	}

	err = group.Wait()
	if err != nil {
		return nil, fmt.Errorf("mine %s: %w", file, err)
	}

	data := NewData(file)
	data.TotalCommits = len(commits)

	for _, changed := range results {
		if changed != nil {
			data.recordCommit(changed)
		}
	}

	data.finalize(m.opts.MinCommits)

	return data, nil
}

// changedMembers computes the set of members changed by one commit.
// A nil result means the commit was skipped (unreadable snapshot or diff).
func (m *Miner) changedMembers(ctx context.Context, src FileSource, info CommitInfo) map[string]members.Kind {
	content, err := src.Snapshot(ctx, info.Hash)
	if err != nil {
		m.log.Warn("skipping unreadable commit", "commit", info.Hash, "err", err)

		return nil
	}

	ranges := members.Extract(content)

	changed := make(map[string]members.Kind)

	if info.Parent.IsZero() {
		// Root commit: every member in this version counts as changed.
		for _, r := range ranges {
			changed[r.Name] = r.Kind
		}

		return changed
	}

	patch, err := src.Patch(ctx, info)
	if err != nil {
		m.log.Warn("skipping undiffable commit", "commit", info.Hash, "err", err)

		return nil
	}

	changedRanges := ParseChangedRanges(patch)

	for _, r := range ranges {
		memberRange := LineRange{Start: r.Start, End: r.End}

		for _, cr := range changedRanges {
			if memberRange.Intersects(cr) {
				changed[r.Name] = r.Kind

				break
			}
		}
	}

	return changed
}

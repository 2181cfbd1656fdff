// Package gitlib wraps libgit2 with the narrow read-only surface needed for
// single-file history mining: repository access, per-path blob lookup, and a
// time-bounded file log.
package gitlib

import (
	"context"
	"errors"
	"fmt"
	"time"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/Sumatoshi-tech/carve/pkg/safeconv"
)

// ErrFileNotFound is returned when a path does not exist in a commit's tree.
var ErrFileNotFound = errors.New("file not found in commit tree")

// Repository wraps a libgit2 repository.
type Repository struct {
	repo *git2go.Repository
	path string
}

// Open opens a git repository at the given path.
func Open(path string) (*Repository, error) {
	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return &Repository{repo: repo, path: path}, nil
}

// Path returns the repository path.
func (r *Repository) Path() string {
	return r.path
}

// Free releases the repository resources.
func (r *Repository) Free() {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// Head returns the HEAD commit hash.
func (r *Repository) Head() (Hash, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return Hash{}, fmt.Errorf("get HEAD: %w", err)
	}
	defer ref.Free()

	return HashFromOid(ref.Target()), nil
}

// FileBlobHash returns the blob id of path in the given commit's tree.
// Returns ErrFileNotFound if the path is absent.
func (r *Repository) FileBlobHash(commit Hash, path string) (Hash, error) {
	entry, err := r.treeEntry(commit, path)
	if err != nil {
		return Hash{}, err
	}

	return HashFromOid(entry.Id), nil
}

// FileContents returns the content of path in the given commit's tree.
// Returns ErrFileNotFound if the path is absent.
func (r *Repository) FileContents(commit Hash, path string) ([]byte, error) {
	entry, err := r.treeEntry(commit, path)
	if err != nil {
		return nil, err
	}

	blob, err := r.repo.LookupBlob(entry.Id)
	if err != nil {
		return nil, fmt.Errorf("lookup blob: %w", err)
	}
	defer blob.Free()

	// Copy out: the blob's buffer is owned by libgit2.
	data := make([]byte, len(blob.Contents()))
	copy(data, blob.Contents())

	return data, nil
}

func (r *Repository) treeEntry(commit Hash, path string) (*git2go.TreeEntry, error) {
	c, err := r.repo.LookupCommit(commit.ToOid())
	if err != nil {
		return nil, fmt.Errorf("lookup commit: %w", err)
	}
	defer c.Free()

	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("get commit tree: %w", err)
	}
	defer tree.Free()

	entry, err := tree.EntryByPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	return entry, nil
}

// FileCommit describes one commit that changed a tracked file.
type FileCommit struct {
	Hash   Hash
	Parent Hash // Zero for root commits.
	When   time.Time
}

// FileLog enumerates commits reachable from HEAD, newer than since, in which
// the blob of path differs from the first parent's version (or is introduced).
// Commits are returned oldest first. The walk checks ctx between commits.
func (r *Repository) FileLog(ctx context.Context, path string, since time.Time) ([]FileCommit, error) {
	walk, err := r.repo.Walk()
	if err != nil {
		return nil, fmt.Errorf("create revwalk: %w", err)
	}
	defer walk.Free()

	err = walk.PushHead()
	if err != nil {
		return nil, fmt.Errorf("push HEAD to revwalk: %w", err)
	}

	walk.Sorting(git2go.SortTime | git2go.SortReverse)

	var (
		commits []FileCommit
		iterErr error
	)

	err = walk.Iterate(func(commit *git2go.Commit) bool {
		if ctxErr := ctx.Err(); ctxErr != nil {
			iterErr = ctxErr

			return false
		}

		fc, touches := r.fileCommit(commit, path, since)
		commit.Free()

		if touches {
			commits = append(commits, fc)
		}

		return true
	})
	if err != nil {
		return nil, fmt.Errorf("revwalk iterate: %w", err)
	}

	if iterErr != nil {
		return nil, iterErr
	}

	return commits, nil
}

// fileCommit reports whether the commit changed path relative to its first
// parent and builds the corresponding FileCommit record.
func (r *Repository) fileCommit(commit *git2go.Commit, path string, since time.Time) (FileCommit, bool) {
	when := commit.Committer().When
	if when.Before(since) {
		return FileCommit{}, false
	}

	hash := HashFromOid(commit.Id())

	blob, err := r.FileBlobHash(hash, path)
	if err != nil {
		// Path absent in this commit: deletions are not mined.
		return FileCommit{}, false
	}

	if commit.ParentCount() == 0 {
		return FileCommit{Hash: hash, When: when}, true
	}

	parent := HashFromOid(commit.ParentId(safeconv.MustIntToUint(0)))

	parentBlob, err := r.FileBlobHash(parent, path)
	if err != nil || parentBlob != blob {
		return FileCommit{Hash: hash, Parent: parent, When: when}, true
	}

	return FileCommit{}, false
}

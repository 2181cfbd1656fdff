package evolution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sumatoshi-tech/carve/pkg/gitlib"
)

// gitSource reads one tracked file's history through libgit2. It keeps a
// small pool of repository handles so mining workers never share one libgit2
// object graph.
type gitSource struct {
	file    string
	handles chan *gitlib.Repository
}

// OpenGitSource opens a FileSource over the git repository at repoPath.
// handles bounds the number of concurrently usable repository handles.
func OpenGitSource(repoPath, file string, handles int) (FileSource, error) {
	if handles < 1 {
		handles = 1
	}

	src := &gitSource{
		file:    NormalizePath(file),
		handles: make(chan *gitlib.Repository, handles),
	}

	for range handles {
		repo, err := gitlib.Open(repoPath)
		if err != nil {
			src.Close()

			return nil, fmt.Errorf("open source repository: %w", err)
		}

		src.handles <- repo
	}

	return src, nil
}

func (s *gitSource) borrow() *gitlib.Repository {
	return <-s.handles
}

func (s *gitSource) release(repo *gitlib.Repository) {
	s.handles <- repo
}

// Signature implements FileSource. The blob id is zero when the file does
// not exist at HEAD.
func (s *gitSource) Signature(_ context.Context) (gitlib.Hash, gitlib.Hash, error) {
	repo := s.borrow()
	defer s.release(repo)

	head, err := repo.Head()
	if err != nil {
		return gitlib.Hash{}, gitlib.Hash{}, err
	}

	blob, err := repo.FileBlobHash(head, s.file)
	if err != nil {
		if errors.Is(err, gitlib.ErrFileNotFound) {
			return head, gitlib.ZeroHash(), nil
		}

		return gitlib.Hash{}, gitlib.Hash{}, err
	}

	return head, blob, nil
}

// Commits implements FileSource.
func (s *gitSource) Commits(ctx context.Context, since time.Time) ([]CommitInfo, error) {
	repo := s.borrow()
	defer s.release(repo)

	log, err := repo.FileLog(ctx, s.file, since)
	if err != nil {
		return nil, err
	}

	commits := make([]CommitInfo, 0, len(log))
	for _, fc := range log {
		commits = append(commits, CommitInfo{Hash: fc.Hash, Parent: fc.Parent, When: fc.When})
	}

	return commits, nil
}

// Snapshot implements FileSource.
func (s *gitSource) Snapshot(_ context.Context, commit gitlib.Hash) ([]byte, error) {
	repo := s.borrow()
	defer s.release(repo)

	return repo.FileContents(commit, s.file)
}

// Patch implements FileSource. A file absent in the parent diffs against
// empty content, which yields a whole-file insertion hunk.
func (s *gitSource) Patch(_ context.Context, info CommitInfo) (string, error) {
	repo := s.borrow()
	defer s.release(repo)

	newContent, err := repo.FileContents(info.Hash, s.file)
	if err != nil {
		return "", err
	}

	oldContent, err := repo.FileContents(info.Parent, s.file)
	if err != nil && !errors.Is(err, gitlib.ErrFileNotFound) {
		return "", err
	}

	hunks, err := gitlib.DiffHunks(oldContent, newContent)
	if err != nil {
		return "", err
	}

	return gitlib.FormatHunks(hunks), nil
}

// Close implements FileSource.
func (s *gitSource) Close() {
	close(s.handles)

	for repo := range s.handles {
		repo.Free()
	}
}

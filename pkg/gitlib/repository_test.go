package gitlib

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissingRepository(t *testing.T) {
	t.Parallel()

	_, err := Open(t.TempDir())
	assert.Error(t, err)
}

func TestRepositoryHeadAndContents(t *testing.T) {
	t.Parallel()

	tr := NewTestRepo(t)
	hash := tr.CommitFile("main.java", "class A {\n}\n", time.Now())

	repo := tr.Repository()

	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, hash, head)

	content, err := repo.FileContents(head, "main.java")
	require.NoError(t, err)
	assert.Equal(t, "class A {\n}\n", string(content))

	_, err = repo.FileContents(head, "absent.java")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestFileLog(t *testing.T) {
	t.Parallel()

	tr := NewTestRepo(t)
	base := time.Now().Add(-72 * time.Hour)

	c1 := tr.CommitFile("a.java", "one\n", base)
	tr.CommitFile("other.java", "unrelated\n", base.Add(time.Hour))
	c3 := tr.CommitFile("a.java", "one\ntwo\n", base.Add(2*time.Hour))

	commits, err := tr.Repository().FileLog(context.Background(), "a.java", base.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, commits, 2)

	// Oldest first; the unrelated commit does not touch a.java.
	assert.Equal(t, c1, commits[0].Hash)
	assert.True(t, commits[0].Parent.IsZero())
	assert.Equal(t, c3, commits[1].Hash)
	assert.False(t, commits[1].Parent.IsZero())
}

func TestFileLogWindowExcludesOldCommits(t *testing.T) {
	t.Parallel()

	tr := NewTestRepo(t)
	base := time.Now().Add(-30 * 24 * time.Hour)

	tr.CommitFile("a.java", "one\n", base)
	c2 := tr.CommitFile("a.java", "one\ntwo\n", time.Now())

	commits, err := tr.Repository().FileLog(context.Background(), "a.java", time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, c2, commits[0].Hash)
}

func TestFileBlobHashChangesWithContent(t *testing.T) {
	t.Parallel()

	tr := NewTestRepo(t)
	repo := tr.Repository()

	first := tr.CommitFile("a.java", "one\n", time.Now())

	blob1, err := repo.FileBlobHash(first, "a.java")
	require.NoError(t, err)

	second := tr.CommitFile("a.java", "two\n", time.Now())

	blob2, err := repo.FileBlobHash(second, "a.java")
	require.NoError(t, err)

	assert.NotEqual(t, blob1, blob2)
}

package gitlib

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git2go "github.com/libgit2/git2go/v34"
)

// TestRepo is a scratch repository for tests.
type TestRepo struct {
	Path string

	repo *Repository
	tb   testing.TB
}

// NewTestRepo initializes an empty repository under a temp directory.
func NewTestRepo(tb testing.TB) *TestRepo {
	tb.Helper()

	dir := tb.TempDir()

	raw, err := git2go.InitRepository(dir, false)
	if err != nil {
		tb.Fatalf("init repository: %v", err)
	}

	repo := &Repository{repo: raw, path: dir}
	tb.Cleanup(repo.Free)

	return &TestRepo{Path: dir, repo: repo, tb: tb}
}

// Repository returns the wrapped repository handle.
func (tr *TestRepo) Repository() *Repository {
	return tr.repo
}

// CommitFile writes content to name and commits it with the given timestamp.
func (tr *TestRepo) CommitFile(name, content string, when time.Time) Hash {
	tr.tb.Helper()

	fullPath := filepath.Join(tr.Path, name)

	err := os.MkdirAll(filepath.Dir(fullPath), 0o755)
	if err != nil {
		tr.tb.Fatalf("mkdir: %v", err)
	}

	err = os.WriteFile(fullPath, []byte(content), 0o644)
	if err != nil {
		tr.tb.Fatalf("write file: %v", err)
	}

	return tr.commit("update "+name, []string{name}, when)
}

func (tr *TestRepo) commit(message string, paths []string, when time.Time) Hash {
	tr.tb.Helper()

	idx, err := tr.repo.repo.Index()
	if err != nil {
		tr.tb.Fatalf("open index: %v", err)
	}
	defer idx.Free()

	for _, p := range paths {
		addErr := idx.AddByPath(p)
		if addErr != nil {
			tr.tb.Fatalf("index add %s: %v", p, addErr)
		}
	}

	treeOid, err := idx.WriteTree()
	if err != nil {
		tr.tb.Fatalf("write tree: %v", err)
	}

	err = idx.Write()
	if err != nil {
		tr.tb.Fatalf("write index: %v", err)
	}

	tree, err := tr.repo.repo.LookupTree(treeOid)
	if err != nil {
		tr.tb.Fatalf("lookup tree: %v", err)
	}
	defer tree.Free()

	sig := Signature{Name: "tester", Email: "tester@example.com", When: when}.toGit2Go()

	var parents []*git2go.Commit

	head, err := tr.repo.Head()
	if err == nil {
		parent, lookupErr := tr.repo.repo.LookupCommit(head.ToOid())
		if lookupErr != nil {
			tr.tb.Fatalf("lookup parent: %v", lookupErr)
		}
		defer parent.Free()

		parents = append(parents, parent)
	}

	oid, err := tr.repo.repo.CreateCommit("HEAD", sig, sig, message, tree, parents...)
	if err != nil {
		tr.tb.Fatalf("create commit: %v", err)
	}

	return HashFromOid(oid)
}

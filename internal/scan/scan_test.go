package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/projectdeck/internal/ignore"
)

func mkdir(t *testing.T, parts ...string) string {
	t.Helper()
	p := filepath.Join(parts...)
	require.NoError(t, os.MkdirAll(p, 0755))
	return p
}

// initRepo creates a git repository with one commit on branch.
func initRepo(t *testing.T, dir, branch string) {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# deck\n"), 0644))
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	_, err = wt.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	if branch != "" {
		require.NoError(t, wt.Checkout(&git.CheckoutOptions{
			Branch: plumbing.NewBranchReferenceName(branch),
			Create: true,
		}))
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()

	initRepo(t, mkdir(t, root, "work", "api"), "feature/login")
	mkdir(t, root, "work", "api", "nested", ".git") // inside a repo: never reached
	mkdir(t, root, "work", "site", ".hg")
	mkdir(t, root, "old", "svnproj", ".svn")
	mkdir(t, root, ".hidden", "secret", ".git")
	mkdir(t, root, "notes")
	mkdir(t, root, "a", "b", "c", "d", "deep", ".git") // depth 5

	got, err := Discover(context.Background(), root, Options{MaxDepth: 4})
	require.NoError(t, err)

	var paths []string
	for _, c := range got {
		paths = append(paths, c.Path)
	}
	assert.Equal(t, []string{
		filepath.Join(root, "old", "svnproj"),
		filepath.Join(root, "work", "api"),
		filepath.Join(root, "work", "site"),
	}, paths)

	assert.Equal(t, "svn", got[0].VCS)
	assert.Equal(t, "git", got[1].VCS)
	assert.Equal(t, "feature/login", got[1].Branch)
	assert.Equal(t, "api", got[1].Name)
	assert.Equal(t, "hg", got[2].VCS)
	assert.Empty(t, got[2].Branch)
}

func TestDiscover_DepthLimit(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, "one", ".git")
	mkdir(t, root, "x", "two", ".git")

	got, err := Discover(context.Background(), root, Options{MaxDepth: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, filepath.Join(root, "one"), got[0].Path)
}

func TestDiscover_IgnoresDependencyTrees(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, "web", ".git")
	mkdir(t, root, "tools", "node_modules", "left-pad", ".git")
	mkdir(t, root, "archive", "legacy", ".git")
	require.NoError(t, os.WriteFile(filepath.Join(root, ignore.DefaultFile), []byte("archive/\n"), 0644))

	got, err := Discover(context.Background(), root, Options{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, filepath.Join(root, "web"), got[0].Path)
}

func TestDiscover_ExplicitIgnore(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, "keep", ".git")
	mkdir(t, root, "skip", ".git")
	mkdir(t, root, "node_modules", "pkg", ".git")

	got, err := Discover(context.Background(), root, Options{Ignore: ignore.New("skip/", "!node_modules/")})
	require.NoError(t, err)

	var names []string
	for _, c := range got {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"keep", "pkg"}, names)
}

func TestDiscover_RootIsRepository(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, ".git")
	mkdir(t, root, "sub", ".git")

	got, err := Discover(context.Background(), root, Options{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, root, got[0].Path)
}

func TestDiscover_SkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	target := mkdir(t, t.TempDir(), "linked")
	mkdir(t, target, ".git")
	require.NoError(t, os.Symlink(target, filepath.Join(root, "link")))

	got, err := Discover(context.Background(), root, Options{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDiscover_Cancelled(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, "p", ".git")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Discover(ctx, root, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiscover_BadRoot(t *testing.T) {
	_, err := Discover(context.Background(), filepath.Join(t.TempDir(), "missing"), Options{})
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = Discover(context.Background(), file, Options{})
	assert.Error(t, err)
}

func TestDetectGitDir_Worktree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git"), []byte("gitdir: /repos/main/.git/worktrees/wt\n"), 0644))

	got, err := DetectGitDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "/repos/main/.git/worktrees/wt", got)

	vcs, ok := DetectRoot(dir)
	assert.True(t, ok)
	assert.Equal(t, "git", vcs)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git"), []byte("garbage"), 0644))
	_, err = DetectGitDir(dir)
	assert.ErrorIs(t, err, ErrNotGitRepo)
	_, ok = DetectRoot(dir)
	assert.False(t, ok)
}

func TestDetectGitDir_RelativeTarget(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git"), []byte("gitdir: ../main/.git/modules/lib"), 0644))

	got, err := DetectGitDir(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "..", "main", ".git", "modules", "lib"), got)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git"), []byte("gitdir:   \n"), 0644))
	_, err = DetectGitDir(dir)
	assert.ErrorIs(t, err, ErrNotGitRepo)
}

func TestBranch(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, Branch(dir), "not a repository")

	initRepo(t, dir, "main")
	assert.Equal(t, "main", Branch(dir))
}

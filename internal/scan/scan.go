// Package scan discovers version-controlled project folders below a
// directory.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectdeck/internal/ignore"
	"github.com/fyrsmithlabs/projectdeck/internal/logging"
)

// ErrNotGitRepo indicates the path is not a git repository or worktree.
var ErrNotGitRepo = errors.New("not a git repository")

// DefaultMaxDepth bounds the walk when Options.MaxDepth is zero.
const DefaultMaxDepth = 4

// VCS markers, checked in this order.
var markers = []struct {
	name string
	vcs  string
}{
	{".git", "git"},
	{".hg", "hg"},
	{".svn", "svn"},
}

// Candidate is a discovered repository root.
type Candidate struct {
	Path string
	Name string
	VCS  string

	// Branch is the checked-out git branch, empty when detached or unknown.
	Branch string
}

// Options configures Discover.
type Options struct {
	// MaxDepth is the deepest directory level examined; root is level 0.
	MaxDepth int

	// Ignore excludes directories from the walk. When nil, the root's
	// .deckignore is loaded on top of ignore.DefaultPatterns.
	Ignore *ignore.Matcher

	Logger *logging.Logger
}

// Discover walks root up to opts.MaxDepth levels and returns every
// repository root it finds, sorted by path.
//
// Hidden directories, symlinks and ignored directories are skipped, and the walk does not descend
// into a repository once found. Unreadable subdirectories are logged and
// skipped. Cancelling ctx stops the walk with ctx.Err().
func Discover(ctx context.Context, root string, opts Options) ([]Candidate, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scan root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", abs)
	}

	matcher := opts.Ignore
	if matcher == nil {
		matcher, err = ignore.Load(abs, ignore.DefaultFile)
		if err != nil {
			logger.Warn(ctx, "failed to read ignore file, using defaults",
				zap.String("root", abs), zap.Error(err))
			matcher = ignore.New()
		}
	}

	var found []Candidate
	walkErr := filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == abs {
				return err
			}
			logger.Debug(ctx, "skipping unreadable directory", zap.String("path", p), zap.Error(err))
			return fs.SkipDir
		}
		if !d.IsDir() {
			return nil
		}

		if p != abs {
			if strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			if depth(abs, p) > opts.MaxDepth {
				return fs.SkipDir
			}
			if rel, err := filepath.Rel(abs, p); err == nil && matcher.Match(rel, true) {
				logger.Trace(ctx, "skipping ignored directory", zap.String("path", p))
				return fs.SkipDir
			}
		}

		vcs, ok := DetectRoot(p)
		if !ok {
			return nil
		}
		c := Candidate{Path: p, Name: filepath.Base(p), VCS: vcs}
		if vcs == "git" {
			c.Branch = Branch(p)
		}
		logger.Trace(ctx, "found repository", zap.String("path", p), zap.String("vcs", vcs))
		found = append(found, c)
		return fs.SkipDir
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Path < found[j].Path })
	return found, nil
}

func depth(root, p string) int {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// DetectRoot reports whether dir is a repository root and which VCS it uses.
// A .git file (worktree or submodule) counts like a .git directory.
func DetectRoot(dir string) (string, bool) {
	for _, m := range markers {
		info, err := os.Lstat(filepath.Join(dir, m.name))
		if err != nil {
			continue
		}
		if info.IsDir() {
			return m.vcs, true
		}
		if m.vcs == "git" && info.Mode().IsRegular() {
			if _, err := DetectGitDir(dir); err == nil {
				return m.vcs, true
			}
		}
	}
	return "", false
}

// DetectGitDir returns the git directory of the repository at dir: dir/.git
// for a plain checkout, or the directory a worktree or submodule .git file
// points at. Relative gitdir targets are resolved against dir.
func DetectGitDir(dir string) (string, error) {
	dotGit := filepath.Join(dir, ".git")
	info, err := os.Stat(dotGit)
	switch {
	case os.IsNotExist(err):
		return "", fmt.Errorf("%w: %s", ErrNotGitRepo, dir)
	case err != nil:
		return "", fmt.Errorf("failed to stat %s: %w", dotGit, err)
	case info.IsDir():
		return dotGit, nil
	}

	data, err := os.ReadFile(dotGit)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", dotGit, err)
	}
	target, ok := gitDirTarget(string(data))
	if !ok {
		return "", fmt.Errorf("%w: %s has no gitdir line", ErrNotGitRepo, dotGit)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	return target, nil
}

// gitDirTarget extracts the path from a .git file's "gitdir: <path>" line.
func gitDirTarget(content string) (string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(content), "gitdir:")
	if !ok {
		return "", false
	}
	target := strings.TrimSpace(rest)
	return target, target != ""
}

// Branch returns the checked-out branch of the git repository at path, or
// "" when it cannot be opened, has no commits, or HEAD is detached.
func Branch(path string) string {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	if head.Name().IsBranch() {
		return head.Name().Short()
	}
	return ""
}

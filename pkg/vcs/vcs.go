// Package vcs locates the git repository of a workspace and reports the
// checked-out branch.
package vcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/branchtint/pkg/errors"
	"github.com/arthur-debert/branchtint/pkg/filewatch"
	"github.com/arthur-debert/branchtint/pkg/logging"
)

// lookPath is replaced in tests to simulate a missing git binary
var lookPath = exec.LookPath

const headPrefix = "ref: refs/heads/"

// Repository is a discovered git repository
type Repository struct {
	// Root is the top of the working tree
	Root string
	// GitDir is the absolute git directory holding HEAD. For linked
	// worktrees this is the per-worktree directory.
	GitDir string
}

// Discover finds the repository containing dir using the git binary
func Discover(ctx context.Context, dir string) (*Repository, error) {
	logger := logging.GetLogger("vcs")

	gitBin, err := lookPath("git")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrMissingDependency, "git executable not found in PATH")
	}

	cmd := exec.CommandContext(ctx, gitBin, "-C", dir, "rev-parse", "--show-toplevel", "--absolute-git-dir")
	output, err := cmd.Output()
	if err != nil {
		logger.Debug().Err(err).Str("dir", dir).Msg("git rev-parse failed")
		return nil, errors.Wrapf(err, errors.ErrNoRepository, "no git repository found at %s", dir).
			WithDetail("dir", dir)
	}

	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) != 2 || lines[0] == "" || lines[1] == "" {
		return nil, errors.Newf(errors.ErrNoRepository, "unexpected git rev-parse output for %s", dir).
			WithDetail("output", string(output))
	}

	repo := &Repository{
		Root:   filepath.Clean(strings.TrimSpace(lines[0])),
		GitDir: filepath.Clean(strings.TrimSpace(lines[1])),
	}
	logger.Debug().Str("root", repo.Root).Str("gitDir", repo.GitDir).Msg("Repository discovered")
	return repo, nil
}

// HeadPath returns the location of the HEAD file
func (r *Repository) HeadPath() string {
	return filepath.Join(r.GitDir, "HEAD")
}

// CurrentBranch returns the checked-out branch name. The boolean is false
// for a detached HEAD or when HEAD cannot be read.
func (r *Repository) CurrentBranch() (string, bool) {
	content, err := os.ReadFile(r.HeadPath())
	if err != nil {
		logger := logging.GetLogger("vcs")
		logger.Debug().Err(err).Msg("Failed to read HEAD")
		return "", false
	}
	return ParseHead(string(content))
}

// ParseHead extracts the branch name from the contents of a HEAD file
func ParseHead(content string) (string, bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, headPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(content, headPrefix)
	if name == "" {
		return "", false
	}
	return name, true
}

// HeadWatcher signals when the checked-out branch changes
type HeadWatcher struct {
	repo    *Repository
	watcher *filewatch.Watcher
	changes chan struct{}

	mu         sync.Mutex
	lastBranch string
	lastOK     bool
}

// NewHeadWatcher watches HEAD of repo
func NewHeadWatcher(repo *Repository, debounce time.Duration) (*HeadWatcher, error) {
	w, err := filewatch.New([]string{repo.HeadPath()}, filewatch.Options{
		Debounce: debounce,
		Name:     "head-watch",
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrNoRepository, "failed to watch HEAD").
			WithDetail("path", repo.HeadPath())
	}
	branch, ok := repo.CurrentBranch()
	return &HeadWatcher{
		repo:       repo,
		watcher:    w,
		changes:    make(chan struct{}, 1),
		lastBranch: branch,
		lastOK:     ok,
	}, nil
}

// Changes delivers one value per observed branch change. Signals are
// coalesced when the receiver is slow.
func (h *HeadWatcher) Changes() <-chan struct{} {
	return h.changes
}

// Run watches until ctx ends
func (h *HeadWatcher) Run(ctx context.Context) error {
	logger := logging.GetLogger("head-watch")
	go func() {
		for range h.watcher.Changes() {
			branch, ok := h.repo.CurrentBranch()

			h.mu.Lock()
			same := branch == h.lastBranch && ok == h.lastOK
			h.lastBranch, h.lastOK = branch, ok
			h.mu.Unlock()

			if same {
				continue
			}
			logger.Info().Str("branch", branch).Bool("detached", !ok).Msg("Branch changed")
			select {
			case h.changes <- struct{}{}:
			default:
			}
		}
	}()
	return h.watcher.Run(ctx)
}

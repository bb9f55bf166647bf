package vcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/branchtint/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func initRepo(t *testing.T) string {
	t.Helper()
	requireGit(t)
	dir := t.TempDir()
	cmd := exec.Command("git", "init", "-q", "-b", "main", dir)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("git init failed: %v: %s", err, out)
	}
	return dir
}

func TestParseHead(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantOK  bool
	}{
		{"branch", "ref: refs/heads/main\n", "main", true},
		{"nested branch", "ref: refs/heads/feature/x", "feature/x", true},
		{"detached", "3f786850e387550fdab836ed7e6dc881de23001b\n", "", false},
		{"other ref", "ref: refs/remotes/origin/main", "", false},
		{"empty name", "ref: refs/heads/", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseHead(tt.content)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiscover_MissingGit(t *testing.T) {
	orig := lookPath
	lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	defer func() { lookPath = orig }()

	_, err := Discover(context.Background(), t.TempDir())
	assert.True(t, errors.IsErrorCode(err, errors.ErrMissingDependency))
}

func TestDiscover_NoRepository(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))

	_, err := Discover(context.Background(), dir)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNoRepository))
	assert.Equal(t, errors.SeverityWarning, errors.SeverityOf(err))
}

func TestDiscover_Repository(t *testing.T) {
	dir := initRepo(t)
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(sub, 0755))

	repo, err := Discover(context.Background(), sub)
	require.NoError(t, err)

	wantRoot, _ := filepath.EvalSymlinks(dir)
	gotRoot, _ := filepath.EvalSymlinks(repo.Root)
	assert.Equal(t, wantRoot, gotRoot)
	assert.FileExists(t, repo.HeadPath())

	branch, ok := repo.CurrentBranch()
	assert.True(t, ok)
	assert.Equal(t, "main", branch)
}

func TestCurrentBranch_Detached(t *testing.T) {
	gitDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "HEAD"), []byte("3f786850e387550fdab836ed7e6dc881de23001b\n"), 0644))

	repo := &Repository{Root: t.TempDir(), GitDir: gitDir}
	_, ok := repo.CurrentBranch()
	assert.False(t, ok)
}

func TestHeadWatcher_SignalsBranchChange(t *testing.T) {
	gitDir := t.TempDir()
	head := filepath.Join(gitDir, "HEAD")
	require.NoError(t, os.WriteFile(head, []byte("ref: refs/heads/main\n"), 0644))
	repo := &Repository{Root: t.TempDir(), GitDir: gitDir}

	w, err := NewHeadWatcher(repo, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.NoError(t, os.WriteFile(head, []byte("ref: refs/heads/feature/x\n"), 0644))

	select {
	case <-w.Changes():
		branch, ok := repo.CurrentBranch()
		assert.True(t, ok)
		assert.Equal(t, "feature/x", branch)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a branch change signal")
	}
}

func TestHeadWatcher_IgnoresRewriteOfSameBranch(t *testing.T) {
	gitDir := t.TempDir()
	head := filepath.Join(gitDir, "HEAD")
	require.NoError(t, os.WriteFile(head, []byte("ref: refs/heads/main\n"), 0644))
	repo := &Repository{Root: t.TempDir(), GitDir: gitDir}

	w, err := NewHeadWatcher(repo, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.NoError(t, os.WriteFile(head, []byte("ref: refs/heads/main\n"), 0644))

	select {
	case <-w.Changes():
		t.Fatal("unexpected signal for unchanged branch")
	case <-time.After(300 * time.Millisecond):
	}
}

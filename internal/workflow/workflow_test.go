package workflow

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/steveyegge/shephard/internal/config"
	"github.com/steveyegge/shephard/internal/logging"
)

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
}

func setupClonePair(t *testing.T) (local, remote string) {
	t.Helper()
	remote = t.TempDir()
	runGit(t, remote, "init", "--bare")

	local = t.TempDir()
	runGit(t, local, "clone", remote, ".")
	runGit(t, local, "config", "user.name", "Test User")
	runGit(t, local, "config", "user.email", "test@example.com")

	if err := os.WriteFile(filepath.Join(local, "README.md"), []byte("hello\n"), 0644); err != nil {
		t.Fatal(err)
	}
	runGit(t, local, "add", "README.md")
	runGit(t, local, "commit", "-m", "initial")
	runGit(t, local, "push", "origin", "HEAD")
	return local, remote
}

func newTestLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, closer, err := logging.New("", logging.LevelError, "test-run")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { closer.Close() })
	return logger
}

func TestRunCommitsAndPushesDirtyRepo(t *testing.T) {
	local, _ := setupClonePair(t)
	if err := os.WriteFile(filepath.Join(local, "README.md"), []byte("hello again\n"), 0644); err != nil {
		t.Fatal(err)
	}

	targets := []config.RepoRunConfig{{
		Path:           local,
		PushEnabled:    true,
		CommitTemplate: "sync: {scope}",
	}}

	results := Run(context.Background(), targets, config.FailureContinue, newTestLogger(t))
	if len(results) != 1 {
		t.Fatalf("Run() returned %d results, want 1", len(results))
	}
	if results[0].Status != StatusSuccess {
		t.Errorf("Status = %v, want StatusSuccess; message=%q", results[0].Status, results[0].Message)
	}
}

func TestRunNoOpOnCleanRepo(t *testing.T) {
	local, _ := setupClonePair(t)

	targets := []config.RepoRunConfig{{
		Path:           local,
		PushEnabled:    true,
		CommitTemplate: "sync: {scope}",
	}}

	results := Run(context.Background(), targets, config.FailureContinue, newTestLogger(t))
	if len(results) != 1 || results[0].Status != StatusNoOp {
		t.Fatalf("Run() = %+v, want single StatusNoOp result", results)
	}
}

func TestRunStopsOnFailureWithoutContinuePolicy(t *testing.T) {
	targets := []config.RepoRunConfig{
		{Path: "/does/not/exist", PushEnabled: true, CommitTemplate: "sync"},
		{Path: "/also/missing", PushEnabled: true, CommitTemplate: "sync"},
	}

	results := Run(context.Background(), targets, config.FailurePolicy("abort"), newTestLogger(t))
	if len(results) != 1 {
		t.Fatalf("Run() returned %d results, want 1 (stop after first failure)", len(results))
	}
	if results[0].Status != StatusFailed {
		t.Errorf("Status = %v, want StatusFailed", results[0].Status)
	}
}

func TestRunContinuesPastFailureByDefault(t *testing.T) {
	targets := []config.RepoRunConfig{
		{Path: "/does/not/exist", PushEnabled: true, CommitTemplate: "sync"},
		{Path: "/also/missing", PushEnabled: true, CommitTemplate: "sync"},
	}

	results := Run(context.Background(), targets, config.FailureContinue, newTestLogger(t))
	if len(results) != 2 {
		t.Fatalf("Run() returned %d results, want 2", len(results))
	}
}

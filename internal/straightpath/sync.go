// Package straightpath implements the non-side-channel sync path: a
// fast-forward pull followed by an optional stage/commit/push of local
// work straight onto the primary branch.
package straightpath

import (
	"context"
	"fmt"

	"github.com/steveyegge/shephard/internal/gitrepo"
)

// Outcome is the result shape for a single repository's straight-path sync.
type Outcome int

const (
	// Success indicates the repo ended in a known-good state.
	Success Outcome = iota
	// NoOp indicates nothing needed to be committed or pushed.
	NoOp
)

// Options configures one straight-path run.
type Options struct {
	PushEnabled      bool
	IncludeUntracked bool
	CommitMessage    string
}

// Sync runs pull --ff-only, then (if enabled) stage/commit/push. Grounded
// on original_source/src/workflow.rs::run_repo's non-side-channel branch.
// Self-contained for direct/standalone use; the workflow runner instead
// calls PullCurrentBranch and CommitAndPush separately so it can gate
// push_enabled once, ahead of the side-channel-vs-straight-path branch.
func Sync(ctx context.Context, repo *gitrepo.Repo, opts Options) (Outcome, string, error) {
	if _, err := PullCurrentBranch(ctx, repo); err != nil {
		return 0, "", err
	}
	if !opts.PushEnabled {
		return Success, "pull ok", nil
	}
	return CommitAndPush(ctx, repo, opts)
}

// PullCurrentBranch resolves the checked-out branch and fast-forwards it
// from origin, returning the branch name for reuse by the caller.
func PullCurrentBranch(ctx context.Context, repo *gitrepo.Repo) (string, error) {
	branch, err := repo.CurrentRef(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve current branch: %w", err)
	}
	if branch == "" {
		return "", gitrepo.ErrDetached
	}
	if err := repo.PullFastForward(ctx, "origin", branch); err != nil {
		return "", fmt.Errorf("pull failed: %w", err)
	}
	return branch, nil
}

// CommitAndPush stages, conditionally commits, and always pushes the
// current branch to origin. Callers are expected to have already pulled
// and to have already checked that pushing is enabled.
func CommitAndPush(ctx context.Context, repo *gitrepo.Repo, opts Options) (Outcome, string, error) {
	branch, err := repo.CurrentRef(ctx)
	if err != nil {
		return 0, "", fmt.Errorf("resolve current branch: %w", err)
	}

	staged, err := stageChanges(ctx, repo, opts.IncludeUntracked)
	if err != nil {
		return 0, "", fmt.Errorf("stage failed: %w", err)
	}

	committed := false
	if staged {
		if err := repo.Commit(ctx, gitrepo.CommitOptions{Message: opts.CommitMessage}); err != nil {
			return 0, "", fmt.Errorf("commit failed: %w", err)
		}
		committed = true
	}

	// Push even when nothing was staged this run: it propagates any
	// earlier local commit that never made it to the remote. Intentional,
	// not a bug — a prior run can leave the branch ahead of origin if it
	// was interrupted between commit and push.
	if err := repo.Push(ctx, "origin", branch, false, false); err != nil {
		return 0, "", fmt.Errorf("push failed: %w", err)
	}

	if committed {
		return Success, "pushed", nil
	}
	return NoOp, "pull ok, nothing to commit", nil
}

func stageChanges(ctx context.Context, repo *gitrepo.Repo, includeUntracked bool) (bool, error) {
	statuses, err := repo.Status(ctx)
	if err != nil {
		return false, err
	}
	if len(statuses) == 0 {
		return false, nil
	}

	var paths []string
	for _, s := range statuses {
		if s.Status == gitrepo.StatusUntracked && !includeUntracked {
			continue
		}
		paths = append(paths, s.Path)
	}
	if len(paths) == 0 {
		return false, nil
	}
	if err := repo.Add(ctx, paths); err != nil {
		return false, err
	}
	return true, nil
}

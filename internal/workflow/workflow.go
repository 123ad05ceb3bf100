// Package workflow drives the per-repository sync loop: pull, then
// dispatch to the side-channel engine or the straight-path sync depending
// on configuration, collecting a result per repository.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/steveyegge/shephard/internal/config"
	"github.com/steveyegge/shephard/internal/gitrepo"
	"github.com/steveyegge/shephard/internal/logging"
	"github.com/steveyegge/shephard/internal/message"
	"github.com/steveyegge/shephard/internal/sidechannel"
	"github.com/steveyegge/shephard/internal/straightpath"
)

// RepoStatus is the outcome classification for one repository.
type RepoStatus int

const (
	StatusSuccess RepoStatus = iota
	StatusNoOp
	StatusFailed
)

// RepoResult is one repository's outcome from a run.
type RepoResult struct {
	Repo    string
	Status  RepoStatus
	Message string
}

// Run executes targets in order, honoring cfg's failure policy: a failed
// repository aborts the remaining queue unless the policy continues past
// it. Grounded on original_source/src/workflow.rs::run.
func Run(ctx context.Context, targets []config.RepoRunConfig, failurePolicy config.FailurePolicy, logger *logging.Logger) []RepoResult {
	results := make([]RepoResult, 0, len(targets))

	for _, target := range targets {
		result := runRepo(ctx, target, logger.WithRepo(target.Path))
		results = append(results, result)

		if result.Status == StatusFailed && failurePolicy != config.FailureContinue {
			break
		}
	}

	return results
}

func runRepo(ctx context.Context, cfg config.RepoRunConfig, log *logging.RepoLogger) RepoResult {
	repo, err := gitrepo.Open(ctx, cfg.Path)
	if err != nil {
		log.Errorf("open failed: %v", err)
		return RepoResult{Repo: cfg.Path, Status: StatusFailed, Message: fmt.Sprintf("open failed: %v", err)}
	}

	if repo.IsInRebaseOrMerge() {
		log.Warnf("repository has an in-progress rebase or merge")
		return RepoResult{Repo: cfg.Path, Status: StatusFailed, Message: "repository has an in-progress rebase or merge"}
	}

	if _, err := straightpath.PullCurrentBranch(ctx, repo); err != nil {
		log.Warnf("pull failed: %v", err)
		return RepoResult{Repo: cfg.Path, Status: StatusFailed, Message: fmt.Sprintf("pull failed: %v", err)}
	}

	if !cfg.PushEnabled {
		log.Infof("pull ok")
		return RepoResult{Repo: cfg.Path, Status: StatusSuccess, Message: "pull ok"}
	}

	if cfg.SideChannel.Enabled {
		return runSideChannel(ctx, repo, cfg, log)
	}

	return runStraightPath(ctx, repo, cfg, log)
}

func runSideChannel(ctx context.Context, repo *gitrepo.Repo, cfg config.RepoRunConfig, log *logging.RepoLogger) RepoResult {
	side := sidechannel.Descriptor{RemoteName: cfg.SideChannel.RemoteName, BranchName: cfg.SideChannel.BranchName}

	res, err := repo.Invoke(ctx, nil, "fetch", "--prune", side.RemoteName)
	if err == nil && res.ExitCode != 0 {
		err = fmt.Errorf("git fetch --prune %s: %s", side.RemoteName, strings.TrimSpace(string(res.Stderr)))
	}
	if err != nil {
		log.Warnf("side-channel preflight fetch failed: %v", err)
		return RepoResult{Repo: cfg.Path, Status: StatusFailed, Message: fmt.Sprintf("side-channel setup failed: %v", err)}
	}

	msg := message.Format(cfg.CommitTemplate, cfg.IncludeUntracked, time.Now())

	outcome, err := sidechannel.Sync(ctx, repo, side, cfg.IncludeUntracked, msg)
	if err != nil {
		log.Warnf("side-channel sync failed: %v", err)
		return RepoResult{Repo: cfg.Path, Status: StatusFailed, Message: fmt.Sprintf("side-channel sync failed: %v", err)}
	}

	if outcome == sidechannel.NoChanges {
		log.Infof("pull ok, no local changes to commit")
		return RepoResult{Repo: cfg.Path, Status: StatusNoOp, Message: "pull ok, no local changes to commit"}
	}

	log.Infof("pull ok, side-channel commit pushed")
	return RepoResult{Repo: cfg.Path, Status: StatusSuccess, Message: "pull ok, side-channel commit pushed"}
}

func runStraightPath(ctx context.Context, repo *gitrepo.Repo, cfg config.RepoRunConfig, log *logging.RepoLogger) RepoResult {
	msg := message.Format(cfg.CommitTemplate, cfg.IncludeUntracked, time.Now())
	opts := straightpath.Options{PushEnabled: true, IncludeUntracked: cfg.IncludeUntracked, CommitMessage: msg}

	outcome, _, err := straightpath.CommitAndPush(ctx, repo, opts)
	if err != nil {
		log.Warnf("%v", err)
		return RepoResult{Repo: cfg.Path, Status: StatusFailed, Message: err.Error()}
	}

	status := StatusNoOp
	resultMsg := "pull ok, nothing to commit"
	if outcome == straightpath.Success {
		status = StatusSuccess
		resultMsg = "pull ok, committed, pushed"
	}
	log.Infof(resultMsg)
	return RepoResult{Repo: cfg.Path, Status: status, Message: resultMsg}
}

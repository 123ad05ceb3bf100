// Package sidechannel implements the side-channel synchronization engine:
// the algorithm that captures a working tree into a dedicated branch on an
// auxiliary remote without ever moving HEAD or the primary index, merging
// against any concurrent advance of that branch and retrying once on a
// losing race.
package sidechannel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/steveyegge/shephard/internal/gitrepo"
)

// Outcome is the result of a successful Sync call.
type Outcome int

const (
	// Pushed indicates a new commit was published to the side-channel branch.
	Pushed Outcome = iota
	// NoChanges indicates the working tree matched HEAD; nothing was published.
	NoChanges
)

func (o Outcome) String() string {
	if o == Pushed {
		return "pushed"
	}
	return "no changes"
}

// Descriptor names the auxiliary remote and branch a repository's
// side-channel snapshots are published to.
type Descriptor struct {
	RemoteName string
	BranchName string
}

// DestRef returns the fully-qualified destination ref: BranchName verbatim
// if it already looks like a full ref, else refs/heads/<BranchName>.
func (d Descriptor) DestRef() string {
	if strings.HasPrefix(d.BranchName, "refs/") {
		return d.BranchName
	}
	return "refs/heads/" + d.BranchName
}

// remoteTrackingRef is where the preflight fetch leaves the remote's tip
// visible in the local object store.
func (d Descriptor) remoteTrackingRef() string {
	branch := strings.TrimPrefix(d.BranchName, "refs/heads/")
	branch = strings.TrimPrefix(branch, "refs/")
	return "refs/remotes/" + d.RemoteName + "/" + branch
}

// MissingRemoteError reports that the side-channel's auxiliary remote is
// not configured in the repository.
type MissingRemoteError struct{ Name string }

func (e *MissingRemoteError) Error() string {
	return fmt.Sprintf("side-channel remote %q not configured", e.Name)
}

// ConflictError reports a three-way merge failure, with the conflicting
// paths sorted and ready to comma-join into a user-facing message.
type ConflictError struct{ Paths []string }

func (e *ConflictError) Error() string {
	return fmt.Sprintf("side-channel merge conflict: %s", strings.Join(e.Paths, ", "))
}

// ErrRaced reports that the push was rejected twice — once, then again
// after the mandated re-fetch-and-remerge retry.
var ErrRaced = errors.New("side-channel push raced twice, giving up")

const maxAttempts = 2

// Sync runs the full snapshot -> merge-with-remote-tip -> commit-object ->
// push algorithm against repo. The caller is responsible for the preflight
// `fetch --prune` on side.RemoteName before calling Sync.
func Sync(ctx context.Context, repo *gitrepo.Repo, side Descriptor, includeUntracked bool, msg string) (Outcome, error) {
	if side.RemoteName == "" {
		return 0, &MissingRemoteError{Name: side.RemoteName}
	}
	if repo.RemoteURL(ctx, side.RemoteName) == "" {
		return 0, &MissingRemoteError{Name: side.RemoteName}
	}

	idx, err := gitrepo.NewSnapshotIndex(repo)
	if err != nil {
		return 0, err
	}
	defer idx.Close()

	if err := idx.SeedFromHead(ctx); err != nil {
		return 0, fmt.Errorf("seed snapshot index: %w", err)
	}
	if err := idx.StageWorkingTree(ctx, includeUntracked); err != nil {
		return 0, fmt.Errorf("stage working tree: %w", err)
	}

	tLocal, err := idx.WriteTree(ctx)
	if err != nil {
		return 0, fmt.Errorf("write snapshot tree: %w", err)
	}

	headTree, err := repo.HeadTree(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve HEAD tree: %w", err)
	}
	if tLocal == headTree {
		return NoChanges, nil
	}

	hLocal, err := repo.GetCommitHash(ctx, "HEAD")
	if err != nil {
		return 0, fmt.Errorf("resolve HEAD: %w", err)
	}

	destRef := side.DestRef()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		s, err := repo.RemoteRefHash(ctx, side.remoteTrackingRef())
		if err != nil {
			return 0, fmt.Errorf("look up remote tip: %w", err)
		}

		parent := hLocal
		tree := tLocal
		if s != "" {
			parent = s
			ancestor := repo.IsAncestor(ctx, s, hLocal)
			if !ancestor {
				tree, err = mergeWithRemoteTip(ctx, repo, hLocal, tLocal, s)
				if err != nil {
					return 0, err
				}
			}
		}

		cNew, err := repo.CommitTree(ctx, tree, parent, msg)
		if err != nil {
			return 0, fmt.Errorf("build commit object: %w", err)
		}

		pushErr := repo.PushRefspec(ctx, side.RemoteName, cNew+":"+destRef, false)
		if pushErr == nil {
			return Pushed, nil
		}
		if !errors.Is(pushErr, gitrepo.ErrPushRejected) {
			return 0, fmt.Errorf("push side-channel commit: %w", pushErr)
		}
		if attempt == maxAttempts {
			return 0, ErrRaced
		}
		if err := repo.Fetch(ctx, side.RemoteName, branchRefName(side.BranchName)); err != nil {
			return 0, fmt.Errorf("re-fetch side-channel branch: %w", err)
		}
	}

	return 0, ErrRaced
}

// mergeWithRemoteTip builds the throwaway local commit and performs the
// three-way merge against the remote's current tip.
func mergeWithRemoteTip(ctx context.Context, repo *gitrepo.Repo, hLocal, tLocal, remoteTip string) (string, error) {
	base, err := repo.MergeBase(ctx, hLocal, remoteTip)
	if err != nil {
		return "", fmt.Errorf("compute merge base: %w", err)
	}

	cLocal, err := repo.CommitTree(ctx, tLocal, hLocal, "shephard side-channel snapshot")
	if err != nil {
		return "", fmt.Errorf("build throwaway snapshot commit: %w", err)
	}

	result, err := repo.MergeTree(ctx, base, cLocal, remoteTip)
	if err != nil {
		if len(result.Conflicts) > 0 {
			return "", &ConflictError{Paths: result.Conflicts}
		}
		return "", err
	}
	return result.Tree, nil
}

func branchRefName(branchName string) string {
	if strings.HasPrefix(branchName, "refs/") {
		return branchName
	}
	return branchName
}

// Package apply implements the `shephard apply` strategy dispatcher: it
// fetches a side-channel branch and integrates it into the current
// repository via one of three strategies.
package apply

import (
	"context"
	"fmt"

	"github.com/steveyegge/shephard/internal/gitrepo"
	"github.com/steveyegge/shephard/internal/sidechannel"
)

// Method is one of the three integration strategies apply supports.
type Method string

const (
	Merge      Method = "merge"
	CherryPick Method = "cherry-pick"
	Squash     Method = "squash"
)

// Run fetches side.RemoteName/side.BranchName and applies it to repo's
// current branch using method. Grounded on original_source/src/apply.rs.
func Run(ctx context.Context, repo *gitrepo.Repo, side sidechannel.Descriptor, method Method) error {
	if repo.RemoteURL(ctx, side.RemoteName) == "" {
		return &sidechannel.MissingRemoteError{Name: side.RemoteName}
	}

	branch := trimRefPrefix(side.BranchName)
	if err := repo.Fetch(ctx, side.RemoteName, branch); err != nil {
		return fmt.Errorf("fetch side-channel branch: %w", err)
	}

	remoteRef := side.RemoteName + "/" + branch

	switch method {
	case Merge:
		return checkExit(ctx, repo, "merge", "--ff-only", remoteRef)

	case CherryPick:
		tip, err := repo.GetCommitHash(ctx, remoteRef)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", remoteRef, err)
		}
		return checkExit(ctx, repo, "cherry-pick", tip)

	case Squash:
		return checkExit(ctx, repo, "merge", "--squash", remoteRef)

	default:
		return fmt.Errorf("unknown apply method %q", method)
	}
}

// trimRefPrefix strips a leading refs/heads/ so the result is a bare
// branch name suitable for `git fetch <remote> <branch>`.
func trimRefPrefix(name string) string {
	const prefix = "refs/heads/"
	if len(name) > len(prefix) && name[:len(prefix)] == prefix {
		return name[len(prefix):]
	}
	return name
}

// checkExit runs args and surfaces any nonzero exit as an error; each
// apply strategy delegates entirely to one git command.
func checkExit(ctx context.Context, repo *gitrepo.Repo, args ...string) error {
	res, err := repo.Invoke(ctx, nil, args...)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("git %v: %s", args, string(res.Stderr))
	}
	return nil
}

package gitrepo

import (
	"context"
	"fmt"
	"strings"
)

// CurrentRef returns the current branch name, or "" if HEAD is detached.
func (r *Repo) CurrentRef(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "symbolic-ref", "--short", "HEAD")
	if err != nil {
		if strings.Contains(err.Error(), "not a symbolic ref") {
			return "", nil
		}
		return "", fmt.Errorf("resolve current branch: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// GetCommitHash resolves ref to a full commit hash.
func (r *Repo) GetCommitHash(ctx context.Context, ref string) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--verify", ref)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", ref, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// RemoteRefHash resolves a remote ref (e.g. "origin/shephard/sync") without
// requiring a local tracking branch to exist, by querying refs/remotes
// directly; returns ("", nil) if the ref doesn't exist yet.
func (r *Repo) RemoteRefHash(ctx context.Context, remoteRef string) (string, error) {
	res, err := r.Invoke(ctx, nil, "rev-parse", "--verify", "--quiet", remoteRef)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", nil
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

// MergeBase returns the best common ancestor of a and b, or "" if they
// share no history.
func (r *Repo) MergeBase(ctx context.Context, a, b string) (string, error) {
	res, err := r.Invoke(ctx, nil, "merge-base", a, b)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", nil
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

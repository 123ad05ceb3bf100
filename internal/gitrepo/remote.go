package gitrepo

import (
	"context"
	"fmt"
	"strings"
)

// Fetch fetches ref (or everything, if ref is empty) from remote.
func (r *Repo) Fetch(ctx context.Context, remote, ref string) error {
	if r.RemoteURL(ctx, remote) == "" {
		return ErrNoRemote
	}
	args := []string{"fetch", remote}
	if ref != "" {
		args = append(args, ref)
	}
	res, err := r.Invoke(ctx, nil, args...)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("git fetch %s %s: %s", remote, ref, trimmed(res.Stderr))
	}
	return nil
}

// PullFastForward fast-forwards the current branch from remote/ref. It
// returns ErrMergeRequired if the histories have diverged and a fast
// forward is not possible — the straight-path caller surfaces divergence
// as a failure rather than auto-merging.
func (r *Repo) PullFastForward(ctx context.Context, remote, ref string) error {
	if r.RemoteURL(ctx, remote) == "" {
		return ErrNoRemote
	}
	res, err := r.Invoke(ctx, nil, "pull", "--ff-only", remote, ref)
	if err != nil {
		return err
	}
	if res.ExitCode == 0 {
		return nil
	}
	out := trimmed(res.Stderr) + trimmed(res.Stdout)
	if strings.Contains(out, "non-fast-forward") || strings.Contains(out, "Not possible to fast-forward") {
		return ErrMergeRequired
	}
	if strings.Contains(out, "CONFLICT") || strings.Contains(out, "conflict") {
		return ErrConflicts
	}
	return fmt.Errorf("git pull --ff-only %s %s: %s", remote, ref, out)
}

// Push pushes ref to remote. setUpstream configures tracking; force enables
// a --force-with-lease push.
func (r *Repo) Push(ctx context.Context, remote, ref string, setUpstream, force bool) error {
	if r.RemoteURL(ctx, remote) == "" {
		return ErrNoRemote
	}
	args := []string{"push"}
	if setUpstream {
		args = append(args, "-u")
	}
	if force {
		args = append(args, "--force-with-lease")
	}
	args = append(args, remote, ref)

	res, err := r.Invoke(ctx, nil, args...)
	if err != nil {
		return err
	}
	if res.ExitCode == 0 {
		return nil
	}
	out := trimmed(res.Stderr) + trimmed(res.Stdout)
	if strings.Contains(out, "rejected") || strings.Contains(out, "non-fast-forward") || strings.Contains(out, "stale info") {
		return ErrPushRejected
	}
	return fmt.Errorf("git push %s %s: %s", remote, ref, out)
}

// PushRefspec pushes an explicit <src>:<dst> refspec, used by the
// side-channel engine to push a freshly-built commit object straight to a
// remote branch without first moving any local ref.
func (r *Repo) PushRefspec(ctx context.Context, remote, refspec string, force bool) error {
	args := []string{"push"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, remote, refspec)

	res, err := r.Invoke(ctx, nil, args...)
	if err != nil {
		return err
	}
	if res.ExitCode == 0 {
		return nil
	}
	out := trimmed(res.Stderr) + trimmed(res.Stdout)
	if strings.Contains(out, "rejected") || strings.Contains(out, "non-fast-forward") || strings.Contains(out, "stale info") {
		return ErrPushRejected
	}
	return fmt.Errorf("git push %s %s: %s", remote, refspec, out)
}

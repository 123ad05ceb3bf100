package gitrepo

import (
	"context"
	"fmt"
	"strings"
)

// StatusCode mirrors git's two-letter porcelain status codes, one side at a time.
type StatusCode string

const (
	StatusUnmodified StatusCode = " "
	StatusModified   StatusCode = "M"
	StatusAdded      StatusCode = "A"
	StatusDeleted    StatusCode = "D"
	StatusRenamed    StatusCode = "R"
	StatusCopied     StatusCode = "C"
	StatusUntracked  StatusCode = "?"
	StatusIgnored    StatusCode = "!"
	StatusConflict   StatusCode = "U"
)

// FileStatus is one line of `git status --porcelain` output.
type FileStatus struct {
	Path       string
	Status     StatusCode
	StagedCode StatusCode
}

// HasChanges reports whether paths (or the whole tree if empty) have
// uncommitted changes, tracked or not.
func (r *Repo) HasChanges(ctx context.Context, paths ...string) (bool, error) {
	args := append([]string{"status", "--porcelain"}, paths...)
	out, err := r.run(ctx, args...)
	if err != nil {
		return false, fmt.Errorf("git status: %w", err)
	}
	return len(strings.TrimSpace(string(out))) > 0, nil
}

// Add stages paths.
func (r *Repo) Add(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := r.run(ctx, append([]string{"add"}, paths...)...)
	return err
}

// Status reports the working-tree status of paths (or the whole tree).
func (r *Repo) Status(ctx context.Context, paths ...string) ([]FileStatus, error) {
	args := append([]string{"status", "--porcelain"}, paths...)
	out, err := r.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("git status: %w", err)
	}

	var statuses []FileStatus
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if len(line) < 3 {
			continue
		}
		statuses = append(statuses, FileStatus{
			Path:       strings.TrimSpace(line[3:]),
			Status:     parseStatusCode(line[1:2]),
			StagedCode: parseStatusCode(line[0:1]),
		})
	}
	return statuses, nil
}

func parseStatusCode(code string) StatusCode {
	switch code {
	case "M":
		return StatusModified
	case "A":
		return StatusAdded
	case "D":
		return StatusDeleted
	case "R":
		return StatusRenamed
	case "C":
		return StatusCopied
	case "?":
		return StatusUntracked
	case "!":
		return StatusIgnored
	case "U":
		return StatusConflict
	default:
		return StatusUnmodified
	}
}

// CommitOptions configures Commit.
type CommitOptions struct {
	Message    string
	Paths      []string // empty = everything already staged
	AllowEmpty bool
	NoVerify   bool
}

// Commit stages Paths (if any) and commits.
func (r *Repo) Commit(ctx context.Context, opts CommitOptions) error {
	if opts.Message == "" {
		return fmt.Errorf("commit message is required")
	}
	if len(opts.Paths) > 0 {
		if err := r.Add(ctx, opts.Paths); err != nil {
			return err
		}
	}

	args := []string{"commit", "-m", opts.Message}
	if opts.NoVerify {
		args = append(args, "--no-verify")
	}
	if opts.AllowEmpty {
		args = append(args, "--allow-empty")
	}
	if len(opts.Paths) > 0 {
		args = append(args, "--")
		args = append(args, opts.Paths...)
	}

	_, err := r.run(ctx, args...)
	return err
}

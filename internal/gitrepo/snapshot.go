package gitrepo

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
)

// SnapshotIndex is an out-of-band index file used to stage a working-tree
// snapshot without disturbing the repository's primary index: acquired
// fresh per sync attempt, released on every exit path.
//
// Grounded on the GIT_INDEX_FILE / read-tree / write-tree sequence in
// antgroup-hugescm's command_snapshot.go, adapted from a one-shot CLI
// command into a reusable handle several side-channel engine steps share.
type SnapshotIndex struct {
	repo *Repo
	path string
}

// NewSnapshotIndex allocates a fresh temporary index file. Callers must
// call Close when done, on every exit path.
func NewSnapshotIndex(repo *Repo) (*SnapshotIndex, error) {
	f, err := os.CreateTemp("", "shephard-snapshot-index-*")
	if err != nil {
		return nil, fmt.Errorf("allocate snapshot index: %w", err)
	}
	path := f.Name()
	_ = f.Close()
	// git refuses to treat an existing empty file as a valid index; it must
	// not exist the first time read-tree initializes it.
	_ = os.Remove(path)
	return &SnapshotIndex{repo: repo, path: path}, nil
}

// Close releases the snapshot index file. Safe to call more than once.
func (s *SnapshotIndex) Close() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *SnapshotIndex) env() map[string]string {
	return map[string]string{"GIT_INDEX_FILE": s.path}
}

func (s *SnapshotIndex) invoke(ctx context.Context, args ...string) (Result, error) {
	return s.repo.Invoke(ctx, s.env(), args...)
}

// SeedFromHead reads HEAD's tree into the snapshot index.
func (s *SnapshotIndex) SeedFromHead(ctx context.Context) error {
	res, err := s.invoke(ctx, "read-tree", "HEAD")
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("read-tree HEAD: %s", trimmed(res.Stderr))
	}
	return nil
}

// StageWorkingTree stages the current working tree into the snapshot
// index. When includeUntracked is true, untracked files are staged too (respecting .gitignore, matching `git add -A`); otherwise only
// modifications and deletions of already-tracked files are staged (`git add
// -u`), and untracked files are left on disk either way — this call never
// touches the working tree itself, only the out-of-band index.
func (s *SnapshotIndex) StageWorkingTree(ctx context.Context, includeUntracked bool) error {
	flag := "-u"
	if includeUntracked {
		flag = "-A"
	}
	res, err := s.invoke(ctx, "add", flag, s.repo.root)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("stage working tree: %s", trimmed(res.Stderr))
	}
	return nil
}

// WriteTree persists the index as a tree object and returns its id.
func (s *SnapshotIndex) WriteTree(ctx context.Context) (string, error) {
	res, err := s.invoke(ctx, "write-tree")
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("write-tree: %s", trimmed(res.Stderr))
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

// HeadTree returns the tree id of HEAD.
func (r *Repo) HeadTree(ctx context.Context) (string, error) {
	return r.GetCommitHash(ctx, "HEAD^{tree}")
}

// IsAncestor reports whether ancestor is an ancestor of (or equal to) descendant.
func (r *Repo) IsAncestor(ctx context.Context, ancestor, descendant string) bool {
	res, err := r.Invoke(ctx, nil, "merge-base", "--is-ancestor", ancestor, descendant)
	return err == nil && res.ExitCode == 0
}

// CommitTree builds a commit object with the given tree and parent (parent
// may be empty for a root commit) and caller-supplied message, returning
// the new commit id. The message is passed over stdin so it survives
// arbitrary content (newlines, shell metacharacters) unmangled.
func (r *Repo) CommitTree(ctx context.Context, tree, parent, message string) (string, error) {
	args := []string{"commit-tree", tree}
	if parent != "" {
		args = append(args, "-p", parent)
	}
	cmd := append([]string{}, args...)
	res, err := r.invokeWithStdin(ctx, message, cmd...)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("commit-tree: %s", trimmed(res.Stderr))
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

// MergeTreeResult is the outcome of a three-way write-tree merge.
type MergeTreeResult struct {
	Tree      string
	Conflicts []string
}

// MergeTree performs a three-way merge of ours and theirs against base,
// writing the resulting tree without touching the working copy or index.
// Conflicting paths are parsed from the porcelain merge-tree output and
// returned sorted.
//
// Grounded on the "write-tree merge, never touch HEAD" discipline in
// abhinav/git-spice's squash-handler.go, using git's `merge-tree
// --write-tree --merge-base=` porcelain (git >= 2.40) as the underlying
// primitive.
func (r *Repo) MergeTree(ctx context.Context, base, ours, theirs string) (MergeTreeResult, error) {
	res, err := r.Invoke(ctx, nil, "merge-tree", "--write-tree", "--merge-base="+base, ours, theirs)
	if err != nil {
		return MergeTreeResult{}, err
	}

	out := strings.Split(strings.TrimRight(string(res.Stdout), "\n"), "\n")
	if len(out) == 0 || out[0] == "" {
		return MergeTreeResult{}, fmt.Errorf("merge-tree: empty output")
	}

	if res.ExitCode == 0 {
		return MergeTreeResult{Tree: strings.TrimSpace(out[0])}, nil
	}

	// Nonzero exit with a tree line still present means conflicts: the
	// tree line is followed by "<mode> <oid> <stage>\t<path>" conflicted
	// file info lines, then a blank line and free-form informational
	// messages. We only need the paths.
	conflicts := map[string]struct{}{}
	for _, line := range out[1:] {
		tab := strings.LastIndex(line, "\t")
		if tab == -1 {
			continue
		}
		path := line[tab+1:]
		if path == "" {
			continue
		}
		conflicts[path] = struct{}{}
	}
	paths := make([]string, 0, len(conflicts))
	for p := range conflicts {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return MergeTreeResult{Conflicts: paths}, fmt.Errorf("merge-tree conflicts in %d path(s)", len(paths))
}

// invokeWithStdin runs git with stdin wired to data, used for commit-tree's
// message so arbitrary content never has to survive argv quoting.
func (r *Repo) invokeWithStdin(ctx context.Context, stdin string, args ...string) (Result, error) {
	return invokeWithStdin(ctx, r.root, nil, stdin, args...)
}

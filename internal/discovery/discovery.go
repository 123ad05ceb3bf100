// Package discovery walks a set of workspace roots looking for git
// repositories to hand off to the workflow runner.
package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Discover walks each root looking for directories containing a .git entry
// (directory or file, the latter for worktrees/submodules). descendHidden
// controls whether dot-directories below the root are walked; .git itself
// is never descended into either way. Results are canonical-path deduped
// and returned sorted.
//
// Grounded on original_source/src/discovery.rs::discover_repositories,
// translated from the walkdir crate to the standard library's
// filepath.WalkDir — no repository in the corpus pulls in a third-party
// directory-walking library, so this is one of the few places stdlib is
// the idiomatic choice rather than a gap.
func Discover(roots []string, descendHidden bool) []string {
	found := make(map[string]struct{})

	for _, root := range roots {
		if info, err := filepath.Abs(root); err == nil {
			root = info
		}
		walkRoot(root, descendHidden, found)
	}

	repos := make([]string, 0, len(found))
	for path := range found {
		repos = append(repos, path)
	}
	sort.Strings(repos)
	return repos
}

func walkRoot(root string, descendHidden bool, found map[string]struct{}) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if !shouldDescend(path, root, d, descendHidden) {
			return filepath.SkipDir
		}
		if isGitRepository(path) {
			canonical, err := filepath.EvalSymlinks(path)
			if err != nil {
				canonical = path
			}
			found[canonical] = struct{}{}
		}
		return nil
	})
}

func shouldDescend(path, root string, d fs.DirEntry, descendHidden bool) bool {
	if d.Name() == ".git" {
		return false
	}
	if path == root {
		return true
	}
	if descendHidden {
		return true
	}
	return !isHidden(d.Name())
}

func isHidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}

func isGitRepository(path string) bool {
	marker := filepath.Join(path, ".git")
	info, err := os.Stat(marker)
	return err == nil && (info.IsDir() || info.Mode().IsRegular())
}

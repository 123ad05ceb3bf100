package config

import (
	"os"
	"path/filepath"
)

// ResolvedRepositoryConfig is one repository discovered under the
// workspace roots, with any [[repositories]] override already applied.
// Grounded on original_source/src/main.rs's ResolvedRepositoryConfig.
type ResolvedRepositoryConfig struct {
	Path             string
	Enabled          bool
	IncludeUntracked *bool
	SideChannel      *SideChannelOverride
}

// RepoRunConfig is the final, fully-resolved run configuration for one
// repository: ResolvedRunConfig with this repository's overrides folded in.
type RepoRunConfig struct {
	Path             string
	PushEnabled      bool
	IncludeUntracked bool
	SideChannel      SideChannelConfig
	CommitTemplate   string
}

// MergeDiscovered joins discoveredPaths (from internal/discovery) with the
// config's [[repositories]] overrides, keyed by canonical path. A
// discovered repository absent from the config is enabled by default.
func MergeDiscovered(cfg Config, discoveredPaths []string) []ResolvedRepositoryConfig {
	byKey := make(map[string]RepositoryOverride, len(cfg.Repositories))
	for _, r := range cfg.Repositories {
		byKey[canonicalKey(r.Path)] = r
	}

	resolved := make([]ResolvedRepositoryConfig, 0, len(discoveredPaths))
	for _, path := range discoveredPaths {
		r := ResolvedRepositoryConfig{Path: path, Enabled: true}
		if override, ok := byKey[canonicalKey(path)]; ok {
			if override.HasEnabled {
				r.Enabled = override.Enabled
			}
			r.IncludeUntracked = override.IncludeUntracked
			r.SideChannel = override.SideChannel
		}
		resolved = append(resolved, r)
	}
	return resolved
}

// EnabledRepositories filters all down to the repositories that are
// enabled, preserving order.
func EnabledRepositories(all []ResolvedRepositoryConfig) []ResolvedRepositoryConfig {
	enabled := make([]ResolvedRepositoryConfig, 0, len(all))
	for _, r := range all {
		if r.Enabled {
			enabled = append(enabled, r)
		}
	}
	return enabled
}

// ResolveConfiguredTargets narrows enabled down to the repositories named
// by args.Repos, or returns enabled unchanged if no --repos were given.
// A requested path that matches a repository disabled in config, or that
// matches no known repository at all, is skipped with a diagnostic rather
// than forced into the run — original_source/src/main.rs's
// resolve_configured_targets resolves this the same way, and it is the one
// place the distilled behavior description was silent.
func ResolveConfiguredTargets(args RunArgs, enabled, all []ResolvedRepositoryConfig) []ResolvedRepositoryConfig {
	if len(args.Repos) == 0 {
		return enabled
	}

	configuredKeys := make(map[string]bool, len(all))
	for _, r := range all {
		configuredKeys[canonicalKey(r.Path)] = true
	}
	enabledByKey := make(map[string]ResolvedRepositoryConfig, len(enabled))
	for _, r := range enabled {
		enabledByKey[canonicalKey(r.Path)] = r
	}

	var selected []ResolvedRepositoryConfig
	seen := make(map[string]bool, len(args.Repos))

	for _, path := range args.Repos {
		key := canonicalKey(path)
		if seen[key] {
			continue
		}
		seen[key] = true

		if repo, ok := enabledByKey[key]; ok {
			selected = append(selected, repo)
			continue
		}

		if configuredKeys[key] {
			logSkip(path, "disabled in config")
		} else {
			logSkip(path, "not discovered under any workspace root")
		}
	}

	return selected
}

// logSkip is a package-level var so callers (and tests) can capture or
// silence the diagnostic; it defaults to stderr, matching the original's
// eprintln! diagnostics.
var logSkip = func(path, reason string) {
	os.Stderr.WriteString("Skipping " + path + " because it is " + reason + "\n")
}

// IsGitRepo reports whether path contains a .git directory or file (the
// latter for worktrees and submodules, whose .git is a gitdir pointer file).
func IsGitRepo(path string) bool {
	marker := filepath.Join(path, ".git")
	info, err := os.Stat(marker)
	return err == nil && (info.IsDir() || info.Mode().IsRegular())
}

// ResolveRepoRunConfig folds repo's overrides onto base, producing the
// config that workflow.Run actually executes for this one repository.
// Grounded on the ResolvedRepositoryConfig -> per-repo RunConfig step
// main.rs performs inline before calling workflow::run_with_repo_configs.
func ResolveRepoRunConfig(base ResolvedRunConfig, repo ResolvedRepositoryConfig) RepoRunConfig {
	includeUntracked := base.IncludeUntracked
	if repo.IncludeUntracked != nil {
		includeUntracked = *repo.IncludeUntracked
	}

	sideChannel := base.SideChannel
	if repo.SideChannel != nil {
		if repo.SideChannel.Enabled != nil {
			sideChannel.Enabled = *repo.SideChannel.Enabled
		}
		if repo.SideChannel.RemoteName != nil {
			sideChannel.RemoteName = *repo.SideChannel.RemoteName
		}
		if repo.SideChannel.BranchName != nil {
			sideChannel.BranchName = *repo.SideChannel.BranchName
		}
	}

	return RepoRunConfig{
		Path:             repo.Path,
		PushEnabled:      base.PushEnabled,
		IncludeUntracked: includeUntracked,
		SideChannel:      sideChannel,
		CommitTemplate:   base.CommitTemplate,
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func repoConfig(path string, enabled bool) ResolvedRepositoryConfig {
	return ResolvedRepositoryConfig{Path: path, Enabled: enabled}
}

func TestResolveTargetsDefaultsToEnabledRepositories(t *testing.T) {
	all := []ResolvedRepositoryConfig{
		repoConfig("/tmp/repo-a", true),
		repoConfig("/tmp/repo-b", false),
		repoConfig("/tmp/repo-c", true),
	}
	enabled := EnabledRepositories(all)

	selected := ResolveConfiguredTargets(RunArgs{}, enabled, all)

	want := []string{"/tmp/repo-a", "/tmp/repo-c"}
	if len(selected) != len(want) {
		t.Fatalf("selected = %v, want %v", selected, want)
	}
	for i, r := range selected {
		if r.Path != want[i] {
			t.Errorf("selected[%d].Path = %q, want %q", i, r.Path, want[i])
		}
	}
}

func TestResolveTargetsFiltersToMatchingEnabledRepositories(t *testing.T) {
	repoPath := filepath.Join(t.TempDir(), "repo")
	if err := os.MkdirAll(repoPath, 0755); err != nil {
		t.Fatal(err)
	}

	all := []ResolvedRepositoryConfig{repoConfig(repoPath, true)}
	enabled := all

	args := RunArgs{Repos: []string{repoPath}}
	selected := ResolveConfiguredTargets(args, enabled, all)

	if len(selected) != 1 || selected[0].Path != repoPath {
		t.Fatalf("selected = %v, want [%s]", selected, repoPath)
	}
}

func TestResolveTargetsSkipsDisabledRepository(t *testing.T) {
	restore := silenceLogSkip(t)
	defer restore()

	all := []ResolvedRepositoryConfig{repoConfig("/tmp/repo-a", false)}
	enabled := EnabledRepositories(all)

	selected := ResolveConfiguredTargets(RunArgs{Repos: []string{"/tmp/repo-a"}}, enabled, all)
	if len(selected) != 0 {
		t.Fatalf("selected = %v, want none (repo is disabled)", selected)
	}
}

func TestResolveTargetsSkipsUnconfiguredRepository(t *testing.T) {
	restore := silenceLogSkip(t)
	defer restore()

	all := []ResolvedRepositoryConfig{repoConfig("/tmp/repo-a", true)}
	enabled := EnabledRepositories(all)

	selected := ResolveConfiguredTargets(RunArgs{Repos: []string{"/tmp/repo-z"}}, enabled, all)
	if len(selected) != 0 {
		t.Fatalf("selected = %v, want none (repo not discovered)", selected)
	}
}

func TestMergeDiscoveredAppliesOverride(t *testing.T) {
	cfg := Defaults()
	disabled := false
	cfg.Repositories = []RepositoryOverride{
		{Path: "/tmp/repo-b", Enabled: false, HasEnabled: true, IncludeUntracked: &disabled},
	}

	resolved := MergeDiscovered(cfg, []string{"/tmp/repo-a", "/tmp/repo-b"})
	if len(resolved) != 2 {
		t.Fatalf("resolved = %v, want 2 entries", resolved)
	}
	if !resolved[0].Enabled {
		t.Errorf("repo-a (no override) Enabled = false, want true")
	}
	if resolved[1].Enabled {
		t.Errorf("repo-b (overridden) Enabled = true, want false")
	}
}

func silenceLogSkip(t *testing.T) func() {
	t.Helper()
	prev := logSkip
	logSkip = func(string, string) {}
	return func() { logSkip = prev }
}

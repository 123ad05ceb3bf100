package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func initFakeRepo(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(path, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
}

func canonical(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatal(err)
	}
	return resolved
}

func TestHiddenDirectoriesAreSkippedWhenDisabled(t *testing.T) {
	root := t.TempDir()
	visible := filepath.Join(root, "visible")
	hidden := filepath.Join(root, ".hidden", "repo")
	initFakeRepo(t, visible)
	initFakeRepo(t, hidden)

	got := Discover([]string{root}, false)
	want := []string{canonical(t, visible)}

	if len(got) != len(want) || got[0] != want[0] {
		t.Errorf("Discover() = %v, want %v", got, want)
	}
}

func TestHiddenDirectoriesAreDescendedWhenEnabled(t *testing.T) {
	root := t.TempDir()
	visible := filepath.Join(root, "visible")
	hidden := filepath.Join(root, ".hidden", "repo")
	initFakeRepo(t, visible)
	initFakeRepo(t, hidden)

	got := Discover([]string{root}, true)
	want := []string{canonical(t, hidden), canonical(t, visible)}
	sortStrings(want)

	if len(got) != 2 {
		t.Fatalf("Discover() = %v, want 2 entries", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Discover()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDiscoverSkipsNonexistentRoot(t *testing.T) {
	got := Discover([]string{filepath.Join(t.TempDir(), "does-not-exist")}, false)
	if len(got) != 0 {
		t.Errorf("Discover() = %v, want empty", got)
	}
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

package config

import "testing"

func TestPullOnlyOverrideDisablesPush(t *testing.T) {
	base := Defaults()
	args := RunArgs{PullOnly: true}

	resolved, err := ResolveRunConfig(base, args)
	if err != nil {
		t.Fatalf("ResolveRunConfig() failed: %v", err)
	}
	if resolved.PushEnabled {
		t.Error("PushEnabled = true, want false with --pull-only")
	}
}

func TestConflictingUntrackedFlagsFail(t *testing.T) {
	base := Defaults()
	args := RunArgs{IncludeUntracked: true, TrackedOnly: true}

	_, err := ResolveRunConfig(base, args)
	if err == nil {
		t.Fatal("ResolveRunConfig() succeeded, want error")
	}
}

func TestConflictingPullPushFlagsFail(t *testing.T) {
	base := Defaults()
	args := RunArgs{PullOnly: true, Push: true}

	_, err := ResolveRunConfig(base, args)
	if err == nil {
		t.Fatal("ResolveRunConfig() succeeded, want error")
	}
}

func TestConflictingSideChannelFlagsFail(t *testing.T) {
	base := Defaults()
	args := RunArgs{SideChannel: true, NoSideChannel: true}

	_, err := ResolveRunConfig(base, args)
	if err == nil {
		t.Fatal("ResolveRunConfig() succeeded, want error")
	}
}

func TestRootsOverrideWins(t *testing.T) {
	base := Defaults()
	args := RunArgs{Roots: []string{"/tmp/a", "/tmp/b"}}

	resolved, err := ResolveRunConfig(base, args)
	if err != nil {
		t.Fatalf("ResolveRunConfig() failed: %v", err)
	}
	if len(resolved.WorkspaceRoots) != 2 || resolved.WorkspaceRoots[0] != "/tmp/a" || resolved.WorkspaceRoots[1] != "/tmp/b" {
		t.Errorf("WorkspaceRoots = %v, want [/tmp/a /tmp/b]", resolved.WorkspaceRoots)
	}
}

func TestPushModeOverridesDefaultPullOnly(t *testing.T) {
	base := Defaults()
	base.DefaultMode = ModePullOnly
	args := RunArgs{Push: true}

	resolved, err := ResolveRunConfig(base, args)
	if err != nil {
		t.Fatalf("ResolveRunConfig() failed: %v", err)
	}
	if !resolved.PushEnabled {
		t.Error("PushEnabled = false, want true with --push overriding a pull_only default_mode")
	}
}

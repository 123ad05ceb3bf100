package config

import "fmt"

// RunArgs mirrors the CLI flags accepted by `shephard run`, independent of
// how cobra parses them, so resolution logic stays flag-library agnostic.
type RunArgs struct {
	PullOnly         bool
	Push             bool
	IncludeUntracked bool
	TrackedOnly      bool
	SideChannel      bool
	NoSideChannel    bool
	Roots            []string
	Repos            []string
}

// ResolvedRunConfig is the config/CLI merge before any per-repository
// override is applied.
type ResolvedRunConfig struct {
	WorkspaceRoots   []string
	PushEnabled      bool
	IncludeUntracked bool
	SideChannel      SideChannelConfig
	CommitTemplate   string
	FailurePolicy    FailurePolicy
}

// ResolveRunConfig layers args over base, validating the mutually-exclusive
// flag pairs. Grounded on original_source/src/config.rs::resolve_run_config.
func ResolveRunConfig(base Config, args RunArgs) (ResolvedRunConfig, error) {
	if args.PullOnly && args.Push {
		return ResolvedRunConfig{}, fmt.Errorf("--pull-only and --push cannot be used together")
	}
	if args.IncludeUntracked && args.TrackedOnly {
		return ResolvedRunConfig{}, fmt.Errorf("--include-untracked and --tracked-only cannot be used together")
	}
	if args.SideChannel && args.NoSideChannel {
		return ResolvedRunConfig{}, fmt.Errorf("--side-channel and --no-side-channel cannot be used together")
	}

	mode := base.DefaultMode
	if args.PullOnly {
		mode = ModePullOnly
	}
	if args.Push {
		mode = ModeSyncAll
	}

	includeUntracked := base.IncludeUntracked
	if args.IncludeUntracked {
		includeUntracked = true
	}
	if args.TrackedOnly {
		includeUntracked = false
	}

	sideChannel := base.SideChannel
	if args.SideChannel {
		sideChannel.Enabled = true
	}
	if args.NoSideChannel {
		sideChannel.Enabled = false
	}

	workspaceRoots := base.WorkspaceRoots
	if len(args.Roots) > 0 {
		workspaceRoots = args.Roots
	}

	pushEnabled := base.PushEnabled
	if mode == ModePullOnly {
		pushEnabled = false
	}

	return ResolvedRunConfig{
		WorkspaceRoots:   workspaceRoots,
		PushEnabled:      pushEnabled,
		IncludeUntracked: includeUntracked,
		SideChannel:      sideChannel,
		CommitTemplate:   base.CommitTemplate,
		FailurePolicy:    base.FailurePolicy,
	}, nil
}

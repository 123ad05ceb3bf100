// Package selector implements the interactive repository picker: a
// sequence of terminal forms letting the operator choose which discovered
// repositories to sync and override the run's mode before it starts.
package selector

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/steveyegge/shephard/internal/config"
	"github.com/steveyegge/shephard/internal/state"
)

// Selection is the operator's final choice: which repositories to run,
// and the run configuration to run them with.
type Selection struct {
	SelectedRepos []string
	RunConfig     config.ResolvedRunConfig
}

// SelectAndConfigureRun walks the operator through four screens — pick
// repositories, pick run mode, optionally include untracked files,
// optionally enable the side channel — defaulting each choice from the
// persisted state and the base run config. Grounded on
// original_source/src/tui.rs::select_and_configure_run, translated from
// dialoguer's MultiSelect/Select/Confirm to charmbracelet/huh groups.
func SelectAndConfigureRun(repos []string, st *state.State, base config.ResolvedRunConfig, persistSelection bool) (Selection, error) {
	selectedRepos, err := selectRepos(repos, st)
	if err != nil {
		return Selection{}, err
	}

	if persistSelection {
		selectedSet := make(map[string]bool, len(selectedRepos))
		for _, r := range selectedRepos {
			selectedSet[r] = true
		}
		for _, r := range repos {
			st.SelectedRepos[config.CanonicalRepoKey(r)] = selectedSet[r]
		}
	}

	runConfig := base

	pushEnabled := base.PushEnabled
	if err := huh.NewSelect[bool]().
		Title("Run mode").
		Options(
			huh.NewOption("Sync All (pull + commit + push)", true),
			huh.NewOption("Pull only", false),
		).
		Value(&pushEnabled).
		Run(); err != nil {
		return Selection{}, fmt.Errorf("select run mode: %w", err)
	}
	runConfig.PushEnabled = pushEnabled

	includeUntracked := base.IncludeUntracked
	if pushEnabled {
		if err := huh.NewConfirm().
			Title("Include untracked files?").
			Value(&includeUntracked).
			Run(); err != nil {
			return Selection{}, fmt.Errorf("confirm include-untracked: %w", err)
		}
	}
	runConfig.IncludeUntracked = includeUntracked

	sideChannelEnabled := false
	if pushEnabled {
		sideChannelEnabled = base.SideChannel.Enabled
		if err := huh.NewConfirm().
			Title("Use side-channel remote/branch?").
			Value(&sideChannelEnabled).
			Run(); err != nil {
			return Selection{}, fmt.Errorf("confirm side-channel: %w", err)
		}
	}
	runConfig.SideChannel.Enabled = sideChannelEnabled

	return Selection{SelectedRepos: selectedRepos, RunConfig: runConfig}, nil
}

func selectRepos(repos []string, st *state.State) ([]string, error) {
	options := make([]huh.Option[string], 0, len(repos))
	var defaults []string
	for _, r := range repos {
		selected, known := st.SelectedRepos[config.CanonicalRepoKey(r)]
		if !known || selected {
			defaults = append(defaults, r)
		}
		options = append(options, huh.NewOption(r, r))
	}

	var selected []string = defaults
	if err := huh.NewMultiSelect[string]().
		Title("Select repositories").
		Options(options...).
		Value(&selected).
		Run(); err != nil {
		return nil, fmt.Errorf("select repositories: %w", err)
	}
	return selected, nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/steveyegge/shephard/internal/config"
	"github.com/steveyegge/shephard/internal/discovery"
	"github.com/steveyegge/shephard/internal/logging"
	"github.com/steveyegge/shephard/internal/report"
	"github.com/steveyegge/shephard/internal/selector"
	"github.com/steveyegge/shephard/internal/state"
	"github.com/steveyegge/shephard/internal/workflow"
)

func newRunCmd(flags *rootFlags) *cobra.Command {
	var args config.RunArgs
	var nonInteractive bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Pull, and optionally commit and push, every selected repository",
		RunE: func(cmd *cobra.Command, cliArgs []string) error {
			return runSync(cmd.Context(), flags, args, nonInteractive)
		},
	}

	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "skip the repository selector and run every enabled repository")
	cmd.Flags().StringArrayVar(&args.Repos, "repos", nil, "restrict the run to these repository paths")
	cmd.Flags().BoolVar(&args.PullOnly, "pull-only", false, "only pull, never commit or push")
	cmd.Flags().BoolVar(&args.Push, "push", false, "force sync-all mode (pull, commit, push)")
	cmd.Flags().BoolVar(&args.IncludeUntracked, "include-untracked", false, "stage untracked files too")
	cmd.Flags().BoolVar(&args.TrackedOnly, "tracked-only", false, "never stage untracked files")
	cmd.Flags().BoolVar(&args.SideChannel, "side-channel", false, "force-enable the side-channel sync")
	cmd.Flags().BoolVar(&args.NoSideChannel, "no-side-channel", false, "force-disable the side-channel sync")
	cmd.Flags().StringArrayVar(&args.Roots, "roots", nil, "override the configured discovery roots")

	return cmd
}

func runSync(ctx context.Context, flags *rootFlags, args config.RunArgs, nonInteractive bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	baseRunCfg, err := config.ResolveRunConfig(cfg, args)
	if err != nil {
		return err
	}

	runID := resolveRunID(flags)
	logger, closer, err := logging.New(resolveLogPath(flags.logFile), logging.ParseLevel(flags.logLevel), runID)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closer.Close()

	discovered := discovery.Discover(baseRunCfg.WorkspaceRoots, false)
	all := config.MergeDiscovered(cfg, discovered)
	enabled := config.EnabledRepositories(all)
	selectedRepos := config.ResolveConfiguredTargets(args, enabled, all)

	if len(selectedRepos) == 0 {
		fmt.Println("No repositories selected.")
		return nil
	}

	if !nonInteractive && term.IsTerminal(int(os.Stdout.Fd())) {
		selectedRepos, baseRunCfg, err = runInteractiveSelection(selectedRepos, baseRunCfg, cfg.TUI.PersistSelection)
		if err != nil {
			return err
		}
	}

	var targets []config.RepoRunConfig
	for _, repo := range selectedRepos {
		if !config.IsGitRepo(repo.Path) {
			fmt.Fprintf(os.Stderr, "Skipping %s because it is not a git repository\n", repo.Path)
			continue
		}
		targets = append(targets, config.ResolveRepoRunConfig(baseRunCfg, repo))
	}

	if len(targets) == 0 {
		fmt.Println("No repositories selected.")
		return nil
	}

	results := workflow.Run(ctx, targets, cfg.FailurePolicy, logger)
	report.PrintRunSummary(os.Stdout, results)

	if code := report.ExitCode(results); code != 0 {
		os.Exit(code)
	}
	return nil
}

func runInteractiveSelection(repos []config.ResolvedRepositoryConfig, base config.ResolvedRunConfig, persistSelection bool) ([]config.ResolvedRepositoryConfig, config.ResolvedRunConfig, error) {
	paths := make([]string, len(repos))
	byPath := make(map[string]config.ResolvedRepositoryConfig, len(repos))
	for i, r := range repos {
		paths[i] = r.Path
		byPath[r.Path] = r
	}

	var selection selector.Selection
	err := state.WithLock(func(st *state.State) error {
		var selErr error
		selection, selErr = selector.SelectAndConfigureRun(paths, st, base, persistSelection)
		return selErr
	})
	if err != nil {
		return nil, config.ResolvedRunConfig{}, fmt.Errorf("interactive selection: %w", err)
	}

	chosen := make([]config.ResolvedRepositoryConfig, 0, len(selection.SelectedRepos))
	for _, p := range selection.SelectedRepos {
		chosen = append(chosen, byPath[p])
	}
	return chosen, selection.RunConfig, nil
}

func resolveLogPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	statePath, err := config.StatePath()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(statePath), "shephard.log")
}

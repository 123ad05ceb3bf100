package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/steveyegge/shephard/internal/apply"
	"github.com/steveyegge/shephard/internal/config"
	"github.com/steveyegge/shephard/internal/gitrepo"
	"github.com/steveyegge/shephard/internal/sidechannel"
)

func newApplyCmd(flags *rootFlags) *cobra.Command {
	var repoPath string
	var method string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Integrate a repository's side-channel branch into its current branch",
		RunE: func(cmd *cobra.Command, cliArgs []string) error {
			return runApply(cmd, repoPath, method)
		},
	}

	cmd.Flags().StringVar(&repoPath, "repo", "", "repository to apply to (default: current directory)")
	cmd.Flags().StringVar(&method, "method", string(apply.Merge), "integration strategy: merge, cherry-pick, squash")

	return cmd
}

func runApply(cmd *cobra.Command, repoPath, method string) error {
	target := repoPath
	if target == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve current directory: %w", err)
		}
		target = cwd
	}

	canonical, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("canonicalize %s: %w", target, err)
	}
	if resolved, err := filepath.EvalSymlinks(canonical); err == nil {
		canonical = resolved
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sideCfg := config.ResolveApplySideChannel(cfg, canonical)
	side := sidechannel.Descriptor{RemoteName: sideCfg.RemoteName, BranchName: sideCfg.BranchName}

	repo, err := gitrepo.Open(cmd.Context(), canonical)
	if err != nil {
		return fmt.Errorf("open %s: %w", canonical, err)
	}

	applyMethod, err := parseApplyMethod(method)
	if err != nil {
		return err
	}

	if err := apply.Run(cmd.Context(), repo, side, applyMethod); err != nil {
		return fmt.Errorf("apply %s/%s to %s: %w", side.RemoteName, side.BranchName, canonical, err)
	}

	fmt.Printf("Applied side-channel changes to %s using %s\n", canonical, applyMethod)
	return nil
}

func parseApplyMethod(raw string) (apply.Method, error) {
	switch apply.Method(raw) {
	case apply.Merge, apply.CherryPick, apply.Squash:
		return apply.Method(raw), nil
	default:
		return "", fmt.Errorf("unknown apply method %q (want merge, cherry-pick, or squash)", raw)
	}
}

// Package config loads shephard's TOML configuration file, merges it with
// built-in defaults, and layers per-repository overrides and CLI flags on
// top to produce the effective run configuration for each repository.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// RunMode selects the default behavior of `shephard run` absent CLI overrides.
type RunMode string

const (
	ModeSyncAll  RunMode = "sync_all"
	ModePullOnly RunMode = "pull_only"
)

// FailurePolicy controls whether the workflow runner continues past a
// failed repository. "continue" is the only policy currently supported.
type FailurePolicy string

const (
	FailureContinue FailurePolicy = "continue"
)

// SideChannelConfig is the side-channel descriptor as it appears in config.
type SideChannelConfig struct {
	Enabled    bool
	RemoteName string
	BranchName string
}

// RepositoryOverride is one `[[repositories]]` entry: a per-repo override
// keyed by path, applied on top of the config-level fields.
type RepositoryOverride struct {
	Path             string
	Enabled          bool // default true, see applyRaw()
	HasEnabled       bool // whether the TOML entry set `enabled` explicitly
	IncludeUntracked *bool
	SideChannel      *SideChannelOverride
}

// SideChannelOverride carries only the fields a [[repositories]] entry set.
type SideChannelOverride struct {
	Enabled    *bool
	RemoteName *string
	BranchName *string
}

// TUIConfig controls the interactive selector's persistence behavior.
type TUIConfig struct {
	PersistSelection bool
}

// Config is the fully-resolved configuration after defaults + config file,
// before per-repository overrides or CLI flags are applied.
type Config struct {
	WorkspaceRoots    []string
	DefaultMode       RunMode
	PushEnabled       bool
	IncludeUntracked  bool
	SideChannel       SideChannelConfig
	CommitTemplate    string
	FailurePolicy     FailurePolicy
	TUI               TUIConfig
	Repositories      []RepositoryOverride
	LogFile           string
	LogLevel          string
}

// rawConfig is the TOML-decodable shape; every field is optional so that an
// absent key in the file falls back to the built-in default, matching the
// PartialConfig pattern original_source/src/config.rs uses.
type rawConfig struct {
	WorkspaceRoots    []string           `toml:"workspace_roots"`
	DefaultMode       string             `toml:"default_mode"`
	PushEnabled       *bool              `toml:"push_enabled"`
	IncludeUntracked  *bool              `toml:"include_untracked"`
	FailurePolicy     string             `toml:"failure_policy"`
	LogFile           string             `toml:"log_file"`
	LogLevel          string             `toml:"log_level"`
	Commit            *rawCommit         `toml:"commit"`
	SideChannel       *rawSideChannel    `toml:"side_channel"`
	TUI               *rawTUI            `toml:"tui"`
	Repositories      []rawRepository    `toml:"repositories"`
}

type rawCommit struct {
	MessageTemplate string `toml:"message_template"`
}

type rawSideChannel struct {
	Enabled    *bool  `toml:"enabled"`
	RemoteName string `toml:"remote_name"`
	BranchName string `toml:"branch_name"`
}

type rawTUI struct {
	PersistSelection *bool `toml:"persist_selection"`
}

type rawRepository struct {
	Path             string          `toml:"path"`
	Enabled          *bool           `toml:"enabled"`
	IncludeUntracked *bool           `toml:"include_untracked"`
	SideChannel      *rawSideChannel `toml:"side_channel"`
}

// ConfigPath returns <XDG config>/shephard/config.toml.
func ConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config directory: %w", err)
	}
	return filepath.Join(base, "shephard", "config.toml"), nil
}

// StatePath returns <XDG state>/shephard/state.json, following the same
// convention beads uses for its own state directory (there is no
// os.UserStateDir in the standard library; XDG_STATE_HOME is honored
// explicitly, falling back to ~/.local/state on Unix-likes).
func StatePath() (string, error) {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "shephard", "state.json"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "shephard", "state.json"), nil
}

// Load reads the config file if present, layering it over Defaults(), and
// validates the result. A missing file is not an error.
func Load() (Config, error) {
	cfg := Defaults()

	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var parsed rawConfig
	if _, err := toml.Decode(string(raw), &parsed); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	applyRaw(&cfg, parsed)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyRaw(cfg *Config, raw rawConfig) {
	if len(raw.WorkspaceRoots) > 0 {
		cfg.WorkspaceRoots = raw.WorkspaceRoots
	}
	if raw.DefaultMode != "" {
		cfg.DefaultMode = RunMode(raw.DefaultMode)
	}
	if raw.PushEnabled != nil {
		cfg.PushEnabled = *raw.PushEnabled
	}
	if raw.IncludeUntracked != nil {
		cfg.IncludeUntracked = *raw.IncludeUntracked
	}
	if raw.FailurePolicy != "" {
		cfg.FailurePolicy = FailurePolicy(raw.FailurePolicy)
	}
	if raw.LogFile != "" {
		cfg.LogFile = raw.LogFile
	}
	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}
	if raw.Commit != nil && raw.Commit.MessageTemplate != "" {
		cfg.CommitTemplate = raw.Commit.MessageTemplate
	}
	if raw.SideChannel != nil {
		applySideChannel(&cfg.SideChannel, raw.SideChannel)
	}
	if raw.TUI != nil && raw.TUI.PersistSelection != nil {
		cfg.TUI.PersistSelection = *raw.TUI.PersistSelection
	}

	cfg.Repositories = make([]RepositoryOverride, 0, len(raw.Repositories))
	for _, r := range raw.Repositories {
		override := RepositoryOverride{
			Path:             r.Path,
			Enabled:          true,
			IncludeUntracked: r.IncludeUntracked,
		}
		if r.Enabled != nil {
			override.Enabled = *r.Enabled
			override.HasEnabled = true
		}
		if r.SideChannel != nil {
			override.SideChannel = &SideChannelOverride{
				Enabled:    r.SideChannel.Enabled,
				RemoteName: nonEmptyPtr(r.SideChannel.RemoteName),
				BranchName: nonEmptyPtr(r.SideChannel.BranchName),
			}
		}
		cfg.Repositories = append(cfg.Repositories, override)
	}
}

func applySideChannel(cfg *SideChannelConfig, raw *rawSideChannel) {
	if raw.Enabled != nil {
		cfg.Enabled = *raw.Enabled
	}
	if raw.RemoteName != "" {
		cfg.RemoteName = raw.RemoteName
	}
	if raw.BranchName != "" {
		cfg.BranchName = raw.BranchName
	}
}

func nonEmptyPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Defaults returns shephard's built-in configuration before any file or
// flag is applied.
func Defaults() Config {
	return Config{
		WorkspaceRoots:   defaultWorkspaceRoots(),
		DefaultMode:      ModeSyncAll,
		PushEnabled:      true,
		IncludeUntracked: false,
		SideChannel: SideChannelConfig{
			Enabled:    false,
			RemoteName: "shephard",
			BranchName: "shephard/sync",
		},
		CommitTemplate: "shephard sync: {timestamp} {hostname} [{scope}]",
		FailurePolicy:  FailureContinue,
		TUI:            TUIConfig{PersistSelection: true},
		LogLevel:       "info",
	}
}

func defaultWorkspaceRoots() []string {
	var roots []string
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, filepath.Join(home, "projects"), filepath.Join(home, "code"))
	}
	if cwd, err := os.Getwd(); err == nil {
		roots = append(roots, cwd)
	}
	return roots
}

func validate(cfg Config) error {
	if len(cfg.WorkspaceRoots) == 0 {
		return fmt.Errorf("workspace_roots cannot be empty")
	}
	if cfg.SideChannel.RemoteName == "" {
		return fmt.Errorf("side_channel.remote_name cannot be empty")
	}
	if cfg.SideChannel.BranchName == "" {
		return fmt.Errorf("side_channel.branch_name cannot be empty")
	}
	if cfg.CommitTemplate == "" {
		return fmt.Errorf("commit.message_template cannot be empty")
	}

	seen := make(map[string]bool, len(cfg.Repositories))
	for _, r := range cfg.Repositories {
		if r.Path == "" {
			return fmt.Errorf("repositories entry has an empty path")
		}
		key := canonicalKey(r.Path)
		if seen[key] {
			return fmt.Errorf("duplicate repository entry for %s", r.Path)
		}
		seen[key] = true
	}
	return nil
}

// CanonicalRepoKey resolves path to its canonical form, falling back to the
// literal path (a documented best-effort fallback) when canonicalization
// fails — e.g. the path doesn't exist yet. Exported for internal/selector,
// which keys persisted selections the same way.
func CanonicalRepoKey(path string) string {
	return canonicalKey(path)
}

func canonicalKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs
	}
	return resolved
}

// Package state persists the interactive selector's last repository
// selection to disk, guarded by an advisory file lock so two concurrent
// shephard invocations on the same host never interleave a read-modify-write.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/steveyegge/shephard/internal/config"
)

// State is the on-disk selection memory, grounded on
// original_source/src/state.rs::State.
type State struct {
	SelectedRepos map[string]bool `json:"selected_repos"`
}

// Load reads the state file, returning an empty State if it doesn't exist.
func Load() (*State, error) {
	path, err := config.StatePath()
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{SelectedRepos: map[string]bool{}}, nil
		}
		return nil, fmt.Errorf("read state file %s: %w", path, err)
	}

	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", path, err)
	}
	if s.SelectedRepos == nil {
		s.SelectedRepos = map[string]bool{}
	}
	return &s, nil
}

// WithLock loads the current state, runs fn against it, and saves the
// result — all while holding the advisory lock, so the read-modify-write
// the interactive selector performs is atomic with respect to other
// shephard processes on the same host.
func WithLock(fn func(*State) error) error {
	path, err := config.StatePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock state file: %w", err)
	}
	defer lock.Unlock()

	s, err := loadUnlocked(path)
	if err != nil {
		return err
	}

	if err := fn(s); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize state: %w", err)
	}
	return os.WriteFile(path, raw, 0644)
}

func loadUnlocked(path string) (*State, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{SelectedRepos: map[string]bool{}}, nil
		}
		return nil, fmt.Errorf("read state file %s: %w", path, err)
	}
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", path, err)
	}
	if s.SelectedRepos == nil {
		s.SelectedRepos = map[string]bool{}
	}
	return &s, nil
}

// Package prefs persists the user's display preferences and resolves the
// theme tokens that follow from them.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Preferences are the persisted display settings.
type Preferences struct {
	HighContrast bool `yaml:"high_contrast" json:"high_contrast"`
}

// Store keeps Preferences in a YAML file. A store without a path keeps them in
// memory only.
type Store struct {
	mu      sync.Mutex
	path    string
	current Preferences
}

// NewStore returns a store backed by path. The file is created on first write.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path reports the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the preferences. A missing file yields the zero value.
func (s *Store) Load() (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Set stores the high contrast flag.
func (s *Store) Set(highContrast bool) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefs, err := s.loadLocked()
	if err != nil {
		return prefs, err
	}
	prefs.HighContrast = highContrast
	return prefs, s.saveLocked(prefs)
}

// Toggle flips the high contrast flag and persists the result.
func (s *Store) Toggle() (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefs, err := s.loadLocked()
	if err != nil {
		return prefs, err
	}
	prefs.HighContrast = !prefs.HighContrast
	return prefs, s.saveLocked(prefs)
}

func (s *Store) loadLocked() (Preferences, error) {
	if s.path == "" {
		return s.current, nil
	}
	var prefs Preferences
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return prefs, nil
	}
	if err != nil {
		return prefs, fmt.Errorf("prefs: read %s: %w", s.path, err)
	}
	if err := yaml.Unmarshal(raw, &prefs); err != nil {
		return Preferences{}, fmt.Errorf("prefs: decode %s: %w", s.path, err)
	}
	return prefs, nil
}

func (s *Store) saveLocked(prefs Preferences) error {
	if s.path == "" {
		s.current = prefs
		return nil
	}
	raw, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("prefs: encode: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("prefs: create dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("prefs: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("prefs: replace %s: %w", s.path, err)
	}
	s.current = prefs
	return nil
}

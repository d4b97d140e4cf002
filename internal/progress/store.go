// Package progress persists the trainee's shift progression between runs.
package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"priorityone/internal/domain"
	"priorityone/internal/logger"
)

// Compile-time interface check.
var _ domain.ProgressStore = (*FileStore)(nil)

// FileStore keeps progress in a single JSON file. A missing file means a
// fresh trainee; a corrupt file is discarded rather than blocking play.
type FileStore struct {
	mu   sync.Mutex
	path string
	log  *logger.Logger
}

// NewFileStore creates a store writing to the given path.
func NewFileStore(path string, log *logger.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

// DefaultPath returns the per-user save file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("progress: resolve config dir: %w", err)
	}
	return filepath.Join(dir, "priorityone", "progress.json"), nil
}

// Load reads saved progress. Missing or unreadable saves yield the
// defaults; a corrupt save file is deleted.
func (s *FileStore) Load() (domain.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.log.Debug("no save file at %s, starting fresh", s.path)
		return domain.DefaultProgress(), nil
	}
	if err != nil {
		return domain.Progress{}, fmt.Errorf("progress: read save: %w", err)
	}

	var p domain.Progress
	if err := json.Unmarshal(data, &p); err != nil {
		s.log.Warn("corrupt save file %s, discarding: %v", s.path, err)
		os.Remove(s.path)
		return domain.DefaultProgress(), nil
	}

	s.log.Debug("loaded progress: shift=%d tutorial=%v", p.Shift, p.TutorialPassed)
	return p, nil
}

// Save writes progress to disk, creating the save directory on first use.
func (s *FileStore) Save(p domain.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("progress: create save dir: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("progress: marshal: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("progress: write save: %w", err)
	}

	s.log.Debug("saved progress: shift=%d tutorial=%v", p.Shift, p.TutorialPassed)
	return nil
}

// Reset deletes the save file. Resetting a fresh install is not an error.
func (s *FileStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("progress: delete save: %w", err)
	}
	s.log.Info("progress reset")
	return nil
}

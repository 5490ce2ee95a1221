// Package store persists the single most-recently-uploaded dataset. One
// slot, one file: each save replaces the previous dataset wholesale.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/domain"
)

// ErrNotFound is returned by Load when no dataset has ever been saved in
// this store's location. Callers surface it as "upload required first".
var ErrNotFound = errors.New("no dataset has been saved")

const datasetFilename = "dataset.json"

// Store is a single-slot dataset store backed by one JSON file.
// Save writes to a temporary file and renames it into place, so a load
// concurrent with a save observes either the old or the new dataset,
// never a partial write.
type Store struct {
	mu   sync.Mutex
	path string
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory %q: %w", dir, err)
	}
	return &Store{path: filepath.Join(dir, datasetFilename)}, nil
}

// Save atomically replaces the persisted dataset.
func (s *Store) Save(ds *domain.Dataset) error {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp dataset file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing dataset file: %w", err)
	}
	return nil
}

// Load reads the persisted dataset, or ErrNotFound if none exists.
func (s *Store) Load() (*domain.Dataset, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading dataset file: %w", err)
	}

	var ds domain.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decoding dataset file %q: %w", s.path, err)
	}
	return &ds, nil
}

// Clear removes the persisted dataset. Clearing an empty store is not an
// error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing dataset file: %w", err)
	}
	return nil
}

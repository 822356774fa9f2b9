// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/afero"
)

// ErrCorrupt is returned when the state file cannot be parsed.
var ErrCorrupt = errors.New("state file is corrupt")

// Store reads and writes the state file.
type Store struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the state file.
// If the state file does not exist, then returns nil and no error.
func (s *Store) Load() (*State, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading state file %q: %w", s.path, err)
	}
	st := &State{}
	if err := json.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCorrupt, s.path, err)
	}
	if st.Counts.Directories < 0 || st.Counts.Files < 0 || st.Counts.Copies < 0 {
		return nil, fmt.Errorf("%w: %q: negative counts", ErrCorrupt, s.path)
	}
	if st.WorkInProgress == nil {
		st.WorkInProgress = []string{}
	}
	return st, nil
}

// Save writes the state to a temporary file and renames it over the state file.
func (s *Store) Save(st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(st)
}

// Checkpoint saves a snapshot of the progress.
// Snapshots are taken and written under the same lock, so they are written in order.
func (s *Store) Checkpoint(p *Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(p.Snapshot())
}

func (s *Store) save(st *State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("error marshaling state: %w", err)
	}
	tmpPath := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmpPath, data, 0644); err != nil {
		_ = s.fs.Remove(tmpPath)
		return fmt.Errorf("error writing state file %q: %w", tmpPath, err)
	}
	if err := s.fs.Rename(tmpPath, s.path); err != nil {
		_ = s.fs.Remove(tmpPath)
		return fmt.Errorf("error renaming state file %q to %q: %w", tmpPath, s.path, err)
	}
	return nil
}

func NewStore(fs afero.Fs, path string) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Store{
		fs:   fs,
		path: path,
	}
}

// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package state

import (
	"strings"
)

type Counts struct {
	Directories int64 `json:"directories"`
	Files       int64 `json:"files"`
	Copies      int64 `json:"copies"`
}

// State is the progress record of a copy.  It is persisted to the state file
// and returned to the caller when the copy finishes.
type State struct {
	// WorkInProgress is the ordered set of source paths that were submitted but
	// have not been copied successfully.
	WorkInProgress []string `json:"workInProgress"`
	// LastFile is the cursor, the most recently submitted file or entered directory.
	// It is cleared when a copy finishes with nothing in progress.
	LastFile string `json:"lastFile,omitempty"`
	Counts   Counts `json:"counts"`
}

func (s *State) Clone() *State {
	workInProgress := make([]string, len(s.WorkInProgress))
	copy(workInProgress, s.WorkInProgress)
	return &State{
		WorkInProgress: workInProgress,
		LastFile:       s.LastFile,
		Counts:         s.Counts,
	}
}

// Resumable returns true if the state has a position to resume from.
func (s *State) Resumable() bool {
	return len(s.WorkInProgress) > 0 || len(s.LastFile) > 0
}

func New() *State {
	return &State{
		WorkInProgress: []string{},
	}
}

// Contains returns true if name is root or is below root.
func Contains(root string, name string) bool {
	if name == root {
		return true
	}
	if strings.HasSuffix(root, "/") {
		return strings.HasPrefix(name, root)
	}
	return strings.HasPrefix(name, root+"/")
}

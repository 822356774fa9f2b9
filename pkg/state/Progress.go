// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package state

import (
	"sync"
)

// Progress serializes every mutation of a State.
// It is shared by the traversal and the completing copy jobs.
type Progress struct {
	mu    sync.Mutex
	state *State
}

// Enter counts the directory and moves the cursor to it.
// A resumed copy does not count it again, since it is at or before the cursor.
func (p *Progress) Enter(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.LastFile = name
	p.state.Counts.Directories++
}

// Begin marks name as in progress and moves the cursor to it.
func (p *Progress) Begin(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.LastFile = name
	p.add(name)
}

// Retry marks name as in progress without moving the cursor.
// Used for work in progress that is redone before the cursor is reached.
func (p *Progress) Retry(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.add(name)
}

func (p *Progress) add(name string) {
	for _, x := range p.state.WorkInProgress {
		if x == name {
			return
		}
	}
	p.state.WorkInProgress = append(p.state.WorkInProgress, name)
}

// Complete removes name from the work in progress and counts the file.
// It returns the updated number of files.
func (p *Progress) Complete(name string, copied bool) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, x := range p.state.WorkInProgress {
		if x == name {
			p.state.WorkInProgress = append(p.state.WorkInProgress[:i], p.state.WorkInProgress[i+1:]...)
			break
		}
	}
	p.state.Counts.Files++
	if copied {
		p.state.Counts.Copies++
	}
	return p.state.Counts.Files
}

// Finish clears the cursor if nothing is left in progress.
// A state without a cursor or work in progress is not resumed.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.state.WorkInProgress) == 0 {
		p.state.LastFile = ""
	}
}

func (p *Progress) Counts() Counts {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Counts
}

// Snapshot returns a copy of the current state.
func (p *Progress) Snapshot() *State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Clone()
}

func NewProgress(s *State) *Progress {
	if s == nil {
		s = New()
	}
	return &Progress{
		state: s.Clone(),
	}
}

// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package state

// Position is where a path stands relative to the resume markers.
type Position int

const (
	// After is new work.  Resume mode is over or was never active.
	After Position = iota
	// Before was handled by the copy that saved the state.  The path and everything below it are skipped.
	Before
	// Marked is a marker or an ancestor of a marker.  It is visited again but not counted again.
	Marked
	// AtCursor is the cursor.  Resume mode ends here.
	AtCursor
)

// Resume decides which paths a resumed copy visits.
//
// While active, only the markers (the work in progress and the cursor) and
// their parent directories are visited.  Reaching the cursor ends resume mode,
// since every path submitted or entered after it is new work.
//
// Resume is used by the traversal only and is not safe for concurrent use.
type Resume struct {
	active     bool
	cursor     string
	inProgress map[string]struct{}
	markers    []string
	found      map[string]struct{}
}

func (r *Resume) Active() bool {
	return r.active
}

func (r *Resume) Cursor() string {
	return r.cursor
}

// Markers returns the paths the resume is looking for.
func (r *Resume) Markers() []string {
	return r.markers
}

// InProgress returns true if name was in progress when the state was saved.
func (r *Resume) InProgress(name string) bool {
	_, ok := r.inProgress[name]
	return ok
}

// Locate returns the position of name and ends resume mode at the cursor.
func (r *Resume) Locate(name string) Position {
	if !r.active {
		return After
	}
	covered := false
	for _, m := range r.markers {
		if Contains(name, m) {
			covered = true
		}
		if m == name {
			r.found[name] = struct{}{}
		}
	}
	if !covered {
		return Before
	}
	if name == r.cursor {
		r.active = false
		return AtCursor
	}
	return Marked
}

// Missing returns the markers that were never reached.
func (r *Resume) Missing() []string {
	missing := []string{}
	for _, m := range r.markers {
		if _, ok := r.found[m]; !ok {
			missing = append(missing, m)
		}
	}
	return missing
}

// NewResume returns a Resume for the given state.
// If the state has nothing to resume, then the Resume is inactive.
func NewResume(s *State) *Resume {
	r := &Resume{
		inProgress: map[string]struct{}{},
		markers:    []string{},
		found:      map[string]struct{}{},
	}
	if s == nil || !s.Resumable() {
		return r
	}
	for _, name := range s.WorkInProgress {
		r.inProgress[name] = struct{}{}
		r.markers = append(r.markers, name)
	}
	r.cursor = s.LastFile
	if len(r.cursor) == 0 {
		r.cursor = s.WorkInProgress[len(s.WorkInProgress)-1]
	}
	if _, ok := r.inProgress[r.cursor]; !ok {
		r.markers = append(r.markers, r.cursor)
	}
	r.active = true
	return r
}

// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package copier

import (
	"fmt"

	"github.com/navwar/gocopy/pkg/state"
)

// Kind classifies a failure.
type Kind string

const (
	// KindNotFound is an absent destination.  It leads to a first copy and is never returned as an error.
	KindNotFound               Kind = "NotFound"
	KindSourceMissing          Kind = "SourceMissing"
	KindPermissionOrIO         Kind = "PermissionOrIO"
	KindStateCorrupt           Kind = "StateCorrupt"
	KindWorkInProgressNotFound Kind = "WorkInProgressNotFound"
)

// Fatal returns true if failures of this kind abort the copy even when errors are ignored.
func (k Kind) Fatal() bool {
	return k == KindStateCorrupt || k == KindWorkInProgressNotFound
}

// Op is the operation that failed.
type Op string

const (
	OpStat   Op = "stat"
	OpList   Op = "list"
	OpMkdir  Op = "mkdir"
	OpCopy   Op = "copy"
	OpState  Op = "state"
	OpResume Op = "resume"
)

var verbs = map[Op]string{
	OpStat:   "stating",
	OpList:   "listing",
	OpMkdir:  "creating directory",
	OpCopy:   "copying",
	OpState:  "persisting state to",
	OpResume: "resuming from",
}

// Error is returned by Copy when the copy is aborted.
// State is the progress record when the copy stopped.
type Error struct {
	Op    Op
	Path  string
	Kind  Kind
	Err   error
	State *state.State
}

func (e *Error) Error() string {
	verb, ok := verbs[e.Op]
	if !ok {
		verb = string(e.Op)
	}
	return fmt.Sprintf("error %s %q (%s): %s", verb, e.Path, e.Kind, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

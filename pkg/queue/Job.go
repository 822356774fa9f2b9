// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package queue

import (
	"context"
	"fmt"
)

// Job is a deferred copy of a single file.
type Job struct {
	Source      string
	Destination string
	// Admit is called once a slot is free and before the job starts.
	// If it returns false, then the slot is released and the job is dropped.
	Admit func() bool
	Run   func(ctx context.Context) error
}

// Failure is the result of a job that returned an error.
type Failure struct {
	Job *Job
	Err error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("error copying %q to %q: %s", f.Job.Source, f.Job.Destination, f.Err.Error())
}

func (f *Failure) Unwrap() error {
	return f.Err
}

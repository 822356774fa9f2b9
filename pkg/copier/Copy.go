// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package copier

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/navwar/gocopy/pkg/fs"
	"github.com/navwar/gocopy/pkg/queue"
	"github.com/navwar/gocopy/pkg/state"
)

const (
	DefaultStateFrequency     = 100
	DefaultTimestampPrecision = time.Second
)

type copier struct {
	input       *CopyInput
	source      fs.FileSystem
	destination fs.FileSystem
	precision   time.Duration
	frequency   int64
	store       *state.Store
	progress    *state.Progress
	resume      *state.Resume
	queue       *queue.Queue
	policy      *ErrorPolicy
	limiter     *rate.Limiter
}

// Copy copies the source to the destination and returns the final progress record.
//
// If a state path is given and the state file exists, then the copy resumes
// from the work in progress recorded in the state file.  The state is saved
// every StateFrequency files and once more when the copy stops.
//
// If the copy is aborted, then the returned error is a *Error and the final
// progress record is returned with it.
func Copy(ctx context.Context, input *CopyInput) (*state.State, error) {
	if len(input.Source) == 0 {
		return nil, fmt.Errorf("source is missing")
	}
	if len(input.Destination) == 0 {
		return nil, fmt.Errorf("destination is missing")
	}
	if input.SourceFileSystem == nil {
		return nil, fmt.Errorf("source filesystem is missing")
	}

	c := &copier{
		input:       input,
		source:      input.SourceFileSystem,
		destination: input.DestinationFileSystem,
		precision:   input.TimestampPrecision,
		frequency:   int64(input.StateFrequency),
		queue:       queue.New(input.MaxJobs),
		policy:      NewErrorPolicy(input.IgnoreErrors, input.Logger),
	}
	if c.destination == nil {
		c.destination = c.source
	}
	if c.precision <= 0 {
		c.precision = DefaultTimestampPrecision
	}
	if c.frequency <= 0 {
		c.frequency = DefaultStateFrequency
	}
	if input.FilesPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(input.FilesPerSecond), 1)
	}

	source := c.source.Join(input.Source)
	destination := c.destination.Join(input.Destination)

	// load state
	var previous *state.State
	if len(input.StatePath) > 0 {
		c.store = state.NewStore(input.StateFileSystem, input.StatePath)
		s, err := c.store.Load()
		if err != nil {
			return nil, &Error{Op: OpState, Path: input.StatePath, Kind: KindStateCorrupt, Err: err}
		}
		// a finished state starts a new copy
		if s != nil && s.Resumable() {
			for _, name := range s.WorkInProgress {
				if !state.Contains(source, name) {
					return s, &Error{
						Op:    OpResume,
						Path:  name,
						Kind:  KindWorkInProgressNotFound,
						Err:   fmt.Errorf("work in progress is not under source %q", source),
						State: s,
					}
				}
			}
			previous = s
		}
	}
	c.progress = state.NewProgress(previous)
	c.resume = state.NewResume(previous)

	c.log("Copying", map[string]interface{}{
		"src":       source,
		"dst":       destination,
		"recursive": input.Recursive,
		"jobs":      c.queue.Max(),
		"resume":    c.resume.Active(),
	})

	_ = c.run(ctx, source, destination)

	// in-flight copies finish, their failures were handled when they occurred
	c.queue.Wait()
	if failures := c.queue.Failures(); len(failures) > 0 {
		c.log("Failed copies", map[string]interface{}{
			"src":      source,
			"failures": len(failures),
		})
	}

	if !c.policy.Aborted() {
		if missing := c.resume.Missing(); len(missing) > 0 {
			_ = c.policy.Handle(&Error{
				Op:   OpResume,
				Path: missing[0],
				Kind: KindWorkInProgressNotFound,
				Err:  fmt.Errorf("work in progress not found under source %q: %q", source, missing),
			})
		}
	}

	if !c.policy.Aborted() {
		c.progress.Finish()
	}

	final := c.progress.Snapshot()
	if c.store != nil {
		if err := c.store.Save(final); err != nil {
			_ = c.policy.Handle(&Error{Op: OpState, Path: input.StatePath, Kind: KindPermissionOrIO, Err: err})
		}
	}

	if err := c.policy.Err(); err != nil {
		err.State = final
		return final, err
	}

	c.log("Copied", map[string]interface{}{
		"src":    source,
		"dst":    destination,
		"counts": final.Counts,
	})

	return final, nil
}

// run walks the source root.  Failures are handled by the error policy.
func (c *copier) run(ctx context.Context, source string, destination string) error {
	sourceFileInfo, err := c.source.Stat(ctx, source)
	if err != nil {
		if c.source.IsNotExist(err) {
			return c.fail(OpStat, source, KindSourceMissing, err)
		}
		return c.fail(OpStat, source, KindPermissionOrIO, err)
	}

	// ensure the destination root exists
	parent := destination
	if !sourceFileInfo.IsDir() {
		parent = c.destination.Dir(destination)
	}
	if err := c.destination.MkdirAll(ctx, parent, 0755); err != nil {
		return c.fail(OpMkdir, parent, KindPermissionOrIO, err)
	}

	position := c.resume.Locate(source)
	if position == state.Before {
		return nil
	}

	if sourceFileInfo.IsDir() {
		// the root is always listed, but only counted if recursive
		return c.directory(ctx, source, destination, c.input.Recursive && position == state.After)
	}

	return c.file(ctx, source, destination, sourceFileInfo, position)
}

// visit copies a path below the source root.
func (c *copier) visit(ctx context.Context, source string, destination string) error {
	if c.aborted() {
		return nil
	}

	position := c.resume.Locate(source)
	if position == state.Before {
		return nil
	}

	sourceFileInfo, err := c.source.Stat(ctx, source)
	if err != nil {
		return c.fail(OpStat, source, KindPermissionOrIO, err)
	}

	if sourceFileInfo.IsDir() {
		if !c.input.Recursive {
			return nil
		}
		return c.directory(ctx, source, destination, position == state.After)
	}

	return c.file(ctx, source, destination, sourceFileInfo, position)
}

// file submits the copy of a file unless the copy that saved the state completed it.
func (c *copier) file(ctx context.Context, source string, destination string, sourceFileInfo fs.FileInfo, position state.Position) error {
	switch position {
	case state.AtCursor:
		if !c.resume.InProgress(source) {
			return nil
		}
		return c.submit(ctx, source, destination, sourceFileInfo, false)
	case state.Marked:
		return c.submit(ctx, source, destination, sourceFileInfo, true)
	}
	return c.submit(ctx, source, destination, sourceFileInfo, false)
}

func (c *copier) aborted() bool {
	return c.policy.Aborted()
}

// destinationKind classifies a failure to stat a destination path.
func (c *copier) destinationKind(err error) Kind {
	if c.destination.IsNotExist(err) {
		return KindNotFound
	}
	return KindPermissionOrIO
}

// fail returns a non-nil error only if the failure aborts the copy.
func (c *copier) fail(op Op, name string, kind Kind, err error) error {
	e := &Error{
		Op:    op,
		Path:  name,
		Kind:  kind,
		Err:   err,
		State: c.progress.Snapshot(),
	}
	return c.policy.Handle(e)
}

func (c *copier) log(msg string, fields map[string]interface{}) {
	if c.input.Logger != nil {
		_ = c.input.Logger.Log(msg, fields)
	}
}

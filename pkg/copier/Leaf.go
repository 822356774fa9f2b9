// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package copier

import (
	"context"

	"github.com/navwar/gocopy/pkg/fs"
	"github.com/navwar/gocopy/pkg/queue"
)

const (
	ActionStart    = "start"
	ActionComplete = "complete"
	ActionSkipped  = "skipped"
	ActionError    = "error"
)

// submit queues the copy of a file and marks it as in progress once the queue admits it.
// Blocks while the queue is full.  If retry is true, then the file was in progress when the
// state was saved and the cursor does not move.
func (c *copier) submit(ctx context.Context, source string, destination string, sourceFileInfo fs.FileInfo, retry bool) error {
	if c.aborted() {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return c.policy.Abort(&Error{Op: OpCopy, Path: source, Kind: KindPermissionOrIO, Err: err})
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return c.policy.Abort(&Error{Op: OpCopy, Path: source, Kind: KindPermissionOrIO, Err: err})
		}
	}

	err := c.queue.Submit(ctx, &queue.Job{
		Source:      source,
		Destination: destination,
		Admit: func() bool {
			// the copy may have aborted while waiting for a slot
			if c.aborted() {
				return false
			}
			if retry {
				c.progress.Retry(source)
			} else {
				c.progress.Begin(source)
			}
			c.event(ActionStart, source, nil)
			return true
		},
		Run: func(ctx context.Context) error {
			return c.leaf(ctx, source, destination, sourceFileInfo)
		},
	})
	if err != nil {
		return c.policy.Abort(&Error{Op: OpCopy, Path: source, Kind: KindPermissionOrIO, Err: err})
	}
	return nil
}

// leaf copies a single file according to the overwrite policy.
// Runs in the queue.  Failures go to the error policy as they occur.
func (c *copier) leaf(ctx context.Context, source string, destination string, sourceFileInfo fs.FileInfo) error {
	copied, err := c.copyFile(ctx, source, destination, sourceFileInfo)
	if err != nil {
		err.State = c.progress.Snapshot()
		_ = c.policy.Handle(err)
		c.event(ActionError, source, err)
		return err
	}

	files := c.progress.Complete(source, copied)
	if copied {
		c.event(ActionComplete, source, nil)
	} else {
		c.event(ActionSkipped, source, nil)
	}

	if c.store != nil && files%c.frequency == 0 {
		if err := c.store.Checkpoint(c.progress); err != nil {
			e := &Error{Op: OpState, Path: c.store.Path(), Kind: KindPermissionOrIO, Err: err, State: c.progress.Snapshot()}
			_ = c.policy.Handle(e)
			return e
		}
	}

	return nil
}

func (c *copier) copyFile(ctx context.Context, source string, destination string, sourceFileInfo fs.FileInfo) (bool, *Error) {
	destinationFileInfo, err := c.destination.Stat(ctx, destination)
	if err != nil {
		if kind := c.destinationKind(err); kind != KindNotFound {
			return false, &Error{Op: OpStat, Path: destination, Kind: kind, Err: err}
		}
	} else if !c.overwrite(sourceFileInfo, destinationFileInfo) {
		return false, nil
	}

	err = fs.Copy(ctx, &fs.CopyInput{
		SourceName:            source,
		SourceFileInfo:        sourceFileInfo,
		SourceFileSystem:      c.source,
		DestinationName:       destination,
		DestinationFileSystem: c.destination,
	})
	if err != nil {
		return false, &Error{Op: OpCopy, Path: source, Kind: KindPermissionOrIO, Err: err}
	}

	return true, nil
}

// overwrite returns true if an existing destination file should be replaced.
func (c *copier) overwrite(source fs.FileInfo, destination fs.FileInfo) bool {
	if c.input.Overwrite {
		return true
	}
	if c.input.OverwriteMismatches {
		if source.Size() != destination.Size() {
			return true
		}
		return fs.NewerTimestamp(source.ModTime(), destination.ModTime(), c.precision)
	}
	return false
}

func (c *copier) event(action string, name string, err error) {
	if !c.input.Verbose || c.input.Logger == nil {
		return
	}
	fields := map[string]interface{}{
		"action": action,
		"path":   name,
		"counts": c.progress.Counts(),
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	_ = c.input.Logger.Log("File", fields)
}

// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package copier

import (
	"context"
)

// directory creates the destination directory and visits every entry of the source directory.
// If count is true, then the directory is counted when it is entered, even if its listing fails.
// Counting moves the cursor to the directory.
func (c *copier) directory(ctx context.Context, source string, destination string, count bool) error {
	if count {
		c.progress.Enter(source)
	}

	if _, err := c.destination.Stat(ctx, destination); err != nil {
		if kind := c.destinationKind(err); kind != KindNotFound {
			return c.fail(OpStat, destination, kind, err)
		}
		if err := c.destination.Mkdir(ctx, destination, 0755); err != nil {
			return c.fail(OpMkdir, destination, KindPermissionOrIO, err)
		}
	}

	sourceDirectoryEntries, err := c.source.ReadDir(ctx, source)
	if err != nil {
		return c.fail(OpList, source, KindPermissionOrIO, err)
	}

	for _, sourceDirectoryEntry := range sourceDirectoryEntries {
		if c.aborted() {
			return nil
		}
		err := c.visit(
			ctx,
			c.source.Join(source, sourceDirectoryEntry.Name()),
			c.destination.Join(destination, sourceDirectoryEntry.Name()),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// Copy copies a single file from the source filesystem to the destination filesystem.
// If both sides use the same filesystem, then the filesystem's own Copy is used.
// The parent directory of the destination must already exist.
func Copy(ctx context.Context, input *CopyInput) error {
	if input.SourceFileSystem == input.DestinationFileSystem {
		return input.SourceFileSystem.Copy(ctx, input.SourceName, input.DestinationName)
	}

	// open source file
	sourceFile, err := input.SourceFileSystem.Open(ctx, input.SourceName)
	if err != nil {
		return fmt.Errorf("error opening source file at %q: %w", input.SourceName, err)
	}

	// open destination file
	destinationFile, err := input.DestinationFileSystem.OpenFile(ctx, input.DestinationName, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		_ = sourceFile.Close() // silently close source file
		return fmt.Errorf("error creating destination file at %q: %w", input.DestinationName, err)
	}

	// copy bytes from source to destination
	_, err = io.Copy(destinationFile, sourceFile)
	if err != nil {
		_ = sourceFile.Close()      // silently close source file
		_ = destinationFile.Close() // silently close destination file
		return fmt.Errorf("error copying from %q to %q: %w", input.SourceName, input.DestinationName, err)
	}

	err = sourceFile.Close()
	if err != nil {
		_ = destinationFile.Close() // silently close destination file
		return fmt.Errorf("error closing source file after copying: %w", err)
	}

	err = destinationFile.Close()
	if err != nil {
		return fmt.Errorf("error closing destination file after copying: %w", err)
	}

	// preserve modification time
	if input.SourceFileInfo != nil {
		err = input.DestinationFileSystem.Chtimes(ctx, input.DestinationName, time.Now(), input.SourceFileInfo.ModTime())
		if err != nil {
			return fmt.Errorf("error changing timestamps for destination after copying: %w", err)
		}
	}

	return nil
}

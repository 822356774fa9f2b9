// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package lfs

import (
	"fmt"
	"path/filepath"
)

// Check returns an error if the source and destination are the same path
// or if one contains the other, since copying would never terminate.
func Check(source string, destination string) error {
	source = filepath.Clean(source)
	destination = filepath.Clean(destination)
	if source == destination {
		return fmt.Errorf("source and destination must be different: %q", source)
	}
	sourceDirectories := Split(source)
	destinationDirectories := Split(destination)
	i := 0
	for ; i < len(sourceDirectories) && i < len(destinationDirectories); i++ {
		if sourceDirectories[i] != destinationDirectories[i] {
			return nil
		}
	}
	if len(sourceDirectories)-i > 0 {
		return fmt.Errorf("cycle error: destination %q is a parent of source %q", destination, source)
	}
	return fmt.Errorf("cycle error: source %q is a parent of destination %q", source, destination)
}

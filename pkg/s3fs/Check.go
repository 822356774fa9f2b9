// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package s3fs

import (
	"fmt"
	"path"
	"strings"
)

// Check returns an error if the source and destination keys within the same bucket
// are the same or if one contains the other.
func Check(sourceBucket string, source string, destinationBucket string, destination string) error {
	if sourceBucket != destinationBucket {
		return nil
	}
	source = strings.TrimPrefix(path.Clean("/"+source), "/")
	destination = strings.TrimPrefix(path.Clean("/"+destination), "/")
	if source == destination {
		return fmt.Errorf("source and destination must be different: %q", "s3://"+sourceBucket+"/"+source)
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

// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package copier

import (
	"time"

	"github.com/spf13/afero"

	"github.com/navwar/gocopy/pkg/fs"
)

type CopyInput struct {
	Source                string // could be file or directory
	SourceFileSystem      fs.FileSystem
	Destination           string        // could be file or directory
	DestinationFileSystem fs.FileSystem // defaults to the source filesystem
	Recursive             bool
	Overwrite             bool
	OverwriteMismatches   bool
	IgnoreErrors          bool
	MaxJobs               int
	StatePath             string
	StateFrequency        int
	StateFileSystem       afero.Fs // defaults to the operating system
	TimestampPrecision    time.Duration
	FilesPerSecond        float64 // zero is unlimited
	Logger                fs.Logger
	Verbose               bool // log an event for every file
}

// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package fs

import (
	"context"
	"os"
	"time"
)

// FileSystem is the set of filesystem primitives the copy engine calls through.
// Paths are interpreted relative to the root of the filesystem.
type FileSystem interface {
	Chtimes(ctx context.Context, name string, atime time.Time, mtime time.Time) error
	// Copy copies a single file within this filesystem.
	Copy(ctx context.Context, source string, destination string) error
	Dir(name string) string
	IsNotExist(err error) bool
	Join(name ...string) string
	Mkdir(ctx context.Context, name string, mode os.FileMode) error
	MkdirAll(ctx context.Context, name string, mode os.FileMode) error
	Open(ctx context.Context, name string) (File, error)
	OpenFile(ctx context.Context, name string, flag int, perm os.FileMode) (File, error)
	// ReadDir returns the entries of the directory in the order the filesystem lists them.
	ReadDir(ctx context.Context, name string) ([]FileInfo, error)
	Root() string
	Stat(ctx context.Context, name string) (FileInfo, error)
}

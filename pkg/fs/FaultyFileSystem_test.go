// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package fs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navwar/gocopy/pkg/fs"
	"github.com/navwar/gocopy/pkg/lfs"
)

func newFaultyFileSystem(t *testing.T) *fs.FaultyFileSystem {
	mfs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mfs, "/a/file1", []byte("1"), 0644))
	require.NoError(t, afero.WriteFile(mfs, "/a/file2", []byte("22"), 0644))
	return fs.NewFaultyFileSystem(lfs.NewAferoFileSystem(mfs))
}

func TestFaultyFileSystemPassThrough(t *testing.T) {
	ctx := context.Background()
	f := newFaultyFileSystem(t)

	fi, err := f.Stat(ctx, "/a/file2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), fi.Size())

	entries, err := f.ReadDir(ctx, "/a")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	require.NoError(t, f.Copy(ctx, "/a/file1", "/a/file3"))
	assert.Equal(t, "/a", f.Dir("/a/file3"))
}

func TestFaultyFileSystemSkipTimes(t *testing.T) {
	ctx := context.Background()
	f := newFaultyFileSystem(t)
	f.Inject(fs.Fault{Operation: fs.OperationStat, Match: "file1", Skip: 1, Times: 2})

	_, err := f.Stat(ctx, "/a/file1")
	assert.NoError(t, err)
	_, err = f.Stat(ctx, "/a/file1")
	assert.ErrorIs(t, err, fs.ErrInjected)
	_, err = f.Stat(ctx, "/a/file1")
	assert.ErrorIs(t, err, fs.ErrInjected)
	_, err = f.Stat(ctx, "/a/file1")
	assert.NoError(t, err)

	// other paths are not affected
	_, err = f.Stat(ctx, "/a/file2")
	assert.NoError(t, err)
}

func TestFaultyFileSystemCustomError(t *testing.T) {
	ctx := context.Background()
	f := newFaultyFileSystem(t)
	custom := errors.New("disk on fire")
	f.Inject(fs.Fault{Operation: fs.OperationReadDir, Err: custom})
	f.Inject(fs.Fault{Operation: fs.OperationMkdir, Match: "/b"})
	f.Inject(fs.Fault{Operation: fs.OperationCopy, Match: "file2"})
	f.Inject(fs.Fault{Operation: fs.OperationOpen})

	_, err := f.ReadDir(ctx, "/a")
	assert.ErrorIs(t, err, custom)
	assert.Contains(t, err.Error(), `readdir "/a"`)

	assert.ErrorIs(t, f.MkdirAll(ctx, "/b/c", 0755), fs.ErrInjected)
	assert.ErrorIs(t, f.Mkdir(ctx, "/b", 0755), fs.ErrInjected)
	assert.NoError(t, f.Mkdir(ctx, "/c", 0755))

	assert.ErrorIs(t, f.Copy(ctx, "/a/file2", "/c/file2"), fs.ErrInjected)
	assert.NoError(t, f.Copy(ctx, "/a/file1", "/c/file1"))

	_, err = f.Open(ctx, "/a/file1")
	assert.ErrorIs(t, err, fs.ErrInjected)

	f.Reset()
	_, err = f.ReadDir(ctx, "/a")
	assert.NoError(t, err)
}

// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package lfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/navwar/gocopy/pkg/fs"
)

type LocalFileSystem struct {
	root string
	fs   afero.Fs
}

func (lfs *LocalFileSystem) Chtimes(ctx context.Context, name string, atime time.Time, mtime time.Time) error {
	return lfs.fs.Chtimes(name, atime, mtime)
}

func (lfs *LocalFileSystem) Copy(ctx context.Context, source string, destination string) error {
	sourceFileInfo, err := lfs.fs.Stat(source)
	if err != nil {
		return fmt.Errorf("error stating source file at %q: %w", source, err)
	}

	sourceFile, err := lfs.fs.Open(source)
	if err != nil {
		return fmt.Errorf("error opening source file at %q: %w", source, err)
	}

	destinationFile, err := lfs.fs.OpenFile(destination, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		_ = sourceFile.Close() // silently close source file
		return fmt.Errorf("error creating destination file at %q: %w", destination, err)
	}

	_, err = io.Copy(destinationFile, sourceFile)
	if err != nil {
		_ = sourceFile.Close()      // silently close source file
		_ = destinationFile.Close() // silently close destination file
		return fmt.Errorf("error copying from %q to %q: %w", source, destination, err)
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

	// Preserve Modification time
	err = lfs.fs.Chtimes(destination, time.Now(), sourceFileInfo.ModTime())
	if err != nil {
		return fmt.Errorf("error changing timestamps for destination after copying: %w", err)
	}

	return nil
}

func (lfs *LocalFileSystem) Dir(name string) string {
	return filepath.Dir(name)
}

func (lfs *LocalFileSystem) IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

func (lfs *LocalFileSystem) Join(name ...string) string {
	return filepath.Join(name...)
}

func (lfs *LocalFileSystem) Mkdir(ctx context.Context, name string, mode os.FileMode) error {
	return lfs.fs.Mkdir(name, mode)
}

func (lfs *LocalFileSystem) MkdirAll(ctx context.Context, name string, mode os.FileMode) error {
	return lfs.fs.MkdirAll(name, mode)
}

func (lfs *LocalFileSystem) Open(ctx context.Context, name string) (fs.File, error) {
	f, err := lfs.fs.Open(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (lfs *LocalFileSystem) OpenFile(ctx context.Context, name string, flag int, perm os.FileMode) (fs.File, error) {
	f, err := lfs.fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (lfs *LocalFileSystem) ReadDir(ctx context.Context, name string) ([]fs.FileInfo, error) {
	readDirOutput, err := afero.ReadDir(lfs.fs, name)
	if err != nil {
		return nil, err
	}
	directoryEntries := make([]fs.FileInfo, 0, len(readDirOutput))
	for _, fi := range readDirOutput {
		directoryEntries = append(directoryEntries, NewLocalDirectoryEntry(fi))
	}
	return directoryEntries, nil
}

func (lfs *LocalFileSystem) Root() string {
	return "file://" + lfs.root
}

func (lfs *LocalFileSystem) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	fi, err := lfs.fs.Stat(name)
	if err != nil {
		return nil, err
	}
	return NewLocalDirectoryEntry(fi), nil
}

// NewLocalFileSystem returns a filesystem backed by the operating system.
// If rootPath is empty, then paths are used as given.
func NewLocalFileSystem(rootPath string) *LocalFileSystem {
	if len(rootPath) == 0 {
		return &LocalFileSystem{
			root: rootPath,
			fs:   afero.NewOsFs(),
		}
	}
	return &LocalFileSystem{
		root: rootPath,
		fs:   afero.NewBasePathFs(afero.NewOsFs(), rootPath),
	}
}

func NewReadOnlyLocalFileSystem(rootPath string) *LocalFileSystem {
	if len(rootPath) == 0 {
		return &LocalFileSystem{
			root: rootPath,
			fs:   afero.NewReadOnlyFs(afero.NewOsFs()),
		}
	}
	return &LocalFileSystem{
		root: rootPath,
		fs:   afero.NewBasePathFs(afero.NewReadOnlyFs(afero.NewOsFs()), rootPath),
	}
}

// NewMemoryFileSystem returns a filesystem held in memory.
func NewMemoryFileSystem() *LocalFileSystem {
	return NewAferoFileSystem(afero.NewMemMapFs())
}

// NewAferoFileSystem wraps an existing afero filesystem.
func NewAferoFileSystem(fs afero.Fs) *LocalFileSystem {
	return &LocalFileSystem{
		root: "",
		fs:   fs,
	}
}

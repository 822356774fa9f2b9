// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package s3fs

import (
	"errors"
	"io"
)

// S3File is an object opened for reading or for writing, but not both.
type S3File struct {
	name        string
	readCloser  io.ReadCloser
	writeCloser io.WriteCloser
}

func (f *S3File) Name() string {
	return f.name
}

func (f *S3File) Close() error {
	if f.readCloser != nil {
		if err := f.readCloser.Close(); err != nil {
			return err
		}
	}
	if f.writeCloser != nil {
		return f.writeCloser.Close()
	}
	return nil
}

func (f *S3File) Read(p []byte) (int, error) {
	if f.readCloser == nil {
		return 0, errors.New("S3File is not open for reading")
	}
	return f.readCloser.Read(p)
}

func (f *S3File) Write(p []byte) (n int, err error) {
	if f.writeCloser == nil {
		return 0, errors.New("S3File is not open for writing")
	}
	return f.writeCloser.Write(p)
}

func NewS3File(name string, readCloser io.ReadCloser, writeCloser io.WriteCloser) *S3File {
	return &S3File{
		name:        name,
		readCloser:  readCloser,
		writeCloser: writeCloser,
	}
}

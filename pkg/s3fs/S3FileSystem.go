// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package s3fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/navwar/gocopy/pkg/fs"
)

// S3FileSystem is a filesystem rooted at a bucket and an optional key prefix.
// Names are slash-separated paths relative to the root, e.g., "/a/b".
// Directories are common prefixes, optionally marked by an empty object whose key ends in "/".
type S3FileSystem struct {
	client           Client
	bucket           string
	prefix           string
	bucketKeyEnabled bool
	partSize         int
	concurrency      int
}

// Chtimes is a no-op, since the last modified time of an object cannot be set.
func (s3fs *S3FileSystem) Chtimes(ctx context.Context, name string, atime time.Time, mtime time.Time) error {
	return nil
}

func (s3fs *S3FileSystem) Copy(ctx context.Context, source string, destination string) error {
	_, err := s3fs.client.CopyObject(ctx, &s3.CopyObjectInput{
		ACL:              types.ObjectCannedACLBucketOwnerFullControl,
		Bucket:           aws.String(s3fs.bucket),
		BucketKeyEnabled: aws.Bool(s3fs.bucketKeyEnabled),
		Key:              aws.String(s3fs.key(destination)),
		CopySource:       aws.String(fmt.Sprintf("%s/%s", s3fs.bucket, s3fs.key(source))),
	})
	if err != nil {
		return fmt.Errorf("error copying object %q to %q: %w", s3fs.key(source), s3fs.key(destination), err)
	}
	return nil
}

func (s3fs *S3FileSystem) Dir(name string) string {
	return Dir(name)
}

// key returns the object key for the given name.
func (s3fs *S3FileSystem) key(name string) string {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if len(s3fs.prefix) == 0 {
		return name
	}
	if len(name) == 0 {
		return s3fs.prefix
	}
	return s3fs.prefix + "/" + name
}

// listPrefix returns the prefix used to list the directory with the given name.
func (s3fs *S3FileSystem) listPrefix(name string) string {
	if k := s3fs.key(name); len(k) > 0 {
		return k + "/"
	}
	return ""
}

func (s3fs *S3FileSystem) IsNotExist(err error) bool {
	if errors.Is(err, os.ErrNotExist) {
		return true
	}
	var apiError smithy.APIError
	if errors.As(err, &apiError) {
		switch apiError.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return true
		}
	}
	var responseError *http.ResponseError
	if errors.As(err, &responseError) {
		if responseError.HTTPStatusCode() == 404 {
			return true
		}
	}
	return false
}

func (s3fs *S3FileSystem) Join(name ...string) string {
	return path.Join(name...)
}

// Mkdir creates a directory marker.
func (s3fs *S3FileSystem) Mkdir(ctx context.Context, name string, mode os.FileMode) error {
	key := s3fs.key(name)
	if len(key) == 0 {
		return nil
	}
	_, err := s3fs.client.PutObject(ctx, &s3.PutObjectInput{
		ACL:              types.ObjectCannedACLBucketOwnerFullControl,
		Body:             bytes.NewReader([]byte{}),
		Bucket:           aws.String(s3fs.bucket),
		BucketKeyEnabled: aws.Bool(s3fs.bucketKeyEnabled),
		ContentLength:    aws.Int64(0),
		Key:              aws.String(key + "/"),
	})
	if err != nil {
		return fmt.Errorf("error creating directory marker for %q: %w", name, err)
	}
	return nil
}

// MkdirAll creates a directory marker.  Parents are implied by the key.
func (s3fs *S3FileSystem) MkdirAll(ctx context.Context, name string, mode os.FileMode) error {
	return s3fs.Mkdir(ctx, name, mode)
}

func (s3fs *S3FileSystem) Open(ctx context.Context, name string) (fs.File, error) {
	getObjectOutput, err := s3fs.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s3fs.bucket),
		Key:    aws.String(s3fs.key(name)),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening object %q: %w", s3fs.key(name), err)
	}
	return NewS3File(name, getObjectOutput.Body, nil), nil
}

// OpenFile opens the object for writing.  The object is uploaded when the file is closed.
func (s3fs *S3FileSystem) OpenFile(ctx context.Context, name string, flag int, perm os.FileMode) (fs.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR) == 0 {
		return s3fs.Open(ctx, name)
	}
	uploader := NewUploader(ctx, &UploaderInput{
		ACL:              types.ObjectCannedACLBucketOwnerFullControl,
		Client:           s3fs.client,
		Bucket:           s3fs.bucket,
		BucketKeyEnabled: s3fs.bucketKeyEnabled,
		Key:              s3fs.key(name),
		PartSize:         s3fs.partSize,
		Concurrency:      s3fs.concurrency,
	})
	return NewS3File(name, nil, uploader), nil
}

// ReadDir returns the entries of the directory sorted by name.
func (s3fs *S3FileSystem) ReadDir(ctx context.Context, name string) ([]fs.FileInfo, error) {
	prefix := s3fs.listPrefix(name)

	directoryEntries := []fs.FileInfo{}

	paginator := s3.NewListObjectsV2Paginator(s3fs.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s3fs.bucket),
		Delimiter: aws.String("/"),
		Prefix:    aws.String(prefix),
	})
	for paginator.HasMorePages() {
		listObjectsOutput, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error listing objects with prefix %q: %w", prefix, err)
		}
		for _, commonPrefix := range listObjectsOutput.CommonPrefixes {
			directoryName := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(commonPrefix.Prefix), prefix), "/")
			if len(directoryName) == 0 {
				continue
			}
			directoryEntries = append(directoryEntries, fs.NewDirectoryEntry(directoryName, true, time.Time{}, 0))
		}
		for _, object := range listObjectsOutput.Contents {
			fileName := strings.TrimPrefix(aws.ToString(object.Key), prefix)
			// the directory marker of the directory itself
			if len(fileName) == 0 {
				continue
			}
			directoryEntries = append(directoryEntries, fs.NewDirectoryEntry(
				fileName,
				false,
				aws.ToTime(object.LastModified),
				aws.ToInt64(object.Size),
			))
		}
	}

	// an empty listing of a directory without a marker
	if len(directoryEntries) == 0 {
		if _, err := s3fs.Stat(ctx, name); err != nil {
			return nil, err
		}
	}

	sort.Slice(directoryEntries, func(i, j int) bool {
		return directoryEntries[i].Name() < directoryEntries[j].Name()
	})

	return directoryEntries, nil
}

func (s3fs *S3FileSystem) Root() string {
	if len(s3fs.prefix) == 0 {
		return fmt.Sprintf("s3://%s", s3fs.bucket)
	}
	return fmt.Sprintf("s3://%s/%s", s3fs.bucket, s3fs.prefix)
}

func (s3fs *S3FileSystem) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	key := s3fs.key(name)
	base := path.Base("/" + key)

	// the root of a bucket
	if len(key) == 0 {
		_, err := s3fs.client.HeadBucket(ctx, &s3.HeadBucketInput{
			Bucket: aws.String(s3fs.bucket),
		})
		if err != nil {
			return nil, fmt.Errorf("error stating bucket %q: %w", s3fs.bucket, err)
		}
		return fs.NewDirectoryEntry("/", true, time.Time{}, 0), nil
	}

	headObjectOutput, err := s3fs.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s3fs.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return fs.NewDirectoryEntry(
			base,
			false,
			aws.ToTime(headObjectOutput.LastModified),
			aws.ToInt64(headObjectOutput.ContentLength),
		), nil
	}
	if !s3fs.IsNotExist(err) {
		return nil, fmt.Errorf("error stating object %q: %w", key, err)
	}

	// a directory is any prefix with at least one object, including a marker
	listObjectsOutput, err := s3fs.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s3fs.bucket),
		MaxKeys: aws.Int32(1),
		Prefix:  aws.String(key + "/"),
	})
	if err != nil {
		return nil, fmt.Errorf("error stating directory %q: %w", key, err)
	}
	if len(listObjectsOutput.Contents) > 0 {
		return fs.NewDirectoryEntry(base, true, time.Time{}, 0), nil
	}

	return nil, fmt.Errorf("error stating %q: %w", name, os.ErrNotExist)
}

type S3FileSystemInput struct {
	Client           Client
	Bucket           string
	Prefix           string
	BucketKeyEnabled bool
	PartSize         int
	Concurrency      int
}

func NewS3FileSystem(input *S3FileSystemInput) *S3FileSystem {
	return &S3FileSystem{
		client:           input.Client,
		bucket:           input.Bucket,
		prefix:           strings.Trim(input.Prefix, "/"),
		bucketKeyEnabled: input.BucketKeyEnabled,
		partSize:         input.PartSize,
		concurrency:      input.Concurrency,
	}
}

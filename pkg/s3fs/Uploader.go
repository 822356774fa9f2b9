// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package s3fs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const (
	DefaultPartSize            = 1_048_576 * 100 // 100 MiB
	MinimumPartSize            = 1_048_576 * 5   // 5 MiB
	DefaultUploaderConcurrency = 4
)

// Uploader buffers writes and uploads the object when closed.
// Objects larger than the part size are uploaded as a multipart upload,
// with up to concurrency parts in flight.
type Uploader struct {
	ctx context.Context
	//
	acl              types.ObjectCannedACL
	client           Client
	bucket           *string
	bucketKeyEnabled bool
	key              *string
	partSize         int
	concurrency      int
	//
	buffer         *bytes.Buffer
	uploadID       *string
	lastPartNumber int32
	group          *errgroup.Group
	groupCtx       context.Context
	mu             sync.Mutex
	etags          map[int32]*string
	closed         bool
}

func (u *Uploader) uploadPart(partNumber int32, body []byte) {
	u.group.Go(func() error {
		uploadPartOutput, err := u.client.UploadPart(u.groupCtx, &s3.UploadPartInput{
			Body:          bytes.NewReader(body),
			Bucket:        u.bucket,
			Key:           u.key,
			PartNumber:    aws.Int32(partNumber),
			UploadId:      u.uploadID,
			ContentLength: aws.Int64(int64(len(body))),
		})
		if err != nil {
			return fmt.Errorf("error uploading part %d of %q: %w", partNumber, aws.ToString(u.key), err)
		}
		u.mu.Lock()
		u.etags[partNumber] = uploadPartOutput.ETag
		u.mu.Unlock()
		return nil
	})
}

func (u *Uploader) abort(err error) error {
	_, abortError := u.client.AbortMultipartUpload(u.ctx, &s3.AbortMultipartUploadInput{
		Bucket:   u.bucket,
		Key:      u.key,
		UploadId: u.uploadID,
	})
	if abortError != nil {
		return fmt.Errorf("error aborting multipart upload after %w: %v", err, abortError)
	}
	return err
}

func (u *Uploader) Close() error {
	if u.closed {
		return io.ErrUnexpectedEOF
	}

	u.closed = true

	// if upload hasn't started.
	if u.uploadID == nil {
		// a readseeker is needed to rewind the body if the client retries
		reader := bytes.NewReader(u.buffer.Bytes())
		_, err := u.client.PutObject(u.ctx, &s3.PutObjectInput{
			ACL:              u.acl,
			Body:             reader,
			Bucket:           u.bucket,
			BucketKeyEnabled: aws.Bool(u.bucketKeyEnabled),
			ContentLength:    aws.Int64(int64(reader.Len())),
			Key:              u.key,
		})
		if err != nil {
			return err
		}
		u.buffer = bytes.NewBuffer([]byte{})
		return nil
	}

	// upload remaining bytes
	if u.buffer.Len() > 0 {
		u.lastPartNumber++
		u.uploadPart(u.lastPartNumber, u.buffer.Bytes())
		u.buffer = bytes.NewBuffer([]byte{})
	}

	if err := u.group.Wait(); err != nil {
		return u.abort(err)
	}

	// build list of completed parts
	completedParts := []types.CompletedPart{}
	for i := int32(1); i <= u.lastPartNumber; i++ {
		completedParts = append(completedParts, types.CompletedPart{
			ETag:       u.etags[i],
			PartNumber: aws.Int32(i),
		})
	}

	_, err := u.client.CompleteMultipartUpload(u.ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   u.bucket,
		Key:      u.key,
		UploadId: u.uploadID,
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: completedParts,
		},
	})
	if err != nil {
		return u.abort(err)
	}
	return nil
}

func (u *Uploader) Write(p []byte) (int, error) {
	if u.closed {
		return 0, io.ErrUnexpectedEOF
	}

	// a part already failed
	if u.groupCtx != nil && u.groupCtx.Err() != nil {
		return 0, fmt.Errorf("error uploading %q: %w", aws.ToString(u.key), u.groupCtx.Err())
	}

	n, err := u.buffer.Write(p)
	if err != nil {
		return 0, err
	}

	for u.buffer.Len() >= u.partSize {

		// If multipart upload hasn't been started yet, then create it.
		if u.uploadID == nil {
			createMultipartUploadOutput, err := u.client.CreateMultipartUpload(u.ctx, &s3.CreateMultipartUploadInput{
				ACL:              u.acl,
				Bucket:           u.bucket,
				BucketKeyEnabled: aws.Bool(u.bucketKeyEnabled),
				Key:              u.key,
			})
			if err != nil {
				return 0, err
			}
			u.uploadID = createMultipartUploadOutput.UploadId
			u.group, u.groupCtx = errgroup.WithContext(u.ctx)
			u.group.SetLimit(u.concurrency)
		}

		// copy the part, since the buffer is reused
		part := make([]byte, u.partSize)
		copy(part, u.buffer.Next(u.partSize))

		u.lastPartNumber++
		u.uploadPart(u.lastPartNumber, part)
	}

	return n, nil
}

type UploaderInput struct {
	ACL              types.ObjectCannedACL
	Client           Client
	Bucket           string
	BucketKeyEnabled bool
	Key              string
	PartSize         int
	Concurrency      int
}

func NewUploader(ctx context.Context, input *UploaderInput) *Uploader {
	concurrency := input.Concurrency
	if concurrency < 1 {
		concurrency = DefaultUploaderConcurrency
	}
	partSize := input.PartSize
	if partSize < 1 {
		partSize = DefaultPartSize
	}
	return &Uploader{
		ctx: ctx,
		//
		acl:              input.ACL,
		client:           input.Client,
		bucket:           aws.String(input.Bucket),
		bucketKeyEnabled: input.BucketKeyEnabled,
		key:              aws.String(input.Key),
		partSize:         partSize,
		concurrency:      concurrency,
		//
		buffer:         bytes.NewBuffer([]byte{}),
		uploadID:       nil,
		lastPartNumber: int32(0),
		etags:          map[int32]*string{},
		closed:         false,
	}
}

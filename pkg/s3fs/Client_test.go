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
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

type memoryObject struct {
	body         []byte
	lastModified time.Time
}

// memoryClient is an in-memory bucket used to test the filesystem without a network.
type memoryClient struct {
	bucket   string
	pageSize int
	now      time.Time
	//
	mu       sync.Mutex
	objects  map[string]*memoryObject
	uploads  map[string]map[int32][]byte
	uploadID int
	calls    map[string]int
	faults   map[string]error
}

func (c *memoryClient) call(op string, bucket *string) error {
	c.calls[op]++
	if err, ok := c.faults[op]; ok {
		return err
	}
	if aws.ToString(bucket) != c.bucket {
		return &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "The specified bucket does not exist"}
	}
	return nil
}

func (c *memoryClient) put(key string, body []byte) {
	c.objects[key] = &memoryObject{body: body, lastModified: c.now}
}

func (c *memoryClient) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("AbortMultipartUpload", params.Bucket); err != nil {
		return nil, err
	}
	delete(c.uploads, aws.ToString(params.UploadId))
	return &s3.AbortMultipartUploadOutput{}, nil
}

func (c *memoryClient) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("CompleteMultipartUpload", params.Bucket); err != nil {
		return nil, err
	}
	parts, ok := c.uploads[aws.ToString(params.UploadId)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchUpload", Message: "The specified upload does not exist"}
	}
	body := []byte{}
	for _, part := range params.MultipartUpload.Parts {
		partNumber := aws.ToInt32(part.PartNumber)
		if aws.ToString(part.ETag) != fmt.Sprintf("etag-%d", partNumber) {
			return nil, &smithy.GenericAPIError{Code: "InvalidPart", Message: "One or more of the specified parts could not be found"}
		}
		body = append(body, parts[partNumber]...)
	}
	delete(c.uploads, aws.ToString(params.UploadId))
	c.put(aws.ToString(params.Key), body)
	return &s3.CompleteMultipartUploadOutput{}, nil
}

func (c *memoryClient) CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("CopyObject", params.Bucket); err != nil {
		return nil, err
	}
	_, sourceKey, _ := strings.Cut(aws.ToString(params.CopySource), "/")
	object, ok := c.objects[sourceKey]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "The specified key does not exist."}
	}
	c.put(aws.ToString(params.Key), append([]byte{}, object.body...))
	return &s3.CopyObjectOutput{}, nil
}

func (c *memoryClient) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("CreateMultipartUpload", params.Bucket); err != nil {
		return nil, err
	}
	c.uploadID++
	uploadID := fmt.Sprintf("upload-%d", c.uploadID)
	c.uploads[uploadID] = map[int32][]byte{}
	return &s3.CreateMultipartUploadOutput{UploadId: aws.String(uploadID)}, nil
}

func (c *memoryClient) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("GetObject", params.Bucket); err != nil {
		return nil, err
	}
	object, ok := c.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "The specified key does not exist."}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(object.body)),
		ContentLength: aws.Int64(int64(len(object.body))),
		LastModified:  aws.Time(object.lastModified),
	}, nil
}

func (c *memoryClient) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("HeadBucket", params.Bucket); err != nil {
		return nil, err
	}
	return &s3.HeadBucketOutput{}, nil
}

func (c *memoryClient) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("HeadObject", params.Bucket); err != nil {
		return nil, err
	}
	object, ok := c.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NotFound", Message: "Not Found"}
	}
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(object.body))),
		LastModified:  aws.Time(object.lastModified),
	}, nil
}

func (c *memoryClient) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("ListObjectsV2", params.Bucket); err != nil {
		return nil, err
	}

	prefix := aws.ToString(params.Prefix)
	delimiter := aws.ToString(params.Delimiter)

	// keys and common prefixes share one ordering, as in S3
	items := []string{}
	commonPrefixes := map[string]bool{}
	for key := range c.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if len(delimiter) > 0 {
			if i := strings.Index(key[len(prefix):], delimiter); i >= 0 {
				commonPrefix := key[:len(prefix)+i+len(delimiter)]
				if !commonPrefixes[commonPrefix] {
					commonPrefixes[commonPrefix] = true
					items = append(items, commonPrefix)
				}
				continue
			}
		}
		items = append(items, key)
	}
	sort.Strings(items)

	if token := aws.ToString(params.ContinuationToken); len(token) > 0 {
		i := sort.SearchStrings(items, token)
		for i < len(items) && items[i] <= token {
			i++
		}
		items = items[i:]
	}

	maxKeys := 1000
	if c.pageSize > 0 {
		maxKeys = c.pageSize
	}
	if params.MaxKeys != nil && int(aws.ToInt32(params.MaxKeys)) < maxKeys {
		maxKeys = int(aws.ToInt32(params.MaxKeys))
	}

	output := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	if len(items) > maxKeys {
		items = items[:maxKeys]
		output.IsTruncated = aws.Bool(true)
		output.NextContinuationToken = aws.String(items[len(items)-1])
	}
	for _, item := range items {
		if commonPrefixes[item] {
			output.CommonPrefixes = append(output.CommonPrefixes, types.CommonPrefix{Prefix: aws.String(item)})
			continue
		}
		object := c.objects[item]
		output.Contents = append(output.Contents, types.Object{
			Key:          aws.String(item),
			LastModified: aws.Time(object.lastModified),
			Size:         aws.Int64(int64(len(object.body))),
		})
	}
	output.KeyCount = aws.Int32(int32(len(items)))
	return output, nil
}

func (c *memoryClient) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("PutObject", params.Bucket); err != nil {
		return nil, err
	}
	c.put(aws.ToString(params.Key), body)
	return &s3.PutObjectOutput{}, nil
}

func (c *memoryClient) UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("UploadPart", params.Bucket); err != nil {
		return nil, err
	}
	parts, ok := c.uploads[aws.ToString(params.UploadId)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchUpload", Message: "The specified upload does not exist"}
	}
	partNumber := aws.ToInt32(params.PartNumber)
	parts[partNumber] = body
	return &s3.UploadPartOutput{ETag: aws.String(fmt.Sprintf("etag-%d", partNumber))}, nil
}

func (c *memoryClient) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.objects))
	for key := range c.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func newMemoryClient(bucket string, now time.Time) *memoryClient {
	return &memoryClient{
		bucket:  bucket,
		now:     now,
		objects: map[string]*memoryObject{},
		uploads: map[string]map[int32][]byte{},
		calls:   map[string]int{},
		faults:  map[string]error{},
	}
}

var _ Client = (*memoryClient)(nil)

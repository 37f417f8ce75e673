package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	dErrors "cradle/pkg/domain-errors"
)

// S3Store stores objects in a single S3 bucket.
type S3Store struct {
	client *s3.Client
	bucket string
}

var _ Store = (*S3Store)(nil)

// NewS3 wraps an S3 client for one bucket.
func NewS3(client *s3.Client, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

// Put uploads an object with a server-computed SHA-256 checksum.
func (s *S3Store) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (Metadata, error) {
	input := &s3.PutObjectInput{
		Bucket:            aws.String(s.bucket),
		Key:               aws.String(key),
		Body:              body,
		ContentLength:     aws.Int64(size),
		ChecksumAlgorithm: types.ChecksumAlgorithmSha256,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	out, err := s.client.PutObject(ctx, input)
	if err != nil {
		return Metadata{}, fmt.Errorf("put object %q: %w", key, err)
	}
	return Metadata{
		Key:            key,
		Size:           size,
		ContentType:    contentType,
		ChecksumSHA256: aws.ToString(out.ChecksumSHA256),
		ETag:           aws.ToString(out.ETag),
	}, nil
}

// Get downloads an object. The caller owns the returned reader.
func (s *S3Store) Get(ctx context.Context, key string) (io.ReadCloser, Metadata, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, Metadata{}, dErrors.New(dErrors.CodeNotFound, "object not found")
		}
		return nil, Metadata{}, fmt.Errorf("get object %q: %w", key, err)
	}
	meta := Metadata{
		Key:            key,
		Size:           aws.ToInt64(out.ContentLength),
		ContentType:    aws.ToString(out.ContentType),
		ChecksumSHA256: aws.ToString(out.ChecksumSHA256),
		ETag:           aws.ToString(out.ETag),
		LastModified:   aws.ToTime(out.LastModified),
	}
	return out.Body, meta, nil
}

// Head returns object metadata without the body.
func (s *S3Store) Head(ctx context.Context, key string) (Metadata, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return Metadata{}, dErrors.New(dErrors.CodeNotFound, "object not found")
		}
		return Metadata{}, fmt.Errorf("head object %q: %w", key, err)
	}
	return Metadata{
		Key:            key,
		Size:           aws.ToInt64(out.ContentLength),
		ContentType:    aws.ToString(out.ContentType),
		ChecksumSHA256: aws.ToString(out.ChecksumSHA256),
		ETag:           aws.ToString(out.ETag),
		LastModified:   aws.ToTime(out.LastModified),
	}, nil
}

// Delete removes an object. Deleting a missing key is a not-found error to
// keep implementations consistent; S3 itself would silently succeed.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	if _, err := s.Head(ctx, key); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

// List returns metadata for objects under a key prefix.
func (s *S3Store) List(ctx context.Context, prefix string) ([]Metadata, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	var objects []Metadata
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects %q: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, Metadata{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				ETag:         aws.ToString(obj.ETag),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return objects, nil
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound"
	}
	return false
}

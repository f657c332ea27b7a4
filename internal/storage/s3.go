// Package storage reads source recordings from and writes transcripts to an
// S3 bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Object is one stored audio file.
type Object struct {
	Key  string
	Size int64
}

// Store is the narrow object-store contract the worker consumes. Tests
// substitute in-memory fakes.
type Store interface {
	// Head returns the byte size of the object at key.
	Head(ctx context.Context, key string) (int64, error)
	// Fetch downloads the object at key to the local file at dst.
	Fetch(ctx context.Context, key, dst string) error
	// Put uploads body to key with the given content type.
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	// List enumerates objects under prefix.
	List(ctx context.Context, prefix string) ([]Object, error)
}

// S3 implements Store against one bucket.
type S3 struct {
	client *s3.Client
	bucket string
}

func NewS3(client *s3.Client, bucket string) *S3 {
	return &S3{client: client, bucket: bucket}
}

// Bucket returns the bucket this store is bound to.
func (s *S3) Bucket() string {
	return s.bucket
}

func (s *S3) Head(ctx context.Context, key string) (int64, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("heading s3://%s/%s: %w", s.bucket, key, err)
	}
	return aws.ToInt64(out.ContentLength), nil
}

func (s *S3) Fetch(ctx context.Context, key, dst string) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("fetching s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, out.Body); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}

func (s *S3) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("putting s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *S3) List(ctx context.Context, prefix string) ([]Object, error) {
	var objects []Object

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing s3://%s/%s: %w", s.bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, Object{
				Key:  aws.ToString(obj.Key),
				Size: aws.ToInt64(obj.Size),
			})
		}
	}
	return objects, nil
}

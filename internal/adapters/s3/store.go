// Package s3 implements ports.ObjectStore against any S3-compatible
// endpoint (AWS S3, MinIO) via the minio-go SDK.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/terradex/stacintake/internal/core/domain"
)

// Store reads source documents and their tags from bucket storage.
type Store struct {
	client *minio.Client
}

// New creates an object store client.
func New(endpoint, accessKey, secretKey string, useSSL bool) (*Store, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("object store endpoint is required")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}
	return &Store{client: client}, nil
}

// FetchObject downloads and returns the full object body.
func (s *Store) FetchObject(ctx context.Context, u domain.SourceURL) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, u.Bucket, u.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", u, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", u, err)
	}
	return data, nil
}

// ObjectTags returns the object's tag set as a plain map.
func (s *Store) ObjectTags(ctx context.Context, u domain.SourceURL) (map[string]string, error) {
	t, err := s.client.GetObjectTagging(ctx, u.Bucket, u.Key, minio.GetObjectTaggingOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object tags %s: %w", u, err)
	}
	return t.ToMap(), nil
}

// PutObject uploads a document, e.g. a STAC item sidecar next to its source.
func (s *Store) PutObject(ctx context.Context, u domain.SourceURL, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, u.Bucket, u.Key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object %s: %w", u, err)
	}
	return nil
}

// Ping lists buckets as a connectivity check.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.ListBuckets(ctx)
	return err
}

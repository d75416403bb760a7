package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/petzone/backend/internal/config"
)

// BlobStore accepts image bytes and returns a durable URL, and deletes
// blobs by identifier. Handlers depend on this interface, not on minio.
type BlobStore interface {
	Store(ctx context.Context, reader io.Reader, size int64, folder, contentType string) (string, error)
	Remove(ctx context.Context, identifier string) error
}

// objectClient is the subset of the minio client the store uses.
type objectClient interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

type MinioStore struct {
	endpoint string
	bucket   string
	useSSL   bool
	client   objectClient
}

const defaultContentType = "application/octet-stream"

// NewMinioStore creates a blob store backed by an S3-compatible endpoint.
func NewMinioStore(cfg config.S3Properties) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return &MinioStore{
		endpoint: cfg.Endpoint,
		bucket:   cfg.Bucket,
		useSSL:   cfg.UseSSL,
		client:   client,
	}, nil
}

// Store uploads an object under folder/ and returns its public URL.
func (s *MinioStore) Store(ctx context.Context, reader io.Reader, size int64, folder, contentType string) (string, error) {
	if contentType == "" {
		contentType = defaultContentType
	}

	key := folder + "/" + uuid.NewString() + extensionFor(contentType)
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, key), nil
}

// Remove deletes an object by its folder/name identifier.
func (s *MinioStore) Remove(ctx context.Context, identifier string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, identifier, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", identifier, err)
	}
	return nil
}

// KeyFromURL recovers the folder/name identifier from a stored blob URL.
// The identifier is the URL's two trailing path segments.
func KeyFromURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[len(segments)-1] == "" {
		return "", false
	}
	return strings.Join(segments[len(segments)-2:], "/"), true
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		return ""
	}
}

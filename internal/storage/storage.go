package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// UploadResult identifies a stored object.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Uploader stores media files and returns their public location.
type Uploader interface {
	Upload(ctx context.Context, folder, filename string, r io.Reader, size int64, contentType string) (*UploadResult, error)
}

// folderPrefixes routes upload categories to bucket prefixes. Unknown
// categories land in admin.
var folderPrefixes = map[string]string{
	"book":    "book-store/books",
	"avatar":  "book-store/avatars",
	"comment": "book-store/reviews",
	"support": "book-store/admin",
	"admin":   "book-store/admin",
}

// Config carries the object-store connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicBaseURL is prepended to object keys in returned URLs.
	PublicBaseURL string
}

type minioStorage struct {
	client *minio.Client
	cfg    Config
}

// NewMinioStorage connects to an S3-compatible object store.
func NewMinioStorage(cfg Config) (Uploader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to object store: %w", err)
	}
	return &minioStorage{client: client, cfg: cfg}, nil
}

func (s *minioStorage) Upload(ctx context.Context, folder, filename string, r io.Reader, size int64, contentType string) (*UploadResult, error) {
	prefix, ok := folderPrefixes[folder]
	if !ok {
		prefix = folderPrefixes["admin"]
	}
	key := prefix + "/" + uuid.New().String() + path.Ext(filename)

	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return &UploadResult{
		URL: s.cfg.PublicBaseURL + "/" + s.cfg.Bucket + "/" + key,
		Key: key,
	}, nil
}

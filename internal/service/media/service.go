package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"connectaid/internal/config"
	"connectaid/internal/domain"
)

var (
	ErrStorageUnavailable = errors.New("image storage is not configured")
	ErrInvalidImage       = errors.New("image must be a base64 encoded png, jpeg, gif or webp")
	ErrImageTooLarge      = errors.New("image exceeds the maximum size")
)

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Service stores request images in object storage.
type Service interface {
	UploadBase64(ctx context.Context, prefix, data string) (*domain.RequestImage, error)
	Delete(ctx context.Context, storageKey string) error
}

// ObjectStore is the subset of *minio.Client the service needs.
type ObjectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

type service struct {
	store ObjectStore
	cfg   *config.Config
}

// NewService accepts a nil store; uploads then fail with
// ErrStorageUnavailable.
func NewService(store ObjectStore, cfg *config.Config) Service {
	return &service{store: store, cfg: cfg}
}

// NewMinIOService adapts a possibly nil *minio.Client.
func NewMinIOService(client *minio.Client, cfg *config.Config) Service {
	if client == nil {
		return NewService(nil, cfg)
	}
	return NewService(client, cfg)
}

func (s *service) UploadBase64(ctx context.Context, prefix, data string) (*domain.RequestImage, error) {
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}

	raw, err := decodeImage(data)
	if err != nil {
		return nil, err
	}
	if s.cfg.MaxImageBytes > 0 && int64(len(raw)) > s.cfg.MaxImageBytes {
		return nil, ErrImageTooLarge
	}

	contentType := http.DetectContentType(raw)
	ext, ok := extensions[contentType]
	if !ok {
		return nil, ErrInvalidImage
	}

	key := fmt.Sprintf("%s/%s%s", strings.Trim(prefix, "/"), uuid.New().String(), ext)
	_, err = s.store.PutObject(ctx, s.cfg.MinIOBucket, key, bytes.NewReader(raw), int64(len(raw)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to MinIO: %w", err)
	}

	return &domain.RequestImage{
		URL:        s.publicURL(key),
		StorageKey: key,
	}, nil
}

func (s *service) Delete(ctx context.Context, storageKey string) error {
	if s.store == nil {
		return ErrStorageUnavailable
	}
	return s.store.RemoveObject(ctx, s.cfg.MinIOBucket, storageKey, minio.RemoveObjectOptions{})
}

func (s *service) publicURL(key string) string {
	scheme := "http"
	if s.cfg.MinIOPublicUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.MinIOPublicEndpoint, s.cfg.MinIOBucket, url.PathEscape(key))
}

// decodeImage accepts either a data URI or bare base64.
func decodeImage(data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	if strings.HasPrefix(data, "data:") {
		idx := strings.Index(data, ",")
		if idx < 0 || !strings.Contains(data[:idx], ";base64") {
			return nil, ErrInvalidImage
		}
		data = data[idx+1:]
	}
	if data == "" {
		return nil, ErrInvalidImage
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, ErrInvalidImage
	}
	return raw, nil
}

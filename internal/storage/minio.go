package storage

import (
	"bytes"
	"context"
	"errors"
	"path"
	"strings"

	"github.com/AnshRaj112/socialapp-backend/internal/config"
	"github.com/AnshRaj112/socialapp-backend/internal/models"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Minio stores assets in an S3 compatible bucket. Object keys are random, so
// the public id is the key itself.
type Minio struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewMinio(cfg config.MinioConfig) (*Minio, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if strings.TrimSpace(cfg.AccessKey) == "" || strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, errors.New("minio access key and secret key are required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("minio bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		scheme := "http://"
		if cfg.UseSSL {
			scheme = "https://"
		}
		publicURL = scheme + cfg.Endpoint
	}

	return &Minio{client: client, bucket: cfg.Bucket, publicURL: publicURL}, nil
}

// EnsureBucket creates the configured bucket if it does not exist.
func (m *Minio) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
}

func (m *Minio) Upload(ctx context.Context, f File) (models.Image, error) {
	key := objectKey(f.Filename)
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(f.Data), int64(len(f.Data)), minio.PutObjectOptions{
		ContentType: f.ContentType,
	})
	if err != nil {
		return models.Image{}, err
	}
	return models.Image{URL: m.publicURL + "/" + m.bucket + "/" + key, PublicID: key}, nil
}

func (m *Minio) Delete(ctx context.Context, publicID string) error {
	return m.client.RemoveObject(ctx, m.bucket, publicID, minio.RemoveObjectOptions{})
}

// objectKey keeps the upload's extension so browsers get a sensible name.
func objectKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 8 {
		ext = ""
	}
	return "images/" + uuid.NewString() + ext
}

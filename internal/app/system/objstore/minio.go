package objstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig configures a MinIO store.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	// PublicURL is the externally reachable prefix for objects. When empty
	// it is derived from Endpoint and Bucket.
	PublicURL string
}

// MinIO stores objects in an S3-compatible bucket.
type MinIO struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinIO connects and makes sure the bucket exists.
func NewMinIO(ctx context.Context, cfg MinIOConfig) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	public := strings.TrimRight(cfg.PublicURL, "/")
	if public == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		public = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	m := &MinIO{client: client, bucket: cfg.Bucket, publicURL: public}
	if err := m.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MinIO) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

func (m *MinIO) PublicURL(objectPath string) string {
	p, err := cleanPath(objectPath)
	if err != nil {
		return ""
	}
	return m.publicURL + "/" + escapePath(p)
}

func (m *MinIO) SignedURL(ctx context.Context, objectPath string, ttl time.Duration) (string, error) {
	p, err := cleanPath(objectPath)
	if err != nil {
		return "", err
	}
	u, err := m.client.PresignedGetObject(ctx, m.bucket, p, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign object: %w", err)
	}
	return u.String(), nil
}

func (m *MinIO) Upload(ctx context.Context, objectPath string, r io.Reader, size int64, contentType string) error {
	p, err := cleanPath(objectPath)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = -1
	}
	_, err = m.client.PutObject(ctx, m.bucket, p, r, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"uploaded-at": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

func (m *MinIO) Download(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	p, err := cleanPath(objectPath)
	if err != nil {
		return nil, err
	}
	obj, err := m.client.GetObject(ctx, m.bucket, p, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinIOErr("get object", err)
	}
	// GetObject is lazy; Stat surfaces a missing key before the caller reads.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, mapMinIOErr("stat object", err)
	}
	return obj, nil
}

func (m *MinIO) Delete(ctx context.Context, objectPath string) error {
	p, err := cleanPath(objectPath)
	if err != nil {
		return err
	}
	if err := m.client.RemoveObject(ctx, m.bucket, p, minio.RemoveObjectOptions{}); err != nil {
		return mapMinIOErr("remove object", err)
	}
	return nil
}

func mapMinIOErr(op string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

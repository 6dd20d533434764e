// Package storage keeps listing images and documents in an S3-compatible
// bucket.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"landmarket/server/internal/apperr"
	"landmarket/server/internal/authz"
)

const sniffLen = 512

// allowedTypes maps accepted content types to the stored file extension.
var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	URL(key string) string
}

type Options struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Bucket        string
	PublicBaseURL string
}

type minioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinio connects to the endpoint and creates the bucket when missing.
func NewMinio(ctx context.Context, opts Options) (ObjectStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	found, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", opts.Bucket, err)
	}
	if !found {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", opts.Bucket, err)
		}
	}

	baseURL := opts.PublicBaseURL
	if baseURL == "" {
		scheme := "http"
		if opts.UseSSL {
			scheme = "https"
		}
		baseURL = scheme + "://" + opts.Endpoint + "/" + opts.Bucket
	}
	return &minioStore{client: client, bucket: opts.Bucket, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (m *minioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (m *minioStore) URL(key string) string {
	return m.baseURL + "/" + key
}

type Upload struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Uploader validates and stores files attached to listings.
type Uploader struct {
	store   ObjectStore
	guard   *authz.Guard
	maxSize int64
	now     func() time.Time
}

// NewUploader accepts a nil store; every upload then fails as unavailable.
func NewUploader(store ObjectStore, guard *authz.Guard, maxSize int64) *Uploader {
	return &Uploader{store: store, guard: guard, maxSize: maxSize, now: time.Now}
}

func (u *Uploader) Enabled() bool { return u.store != nil }

// Upload stores one file. The content type is sniffed from the bytes, not
// taken from the client.
func (u *Uploader) Upload(ctx context.Context, actor authz.Actor, r io.Reader, size int64) (*Upload, error) {
	if err := u.guard.Authorize(actor, authz.ActionCreate, authz.NewProperty()); err != nil {
		return nil, err
	}
	if u.store == nil {
		return nil, apperr.Unavailable("file storage is not configured")
	}
	if size <= 0 {
		return nil, apperr.Validation("file", "file is empty")
	}
	if size > u.maxSize {
		return nil, apperr.Validation("file", "file exceeds %d bytes", u.maxSize)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, apperr.Validation("file", "unsupported file type %s", contentType)
	}

	now := u.now().UTC()
	key := path.Join("uploads", now.Format("2006/01"), uuid.NewString()+ext)
	body := io.MultiReader(bytes.NewReader(head), r)
	if err := u.store.Put(ctx, key, body, size, contentType); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	return &Upload{URL: u.store.URL(key), Key: key, ContentType: contentType, Size: size}, nil
}

// Package storage puts uploaded files in object storage and hands back URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Storage interface {
	// Put stores body under key and returns the public URL.
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	// Delete removes an object by the URL Put returned.
	Delete(ctx context.Context, fileURL string) error
	// SignedURL returns a time-limited URL for a private object.
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type Options struct {
	Driver        string // s3 | local
	Endpoint      string
	Region        string
	AccessKeyID   string
	AccessSecret  string
	Bucket        string
	PublicURL     string
	LocalDir      string
	LocalURL      string
	UploadTimeout time.Duration
}

// New builds the driver named in opts.
func New(ctx context.Context, opts Options) (Storage, error) {
	switch opts.Driver {
	case "s3":
		return NewS3Storage(ctx, opts)
	case "local", "":
		return NewLocalStorage(opts.LocalDir, opts.LocalURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}

var extByType = map[string]string{
	"image/webp":      ".webp",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// NewKey returns folder/<uuid><ext> for the content type.
func NewKey(folder, contentType string) string {
	ext, ok := extByType[contentType]
	if !ok {
		ext = ".bin"
	}
	return path.Join(folder, uuid.NewString()+ext)
}

// keyFromURL strips the public prefix; URLs outside it are refused.
func keyFromURL(publicURL, fileURL string) (string, error) {
	if !strings.HasPrefix(fileURL, publicURL) {
		return "", fmt.Errorf("invalid file URL: domain mismatch")
	}
	key := strings.TrimPrefix(strings.TrimPrefix(fileURL, publicURL), "/")
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid file key derived from URL")
	}
	return key, nil
}

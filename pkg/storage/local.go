package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage writes files under a directory served by the API itself.
type LocalStorage struct {
	dir       string
	publicURL string
}

func NewLocalStorage(dir, publicURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{dir: dir, publicURL: strings.TrimSuffix(publicURL, "/")}, nil
}

func (s *LocalStorage) Dir() string { return s.dir }

// path confines key to the upload dir and returns the file path and the cleaned key.
func (s *LocalStorage) path(key string) (string, string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", "", fmt.Errorf("empty key")
	}
	return filepath.Join(s.dir, clean), strings.TrimPrefix(filepath.ToSlash(clean), "/"), nil
}

func (s *LocalStorage) Put(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	p, clean, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(p)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(p)
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return s.publicURL + "/" + clean, nil
}

func (s *LocalStorage) Delete(_ context.Context, fileURL string) error {
	key, err := keyFromURL(s.publicURL, fileURL)
	if err != nil {
		return err
	}
	p, _, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SignedURL has nothing to sign locally; access control is the route's job.
func (s *LocalStorage) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return s.publicURL + "/" + strings.TrimPrefix(key, "/"), nil
}

package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoragePutAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/uploads/")
	require.NoError(t, err)

	url, err := s.Put(context.Background(), "evidence/a.pdf", strings.NewReader("%PDF-1.4"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/evidence/a.pdf", url)

	data, err := os.ReadFile(filepath.Join(dir, "evidence", "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, s.Delete(context.Background(), url))
	_, err = os.Stat(filepath.Join(dir, "evidence", "a.pdf"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorageKeepsKeysInsideDir(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(filepath.Join(dir, "up"), "/uploads")
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "../../escape.txt", strings.NewReader("x"), "text/plain")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "up", "escape.txt"))
	assert.NoError(t, err)
}

func TestDeleteRejectsForeignURL(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)
	assert.Error(t, s.Delete(context.Background(), "https://evil.example/x.png"))
}

func TestNewKey(t *testing.T) {
	k := NewKey("id-cards", "image/webp")
	assert.True(t, strings.HasPrefix(k, "id-cards/"))
	assert.True(t, strings.HasSuffix(k, ".webp"))
	assert.True(t, strings.HasSuffix(NewKey("x", "text/csv"), ".bin"))
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), Options{Driver: "ftp"})
	assert.Error(t, err)
}

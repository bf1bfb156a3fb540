package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	tempDir := t.TempDir()
	storage := NewLocalStorage(tempDir)
	ctx := context.Background()
	key := PackDocumentKey("case-1", "pack-1", 1, "form-3.pdf")

	t.Run("Put writes the file", func(t *testing.T) {
		result, err := storage.Put(ctx, key, []byte("%PDF-1.7"), "application/pdf")
		require.NoError(t, err)
		assert.Equal(t, key, result.Key)
		assert.Equal(t, "01-form-3.pdf", result.FileName)
		assert.Equal(t, int64(8), result.FileSize)

		_, err = os.Stat(filepath.Join(tempDir, key))
		assert.NoError(t, err)
	})

	t.Run("Get returns content and type", func(t *testing.T) {
		reader, contentType, err := storage.Get(ctx, key)
		require.NoError(t, err)
		defer reader.Close()

		got, _ := io.ReadAll(reader)
		assert.Equal(t, "%PDF-1.7", string(got))
		assert.Equal(t, "application/pdf", contentType)
	})

	t.Run("Get missing file", func(t *testing.T) {
		_, _, err := storage.Get(ctx, "cases/none/missing.pdf")
		assert.ErrorIs(t, err, ErrObjectNotFound)
	})

	t.Run("keys cannot escape the base directory", func(t *testing.T) {
		_, err := storage.Put(ctx, "../outside.pdf", []byte("x"), "application/pdf")
		assert.Error(t, err)
	})

	t.Run("signed URL is the local path", func(t *testing.T) {
		url, err := storage.GetSignedURL(ctx, key, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, "/"+filepath.ToSlash(filepath.Join(tempDir, key)), url)
		assert.False(t, storage.Redirects())
	})

	t.Run("Delete removes the file and ignores missing files", func(t *testing.T) {
		require.NoError(t, storage.Delete(ctx, key))
		_, err := os.Stat(filepath.Join(tempDir, key))
		assert.True(t, os.IsNotExist(err))
		assert.NoError(t, storage.Delete(ctx, key))
	})
}

func TestLocalStorageDeletePrefix(t *testing.T) {
	storage := NewLocalStorage(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{
		PackDocumentKey("case-1", "pack-1", 1, "a.pdf"),
		PackDocumentKey("case-1", "pack-1", 2, "b.pdf"),
		"cases/case-1/previews/form_3_x.png",
		PackDocumentKey("case-2", "pack-9", 1, "c.pdf"),
	} {
		_, err := storage.Put(ctx, key, []byte("x"), "application/pdf")
		require.NoError(t, err)
	}

	removed, err := storage.DeletePrefix(ctx, CasePrefix("case-1"))
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	_, _, err = storage.Get(ctx, PackDocumentKey("case-2", "pack-9", 1, "c.pdf"))
	assert.NoError(t, err)
}

func TestStorageKeys(t *testing.T) {
	assert.Equal(t, "cases/c1/", CasePrefix("c1"))
	assert.Equal(t, "cases/c1/packs/p1/03-n5.pdf", PackDocumentKey("c1", "p1", 3, "n5.pdf"))
	assert.Regexp(t, `^cases/c1/previews/form_3_[0-9a-f-]{36}\.png$`, PreviewKey("c1", "form_3"))
}

func TestSafeFileName(t *testing.T) {
	assert.Equal(t, "form-3-notice-seeking-possession.pdf", SafeFileName("Form 3: Notice seeking possession", ".pdf"))
	assert.Equal(t, "document.pdf", SafeFileName("!!!", ".pdf"))
	assert.LessOrEqual(t, len(SafeFileName(string(make([]byte, 200)), ".pdf")), 84)
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "image/png", contentTypeFor("a/b.PNG"))
	assert.Equal(t, "application/octet-stream", contentTypeFor("a/b.bin"))
}

package images

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSave(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	payload := []byte("isi gambar palsu")

	url, err := store.Save(base64.StdEncoding.EncodeToString(payload), "kampas-rem.jpg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/products/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	written, err := os.ReadFile(filepath.Join(dir, "products", filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, payload, written)
}

func TestSaveDataURIPrefix(t *testing.T) {
	store := NewStore(t.TempDir())
	payload := base64.StdEncoding.EncodeToString([]byte("png palsu"))

	url, err := store.Save("data:image/png;base64,"+payload, "foto.png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, ".png"))
}

func TestSaveUniqueNames(t *testing.T) {
	store := NewStore(t.TempDir())
	payload := base64.StdEncoding.EncodeToString([]byte("x"))

	a, err := store.Save(payload, "a.webp")
	require.NoError(t, err)
	b, err := store.Save(payload, "a.webp")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSaveUnsupportedType(t *testing.T) {
	store := NewStore(t.TempDir())
	payload := base64.StdEncoding.EncodeToString([]byte("x"))

	_, err := store.Save(payload, "virus.exe")
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = store.Save(payload, "tanpa-extension")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSaveInvalidBase64(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Save("ini bukan base64!!!", "foto.jpg")
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestSaveTooLarge(t *testing.T) {
	store := NewStore(t.TempDir())
	big := make([]byte, MaxSize+1)

	_, err := store.Save(base64.StdEncoding.EncodeToString(big), "besar.jpg")
	assert.ErrorIs(t, err, ErrTooLarge)
}

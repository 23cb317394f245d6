package images

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// MaxSize: ukuran maksimal payload gambar setelah decode (5 MiB).
const MaxSize = 5 << 20

var (
	ErrUnsupportedType = errors.New("tipe file tidak didukung. Gunakan JPEG, PNG, atau WebP")
	ErrTooLarge        = errors.New("ukuran file terlalu besar. Maksimal 5MB")
	ErrInvalidPayload  = errors.New("imageData bukan base64 yang valid")
)

var allowedExt = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"webp": true,
}

var dataURIPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

// Store menyimpan file gambar produk di bawah dir/products.
type Store struct{ dir string }

func NewStore(dir string) *Store { return &Store{dir: dir} }

// Save decode payload base64 (prefix data URI opsional), validasi extension
// dan ukuran, lalu tulis ke disk dengan nama acak. Return URL publiknya.
func (s *Store) Save(imageData, fileName string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if !allowedExt[ext] {
		return "", ErrUnsupportedType
	}

	raw := dataURIPrefix.ReplaceAllString(imageData, "")
	buf, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", ErrInvalidPayload
	}
	if len(buf) > MaxSize {
		return "", ErrTooLarge
	}

	uploadDir := filepath.Join(s.dir, "products")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", uploadDir, err)
	}

	newName := uuid.NewString() + "." + ext
	if err := os.WriteFile(filepath.Join(uploadDir, newName), buf, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return "/uploads/products/" + newName, nil
}

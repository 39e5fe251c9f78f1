// Package uploads provides key-addressed file storage for recipe
// photos and finished-dish images.
package uploads

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
)

// Storage stores uploaded files under a base directory, addressed by
// an opaque key.
type Storage struct {
	basePath string
}

// NewStorage creates a Storage and ensures the base directory exists.
func NewStorage(basePath string) (*Storage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", basePath, err)
	}
	return &Storage{basePath: basePath}, nil
}

// Save writes the upload atomically and returns its key. The key keeps
// the content-type's extension so files can be served back with the
// right type.
func (s *Storage) Save(r io.Reader, contentType string) (string, error) {
	key := uuid.NewString() + extensionFor(contentType)
	if err := atomic.WriteFile(filepath.Join(s.basePath, key), r); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return key, nil
}

// Open returns a reader for a stored upload.
func (s *Storage) Open(key string) (io.ReadCloser, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", key, err)
	}
	return f, nil
}

// Exists reports whether a key resolves to a stored file.
func (s *Storage) Exists(key string) bool {
	path, err := s.resolve(key)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// ContentType derives the serving content type from the key.
func ContentType(key string) string {
	if t := mime.TypeByExtension(filepath.Ext(key)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// resolve rejects keys that would escape the base directory.
func (s *Storage) resolve(key string) (string, error) {
	if key == "" || strings.Contains(key, "/") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid upload key %q", key)
	}
	return filepath.Join(s.basePath, key), nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DefaultChunkSize is the copy buffer used when storing uploads
const DefaultChunkSize = 32 * 1024

// LocalFileStorage keeps uploaded workbooks on the local filesystem
type LocalFileStorage struct {
	basePath  string
	chunkSize int
}

// NewLocalFileStorage creates a storage rooted at basePath
func NewLocalFileStorage(basePath string) *LocalFileStorage {
	return &LocalFileStorage{basePath: basePath, chunkSize: DefaultChunkSize}
}

// Store copies src to "<uuid>_<filename>" under the base path and returns the full path.
// Only the base name of filename is used.
func (s *LocalFileStorage) Store(ctx context.Context, src io.Reader, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	name := filepath.Base(filename)
	path := filepath.Join(s.basePath, uuid.NewString()+"_"+name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}

	buf := make([]byte, s.chunkSize)
	if _, err := io.CopyBuffer(dst, src, buf); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to copy file contents: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close destination file: %w", err)
	}
	return path, nil
}

// Delete removes a stored file; a missing file is not an error
func (s *LocalFileStorage) Delete(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

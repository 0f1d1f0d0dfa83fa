package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
)

// Storage keeps run files inside one directory owned by a single invocation.
type Storage struct {
	dir string
}

// NewLocalStorage creates a fresh, uniquely named directory under baseDir.
// An empty baseDir means os.TempDir().
func NewLocalStorage(baseDir string) (*Storage, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	dir := filepath.Join(baseDir, "dupnum-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", dir, err)
	}
	return &Storage{dir: dir}, nil
}

// Dir returns the directory holding the files.
func (s *Storage) Dir() string {
	return s.dir
}

func (s *Storage) path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// Create creates a new file. Existing files are never overwritten.
func (s *Storage) Create(_ context.Context, name string) (io.WriteCloser, error) {
	file, err := os.OpenFile(s.path(name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create file %s: %w", name, err)
	}
	return file, nil
}

// Open opens a file for reading.
func (s *Storage) Open(_ context.Context, name string) (io.ReadCloser, error) {
	file, err := os.Open(s.path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", name, err)
	}
	return file, nil
}

// Delete removes a file. Deleting a missing file is not an error.
func (s *Storage) Delete(_ context.Context, name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file %s: %w", name, err)
	}
	return nil
}

// List lists the files currently stored, sorted by name.
func (s *Storage) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	slices.Sort(files)
	return files, nil
}

// Close removes the directory and everything left in it.
func (s *Storage) Close() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to remove storage dir %s: %w", s.dir, err)
	}
	return nil
}

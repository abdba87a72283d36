package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkarpinski/blog-api/internal/apperror"
)

var _ FileStore = (*DiskStore)(nil)

// DiskStore is a FileStore backed by a directory tree on local disk.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root and the per-kind subdirectories.
func NewDiskStore(root string) (*DiskStore, error) {
	for _, folder := range []string{FolderImages, FolderAvatars} {
		if err := os.MkdirAll(filepath.Join(root, folder), 0o755); err != nil {
			return nil, fmt.Errorf("storage: creating %s: %w", folder, err)
		}
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) Save(folder, stem, original string, r io.Reader) (string, error) {
	ext, ok := Extension(original)
	if !ok {
		return "", apperror.UploadRejected(fmt.Sprintf("unsupported file type %q", filepath.Ext(original)))
	}
	stem = sanitizeStem(stem)
	if stem == "" {
		return "", apperror.UploadRejected("empty filename")
	}
	name := stem + ext

	f, err := os.Create(filepath.Join(s.root, folder, name))
	if err != nil {
		return "", fmt.Errorf("storage: creating %s: %w", name, err)
	}
	defer f.Close()

	// read one byte past the ceiling so an at-limit file still passes
	written, err := io.Copy(f, io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("storage: writing %s: %w", name, err)
	}
	if written > MaxUploadSize {
		os.Remove(f.Name())
		return "", apperror.UploadRejected(fmt.Sprintf("file exceeds %d bytes", MaxUploadSize))
	}
	return name, nil
}

func (s *DiskStore) Path(folder, name string) (string, error) {
	path := filepath.Join(s.root, folder, filepath.Base(name))
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", apperror.NotFound("file", name)
		}
		return "", fmt.Errorf("storage: stat %s: %w", name, err)
	}
	return path, nil
}

func (s *DiskStore) Find(folder, stem string) (string, error) {
	stem = sanitizeStem(stem)
	for ext := range allowedExtensions {
		name := stem + ext
		if _, err := os.Stat(filepath.Join(s.root, folder, name)); err == nil {
			return name, nil
		}
	}
	return "", apperror.NotFound("file", stem)
}

func (s *DiskStore) Delete(folder, name string) error {
	path := filepath.Join(s.root, folder, filepath.Base(name))
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperror.NotFound("file", name)
		}
		return fmt.Errorf("storage: deleting %s: %w", name, err)
	}
	return nil
}

// sanitizeStem strips path separators and dots so a stored name can never
// escape its folder.
func sanitizeStem(stem string) string {
	stem = filepath.Base(stem)
	stem = strings.ReplaceAll(stem, "..", "")
	return strings.Trim(stem, ". ")
}

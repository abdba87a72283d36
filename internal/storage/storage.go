// Package storage handles uploaded files: article images and user avatars.
//
// Files live on the local filesystem under a configured root, one
// subdirectory per kind ("images", "avatars"). The store enforces an
// image extension allow-list and a size ceiling, so callers can hand it
// an untrusted multipart body directly.
package storage

import (
	"io"
	"path/filepath"
	"strings"
)

// MaxUploadSize is the ceiling on a single uploaded file.
const MaxUploadSize = 10 << 20 // 10 MB

// Folders within the store root.
const (
	FolderImages  = "images"
	FolderAvatars = "avatars"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// FileStore saves and retrieves uploaded files.
type FileStore interface {
	// Save writes the reader's contents under folder using the uploaded
	// filename's extension, returning the stored filename. The stem names
	// the file on disk; the extension comes from original.
	Save(folder, stem, original string, r io.Reader) (string, error)

	// Path returns the on-disk path of a stored file, or NotFound.
	Path(folder, name string) (string, error)

	// Find locates a stored file by stem regardless of which allowed
	// extension it was saved with.
	Find(folder, stem string) (string, error)

	// Delete removes a stored file. Deleting a missing file is NotFound.
	Delete(folder, name string) error
}

// Extension returns the lowercased extension of an uploaded filename and
// whether it is an allowed image format.
func Extension(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext, allowedExtensions[ext]
}

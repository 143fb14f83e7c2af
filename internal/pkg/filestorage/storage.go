package filestorage

import (
	"errors"
	"mime/multipart"
)

// ErrInvalidPath is returned for stored paths that escape the storage root.
var ErrInvalidPath = errors.New("invalid file path")

// FileStorage saves uploads and resolves the relative paths it hands out.
type FileStorage interface {
	// Save stores the upload under dir and returns its relative path.
	Save(fileHeader *multipart.FileHeader, dir string) (string, error)
	Delete(relPath string) error
	// FullPath maps a relative path back to the filesystem.
	FullPath(relPath string) (string, error)
}

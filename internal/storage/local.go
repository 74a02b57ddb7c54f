package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Video container formats accepted at upload.
var allowedExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".webm": true,
	".mkv":  true,
	".avi":  true,
}

// ValidVideoFormat checks the filename extension against the accepted
// container formats.
func ValidVideoFormat(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// LocalStorage keeps uploaded videos and export artifacts on the local
// filesystem, one directory per user.
type LocalStorage struct {
	uploadDir string
	exportDir string
	tempDir   string
}

// NewLocalStorage creates the storage root directories if needed.
func NewLocalStorage(uploadDir, exportDir, tempDir string) (*LocalStorage, error) {
	for _, dir := range []string{uploadDir, exportDir, tempDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory %s: %v", dir, err)
		}
	}
	return &LocalStorage{uploadDir: uploadDir, exportDir: exportDir, tempDir: tempDir}, nil
}

// VideoPath allocates a unique storage path for a new upload, keyed by
// the video id so re-uploads can never collide.
func (ls *LocalStorage) VideoPath(userID, videoID uuid.UUID, originalFilename string) (string, error) {
	userDir := filepath.Join(ls.uploadDir, userID.String())
	if err := os.MkdirAll(userDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create user directory: %v", err)
	}
	ext := strings.ToLower(filepath.Ext(originalFilename))
	return filepath.Join(userDir, fmt.Sprintf("%s%s", videoID.String(), ext)), nil
}

// ExportDir returns the directory export artifacts are written to.
func (ls *LocalStorage) ExportDir() string { return ls.exportDir }

// TempDir returns the scratch directory for extracted audio.
func (ls *LocalStorage) TempDir() string { return ls.tempDir }

// Remove deletes a stored file, tolerating files that are already gone.
func (ls *LocalStorage) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %v", path, err)
	}
	return nil
}

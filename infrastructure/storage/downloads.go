package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chatbot_ui_e2e/domain/interfaces"

	"github.com/spf13/afero"
)

const defaultDownloadDir = "Downloads"

type downloadStore struct {
	fs  afero.Fs
	dir string
}

// NewDownloadStore - creates download store rooted at dir on the given filesystem
func NewDownloadStore(fs afero.Fs, dir string) interfaces.DownloadStore {
	return &downloadStore{
		fs:  fs,
		dir: dir,
	}
}

// NewOSDownloadStore - creates download store on the real filesystem, making
// sure the directory exists
func NewOSDownloadStore(dir string) (interfaces.DownloadStore, error) {
	fs := afero.NewOsFs()
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}
	return NewDownloadStore(fs, dir), nil
}

// DefaultDownloadDir - returns the user's default download directory
func DefaultDownloadDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, defaultDownloadDir)
}

// ExpandHome - expands a leading ~ to the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}

// Dir - returns the download directory
func (s *downloadStore) Dir() string {
	return s.dir
}

// Exists - checks whether the named file is present
func (s *downloadStore) Exists(name string) (bool, error) {
	info, err := s.fs.Stat(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

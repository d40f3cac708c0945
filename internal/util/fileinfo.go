package util

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/penwyp/go-claude-meter/internal/core/constants"
)

// FileInfo contains extended file information, including modification time, size, and inode number.
type FileInfo struct {
	ModTime int64  // Last modification time of the file
	Size    int64  // File size in bytes
	Inode   uint64 // Inode number; changes when a file is replaced by rename
}

// GetFileInfo retrieves detailed file information, including inode number.
// Supported on Linux and macOS.
func GetFileInfo(path string) (*FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	sysStat, ok := stat.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, fmt.Errorf("failed to get file system information: %s", path)
	}

	return &FileInfo{
		ModTime: stat.ModTime().UnixNano(),
		Size:    stat.Size(),
		Inode:   sysStat.Ino,
	}, nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it into
// place, so readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, perm); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	// WriteFile keeps the mode of an existing temp file
	if err := os.Chmod(tempPath, perm); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// ConfigDir returns ~/.config/seekers
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", constants.ConfigDirName), nil
}

// ConfigPath joins name onto the config directory
func ConfigPath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

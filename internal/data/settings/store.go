package settings

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-claude-meter/internal/core/constants"
	"github.com/penwyp/go-claude-meter/internal/core/model"
	"github.com/penwyp/go-claude-meter/internal/util"
)

const settingsFileMode = 0o644

// FileStore persists display settings as camelCase JSON
type FileStore struct {
	path string

	mu          sync.Mutex
	fingerprint string // content last read or written by this store
}

// NewFileStore creates a store backed by path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// NewDefaultFileStore uses ~/.config/seekers/settings.json
func NewDefaultFileStore() (*FileStore, error) {
	path, err := util.ConfigPath(constants.SettingsFile)
	if err != nil {
		return nil, model.NewError(model.ErrPersistence, "resolve settings path", err)
	}
	return NewFileStore(path), nil
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

// Load returns defaults when the file does not exist. Keys missing from the
// file keep their default values.
func (s *FileStore) Load() (model.DisplaySettings, error) {
	settings := model.DefaultSettings()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return settings, model.NewError(model.ErrPersistence, "load settings", err)
	}

	if err := sonic.Unmarshal(data, &settings); err != nil {
		return model.DefaultSettings(), model.NewError(model.ErrPersistence, "load settings",
			fmt.Errorf("failed to parse %s: %w", s.path, err))
	}

	s.remember(data)
	return settings, nil
}

// Save writes settings atomically
func (s *FileStore) Save(settings model.DisplaySettings) error {
	data, err := sonic.ConfigStd.MarshalIndent(settings, "", "  ")
	if err != nil {
		return model.NewError(model.ErrPersistence, "save settings", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := util.WriteFileAtomic(s.path, data, settingsFileMode); err != nil {
		return model.NewError(model.ErrPersistence, "save settings", err)
	}
	s.fingerprint = util.FingerprintBytes(data)
	return nil
}

// Reset removes the settings file so defaults apply
func (s *FileStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return model.NewError(model.ErrPersistence, "reset settings", err)
	}
	s.fingerprint = ""
	return nil
}

// Fingerprint returns the checksum of the content last read or written
func (s *FileStore) Fingerprint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fingerprint
}

func (s *FileStore) remember(data []byte) {
	s.mu.Lock()
	s.fingerprint = util.FingerprintBytes(data)
	s.mu.Unlock()
}

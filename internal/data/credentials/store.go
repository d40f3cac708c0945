package credentials

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

// FileStore keeps credentials in a JSON file readable only by the owner
type FileStore struct {
	path string
	mu   sync.Mutex // serialises writers; never held by the agent across a fetch
}

// NewFileStore creates a store backed by path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// NewDefaultFileStore uses ~/.config/seekers/credentials.json
func NewDefaultFileStore() (*FileStore, error) {
	path, err := util.ConfigPath(constants.CredentialsFile)
	if err != nil {
		return nil, model.NewError(model.ErrPersistence, "resolve credentials path", err)
	}
	return NewFileStore(path), nil
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

// Load returns empty credentials when the file does not exist
func (s *FileStore) Load() (model.Credentials, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return model.Credentials{}, nil
	}
	if err != nil {
		return model.Credentials{}, model.NewError(model.ErrPersistence, "load credentials", err)
	}

	var creds model.Credentials
	if err := sonic.Unmarshal(data, &creds); err != nil {
		return model.Credentials{}, model.NewError(model.ErrPersistence, "load credentials",
			fmt.Errorf("failed to parse %s: %w", s.path, err))
	}
	return creds, nil
}

// Save writes the credentials with mode 0600
func (s *FileStore) Save(creds model.Credentials) error {
	data, err := sonic.ConfigStd.MarshalIndent(creds, "", "  ")
	if err != nil {
		return model.NewError(model.ErrPersistence, "save credentials", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := util.WriteFileAtomic(s.path, data, constants.SecureFileMode); err != nil {
		return model.NewError(model.ErrPersistence, "save credentials", err)
	}
	util.LogInfof("Saved credentials for organization %s (key %s)", creds.OrgID, creds.MaskedKey())
	return nil
}

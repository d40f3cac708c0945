package agent

import (
	"sync"

	"github.com/penwyp/go-claude-meter/internal/core/model"
	"github.com/penwyp/go-claude-meter/internal/core/notify"
	"github.com/penwyp/go-claude-meter/internal/core/usage"
)

// State is the shared application state. It is built once at startup and
// handed to every task by pointer. Each part has its own lock.
type State struct {
	Store     *usage.Store
	Debouncer *notify.Debouncer

	mu       sync.RWMutex
	settings model.DisplaySettings
}

// NewState creates state holding the given settings and an empty store
func NewState(settings model.DisplaySettings) *State {
	return &State{
		Store:     usage.NewStore(),
		Debouncer: notify.NewDebouncer(),
		settings:  settings,
	}
}

// Settings returns a copy of the current settings
func (s *State) Settings() model.DisplaySettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetSettings replaces the current settings
func (s *State) SetSettings(settings model.DisplaySettings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
}

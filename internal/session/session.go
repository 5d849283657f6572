package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/studiowebux/taskdeck/internal/config"
	"github.com/studiowebux/taskdeck/internal/router"
	"github.com/studiowebux/taskdeck/internal/types"
)

// Manager loads and saves the shell session
type Manager struct {
	path    string
	session *types.Session
}

// NewManager creates a session manager backed by path.
// An empty path uses the global session file.
func NewManager(path string) *Manager {
	if path == "" {
		path = config.SessionFile
	}
	return &Manager{
		path:    path,
		session: &types.Session{},
	}
}

// Path returns the session file location
func (m *Manager) Path() string { return m.path }

// Session returns the loaded session
func (m *Manager) Session() *types.Session { return m.session }

// Load loads the session file. A missing file yields an empty session.
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.session = &types.Session{}
			return nil
		}
		return fmt.Errorf("failed to read session file: %w", err)
	}

	var session types.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return fmt.Errorf("failed to parse session file: %w", err)
	}

	m.session = &session
	return nil
}

// Save saves the session to disk
func (m *Manager) Save() error {
	data, err := json.MarshalIndent(m.session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), config.DirPermissions); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(m.path, data, config.FilePermissions); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Capture stores the navigator's history in the session
func (m *Manager) Capture(nav *router.Navigator) {
	entries, index := nav.Snapshot()
	m.session.History = entries
	m.session.HistoryIndex = index
}

// RestoreInto replays the saved history into nav and returns the resulting state.
// A session saved against another backend is ignored, since its ids mean nothing here.
func (m *Manager) RestoreInto(nav *router.Navigator, baseURL string) router.State {
	if m.session.BaseURL != "" && m.session.BaseURL != baseURL {
		return nav.Current()
	}
	if len(m.session.History) == 0 {
		return nav.Current()
	}
	return nav.Restore(m.session.History, m.session.HistoryIndex)
}

// SetBaseURL records the backend the history belongs to
func (m *Manager) SetBaseURL(baseURL string) {
	m.session.BaseURL = baseURL
}

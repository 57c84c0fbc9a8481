// ABOUTME: Persisted CLI login session.
// ABOUTME: Remembers which user is logged in between gym invocations.

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Session records the logged-in user.
type Session struct {
	UserID     int64     `json:"user_id"`
	SessionID  string    `json:"session_id"`
	LoggedInAt time.Time `json:"logged_in_at"`
}

// SessionPath returns the path to the session file.
func SessionPath() string {
	return filepath.Join(GetConfigDir(), "session.json")
}

// LoadSession loads the saved session. It returns nil and no error when
// nobody is logged in.
func LoadSession() (*Session, error) {
	data, err := os.ReadFile(SessionPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.UserID == 0 {
		return nil, nil
	}
	return &s, nil
}

// SaveSession persists the session to disk.
func SaveSession(s *Session) error {
	if err := os.MkdirAll(GetConfigDir(), 0750); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(SessionPath(), data, 0600)
}

// ClearSession removes the session file.
func ClearSession() error {
	path := SessionPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(path)
}

package session

import (
	"encoding/json"
	"fmt"

	"github.com/kelsos/atom-tasks/internal/logger"
	"github.com/kelsos/atom-tasks/internal/storage"
)

// StorageKey is the single slot the session lives in
const StorageKey = "atom_user_session"

// Session identifies the logged-in user
type Session struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// Store reads and writes the session record. A Store with no backing storage
// behaves as if nothing is ever persisted.
type Store struct {
	local storage.Local
}

// NewStore creates a session store over local; local may be nil
func NewStore(local storage.Local) *Store {
	return &Store{local: local}
}

// Set persists the session for userID and email
func (s *Store) Set(userID, email string) error {
	if s.local == nil {
		return nil
	}

	data, err := json.Marshal(Session{UserID: userID, Email: email})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.local.SetItem(StorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	logger.Debug("Session stored for user %s", userID)
	return nil
}

// Get returns the stored session, or nil when there is none or it cannot be parsed
func (s *Store) Get() *Session {
	if s.local == nil {
		return nil
	}

	raw, ok, err := s.local.GetItem(StorageKey)
	if err != nil {
		logger.Warn("Failed to read session: %v", err)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		logger.Warn("Discarding unreadable session record: %v", err)
		return nil
	}
	return &sess
}

// Clear removes the stored session
func (s *Store) Clear() error {
	if s.local == nil {
		return nil
	}
	if err := s.local.RemoveItem(StorageKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *Store) IsAuthenticated() bool {
	return s.Get() != nil
}

func (s *Store) UserID() (string, bool) {
	sess := s.Get()
	if sess == nil {
		return "", false
	}
	return sess.UserID, true
}

func (s *Store) Email() (string, bool) {
	sess := s.Get()
	if sess == nil {
		return "", false
	}
	return sess.Email, true
}

package statestore

import (
	"clockin/internal/domain"
)

// SessionStore saves and restores the attendance snapshot under a fixed key.
type SessionStore struct {
	kv  KV
	key string
}

// NewSessionStore wraps kv using domain.SessionStateKey.
func NewSessionStore(kv KV) *SessionStore {
	return &SessionStore{kv: kv, key: domain.SessionStateKey}
}

// Load returns the stored snapshot, or an idle one when nothing is stored.
func (s *SessionStore) Load() (domain.SessionState, error) {
	var state domain.SessionState
	found, err := s.kv.Get(s.key, &state)
	if err != nil || !found {
		return domain.SessionState{}, err
	}
	return state, nil
}

// Save writes the snapshot.
func (s *SessionStore) Save(state domain.SessionState) error {
	return s.kv.Put(s.key, state)
}

// Clear removes the snapshot.
func (s *SessionStore) Clear() error {
	return s.kv.Delete(s.key)
}

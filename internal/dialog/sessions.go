package dialog

import (
	"sync"
)

// SessionRegistry keeps at most one active session per user. Reads and writes hand out
// copies so callers cannot mutate registered state by accident.
type SessionRegistry struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*Session)}
}

// Get returns a copy of the user's active session.
func (r *SessionRegistry) Get(userID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[userID]
	if !ok {
		return nil, false
	}
	return s.clone(), true
}

// Put stores s as the user's session and returns the session it replaced when that was a
// different dialog instance.
func (r *SessionRegistry) Put(s *Session) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, had := r.sessions[s.UserID]
	r.sessions[s.UserID] = s.clone()
	if had && prev.ID != s.ID {
		return prev, true
	}
	return nil, false
}

// Delete drops the user's session, returning it when one existed.
func (r *SessionRegistry) Delete(userID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userID]
	if ok {
		delete(r.sessions, userID)
	}
	return s, ok
}

// Len reports how many users have an active session.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

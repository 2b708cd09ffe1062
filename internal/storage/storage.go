package storage

import (
	"fmt"
	"sync"

	"github.com/recordroom/vinyl-lister/internal/models"
)

// SessionStore is the process-wide registry of batch sessions.
// Sessions are never evicted; they live until the process exits.
//
// Readers get deep copies. Writers go through Update, which holds the lock
// for the duration of the mutation, so two edits of the same record apply
// in arrival order and the later one wins.
type SessionStore struct {
	sessions map[string]*models.Session
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.Session),
	}
}

// Create registers session under its ID. It fails if the ID is taken.
func (s *SessionStore) Create(session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ID]; exists {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	s.sessions[session.ID] = session
	return nil
}

// Get returns a snapshot of the session.
func (s *SessionStore) Get(sessionID string) (*models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, false
	}
	return session.Clone(), true
}

// Update runs fn against the live session while holding the write lock.
// fn must not block on I/O.
func (s *SessionStore) Update(sessionID string, fn func(*models.Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, exists := s.sessions[sessionID]
	if !exists {
		return fmt.Errorf("%w: %s", models.ErrSessionNotFound, sessionID)
	}
	return fn(session)
}

// UpdateRecord is Update narrowed to one record of the session.
func (s *SessionStore) UpdateRecord(sessionID, recordID string, fn func(*models.Record) error) error {
	return s.Update(sessionID, func(session *models.Session) error {
		rec := session.FindRecord(recordID)
		if rec == nil {
			return fmt.Errorf("%w: %s", models.ErrRecordNotFound, recordID)
		}
		return fn(rec)
	})
}

func (s *SessionStore) GetAll() map[string]*models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*models.Session, len(s.sessions))
	for k, v := range s.sessions {
		result[k] = v.Clone()
	}
	return result
}

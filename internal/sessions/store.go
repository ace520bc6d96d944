// Package sessions holds the per-user conversational state. Events for the
// same user are serialized by a per-entry lock; events for different users
// run in parallel.
package sessions

import (
	"sync"

	"github.com/avdeeva/spendbot/internal/flow"
)

type Store struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

type entry struct {
	mu   sync.Mutex
	sess flow.Session
}

func NewStore() *Store {
	return &Store{entries: make(map[int64]*entry)}
}

// Update runs fn with the user's session while holding that user's lock.
// fn receives a copy; the store keeps it only when fn succeeds, so a failed
// event observes no state change and can be retried safely.
func (s *Store) Update(userID int64, fn func(*flow.Session) error) error {
	e := s.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()

	work := e.sess.Clone()
	if err := fn(&work); err != nil {
		return err
	}
	e.sess = work
	return nil
}

// Peek returns a copy of the user's current session.
func (s *Store) Peek(userID int64) flow.Session {
	e := s.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess.Clone()
}

func (s *Store) entry(userID int64) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userID]
	if !ok {
		e = &entry{sess: flow.Session{State: flow.StateIdle}}
		s.entries[userID] = e
	}
	return e
}

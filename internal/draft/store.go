package draft

import (
	"sync"

	"github.com/google/uuid"
)

// Store holds live drafts. Drafts are session state, not records: they are
// kept in process memory and vanish on restart.
type Store struct {
	mu     sync.RWMutex
	drafts map[uuid.UUID]*Draft
}

func NewStore() *Store {
	return &Store{drafts: make(map[uuid.UUID]*Draft)}
}

// Create seeds and registers a new draft, returning a snapshot.
func (s *Store) Create(branchID uuid.UUID, def Defaults) *Draft {
	d := New(branchID, def)
	s.mu.Lock()
	s.drafts[d.ID] = d
	s.mu.Unlock()
	return d.Clone()
}

// Get returns a snapshot of the draft. Mutating the returned value does not
// affect the stored draft.
func (s *Store) Get(id uuid.UUID) (*Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d.Clone(), nil
}

// Mutate runs fn against the live draft under the store lock and returns a
// snapshot of the result. If fn errors the draft keeps whatever fn did to
// it; operations are expected to validate before mutating.
func (s *Store) Mutate(id uuid.UUID, fn func(*Draft) error) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(d); err != nil {
		return nil, err
	}
	return d.Clone(), nil
}

// Claim removes the draft and hands the caller the live value. Only one
// caller can claim a given draft; a second Claim returns ErrNotFound. A
// caller that fails to consume the draft puts it back with Restore.
func (s *Store) Claim(id uuid.UUID) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.drafts, id)
	return d, nil
}

// Restore re-registers a claimed draft.
func (s *Store) Restore(d *Draft) {
	s.mu.Lock()
	s.drafts[d.ID] = d
	s.mu.Unlock()
}

// Delete drops the draft. Deleting an unknown ID is a no-op.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	delete(s.drafts, id)
	s.mu.Unlock()
}

// Count reports the number of live drafts.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}

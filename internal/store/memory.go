package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pontos/nearby-points/internal/places"
)

var (
	// ErrNotFound is returned when a session id is unknown or expired.
	ErrNotFound = errors.New("session not found")
)

// MemoryStore is a concurrency-safe in-memory implementation of a session store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: session id
	data map[string]*places.Session

	// retention configuration
	maxHistory int           // max number of fixes kept per session
	maxAge     time.Duration // idle time after which a session expires

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0 the fix history is unlimited; if maxAge is <= 0
// sessions never expire.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*places.Session),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create registers a fresh session.
func (s *MemoryStore) Create() places.Session {
	now := s.now()
	sess := &places.Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[sess.ID] = sess
	return copySession(sess)
}

// Get returns a copy of the session.
func (s *MemoryStore) Get(id string) (places.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.live(id)
	if !ok {
		return places.Session{}, ErrNotFound
	}
	return copySession(sess), nil
}

// SaveFix makes fix the current observer position and appends it to the
// history, enforcing retention.
func (s *MemoryStore) SaveFix(id string, fix places.Fix) (places.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id)
	if !ok {
		return places.Session{}, ErrNotFound
	}

	observer := fix.Coordinate
	sess.Observer = &observer
	sess.Fixes = append(sess.Fixes, fix)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(sess.Fixes) > s.maxHistory {
		over := len(sess.Fixes) - s.maxHistory
		sess.Fixes = sess.Fixes[over:]
	}

	sess.UpdatedAt = s.now()
	return copySession(sess), nil
}

// SetScope stores the chosen city.
func (s *MemoryStore) SetScope(id, scope string) (places.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id)
	if !ok {
		return places.Session{}, ErrNotFound
	}
	sess.Scope = scope
	sess.UpdatedAt = s.now()
	return copySession(sess), nil
}

// SetScopeIfUnset stores scope unless a city was already chosen. The check
// and the write happen under one lock.
func (s *MemoryStore) SetScopeIfUnset(id, scope string) (places.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id)
	if !ok {
		return places.Session{}, ErrNotFound
	}
	if sess.Scope == "" {
		sess.Scope = scope
		sess.UpdatedAt = s.now()
	}
	return copySession(sess), nil
}

// SetRequest stores the hints used for periodic refreshes. nil clears them.
func (s *MemoryStore) SetRequest(id string, req *places.LocateRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id)
	if !ok {
		return ErrNotFound
	}
	if req == nil {
		sess.Request = nil
	} else {
		r := *req
		sess.Request = &r
	}
	sess.UpdatedAt = s.now()
	return nil
}

// List returns copies of all live sessions.
func (s *MemoryStore) List() []places.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]places.Session, 0, len(s.data))
	for id := range s.data {
		if sess, ok := s.live(id); ok {
			out = append(out, copySession(sess))
		}
	}
	return out
}

// PurgeExpired removes sessions idle for longer than maxAge.
func (s *MemoryStore) PurgeExpired() int {
	if s.maxAge <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.maxAge)
	removed := 0
	for id, sess := range s.data {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// live looks up a session and hides it once expired. Caller holds the lock.
func (s *MemoryStore) live(id string) (*places.Session, bool) {
	sess, ok := s.data[id]
	if !ok {
		return nil, false
	}
	if s.maxAge > 0 && sess.UpdatedAt.Before(s.now().Add(-s.maxAge)) {
		return nil, false
	}
	return sess, true
}

func copySession(sess *places.Session) places.Session {
	out := *sess
	if sess.Observer != nil {
		o := *sess.Observer
		out.Observer = &o
	}
	if sess.Request != nil {
		r := *sess.Request
		out.Request = &r
	}
	out.Fixes = append([]places.Fix(nil), sess.Fixes...)
	return out
}

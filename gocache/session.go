// Package gocache keeps web sessions in an expiring in-memory cache.
package gocache

import (
	"time"

	"github.com/fwojciec/locrag"
	"github.com/patrickmn/go-cache"
)

// DefaultSessionTTL is how long an idle session is kept.
const DefaultSessionTTL = time.Hour

// Ensure SessionStore implements locrag.SessionStore at compile time.
var _ locrag.SessionStore = (*SessionStore)(nil)

// SessionStore implements locrag.SessionStore with go-cache. Every Get
// refreshes the session's expiry.
type SessionStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewSessionStore creates a SessionStore expiring idle sessions after ttl.
// onEvict, when non-nil, is called for every removed or expired session.
func NewSessionStore(ttl time.Duration, onEvict func(id string)) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	c := cache.New(ttl, ttl/6)
	if onEvict != nil {
		c.OnEvicted(func(id string, _ any) { onEvict(id) })
	}
	return &SessionStore{cache: c, ttl: ttl}
}

// Get returns the session for id, or nil.
func (s *SessionStore) Get(id string) *locrag.Session {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil
	}
	session, ok := v.(*locrag.Session)
	if !ok {
		return nil
	}
	s.cache.Set(id, session, s.ttl)
	return session
}

// Put stores a session with a fresh expiry.
func (s *SessionStore) Put(id string, session *locrag.Session) {
	s.cache.Set(id, session, s.ttl)
}

// Delete removes a session.
func (s *SessionStore) Delete(id string) {
	s.cache.Delete(id)
}

// Len returns the number of stored sessions, including expired ones not
// yet cleaned up.
func (s *SessionStore) Len() int {
	return s.cache.ItemCount()
}

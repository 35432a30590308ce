package mock

import (
	"github.com/fwojciec/locrag"
)

var _ locrag.SessionStore = (*SessionStore)(nil)

// SessionStore is a mock implementation of locrag.SessionStore.
type SessionStore struct {
	GetFn    func(id string) *locrag.Session
	PutFn    func(id string, session *locrag.Session)
	DeleteFn func(id string)
}

func (s *SessionStore) Get(id string) *locrag.Session {
	return s.GetFn(id)
}

func (s *SessionStore) Put(id string, session *locrag.Session) {
	s.PutFn(id, session)
}

func (s *SessionStore) Delete(id string) {
	s.DeleteFn(id)
}

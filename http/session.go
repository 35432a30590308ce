package http

import (
	"log/slog"
	"net/http"

	"github.com/fwojciec/locrag"
	"github.com/fwojciec/locrag/prometheus"
	"github.com/google/uuid"
)

// SessionCookie names the cookie carrying the browser session id.
const SessionCookie = "locrag_session"

// session returns the caller's session, starting a new one when the cookie
// is missing or its session expired.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *locrag.Session {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if sess := s.Sessions.Get(c.Value); sess != nil {
			return sess
		}
	}

	id := uuid.NewString()
	sess := s.NewSession()
	if err := sess.Open(r.Context()); err != nil {
		s.logger().Warn("session opened without persisted store", slog.String("session", id), slog.Any("error", err))
	}
	s.Sessions.Put(id, sess)
	prometheus.SessionsActive.Inc()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

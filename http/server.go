// Package http provides the locrag web interface and an HTTP page fetcher.
package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/fwojciec/locrag"
	"github.com/fwojciec/locrag/prometheus"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// DefaultMaxUploadBytes caps uploaded files when MaxUploadBytes is unset.
const DefaultMaxUploadBytes = 100 << 20

// Server serves the web page and the JSON API over a shared set of
// per-browser sessions.
type Server struct {
	mu       sync.Mutex
	server   *http.Server
	shutdown bool

	handlerOnce sync.Once
	handler     http.Handler

	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// CORSOrigins lists origins allowed to call /api. Empty disables CORS.
	CORSOrigins []string

	// MetricsPath serves Prometheus metrics when set.
	MetricsPath string

	MaxUploadBytes int64

	Sessions locrag.SessionStore

	// NewSession builds an unopened session for a new browser.
	NewSession func() *locrag.Session

	// URL ingestion. RenderFetcher is optional and used when the client
	// asks for JavaScript rendering.
	Fetcher       locrag.Fetcher
	RenderFetcher locrag.Fetcher
	Extractor     locrag.Extractor
	Converter     locrag.Converter

	Logger *slog.Logger
}

// NewServer returns a new Server.
func NewServer() *Server {
	return &Server{
		MaxUploadBytes: DefaultMaxUploadBytes,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Handler returns the root handler with every route and middleware.
func (s *Server) Handler() http.Handler {
	s.handlerOnce.Do(func() {
		s.handler = s.routes()
	})
	return s.handler
}

func (s *Server) routes() http.Handler {
	router := mux.NewRouter()
	router.Use(s.requestID, s.recoverPanics)
	router.Use(prometheus.Middleware)

	router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	router.HandleFunc("/store", s.handleCreateStoreForm).Methods(http.MethodPost)
	router.HandleFunc("/upload", s.handleUploadForm).Methods(http.MethodPost)
	router.HandleFunc("/url", s.handleURLForm).Methods(http.MethodPost)
	router.HandleFunc("/ask", s.handleAskForm).Methods(http.MethodPost)
	router.HandleFunc("/reset", s.handleResetForm).Methods(http.MethodPost)
	router.HandleFunc("/posts", s.handlePostsForm).Methods(http.MethodPost)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.MetricsPath != "" {
		router.Handle(s.MetricsPath, prometheus.Handler()).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/session", s.handleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/store", s.handleCreateStore).Methods(http.MethodPost)
	api.HandleFunc("/store", s.handleResetStore).Methods(http.MethodDelete)
	api.HandleFunc("/documents", s.handleListDocuments).Methods(http.MethodGet)
	api.HandleFunc("/documents", s.handleUploadDocument).Methods(http.MethodPost)
	api.HandleFunc("/url", s.handleLoadURL).Methods(http.MethodPost)
	api.HandleFunc("/ask", s.handleAsk).Methods(http.MethodPost)
	api.HandleFunc("/posts", s.handleWritePosts).Methods(http.MethodPost)

	if len(s.CORSOrigins) == 0 {
		return router
	}
	return cors.New(cors.Options{
		AllowedOrigins:   s.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}).Handler(router)
}

// ListenAndServe serves until Shutdown is called.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return locrag.WrapError(locrag.ECONFIG, "listen", err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return ln.Close()
	}
	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
	}
	s.server = server
	s.mu.Unlock()

	s.logger().Info("listening", slog.String("addr", ln.Addr().String()))
	if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.shutdown = true
	server := s.server
	s.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.Logger
}

// requestID tags each request with an X-Request-ID, reusing the client's.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// recoverPanics turns handler panics into internal errors.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				s.logger().Error("panic", slog.String("path", r.URL.Path), slog.Any("value", v))
				s.Error(w, r, locrag.Errorf(locrag.EINTERNAL, "panic: %v", v))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

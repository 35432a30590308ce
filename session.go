package locrag

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// State is the lifecycle state of a Session.
type State int

// Session states.
const (
	StateNoStore State = iota
	StateStoreReady
	StateAnswering
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNoStore:
		return "no store"
	case StateStoreReady:
		return "store ready"
	case StateAnswering:
		return "answering"
	default:
		return "unknown"
	}
}

// Turn is one question and answer exchanged in a session.
// Turns live only in memory.
type Turn struct {
	Question  string           `json:"question"`
	Retrieval *RetrievalResult `json:"retrieval"`
	Answer    *ComposedAnswer  `json:"answer"`
	AskedAt   time.Time        `json:"askedAt"`
}

// Session drives one user's interaction with the current store. It owns the
// in-memory store identifier and conversation history; the registry
// persists the identifier between runs.
//
// A Session serialises its operations, so at most one external call is in
// flight per session. State and StoreID never wait for a call in flight.
type Session struct {
	Store    DocumentStore
	Composer AnswerComposer
	Registry StoreRegistry

	// Optional collaborators for post generation.
	Posts  PostWriter
	Images ImageGenerator

	// StoreDisplayName names stores created by CreateStore.
	StoreDisplayName string

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	mu    sync.Mutex // serialises operations, guards turns
	turns []Turn

	state   atomic.Int32
	storeID atomic.Value // string
}

// NewSession returns a session in the NoStore state.
func NewSession(store DocumentStore, composer AnswerComposer, registry StoreRegistry) *Session {
	return &Session{
		Store:            store,
		Composer:         composer,
		Registry:         registry,
		StoreDisplayName: DefaultStoreDisplayName,
		Now:              time.Now,
	}
}

// Open loads the persisted store identifier. A read failure is returned as
// EIO and leaves the session in NoStore, still usable in memory.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.Registry.Load(ctx)
	if err != nil {
		s.setStore("")
		return IOError("load store", err)
	}
	s.setStore(id)
	return nil
}

// State returns the current state. It reports StateAnswering while Ask is
// waiting on the store or the composer.
func (s *Session) State() State {
	return State(s.state.Load())
}

// StoreID returns the active store identifier, or "" in NoStore.
func (s *Session) StoreID() string {
	id, _ := s.storeID.Load().(string)
	return id
}

// Turns returns a copy of the conversation history.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := make([]Turn, len(s.turns))
	copy(turns, s.turns)
	return turns
}

// CreateStore allocates a new remote store and makes it current.
// If the identifier cannot be persisted the store is still used for the
// rest of the session and an EIO error is returned as a warning.
func (s *Session) CreateStore(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := s.StoreDisplayName
	if name == "" {
		name = DefaultStoreDisplayName
	}
	id, err := s.Store.CreateStore(ctx, name)
	if err != nil {
		return "", RemoteError("create store", err)
	}
	s.setStore(id)

	if err := s.Registry.Save(ctx, id); err != nil {
		return id, IOError("save store", err)
	}
	return id, nil
}

// Upload ingests a document into the current store.
func (s *Session) Upload(ctx context.Context, upload *Upload) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireStore(); err != nil {
		return nil, err
	}
	if err := upload.Validate(); err != nil {
		return nil, err
	}
	doc, err := s.Store.Ingest(ctx, s.StoreID(), upload)
	if err != nil {
		return nil, RemoteError("ingest", err)
	}
	return doc, nil
}

// Documents lists the documents in the current store.
func (s *Session) Documents(ctx context.Context) ([]*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireStore(); err != nil {
		return nil, err
	}
	docs, err := s.Store.ListDocuments(ctx, s.StoreID())
	if err != nil {
		return nil, RemoteError("list documents", err)
	}
	return docs, nil
}

// Ask retrieves snippets for the question, composes an answer and records
// the turn. The session always returns to StoreReady, even on failure.
func (s *Session) Ask(ctx context.Context, question string) (*Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, Errorf(EINVALID, "question required")
	}
	if err := s.requireStore(); err != nil {
		return nil, err
	}

	storeID := s.StoreID()
	s.state.Store(int32(StateAnswering))
	defer s.state.Store(int32(StateStoreReady))

	retrieval, err := s.Store.Query(ctx, storeID, question)
	if err != nil {
		return nil, RemoteError("query", err)
	}
	answer, err := s.Composer.Answer(ctx, question, retrieval)
	if err != nil {
		return nil, RemoteError("answer", err)
	}

	turn := Turn{
		Question:  question,
		Retrieval: retrieval,
		Answer:    answer,
		AskedAt:   s.now(),
	}
	s.turns = append(s.turns, turn)
	return &turn, nil
}

// WritePosts drafts social posts about a topic from the current store.
// When withImages is set, illustration failures are reported on
// Posts.ImageErr and do not fail the call.
func (s *Session) WritePosts(ctx context.Context, req *PostRequest, withImages bool) (*Posts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Posts == nil {
		return nil, Errorf(ECONFIG, "post generation not configured")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireStore(); err != nil {
		return nil, err
	}

	text, err := s.Posts.WritePosts(ctx, s.StoreID(), req)
	if err != nil {
		return nil, RemoteError("write posts", err)
	}
	posts := &Posts{Text: text}

	if withImages {
		if s.Images == nil {
			posts.ImageErr = Errorf(ECONFIG, "image generation not configured")
			return posts, nil
		}
		images, err := s.Images.GenerateImages(ctx, req.Topic, req.Tone, req.Variants)
		if err != nil {
			posts.ImageErr = RemoteError("generate images", err)
		} else {
			posts.Images = images
		}
	}
	return posts, nil
}

// Reset forgets the current store. The remote store is left untouched and
// the conversation history is kept. A registry failure still resets the
// in-memory state and is returned as EIO.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setStore("")
	if err := s.Registry.Clear(ctx); err != nil {
		return IOError("clear store", err)
	}
	return nil
}

func (s *Session) setStore(id string) {
	id = strings.TrimSpace(id)
	s.storeID.Store(id)
	if id == "" {
		s.state.Store(int32(StateNoStore))
	} else {
		s.state.Store(int32(StateStoreReady))
	}
}

func (s *Session) requireStore() error {
	if s.StoreID() == "" {
		return &Error{Code: ENOSTORE, Message: "no store configured; create one first"}
	}
	return nil
}

func (s *Session) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// SessionStore keeps web sessions keyed by browser session id.
type SessionStore interface {
	// Get returns the session for id, or nil when none exists or it expired.
	Get(id string) *Session

	// Put stores or refreshes a session.
	Put(id string, session *Session)

	// Delete removes a session.
	Delete(id string)
}

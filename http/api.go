package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/fwojciec/locrag"
)

// maxJSONBytes caps JSON request bodies.
const maxJSONBytes = 1 << 20

// SessionResponse describes the caller's session.
type SessionResponse struct {
	State   string        `json:"state"`
	StoreID string        `json:"storeId,omitempty"`
	Turns   []locrag.Turn `json:"turns"`
}

// StoreResponse is returned by store operations. Warning carries a
// non-fatal persistence failure.
type StoreResponse struct {
	State   string `json:"state"`
	StoreID string `json:"storeId,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// DocumentsResponse lists the documents of the current store.
type DocumentsResponse struct {
	Documents []*locrag.Document `json:"documents"`
}

// URLRequest asks for a web page to be ingested.
type URLRequest struct {
	URL    string `json:"url"`
	Render bool   `json:"render"`
}

// AskRequest carries a question.
type AskRequest struct {
	Question string `json:"question"`
}

// PostsRequest asks for social post drafts, optionally illustrated.
type PostsRequest struct {
	locrag.PostRequest
	Images bool `json:"images"`
}

// PostsResponse carries generated drafts. Image data is base64 encoded.
type PostsResponse struct {
	Text       string          `json:"text"`
	Images     []ImageResponse `json:"images,omitempty"`
	ImageError string          `json:"imageError,omitempty"`
}

// ImageResponse is one generated image.
type ImageResponse struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	turns := sess.Turns()
	if turns == nil {
		turns = []locrag.Turn{}
	}
	writeJSON(w, http.StatusOK, SessionResponse{
		State:   sess.State().String(),
		StoreID: sess.StoreID(),
		Turns:   turns,
	})
}

func (s *Server) handleCreateStore(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	id, err := sess.CreateStore(r.Context())
	resp := StoreResponse{StoreID: id}
	if err != nil {
		if id == "" {
			s.Error(w, r, err)
			return
		}
		resp.Warning = locrag.ErrorMessage(err)
	}
	resp.State = sess.State().String()
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleResetStore(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	resp := StoreResponse{}
	if err := sess.Reset(r.Context()); err != nil {
		resp.Warning = locrag.ErrorMessage(err)
	}
	resp.State = sess.State().String()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	docs, err := sess.Documents(r.Context())
	if err != nil {
		s.Error(w, r, err)
		return
	}
	if docs == nil {
		docs = []*locrag.Document{}
	}
	writeJSON(w, http.StatusOK, DocumentsResponse{Documents: docs})
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	upload, err := s.readUpload(w, r)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	doc, err := sess.Upload(r.Context(), upload)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleLoadURL(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	var req URLRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	upload, err := s.loadPage(r, req.URL, req.Render)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	doc, err := sess.Upload(r.Context(), upload)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	var req AskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	turn, err := sess.Ask(r.Context(), req.Question)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, turn)
}

func (s *Server) handleWritePosts(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	var req PostsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	posts, err := sess.WritePosts(r.Context(), &req.PostRequest, req.Images)
	if err != nil {
		s.Error(w, r, err)
		return
	}

	resp := PostsResponse{Text: posts.Text}
	for _, img := range posts.Images {
		resp.Images = append(resp.Images, ImageResponse{MIMEType: img.MIMEType, Data: img.Data})
	}
	if posts.ImageErr != nil {
		resp.ImageError = locrag.ErrorMessage(posts.ImageErr)
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return locrag.Errorf(locrag.EINVALID, "invalid JSON body: %s", err)
	}
	return nil
}

// readUpload reads the multipart "file" field into an upload.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*locrag.Upload, error) {
	maxBytes := s.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, locrag.Errorf(locrag.EINVALID, "upload larger than %d bytes", maxBytes)
		}
		return nil, locrag.Errorf(locrag.EINVALID, "file required")
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	content, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, locrag.IOError("read upload", err)
	}
	if int64(len(content)) > maxBytes {
		return nil, locrag.Errorf(locrag.EINVALID, "upload larger than %d bytes", maxBytes)
	}

	mimeType, _, _ := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if mimeType == "application/octet-stream" {
		mimeType = ""
	}
	name := header.Filename
	if name != "" {
		name = filepath.Base(name)
	}
	return &locrag.Upload{
		Filename: name,
		MIMEType: mimeType,
		Content:  content,
	}, nil
}

// loadPage fetches a web page and converts it into a Markdown upload.
func (s *Server) loadPage(r *http.Request, rawURL string, render bool) (*locrag.Upload, error) {
	fetcher := s.Fetcher
	if render {
		if s.RenderFetcher == nil {
			return nil, locrag.Errorf(locrag.ECONFIG, "JavaScript rendering is not available")
		}
		fetcher = s.RenderFetcher
	}
	if fetcher == nil || s.Extractor == nil || s.Converter == nil {
		return nil, locrag.Errorf(locrag.ECONFIG, "URL ingestion is not configured")
	}

	page, err := locrag.LoadWebPage(r.Context(), fetcher, s.Extractor, s.Converter, rawURL)
	if err != nil {
		return nil, err
	}
	return page.Upload(), nil
}

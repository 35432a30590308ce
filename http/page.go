package http

import (
	"bytes"
	"embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/fwojciec/locrag"
)

// FlashCookie carries a one-shot message across a form redirect.
const FlashCookie = "locrag_flash"

//go:embed templates/*.html
var templateFS embed.FS

var indexTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"dataURI": func(img *locrag.Image) template.URL {
		return template.URL("data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data))
	},
	"join": strings.Join,
}).ParseFS(templateFS, "templates/index.html"))

// Flash is a message shown once on the next page load.
type Flash struct {
	Kind    string `json:"k"` // success, warning or error
	Message string `json:"m"`
}

type pageData struct {
	Flash          *Flash
	State          string
	Ready          bool
	StoreID        string
	Documents      []*locrag.Document
	DocumentsError string
	Turns          []locrag.Turn

	Platforms []locrag.Platform
	Tones     []string
	MinWords  int
	MaxWords  int
	Post      locrag.PostRequest
	Posts     *locrag.Posts
	ImageErr  string

	RenderAvailable bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	s.renderPage(w, r, sess, http.StatusOK, s.popFlash(w, r), nil, nil)
}

func (s *Server) handleCreateStoreForm(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	id, err := sess.CreateStore(r.Context())
	switch {
	case err != nil && id == "":
		s.redirect(w, r, s.errorFlash(r, err))
	case err != nil:
		s.redirect(w, r, &Flash{Kind: "warning", Message: fmt.Sprintf("Created store %s, but it will not be remembered: %s", id, locrag.ErrorMessage(err))})
	default:
		s.redirect(w, r, &Flash{Kind: "success", Message: "Created store " + id})
	}
}

func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	upload, err := s.readUpload(w, r)
	if err != nil {
		s.redirect(w, r, s.errorFlash(r, err))
		return
	}
	doc, err := sess.Upload(r.Context(), upload)
	if err != nil {
		s.redirect(w, r, s.errorFlash(r, err))
		return
	}
	s.redirect(w, r, &Flash{Kind: "success", Message: "Uploaded " + doc.Title()})
}

func (s *Server) handleURLForm(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	upload, err := s.loadPage(r, r.FormValue("url"), r.FormValue("render") == "on")
	if err != nil {
		s.redirect(w, r, s.errorFlash(r, err))
		return
	}
	doc, err := sess.Upload(r.Context(), upload)
	if err != nil {
		s.redirect(w, r, s.errorFlash(r, err))
		return
	}
	s.redirect(w, r, &Flash{Kind: "success", Message: "Added " + doc.Title()})
}

func (s *Server) handleAskForm(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if _, err := sess.Ask(r.Context(), r.FormValue("question")); err != nil {
		s.redirect(w, r, s.errorFlash(r, err))
		return
	}
	s.redirect(w, r, nil)
}

func (s *Server) handleResetForm(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if err := sess.Reset(r.Context()); err != nil {
		s.redirect(w, r, &Flash{Kind: "warning", Message: "Store forgotten for this session only: " + locrag.ErrorMessage(err)})
		return
	}
	s.redirect(w, r, &Flash{Kind: "success", Message: "Store reset. Create a new store to continue."})
}

// handlePostsForm renders the drafts directly; they are not kept in the
// session.
func (s *Server) handlePostsForm(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	req := locrag.PostRequest{
		Topic:    r.FormValue("topic"),
		Platform: locrag.Platform(r.FormValue("platform")),
		Tone:     r.FormValue("tone"),
		Hashtags: r.FormValue("hashtags") == "on",
	}
	var err error
	if v := r.FormValue("words"); v != "" {
		if req.Words, err = strconv.Atoi(v); err != nil {
			s.renderPage(w, r, sess, http.StatusBadRequest, &Flash{Kind: "error", Message: "post length must be a number"}, &req, nil)
			return
		}
	}
	if v := r.FormValue("variants"); v != "" {
		if req.Variants, err = strconv.Atoi(v); err != nil {
			s.renderPage(w, r, sess, http.StatusBadRequest, &Flash{Kind: "error", Message: "variants must be a number"}, &req, nil)
			return
		}
	}

	posts, err := sess.WritePosts(r.Context(), &req, r.FormValue("images") == "on")
	if err != nil {
		s.renderPage(w, r, sess, ErrorStatusCode(locrag.ErrorCode(err)), s.errorFlash(r, err), &req, nil)
		return
	}
	s.renderPage(w, r, sess, http.StatusOK, nil, &req, posts)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, sess *locrag.Session, status int, flash *Flash, post *locrag.PostRequest, posts *locrag.Posts) {
	data := pageData{
		Flash:           flash,
		State:           sess.State().String(),
		Ready:           sess.State() != locrag.StateNoStore,
		StoreID:         sess.StoreID(),
		Turns:           sess.Turns(),
		Platforms:       locrag.Platforms,
		Tones:           locrag.Tones,
		MinWords:        locrag.MinPostWords,
		MaxWords:        locrag.MaxPostWords,
		Posts:           posts,
		RenderAvailable: s.RenderFetcher != nil,
	}
	if post != nil {
		data.Post = *post
	}
	data.Post.Normalize()
	if posts != nil && posts.ImageErr != nil {
		data.ImageErr = locrag.ErrorMessage(posts.ImageErr)
	}
	if data.Ready {
		docs, err := sess.Documents(r.Context())
		if err != nil {
			data.DocumentsError = locrag.ErrorMessage(err)
		}
		data.Documents = docs
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		s.Error(w, r, locrag.WrapError(locrag.EINTERNAL, "render page", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) errorFlash(r *http.Request, err error) *Flash {
	if locrag.ErrorCode(err) == locrag.EINTERNAL {
		s.logger().Error("form error", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	return &Flash{Kind: "error", Message: locrag.ErrorMessage(err)}
}

// redirect sends the browser back to the page, carrying flash if set.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, flash *Flash) {
	if flash != nil {
		if b, err := json.Marshal(flash); err == nil {
			http.SetCookie(w, &http.Cookie{
				Name:     FlashCookie,
				Value:    base64.RawURLEncoding.EncodeToString(b),
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// popFlash reads and clears the flash cookie.
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(FlashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: FlashCookie, Path: "/", MaxAge: -1})

	b, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(b, &f); err != nil {
		return nil
	}
	return &f
}

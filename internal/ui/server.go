package ui

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/joescharf/revu/internal/form"
	"github.com/joescharf/revu/internal/models"
	"github.com/joescharf/revu/internal/view"
	"github.com/joescharf/revu/internal/workflow"
)

// SessionCookie carries the browser's session id.
const SessionCookie = "revu_session"

// DefaultSessionTTL is how long an untouched session survives.
const DefaultSessionTTL = 30 * time.Minute

// Server renders the review analyzer page and drives one workflow session per browser.
type Server struct {
	sessions *Registry
	logger   *zap.Logger
}

// NewServer creates the UI server. store is usually a *client.Client.
func NewServer(store workflow.ReviewStore, ttl time.Duration, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Server{
		sessions: NewRegistry(store, ttl, logger),
		logger:   logger,
	}
}

// Sessions exposes the registry so callers can run its sweeper.
func (s *Server) Sessions() *Registry { return s.sessions }

// Router returns an http.Handler for the UI routes.
func (s *Server) Router() (http.Handler, error) {
	static, err := staticHandler()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.index)
	mux.HandleFunc("POST /draft", s.updateDraft)
	mux.HandleFunc("POST /submit", s.submit)
	mux.HandleFunc("POST /session/close", s.closeSession)
	mux.Handle("GET /static/", static)
	return mux, nil
}

// session resolves the caller's session, opening and mounting a new one when
// the cookie is missing or stale.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *workflow.Session {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if sess, ok := s.sessions.Get(c.Value); ok {
			return sess
		}
	}

	id, sess := s.sessions.Open(context.WithoutCancel(r.Context()))
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	st, draft := sess.Snapshot()

	var buf bytes.Buffer
	page := view.Page{Reviews: st.Reviews, Draft: draft, Loading: st.Loading, Error: st.Error}
	if err := view.Write(&buf, view.Render(page)); err != nil {
		s.logger.Error("render page", zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) updateDraft(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	field, err := form.ParseField(r.PostForm.Get("field"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess := s.session(w, r)
	if err := sess.UpdateDraft(field, r.PostForm.Get("value")); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	sess := s.session(w, r)

	// A started submission runs to completion even if the browser goes away.
	ctx := context.WithoutCancel(r.Context())

	// The posted form is authoritative for what the user sees at submit time.
	// Without both fields, submit whatever the keystroke sync recorded.
	var err error
	if d, ok := postedDraft(r); ok {
		err = sess.SubmitDraft(ctx, d)
	} else {
		err = sess.Submit(ctx)
	}
	switch {
	case errors.Is(err, workflow.ErrSubmitInProgress):
		s.logger.Info("ignored re-entrant submit")
	case err != nil:
		// Already reflected in the session's error banner.
		s.logger.Debug("submit finished with error", zap.Error(err))
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// postedDraft reads both draft fields from a parsed form.
func postedDraft(r *http.Request) (models.Draft, bool) {
	name, okName := r.PostForm[string(form.FieldProductName)]
	text, okText := r.PostForm[string(form.FieldReviewText)]
	if !okName || !okText || len(name) == 0 || len(text) == 0 {
		return models.Draft{}, false
	}
	return models.Draft{ProductName: name[0], ReviewText: text[0]}, true
}

func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		s.sessions.Close(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

package ui

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joescharf/revu/internal/workflow"
)

type entry struct {
	session  *workflow.Session
	lastSeen time.Time
}

// Registry tracks one workflow session per browser. A session is created
// on first page load and torn down when the page closes it or it sits idle
// longer than the TTL.
type Registry struct {
	store  workflow.ReviewStore
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry(store workflow.ReviewStore, ttl time.Duration, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		store:    store,
		logger:   logger,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Open creates and mounts a new session. A failed initial fetch is not an
// error here: it is recorded in the session state and shown in the banner.
func (r *Registry) Open(ctx context.Context) (string, *workflow.Session) {
	id := uuid.NewString()
	s := workflow.NewSession(r.store, r.logger.With(zap.String("session", id)))

	r.mu.Lock()
	r.sessions[id] = &entry{session: s, lastSeen: r.now()}
	r.mu.Unlock()

	_ = s.Mount(ctx)
	r.logger.Debug("session opened", zap.String("session", id))
	return id, s
}

// Get returns a live session and marks it as recently used.
func (r *Registry) Get(id string) (*workflow.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.session, true
}

// Close unmounts and forgets a session. Unknown ids are ignored.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		e.session.Close()
		r.logger.Debug("session closed", zap.String("session", id))
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes every session idle since before now-ttl and returns how many were closed.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	var expired []*entry
	for id, e := range r.sessions {
		if now.Sub(e.lastSeen) > r.ttl {
			expired = append(expired, e)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, e := range expired {
		e.session.Close()
	}
	if len(expired) > 0 {
		r.logger.Debug("expired idle sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps idle sessions every interval until ctx is done, then closes all sessions.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
			r.Sweep(r.now())
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range all {
		e.session.Close()
	}
}

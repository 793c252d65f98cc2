// Package session keeps the server-side state of signed-in browser sessions:
// the identity session, its token-bound stores and its stake controller.
package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"sherk_portal/internal/identity"
	"sherk_portal/internal/logger"
	"sherk_portal/internal/repository"
	"sherk_portal/internal/stake"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/prometheus/client_golang/prometheus"
)

var activeSessions = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "portal_sessions_active",
	Help: "Server-side browser sessions currently open",
})

func init() {
	prometheus.MustRegister(activeSessions)
}

// StoreFactory builds stores that authenticate with the given access token.
type StoreFactory func(accessToken func() string) (repository.StakeStore, repository.ProfileStore)

type Deps struct {
	Auth         identity.Authenticator
	Stores       StoreFactory
	StakeOptions stake.Options
}

// Entry is one browser session.
type Entry struct {
	ID        string
	Identity  *identity.Session
	Stakes    *stake.Controller
	Store     repository.StakeStore
	Profiles  repository.ProfileStore
	CreatedAt time.Time

	lastSeen  atomic.Int64
	mu        sync.Mutex
	closers   []func()
	closed    bool
	closeOnce sync.Once
}

// LastSeen is the last time the session was used.
func (e *Entry) LastSeen() time.Time {
	return time.Unix(0, e.lastSeen.Load())
}

func (e *Entry) touch(now time.Time) {
	e.lastSeen.Store(now.UnixNano())
}

// OnClose registers fn to run when the session is closed or expires. On an
// already closed session fn runs immediately.
func (e *Entry) OnClose(fn func()) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		fn()
		return
	}
	e.closers = append(e.closers, fn)
	e.mu.Unlock()
}

func (e *Entry) close(ctx context.Context, log *slog.Logger) {
	e.closeOnce.Do(func() {
		if e.Identity.CurrentUser() != nil {
			if err := e.Identity.SignOut(ctx); err != nil {
				log.Warn("remote sign-out failed", "session_id", e.ID, "error", err)
			}
		}
		e.Stakes.Close()

		e.mu.Lock()
		closers := e.closers
		e.closers = nil
		e.closed = true
		e.mu.Unlock()
		for _, fn := range closers {
			fn()
		}
	})
}

type Registry struct {
	sessions cmap.ConcurrentMap[string, *Entry]
	deps     Deps
	ttl      time.Duration
	now      func() time.Time
	log      *slog.Logger
}

func NewRegistry(deps Deps, ttl time.Duration) *Registry {
	return &Registry{
		sessions: cmap.New[*Entry](),
		deps:     deps,
		ttl:      ttl,
		now:      time.Now,
		log:      logger.With("component", "session"),
	}
}

// Open creates a signed-out session; the caller signs it in.
func (r *Registry) Open() *Entry {
	e := &Entry{ID: uuid.NewString(), CreatedAt: r.now()}
	e.touch(e.CreatedAt)

	// stores read the token lazily so refreshes are picked up
	var ident *identity.Session
	stakes, profiles := r.deps.Stores(func() string {
		if ident == nil {
			return ""
		}
		return ident.AccessToken()
	})
	ident = identity.NewSession(r.deps.Auth, profiles)

	e.Identity = ident
	e.Store = stakes
	e.Profiles = profiles
	e.Stakes = stake.New(stakes, ident, r.deps.StakeOptions)

	r.sessions.Set(e.ID, e)
	activeSessions.Inc()
	return e
}

// Get returns a live session and marks it as used.
func (r *Registry) Get(id string) (*Entry, bool) {
	e, ok := r.sessions.Get(id)
	if !ok {
		return nil, false
	}
	now := r.now()
	if r.expired(e, now) {
		r.Close(context.Background(), id)
		return nil, false
	}
	e.touch(now)
	return e, true
}

func (r *Registry) expired(e *Entry, now time.Time) bool {
	return r.ttl > 0 && now.Sub(e.LastSeen()) > r.ttl
}

// Close removes the session and releases everything it holds.
func (r *Registry) Close(ctx context.Context, id string) {
	e, ok := r.sessions.Pop(id)
	if !ok {
		return
	}
	activeSessions.Dec()
	e.close(ctx, r.log)
}

func (r *Registry) Len() int {
	return r.sessions.Count()
}

// Sweep closes idle sessions and returns how many were closed.
func (r *Registry) Sweep(ctx context.Context) int {
	now := r.now()
	var idle []string
	for item := range r.sessions.IterBuffered() {
		if r.expired(item.Val, now) {
			idle = append(idle, item.Key)
		}
	}
	for _, id := range idle {
		r.Close(ctx, id)
	}
	if len(idle) > 0 {
		r.log.Info("expired sessions closed", "count", len(idle), "open", r.Len())
	}
	return len(idle)
}

// StartCleanup sweeps idle sessions every interval until ctx is done.
func (r *Registry) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sweep(ctx)
			}
		}
	}()
}

// CloseAll closes every session; used on shutdown.
func (r *Registry) CloseAll(ctx context.Context) {
	for _, id := range r.sessions.Keys() {
		r.Close(ctx, id)
	}
}

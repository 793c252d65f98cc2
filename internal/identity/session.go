package identity

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"sherk_portal/internal/domain"
	"sherk_portal/internal/logger"
	"sherk_portal/internal/repository"
)

// Session implements Provider for one browser session.
//
// Transitions (sign-in, sign-out, token refresh) are serialised; each one
// invokes every subscriber exactly once, in subscription order. Subscribers
// run on the transitioning goroutine and must not call back into SignIn,
// SignUp, SignOut or Refresh.
type Session struct {
	auth     Authenticator
	profiles repository.ProfileStore
	log      *slog.Logger
	now      func() time.Time

	opMu sync.Mutex // serialises transitions

	mu      sync.RWMutex
	token   *Token
	profile *domain.Profile
	pending *domain.Profile // profile still to be provisioned after sign-up
	subs    []subscriber
	nextSub int
}

type subscriber struct {
	id int
	fn func(*domain.User)
}

// NewSession builds a signed-out session. profiles may be nil, in which case
// no users row is read or provisioned.
func NewSession(auth Authenticator, profiles repository.ProfileStore) *Session {
	return &Session{
		auth:     auth,
		profiles: profiles,
		log:      logger.With("component", "identity"),
		now:      time.Now,
	}
}

func (s *Session) CurrentUser() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.token.HasSession() {
		return nil
	}
	u := s.token.User
	return &u
}

// AccessToken is the bearer for store calls, or "" when signed out.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return ""
	}
	return s.token.AccessToken
}

// ExpiresAt reports when the access token expires (zero when signed out).
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return time.Time{}
	}
	return s.token.ExpiresAt
}

// Profile is the cached users row, nil until fetched.
func (s *Session) Profile() *domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

func (s *Session) OnSessionChange(fn func(*domain.User)) func() {
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Session) SignIn(ctx context.Context, creds Credentials) (*domain.User, error) {
	email := strings.TrimSpace(creds.Email)
	if email == "" || creds.Password == "" {
		return nil, &AuthError{Kind: InvalidCredentials, Message: "email and password are required"}
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	tok, err := s.auth.SignInWithPassword(ctx, email, creds.Password)
	if err != nil {
		return nil, AsAuthError(err)
	}
	if !tok.HasSession() {
		return nil, &AuthError{Kind: Unknown, Message: "auth service returned no session"}
	}

	s.setToken(tok, nil)
	p, err := s.loadProfile(ctx)
	switch {
	case err != nil:
		s.log.Warn("profile fetch after sign-in failed", "user_id", tok.User.ID, "error", err)
	case p == nil && s.profiles != nil:
		// sign-up could not write the users row (e.g. before email confirmation)
		if _, err := s.provision(ctx, s.pendingFor(tok)); err != nil {
			s.log.Warn("profile provisioning after sign-in failed", "user_id", tok.User.ID, "error", err)
		}
	}
	s.notify()
	s.log.Info("signed in", "user_id", tok.User.ID)
	return s.CurrentUser(), nil
}

// SignUp registers the account and provisions its users row (role user).
// When provisioning fails the user is still returned, together with a
// *ProfilePendingError.
func (s *Session) SignUp(ctx context.Context, creds Credentials) (*domain.User, error) {
	email := strings.TrimSpace(creds.Email)
	if email == "" || creds.Password == "" {
		return nil, &AuthError{Kind: InvalidCredentials, Message: "email and password are required"}
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	creds.Email = email
	creds.Telegram = strings.TrimSpace(creds.Telegram)
	tok, err := s.auth.SignUp(ctx, creds)
	if err != nil {
		return nil, AsAuthError(err)
	}
	user := tok.User
	if user.Email == "" {
		user.Email = email
	}

	pending := &domain.Profile{
		ID:       user.ID,
		Email:    user.Email,
		Telegram: creds.Telegram,
		Role:     domain.RoleUser,
	}
	if tok.HasSession() {
		s.setToken(tok, nil)
	}
	s.mu.Lock()
	s.pending = pending
	s.mu.Unlock()

	_, perr := s.provision(ctx, pending)

	if tok.HasSession() {
		s.notify()
	}
	s.log.Info("signed up", "user_id", user.ID, "session", tok.HasSession())

	if perr != nil {
		s.log.Warn("profile provisioning failed", "user_id", user.ID, "error", perr)
		return &user, &ProfilePendingError{UserID: user.ID, Err: perr}
	}
	return &user, nil
}

// EnsureProfile retries provisioning of the users row. It is idempotent:
// an existing row is returned untouched.
func (s *Session) EnsureProfile(ctx context.Context) (*domain.Profile, error) {
	s.mu.RLock()
	pending := s.pending
	tok := s.token
	s.mu.RUnlock()

	if pending == nil {
		if !tok.HasSession() {
			return nil, ErrNotSignedIn
		}
		pending = s.pendingFor(tok)
	}
	return s.provision(ctx, pending)
}

// LoadProfile re-reads the users row for the current user.
func (s *Session) LoadProfile(ctx context.Context) (*domain.Profile, error) {
	if s.CurrentUser() == nil {
		return nil, ErrNotSignedIn
	}
	return s.loadProfile(ctx)
}

// SignOut ends the session locally and revokes it remotely. The local state
// is cleared (and subscribers notified) even when revocation fails; the
// revocation error is still returned.
func (s *Session) SignOut(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	tok := s.token
	s.mu.RUnlock()
	if !tok.HasSession() {
		return nil
	}

	err := s.auth.SignOut(ctx, tok.AccessToken)
	s.clear()
	s.notify()
	s.log.Info("signed out", "user_id", tok.User.ID)
	if err != nil {
		return AsAuthError(err)
	}
	return nil
}

// Refresh rotates the token pair. A rejected refresh token signs the session out.
func (s *Session) Refresh(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.refreshLocked(ctx)
}

// EnsureFresh refreshes when the access token expires within skew.
func (s *Session) EnsureFresh(ctx context.Context, skew time.Duration) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	tok := s.token
	s.mu.RUnlock()
	if !tok.HasSession() || tok.ExpiresAt.IsZero() {
		return nil
	}
	if s.now().Add(skew).Before(tok.ExpiresAt) {
		return nil
	}
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) error {
	s.mu.RLock()
	tok := s.token
	s.mu.RUnlock()
	if !tok.HasSession() || tok.RefreshToken == "" {
		return ErrNotSignedIn
	}

	next, err := s.auth.Refresh(ctx, tok.RefreshToken)
	if err != nil {
		ae := AsAuthError(err)
		if ae.Kind == InvalidCredentials {
			s.clear()
			s.notify()
			s.log.Info("refresh token rejected, signed out", "user_id", tok.User.ID)
		}
		return ae
	}
	if next.User.ID == "" {
		next.User = tok.User
	}
	s.setToken(next, s.Profile())
	s.notify()
	return nil
}

func (s *Session) provision(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	if s.profiles == nil {
		return nil, nil
	}
	got, err := s.profiles.EnsureProfile(ctx, p)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.pending = nil
	if s.token.HasSession() && got != nil && got.ID == s.token.User.ID {
		s.profile = got
	}
	s.mu.Unlock()
	return got, nil
}

// pendingFor is the users row to provision for tok's account: the one kept
// from sign-up when it belongs to the same user, otherwise one built from
// the account itself.
func (s *Session) pendingFor(tok *Token) *domain.Profile {
	s.mu.RLock()
	pending := s.pending
	s.mu.RUnlock()
	if pending != nil && pending.ID == tok.User.ID {
		return pending
	}
	return &domain.Profile{
		ID:       tok.User.ID,
		Email:    tok.User.Email,
		Telegram: tok.Telegram,
		Role:     domain.RoleUser,
	}
}

func (s *Session) loadProfile(ctx context.Context) (*domain.Profile, error) {
	if s.profiles == nil {
		return nil, nil
	}
	u := s.CurrentUser()
	if u == nil {
		return nil, ErrNotSignedIn
	}
	p, err := s.profiles.GetProfile(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
	return p, nil
}

func (s *Session) setToken(tok *Token, profile *domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != nil && s.token.User.ID != tok.User.ID {
		s.pending = nil
	}
	s.token = tok
	s.profile = profile
}

func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = nil
	s.profile = nil
	s.pending = nil
}

func (s *Session) notify() {
	s.mu.RLock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	user := s.CurrentUser()
	for _, sub := range subs {
		if user == nil {
			sub.fn(nil)
			continue
		}
		u := *user
		sub.fn(&u)
	}
}

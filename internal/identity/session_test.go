package identity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sherk_portal/internal/domain"
	"sherk_portal/internal/repository"
	"sherk_portal/internal/repository/mock"

	"go.uber.org/mock/gomock"
)

type fakeAuth struct {
	mu         sync.Mutex
	signIn     func(email, password string) (*Token, error)
	signUp     func(creds Credentials) (*Token, error)
	refresh    func(refreshToken string) (*Token, error)
	signOutErr error
	signOuts   []string
}

func (f *fakeAuth) SignInWithPassword(_ context.Context, email, password string) (*Token, error) {
	return f.signIn(email, password)
}

func (f *fakeAuth) SignUp(_ context.Context, creds Credentials) (*Token, error) {
	return f.signUp(creds)
}

func (f *fakeAuth) SignOut(_ context.Context, accessToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts = append(f.signOuts, accessToken)
	return f.signOutErr
}

func (f *fakeAuth) Refresh(_ context.Context, refreshToken string) (*Token, error) {
	return f.refresh(refreshToken)
}

const aliceID = "8f14e45f-ceea-467f-a8b6-6e0c1b4a3c11"

func aliceToken(access string) *Token {
	return &Token{
		AccessToken:  access,
		RefreshToken: "refresh-" + access,
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         domain.User{ID: aliceID, Email: "alice@example.com"},
	}
}

type recorder struct {
	mu    sync.Mutex
	calls []*domain.User
}

func (r *recorder) fn(u *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, u)
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestSignInNotifiesOnce(t *testing.T) {
	profiles := mock.NewMockProfileStore(gomock.NewController(t))
	profiles.EXPECT().
		GetProfile(gomock.Any(), aliceID).
		Return(&domain.Profile{ID: aliceID, Email: "alice@example.com", Role: domain.RoleAdmin}, nil)

	auth := &fakeAuth{signIn: func(email, password string) (*Token, error) {
		if password != "pw" {
			return nil, &AuthError{Kind: InvalidCredentials}
		}
		return aliceToken("a1"), nil
	}}
	s := NewSession(auth, profiles)
	rec := &recorder{}
	s.OnSessionChange(rec.fn)

	if _, err := s.SignIn(context.Background(), Credentials{Email: "alice@example.com", Password: "bad"}); err == nil {
		t.Fatalf("expected invalid credentials")
	} else if AsAuthError(err).Kind != InvalidCredentials {
		t.Fatalf("kind = %s", AsAuthError(err).Kind)
	}
	if rec.len() != 0 {
		t.Fatalf("failed sign-in must not notify")
	}

	u, err := s.SignIn(context.Background(), Credentials{Email: " alice@example.com ", Password: "pw"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if u.ID != aliceID {
		t.Fatalf("user id = %s", u.ID)
	}
	if rec.len() != 1 || rec.calls[0] == nil || rec.calls[0].ID != aliceID {
		t.Fatalf("expected one notification with alice, got %+v", rec.calls)
	}
	if !s.Profile().IsAdmin() {
		t.Fatalf("profile should be cached after sign-in")
	}
	if s.AccessToken() != "a1" {
		t.Fatalf("access token = %q", s.AccessToken())
	}
}

func TestSignInRequiresCredentials(t *testing.T) {
	s := NewSession(&fakeAuth{}, nil)
	_, err := s.SignIn(context.Background(), Credentials{Email: "", Password: "x"})
	if AsAuthError(err).Kind != InvalidCredentials {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestSignInNetworkFailure(t *testing.T) {
	auth := &fakeAuth{signIn: func(string, string) (*Token, error) {
		return nil, &AuthError{Kind: NetworkUnavailable, Message: "dial tcp: refused"}
	}}
	s := NewSession(auth, nil)
	_, err := s.SignIn(context.Background(), Credentials{Email: "a@b.c", Password: "pw"})
	if AsAuthError(err).Kind != NetworkUnavailable {
		t.Fatalf("expected network unavailable, got %v", err)
	}
	if s.CurrentUser() != nil {
		t.Fatalf("no user expected")
	}
}

func TestSignUpProvisionsProfile(t *testing.T) {
	profiles := mock.NewMockProfileStore(gomock.NewController(t))
	profiles.EXPECT().
		EnsureProfile(gomock.Any(), &domain.Profile{ID: aliceID, Email: "alice@example.com", Telegram: "@alice", Role: domain.RoleUser}).
		Return(&domain.Profile{ID: aliceID, Email: "alice@example.com", Telegram: "@alice", Role: domain.RoleUser}, nil)

	auth := &fakeAuth{signUp: func(Credentials) (*Token, error) { return aliceToken("a1"), nil }}
	s := NewSession(auth, profiles)
	rec := &recorder{}
	s.OnSessionChange(rec.fn)

	u, err := s.SignUp(context.Background(), Credentials{Email: "alice@example.com", Password: "pw", Telegram: "@alice"})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if u.ID != aliceID {
		t.Fatalf("user = %+v", u)
	}
	if rec.len() != 1 {
		t.Fatalf("notifications = %d, want 1", rec.len())
	}
	if p := s.Profile(); p == nil || p.Telegram != "@alice" {
		t.Fatalf("profile = %+v", p)
	}
}

func TestSignUpProfilePendingThenRetry(t *testing.T) {
	profiles := mock.NewMockProfileStore(gomock.NewController(t))
	gomock.InOrder(
		profiles.EXPECT().EnsureProfile(gomock.Any(), gomock.Any()).Return(nil, repository.ErrNetwork),
		profiles.EXPECT().EnsureProfile(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p *domain.Profile) (*domain.Profile, error) {
				if p.ID != aliceID || p.Role != domain.RoleUser || p.Telegram != "@alice" {
					t.Errorf("retry used wrong profile: %+v", p)
				}
				return p, nil
			}),
	)

	auth := &fakeAuth{signUp: func(Credentials) (*Token, error) { return aliceToken("a1"), nil }}
	s := NewSession(auth, profiles)

	u, err := s.SignUp(context.Background(), Credentials{Email: "alice@example.com", Password: "pw", Telegram: "@alice"})
	var pending *ProfilePendingError
	if !errors.As(err, &pending) {
		t.Fatalf("expected ProfilePendingError, got %v", err)
	}
	if u == nil || u.ID != aliceID || pending.UserID != aliceID {
		t.Fatalf("account must still be returned: %+v", u)
	}
	if s.CurrentUser() == nil {
		t.Fatalf("session should be signed in")
	}

	p, err := s.EnsureProfile(context.Background())
	if err != nil {
		t.Fatalf("EnsureProfile: %v", err)
	}
	if p.ID != aliceID {
		t.Fatalf("profile = %+v", p)
	}
}

func TestSignUpWithoutSessionDoesNotNotify(t *testing.T) {
	profiles := mock.NewMockProfileStore(gomock.NewController(t))
	profiles.EXPECT().EnsureProfile(gomock.Any(), gomock.Any()).Return(&domain.Profile{ID: aliceID}, nil)

	auth := &fakeAuth{signUp: func(Credentials) (*Token, error) {
		return &Token{User: domain.User{ID: aliceID, Email: "alice@example.com"}}, nil
	}}
	s := NewSession(auth, profiles)
	rec := &recorder{}
	s.OnSessionChange(rec.fn)

	if _, err := s.SignUp(context.Background(), Credentials{Email: "alice@example.com", Password: "pw"}); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if rec.len() != 0 {
		t.Fatalf("no transition expected while email is unconfirmed")
	}
	if s.CurrentUser() != nil {
		t.Fatalf("no current user expected")
	}
}

func TestSignInProvisionsProfileLeftPendingAtSignUp(t *testing.T) {
	profiles := mock.NewMockProfileStore(gomock.NewController(t))
	want := &domain.Profile{ID: aliceID, Email: "alice@example.com", Telegram: "@alice", Role: domain.RoleUser}
	gomock.InOrder(
		// anon-key write before confirmation is refused
		profiles.EXPECT().EnsureProfile(gomock.Any(), want).Return(nil, &repository.StoreError{Op: "ensure profile", Status: 401}),
		profiles.EXPECT().GetProfile(gomock.Any(), aliceID).Return(nil, nil),
		profiles.EXPECT().EnsureProfile(gomock.Any(), want).Return(want, nil),
	)

	var metadata string
	auth := &fakeAuth{
		signUp: func(creds Credentials) (*Token, error) {
			metadata = creds.Telegram
			return &Token{User: domain.User{ID: aliceID, Email: creds.Email}, Telegram: creds.Telegram}, nil
		},
		signIn: func(string, string) (*Token, error) {
			tok := aliceToken("a1")
			tok.Telegram = metadata
			return tok, nil
		},
	}

	_, err := NewSession(auth, profiles).SignUp(context.Background(), Credentials{Email: "alice@example.com", Password: "pw", Telegram: " @alice "})
	var pending *ProfilePendingError
	if !errors.As(err, &pending) {
		t.Fatalf("expected ProfilePendingError, got %v", err)
	}

	// the confirmed user signs in on a fresh session
	s := NewSession(auth, profiles)
	if _, err := s.SignIn(context.Background(), Credentials{Email: "alice@example.com", Password: "pw"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if p := s.Profile(); p == nil || p.Telegram != "@alice" || p.Role != domain.RoleUser {
		t.Fatalf("profile after sign-in = %+v", p)
	}
}

func TestSignInKeepsSessionWhenProvisioningFails(t *testing.T) {
	profiles := mock.NewMockProfileStore(gomock.NewController(t))
	profiles.EXPECT().GetProfile(gomock.Any(), aliceID).Return(nil, nil)
	profiles.EXPECT().EnsureProfile(gomock.Any(), gomock.Any()).Return(nil, repository.ErrNetwork)

	auth := &fakeAuth{signIn: func(string, string) (*Token, error) { return aliceToken("a1"), nil }}
	s := NewSession(auth, profiles)
	if _, err := s.SignIn(context.Background(), Credentials{Email: "alice@example.com", Password: "pw"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if s.CurrentUser() == nil || s.Profile() != nil {
		t.Fatalf("user = %+v profile = %+v", s.CurrentUser(), s.Profile())
	}
}

func TestSignOut(t *testing.T) {
	auth := &fakeAuth{signIn: func(string, string) (*Token, error) { return aliceToken("a1"), nil }}
	s := NewSession(auth, nil)
	rec := &recorder{}
	unsubscribe := s.OnSessionChange(rec.fn)

	if err := s.SignOut(context.Background()); err != nil {
		t.Fatalf("sign-out while signed out: %v", err)
	}
	if rec.len() != 0 {
		t.Fatalf("sign-out while signed out is not a transition")
	}

	if _, err := s.SignIn(context.Background(), Credentials{Email: "a@b.c", Password: "pw"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	auth.signOutErr = &AuthError{Kind: NetworkUnavailable}
	err := s.SignOut(context.Background())
	if AsAuthError(err).Kind != NetworkUnavailable {
		t.Fatalf("revocation error should be returned, got %v", err)
	}
	if s.CurrentUser() != nil || s.AccessToken() != "" {
		t.Fatalf("local session must be cleared")
	}
	if rec.len() != 2 || rec.calls[1] != nil {
		t.Fatalf("expected sign-in then nil, got %+v", rec.calls)
	}
	if len(auth.signOuts) != 1 || auth.signOuts[0] != "a1" {
		t.Fatalf("revoked tokens = %v", auth.signOuts)
	}

	unsubscribe()
	unsubscribe()
	if _, err := s.SignIn(context.Background(), Credentials{Email: "a@b.c", Password: "pw"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if rec.len() != 2 {
		t.Fatalf("unsubscribed callback was called")
	}
}

func TestRefresh(t *testing.T) {
	auth := &fakeAuth{
		signIn: func(string, string) (*Token, error) {
			tok := aliceToken("a1")
			tok.ExpiresAt = time.Now().Add(30 * time.Second)
			return tok, nil
		},
		refresh: func(rt string) (*Token, error) {
			if rt != "refresh-a1" {
				return nil, &AuthError{Kind: InvalidCredentials}
			}
			tok := aliceToken("a2")
			tok.User = domain.User{}
			return tok, nil
		},
	}
	s := NewSession(auth, nil)
	rec := &recorder{}
	s.OnSessionChange(rec.fn)
	if _, err := s.SignIn(context.Background(), Credentials{Email: "a@b.c", Password: "pw"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	if err := s.EnsureFresh(context.Background(), time.Second); err != nil {
		t.Fatalf("EnsureFresh: %v", err)
	}
	if s.AccessToken() != "a1" || rec.len() != 1 {
		t.Fatalf("token should not rotate yet")
	}

	if err := s.EnsureFresh(context.Background(), time.Minute); err != nil {
		t.Fatalf("EnsureFresh: %v", err)
	}
	if s.AccessToken() != "a2" {
		t.Fatalf("token = %q, want a2", s.AccessToken())
	}
	if rec.len() != 2 || rec.calls[1] == nil || rec.calls[1].ID != aliceID {
		t.Fatalf("refresh should notify once with the same user: %+v", rec.calls)
	}

	// refresh-a2 is rejected: the session signs out.
	err := s.Refresh(context.Background())
	if AsAuthError(err).Kind != InvalidCredentials {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if s.CurrentUser() != nil {
		t.Fatalf("rejected refresh must sign out")
	}
	if rec.len() != 3 || rec.calls[2] != nil {
		t.Fatalf("expected sign-out notification: %+v", rec.calls)
	}
}

func TestEnsureProfileSignedOut(t *testing.T) {
	s := NewSession(&fakeAuth{}, mock.NewMockProfileStore(gomock.NewController(t)))
	if _, err := s.EnsureProfile(context.Background()); err == nil {
		t.Fatalf("expected error when signed out")
	}
}

func TestAsAuthError(t *testing.T) {
	if AsAuthError(nil) != nil {
		t.Fatalf("nil should stay nil")
	}
	if got := AsAuthError(context.DeadlineExceeded).Kind; got != NetworkUnavailable {
		t.Fatalf("deadline kind = %s", got)
	}
	if got := AsAuthError(errors.New("boom")); got.Kind != Unknown || got.Message != "boom" {
		t.Fatalf("unknown = %+v", got)
	}
}

// Package identity keeps track of who is signed in for one browser session,
// on top of a hosted auth service.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sherk_portal/internal/domain"
)

// Credentials are the email/password pair; Telegram is only used on sign-up.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Telegram string `json:"telegram,omitempty"`
}

// Token is a session issued by the auth service. AccessToken is empty when
// sign-up needs email confirmation before a session exists. Telegram is the
// handle kept in the account metadata since sign-up.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         domain.User
	Telegram     string
}

func (t *Token) HasSession() bool {
	return t != nil && t.AccessToken != ""
}

// Authenticator is the vendor protocol (GoTrue for Supabase).
type Authenticator interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Token, error)
	SignUp(ctx context.Context, creds Credentials) (*Token, error)
	SignOut(ctx context.Context, accessToken string) error
	Refresh(ctx context.Context, refreshToken string) (*Token, error)
}

// Provider is what callers see of the signed-in identity.
type Provider interface {
	CurrentUser() *domain.User
	OnSessionChange(fn func(*domain.User)) (unsubscribe func())
	SignIn(ctx context.Context, creds Credentials) (*domain.User, error)
	SignUp(ctx context.Context, creds Credentials) (*domain.User, error)
	SignOut(ctx context.Context) error
}

type ErrorKind string

const (
	InvalidCredentials ErrorKind = "invalid_credentials"
	NetworkUnavailable ErrorKind = "network_unavailable"
	Unknown            ErrorKind = "unknown"
)

// AuthError is every failure surfaced by the identity layer.
type AuthError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("auth %s: %s", e.Kind, e.Message)
	}
	return "auth " + string(e.Kind)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ErrNotSignedIn is returned by operations that need a current user.
var ErrNotSignedIn = &AuthError{Kind: InvalidCredentials, Message: "not signed in"}

// ProfilePendingError means the account exists but its users row could not
// be provisioned yet. Retry with Session.EnsureProfile.
type ProfilePendingError struct {
	UserID string
	Err    error
}

func (e *ProfilePendingError) Error() string {
	return fmt.Sprintf("profile for user %s not provisioned: %v", e.UserID, e.Err)
}

func (e *ProfilePendingError) Unwrap() error { return e.Err }

// AsAuthError normalises any error into an *AuthError.
func AsAuthError(err error) *AuthError {
	if err == nil {
		return nil
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &AuthError{Kind: NetworkUnavailable, Message: "auth service timed out", Err: err}
	}
	return &AuthError{Kind: Unknown, Message: err.Error(), Err: err}
}

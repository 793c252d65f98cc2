package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"sherk_portal/internal/domain"
	"sherk_portal/internal/identity"
	"sherk_portal/internal/repository"

	"github.com/tidwall/gjson"
)

// AuthClient implements identity.Authenticator against GoTrue (/auth/v1).
type AuthClient struct {
	c   *Client
	now func() time.Time
}

func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{c: c, now: time.Now}
}

type passwordBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// signUpBody carries the Telegram handle as user metadata so it is still
// known after email confirmation.
type signUpBody struct {
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Data     map[string]string `json:"data,omitempty"`
}

func (a *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*identity.Token, error) {
	body, err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"password"}},
		body:   passwordBody{Email: email, Password: password},
	})
	if err != nil {
		return nil, authError(err)
	}
	return a.parseToken(body)
}

// SignUp returns a token without AccessToken when the project requires
// email confirmation.
func (a *AuthClient) SignUp(ctx context.Context, creds identity.Credentials) (*identity.Token, error) {
	req := signUpBody{Email: creds.Email, Password: creds.Password}
	if creds.Telegram != "" {
		req.Data = map[string]string{"telegram": creds.Telegram}
	}
	body, err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		body:   req,
	})
	if err != nil {
		return nil, authError(err)
	}
	return a.parseToken(body)
}

func (a *AuthClient) SignOut(ctx context.Context, accessToken string) error {
	_, err := a.c.do(ctx, request{
		method:     http.MethodPost,
		path:       "/auth/v1/logout",
		token:      accessToken,
		idempotent: true,
	})
	if err != nil {
		if apiErr, ok := asAPIError(err); ok && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusNotFound) {
			// already revoked
			return nil
		}
		return authError(err)
	}
	return nil
}

func (a *AuthClient) Refresh(ctx context.Context, refreshToken string) (*identity.Token, error) {
	body, err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"refresh_token"}},
		body:   map[string]string{"refresh_token": refreshToken},
	})
	if err != nil {
		return nil, authError(err)
	}
	return a.parseToken(body)
}

// parseToken accepts both a session ({access_token, user}) and a bare user object.
func (a *AuthClient) parseToken(body []byte) (*identity.Token, error) {
	if !gjson.ValidBytes(body) {
		return nil, &identity.AuthError{Kind: identity.Unknown, Message: "malformed auth response"}
	}
	res := gjson.ParseBytes(body)

	tok := &identity.Token{
		AccessToken:  res.Get("access_token").String(),
		RefreshToken: res.Get("refresh_token").String(),
	}
	if exp := res.Get("expires_at").Int(); exp > 0 {
		tok.ExpiresAt = time.Unix(exp, 0)
	} else if in := res.Get("expires_in").Int(); in > 0 {
		tok.ExpiresAt = a.now().Add(time.Duration(in) * time.Second)
	}

	user := res.Get("user")
	if !user.Exists() {
		user = res
	}
	tok.User = domain.User{
		ID:    user.Get("id").String(),
		Email: user.Get("email").String(),
	}
	tok.Telegram = user.Get("user_metadata.telegram").String()
	if tok.User.ID == "" {
		return nil, &identity.AuthError{Kind: identity.Unknown, Message: "auth response has no user"}
	}
	return tok, nil
}

func authError(err error) error {
	if errors.Is(err, repository.ErrNetwork) {
		return &identity.AuthError{Kind: identity.NetworkUnavailable, Message: err.Error(), Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &identity.AuthError{Kind: identity.NetworkUnavailable, Message: "auth request aborted", Err: err}
	}
	apiErr, ok := asAPIError(err)
	if !ok {
		return &identity.AuthError{Kind: identity.Unknown, Message: err.Error(), Err: err}
	}
	switch apiErr.Code {
	case "invalid_credentials", "invalid_grant", "refresh_token_not_found", "refresh_token_already_used", "session_not_found", "bad_jwt":
		return &identity.AuthError{Kind: identity.InvalidCredentials, Message: apiErr.Message, Err: err}
	}
	if apiErr.Status == http.StatusUnauthorized {
		return &identity.AuthError{Kind: identity.InvalidCredentials, Message: apiErr.Message, Err: err}
	}
	return &identity.AuthError{Kind: identity.Unknown, Message: apiErr.Message, Err: err}
}

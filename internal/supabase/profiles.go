package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"sherk_portal/internal/domain"
	"sherk_portal/internal/repository"
)

const usersPath = "/rest/v1/users"

// ProfileStore implements repository.ProfileStore over the users table.
type ProfileStore struct {
	c     *Client
	token TokenSource
}

func NewProfileStore(c *Client, token TokenSource) *ProfileStore {
	if token == nil {
		token = StaticToken("")
	}
	return &ProfileStore{c: c, token: token}
}

type profileRow struct {
	ID       string      `json:"id"`
	Email    string      `json:"email"`
	Telegram *string     `json:"telegram"`
	Role     domain.Role `json:"role"`
}

func (s *ProfileStore) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	body, err := s.c.do(ctx, request{
		method:     http.MethodGet,
		path:       usersPath,
		query:      url.Values{"id": {"eq." + id}, "select": {"*"}},
		token:      s.token(),
		idempotent: true,
	})
	if err != nil {
		return nil, storeError("get profile", err)
	}
	profiles, err := decodeProfiles(body)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return profiles[0], nil
}

// EnsureProfile inserts the row unless one already exists for the id, so a
// retried sign-up never resets an admin role.
func (s *ProfileStore) EnsureProfile(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	row := profileRow{ID: p.ID, Email: p.Email, Role: p.Role}
	if row.Role == "" {
		row.Role = domain.RoleUser
	}
	if p.Telegram != "" {
		tg := p.Telegram
		row.Telegram = &tg
	}

	_, err := s.c.do(ctx, request{
		method:     http.MethodPost,
		path:       usersPath,
		query:      url.Values{"on_conflict": {"id"}},
		body:       []profileRow{row},
		token:      s.token(),
		prefer:     "resolution=ignore-duplicates,return=minimal",
		idempotent: true,
	})
	if err != nil {
		return nil, storeError("ensure profile", err)
	}

	got, err := s.GetProfile(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if got == nil {
		// Row-level security may hide the row from the caller; report what was written.
		out := *p
		out.Role = row.Role
		return &out, nil
	}
	return got, nil
}

func (s *ProfileStore) ListProfiles(ctx context.Context, ids []string) ([]*domain.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	body, err := s.c.do(ctx, request{
		method:     http.MethodGet,
		path:       usersPath,
		query:      url.Values{"id": {"in.(" + strings.Join(ids, ",") + ")"}, "select": {"*"}},
		token:      s.token(),
		idempotent: true,
	})
	if err != nil {
		return nil, storeError("list profiles", err)
	}
	return decodeProfiles(body)
}

func decodeProfiles(body []byte) ([]*domain.Profile, error) {
	var out []*domain.Profile
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &repository.StoreError{Op: "decode profiles", Message: "unexpected response shape", Err: err}
	}
	return out, nil
}

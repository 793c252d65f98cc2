package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"sherk_portal/internal/domain"
	"sherk_portal/internal/repository"
)

const stakesPath = "/rest/v1/sherk_stakes"

// StakeStore implements repository.StakeStore over PostgREST. Requests carry
// the session's access token so row-level security scopes them to the owner.
type StakeStore struct {
	c     *Client
	token TokenSource
	now   func() time.Time
}

func NewStakeStore(c *Client, token TokenSource) *StakeStore {
	if token == nil {
		token = StaticToken("")
	}
	return &StakeStore{c: c, token: token, now: time.Now}
}

// stakeRow is the writable column set of sherk_stakes.
type stakeRow struct {
	OwnerID        string             `json:"user_id"`
	Nickname       string             `json:"nickname"`
	WalletAddress  string             `json:"wallet_address"`
	CommonCount    int64              `json:"common_nfts"`
	RareCount      int64              `json:"rare_nfts"`
	UltraRareCount int64              `json:"ultra_rare_nfts"`
	BoomCount      int64              `json:"boom_nfts"`
	Status         domain.StakeStatus `json:"status"`
	UpdatedAt      *time.Time         `json:"updated_at,omitempty"`
}

func (s *StakeStore) row(rec *domain.StakeRecord) stakeRow {
	status := rec.Status
	if status == "" {
		status = domain.StakeActive
	}
	return stakeRow{
		OwnerID:        rec.OwnerID,
		Nickname:       rec.Nickname,
		WalletAddress:  rec.WalletAddress,
		CommonCount:    rec.CommonCount,
		RareCount:      rec.RareCount,
		UltraRareCount: rec.UltraRareCount,
		BoomCount:      rec.BoomCount,
		Status:         status,
	}
}

func ownerFilter(ownerID string) url.Values {
	return url.Values{"user_id": {"eq." + ownerID}}
}

func (s *StakeStore) FetchByOwner(ctx context.Context, ownerID string) (*domain.StakeRecord, error) {
	q := ownerFilter(ownerID)
	q.Set("select", "*")
	body, err := s.c.do(ctx, request{
		method:     http.MethodGet,
		path:       stakesPath,
		query:      q,
		token:      s.token(),
		idempotent: true,
	})
	if err != nil {
		return nil, storeError("fetch stake", err)
	}
	recs, err := decodeStakes(body)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

// Create is a plain insert and is never retried.
func (s *StakeStore) Create(ctx context.Context, rec *domain.StakeRecord) (*domain.StakeRecord, error) {
	body, err := s.c.do(ctx, request{
		method: http.MethodPost,
		path:   stakesPath,
		body:   []stakeRow{s.row(rec)},
		token:  s.token(),
		prefer: "return=representation",
	})
	if err != nil {
		return nil, storeError("create stake", err)
	}
	return single("create stake", body)
}

func (s *StakeStore) Update(ctx context.Context, ownerID string, patch domain.StakePatch) (*domain.StakeRecord, error) {
	fields := map[string]any{"updated_at": s.now().UTC()}
	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	body, err := s.c.do(ctx, request{
		method:     http.MethodPatch,
		path:       stakesPath,
		query:      ownerFilter(ownerID),
		body:       fields,
		token:      s.token(),
		prefer:     "return=representation",
		idempotent: true,
	})
	if err != nil {
		return nil, storeError("update stake", err)
	}
	recs, err := decodeStakes(body)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, repository.ErrNotFound
	}
	return recs[0], nil
}

// Upsert merges on the user_id uniqueness constraint.
func (s *StakeStore) Upsert(ctx context.Context, rec *domain.StakeRecord) (*domain.StakeRecord, error) {
	row := s.row(rec)
	now := s.now().UTC()
	row.UpdatedAt = &now

	body, err := s.c.do(ctx, request{
		method:     http.MethodPost,
		path:       stakesPath,
		query:      url.Values{"on_conflict": {"user_id"}},
		body:       []stakeRow{row},
		token:      s.token(),
		prefer:     "resolution=merge-duplicates,return=representation",
		idempotent: true,
	})
	if err != nil {
		return nil, storeError("upsert stake", err)
	}
	return single("upsert stake", body)
}

func (s *StakeStore) Delete(ctx context.Context, ownerID string) error {
	_, err := s.c.do(ctx, request{
		method:     http.MethodDelete,
		path:       stakesPath,
		query:      ownerFilter(ownerID),
		token:      s.token(),
		prefer:     "return=minimal",
		idempotent: true,
	})
	if err != nil {
		return storeError("delete stake", err)
	}
	return nil
}

func (s *StakeStore) List(ctx context.Context) ([]*domain.StakeRecord, error) {
	body, err := s.c.do(ctx, request{
		method:     http.MethodGet,
		path:       stakesPath,
		query:      url.Values{"select": {"*"}, "order": {"created_at.desc"}},
		token:      s.token(),
		idempotent: true,
	})
	if err != nil {
		return nil, storeError("list stakes", err)
	}
	return decodeStakes(body)
}

func decodeStakes(body []byte) ([]*domain.StakeRecord, error) {
	var recs []*domain.StakeRecord
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, &repository.StoreError{Op: "decode stakes", Message: "unexpected response shape", Err: err}
	}
	return recs, nil
}

func single(op string, body []byte) (*domain.StakeRecord, error) {
	recs, err := decodeStakes(body)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, &repository.StoreError{Op: op, Message: "store returned no row"}
	}
	return recs[0], nil
}

// storeError maps transport and PostgREST errors onto the store taxonomy.
func storeError(op string, err error) error {
	apiErr, ok := asAPIError(err)
	if !ok {
		return err
	}
	if apiErr.Code == "23505" || apiErr.Status == http.StatusConflict {
		return repository.ErrConflict
	}
	if apiErr.Code == "PGRST116" {
		return repository.ErrNotFound
	}
	return &repository.StoreError{
		Op:      op,
		Status:  apiErr.Status,
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Err:     err,
	}
}

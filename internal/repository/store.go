package repository

import (
	"context"
	"errors"
	"fmt"

	"sherk_portal/internal/domain"
)

//go:generate mockgen -destination=mock/store.go -package=mock sherk_portal/internal/repository StakeStore,ProfileStore

var (
	// ErrNotFound is returned by Update when the owner has no record.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned by Create when the owner already has a record.
	ErrConflict = errors.New("record already exists for owner")
	// ErrNetwork wraps transport failures (dial, reset, gateway errors).
	ErrNetwork = errors.New("store unreachable")
)

// StoreError is an opaque failure reported by the store.
type StoreError struct {
	Op      string
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (code %s, status %d)", e.Op, msg, e.Code, e.Status)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, msg, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *StoreError) Unwrap() error { return e.Err }

// StakeStore is CRUD over sherk_stakes, scoped to one owner per call.
// FetchByOwner returns (nil, nil) when the owner has no record.
type StakeStore interface {
	FetchByOwner(ctx context.Context, ownerID string) (*domain.StakeRecord, error)
	Create(ctx context.Context, rec *domain.StakeRecord) (*domain.StakeRecord, error)
	Update(ctx context.Context, ownerID string, patch domain.StakePatch) (*domain.StakeRecord, error)
	Upsert(ctx context.Context, rec *domain.StakeRecord) (*domain.StakeRecord, error)
	Delete(ctx context.Context, ownerID string) error
	List(ctx context.Context) ([]*domain.StakeRecord, error)
}

// ProfileStore reads and provisions rows of the users table.
// GetProfile returns (nil, nil) when the profile does not exist.
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	EnsureProfile(ctx context.Context, p *domain.Profile) (*domain.Profile, error)
	ListProfiles(ctx context.Context, ids []string) ([]*domain.Profile, error)
}

// IsRetryable reports whether err is a transient store failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNetwork)
}

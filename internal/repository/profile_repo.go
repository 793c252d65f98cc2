package repository

import (
	"context"
	"errors"

	"sherk_portal/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository is the postgres backend of ProfileStore.
type ProfileRepository struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	if err := checkOwnerID("get profile", id); err != nil {
		return nil, err
	}
	row := r.db.QueryRow(ctx,
		`SELECT id::text, email, COALESCE(telegram, ''), role, created_at
		 FROM users
		 WHERE id = $1`,
		id,
	)

	var p domain.Profile
	var role string
	if err := row.Scan(&p.ID, &p.Email, &p.Telegram, &role, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classifyPgErr("get profile", err)
	}
	p.Role = domain.Role(role)
	return &p, nil
}

// EnsureProfile creates the profile if it is missing. An existing row (and its role) is kept.
func (r *ProfileRepository) EnsureProfile(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	if err := checkOwnerID("ensure profile", p.ID); err != nil {
		return nil, err
	}
	role := p.Role
	if role == "" {
		role = domain.RoleUser
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, email, telegram, role)
		 VALUES ($1, $2, NULLIF($3, ''), $4)
		 ON CONFLICT (id) DO NOTHING`,
		p.ID, p.Email, p.Telegram, string(role),
	)
	if err != nil {
		return nil, classifyPgErr("ensure profile", err)
	}
	return r.GetProfile(ctx, p.ID)
}

func (r *ProfileRepository) ListProfiles(ctx context.Context, ids []string) ([]*domain.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT id::text, email, COALESCE(telegram, ''), role, created_at
		 FROM users
		 WHERE id::text = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, classifyPgErr("list profiles", err)
	}
	defer rows.Close()

	var out []*domain.Profile
	for rows.Next() {
		var p domain.Profile
		var role string
		if err := rows.Scan(&p.ID, &p.Email, &p.Telegram, &role, &p.CreatedAt); err != nil {
			return nil, classifyPgErr("list profiles", err)
		}
		p.Role = domain.Role(role)
		out = append(out, &p)
	}
	return out, rows.Err()
}

// SetRole changes a profile's role. Used by the admin bootstrap command.
func (r *ProfileRepository) SetRole(ctx context.Context, email string, role domain.Role) (*domain.Profile, error) {
	var id string
	err := r.db.QueryRow(ctx,
		`UPDATE users SET role = $2 WHERE lower(email) = lower($1) RETURNING id::text`,
		email, string(role),
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classifyPgErr("set role", err)
	}
	return r.GetProfile(ctx, id)
}

package main

import (
	"context"
	"errors"
	"fmt"

	"sherk_portal/internal/config"
	"sherk_portal/internal/db"
	"sherk_portal/internal/http/handlers"
	"sherk_portal/internal/http/middleware"
	"sherk_portal/internal/repository"
	"sherk_portal/internal/session"
	"sherk_portal/internal/supabase"

	"github.com/jackc/pgx/v5/pgxpool"
)

// backend holds the store wiring chosen by STORE_BACKEND.
type backend struct {
	client *supabase.Client
	pool   *pgxpool.Pool
	cfg    *config.Config
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	b := &backend{
		client: supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, supabase.WithRetries(cfg.StoreRetries)),
		cfg:    cfg,
	}
	// audit logs persist whenever a database is configured
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL, cfg.StoreRetries+1)
		if err != nil {
			return nil, err
		}
		b.pool = pool
	}
	return b, nil
}

func (b *backend) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
}

// sessionStores returns the per-session store factory. Supabase stores act
// with the signed-in user's token so row-level security applies.
func (b *backend) sessionStores() session.StoreFactory {
	if b.cfg.StoreBackend == config.StorePostgres {
		stakes := repository.NewStakeRepository(b.pool)
		profiles := repository.NewProfileRepository(b.pool)
		return func(func() string) (repository.StakeStore, repository.ProfileStore) {
			return stakes, profiles
		}
	}
	return func(accessToken func() string) (repository.StakeStore, repository.ProfileStore) {
		token := supabase.TokenSource(accessToken)
		return supabase.NewStakeStore(b.client, token), supabase.NewProfileStore(b.client, token)
	}
}

// serviceStores reads across all owners, for the CLI export.
func (b *backend) serviceStores() (repository.StakeStore, repository.ProfileStore, error) {
	if b.cfg.StoreBackend == config.StorePostgres {
		return repository.NewStakeRepository(b.pool), repository.NewProfileRepository(b.pool), nil
	}
	if b.cfg.ServiceRoleKey == "" {
		return nil, nil, errors.New("SUPABASE_SERVICE_ROLE_KEY is required to export from supabase")
	}
	token := supabase.StaticToken(b.cfg.ServiceRoleKey)
	return supabase.NewStakeStore(b.client, token), supabase.NewProfileStore(b.client, token), nil
}

func (b *backend) checks() map[string]handlers.Check {
	checks := map[string]handlers.Check{}
	if b.cfg.StoreBackend == config.StorePostgres {
		checks["store"] = func(ctx context.Context) error { return b.pool.Ping(ctx) }
		checks["auth"] = b.client.Ping
	} else {
		checks["store"] = b.client.Ping
		if b.pool != nil {
			checks["audit_db"] = func(ctx context.Context) error { return b.pool.Ping(ctx) }
		}
	}
	if rc := middleware.RedisClient(); rc != nil {
		checks["redis"] = func(ctx context.Context) error {
			if err := rc.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			return nil
		}
	}
	return checks
}

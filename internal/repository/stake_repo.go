package repository

import (
	"context"
	"errors"
	"net"

	"sherk_portal/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const stakeColumns = `id::text, user_id::text, COALESCE(nickname, ''), COALESCE(wallet_address, ''),
	common_nfts, rare_nfts, ultra_rare_nfts, boom_nfts, status, created_at, updated_at`

// StakeRepository is the postgres backend of StakeStore.
type StakeRepository struct {
	db *pgxpool.Pool
}

func NewStakeRepository(db *pgxpool.Pool) *StakeRepository {
	return &StakeRepository{db: db}
}

func (r *StakeRepository) FetchByOwner(ctx context.Context, ownerID string) (*domain.StakeRecord, error) {
	if err := checkOwnerID("fetch stake", ownerID); err != nil {
		return nil, err
	}
	row := r.db.QueryRow(ctx, `SELECT `+stakeColumns+` FROM sherk_stakes WHERE user_id = $1`, ownerID)
	rec, err := scanStake(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classifyPgErr("fetch stake", err)
	}
	return rec, nil
}

func (r *StakeRepository) Create(ctx context.Context, rec *domain.StakeRecord) (*domain.StakeRecord, error) {
	if err := checkOwnerID("create stake", rec.OwnerID); err != nil {
		return nil, err
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO sherk_stakes (user_id, nickname, wallet_address, common_nfts, rare_nfts, ultra_rare_nfts, boom_nfts, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+stakeColumns,
		rec.OwnerID, rec.Nickname, rec.WalletAddress,
		rec.CommonCount, rec.RareCount, rec.UltraRareCount, rec.BoomCount, statusOrActive(rec.Status),
	)
	out, err := scanStake(row)
	if err != nil {
		return nil, classifyPgErr("create stake", err)
	}
	return out, nil
}

func (r *StakeRepository) Update(ctx context.Context, ownerID string, patch domain.StakePatch) (*domain.StakeRecord, error) {
	if err := checkOwnerID("update stake", ownerID); err != nil {
		return nil, err
	}
	row := r.db.QueryRow(ctx,
		`UPDATE sherk_stakes SET
			nickname        = COALESCE($2, nickname),
			wallet_address  = COALESCE($3, wallet_address),
			common_nfts     = COALESCE($4, common_nfts),
			rare_nfts       = COALESCE($5, rare_nfts),
			ultra_rare_nfts = COALESCE($6, ultra_rare_nfts),
			boom_nfts       = COALESCE($7, boom_nfts),
			status          = COALESCE($8, status),
			updated_at      = NOW()
		 WHERE user_id = $1
		 RETURNING `+stakeColumns,
		ownerID, patch.Nickname, patch.WalletAddress,
		patch.Common, patch.Rare, patch.UltraRare, patch.Boom, statusPtr(patch.Status),
	)
	out, err := scanStake(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classifyPgErr("update stake", err)
	}
	return out, nil
}

// Upsert inserts the record or replaces the owner's existing one (conflict key user_id).
func (r *StakeRepository) Upsert(ctx context.Context, rec *domain.StakeRecord) (*domain.StakeRecord, error) {
	if err := checkOwnerID("upsert stake", rec.OwnerID); err != nil {
		return nil, err
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO sherk_stakes (user_id, nickname, wallet_address, common_nfts, rare_nfts, ultra_rare_nfts, boom_nfts, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id) DO UPDATE SET
			nickname        = EXCLUDED.nickname,
			wallet_address  = EXCLUDED.wallet_address,
			common_nfts     = EXCLUDED.common_nfts,
			rare_nfts       = EXCLUDED.rare_nfts,
			ultra_rare_nfts = EXCLUDED.ultra_rare_nfts,
			boom_nfts       = EXCLUDED.boom_nfts,
			status          = EXCLUDED.status,
			updated_at      = NOW()
		 RETURNING `+stakeColumns,
		rec.OwnerID, rec.Nickname, rec.WalletAddress,
		rec.CommonCount, rec.RareCount, rec.UltraRareCount, rec.BoomCount, statusOrActive(rec.Status),
	)
	out, err := scanStake(row)
	if err != nil {
		return nil, classifyPgErr("upsert stake", err)
	}
	return out, nil
}

// Delete removes the owner's record. Deleting a missing record is not an error.
func (r *StakeRepository) Delete(ctx context.Context, ownerID string) error {
	if err := checkOwnerID("delete stake", ownerID); err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM sherk_stakes WHERE user_id = $1`, ownerID); err != nil {
		return classifyPgErr("delete stake", err)
	}
	return nil
}

// List returns every record, newest first.
func (r *StakeRepository) List(ctx context.Context) ([]*domain.StakeRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT `+stakeColumns+` FROM sherk_stakes ORDER BY created_at DESC`)
	if err != nil {
		return nil, classifyPgErr("list stakes", err)
	}
	defer rows.Close()

	var out []*domain.StakeRecord
	for rows.Next() {
		rec, err := scanStake(rows)
		if err != nil {
			return nil, classifyPgErr("list stakes", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyPgErr("list stakes", err)
	}
	return out, nil
}

func scanStake(row pgx.Row) (*domain.StakeRecord, error) {
	var rec domain.StakeRecord
	var status string
	if err := row.Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.Nickname,
		&rec.WalletAddress,
		&rec.CommonCount,
		&rec.RareCount,
		&rec.UltraRareCount,
		&rec.BoomCount,
		&status,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rec.Status = domain.StakeStatus(status)
	return &rec, nil
}

func checkOwnerID(op, ownerID string) error {
	if _, err := uuid.Parse(ownerID); err != nil {
		return &StoreError{Op: op, Message: "owner id is not a uuid", Err: err}
	}
	return nil
}

func statusOrActive(s domain.StakeStatus) string {
	if s == "" {
		return string(domain.StakeActive)
	}
	return string(s)
}

func statusPtr(s *domain.StakeStatus) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

// classifyPgErr maps driver errors onto the store taxonomy.
func classifyPgErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return ErrConflict
		}
		return &StoreError{Op: op, Code: pgErr.Code, Message: pgErr.Message, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) || pgconn.SafeToRetry(err) {
		return errors.Join(ErrNetwork, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

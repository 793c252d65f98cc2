package repository

import (
	"context"

	"sherk_portal/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const auditColumns = `id, user_id, action, category, details, COALESCE(ip, ''), COALESCE(user_agent, ''), created_at`

// AuditRepository stores audit entries in audit_logs.
type AuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create appends one entry; details are stored as jsonb.
func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	details := entry.Details
	if details == nil {
		details = map[string]interface{}{}
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO audit_logs (user_id, action, category, details, ip, user_agent)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))
		 RETURNING id, created_at`,
		entry.UserID, entry.Action, entry.Category, details, entry.IP, entry.UserAgent,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return classifyPgErr("create audit log", err)
	}
	return nil
}

// GetRecent returns the newest entries, all categories when category is "".
func (r *AuditRepository) GetRecent(ctx context.Context, category string, limit int) ([]*domain.AuditLog, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+auditColumns+` FROM audit_logs
		 WHERE $1 = '' OR category = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		category, limit,
	)
	if err != nil {
		return nil, classifyPgErr("recent audit logs", err)
	}
	logs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.AuditLog, error) {
		var l domain.AuditLog
		err := row.Scan(&l.ID, &l.UserID, &l.Action, &l.Category, &l.Details, &l.IP, &l.UserAgent, &l.CreatedAt)
		return &l, err
	})
	if err != nil {
		return nil, classifyPgErr("recent audit logs", err)
	}
	return logs, nil
}

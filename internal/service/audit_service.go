package service

import (
	"context"

	"sherk_portal/internal/domain"
	"sherk_portal/internal/logger"
	"sherk_portal/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

type auditStore interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	GetRecent(ctx context.Context, category string, limit int) ([]*domain.AuditLog, error)
}

// AuditService handles audit logging. Without a database entries are only
// written to the process log.
type AuditService struct {
	repo auditStore
}

// NewAuditService creates a new audit service; db may be nil.
func NewAuditService(db *pgxpool.Pool) *AuditService {
	if db == nil {
		return &AuditService{}
	}
	return &AuditService{repo: repository.NewAuditRepository(db)}
}

// Log creates a new audit log entry
func (s *AuditService) Log(ctx context.Context, entry *domain.AuditLog) {
	logger.WithContext(ctx).Info("audit",
		"action", entry.Action, "category", entry.Category, "user_id", entry.UserID, "details", entry.Details)
	if s.repo == nil {
		return
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", entry.Action, "user_id", entry.UserID)
	}
}

// Persistent reports whether entries are stored.
func (s *AuditService) Persistent() bool {
	return s.repo != nil
}

// RequestInfo is the caller's IP and User-Agent.
type RequestInfo struct {
	IP        string
	UserAgent string
}

func (s *AuditService) logRequest(ctx context.Context, userID, action, category string, req RequestInfo, details map[string]interface{}) {
	s.Log(ctx, &domain.AuditLog{
		UserID:    userID,
		Action:    action,
		Category:  category,
		Details:   details,
		IP:        req.IP,
		UserAgent: req.UserAgent,
	})
}

func (s *AuditService) LogSignUp(ctx context.Context, userID string, req RequestInfo, profilePending bool) {
	s.logRequest(ctx, userID, domain.AuditActionSignUp, domain.AuditCategoryAuth, req,
		map[string]interface{}{"profile_pending": profilePending})
}

// LogLogin logs a user login
func (s *AuditService) LogLogin(ctx context.Context, userID string, req RequestInfo) {
	s.logRequest(ctx, userID, domain.AuditActionLogin, domain.AuditCategoryAuth, req, nil)
}

func (s *AuditService) LogLogout(ctx context.Context, userID string, req RequestInfo) {
	s.logRequest(ctx, userID, domain.AuditActionLogout, domain.AuditCategoryAuth, req, nil)
}

// LogStakeSubmit logs a saved stake with its counts and pickaxes.
func (s *AuditService) LogStakeSubmit(ctx context.Context, rec *domain.StakeRecord, pickaxes int64, created bool) {
	details := map[string]interface{}{
		"common_nfts":     rec.CommonCount,
		"rare_nfts":       rec.RareCount,
		"ultra_rare_nfts": rec.UltraRareCount,
		"boom_nfts":       rec.BoomCount,
		"total_pickaxes":  pickaxes,
		"created":         created,
	}
	s.Log(ctx, &domain.AuditLog{
		UserID:   rec.OwnerID,
		Action:   domain.AuditActionStakeSubmit,
		Category: domain.AuditCategoryStake,
		Details:  details,
	})
}

// LogAdminAction logs an admin action
func (s *AuditService) LogAdminAction(ctx context.Context, adminID, action string, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["admin_id"] = adminID
	s.Log(ctx, &domain.AuditLog{
		UserID:   adminID,
		Action:   action,
		Category: domain.AuditCategoryAdmin,
		Details:  details,
	})
}

// GetRecentLogs returns recent audit logs, optionally for one category.
func (s *AuditService) GetRecentLogs(ctx context.Context, category string, limit int) ([]*domain.AuditLog, error) {
	if s.repo == nil {
		return []*domain.AuditLog{}, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.GetRecent(ctx, category, limit)
}

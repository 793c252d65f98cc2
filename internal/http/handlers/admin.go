package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"sherk_portal/internal/domain"
	"sherk_portal/internal/http/middleware"
	"sherk_portal/internal/logger"
	"sherk_portal/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) AdminStakes(c *gin.Context) {
	entry, ok := currentSession(c)
	if !ok {
		return
	}
	rows, err := h.Admin.Rows(c.Request.Context(), entry.Store, entry.Profiles)
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("admin list failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch staking records", "action": "retry"})
		return
	}

	var pickaxes, weekly int64
	for _, r := range rows {
		pickaxes += r.TotalPickaxes
		weekly += r.WeeklyReward
	}
	c.JSON(http.StatusOK, gin.H{
		"rows":           rows,
		"count":          len(rows),
		"total_pickaxes": pickaxes,
		"weekly_reward":  weekly,
	})
}

func (h *Handler) AdminExport(c *gin.Context) {
	entry, ok := currentSession(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	n, err := h.Admin.Export(c.Request.Context(), c.GetString(middleware.CtxUserID), entry.Store, entry.Profiles, &buf)
	if err != nil {
		logger.WithContext(c.Request.Context()).Error("admin export failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to export staking records", "action": "retry"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+service.ExportFileName(time.Now())+`"`)
	c.Header("X-Row-Count", strconv.Itoa(n))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) AdminDeleteStake(c *gin.Context) {
	entry, ok := currentSession(c)
	if !ok {
		return
	}
	ownerID := c.Param("ownerID")
	if _, err := uuid.Parse(ownerID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid owner id"})
		return
	}

	if err := h.Admin.DeleteStake(c.Request.Context(), c.GetString(middleware.CtxUserID), ownerID, entry.Store); err != nil {
		logger.WithContext(c.Request.Context()).Error("admin delete failed", "owner_id", ownerID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to delete record", "action": "retry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "owner_id": ownerID})
}

func (h *Handler) AdminAudit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	category := c.Query("category")
	switch category {
	case "", domain.AuditCategoryAuth, domain.AuditCategoryStake, domain.AuditCategoryAdmin:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}

	logs, err := h.Audit.GetRecentLogs(c.Request.Context(), category, limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch audit logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "persistent": h.Audit.Persistent()})
}

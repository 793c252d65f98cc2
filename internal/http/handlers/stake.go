package handlers

import (
	"net/http"
	"strconv"

	"sherk_portal/internal/rewards"
	"sherk_portal/internal/stake"

	"github.com/gin-gonic/gin"
)

// Dashboard is the fetch-on-load view of the caller's stake.
func (h *Handler) Dashboard(c *gin.Context) {
	entry, ok := currentSession(c)
	if !ok {
		return
	}
	d, err := entry.Stakes.Load(c.Request.Context())
	if err != nil {
		respondStakeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) SubmitStake(c *gin.Context) {
	entry, ok := currentSession(c)
	if !ok {
		return
	}
	var sub stake.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	res, err := entry.Stakes.Submit(c.Request.Context(), sub)
	if err != nil {
		respondStakeError(c, err)
		return
	}
	h.Audit.LogStakeSubmit(c.Request.Context(), res.Record, res.Rewards.TotalPickaxes, res.Created)

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}

// PreviewRewards computes rewards for form input without storing anything.
func (h *Handler) PreviewRewards(c *gin.Context) {
	var counts rewards.Counts
	for _, f := range []struct {
		key string
		dst *int64
	}{
		{"common_nfts", &counts.Common},
		{"rare_nfts", &counts.Rare},
		{"ultra_rare_nfts", &counts.UltraRare},
		{"boom_nfts", &counts.Boom},
	} {
		v := c.Query(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": f.key + " must be an integer"})
			return
		}
		*f.dst = n
	}
	if err := counts.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "kind": stake.KindInvalidStake})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"counts":  counts,
		"rewards": rewards.Compute(counts),
		"tiers":   rewards.Tiers(),
	})
}

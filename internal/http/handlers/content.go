package handlers

import (
	"net/http"

	"sherk_portal/internal/content"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Landing(c *gin.Context) {
	c.JSON(http.StatusOK, content.LandingPage())
}

func (h *Handler) Giveaways(c *gin.Context) {
	c.JSON(http.StatusOK, content.GiveawaysPage())
}

func (h *Handler) Token(c *gin.Context) {
	c.JSON(http.StatusOK, content.TokenPage())
}

func (h *Handler) FAQ(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"faqs": content.FAQs()})
}

func (h *Handler) Testimonials(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"testimonials": content.Testimonials()})
}

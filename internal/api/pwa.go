package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-flood-alerts/internal/pwa"
)

func (h *Handler) manifest(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.Header("Content-Type", "application/manifest+json")
	c.JSON(http.StatusOK, h.pwa.Manifest())
}

func (h *Handler) pwaVersion(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"version":          h.pwa.Version(),
		"update_available": h.pwa.UpdateAvailable(c.Query("current")),
	})
}

type installRequest struct {
	Outcome pwa.InstallOutcome `json:"outcome" binding:"required"`
}

func (h *Handler) recordInstall(c *gin.Context) {
	var req installRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "outcome is required"})
		return
	}

	if err := h.pwa.RecordInstall(req.Outcome); err != nil {
		if errors.Is(err, pwa.ErrInvalidOutcome) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record install"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "install outcome recorded"})
}

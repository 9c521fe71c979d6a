package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxOfflineActionBytes = 64 << 10

func (h *Handler) appendOfflineAction(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxOfflineActionBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}
	if len(body) > maxOfflineActionBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "offline action too large"})
		return
	}
	if !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offline action must be valid JSON"})
		return
	}

	n, err := h.offline.Append(c.Request.Context(), c.Param("key"), json.RawMessage(body))
	if err != nil {
		h.logger.Error("failed to queue offline action", "key", c.Param("key"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue offline action"})
		return
	}
	if h.metrics != nil {
		h.metrics.OfflineQueued.Inc()
	}

	c.JSON(http.StatusCreated, gin.H{"message": "offline action queued", "length": n})
}

func (h *Handler) readOfflineActions(c *gin.Context) {
	actions, err := h.offline.Read(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.logger.Error("failed to read offline actions", "key", c.Param("key"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read offline actions"})
		return
	}
	c.JSON(http.StatusOK, actions)
}

func (h *Handler) clearOfflineActions(c *gin.Context) {
	if err := h.offline.Clear(c.Request.Context(), c.Param("key")); err != nil {
		h.logger.Error("failed to clear offline actions", "key", c.Param("key"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear offline actions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "offline actions cleared"})
}

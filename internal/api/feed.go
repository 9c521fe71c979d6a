package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-flood-alerts/internal/models"
)

func (h *Handler) getFeed(c *gin.Context) {
	c.JSON(http.StatusOK, h.feed.Snapshot())
}

func (h *Handler) getFeedGeoJSON(c *gin.Context) {
	fc := alertsToGeoJSON(h.feed.Snapshot().Alerts)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

func (h *Handler) addAlert(c *gin.Context) {
	var in models.NewAlert
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert: " + err.Error()})
		return
	}
	if !in.Type.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "alert type must be one of critical, moderate, info, resolved"})
		return
	}

	c.JSON(http.StatusCreated, h.feed.AddAlert(in))
}

func (h *Handler) updateStatistics(c *gin.Context) {
	var u models.StatisticsUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid statistics: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.feed.UpdateStatistics(u))
}

func (h *Handler) reconnect(c *gin.Context) {
	h.feed.Reconnect()
	c.JSON(http.StatusAccepted, gin.H{
		"message":     "reconnecting",
		"isConnected": false,
	})
}

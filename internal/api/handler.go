package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mr1hm/go-flood-alerts/internal/auth"
	"github.com/mr1hm/go-flood-alerts/internal/models"
	"github.com/mr1hm/go-flood-alerts/internal/observability"
	"github.com/mr1hm/go-flood-alerts/internal/offline"
	"github.com/mr1hm/go-flood-alerts/internal/pwa"
	"github.com/mr1hm/go-flood-alerts/internal/repository"
)

// FeedService is the live alert feed. *feed.Simulator implements it.
type FeedService interface {
	Snapshot() models.Snapshot
	AddAlert(in models.NewAlert) models.Alert
	UpdateStatistics(u models.StatisticsUpdate) models.Statistics
	Reconnect()
}

// SnapshotStream hands out feed updates. *broadcast.Broadcaster implements it.
type SnapshotStream interface {
	Subscribe() (uint64, <-chan models.Snapshot)
	Unsubscribe(id uint64)
}

type EventDispatcher interface {
	Dispatch(ctx context.Context, ev models.ReportEvent) error
}

type Deps struct {
	Feed    FeedService
	Stream  SnapshotStream
	Auth    *auth.Authenticator
	Reports repository.FloodReportRepository
	Events  EventDispatcher
	Offline offline.Queue
	PWA     *pwa.Manager
	Metrics *observability.Metrics
	Clock   clockwork.Clock
	Logger  *slog.Logger
	// RequireAdmin guards report moderation behind the bearer token.
	RequireAdmin bool
}

type Handler struct {
	feed         FeedService
	stream       SnapshotStream
	auth         *auth.Authenticator
	reports      repository.FloodReportRepository
	events       EventDispatcher
	offline      offline.Queue
	pwa          *pwa.Manager
	metrics      *observability.Metrics
	clock        clockwork.Clock
	logger       *slog.Logger
	requireAdmin bool
}

func NewHandler(d Deps) *Handler {
	h := &Handler{
		feed:         d.Feed,
		stream:       d.Stream,
		auth:         d.Auth,
		reports:      d.Reports,
		events:       d.Events,
		offline:      d.Offline,
		pwa:          d.PWA,
		metrics:      d.Metrics,
		clock:        d.Clock,
		logger:       d.Logger,
		requireAdmin: d.RequireAdmin,
	}
	if h.clock == nil {
		h.clock = clockwork.NewRealClock()
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	feed := r.Group("/feed")
	feed.GET("", h.getFeed)
	feed.GET("/alerts.geojson", h.getFeedGeoJSON)
	feed.POST("/alerts", h.addAlert)
	feed.PATCH("/statistics", h.updateStatistics)
	feed.POST("/reconnect", h.reconnect)
	if h.stream != nil {
		feed.GET("/ws", h.streamFeed)
	}

	authGroup := r.Group("/auth")
	authGroup.POST("/login", h.login)
	authGroup.GET("/verify", h.verify)

	r.POST("/flood-reports", h.createReport)
	r.GET("/flood-reports", h.listReports)
	r.GET("/flood-reports.geojson", h.listReportsGeoJSON)
	r.PUT("/flood-reports/approve/:id", h.moderated(h.approveReport)...)
	r.DELETE("/flood-reports/:id", h.moderated(h.deleteReport)...)

	offlineGroup := r.Group("/offline-actions")
	offlineGroup.POST("/:key", h.appendOfflineAction)
	offlineGroup.GET("/:key", h.readOfflineActions)
	offlineGroup.DELETE("/:key", h.clearOfflineActions)

	r.GET("/manifest.webmanifest", h.manifest)
	r.GET("/pwa/version", h.pwaVersion)
	r.POST("/pwa/installs", h.recordInstall)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// health reports 503 when the report store does not answer a ping.
func (h *Handler) health(c *gin.Context) {
	if p, ok := h.reports.(pinger); ok {
		if err := p.Ping(c.Request.Context()); err != nil {
			h.logger.Error("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) moderated(fn gin.HandlerFunc) []gin.HandlerFunc {
	if !h.requireAdmin {
		return []gin.HandlerFunc{fn}
	}
	return []gin.HandlerFunc{h.auth.RequireToken(), fn}
}

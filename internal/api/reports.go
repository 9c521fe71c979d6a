package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-flood-alerts/internal/models"
	"github.com/mr1hm/go-flood-alerts/internal/repository"
)

const defaultSeverity = "moderate"

type createReportRequest struct {
	Title          string   `json:"title"`
	Message        string   `json:"message" binding:"required"`
	Severity       string   `json:"severity"`
	Latitude       *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude      *float64 `json:"longitude" binding:"required,min=-180,max=180"`
	Neighborhood   string   `json:"neighborhood"`
	Address        string   `json:"address"`
	WaterLevel     string   `json:"water_level"`
	AffectedPeople int      `json:"affected_people" binding:"min=0"`
	UserID         string   `json:"user_id"`
}

func (h *Handler) createReport(c *gin.Context) {
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flood report: " + err.Error()})
		return
	}

	severity := req.Severity
	if severity == "" {
		severity = defaultSeverity
	}
	report := &models.FloodReport{
		Title:          req.Title,
		Message:        req.Message,
		Severity:       severity,
		Latitude:       *req.Latitude,
		Longitude:      *req.Longitude,
		Neighborhood:   req.Neighborhood,
		Address:        req.Address,
		WaterLevel:     req.WaterLevel,
		AffectedPeople: req.AffectedPeople,
		UserID:         req.UserID,
		Status:         models.ReportStatusPending,
		ReportedAt:     h.clock.Now().UTC(),
	}

	if err := h.reports.Create(c.Request.Context(), report); err != nil {
		h.logger.Error("failed to create flood report", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save flood report"})
		return
	}

	h.dispatch(c, models.ReportCreated, report.ID, report)
	c.JSON(http.StatusCreated, gin.H{
		"message": "flood report submitted",
		"data":    report,
	})
}

// reportFilter reads ?approved=1 (approved) or ?approved=0 (pending).
// Any other value lists everything.
func reportFilter(c *gin.Context) repository.Filter {
	var f repository.Filter
	var status models.ReportStatus
	switch c.Query("approved") {
	case "1", "true":
		status = models.ReportStatusApproved
	case "0", "false":
		status = models.ReportStatusPending
	default:
		return f
	}
	f.Status = &status
	return f
}

func (h *Handler) listReports(c *gin.Context) {
	reports, err := h.reports.List(c.Request.Context(), reportFilter(c))
	if err != nil {
		h.logger.Error("failed to list flood reports", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch flood reports"})
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (h *Handler) listReportsGeoJSON(c *gin.Context) {
	reports, err := h.reports.List(c.Request.Context(), reportFilter(c))
	if err != nil {
		h.logger.Error("failed to list flood reports", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch flood reports"})
		return
	}

	fc := reportsToGeoJSON(reports)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

func (h *Handler) approveReport(c *gin.Context) {
	id, ok := reportID(c)
	if !ok {
		return
	}

	err := h.reports.Approve(c.Request.Context(), id, h.clock.Now().UTC())
	if !h.handleRepoError(c, err, "approve") {
		return
	}

	h.dispatch(c, models.ReportApproved, id, nil)
	c.JSON(http.StatusOK, gin.H{"message": "flood report approved"})
}

func (h *Handler) deleteReport(c *gin.Context) {
	id, ok := reportID(c)
	if !ok {
		return
	}

	err := h.reports.Delete(c.Request.Context(), id)
	if !h.handleRepoError(c, err, "delete") {
		return
	}

	h.dispatch(c, models.ReportDeleted, id, nil)
	c.JSON(http.StatusOK, gin.H{"message": "flood report deleted"})
}

func reportID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flood report id"})
		return 0, false
	}
	return id, true
}

// handleRepoError writes the error response, if any, and reports whether the
// handler should continue.
func (h *Handler) handleRepoError(c *gin.Context, err error, action string) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "flood report not found"})
	default:
		h.logger.Error("flood report "+action+" failed", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + action + " flood report"})
	}
	return false
}

// dispatch queues a lifecycle event. Failures are logged; the request already succeeded.
func (h *Handler) dispatch(c *gin.Context, typ models.ReportEventType, id int64, report *models.FloodReport) {
	if h.events == nil {
		return
	}

	ev := models.ReportEvent{
		Type:       typ,
		ReportID:   id,
		Report:     report,
		OccurredAt: h.clock.Now().UTC(),
	}
	if err := h.events.Dispatch(c.Request.Context(), ev); err != nil {
		h.logger.Warn("failed to queue report event", "type", typ, "report_id", id, "error", err)
	}
}

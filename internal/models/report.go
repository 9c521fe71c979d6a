package models

import "time"

type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusApproved ReportStatus = "approved"
)

// FloodReport is a citizen-submitted flood report awaiting or past moderation.
type FloodReport struct {
	ID             int64        `json:"id"`
	Title          string       `json:"title"`
	Message        string       `json:"message"`
	Severity       string       `json:"severity"`
	Latitude       float64      `json:"latitude"`
	Longitude      float64      `json:"longitude"`
	Neighborhood   string       `json:"neighborhood"`
	Address        string       `json:"address"`
	WaterLevel     string       `json:"water_level"`
	AffectedPeople int          `json:"affected_people"`
	UserID         string       `json:"user_id"`
	Status         ReportStatus `json:"status"`
	ReportedAt     time.Time    `json:"reported_at"`
	ApprovedAt     *time.Time   `json:"approved_at"`
}

func (r *FloodReport) Coordinates() Coordinates {
	return Coordinates{r.Longitude, r.Latitude}
}

type ReportEventType string

const (
	ReportCreated  ReportEventType = "report.created"
	ReportApproved ReportEventType = "report.approved"
	ReportDeleted  ReportEventType = "report.deleted"
)

// ReportEvent announces a flood report lifecycle change to downstream consumers.
type ReportEvent struct {
	Type       ReportEventType `json:"type"`
	ReportID   int64           `json:"report_id"`
	Report     *FloodReport    `json:"report,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

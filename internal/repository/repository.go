package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mr1hm/go-flood-alerts/internal/models"
)

var ErrNotFound = errors.New("flood report not found")

type Filter struct {
	Limit  int
	Offset int
	Status *models.ReportStatus
}

type FloodReportRepository interface {
	// Create inserts r and sets its ID.
	Create(ctx context.Context, r *models.FloodReport) error
	GetByID(ctx context.Context, id int64) (*models.FloodReport, error)
	// List returns reports newest first.
	List(ctx context.Context, opts Filter) ([]models.FloodReport, error)
	Approve(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
}

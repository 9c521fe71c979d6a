package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mr1hm/go-flood-alerts/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteDB {
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	return db
}

func TestNewSQLiteDB_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "flood-alerts.db")

	db, err := NewSQLiteDB(path)
	if err != nil {
		t.Fatalf("NewSQLiteDB failed: %v", err)
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected database file at %s: %v", path, err)
	}
}

func newReport(title string, reportedAt time.Time) *models.FloodReport {
	return &models.FloodReport{
		Title:          title,
		Message:        "Water up to the knees",
		Severity:       "high",
		Latitude:       -23.5505,
		Longitude:      -46.6333,
		Neighborhood:   "Centro",
		Address:        "Rua Direita, 100",
		WaterLevel:     "50cm",
		AffectedPeople: 12,
		UserID:         "user-1",
		ReportedAt:     reportedAt,
	}
}

func TestSQLiteDB_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	reportedAt := time.Date(2024, time.March, 12, 14, 30, 0, 0, time.UTC)
	r := newReport("Flooded street", reportedAt)

	if err := db.Create(ctx, r); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if r.ID == 0 {
		t.Fatal("expected Create to assign an id")
	}
	if r.Status != models.ReportStatusPending {
		t.Errorf("expected status pending, got %s", r.Status)
	}

	got, err := db.GetByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "Flooded street" {
		t.Errorf("expected title 'Flooded street', got '%s'", got.Title)
	}
	if got.WaterLevel != "50cm" || got.AffectedPeople != 12 || got.UserID != "user-1" {
		t.Errorf("unexpected report fields: %+v", got)
	}
	if !got.ReportedAt.Equal(reportedAt) {
		t.Errorf("expected reported_at %v, got %v", reportedAt, got.ReportedAt)
	}
	if got.ApprovedAt != nil {
		t.Errorf("expected nil approved_at, got %v", got.ApprovedAt)
	}
}

func TestSQLiteDB_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.GetByID(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteDB_List_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	base := time.Date(2024, time.March, 12, 10, 0, 0, 0, time.UTC)
	for i, title := range []string{"oldest", "newest", "middle"} {
		offsets := []time.Duration{0, 2 * time.Hour, time.Hour + 500*time.Millisecond}
		if err := db.Create(ctx, newReport(title, base.Add(offsets[i]))); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	results, err := db.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(results))
	}
	want := []string{"newest", "middle", "oldest"}
	for i, r := range results {
		if r.Title != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], r.Title)
		}
	}

	results, err = db.List(ctx, Filter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(results) != 2 || results[0].Title != "middle" {
		t.Errorf("expected [middle oldest] with limit/offset, got %+v", results)
	}
}

func TestSQLiteDB_ApproveAndFilter(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Date(2024, time.March, 12, 10, 0, 0, 0, time.UTC)
	a := newReport("a", now)
	b := newReport("b", now.Add(time.Minute))
	db.Create(ctx, a)
	db.Create(ctx, b)

	approvedAt := now.Add(time.Hour)
	if err := db.Approve(ctx, a.ID, approvedAt); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	approved := models.ReportStatusApproved
	results, err := db.List(ctx, Filter{Status: &approved})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != a.ID {
		t.Fatalf("expected only report a approved, got %+v", results)
	}
	if results[0].ApprovedAt == nil || !results[0].ApprovedAt.Equal(approvedAt) {
		t.Errorf("expected approved_at %v, got %v", approvedAt, results[0].ApprovedAt)
	}

	pending := models.ReportStatusPending
	results, err = db.List(ctx, Filter{Status: &pending})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != b.ID {
		t.Errorf("expected only report b pending, got %+v", results)
	}
}

func TestSQLiteDB_Approve_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	err := db.Approve(context.Background(), 42, time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteDB_Delete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	r := newReport("to delete", time.Now())
	db.Create(ctx, r)

	if err := db.Delete(ctx, r.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := db.GetByID(ctx, r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := db.Delete(ctx, r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSQLiteDB_List_Empty(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	results, err := db.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", results)
	}
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mr1hm/go-flood-alerts/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

var _ FloodReportRepository = (*SQLiteDB)(nil)

// NewSQLiteDB opens the database at path, creating its parent directory if
// needed, and runs migrations. DSNs (":memory:", "file:...") are passed through as is.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// :memory: databases are per connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS flood_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL,
			severity TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			neighborhood TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			water_level TEXT NOT NULL DEFAULT '',
			affected_people INTEGER NOT NULL DEFAULT 0,
			user_id TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			reported_at DATETIME NOT NULL,
			approved_at DATETIME
		);

		CREATE INDEX IF NOT EXISTS idx_flood_reports_reported_at ON flood_reports(reported_at);
		CREATE INDEX IF NOT EXISTS idx_flood_reports_status ON flood_reports(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteDB) Create(ctx context.Context, r *models.FloodReport) error {
	if r.Status == "" {
		r.Status = models.ReportStatusPending
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO flood_reports (
			title, message, severity, latitude, longitude, neighborhood, address,
			water_level, affected_people, user_id, status, reported_at, approved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Title, r.Message, r.Severity, r.Latitude, r.Longitude, r.Neighborhood, r.Address,
		r.WaterLevel, r.AffectedPeople, r.UserID, string(r.Status), r.ReportedAt.UTC(), nullTime(r.ApprovedAt),
	)
	if err != nil {
		return fmt.Errorf("insert flood report: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read flood report id: %w", err)
	}
	r.ID = id
	return nil
}

const selectColumns = `
	SELECT id, title, message, severity, latitude, longitude, neighborhood, address,
		water_level, affected_people, user_id, status, reported_at, approved_at
	FROM flood_reports`

func (s *SQLiteDB) GetByID(ctx context.Context, id int64) (*models.FloodReport, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)

	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get flood report %d: %w", id, err)
	}
	return r, nil
}

func (s *SQLiteDB) List(ctx context.Context, opts Filter) ([]models.FloodReport, error) {
	var (
		where []string
		args  []any
	)
	if opts.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*opts.Status))
	}

	query := selectColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY reported_at DESC, id DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list flood reports: %w", err)
	}
	defer rows.Close()

	reports := []models.FloodReport{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flood report: %w", err)
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

func (s *SQLiteDB) Approve(ctx context.Context, id int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE flood_reports SET status = ?, approved_at = ? WHERE id = ?`,
		string(models.ReportStatusApproved), at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("approve flood report %d: %w", id, err)
	}
	return expectOneRow(res)
}

func (s *SQLiteDB) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM flood_reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete flood report %d: %w", id, err)
	}
	return expectOneRow(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(sc scanner) (*models.FloodReport, error) {
	var (
		r          models.FloodReport
		status     string
		approvedAt sql.NullTime
	)
	err := sc.Scan(
		&r.ID, &r.Title, &r.Message, &r.Severity, &r.Latitude, &r.Longitude, &r.Neighborhood,
		&r.Address, &r.WaterLevel, &r.AffectedPeople, &r.UserID, &status, &r.ReportedAt, &approvedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Status = models.ReportStatus(status)
	r.ReportedAt = r.ReportedAt.UTC()
	if approvedAt.Valid {
		t := approvedAt.Time.UTC()
		r.ApprovedAt = &t
	}
	return &r, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

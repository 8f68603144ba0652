package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/heartlog/internal/domain/sample"
)

// SampleRepository implements repository.SampleRepository for SQLite
type SampleRepository struct {
	db *DB
}

// NewSampleRepository creates a new SampleRepository
func NewSampleRepository(db *DB) *SampleRepository {
	return &SampleRepository{db: db}
}

// ListBySessionStart returns capture time, heart rate and beat interval for one session.
func (r *SampleRepository) ListBySessionStart(ctx context.Context, start int64) ([]sample.Sample, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, start_date, hr, rr
		FROM samples
		WHERE start_date = ?
		ORDER BY id
	`, start)
	if err != nil {
		return nil, fmt.Errorf("failed to list samples: %w", err)
	}
	defer rows.Close()
	return scanSamples(rows, true)
}

// ListHeartRateBySessionStart returns capture time and heart rate only for one session.
func (r *SampleRepository) ListHeartRateBySessionStart(ctx context.Context, start int64) ([]sample.Sample, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, start_date, hr
		FROM samples
		WHERE start_date = ?
		ORDER BY id
	`, start)
	if err != nil {
		return nil, fmt.Errorf("failed to list heart rates: %w", err)
	}
	defer rows.Close()
	return scanSamples(rows, false)
}

// ScanAll returns every stored row in insertion order.
func (r *SampleRepository) ScanAll(ctx context.Context) ([]sample.Sample, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, start_date, hr, rr
		FROM samples
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan samples: %w", err)
	}
	defer rows.Close()
	return scanSamples(rows, true)
}

// SessionBounds returns one (start, end) pair per distinct session start,
// ordered by the first row stored for that session.
func (r *SampleRepository) SessionBounds(ctx context.Context) ([]sample.Bounds, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT start_date, MAX(date)
		FROM samples
		GROUP BY start_date
		ORDER BY MIN(id)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var bounds []sample.Bounds
	for rows.Next() {
		var b sample.Bounds
		if err := rows.Scan(&b.Start, &b.End); err != nil {
			return nil, fmt.Errorf("failed to scan session bounds: %w", err)
		}
		bounds = append(bounds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}
	return bounds, nil
}

// DeleteBySessionStart removes every row stored under start and returns how many were removed.
func (r *SampleRepository) DeleteBySessionStart(ctx context.Context, start int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM samples WHERE start_date = ?`, start)
	if err != nil {
		return 0, fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted rows: %w", err)
	}
	return n, nil
}

// RecreateTable drops all samples and recreates the empty table.
func (r *SampleRepository) RecreateTable(ctx context.Context) error {
	return r.db.recreateSamples(ctx)
}

// Insert stores one row and returns its id.
func (r *SampleRepository) Insert(ctx context.Context, s *sample.Sample) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO samples (date, start_date, hr, rr) VALUES (?, ?, ?, ?)`,
		s.CaptureTime,
		s.SessionStart,
		nullable(s.HeartRate),
		nullable(s.BeatInterval),
	)
	if err != nil {
		return -1, fmt.Errorf("failed to insert sample: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return -1, fmt.Errorf("failed to read sample id: %w", err)
	}
	s.ID = id
	return id, nil
}

// scanSamples reads rows leniently: a column that cannot be interpreted is
// reported as absent (or InvalidDate for timestamps) instead of failing the row.
func scanSamples(rows *sql.Rows, withInterval bool) ([]sample.Sample, error) {
	var samples []sample.Sample
	for rows.Next() {
		var (
			id                  int64
			date, start, hr, rr any
		)
		dest := []any{&id, &date, &start, &hr}
		if withInterval {
			dest = append(dest, &rr)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}

		s := sample.Sample{
			ID:           id,
			CaptureTime:  sample.InvalidDate,
			SessionStart: sample.InvalidDate,
		}
		if v, ok := asInt64(date); ok {
			s.CaptureTime = v
		}
		if v, ok := asInt64(start); ok {
			s.SessionStart = v
		}
		if v, ok := asInt64(hr); ok {
			s.HeartRate = &v
		}
		if v, ok := asString(rr); ok {
			s.BeatInterval = &v
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sample rows: %w", err)
	}
	return samples, nil
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

// Package metrics records AI capture executions for the admin
// dashboard.
package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CaptureMetric records metadata for a single AI capture execution.
type CaptureMetric struct {
	Source    string // url, text, image or infer
	Model     string
	LatencyMS int64
	Success   bool
	Timestamp time.Time
}

// Store handles persistence of capture metrics.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric.
func (s *Store) Record(ctx context.Context, m CaptureMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO capture_metrics (source, model, latency_ms, success, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		m.Source, m.Model, m.LatencyMS, m.Success, ts)
	if err != nil {
		return fmt.Errorf("failed to record capture metric: %w", err)
	}
	return nil
}

// DailyUsage represents capture totals for a single day.
type DailyUsage struct {
	Date      string `json:"date"`
	Captures  int    `json:"captures"`
	Failures  int    `json:"failures"`
	AvgMillis int    `json:"avgMillis"`
}

// GetDailyUsage retrieves usage for the last N days.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().AddDate(0, 0, -days).UTC()
	rows, err := s.db.QueryContext(ctx, `
		SELECT date(timestamp) AS day,
		       COUNT(*),
		       SUM(CASE WHEN success THEN 0 ELSE 1 END),
		       CAST(AVG(latency_ms) AS INTEGER)
		FROM capture_metrics
		WHERE timestamp >= ?
		GROUP BY day ORDER BY day DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.Captures, &u.Failures, &u.AvgMillis); err != nil {
			return nil, fmt.Errorf("failed to scan usage row: %w", err)
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().AddDate(0, 0, -olderThanDays).UTC()
	res, err := s.db.ExecContext(ctx, `DELETE FROM capture_metrics WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up capture metrics: %w", err)
	}
	return res.RowsAffected()
}

package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// APICall records the outcome of a single request to an external API.
type APICall struct {
	Operation  string    `db:"operation"`
	StatusCode int       `db:"status_code"`
	LatencyMS  int64     `db:"latency_ms"`
	Failed     bool      `db:"failed"`
	CalledAt   time.Time `db:"called_at"`
}

// Store handles persistence of API call metrics.
type Store struct {
	db *sqlx.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// RecordCall saves a call to the database.
func (s *Store) RecordCall(ctx context.Context, call APICall) error {
	if call.CalledAt.IsZero() {
		call.CalledAt = time.Now().UTC()
	}

	query := s.db.Rebind(`INSERT INTO api_calls (operation, status_code, latency_ms, failed, called_at) VALUES (?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query, call.Operation, call.StatusCode, call.LatencyMS, call.Failed, call.CalledAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert api call: %w", err)
	}
	return nil
}

// DailyUsage represents call totals for a single day.
type DailyUsage struct {
	Date         string
	Calls        int
	Failures     int
	AvgLatencyMS int64
}

// dailyUsageQuery groups calls per UTC day. The day expression is the only
// part that differs between drivers.
const dailyUsageQuery = `SELECT %s AS day,
	COUNT(*) AS calls,
	SUM(CASE WHEN failed THEN 1 ELSE 0 END) AS failures,
	SUM(latency_ms) AS total_latency_ms
FROM api_calls
WHERE called_at >= ?
GROUP BY day
ORDER BY day`

type dailyUsageRow struct {
	Day            string `db:"day"`
	Calls          int    `db:"calls"`
	Failures       int    `db:"failures"`
	TotalLatencyMS int64  `db:"total_latency_ms"`
}

func (s *Store) dayExpr() string {
	if s.db.DriverName() == "postgres" {
		return `to_char(called_at AT TIME ZONE 'UTC', 'YYYY-MM-DD')`
	}
	return `date(called_at)`
}

// GetDailyUsage retrieves per-day totals for the last N days, oldest first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)

	var rows []dailyUsageRow
	query := s.db.Rebind(fmt.Sprintf(dailyUsageQuery, s.dayExpr()))
	if err := s.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, fmt.Errorf("failed to get daily usage: %w", err)
	}

	results := make([]DailyUsage, 0, len(rows))
	for _, r := range rows {
		u := DailyUsage{Date: r.Day, Calls: r.Calls, Failures: r.Failures}
		if r.Calls > 0 {
			u.AvgLatencyMS = r.TotalLatencyMS / int64(r.Calls)
		}
		results = append(results, u)
	}
	return results, nil
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM api_calls WHERE called_at < ?`), threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up api calls: %w", err)
	}
	return res.RowsAffected()
}

package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"

	"log-analyzer/domain"
)

const createTable = `
	CREATE TABLE IF NOT EXISTS %s (
		report_date Date,
		url         String,
		count       UInt64,
		count_share Float64,
		time_sum    Float64,
		time_share  Float64,
		time_avg    Float64,
		time_median Float64,
		time_max    Float64,
		time_min    Float64,
		created_at  DateTime DEFAULT now()
	)
	ENGINE = ReplacingMergeTree(created_at)
	ORDER BY (report_date, url)
`

type ClickHouseStatsRepository struct {
	db    *sql.DB
	table string
}

func NewClickHouseStatsRepository(db *sql.DB, table string) *ClickHouseStatsRepository {
	return &ClickHouseStatsRepository{db: db, table: table}
}

// Connect opens and pings a ClickHouse database from a clickhouse:// DSN.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}
	return db, nil
}

func (r *ClickHouseStatsRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, fmt.Sprintf(createTable, r.table)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", r.table, err)
	}
	return nil
}

func (r *ClickHouseStatsRepository) ReportExists(ctx context.Context, date time.Time) (bool, error) {
	var count uint64
	query := fmt.Sprintf(`SELECT count() FROM %s WHERE report_date = ?`, r.table)
	err := r.db.QueryRowContext(ctx, query, date).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to execute count query: %w", err)
	}
	return count > 0, nil
}

// SaveStats replaces the rows stored for date with stats, inserted as a
// single batch. Rows of an earlier run for the same date are removed first so
// a forced rerun never leaves stale paths behind.
func (r *ClickHouseStatsRepository) SaveStats(ctx context.Context, date time.Time, stats []domain.PathStats) error {
	if err := r.DeleteStats(ctx, date); err != nil {
		return err
	}
	if len(stats) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (
			report_date, url, count, count_share, time_sum, time_share,
			time_avg, time_median, time_max, time_min
		)`, r.table))
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}
	defer stmt.Close()

	for _, s := range stats {
		_, err := stmt.ExecContext(ctx,
			date, s.URL, uint64(s.Count), s.CountShare, s.TimeSum, s.TimeShare,
			s.TimeAvg, s.TimeMedian, s.TimeMax, s.TimeMin,
		)
		if err != nil {
			return fmt.Errorf("failed to append stats row for %q: %w", s.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	return nil
}

// DeleteStats removes every row stored for date. The mutation is synchronous,
// so a following insert or read never sees the old rows.
func (r *ClickHouseStatsRepository) DeleteStats(ctx context.Context, date time.Time) error {
	ctx = ch.Context(ctx, ch.WithSettings(ch.Settings{"mutations_sync": 2}))
	query := fmt.Sprintf(`ALTER TABLE %s DELETE WHERE report_date = ?`, r.table)
	if _, err := r.db.ExecContext(ctx, query, date); err != nil {
		return fmt.Errorf("failed to delete stats for %s: %w", date.Format("2006-01-02"), err)
	}
	return nil
}

// LoadStats returns the stored stats for date, largest total time first.
func (r *ClickHouseStatsRepository) LoadStats(ctx context.Context, date time.Time) ([]domain.PathStats, error) {
	query := fmt.Sprintf(`
		SELECT
			url, count, count_share, time_sum, time_share,
			time_avg, time_median, time_max, time_min
		FROM %s FINAL
		WHERE report_date = ?
		ORDER BY time_sum DESC
	`, r.table)
	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.PathStats
	for rows.Next() {
		var (
			s     domain.PathStats
			count uint64
		)
		err := rows.Scan(
			&s.URL, &count, &s.CountShare, &s.TimeSum, &s.TimeShare,
			&s.TimeAvg, &s.TimeMedian, &s.TimeMax, &s.TimeMin,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		s.Count = int(count)
		stats = append(stats, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stats rows: %w", err)
	}
	return stats, nil
}

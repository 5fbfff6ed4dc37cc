package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ridelog/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists the record collection in a local SQLite file.
// It implements records.Persister: the collection is loaded whole at startup
// and rewritten whole on every change, matching the wholesale-recompute
// model of the aggregation layer.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadAll implements records.Persister.
func (r *SQLiteRepository) LoadAll(ctx context.Context) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, trip_cost, promo, tips, total_income,
		       total_hours, trip_count, hourly_wage, trips_per_hour, created_at
		FROM records
		ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		var (
			rec     core.Record
			date    string
			created int64
		)
		if err := rows.Scan(&rec.ID, &date, &rec.TripCost, &rec.Promo, &rec.Tips,
			&rec.TotalIncome, &rec.TotalHours, &rec.TripCount,
			&rec.HourlyWage, &rec.TripsPerHour, &created); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if day, ok := core.ParseDateKey(date); ok {
			rec.Date = day
		}
		rec.CreatedAt = time.UnixMilli(created)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	slog.InfoContext(ctx, "Records loaded from SQLite", "count", len(out))
	return out, nil
}

// GetByID fetches a single record. The boolean is false when no row with
// that id exists.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (core.Record, bool, error) {
	var (
		rec     core.Record
		date    string
		created int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, date, trip_cost, promo, tips, total_income,
		       total_hours, trip_count, hourly_wage, trips_per_hour, created_at
		FROM records
		WHERE id = ?`, id).Scan(&rec.ID, &date, &rec.TripCost, &rec.Promo, &rec.Tips,
		&rec.TotalIncome, &rec.TotalHours, &rec.TripCount,
		&rec.HourlyWage, &rec.TripsPerHour, &created)
	if err == sql.ErrNoRows {
		return core.Record{}, false, nil
	}
	if err != nil {
		return core.Record{}, false, fmt.Errorf("query record %s: %w", id, err)
	}
	if day, ok := core.ParseDateKey(date); ok {
		rec.Date = day
	}
	rec.CreatedAt = time.UnixMilli(created)
	return rec, true, nil
}

// SaveAll implements records.Persister. The table is replaced in a single
// transaction so a crash mid-save never leaves a partial collection.
func (r *SQLiteRepository) SaveAll(ctx context.Context, records []core.Record) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (id, date, trip_cost, promo, tips, total_income,
		                     total_hours, trip_count, hourly_wage, trips_per_hour, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.DateKey(), rec.TripCost, rec.Promo,
			rec.Tips, rec.TotalIncome, rec.TotalHours, rec.TripCount,
			rec.HourlyWage, rec.TripsPerHour, rec.CreatedAt.UnixMilli()); err != nil {
			return fmt.Errorf("insert record %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save transaction: %w", err)
	}

	slog.DebugContext(ctx, "Records saved to SQLite", "count", len(records))
	return nil
}

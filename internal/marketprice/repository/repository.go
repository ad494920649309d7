// Package repository persists daily market price snapshots.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"energiebroker_backend/internal/marketprice/transport"
	"energiebroker_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository stores one snapshot per delivery date.
type Repository interface {
	Upsert(ctx context.Context, snap transport.Snapshot) error
	Latest(ctx context.Context) (transport.Snapshot, error)
	History(ctx context.Context, days int) ([]transport.Snapshot, error)
}

const snapshotColumns = `
	price_date, electricity_avg, electricity_day, electricity_night,
	electricity_min, electricity_max, gas, source, fetched_at`

// Repo implements Repository on PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

var _ Repository = (*Repo)(nil)

// New creates a new market price repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Upsert stores the snapshot, replacing an earlier one for the same date.
func (r *Repo) Upsert(ctx context.Context, snap transport.Snapshot) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO market_prices (`+snapshotColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (price_date) DO UPDATE SET
			electricity_avg = EXCLUDED.electricity_avg,
			electricity_day = EXCLUDED.electricity_day,
			electricity_night = EXCLUDED.electricity_night,
			electricity_min = EXCLUDED.electricity_min,
			electricity_max = EXCLUDED.electricity_max,
			gas = EXCLUDED.gas,
			source = EXCLUDED.source,
			fetched_at = EXCLUDED.fetched_at`,
		snap.Date, snap.ElectricityAvg, snap.ElectricityDay, snap.ElectricityNight,
		snap.ElectricityMin, snap.ElectricityMax, snap.Gas, snap.Source, snap.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert market price: %w", err)
	}
	return nil
}

// Latest returns the snapshot with the most recent delivery date.
func (r *Repo) Latest(ctx context.Context) (transport.Snapshot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+snapshotColumns+`
		FROM market_prices
		ORDER BY price_date DESC
		LIMIT 1`)

	snap, err := scanSnapshot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return transport.Snapshot{}, apperr.NotFound("no market price snapshot stored")
	}
	if err != nil {
		return transport.Snapshot{}, fmt.Errorf("latest market price: %w", err)
	}
	return snap, nil
}

// History returns the snapshots of the last days delivery dates, newest first.
func (r *Repo) History(ctx context.Context, days int) ([]transport.Snapshot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+snapshotColumns+`
		FROM market_prices
		WHERE price_date > CURRENT_DATE - $1::int
		ORDER BY price_date DESC`, days)
	if err != nil {
		return nil, fmt.Errorf("list market prices: %w", err)
	}
	defer rows.Close()

	items := make([]transport.Snapshot, 0, days)
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan market price: %w", err)
		}
		items = append(items, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate market prices: %w", err)
	}
	return items, nil
}

func scanSnapshot(row pgx.Row) (transport.Snapshot, error) {
	var s transport.Snapshot
	err := row.Scan(
		&s.Date, &s.ElectricityAvg, &s.ElectricityDay, &s.ElectricityNight,
		&s.ElectricityMin, &s.ElectricityMax, &s.Gas, &s.Source, &s.FetchedAt,
	)
	return s, err
}

// DeleteBefore removes snapshots for delivery dates before the given day.
func (r *Repo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM market_prices WHERE price_date < $1::date`, before)
	if err != nil {
		return 0, fmt.Errorf("delete market price snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}

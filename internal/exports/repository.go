package exports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"energiebroker_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Record is an archived export stored in object storage.
type Record struct {
	ID        uuid.UUID `json:"id"`
	Format    string    `json:"format"`
	Bucket    string    `json:"-"`
	ObjectKey string    `json:"objectKey"`
	SizeBytes int64     `json:"sizeBytes"`
	Contracts int       `json:"contracts"`
	Customer  string    `json:"customer"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store keeps track of archived exports.
type Store interface {
	Create(ctx context.Context, rec Record) error
	GetByID(ctx context.Context, id uuid.UUID) (Record, error)
	List(ctx context.Context, limit int) ([]Record, error)
}

// Repository provides data access for archived exports.
type Repository struct {
	pool *pgxpool.Pool
}

var _ Store = (*Repository)(nil)

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create stores an export record.
func (r *Repository) Create(ctx context.Context, rec Record) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO comparison_exports (id, format, bucket, object_key, size_bytes, contracts, customer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.Format, rec.Bucket, rec.ObjectKey, rec.SizeBytes, rec.Contracts, rec.Customer, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert comparison export: %w", err)
	}
	return nil
}

// GetByID returns one export record.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Record, error) {
	var rec Record
	err := r.pool.QueryRow(ctx, `
		SELECT id, format, bucket, object_key, size_bytes, contracts, customer, created_at
		FROM comparison_exports
		WHERE id = $1`, id).Scan(
		&rec.ID, &rec.Format, &rec.Bucket, &rec.ObjectKey, &rec.SizeBytes, &rec.Contracts, &rec.Customer, &rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, apperr.NotFound("export not found")
	}
	if err != nil {
		return Record{}, fmt.Errorf("get comparison export: %w", err)
	}
	return rec, nil
}

// List returns the most recent export records.
func (r *Repository) List(ctx context.Context, limit int) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, format, bucket, object_key, size_bytes, contracts, customer, created_at
		FROM comparison_exports
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list comparison exports: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID, &rec.Format, &rec.Bucket, &rec.ObjectKey, &rec.SizeBytes, &rec.Contracts, &rec.Customer, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan comparison export: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comparison exports: %w", err)
	}
	return records, nil
}

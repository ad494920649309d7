package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"energiebroker_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const contractNotFoundMessage = "contract not found"

const contractColumns = `
	c.id, c.supplier_id, s.name, c.name, c.model,
	c.rate_single, c.rate_normal, c.rate_off_peak, c.rate_gas,
	c.markup_electricity, c.markup_gas, c.markup_feed_in,
	c.standing_electricity_monthly, c.standing_gas_monthly, c.feed_in_compensation,
	c.min_electricity, c.min_gas, c.consumption_segment, c.audience, c.visible_with_feed_in,
	c.recommended, c.active, c.sort_order, c.created_at, c.updated_at, c.updated_by`

// Repo implements Repository on PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

var _ Repository = (*Repo)(nil)

// New creates a new contracts repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// List returns contracts in catalog order.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Contract, error) {
	where := []string{"TRUE"}
	args := []any{}

	if params.ActiveOnly {
		where = append(where, "c.active")
	}
	if params.Model != "" {
		args = append(args, params.Model)
		where = append(where, fmt.Sprintf("c.model = $%d", len(args)))
	}
	if params.Audience != "" {
		args = append(args, params.Audience)
		where = append(where, fmt.Sprintf("(c.audience = $%d OR c.audience = 'both')", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM contracts c
		JOIN suppliers s ON s.id = c.supplier_id
		WHERE %s
		ORDER BY c.sort_order ASC, c.name ASC`, contractColumns, strings.Join(where, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	items := make([]Contract, 0)
	for rows.Next() {
		item, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contracts: %w", err)
	}
	return items, nil
}

// GetByID returns one contract.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Contract, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM contracts c
		JOIN suppliers s ON s.id = c.supplier_id
		WHERE c.id = $1`, contractColumns)

	item, err := scanContract(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contract{}, apperr.NotFound(contractNotFoundMessage)
		}
		return Contract{}, fmt.Errorf("get contract by id: %w", err)
	}
	return item, nil
}

// Create inserts a contract, creating the supplier on first use.
func (r *Repo) Create(ctx context.Context, params ContractParams) (Contract, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Contract{}, fmt.Errorf("begin create contract: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	supplierID, err := upsertSupplier(ctx, tx, params.Supplier)
	if err != nil {
		return Contract{}, err
	}

	var id uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO contracts (
			supplier_id, name, model,
			rate_single, rate_normal, rate_off_peak, rate_gas,
			markup_electricity, markup_gas, markup_feed_in,
			standing_electricity_monthly, standing_gas_monthly, feed_in_compensation,
			min_electricity, min_gas, consumption_segment, audience, visible_with_feed_in,
			recommended, sort_order, updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING id`,
		append([]any{supplierID}, paramArgs(params)...)...,
	).Scan(&id)
	if err != nil {
		return Contract{}, fmt.Errorf("create contract: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Contract{}, fmt.Errorf("commit create contract: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Update replaces every mutable field of a contract.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, params ContractParams) (Contract, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Contract{}, fmt.Errorf("begin update contract: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	supplierID, err := upsertSupplier(ctx, tx, params.Supplier)
	if err != nil {
		return Contract{}, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE contracts SET
			supplier_id = $1, name = $2, model = $3,
			rate_single = $4, rate_normal = $5, rate_off_peak = $6, rate_gas = $7,
			markup_electricity = $8, markup_gas = $9, markup_feed_in = $10,
			standing_electricity_monthly = $11, standing_gas_monthly = $12, feed_in_compensation = $13,
			min_electricity = $14, min_gas = $15, consumption_segment = $16, audience = $17,
			visible_with_feed_in = $18, recommended = $19, sort_order = $20, updated_by = $21,
			updated_at = now()
		WHERE id = $22`,
		append(append([]any{supplierID}, paramArgs(params)...), id)...,
	)
	if err != nil {
		return Contract{}, fmt.Errorf("update contract: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Contract{}, apperr.NotFound(contractNotFoundMessage)
	}

	if err := tx.Commit(ctx); err != nil {
		return Contract{}, fmt.Errorf("commit update contract: %w", err)
	}
	return r.GetByID(ctx, id)
}

// SetActive shows or hides a contract in the catalog.
func (r *Repo) SetActive(ctx context.Context, id uuid.UUID, active bool, updatedBy string) (Contract, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contracts SET active = $2, updated_by = $3, updated_at = now()
		WHERE id = $1`, id, active, updatedBy)
	if err != nil {
		return Contract{}, fmt.Errorf("set contract active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Contract{}, apperr.NotFound(contractNotFoundMessage)
	}
	return r.GetByID(ctx, id)
}

func upsertSupplier(ctx context.Context, tx pgx.Tx, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `
		INSERT INTO suppliers (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, strings.TrimSpace(name)).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert supplier: %w", err)
	}
	return id, nil
}

func paramArgs(p ContractParams) []any {
	return []any{
		p.Name, p.Model,
		p.RateSingle, p.RateNormal, p.RateOffPeak, p.RateGas,
		p.MarkupElectricity, p.MarkupGas, p.MarkupFeedIn,
		p.StandingElectricityMonthly, p.StandingGasMonthly, p.FeedInCompensation,
		p.MinElectricity, p.MinGas, p.ConsumptionSegment, p.Audience, p.VisibleWithFeedIn,
		p.Recommended, p.SortOrder, nullableString(p.UpdatedBy),
	}
}

func nullableString(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func scanContract(row pgx.Row) (Contract, error) {
	var c Contract
	err := row.Scan(
		&c.ID, &c.SupplierID, &c.Supplier, &c.Name, &c.Model,
		&c.RateSingle, &c.RateNormal, &c.RateOffPeak, &c.RateGas,
		&c.MarkupElectricity, &c.MarkupGas, &c.MarkupFeedIn,
		&c.StandingElectricityMonthly, &c.StandingGasMonthly, &c.FeedInCompensation,
		&c.MinElectricity, &c.MinGas, &c.ConsumptionSegment, &c.Audience, &c.VisibleWithFeedIn,
		&c.Recommended, &c.Active, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt, &c.UpdatedBy,
	)
	return c, err
}

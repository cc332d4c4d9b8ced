package order

import (
	"context"
	"errors"

	"storefront-bff/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Upsert(ctx context.Context, in UpsertInput) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO orders (platform_id, customer_id, total_cents, currency, status, placed_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (platform_id) DO UPDATE SET status = EXCLUDED.status
RETURNING id::text, (xmax = 0) AS inserted
`
	var orderID string
	var inserted bool
	if err := tx.QueryRow(ctx, q,
		in.PlatformID, in.CustomerID, in.Total.CentAmount, in.Total.CurrencyCode, in.Status, in.PlacedAt,
	).Scan(&orderID, &inserted); err != nil {
		return nil, err
	}

	// Lines are written only on first delivery; re-delivered events carry
	// the same lines and must not duplicate them.
	if inserted {
		for _, line := range in.Lines {
			if _, err := tx.Exec(ctx, `
INSERT INTO order_lines (order_id, variant_id, title, quantity, unit_price_cents, currency)
VALUES ($1, $2, $3, $4, $5, $6)
`, orderID, line.VariantID, line.Title, line.Quantity, line.UnitPrice.CentAmount, line.UnitPrice.CurrencyCode); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, in.CustomerID, orderID)
}

func (r *postgresRepo) GetByID(ctx context.Context, customerID, id string) (*domain.Order, error) {
	const q = `
SELECT id::text, platform_id, customer_id, total_cents, currency, status, placed_at
FROM orders
WHERE customer_id = $1 AND id = $2
`
	var o domain.Order
	if err := r.pool.QueryRow(ctx, q, customerID, id).Scan(
		&o.ID,
		&o.PlatformID,
		&o.CustomerID,
		&o.TotalAmount.CentAmount,
		&o.TotalAmount.CurrencyCode,
		&o.Status,
		&o.PlacedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	lines, err := r.fetchLines(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]domain.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const q = `
SELECT id::text, platform_id, customer_id, total_cents, currency, status, placed_at
FROM orders
WHERE customer_id = $1
ORDER BY placed_at DESC
LIMIT $2 OFFSET $3
`
	rows, err := r.pool.Query(ctx, q, customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID,
			&o.PlatformID,
			&o.CustomerID,
			&o.TotalAmount.CentAmount,
			&o.TotalAmount.CurrencyCode,
			&o.Status,
			&o.PlacedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		lines, err := r.fetchLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}
	return orders, nil
}

func (r *postgresRepo) fetchLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	const q = `
SELECT id::text, order_id::text, variant_id, title, quantity, unit_price_cents, currency
FROM order_lines
WHERE order_id = $1
ORDER BY created_at ASC
`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(
			&line.ID,
			&line.OrderID,
			&line.VariantID,
			&line.Title,
			&line.Quantity,
			&line.UnitPrice.CentAmount,
			&line.UnitPrice.CurrencyCode,
		); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

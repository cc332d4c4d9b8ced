package order

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"storefront-bff/internal/domain"
	"storefront-bff/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
)

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	if err := migrate.Apply(ctx, dsn); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE order_lines, orders RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func sampleInput(platformID, customerID string) UpsertInput {
	return UpsertInput{
		PlatformID: platformID,
		CustomerID: customerID,
		Total:      domain.Money{CentAmount: 14997, CurrencyCode: "USD"},
		Status:     domain.OrderStatusConfirmed,
		PlacedAt:   time.Now().UTC().Truncate(time.Second),
		Lines: []LineInput{
			{VariantID: "var-1", Title: "Linen Shirt", Quantity: 3, UnitPrice: domain.Money{CentAmount: 4999, CurrencyCode: "USD"}},
		},
	}
}

func TestUpsertIntegrationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)
	first, err := repo.Upsert(ctx, sampleInput("plat-1", "cust-1"))
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if len(first.Lines) != 1 || first.Lines[0].Quantity != 3 {
		t.Fatalf("unexpected lines: %+v", first.Lines)
	}

	in := sampleInput("plat-1", "cust-1")
	in.Status = domain.OrderStatusFulfilled
	second, err := repo.Upsert(ctx, in)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("duplicate event created a second order: %s vs %s", first.ID, second.ID)
	}
	if second.Status != domain.OrderStatusFulfilled {
		t.Fatalf("status not updated, got %s", second.Status)
	}
	if len(second.Lines) != 1 {
		t.Fatalf("re-delivery duplicated lines: %d", len(second.Lines))
	}
}

func TestListByCustomerIntegration(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)
	for i, platformID := range []string{"plat-a", "plat-b"} {
		in := sampleInput(platformID, "cust-1")
		in.PlacedAt = in.PlacedAt.Add(time.Duration(i) * time.Minute)
		if _, err := repo.Upsert(ctx, in); err != nil {
			t.Fatalf("upsert %s: %v", platformID, err)
		}
	}
	if _, err := repo.Upsert(ctx, sampleInput("plat-c", "cust-2")); err != nil {
		t.Fatalf("upsert plat-c: %v", err)
	}

	orders, err := repo.ListByCustomer(ctx, "cust-1", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].PlatformID != "plat-b" {
		t.Fatalf("expected newest first, got %s", orders[0].PlatformID)
	}

	if _, err := repo.GetByID(ctx, "cust-2", orders[0].ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected cross-customer read to be not found, got %v", err)
	}
}

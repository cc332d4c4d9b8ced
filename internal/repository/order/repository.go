package order

import (
	"context"
	"time"

	"storefront-bff/internal/domain"
)

// UpsertInput carries one mirrored platform order. PlatformID is the
// idempotency key: re-delivered events update in place.
type UpsertInput struct {
	PlatformID string
	CustomerID string
	Total      domain.Money
	Status     string
	PlacedAt   time.Time
	Lines      []LineInput
}

type LineInput struct {
	VariantID string
	Title     string
	Quantity  int
	UnitPrice domain.Money
}

type Repository interface {
	Upsert(ctx context.Context, in UpsertInput) (*domain.Order, error)
	GetByID(ctx context.Context, customerID, id string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]domain.Order, error)
}

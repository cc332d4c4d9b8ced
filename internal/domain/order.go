package domain

import "time"

// Order is the read model for a completed platform order mirrored into the
// local database. This service never writes orders from the cart path; the
// mirror consumer is the only writer.
type Order struct {
	ID          string      `json:"id"`
	PlatformID  string      `json:"platformId"`
	CustomerID  string      `json:"customerId"`
	TotalAmount Money       `json:"totalAmount"`
	Status      string      `json:"status"`
	PlacedAt    time.Time   `json:"placedAt"`
	Lines       []OrderLine `json:"lines,omitempty"`
}

// OrderLine is one purchased line within a mirrored order.
type OrderLine struct {
	ID        string `json:"id"`
	OrderID   string `json:"orderId"`
	VariantID string `json:"variantId"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice Money  `json:"unitPrice"`
}

const (
	OrderStatusConfirmed = "confirmed"
	OrderStatusFulfilled = "fulfilled"
	OrderStatusRefunded  = "refunded"
)

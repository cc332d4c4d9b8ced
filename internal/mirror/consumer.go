package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"storefront-bff/internal/domain"
	orderrepo "storefront-bff/internal/repository/order"
	"github.com/segmentio/kafka-go"
)

// OrderWriter is the slice of the order repository the consumer needs.
type OrderWriter interface {
	Upsert(ctx context.Context, in orderrepo.UpsertInput) (*domain.Order, error)
}

// OrderCompletedEvent is the platform's order-completion payload. Amounts
// arrive as cents; the platform owns all money arithmetic.
type OrderCompletedEvent struct {
	OrderID    string      `json:"order_id"`
	CustomerID string      `json:"customer_id"`
	TotalCents int64       `json:"total_cents"`
	Currency   string      `json:"currency"`
	PlacedAt   time.Time   `json:"placed_at"`
	LineItems  []eventLine `json:"line_items"`
}

type eventLine struct {
	VariantID      string `json:"variant_id"`
	Title          string `json:"title"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer mirrors completed platform orders into the local read model.
// It is the only writer of the orders tables; the cart layer never touches
// them.
type Consumer struct {
	writer  OrderWriter
	reader  messageReader
	logger  *log.Logger
	backoff time.Duration
}

func NewConsumer(writer OrderWriter, logger *log.Logger, brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6,
	})
	return &Consumer{writer: writer, reader: reader, logger: logger, backoff: time.Second}
}

// Run consumes until the context is cancelled. Read failures (broker
// down, rebalance) pause for the backoff before the next attempt.
func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			c.logger.Printf("read message: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.backoff):
			}
			continue
		}
		if err := c.handle(ctx, m.Value); err != nil {
			// Malformed or failing events are logged and skipped; upserts
			// are idempotent so a later re-delivery is safe.
			c.logger.Printf("handle message at offset %d: %v", m.Offset, err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func (c *Consumer) handle(ctx context.Context, value []byte) error {
	var event OrderCompletedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("parse event: %w", err)
	}
	if event.OrderID == "" || event.CustomerID == "" {
		return fmt.Errorf("event missing order_id or customer_id")
	}

	currency := event.Currency
	if currency == "" {
		currency = "USD"
	}
	placedAt := event.PlacedAt
	if placedAt.IsZero() {
		placedAt = time.Now().UTC()
	}

	lines := make([]orderrepo.LineInput, len(event.LineItems))
	for i, item := range event.LineItems {
		lines[i] = orderrepo.LineInput{
			VariantID: item.VariantID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: domain.Money{CentAmount: item.UnitPriceCents, CurrencyCode: currency},
		}
	}

	order, err := c.writer.Upsert(ctx, orderrepo.UpsertInput{
		PlatformID: event.OrderID,
		CustomerID: event.CustomerID,
		Total:      domain.Money{CentAmount: event.TotalCents, CurrencyCode: currency},
		Status:     domain.OrderStatusConfirmed,
		PlacedAt:   placedAt,
		Lines:      lines,
	})
	if err != nil {
		return fmt.Errorf("upsert order %s: %w", event.OrderID, err)
	}

	c.logger.Printf("mirrored order %s for customer %s", order.PlatformID, order.CustomerID)
	return nil
}

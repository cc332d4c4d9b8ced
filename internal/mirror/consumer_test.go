package mirror

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"storefront-bff/internal/domain"
	orderrepo "storefront-bff/internal/repository/order"
	"github.com/segmentio/kafka-go"
)

type stubWriter struct {
	lastInput orderrepo.UpsertInput
	calls     int
	err       error
}

func (s *stubWriter) Upsert(_ context.Context, in orderrepo.UpsertInput) (*domain.Order, error) {
	s.calls++
	s.lastInput = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Order{ID: "o-1", PlatformID: in.PlatformID, CustomerID: in.CustomerID}, nil
}

func testConsumer(writer OrderWriter) *Consumer {
	return &Consumer{
		writer: writer,
		logger: log.New(io.Discard, "", 0),
	}
}

type failingReader struct {
	mu    sync.Mutex
	calls int
}

func (r *failingReader) ReadMessage(context.Context) (kafka.Message, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return kafka.Message{}, errors.New("broker unavailable")
}

func (r *failingReader) Close() error { return nil }

func (r *failingReader) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestRunBacksOffOnPersistentReadErrors(t *testing.T) {
	reader := &failingReader{}
	c := &Consumer{
		writer:  &stubWriter{},
		reader:  reader,
		logger:  log.New(io.Discard, "", 0),
		backoff: 20 * time.Millisecond,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not stop on context cancellation")
	}
	if got := reader.count(); got == 0 || got > 10 {
		t.Fatalf("expected a few paced read attempts, got %d", got)
	}
}

func TestHandleMirrorsOrder(t *testing.T) {
	writer := &stubWriter{}
	c := testConsumer(writer)

	payload := `{
		"order_id": "plat-42",
		"customer_id": "cust-7",
		"total_cents": 14997,
		"currency": "EUR",
		"placed_at": "2026-08-01T10:30:00Z",
		"line_items": [
			{"variant_id": "var-1", "title": "Linen Shirt", "quantity": 3, "unit_price_cents": 4999}
		]
	}`
	if err := c.handle(context.Background(), []byte(payload)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := writer.lastInput
	if in.PlatformID != "plat-42" || in.CustomerID != "cust-7" {
		t.Fatalf("unexpected input: %+v", in)
	}
	if in.Total.CentAmount != 14997 || in.Total.CurrencyCode != "EUR" {
		t.Fatalf("unexpected total: %+v", in.Total)
	}
	if in.Status != domain.OrderStatusConfirmed {
		t.Fatalf("unexpected status %q", in.Status)
	}
	want := time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC)
	if !in.PlacedAt.Equal(want) {
		t.Fatalf("unexpected placedAt %v", in.PlacedAt)
	}
	if len(in.Lines) != 1 || in.Lines[0].UnitPrice.CentAmount != 4999 || in.Lines[0].UnitPrice.CurrencyCode != "EUR" {
		t.Fatalf("unexpected lines: %+v", in.Lines)
	}
}

func TestHandleDefaultsCurrencyAndPlacedAt(t *testing.T) {
	writer := &stubWriter{}
	c := testConsumer(writer)

	if err := c.handle(context.Background(), []byte(`{"order_id": "plat-1", "customer_id": "cust-1"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if writer.lastInput.Total.CurrencyCode != "USD" {
		t.Fatalf("expected USD default, got %q", writer.lastInput.Total.CurrencyCode)
	}
	if writer.lastInput.PlacedAt.IsZero() {
		t.Fatalf("expected placedAt default")
	}
}

func TestHandleRejectsMalformedEvents(t *testing.T) {
	writer := &stubWriter{}
	c := testConsumer(writer)

	if err := c.handle(context.Background(), []byte(`{not json`)); err == nil {
		t.Fatalf("expected parse error")
	}
	if err := c.handle(context.Background(), []byte(`{"customer_id": "cust-1"}`)); err == nil {
		t.Fatalf("expected missing order_id error")
	}
	if writer.calls != 0 {
		t.Fatalf("writer must not be called for bad events, got %d calls", writer.calls)
	}
}

func TestHandlePropagatesWriterError(t *testing.T) {
	writer := &stubWriter{err: errors.New("db down")}
	c := testConsumer(writer)

	err := c.handle(context.Background(), []byte(`{"order_id": "plat-1", "customer_id": "cust-1"}`))
	if err == nil {
		t.Fatalf("expected error")
	}
}

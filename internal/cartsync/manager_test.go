package cartsync

import (
	"context"
	"testing"

	"storefront-bff/internal/cartid"
)

func TestManagerReturnsSameStorePerDevice(t *testing.T) {
	m := NewManager(&stubClient{}, cartid.NewMemory(), discardLogger())

	a := m.StoreFor("device-a")
	if a == nil {
		t.Fatalf("expected store")
	}
	if m.StoreFor("device-a") != a {
		t.Fatalf("expected the same store for the same device")
	}
	if m.StoreFor("device-b") == a {
		t.Fatalf("expected distinct stores per device")
	}
}

func TestManagerEvictRebuildsFromPersistedID(t *testing.T) {
	ids := cartid.NewMemory()
	if err := ids.Set(context.Background(), "device-a", "cart-9"); err != nil {
		t.Fatalf("seed id: %v", err)
	}
	client := &stubClient{retrieveResult: cartWith("cart-9")}
	m := NewManager(client, ids, discardLogger())

	first := m.StoreFor("device-a")
	m.Evict("device-a")
	second := m.StoreFor("device-a")
	if first == second {
		t.Fatalf("expected a fresh store after evict")
	}
	got, err := second.EnsureHydrated(context.Background())
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if got == nil || got.ID != "cart-9" {
		t.Fatalf("expected rebuilt store to hydrate cart-9, got %+v", got)
	}
}

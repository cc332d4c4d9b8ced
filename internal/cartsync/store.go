package cartsync

import (
	"context"
	"errors"
	"log"
	"sync"

	"storefront-bff/internal/cartid"
	"storefront-bff/internal/domain"
	"storefront-bff/internal/shopify"
)

// RemoteClient is the slice of the platform cart API the store consumes.
// Every call returns a complete cart snapshot, never a delta. Update and
// remove are keyed by the platform's own line ids; the store resolves
// those from its latest snapshot, keeping its public API variant-keyed.
type RemoteClient interface {
	CreateCart(ctx context.Context, lines []shopify.AddLine) (*domain.Cart, error)
	AddLines(ctx context.Context, cartID string, lines []shopify.AddLine) (*domain.Cart, error)
	UpdateLines(ctx context.Context, cartID string, updates []shopify.LineUpdate) (*domain.Cart, error)
	RemoveLines(ctx context.Context, cartID string, lineIDs []string) (*domain.Cart, error)
	RetrieveCart(ctx context.Context, cartID string) (*domain.Cart, error)
}

var (
	ErrInvalidVariant  = errors.New("variant id required")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Store holds the canonical local view of one device's cart and mediates
// every mutation against the remote cart API.
//
// The local cart is only ever replaced wholesale with a server snapshot,
// never patched, so it cannot drift from server-computed totals. A second
// mutation on a variant that is already in flight is rejected with
// domain.ErrBusy rather than queued.
type Store struct {
	client   RemoteClient
	ids      cartid.Store
	deviceID string
	logger   *log.Logger

	mu       sync.Mutex
	cart     *domain.Cart
	inFlight map[string]struct{}
	lastErr  error
	hydrated bool
	subs     []func(*domain.Cart)
}

func NewStore(client RemoteClient, ids cartid.Store, deviceID string, logger *log.Logger) *Store {
	return &Store{
		client:   client,
		ids:      ids,
		deviceID: deviceID,
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}
}

// Cart returns a snapshot of the current cart, or nil when the device has
// no cart yet.
func (s *Store) Cart() *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// LastErr returns the error recorded by the most recent failed mutation,
// cleared on the next successful one.
func (s *Store) LastErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// InFlight reports whether a mutation for the variant is unresolved. The
// UI keys its per-line loading state on this.
func (s *Store) InFlight(variantID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[variantID]
	return ok
}

// Subscribe registers fn to be called with a cart snapshot after every
// successful replacement. Callbacks run outside the store lock.
func (s *Store) Subscribe(fn func(*domain.Cart)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// AddItem adds quantity of a variant to the cart, creating the remote cart
// on first use and persisting its id. Rejects with domain.ErrBusy while a
// mutation for the same variant is unresolved.
func (s *Store) AddItem(ctx context.Context, variantID string, quantity int, snap domain.Snapshot) (*domain.Cart, error) {
	if variantID == "" {
		return nil, ErrInvalidVariant
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if err := s.begin(variantID); err != nil {
		return nil, err
	}
	defer s.end(variantID)

	line := shopify.AddLine{VariantID: variantID, Quantity: quantity, Snapshot: snap}

	var (
		next *domain.Cart
		err  error
	)
	if cartID := s.cartID(); cartID == "" {
		next, err = s.client.CreateCart(ctx, []shopify.AddLine{line})
		if err == nil {
			if perr := s.ids.Set(ctx, s.deviceID, next.ID); perr != nil {
				// Cart still works for this session; the id is re-persisted
				// on the next create if this device loses it.
				s.logger.Printf("persist cart id for device %s: %v", s.deviceID, perr)
			}
		}
	} else {
		next, err = s.client.AddLines(ctx, cartID, []shopify.AddLine{line})
	}
	if err != nil {
		s.fail(err)
		return nil, err
	}
	return s.commit(next), nil
}

// UpdateQuantity sets the absolute quantity of a line. A quantity of zero
// or less removes the line, matching the platform's floor semantics.
func (s *Store) UpdateQuantity(ctx context.Context, variantID string, quantity int) (*domain.Cart, error) {
	if variantID == "" {
		return nil, ErrInvalidVariant
	}
	if quantity <= 0 {
		return s.RemoveItem(ctx, variantID)
	}
	if err := s.begin(variantID); err != nil {
		return nil, err
	}
	defer s.end(variantID)

	cartID, lineID := s.lineRef(variantID)
	if cartID == "" || lineID == "" {
		return nil, domain.ErrNotFound
	}
	next, err := s.client.UpdateLines(ctx, cartID, []shopify.LineUpdate{{LineID: lineID, Quantity: quantity}})
	if err != nil {
		s.fail(err)
		return nil, err
	}
	return s.commit(next), nil
}

// RemoveItem removes a line from the cart.
func (s *Store) RemoveItem(ctx context.Context, variantID string) (*domain.Cart, error) {
	if variantID == "" {
		return nil, ErrInvalidVariant
	}
	if err := s.begin(variantID); err != nil {
		return nil, err
	}
	defer s.end(variantID)

	cartID, lineID := s.lineRef(variantID)
	if cartID == "" || lineID == "" {
		return nil, domain.ErrNotFound
	}
	next, err := s.client.RemoveLines(ctx, cartID, []string{lineID})
	if err != nil {
		s.fail(err)
		return nil, err
	}
	return s.commit(next), nil
}

// Hydrate loads the persisted cart id and retrieves the remote cart. A
// persisted id the platform no longer recognizes (expired, or already
// converted to an order) is cleared silently and the store stays empty;
// that is recovery, not an error.
func (s *Store) Hydrate(ctx context.Context) (*domain.Cart, error) {
	cartID, err := s.ids.Get(ctx, s.deviceID)
	if err != nil {
		return nil, err
	}
	if cartID == "" {
		s.markHydrated()
		return s.Cart(), nil
	}

	cart, err := s.client.RetrieveCart(ctx, cartID)
	if errors.Is(err, domain.ErrNotFound) {
		if cerr := s.ids.Clear(ctx, s.deviceID); cerr != nil {
			s.logger.Printf("clear stale cart id for device %s: %v", s.deviceID, cerr)
		}
		s.mu.Lock()
		s.cart = nil
		s.hydrated = true
		s.mu.Unlock()
		return nil, nil
	}
	if err != nil {
		s.fail(err)
		return nil, err
	}
	s.markHydrated()
	return s.commit(cart), nil
}

// EnsureHydrated hydrates on first use and is a cheap snapshot read after
// that. Failed hydrations stay un-hydrated so the next read retries.
func (s *Store) EnsureHydrated(ctx context.Context) (*domain.Cart, error) {
	s.mu.Lock()
	done := s.hydrated
	s.mu.Unlock()
	if done {
		return s.Cart(), nil
	}
	return s.Hydrate(ctx)
}

func (s *Store) begin(variantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inFlight[variantID]; ok {
		return domain.ErrBusy
	}
	s.inFlight[variantID] = struct{}{}
	return nil
}

func (s *Store) end(variantID string) {
	s.mu.Lock()
	delete(s.inFlight, variantID)
	s.mu.Unlock()
}

func (s *Store) cartID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return ""
	}
	return s.cart.ID
}

// lineRef resolves a variant to the cart id and the remote line id from
// the current snapshot. Either is empty when unknown.
func (s *Store) lineRef(variantID string) (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return "", ""
	}
	line := s.cart.Line(variantID)
	if line == nil {
		return s.cart.ID, ""
	}
	return s.cart.ID, line.LineID
}

// commit replaces the whole local cart with the server snapshot and
// notifies subscribers. Returns a defensive copy for the caller.
func (s *Store) commit(cart *domain.Cart) *domain.Cart {
	s.mu.Lock()
	s.cart = cart
	s.lastErr = nil
	subs := make([]func(*domain.Cart), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(cart.Clone())
	}
	return cart.Clone()
}

func (s *Store) fail(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

func (s *Store) markHydrated() {
	s.mu.Lock()
	s.hydrated = true
	s.mu.Unlock()
}

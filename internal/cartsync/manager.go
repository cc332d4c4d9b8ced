package cartsync

import (
	"log"
	"sync"

	"storefront-bff/internal/cartid"
)

// Manager hands out one Store per device token so two tabs on the same
// device share one in-flight set and one cart snapshot.
type Manager struct {
	client RemoteClient
	ids    cartid.Store
	logger *log.Logger

	mu     sync.RWMutex
	stores map[string]*Store
}

func NewManager(client RemoteClient, ids cartid.Store, logger *log.Logger) *Manager {
	return &Manager{
		client: client,
		ids:    ids,
		logger: logger,
		stores: make(map[string]*Store),
	}
}

// StoreFor returns the device's store, creating it lazily.
func (m *Manager) StoreFor(deviceID string) *Store {
	m.mu.RLock()
	store, ok := m.stores[deviceID]
	m.mu.RUnlock()
	if ok {
		return store
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if store, ok := m.stores[deviceID]; ok {
		return store
	}
	store = NewStore(m.client, m.ids, deviceID, m.logger)
	m.stores[deviceID] = store
	return store
}

// Evict drops a device's store; the next access rebuilds and re-hydrates
// it from the persisted id.
func (m *Manager) Evict(deviceID string) {
	m.mu.Lock()
	delete(m.stores, deviceID)
	m.mu.Unlock()
}

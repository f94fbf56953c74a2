package storage

import "sync"

// Fixed keys for guest-scope state, one per kind.
const (
	deviceCartKey      = "ando_cart"
	deviceFavoritesKey = "ando_favorites"
)

// DeviceStore is the local, synchronous key-value store holding guest-scope
// state for one device. Payloads are JSON blobs under fixed keys.
type DeviceStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewDeviceStore returns an empty device store.
func NewDeviceStore() *DeviceStore {
	return &DeviceStore{values: make(map[string][]byte)}
}

func (s *DeviceStore) get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *DeviceStore) put(key string, value []byte) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
}

func (s *DeviceStore) remove(key string) {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
}

package registry

import "sync"

// Slot names for the three independent persistence slots. Each slot
// round-trips one JSON value; the core never reads or writes partial slots.
const (
	SlotOrders  = "orders"
	SlotHistory = "history"
	SlotFiles   = "processed-files"
)

// Store abstracts the persistence backend behind get/set/clear semantics.
type Store interface {
	Get(slot string) (value []byte, found bool, err error)
	Set(slot string, value []byte) error
	Clear() error
	Close() error
}

// MemoryStore is a simple thread-safe map store, used in tests and when no
// durable backend is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(slot string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[slot]
	if !ok {
		return nil, false, nil
	}
	out := append([]byte(nil), v...)
	return out, true, nil
}

func (s *MemoryStore) Set(slot string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[slot] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string][]byte)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

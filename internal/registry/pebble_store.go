package registry

import (
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"
)

// PebbleStore implements Store on PebbleDB. Default durable backend.
type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(dir string) (*PebbleStore, error) {
	d, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleStore{db: d}, nil
}

func (p *PebbleStore) Get(slot string) ([]byte, bool, error) {
	v, closer, err := p.db.Get([]byte(slot))
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("pebble get %s: %w", slot, err)
	}
	out := append([]byte(nil), v...)
	if err := closer.Close(); err != nil {
		return nil, false, fmt.Errorf("pebble close value: %w", err)
	}
	return out, true, nil
}

func (p *PebbleStore) Set(slot string, value []byte) error {
	// Sync on every write: slot updates are rare, user-driven events and
	// must survive an immediate process exit.
	if err := p.db.Set([]byte(slot), value, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set %s: %w", slot, err)
	}
	return nil
}

func (p *PebbleStore) Clear() error {
	it, err := p.db.NewIter(nil)
	if err != nil {
		return fmt.Errorf("pebble iter: %w", err)
	}
	var keys [][]byte
	for it.First(); it.Valid(); it.Next() {
		keys = append(keys, append([]byte(nil), it.Key()...))
	}
	if err := it.Close(); err != nil {
		return fmt.Errorf("pebble iter close: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	wb := p.db.NewBatch()
	for _, k := range keys {
		_ = wb.Delete(k, nil)
	}
	if err := wb.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("pebble clear: %w", err)
	}
	return wb.Close()
}

func (p *PebbleStore) Close() error { return p.db.Close() }

package storage

import (
	"context"
	"sync"
)

// MemStore keeps everything in process memory. It serves tests and
// ephemeral sessions, and can be scripted to fail upcoming saves.
type MemStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	saveErrs []error
	saves    int
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

// FailSaves queues errors returned by the next Save calls, in order.
// A nil entry lets that save succeed.
func (m *MemStore) FailSaves(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErrs = append(m.saveErrs, errs...)
}

// SaveCount reports how many Save calls were attempted, including ones
// that failed.
func (m *MemStore) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *MemStore) Save(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return NewError(KindTransient, "save", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if len(m.saveErrs) > 0 {
		err := m.saveErrs[0]
		m.saveErrs = m.saveErrs[1:]
		if err != nil {
			return err
		}
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, NewError(KindTransient, "load", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (m *MemStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemStore) Close() error { return nil }

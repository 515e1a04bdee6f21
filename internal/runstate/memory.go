package runstate

import (
	"context"
	"sync"
)

// MemoryStore keeps the state in process. It is lost on restart.
type MemoryStore struct {
	mu sync.RWMutex
	st State
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load(ctx context.Context) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st, nil
}

func (m *MemoryStore) Save(ctx context.Context, st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = st
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = State{}
	return nil
}

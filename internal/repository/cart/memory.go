package cart

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

type memoryRepo struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemory returns a process-local Repository.
func NewMemory() Repository {
	return &memoryRepo{records: make(map[string][]byte)}
}

func (r *memoryRepo) Read(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	payload, ok := r.records[key]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func (r *memoryRepo) Write(_ context.Context, key string, payload []byte) error {
	stored := make([]byte, len(payload))
	copy(stored, payload)
	r.mu.Lock()
	r.records[key] = stored
	r.mu.Unlock()
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	delete(r.records, key)
	r.mu.Unlock()
	return nil
}

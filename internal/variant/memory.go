package variant

import (
	"context"
	"sync"
)

// MemoryRepository 是不做持久化的内存实现，生命周期与进程相同
type MemoryRepository struct {
	mu    sync.RWMutex
	names []string
	index map[string]struct{}
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		index: make(map[string]struct{}),
	}
}

func (r *MemoryRepository) Create(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[name]; exists {
		return ErrDuplicateVariant
	}
	r.index[name] = struct{}{}
	r.names = append(r.names, name)
	return nil
}

func (r *MemoryRepository) Exists(_ context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.index[name]
	return exists, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names, nil
}

var _ Repository = (*MemoryRepository)(nil)

package vote

import (
	"context"
	"sync"
)

// MemoryRepository 把投票保存在内存中。
// 投票以值的形式在锁内拷贝，读取方不会看到写了一半的记录。
type MemoryRepository struct {
	mu     sync.RWMutex
	votes  []Vote
	voters map[string]map[string]struct{} // 品种 -> VoterKey 集合
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		voters: make(map[string]map[string]struct{}),
	}
}

func (r *MemoryRepository) Append(_ context.Context, v Vote) error {
	key := VoterKey(v.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	seen, ok := r.voters[v.Variant]
	if !ok {
		seen = make(map[string]struct{})
		r.voters[v.Variant] = seen
	}
	if _, dup := seen[key]; dup {
		return ErrDuplicateVote
	}
	seen[key] = struct{}{}
	r.votes = append(r.votes, v)
	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]Vote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	votes := make([]Vote, len(r.votes))
	copy(votes, r.votes)
	return votes, nil
}

var _ Repository = (*MemoryRepository)(nil)

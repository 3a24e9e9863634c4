package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pickemlabs/confidence-pool/internal/domain/pool"
)

type PoolRepository struct {
	mu    sync.RWMutex
	items map[string]pool.Pool
}

func NewPoolRepository(pools []pool.Pool) *PoolRepository {
	items := make(map[string]pool.Pool, len(pools))
	for _, p := range pools {
		items[p.ID] = p
	}
	return &PoolRepository{items: items}
}

func (r *PoolRepository) GetByID(_ context.Context, id string) (pool.Pool, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return pool.Pool{}, false, nil
	}
	return p, true, nil
}

func (r *PoolRepository) ListBySeason(_ context.Context, season int) ([]pool.Pool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pool.Pool, 0)
	for _, p := range r.items {
		if p.Season == season {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PoolRepository) Create(_ context.Context, p pool.Pool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[p.ID]; exists {
		return nil
	}
	r.items[p.ID] = p
	return nil
}

func (r *PoolRepository) UpdateTieBreaker(_ context.Context, poolID, question string, answer *float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[poolID]
	if !ok {
		return nil
	}
	p.TieBreakerQuestion = question
	p.TieBreakerAnswer = answer
	p.UpdatedAt = time.Now().UTC()
	r.items[poolID] = p
	return nil
}

package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
)

type GameRepository struct {
	mu    sync.RWMutex
	items map[string]game.Game
}

func NewGameRepository(games []game.Game) *GameRepository {
	items := make(map[string]game.Game, len(games))
	for _, g := range games {
		items[g.ID] = g
	}
	return &GameRepository{items: items}
}

func (r *GameRepository) GetByID(_ context.Context, id string) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.items[id]
	if !ok {
		return game.Game{}, false, nil
	}
	return g, true, nil
}

func (r *GameRepository) ListByWeek(ctx context.Context, season, seasonType, week int) ([]game.Game, error) {
	return r.ListByWeekRange(ctx, season, seasonType, week, week)
}

func (r *GameRepository) ListByWeekRange(_ context.Context, season, seasonType, startWeek, endWeek int) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0)
	for _, g := range r.items {
		if g.Season != season || g.SeasonType != seasonType {
			continue
		}
		if g.Week < startWeek || g.Week > endWeek {
			continue
		}
		out = append(out, g)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Week != out[j].Week {
			return out[i].Week < out[j].Week
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *GameRepository) Upsert(_ context.Context, games []game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, g := range games {
		g.Status = game.NormalizeStatus(g.Status)
		r.items[g.ID] = g
	}
	return nil
}

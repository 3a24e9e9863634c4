package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pickemlabs/confidence-pool/internal/domain/score"
)

type scoreWeekKey struct {
	poolID string
	season int
	week   int
}

type ScoreRepository struct {
	mu    sync.RWMutex
	items map[scoreWeekKey][]score.WeeklyScore
}

func NewScoreRepository() *ScoreRepository {
	return &ScoreRepository{items: make(map[scoreWeekKey][]score.WeeklyScore)}
}

func (r *ScoreRepository) ListByPoolWeek(_ context.Context, poolID string, season, week int) ([]score.WeeklyScore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.items[scoreWeekKey{poolID, season, week}]
	return append([]score.WeeklyScore(nil), rows...), nil
}

func (r *ScoreRepository) ListByPoolWeekRange(_ context.Context, poolID string, season, startWeek, endWeek int) ([]score.WeeklyScore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]score.WeeklyScore, 0)
	for week := startWeek; week <= endWeek; week++ {
		out = append(out, r.items[scoreWeekKey{poolID, season, week}]...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Week != out[j].Week {
			return out[i].Week < out[j].Week
		}
		return out[i].Rank < out[j].Rank
	})
	return out, nil
}

func (r *ScoreRepository) ReplaceWeek(_ context.Context, poolID string, season, week int, scores []score.WeeklyScore) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[scoreWeekKey{poolID, season, week}] = append([]score.WeeklyScore(nil), scores...)
	return nil
}

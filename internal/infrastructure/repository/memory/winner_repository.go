package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/winner"
)

type weeklyWinnerKey struct {
	poolID string
	season int
	week   int
}

type WeeklyWinnerRepository struct {
	mu    sync.RWMutex
	items map[weeklyWinnerKey]winner.WeeklyWinner
}

func NewWeeklyWinnerRepository() *WeeklyWinnerRepository {
	return &WeeklyWinnerRepository{items: make(map[weeklyWinnerKey]winner.WeeklyWinner)}
}

func (r *WeeklyWinnerRepository) Get(_ context.Context, poolID string, season, week int) (winner.WeeklyWinner, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.items[weeklyWinnerKey{poolID, season, week}]
	if !ok {
		return winner.WeeklyWinner{}, false, nil
	}
	return w, true, nil
}

func (r *WeeklyWinnerRepository) ListBySeason(ctx context.Context, poolID string, season int) ([]winner.WeeklyWinner, error) {
	return r.ListByWeekRange(ctx, poolID, season, 1, game.MaxWeeksRegularSeason)
}

func (r *WeeklyWinnerRepository) ListByWeekRange(_ context.Context, poolID string, season, startWeek, endWeek int) ([]winner.WeeklyWinner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]winner.WeeklyWinner, 0)
	for key, w := range r.items {
		if key.poolID != poolID || key.season != season {
			continue
		}
		if key.week < startWeek || key.week > endWeek {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out, nil
}

func (r *WeeklyWinnerRepository) Upsert(_ context.Context, w winner.WeeklyWinner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[weeklyWinnerKey{w.PoolID, w.Season, w.Week}] = w
	return nil
}

func (r *WeeklyWinnerRepository) Delete(_ context.Context, poolID string, season, week int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, weeklyWinnerKey{poolID, season, week})
	return nil
}

type periodWinnerKey struct {
	poolID     string
	season     int
	periodName string
}

type PeriodWinnerRepository struct {
	mu    sync.RWMutex
	items map[periodWinnerKey]winner.PeriodWinner
}

func NewPeriodWinnerRepository() *PeriodWinnerRepository {
	return &PeriodWinnerRepository{items: make(map[periodWinnerKey]winner.PeriodWinner)}
}

func (r *PeriodWinnerRepository) Get(_ context.Context, poolID string, season int, periodName string) (winner.PeriodWinner, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.items[periodWinnerKey{poolID, season, periodName}]
	if !ok {
		return winner.PeriodWinner{}, false, nil
	}
	return w, true, nil
}

func (r *PeriodWinnerRepository) ListBySeason(_ context.Context, poolID string, season int) ([]winner.PeriodWinner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]winner.PeriodWinner, 0)
	for key, w := range r.items {
		if key.poolID == poolID && key.season == season {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodName < out[j].PeriodName })
	return out, nil
}

func (r *PeriodWinnerRepository) Upsert(_ context.Context, w winner.PeriodWinner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[periodWinnerKey{w.PoolID, w.Season, w.PeriodName}] = w
	return nil
}

func (r *PeriodWinnerRepository) Delete(_ context.Context, poolID string, season int, periodName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, periodWinnerKey{poolID, season, periodName})
	return nil
}

type seasonWinnerKey struct {
	poolID string
	season int
}

type SeasonWinnerRepository struct {
	mu    sync.RWMutex
	items map[seasonWinnerKey]winner.SeasonWinner
}

func NewSeasonWinnerRepository() *SeasonWinnerRepository {
	return &SeasonWinnerRepository{items: make(map[seasonWinnerKey]winner.SeasonWinner)}
}

func (r *SeasonWinnerRepository) Get(_ context.Context, poolID string, season int) (winner.SeasonWinner, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.items[seasonWinnerKey{poolID, season}]
	if !ok {
		return winner.SeasonWinner{}, false, nil
	}
	return w, true, nil
}

func (r *SeasonWinnerRepository) Upsert(_ context.Context, w winner.SeasonWinner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[seasonWinnerKey{w.PoolID, w.Season}] = w
	return nil
}

func (r *SeasonWinnerRepository) Delete(_ context.Context, poolID string, season int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, seasonWinnerKey{poolID, season})
	return nil
}

package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pickemlabs/confidence-pool/internal/domain/tiebreak"
)

type tiebreakKey struct {
	participantID string
	poolID        string
	season        int
	seasonType    int
	week          int
}

type TieBreakRepository struct {
	mu    sync.RWMutex
	items map[tiebreakKey]tiebreak.Answer
}

func NewTieBreakRepository(answers []tiebreak.Answer) *TieBreakRepository {
	items := make(map[tiebreakKey]tiebreak.Answer, len(answers))
	for _, a := range answers {
		items[tiebreakKey{a.ParticipantID, a.PoolID, a.Season, a.SeasonType, a.Week}] = a
	}
	return &TieBreakRepository{items: items}
}

func (r *TieBreakRepository) Get(_ context.Context, participantID, poolID string, season, seasonType, week int) (tiebreak.Answer, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[tiebreakKey{participantID, poolID, season, seasonType, week}]
	if !ok {
		return tiebreak.Answer{}, false, nil
	}
	return a, true, nil
}

func (r *TieBreakRepository) ListByPoolWeek(_ context.Context, poolID string, season, seasonType, week int) ([]tiebreak.Answer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tiebreak.Answer, 0)
	for key, a := range r.items {
		if key.poolID != poolID || key.season != season || key.seasonType != seasonType || key.week != week {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ParticipantID < out[j].ParticipantID })
	return out, nil
}

func (r *TieBreakRepository) Upsert(_ context.Context, a tiebreak.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[tiebreakKey{a.ParticipantID, a.PoolID, a.Season, a.SeasonType, a.Week}] = a
	return nil
}

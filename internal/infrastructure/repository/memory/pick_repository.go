package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pickemlabs/confidence-pool/internal/domain/pick"
)

type pickKey struct {
	participantID string
	poolID        string
	gameID        string
}

type PickRepository struct {
	mu    sync.RWMutex
	items map[pickKey]pick.Pick
}

func NewPickRepository(picks []pick.Pick) *PickRepository {
	items := make(map[pickKey]pick.Pick, len(picks))
	for _, p := range picks {
		items[pickKey{p.ParticipantID, p.PoolID, p.GameID}] = p
	}
	return &PickRepository{items: items}
}

func (r *PickRepository) ListByPoolAndGames(_ context.Context, poolID string, gameIDs []string) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := gameIDSet(gameIDs)
	out := make([]pick.Pick, 0)
	for key, p := range r.items {
		if key.poolID != poolID {
			continue
		}
		if _, ok := wanted[key.gameID]; !ok {
			continue
		}
		out = append(out, p)
	}
	sortPicks(out)
	return out, nil
}

func (r *PickRepository) ListByParticipantAndGames(_ context.Context, participantID, poolID string, gameIDs []string) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := gameIDSet(gameIDs)
	out := make([]pick.Pick, 0)
	for key, p := range r.items {
		if key.participantID != participantID || key.poolID != poolID {
			continue
		}
		if _, ok := wanted[key.gameID]; !ok {
			continue
		}
		out = append(out, p)
	}
	sortPicks(out)
	return out, nil
}

func (r *PickRepository) Upsert(_ context.Context, picks []pick.Pick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range picks {
		r.items[pickKey{p.ParticipantID, p.PoolID, p.GameID}] = p
	}
	return nil
}

func (r *PickRepository) DeleteByParticipantAndGames(_ context.Context, participantID, poolID string, gameIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, gameID := range gameIDs {
		delete(r.items, pickKey{participantID, poolID, gameID})
	}
	return nil
}

func gameIDSet(gameIDs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(gameIDs))
	for _, id := range gameIDs {
		set[id] = struct{}{}
	}
	return set
}

func sortPicks(picks []pick.Pick) {
	sort.Slice(picks, func(i, j int) bool {
		if picks[i].ParticipantID != picks[j].ParticipantID {
			return picks[i].ParticipantID < picks[j].ParticipantID
		}
		return picks[i].GameID < picks[j].GameID
	})
}

package cache

import (
	"context"
	"strconv"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/participant"
	"github.com/pickemlabs/confidence-pool/internal/domain/pool"
	"github.com/pickemlabs/confidence-pool/internal/domain/team"
	basecache "github.com/pickemlabs/confidence-pool/internal/platform/cache"
)

// Read-through wrappers over the persistence repositories. Writes pass
// through to the next repository and drop the affected keys so readers
// never serve rows older than the TTL after a mutation.

type PoolRepository struct {
	next  pool.Repository
	cache *basecache.Store
}

func NewPoolRepository(next pool.Repository, cache *basecache.Store) *PoolRepository {
	return &PoolRepository{next: next, cache: cache}
}

func (r *PoolRepository) GetByID(ctx context.Context, id string) (pool.Pool, bool, error) {
	key := "pool:id:" + id
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedPoolByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return pool.Pool{}, false, err
	}

	cached, _ := v.(cachedPoolByID)
	return cached.value, cached.exists, nil
}

func (r *PoolRepository) ListBySeason(ctx context.Context, season int) ([]pool.Pool, error) {
	key := "pool:season:" + strconv.Itoa(season)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListBySeason(ctx, season)
		if err != nil {
			return nil, err
		}
		return append([]pool.Pool(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]pool.Pool)
	return append([]pool.Pool(nil), items...), nil
}

func (r *PoolRepository) Create(ctx context.Context, p pool.Pool) error {
	if err := r.next.Create(ctx, p); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "pool:")
	return nil
}

func (r *PoolRepository) UpdateTieBreaker(ctx context.Context, poolID, question string, answer *float64) error {
	if err := r.next.UpdateTieBreaker(ctx, poolID, question, answer); err != nil {
		return err
	}
	r.cache.Delete(ctx, "pool:id:"+poolID)
	r.cache.DeletePrefix(ctx, "pool:season:")
	return nil
}

type cachedPoolByID struct {
	value  pool.Pool
	exists bool
}

type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	v, err := r.cache.GetOrLoad(ctx, "team:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]team.Team(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]team.Team)
	return append([]team.Team(nil), items...), nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	key := "team:id:" + teamID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, teamID)
		if err != nil {
			return nil, err
		}
		return cachedTeamByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(cachedTeamByID)
	return cached.value, cached.exists, nil
}

func (r *TeamRepository) UpsertMany(ctx context.Context, teams []team.Team) error {
	if err := r.next.UpsertMany(ctx, teams); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "team:")
	return nil
}

type cachedTeamByID struct {
	value  team.Team
	exists bool
}

type GameRepository struct {
	next  game.Repository
	cache *basecache.Store
}

func NewGameRepository(next game.Repository, cache *basecache.Store) *GameRepository {
	return &GameRepository{next: next, cache: cache}
}

func (r *GameRepository) GetByID(ctx context.Context, id string) (game.Game, bool, error) {
	key := "game:id:" + id
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedGameByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return game.Game{}, false, err
	}

	cached, _ := v.(cachedGameByID)
	return cached.value, cached.exists, nil
}

func (r *GameRepository) ListByWeek(ctx context.Context, season, seasonType, week int) ([]game.Game, error) {
	key := gameWeekKey(season, seasonType, week, week)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByWeek(ctx, season, seasonType, week)
		if err != nil {
			return nil, err
		}
		return append([]game.Game(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]game.Game)
	return append([]game.Game(nil), items...), nil
}

func (r *GameRepository) ListByWeekRange(ctx context.Context, season, seasonType, startWeek, endWeek int) ([]game.Game, error) {
	key := gameWeekKey(season, seasonType, startWeek, endWeek)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByWeekRange(ctx, season, seasonType, startWeek, endWeek)
		if err != nil {
			return nil, err
		}
		return append([]game.Game(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]game.Game)
	return append([]game.Game(nil), items...), nil
}

func (r *GameRepository) Upsert(ctx context.Context, games []game.Game) error {
	if err := r.next.Upsert(ctx, games); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "game:")
	return nil
}

func gameWeekKey(season, seasonType, startWeek, endWeek int) string {
	return "game:weeks:" + strconv.Itoa(season) + ":" + strconv.Itoa(seasonType) + ":" +
		strconv.Itoa(startWeek) + "-" + strconv.Itoa(endWeek)
}

type cachedGameByID struct {
	value  game.Game
	exists bool
}

type ParticipantRepository struct {
	next  participant.Repository
	cache *basecache.Store
}

func NewParticipantRepository(next participant.Repository, cache *basecache.Store) *ParticipantRepository {
	return &ParticipantRepository{next: next, cache: cache}
}

func (r *ParticipantRepository) GetByID(ctx context.Context, id string) (participant.Participant, bool, error) {
	key := "participant:id:" + id
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedParticipantByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return participant.Participant{}, false, err
	}

	cached, _ := v.(cachedParticipantByID)
	return cached.value, cached.exists, nil
}

func (r *ParticipantRepository) ListActiveByPool(ctx context.Context, poolID string) ([]participant.Participant, error) {
	key := "participant:pool:" + poolID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListActiveByPool(ctx, poolID)
		if err != nil {
			return nil, err
		}
		return append([]participant.Participant(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]participant.Participant)
	return append([]participant.Participant(nil), items...), nil
}

func (r *ParticipantRepository) Upsert(ctx context.Context, p participant.Participant) error {
	if err := r.next.Upsert(ctx, p); err != nil {
		return err
	}
	r.cache.Delete(ctx, "participant:id:"+p.ID)
	r.cache.Delete(ctx, "participant:pool:"+p.PoolID)
	return nil
}

type cachedParticipantByID struct {
	value  participant.Participant
	exists bool
}

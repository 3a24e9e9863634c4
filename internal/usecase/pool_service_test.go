package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pickemlabs/confidence-pool/internal/domain/pool"
	"github.com/pickemlabs/confidence-pool/internal/infrastructure/repository/memory"
)

type staticIDGenerator struct {
	id string
}

func (g staticIDGenerator) NewID() (string, error) {
	return g.id, nil
}

func newPoolService(pools []pool.Pool) *PoolService {
	return NewPoolService(
		memory.NewPoolRepository(pools),
		memory.NewParticipantRepository(poolRoster()),
		staticIDGenerator{id: "generated-id"},
	)
}

func TestPoolCreate_DefaultsTypeAndMethod(t *testing.T) {
	svc := newPoolService(nil)

	created, err := svc.Create(context.Background(), CreatePoolInput{
		ID:     "pool-9",
		Name:   "  Family Pool  ",
		Season: 2026,
	})
	require.NoError(t, err)

	require.Equal(t, "Family Pool", created.Name)
	require.Equal(t, pool.TypeNormal, created.Type)
	require.Equal(t, pool.TieBreakTotalPoints, created.TieBreakMethod)

	got, err := svc.GetByID(context.Background(), "pool-9")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
}

func TestPoolCreate_GeneratesIDWhenNoneSupplied(t *testing.T) {
	svc := newPoolService(nil)

	created, err := svc.Create(context.Background(), CreatePoolInput{
		Name:   "Family Pool",
		Season: 2026,
	})
	require.NoError(t, err)
	require.Equal(t, "generated-id", created.ID)

	got, err := svc.GetByID(context.Background(), "generated-id")
	require.NoError(t, err)
	require.Equal(t, "Family Pool", got.Name)
}

func TestPoolCreate_KeepsCallerSuppliedID(t *testing.T) {
	svc := newPoolService(nil)

	created, err := svc.Create(context.Background(), CreatePoolInput{
		ID:     "pool-import-7",
		Name:   "Imported Pool",
		Season: 2026,
	})
	require.NoError(t, err)
	require.Equal(t, "pool-import-7", created.ID)
}

func TestPoolCreate_CustomMethodRequiresQuestion(t *testing.T) {
	svc := newPoolService(nil)

	_, err := svc.Create(context.Background(), CreatePoolInput{
		ID:             "pool-9",
		Name:           "Family Pool",
		Season:         2026,
		TieBreakMethod: string(pool.TieBreakCustom),
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestPoolCreate_RejectsUnknownType(t *testing.T) {
	svc := newPoolService(nil)

	_, err := svc.Create(context.Background(), CreatePoolInput{
		ID:     "pool-9",
		Name:   "Family Pool",
		Season: 2026,
		Type:   "elimination",
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestPoolGetByID_NotFound(t *testing.T) {
	svc := newPoolService(nil)

	_, err := svc.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPoolSetTieBreaker_UpdatesQuestionAndAnswer(t *testing.T) {
	svc := newPoolService([]pool.Pool{customPool()})

	updated, err := svc.SetTieBreaker(context.Background(), "pool-1", "Combined score of the late game?", f64Ptr(51))
	require.NoError(t, err)
	require.Equal(t, "Combined score of the late game?", updated.TieBreakerQuestion)
	require.Equal(t, 51.0, *updated.TieBreakerAnswer)

	got, err := svc.GetByID(context.Background(), "pool-1")
	require.NoError(t, err)
	require.Equal(t, "Combined score of the late game?", got.TieBreakerQuestion)
}

func TestPoolSetTieBreaker_ClearingTheAnswer(t *testing.T) {
	svc := newPoolService([]pool.Pool{customPool()})

	updated, err := svc.SetTieBreaker(context.Background(), "pool-1", "Total points in the Monday night game?", nil)
	require.NoError(t, err)
	require.Nil(t, updated.TieBreakerAnswer)
}

func TestPoolJoin_AddsActiveParticipant(t *testing.T) {
	svc := newPoolService([]pool.Pool{customPool()})

	member, err := svc.Join(context.Background(), JoinPoolInput{
		PoolID:        "pool-1",
		ParticipantID: "p-erin",
		Name:          "Erin",
	})
	require.NoError(t, err)
	require.True(t, member.Active)

	members, err := svc.ListParticipants(context.Background(), "pool-1")
	require.NoError(t, err)
	require.Len(t, members, 4)
}

func TestPoolJoin_GeneratesParticipantIDWhenNoneSupplied(t *testing.T) {
	svc := newPoolService([]pool.Pool{customPool()})

	member, err := svc.Join(context.Background(), JoinPoolInput{
		PoolID: "pool-1",
		Name:   "Erin",
	})
	require.NoError(t, err)
	require.Equal(t, "generated-id", member.ID)
	require.True(t, member.Active)
}

func TestPoolListBySeason(t *testing.T) {
	other := customPool()
	other.ID = "pool-2"
	other.Season = 2025
	svc := newPoolService([]pool.Pool{customPool(), other})

	pools, err := svc.ListBySeason(context.Background(), 2026)
	require.NoError(t, err)
	require.Len(t, pools, 1)
	require.Equal(t, "pool-1", pools[0].ID)
}

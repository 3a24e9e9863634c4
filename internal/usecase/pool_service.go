package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pickemlabs/confidence-pool/internal/domain/participant"
	"github.com/pickemlabs/confidence-pool/internal/domain/pool"
	idgen "github.com/pickemlabs/confidence-pool/internal/platform/id"
)

type PoolService struct {
	poolRepo        pool.Repository
	participantRepo participant.Repository
	idGen           idgen.Generator
	now             func() time.Time
}

func NewPoolService(poolRepo pool.Repository, participantRepo participant.Repository, idGen idgen.Generator) *PoolService {
	return &PoolService{
		poolRepo:        poolRepo,
		participantRepo: participantRepo,
		idGen:           idGen,
		now:             time.Now,
	}
}

func (s *PoolService) ListBySeason(ctx context.Context, season int) ([]pool.Pool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.ListBySeason")
	defer span.End()

	if season <= 0 {
		season = s.now().UTC().Year()
	}
	pools, err := s.poolRepo.ListBySeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("list pools for season %d: %w", season, err)
	}
	return pools, nil
}

func (s *PoolService) GetByID(ctx context.Context, poolID string) (pool.Pool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.GetByID")
	defer span.End()

	poolID = strings.TrimSpace(poolID)
	if poolID == "" {
		return pool.Pool{}, fmt.Errorf("%w: pool id is required", ErrInvalidInput)
	}

	p, exists, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		return pool.Pool{}, fmt.Errorf("get pool: %w", err)
	}
	if !exists {
		return pool.Pool{}, fmt.Errorf("%w: pool=%s", ErrNotFound, poolID)
	}
	return p, nil
}

type CreatePoolInput struct {
	ID                 string
	Name               string
	Season             int
	Type               string
	TieBreakMethod     string
	TieBreakerQuestion string
	TieBreakerAnswer   *float64
}

func (s *PoolService) Create(ctx context.Context, input CreatePoolInput) (pool.Pool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.Create")
	defer span.End()

	input.ID = strings.TrimSpace(input.ID)
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return pool.Pool{}, fmt.Errorf("%w: pool name is required", ErrInvalidInput)
	}
	// Seed and import paths may carry their own IDs; everyone else gets one.
	if input.ID == "" {
		generated, err := s.idGen.NewID()
		if err != nil {
			return pool.Pool{}, fmt.Errorf("generate pool id: %w", err)
		}
		input.ID = generated
	}
	if input.Season <= 0 {
		return pool.Pool{}, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}

	poolType := pool.Type(strings.TrimSpace(input.Type))
	if poolType == "" {
		poolType = pool.TypeNormal
	}
	if poolType != pool.TypeNormal && poolType != pool.TypeKnockout {
		return pool.Pool{}, fmt.Errorf("%w: unknown pool type %q", ErrInvalidInput, input.Type)
	}

	method := pool.TieBreakMethod(strings.TrimSpace(input.TieBreakMethod))
	if method == "" {
		method = pool.TieBreakTotalPoints
	}
	if !pool.ValidTieBreakMethod(method) {
		return pool.Pool{}, fmt.Errorf("%w: unknown tie-break method %q", ErrInvalidInput, input.TieBreakMethod)
	}
	if method == pool.TieBreakCustom && strings.TrimSpace(input.TieBreakerQuestion) == "" {
		return pool.Pool{}, fmt.Errorf("%w: custom tie-break requires a question", ErrInvalidInput)
	}

	now := s.now().UTC()
	p := pool.Pool{
		ID:                 input.ID,
		Name:               input.Name,
		Season:             input.Season,
		Type:               poolType,
		TieBreakMethod:     method,
		TieBreakerQuestion: strings.TrimSpace(input.TieBreakerQuestion),
		TieBreakerAnswer:   input.TieBreakerAnswer,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.poolRepo.Create(ctx, p); err != nil {
		return pool.Pool{}, fmt.Errorf("create pool: %w", err)
	}
	return p, nil
}

// SetTieBreaker updates the pool-level tie-breaker question and target
// answer. Clearing the answer makes period resolution fall back to the
// pool's fallback policy until a new answer is set.
func (s *PoolService) SetTieBreaker(ctx context.Context, poolID, question string, answer *float64) (pool.Pool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.SetTieBreaker")
	defer span.End()

	p, err := s.GetByID(ctx, poolID)
	if err != nil {
		return pool.Pool{}, err
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return pool.Pool{}, fmt.Errorf("%w: tie-breaker question is required", ErrInvalidInput)
	}

	if err := s.poolRepo.UpdateTieBreaker(ctx, p.ID, question, answer); err != nil {
		return pool.Pool{}, fmt.Errorf("update pool tie-breaker: %w", err)
	}

	p.TieBreakerQuestion = question
	p.TieBreakerAnswer = answer
	p.UpdatedAt = s.now().UTC()
	return p, nil
}

func (s *PoolService) ListParticipants(ctx context.Context, poolID string) ([]participant.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.ListParticipants")
	defer span.End()

	p, err := s.GetByID(ctx, poolID)
	if err != nil {
		return nil, err
	}

	participants, err := s.participantRepo.ListActiveByPool(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}

type JoinPoolInput struct {
	PoolID        string
	ParticipantID string
	Name          string
}

func (s *PoolService) Join(ctx context.Context, input JoinPoolInput) (participant.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.Join")
	defer span.End()

	p, err := s.GetByID(ctx, input.PoolID)
	if err != nil {
		return participant.Participant{}, err
	}

	input.ParticipantID = strings.TrimSpace(input.ParticipantID)
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return participant.Participant{}, fmt.Errorf("%w: participant name is required", ErrInvalidInput)
	}
	if input.ParticipantID == "" {
		generated, err := s.idGen.NewID()
		if err != nil {
			return participant.Participant{}, fmt.Errorf("generate participant id: %w", err)
		}
		input.ParticipantID = generated
	}

	member := participant.Participant{
		ID:       input.ParticipantID,
		PoolID:   p.ID,
		Name:     input.Name,
		Active:   true,
		JoinedAt: s.now().UTC(),
	}
	if err := s.participantRepo.Upsert(ctx, member); err != nil {
		return participant.Participant{}, fmt.Errorf("join pool: %w", err)
	}
	return member, nil
}

package participant

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (Participant, bool, error)
	ListActiveByPool(ctx context.Context, poolID string) ([]Participant, error)
	Upsert(ctx context.Context, p Participant) error
}

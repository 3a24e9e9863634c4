package pool

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (Pool, bool, error)
	ListBySeason(ctx context.Context, season int) ([]Pool, error)
	Create(ctx context.Context, p Pool) error
	UpdateTieBreaker(ctx context.Context, poolID, question string, answer *float64) error
}

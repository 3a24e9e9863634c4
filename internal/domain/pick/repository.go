package pick

import "context"

// Repository exposes pick persistence operations. Picks are deleted, never
// mutated, once games start; an admin unlock removes them so the participant
// can resubmit.
type Repository interface {
	ListByPoolAndGames(ctx context.Context, poolID string, gameIDs []string) ([]Pick, error)
	ListByParticipantAndGames(ctx context.Context, participantID, poolID string, gameIDs []string) ([]Pick, error)
	Upsert(ctx context.Context, picks []Pick) error
	DeleteByParticipantAndGames(ctx context.Context, participantID, poolID string, gameIDs []string) error
}

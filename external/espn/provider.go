package espn

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/rawdata"
)

// FetchWeekGames implements the scoreboard provider contract consumed by the
// sync use case.
func (c *Client) FetchWeekGames(ctx context.Context, season, seasonType, week int) ([]game.Game, rawdata.Payload, error) {
	board, err := c.FetchScoreboard(ctx, season, seasonType, week)
	if err != nil {
		return nil, rawdata.Payload{}, err
	}

	games := MapEvents(board, season, seasonType, week)

	hash := sha256.Sum256(board.Raw)
	fetchedAt := time.Now().UTC()
	payload := rawdata.Payload{
		Source:          "espn",
		EntityType:      "scoreboard",
		EntityKey:       fmt.Sprintf("%d:%d:%d", season, seasonType, week),
		Season:          season,
		SeasonType:      seasonType,
		Week:            week,
		PayloadJSON:     string(board.Raw),
		PayloadHash:     hex.EncodeToString(hash[:]),
		SourceUpdatedAt: &fetchedAt,
	}

	return games, payload, nil
}

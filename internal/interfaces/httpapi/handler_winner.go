package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/pickemlabs/confidence-pool/internal/domain/winner"
	"github.com/pickemlabs/confidence-pool/internal/usecase"
)

type tieBreakDTO struct {
	Used         bool     `json:"used"`
	Question     string   `json:"question,omitempty"`
	TargetAnswer *float64 `json:"target_answer,omitempty"`
	WinnerAnswer *float64 `json:"winner_answer,omitempty"`
	Difference   *float64 `json:"difference,omitempty"`
}

type weeklyWinnerDTO struct {
	PoolID            string      `json:"pool_id"`
	Season            int         `json:"season"`
	Week              int         `json:"week"`
	ParticipantID     string      `json:"participant_id"`
	ParticipantName   string      `json:"participant_name"`
	Points            int         `json:"points"`
	CorrectPicks      int         `json:"correct_picks"`
	TieBreak          tieBreakDTO `json:"tie_break"`
	TotalParticipants int         `json:"total_participants"`
	CalculatedAt      string      `json:"calculated_at,omitempty"`
}

type periodWinnerDTO struct {
	PoolID            string      `json:"pool_id"`
	Season            int         `json:"season"`
	PeriodName        string      `json:"period_name"`
	ParticipantID     string      `json:"participant_id"`
	ParticipantName   string      `json:"participant_name"`
	TotalPoints       int         `json:"total_points"`
	TotalCorrectPicks int         `json:"total_correct_picks"`
	WeeksWon          int         `json:"weeks_won"`
	TieBreak          tieBreakDTO `json:"tie_break"`
	TotalParticipants int         `json:"total_participants"`
	CalculatedAt      string      `json:"calculated_at,omitempty"`
}

type seasonWinnerDTO struct {
	PoolID            string      `json:"pool_id"`
	Season            int         `json:"season"`
	ParticipantID     string      `json:"participant_id"`
	ParticipantName   string      `json:"participant_name"`
	TotalPoints       int         `json:"total_points"`
	TotalCorrectPicks int         `json:"total_correct_picks"`
	WeeksWon          int         `json:"weeks_won"`
	TieBreak          tieBreakDTO `json:"tie_break"`
	TotalParticipants int         `json:"total_participants"`
	CalculatedAt      string      `json:"calculated_at,omitempty"`
}

// winnerEnvelopeDTO wraps a winner read so clients can tell an unfinished
// week apart from a finished week with no qualifying winner.
type winnerEnvelopeDTO struct {
	Status string `json:"status"`
	Winner any    `json:"winner,omitempty"`
}

func (h *Handler) GetWeeklyWinner(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWeeklyWinner")
	defer span.End()

	poolID := r.PathValue("poolID")
	week, err := queryInt(r, "week")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	season, err := queryIntDefault(r, "season", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if season == 0 {
		if season, err = h.resolvePoolSeason(ctx, poolID); err != nil {
			writeError(ctx, w, err)
			return
		}
	}

	res := h.winnerService.GetOrCalculateWeeklyWinner(ctx, poolID, season, week)
	if res.State == usecase.ResultStorageError {
		h.logger.ErrorContext(ctx, "get weekly winner failed", "pool_id", poolID, "week", week, "error", res.Err)
		writeError(ctx, w, res.Err)
		return
	}

	envelope := winnerEnvelopeDTO{Status: string(res.State)}
	if res.State == usecase.ResultReady {
		envelope.Winner = weeklyWinnerToDTO(res.Value)
	}
	writeSuccess(ctx, w, http.StatusOK, envelope)
}

func (h *Handler) GetPeriodWinner(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPeriodWinner")
	defer span.End()

	poolID := r.PathValue("poolID")
	periodName := strings.TrimSpace(r.URL.Query().Get("period"))
	season, err := queryIntDefault(r, "season", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if season == 0 {
		if season, err = h.resolvePoolSeason(ctx, poolID); err != nil {
			writeError(ctx, w, err)
			return
		}
	}

	res := h.winnerService.GetOrCalculatePeriodWinner(ctx, poolID, season, periodName)
	if res.State == usecase.ResultStorageError {
		h.logger.ErrorContext(ctx, "get period winner failed", "pool_id", poolID, "period", periodName, "error", res.Err)
		writeError(ctx, w, res.Err)
		return
	}

	envelope := winnerEnvelopeDTO{Status: string(res.State)}
	if res.State == usecase.ResultReady {
		envelope.Winner = periodWinnerToDTO(res.Value)
	}
	writeSuccess(ctx, w, http.StatusOK, envelope)
}

func (h *Handler) GetSeasonWinner(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSeasonWinner")
	defer span.End()

	poolID := r.PathValue("poolID")
	season, err := queryIntDefault(r, "season", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if season == 0 {
		if season, err = h.resolvePoolSeason(ctx, poolID); err != nil {
			writeError(ctx, w, err)
			return
		}
	}

	res := h.winnerService.GetOrCalculateSeasonWinner(ctx, poolID, season)
	if res.State == usecase.ResultStorageError {
		h.logger.ErrorContext(ctx, "get season winner failed", "pool_id", poolID, "season", season, "error", res.Err)
		writeError(ctx, w, res.Err)
		return
	}

	envelope := winnerEnvelopeDTO{Status: string(res.State)}
	if res.State == usecase.ResultReady {
		envelope.Winner = seasonWinnerToDTO(res.Value)
	}
	writeSuccess(ctx, w, http.StatusOK, envelope)
}

// resolvePoolSeason defaults a missing season parameter to the pool's own
// season.
func (h *Handler) resolvePoolSeason(ctx context.Context, poolID string) (int, error) {
	p, err := h.poolService.GetByID(ctx, poolID)
	if err != nil {
		return 0, err
	}
	return p.Season, nil
}

func weeklyWinnerToDTO(v winner.WeeklyWinner) weeklyWinnerDTO {
	return weeklyWinnerDTO{
		PoolID:            v.PoolID,
		Season:            v.Season,
		Week:              v.Week,
		ParticipantID:     v.ParticipantID,
		ParticipantName:   v.ParticipantName,
		Points:            v.Points,
		CorrectPicks:      v.CorrectPicks,
		TieBreak:          tieBreakToDTO(v.TieBreak),
		TotalParticipants: v.TotalParticipants,
		CalculatedAt:      formatTime(v.CalculatedAt),
	}
}

func periodWinnerToDTO(v winner.PeriodWinner) periodWinnerDTO {
	return periodWinnerDTO{
		PoolID:            v.PoolID,
		Season:            v.Season,
		PeriodName:        v.PeriodName,
		ParticipantID:     v.ParticipantID,
		ParticipantName:   v.ParticipantName,
		TotalPoints:       v.TotalPoints,
		TotalCorrectPicks: v.TotalCorrectPicks,
		WeeksWon:          v.WeeksWon,
		TieBreak:          tieBreakToDTO(v.TieBreak),
		TotalParticipants: v.TotalParticipants,
		CalculatedAt:      formatTime(v.CalculatedAt),
	}
}

func seasonWinnerToDTO(v winner.SeasonWinner) seasonWinnerDTO {
	return seasonWinnerDTO{
		PoolID:            v.PoolID,
		Season:            v.Season,
		ParticipantID:     v.ParticipantID,
		ParticipantName:   v.ParticipantName,
		TotalPoints:       v.TotalPoints,
		TotalCorrectPicks: v.TotalCorrectPicks,
		WeeksWon:          v.WeeksWon,
		TieBreak:          tieBreakToDTO(v.TieBreak),
		TotalParticipants: v.TotalParticipants,
		CalculatedAt:      formatTime(v.CalculatedAt),
	}
}

func tieBreakToDTO(v winner.TieBreak) tieBreakDTO {
	return tieBreakDTO{
		Used:         v.Used,
		Question:     v.Question,
		TargetAnswer: v.TargetAnswer,
		WinnerAnswer: v.WinnerAnswer,
		Difference:   v.Difference,
	}
}

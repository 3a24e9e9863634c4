package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/pickemlabs/confidence-pool/internal/domain/pick"
	"github.com/pickemlabs/confidence-pool/internal/usecase"
)

type weeklyPickEntry struct {
	GameID           string `json:"game_id" validate:"required"`
	PredictedWinner  string `json:"predicted_winner" validate:"required"`
	ConfidencePoints int    `json:"confidence_points" validate:"required,gt=0"`
}

type submitPicksRequest struct {
	ParticipantID string            `json:"participant_id" validate:"required"`
	Season        int               `json:"season" validate:"required,gt=0"`
	SeasonType    int               `json:"season_type"`
	Week          int               `json:"week" validate:"required,gt=0"`
	Picks         []weeklyPickEntry `json:"picks" validate:"required,min=1,dive"`
}

type submitTieBreakRequest struct {
	ParticipantID string  `json:"participant_id" validate:"required"`
	Season        int     `json:"season" validate:"required,gt=0"`
	SeasonType    int     `json:"season_type"`
	Week          int     `json:"week" validate:"required,gt=0"`
	Answer        float64 `json:"answer"`
}

type unlockPicksRequest struct {
	ParticipantID string `json:"participant_id" validate:"required"`
	Season        int    `json:"season" validate:"required,gt=0"`
	SeasonType    int    `json:"season_type"`
	Week          int    `json:"week" validate:"required,gt=0"`
}

type pickDTO struct {
	ParticipantID    string `json:"participant_id"`
	PoolID           string `json:"pool_id"`
	GameID           string `json:"game_id"`
	PredictedWinner  string `json:"predicted_winner"`
	ConfidencePoints int    `json:"confidence_points"`
	SubmittedAt      string `json:"submitted_at,omitempty"`
}

type tieBreakAnswerDTO struct {
	ParticipantID string  `json:"participant_id"`
	PoolID        string  `json:"pool_id"`
	Season        int     `json:"season"`
	Week          int     `json:"week"`
	Answer        float64 `json:"answer"`
	SubmittedAt   string  `json:"submitted_at,omitempty"`
}

func (h *Handler) SubmitPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPicks")
	defer span.End()

	poolID := r.PathValue("poolID")

	var req submitPicksRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	picks := make([]usecase.WeeklyPickInput, 0, len(req.Picks))
	for _, entry := range req.Picks {
		picks = append(picks, usecase.WeeklyPickInput{
			GameID:           entry.GameID,
			PredictedWinner:  entry.PredictedWinner,
			ConfidencePoints: entry.ConfidencePoints,
		})
	}

	saved, err := h.pickService.SubmitWeeklyPicks(ctx, usecase.SubmitWeeklyPicksInput{
		ParticipantID: req.ParticipantID,
		PoolID:        poolID,
		Season:        req.Season,
		SeasonType:    req.SeasonType,
		Week:          req.Week,
		Picks:         picks,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit picks failed",
			"pool_id", poolID,
			"participant_id", req.ParticipantID,
			"week", req.Week,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	items := make([]pickDTO, 0, len(saved))
	for _, p := range saved {
		items = append(items, pickToDTO(p))
	}

	writeSuccess(ctx, w, http.StatusCreated, items)
}

func (h *Handler) SubmitTieBreakAnswer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitTieBreakAnswer")
	defer span.End()

	poolID := r.PathValue("poolID")

	var req submitTieBreakRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	answer, err := h.pickService.SubmitTieBreakAnswer(ctx, usecase.SubmitTieBreakAnswerInput{
		ParticipantID: req.ParticipantID,
		PoolID:        poolID,
		Season:        req.Season,
		SeasonType:    req.SeasonType,
		Week:          req.Week,
		Answer:        req.Answer,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit tie break answer failed",
			"pool_id", poolID,
			"participant_id", req.ParticipantID,
			"week", req.Week,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, tieBreakAnswerDTO{
		ParticipantID: answer.ParticipantID,
		PoolID:        answer.PoolID,
		Season:        answer.Season,
		Week:          answer.Week,
		Answer:        answer.Answer,
		SubmittedAt:   formatTime(answer.SubmittedAt),
	})
}

func (h *Handler) UnlockPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UnlockPicks")
	defer span.End()

	poolID := r.PathValue("poolID")

	var req unlockPicksRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.pickService.UnlockPicks(ctx, req.ParticipantID, poolID, req.Season, req.SeasonType, req.Week); err != nil {
		h.logger.WarnContext(ctx, "unlock picks failed",
			"pool_id", poolID,
			"participant_id", req.ParticipantID,
			"week", req.Week,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "unlocked"})
}

func pickToDTO(p pick.Pick) pickDTO {
	return pickDTO{
		ParticipantID:    p.ParticipantID,
		PoolID:           p.PoolID,
		GameID:           p.GameID,
		PredictedWinner:  p.PredictedWinner,
		ConfidencePoints: p.ConfidencePoints,
		SubmittedAt:      formatTime(p.SubmittedAt),
	}
}

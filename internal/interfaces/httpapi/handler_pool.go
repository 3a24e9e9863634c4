package httpapi

import (
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/pickemlabs/confidence-pool/internal/domain/participant"
	"github.com/pickemlabs/confidence-pool/internal/domain/pool"
	"github.com/pickemlabs/confidence-pool/internal/usecase"
)

type poolDTO struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Season             int      `json:"season"`
	PoolType           string   `json:"pool_type"`
	TieBreakMethod     string   `json:"tie_break_method"`
	TieBreakerQuestion string   `json:"tie_breaker_question,omitempty"`
	TieBreakerAnswer   *float64 `json:"tie_breaker_answer,omitempty"`
	CreatedAt          string   `json:"created_at,omitempty"`
	UpdatedAt          string   `json:"updated_at,omitempty"`
}

type participantDTO struct {
	ID       string `json:"id"`
	PoolID   string `json:"pool_id"`
	Name     string `json:"name"`
	Active   bool   `json:"active"`
	JoinedAt string `json:"joined_at,omitempty"`
}

type createPoolRequest struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name" validate:"required"`
	Season             int      `json:"season" validate:"required,gt=0"`
	PoolType           string   `json:"pool_type"`
	TieBreakMethod     string   `json:"tie_break_method"`
	TieBreakerQuestion string   `json:"tie_breaker_question"`
	TieBreakerAnswer   *float64 `json:"tie_breaker_answer"`
}

type setTieBreakerRequest struct {
	Question string   `json:"question" validate:"required"`
	Answer   *float64 `json:"answer"`
}

type joinPoolRequest struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name" validate:"required"`
}

func (h *Handler) ListPools(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPools")
	defer span.End()

	season, err := queryIntDefault(r, "season", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	pools, err := h.poolService.ListBySeason(ctx, season)
	if err != nil {
		h.logger.ErrorContext(ctx, "list pools failed", "season", season, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]poolDTO, 0, len(pools))
	for _, p := range pools {
		items = append(items, poolToDTO(p))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetPool(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPool")
	defer span.End()

	poolID := r.PathValue("poolID")
	p, err := h.poolService.GetByID(ctx, poolID)
	if err != nil {
		h.logger.WarnContext(ctx, "get pool failed", "pool_id", poolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, poolToDTO(p))
}

func (h *Handler) CreatePool(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreatePool")
	defer span.End()

	var req createPoolRequest
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

	created, err := h.poolService.Create(ctx, usecase.CreatePoolInput{
		ID:                 req.ID,
		Name:               req.Name,
		Season:             req.Season,
		Type:               req.PoolType,
		TieBreakMethod:     req.TieBreakMethod,
		TieBreakerQuestion: req.TieBreakerQuestion,
		TieBreakerAnswer:   req.TieBreakerAnswer,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create pool failed", "pool_id", req.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, poolToDTO(created))
}

func (h *Handler) SetPoolTieBreaker(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetPoolTieBreaker")
	defer span.End()

	poolID := r.PathValue("poolID")

	var req setTieBreakerRequest
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

	updated, err := h.poolService.SetTieBreaker(ctx, poolID, req.Question, req.Answer)
	if err != nil {
		h.logger.WarnContext(ctx, "set pool tie breaker failed", "pool_id", poolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, poolToDTO(updated))
}

func (h *Handler) ListPoolParticipants(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPoolParticipants")
	defer span.End()

	poolID := r.PathValue("poolID")
	participants, err := h.poolService.ListParticipants(ctx, poolID)
	if err != nil {
		h.logger.WarnContext(ctx, "list pool participants failed", "pool_id", poolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]participantDTO, 0, len(participants))
	for _, p := range participants {
		items = append(items, participantToDTO(p))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) JoinPool(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinPool")
	defer span.End()

	poolID := r.PathValue("poolID")

	var req joinPoolRequest
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

	joined, err := h.poolService.Join(ctx, usecase.JoinPoolInput{
		PoolID:        poolID,
		ParticipantID: req.ParticipantID,
		Name:          req.Name,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "join pool failed", "pool_id", poolID, "participant_id", req.ParticipantID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, participantToDTO(joined))
}

func poolToDTO(p pool.Pool) poolDTO {
	return poolDTO{
		ID:                 p.ID,
		Name:               p.Name,
		Season:             p.Season,
		PoolType:           string(p.Type),
		TieBreakMethod:     string(p.TieBreakMethod),
		TieBreakerQuestion: p.TieBreakerQuestion,
		TieBreakerAnswer:   p.TieBreakerAnswer,
		CreatedAt:          formatTime(p.CreatedAt),
		UpdatedAt:          formatTime(p.UpdatedAt),
	}
}

func participantToDTO(p participant.Participant) participantDTO {
	return participantDTO{
		ID:       p.ID,
		PoolID:   p.PoolID,
		Name:     p.Name,
		Active:   p.Active,
		JoinedAt: formatTime(p.JoinedAt),
	}
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}

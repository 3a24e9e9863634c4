package httpapi

import (
	"fmt"
	"net/http"
	"strings"
)

func (h *Handler) ExportWeeklyPicksCSV(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ExportWeeklyPicksCSV")
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

	data, err := h.exportService.WeeklyPicksCSV(ctx, poolID, season, week)
	if err != nil {
		h.logger.WarnContext(ctx, "export weekly picks csv failed", "pool_id", poolID, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeCSV(w, fmt.Sprintf("%s-week-%d-picks.csv", poolID, week), data)
}

func (h *Handler) ExportPeriodCSV(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ExportPeriodCSV")
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

	data, err := h.exportService.PeriodCSV(ctx, poolID, season, periodName)
	if err != nil {
		h.logger.WarnContext(ctx, "export period csv failed", "pool_id", poolID, "period", periodName, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeCSV(w, fmt.Sprintf("%s-%s.csv", poolID, periodName), data)
}

func writeCSV(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

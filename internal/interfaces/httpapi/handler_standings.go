package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/pick-league/internal/domain/standings"
)

func (h *Handler) WeeklyStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRouteSpan(r, "httpapi.Handler.WeeklyStandings")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	year, week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	entries, err := h.aggregatorService.WeeklyStandings(ctx, leagueID, week, year)
	if err != nil {
		h.logger.WarnContext(ctx, "weekly standings failed", "league_id", leagueID, "week", week, "year", year, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsToDTO(entries))
}

func (h *Handler) AllTimeStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRouteSpan(r, "httpapi.Handler.AllTimeStandings")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	entries, err := h.aggregatorService.AllTimeStandings(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "all-time standings failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsToDTO(entries))
}

func standingsToDTO(entries []standings.Entry) []standingEntryDTO {
	out := make([]standingEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, standingEntryDTO{
			Rank:        e.Rank,
			UserID:      e.UserID,
			CardID:      e.CardID,
			Wins:        e.Wins,
			Losses:      e.Losses,
			Pushes:      e.Pushes,
			WinRate:     e.WinRate,
			Points:      e.Points,
			WeeksPlayed: e.WeeksPlayed,
		})
	}
	return out
}

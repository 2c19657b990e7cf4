package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/pick-league/internal/domain/card"
	"github.com/riskibarqy/pick-league/internal/usecase"
	"github.com/shopspring/decimal"
)

func (h *Handler) SubmitCard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRouteSpan(r, "httpapi.Handler.SubmitCard")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	year, week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitCardRequest
	if err := h.decodeJSON(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	picks, err := req.toInputs()
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	saved, err := h.ledgerService.SubmitOrEditCard(ctx, usecase.SubmitCardInput{
		UserID:   principal.UserID,
		LeagueID: leagueID,
		Week:     week,
		Year:     year,
		Picks:    picks,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit card failed",
			"user_id", principal.UserID,
			"league_id", leagueID,
			"week", week,
			"year", year,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	view, err := h.ledgerService.GetCardView(ctx, saved.ID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, cardViewToDTO(view))
}

func (h *Handler) GetMyCard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRouteSpan(r, "httpapi.Handler.GetMyCard")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	year, week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.ledgerService.GetMyCard(ctx, principal.UserID, leagueID, week, year)
	if err != nil {
		h.logger.WarnContext(ctx, "get my card failed", "user_id", principal.UserID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, cardViewToDTO(view))
}

func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRouteSpan(r, "httpapi.Handler.GetCard")
	defer span.End()

	cardID := strings.TrimSpace(r.PathValue("cardID"))
	view, err := h.ledgerService.GetCardView(ctx, cardID)
	if err != nil {
		h.logger.WarnContext(ctx, "get card failed", "card_id", cardID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, cardViewToDTO(view))
}

func (h *Handler) CurrentWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRouteSpan(r, "httpapi.Handler.CurrentWeek")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	info, err := h.ledgerService.CurrentWeek(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "current week failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, weekInfoDTO{
		LeagueID: info.LeagueID,
		Week:     info.Week,
		StartsAt: info.Start.UTC().Format(timeLayout),
		EndsAt:   info.End.UTC().Format(timeLayout),
	})
}

type submitCardRequest struct {
	Picks []submitPickRequest `json:"picks" validate:"max=32,dive"`
}

type submitPickRequest struct {
	GameID    string `json:"game_id" validate:"required"`
	Kind      string `json:"kind" validate:"required,oneof=MONEYLINE SPREAD TOTAL"`
	Selection string `json:"selection" validate:"required,oneof=HOME AWAY OVER UNDER"`
	Line      string `json:"line"`
}

func (req submitCardRequest) toInputs() ([]usecase.PickInput, error) {
	out := make([]usecase.PickInput, 0, len(req.Picks))
	for i, p := range req.Picks {
		input := usecase.PickInput{
			GameID:    strings.TrimSpace(p.GameID),
			Kind:      card.BetKind(p.Kind),
			Selection: card.Selection(p.Selection),
		}
		if raw := strings.TrimSpace(p.Line); raw != "" {
			line, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: picks[%d].line %q is not a number", usecase.ErrInvalidInput, i, raw)
			}
			input.Line = &line
		}
		out = append(out, input)
	}
	return out, nil
}

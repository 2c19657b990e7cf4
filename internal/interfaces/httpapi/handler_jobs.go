package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/pick-league/internal/domain/settlement"
	"github.com/riskibarqy/pick-league/internal/usecase"
)

type runSettlementRequest struct {
	Trigger string `json:"trigger" validate:"omitempty,oneof=manual schedule"`
}

// RunSettlementJob executes one settlement pass synchronously and returns its
// report. Concurrent callers share the in-flight pass.
func (h *Handler) RunSettlementJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRouteSpan(r, "httpapi.Handler.RunSettlementJob")
	defer span.End()

	var req runSettlementRequest
	if err := h.decodeJSON(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	trigger := settlement.TriggerManual
	if req.Trigger == string(settlement.TriggerSchedule) {
		trigger = settlement.TriggerSchedule
	}

	report, err := h.settlementService.RunSettlementPass(ctx, usecase.RunSettlementInput{
		Now:     h.clock.Now(),
		Trigger: trigger,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "settlement job failed", "trigger", trigger, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, settlementRunToDTO(report))
}

func (h *Handler) GetSettlementRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRouteSpan(r, "httpapi.Handler.GetSettlementRun")
	defer span.End()

	runID := strings.TrimSpace(r.PathValue("runID"))
	run, err := h.settlementService.GetRun(ctx, runID)
	if err != nil {
		h.logger.WarnContext(ctx, "get settlement run failed", "run_id", runID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, settlementRunToDTO(run))
}

package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/pick-league/internal/platform/logging"
	"github.com/riskibarqy/pick-league/internal/usecase"
)

type Handler struct {
	ledgerService     *usecase.PickLedgerService
	aggregatorService *usecase.ScoreAggregatorService
	settlementService *usecase.SettlementOrchestratorService
	clock             clockwork.Clock
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	ledgerService *usecase.PickLedgerService,
	aggregatorService *usecase.ScoreAggregatorService,
	settlementService *usecase.SettlementOrchestratorService,
	clock clockwork.Clock,
	logger *logging.Logger,
) *Handler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		ledgerService:     ledgerService,
		aggregatorService: aggregatorService,
		settlementService: settlementService,
		clock:             clock,
		logger:            logger.Named("httpapi"),
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeJSON rejects unknown fields. An empty body decodes into the zero value
// only when allowEmpty is set.
func (h *Handler) decodeJSON(ctx context.Context, r *http.Request, dst any, allowEmpty bool) error {
	_, span := startSpan(ctx, "httpapi.Handler.decodeJSON")
	defer span.End()

	if allowEmpty && (r.Body == nil || r.ContentLength == 0) {
		return nil
	}

	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func pathInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", usecase.ErrInvalidInput, name, raw)
	}
	return value, nil
}

// pathWeek reads the {year}/{week} pair shared by card and standings routes.
func pathWeek(r *http.Request) (year, week int, err error) {
	year, err = pathInt(r, "year")
	if err != nil {
		return 0, 0, err
	}
	week, err = pathInt(r, "week")
	if err != nil {
		return 0, 0, err
	}
	return year, week, nil
}

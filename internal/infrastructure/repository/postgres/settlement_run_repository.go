package postgres

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pick-league/internal/domain/settlement"
	qb "github.com/riskibarqy/pick-league/internal/platform/querybuilder"
	"go.opentelemetry.io/otel/trace"
)

type SettlementRunRepository struct {
	db *sqlx.DB
}

func NewSettlementRunRepository(db *sqlx.DB) *SettlementRunRepository {
	return &SettlementRunRepository{db: db}
}

func (r *SettlementRunRepository) SaveRun(ctx context.Context, run settlement.Run) error {
	row, err := settlementRunRowFrom(run)
	if err != nil {
		return err
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		row.TraceID.String = sc.TraceID().String()
		row.TraceID.Valid = true
	}

	query, args, err := qb.UpsertModel("settlement_runs", row, "run_id")
	if err != nil {
		return fmt.Errorf("build save settlement run query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save settlement run=%s: %w", run.RunID, err)
	}
	return nil
}

func (r *SettlementRunRepository) GetRun(ctx context.Context, runID string) (settlement.Run, bool, error) {
	return r.getOne(ctx, "get settlement run", qb.Select(settlementRunColumns).From("settlement_runs").
		Where(qb.Eq("run_id", runID)))
}

func (r *SettlementRunRepository) LatestRun(ctx context.Context) (settlement.Run, bool, error) {
	return r.getOne(ctx, "get latest settlement run", qb.Select(settlementRunColumns).From("settlement_runs").
		OrderBy("started_at DESC", "id DESC").
		Limit(1))
}

func (r *SettlementRunRepository) getOne(ctx context.Context, op string, builder *qb.SelectBuilder) (settlement.Run, bool, error) {
	query, args, err := builder.ToSQL()
	if err != nil {
		return settlement.Run{}, false, fmt.Errorf("build %s query: %w", op, err)
	}

	var row settlementRunTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return settlement.Run{}, false, nil
		}
		return settlement.Run{}, false, fmt.Errorf("%s: %w", op, err)
	}

	run, err := settlementRunFromRow(row)
	if err != nil {
		return settlement.Run{}, false, err
	}
	return run, true, nil
}

func settlementRunRowFrom(run settlement.Run) (settlementRunTableModel, error) {
	skipped := run.Skipped
	if skipped == nil {
		skipped = []settlement.Skipped{}
	}
	errs := run.Errors
	if errs == nil {
		errs = []string{}
	}
	skippedRaw, err := sonic.Marshal(skipped)
	if err != nil {
		return settlementRunTableModel{}, fmt.Errorf("marshal skipped: %w", err)
	}
	errorsRaw, err := sonic.Marshal(errs)
	if err != nil {
		return settlementRunTableModel{}, fmt.Errorf("marshal errors: %w", err)
	}

	return settlementRunTableModel{
		RunID:            run.RunID,
		Trigger:          string(run.Trigger),
		StartedAt:        run.StartedAt.UTC(),
		FinishedAt:       run.FinishedAt.UTC(),
		FeedUnavailable:  run.FeedUnavailable,
		FeedIngestFailed: run.FeedIngestFailed,
		FeedGames:        run.FeedGames,
		GamesConsidered:  run.GamesConsidered,
		GamesSettled:     run.GamesSettled,
		PicksGraded:      run.PicksGraded,
		PicksChanged:     run.PicksChanged,
		CardsUpdated:     run.CardsUpdated,
		Skipped:          skippedRaw,
		Errors:           errorsRaw,
	}, nil
}

func settlementRunFromRow(row settlementRunTableModel) (settlement.Run, error) {
	run := settlement.Run{
		RunID:            row.RunID,
		Trigger:          settlement.Trigger(row.Trigger),
		StartedAt:        row.StartedAt,
		FinishedAt:       row.FinishedAt,
		FeedUnavailable:  row.FeedUnavailable,
		FeedIngestFailed: row.FeedIngestFailed,
		FeedGames:        row.FeedGames,
		GamesConsidered:  row.GamesConsidered,
		GamesSettled:     row.GamesSettled,
		PicksGraded:      row.PicksGraded,
		PicksChanged:     row.PicksChanged,
		CardsUpdated:     row.CardsUpdated,
	}
	if len(row.Skipped) > 0 {
		if err := sonic.Unmarshal(row.Skipped, &run.Skipped); err != nil {
			return settlement.Run{}, fmt.Errorf("decode skipped run=%s: %w", row.RunID, err)
		}
	}
	if len(row.Errors) > 0 {
		if err := sonic.Unmarshal(row.Errors, &run.Errors); err != nil {
			return settlement.Run{}, fmt.Errorf("decode errors run=%s: %w", row.RunID, err)
		}
	}
	return run, nil
}

package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/pick-league/internal/domain/settlement"
)

type SettlementRepository struct {
	mu     sync.RWMutex
	runs   map[string]settlement.Run
	latest string
}

func NewSettlementRepository() *SettlementRepository {
	return &SettlementRepository{runs: make(map[string]settlement.Run)}
}

func (r *SettlementRepository) SaveRun(_ context.Context, run settlement.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs[run.RunID] = cloneRun(run)
	if latest, ok := r.runs[r.latest]; !ok || !run.StartedAt.Before(latest.StartedAt) {
		r.latest = run.RunID
	}
	return nil
}

func (r *SettlementRepository) GetRun(_ context.Context, runID string) (settlement.Run, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[runID]
	if !ok {
		return settlement.Run{}, false, nil
	}
	return cloneRun(run), true, nil
}

func (r *SettlementRepository) LatestRun(_ context.Context) (settlement.Run, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[r.latest]
	if !ok {
		return settlement.Run{}, false, nil
	}
	return cloneRun(run), true, nil
}

func cloneRun(run settlement.Run) settlement.Run {
	copied := run
	copied.Skipped = append([]settlement.Skipped(nil), run.Skipped...)
	copied.Errors = append([]string(nil), run.Errors...)
	return copied
}

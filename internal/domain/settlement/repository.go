package settlement

import "context"

type Repository interface {
	// SaveRun upserts by run id.
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, runID string) (Run, bool, error)
	// LatestRun returns the most recently started run.
	LatestRun(ctx context.Context) (Run, bool, error)
}

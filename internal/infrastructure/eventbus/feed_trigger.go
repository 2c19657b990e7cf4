package eventbus

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/riskibarqy/pick-league/internal/domain/settlement"
	"github.com/riskibarqy/pick-league/internal/platform/logging"
	"github.com/riskibarqy/pick-league/internal/usecase"
)

type settlementRunner interface {
	RunSettlementPass(ctx context.Context, input usecase.RunSettlementInput) (usecase.SettlementReport, error)
}

type subscriber interface {
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// feedEvent is the optional body of a feed update message. An empty body is
// treated as "something changed".
type feedEvent struct {
	Source     string    `json:"source"`
	GameIDs    []string  `json:"game_ids"`
	OccurredAt time.Time `json:"occurred_at"`
}

// FeedTrigger starts a settlement pass whenever the feed announces updated
// games. Passes coalesce inside the orchestrator, so bursts are cheap.
type FeedTrigger struct {
	runner  settlementRunner
	timeout time.Duration
	clock   clockwork.Clock
	logger  *logging.Logger
}

func NewFeedTrigger(runner settlementRunner, timeout time.Duration, clock clockwork.Clock, logger *logging.Logger) *FeedTrigger {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FeedTrigger{runner: runner, timeout: timeout, clock: clock, logger: logger}
}

// Start subscribes on subject and unsubscribes once ctx is done.
func (t *FeedTrigger) Start(ctx context.Context, conn subscriber, subject string) error {
	if subject == "" {
		subject = DefaultConfig().FeedSubject
	}
	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		t.handle(ctx, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe feed subject=%s: %w", subject, err)
	}
	t.logger.Info("feed trigger subscribed", "subject", subject)

	go func() {
		<-ctx.Done()
		if err := sub.Unsubscribe(); err != nil {
			t.logger.Warn("unsubscribe feed trigger failed", "subject", subject, "error", err)
		}
	}()
	return nil
}

func (t *FeedTrigger) handle(parent context.Context, data []byte) {
	if parent.Err() != nil {
		return
	}

	var event feedEvent
	if len(data) > 0 {
		if err := sonic.Unmarshal(data, &event); err != nil {
			t.logger.WarnContext(parent, "ignore malformed feed event", "error", err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(parent, t.timeout)
	defer cancel()

	report, err := t.runner.RunSettlementPass(ctx, usecase.RunSettlementInput{
		Now:     t.clock.Now(),
		Trigger: settlement.TriggerFeed,
	})
	if err != nil {
		t.logger.WarnContext(ctx, "feed-triggered settlement failed",
			"source", event.Source,
			"games", len(event.GameIDs),
			"error", err,
		)
		return
	}
	t.logger.DebugContext(ctx, "feed-triggered settlement finished",
		"run_id", report.RunID,
		"source", event.Source,
		"cards_updated", report.CardsUpdated,
	)
}

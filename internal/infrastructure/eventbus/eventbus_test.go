package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/pick-league/internal/domain/settlement"
	"github.com/riskibarqy/pick-league/internal/platform/logging"
	"github.com/riskibarqy/pick-league/internal/usecase"
)

type capturePublisher struct {
	subject string
	data    []byte
	err     error
}

func (p *capturePublisher) Publish(subject string, data []byte) error {
	p.subject = subject
	p.data = append([]byte(nil), data...)
	return p.err
}

func TestNotifierPublishRun(t *testing.T) {
	t.Parallel()

	pub := &capturePublisher{}
	n := NewNotifier(pub, "")
	finished := time.Date(2026, 9, 14, 4, 0, 2, 0, time.UTC)
	run := settlement.Run{
		RunID:        "run-1",
		Trigger:      settlement.TriggerSchedule,
		StartedAt:    finished.Add(-2 * time.Second),
		FinishedAt:   finished,
		CardsUpdated: 3,
	}

	if err := n.PublishRun(context.Background(), run); err != nil {
		t.Fatalf("publish run: %v", err)
	}
	if pub.subject != "settlement.runs.completed" {
		t.Fatalf("unexpected subject got=%s", pub.subject)
	}

	var got runEnvelope
	if err := sonic.Unmarshal(pub.data, &got); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if got.EventID != "run-1" || got.EventType != eventTypeSettlementRun {
		t.Fatalf("unexpected envelope got=%+v", got)
	}
	if got.Payload.CardsUpdated != 3 || !got.Timestamp.Equal(finished) {
		t.Fatalf("unexpected payload got=%+v", got.Payload)
	}
}

func TestNotifierPublishRunWrapsError(t *testing.T) {
	t.Parallel()

	boom := errors.New("nats: connection closed")
	n := NewNotifier(&capturePublisher{err: boom}, "custom.subject")
	err := n.PublishRun(context.Background(), settlement.Run{RunID: "run-2"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped publish error got=%v", err)
	}
}

type recordingRunner struct {
	mu     sync.Mutex
	inputs []usecase.RunSettlementInput
	err    error
}

func (r *recordingRunner) RunSettlementPass(_ context.Context, input usecase.RunSettlementInput) (usecase.SettlementReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, input)
	return usecase.SettlementReport{RunID: "run-x"}, r.err
}

func TestFeedTriggerHandle(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 14, 4, 0, 0, 0, time.UTC)
	runner := &recordingRunner{}
	trigger := NewFeedTrigger(runner, time.Second, clockwork.NewFakeClockAt(now), logging.NewNop())

	trigger.handle(context.Background(), []byte(`{"source":"odds","game_ids":["g1","g2"]}`))
	trigger.handle(context.Background(), nil)
	trigger.handle(context.Background(), []byte(`{not json`))

	if len(runner.inputs) != 2 {
		t.Fatalf("expected 2 passes got=%d", len(runner.inputs))
	}
	for _, in := range runner.inputs {
		if in.Trigger != settlement.TriggerFeed || !in.Now.Equal(now) {
			t.Fatalf("unexpected pass input got=%+v", in)
		}
	}
}

func TestFeedTriggerSkipsAfterShutdown(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{err: errors.New("boom")}
	trigger := NewFeedTrigger(runner, time.Second, clockwork.NewFakeClock(), logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	trigger.handle(ctx, nil)
	if len(runner.inputs) != 0 {
		t.Fatalf("expected no pass after shutdown got=%d", len(runner.inputs))
	}

	trigger.handle(context.Background(), nil)
	if len(runner.inputs) != 1 {
		t.Fatalf("expected failing pass to still be attempted got=%d", len(runner.inputs))
	}
}

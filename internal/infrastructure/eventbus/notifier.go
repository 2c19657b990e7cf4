package eventbus

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/pick-league/internal/domain/settlement"
)

const eventTypeSettlementRun = "settlement.run.completed"

type publisher interface {
	Publish(subject string, data []byte) error
}

type runEnvelope struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   settlement.Run `json:"payload"`
}

// Notifier publishes finished settlement runs so downstream consumers can
// refresh standings views.
type Notifier struct {
	conn    publisher
	subject string
}

func NewNotifier(conn publisher, subject string) *Notifier {
	if subject == "" {
		subject = DefaultConfig().SettlementSubject
	}
	return &Notifier{conn: conn, subject: subject}
}

func (n *Notifier) PublishRun(ctx context.Context, run settlement.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := sonic.Marshal(runEnvelope{
		EventID:   run.RunID,
		EventType: eventTypeSettlementRun,
		Timestamp: run.FinishedAt.UTC(),
		Payload:   run,
	})
	if err != nil {
		return fmt.Errorf("marshal settlement run event: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publish settlement run=%s: %w", run.RunID, err)
	}
	return nil
}

package eventbus

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/riskibarqy/pick-league/internal/platform/logging"
)

type Config struct {
	URL               string
	Name              string
	FeedSubject       string
	SettlementSubject string
	MaxReconnects     int
	ReconnectWait     time.Duration
}

func DefaultConfig() Config {
	return Config{
		URL:               nats.DefaultURL,
		Name:              "pick-league",
		FeedSubject:       "games.results.updated",
		SettlementSubject: "settlement.runs.completed",
		MaxReconnects:     -1,
		ReconnectWait:     2 * time.Second,
	}
}

// Connect dials NATS with reconnect handlers that report through logger.
func Connect(cfg Config, logger *logging.Logger) (*nats.Conn, error) {
	if logger == nil {
		logger = logging.Default()
	}
	defaults := DefaultConfig()
	if cfg.URL == "" {
		cfg.URL = defaults.URL
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = defaults.ReconnectWait
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			logger.Error("nats async error", "subject", subject, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return nc, nil
}

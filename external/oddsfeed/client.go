package oddsfeed

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/pick-league/internal/platform/logging"
	"github.com/riskibarqy/pick-league/internal/platform/resilience"
	"github.com/riskibarqy/pick-league/internal/usecase"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.odds-feed.example/v1"
	maxPages       = 50
	maxBodyBytes   = 4 << 20
)

var errFeedTransient = crerr.New("odds feed transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	RatePerSecond  float64
	Burst          int
	Logger         *logging.Logger
	Clock          clockwork.Clock
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads game snapshots from the odds feed. Requests are rate limited,
// retried on transient failures and guarded by a circuit breaker.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	limiter        *rate.Limiter
	logger         *logging.Logger
	clock          clockwork.Clock
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     max(cfg.MaxRetries, 0),
		limiter:        rate.NewLimiter(limit, burst),
		logger:         logger,
		clock:          clock,
		breaker:        resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker, clock),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
	}
}

// FetchGameUpdates returns every game the feed reports as changed since the
// given instant, following pagination.
func (c *Client) FetchGameUpdates(ctx context.Context, since time.Time) ([]usecase.ExternalGame, error) {
	out := make([]usecase.ExternalGame, 0, 64)
	seen := make(map[string]int, 64)

	page := 1
	for ; page <= maxPages; page++ {
		query := map[string]string{
			"updated_since": since.UTC().Format(time.RFC3339),
			"page":          strconv.Itoa(page),
		}

		var envelope gamesEnvelope
		if err := c.doJSON(ctx, "/games", query, &envelope); err != nil {
			return nil, crerr.Wrapf(err, "fetch game updates page=%d", page)
		}

		for _, item := range envelope.Data {
			game, ok := item.toExternal()
			if !ok {
				c.logger.DebugContext(ctx, "skip odds feed game without id")
				continue
			}
			// Later pages win when the feed repeats a game mid-pagination.
			if idx, dup := seen[game.ID]; dup {
				out[idx] = game
				continue
			}
			seen[game.ID] = len(out)
			out = append(out, game)
		}

		if !envelope.Pagination.HasMore {
			break
		}
	}
	if page > maxPages {
		c.logger.WarnContext(ctx, "odds feed pagination truncated", "max_pages", maxPages, "games", len(out))
	}

	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "odds feed circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: odds feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrap(err, "decode odds feed payload")
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, crerr.Wrap(err, "wait for odds feed rate limit")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, crerr.Wrap(err, "build request")
		}
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = crerr.Mark(crerr.Wrap(err, "send request"), errFeedTransient)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = crerr.Mark(crerr.Wrap(readErr, "read response body"), errFeedTransient)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = crerr.Mark(crerr.Newf("odds feed status=%d body=%s", resp.StatusCode, abbreviateBody(raw)), errFeedTransient)
			default:
				return nil, crerr.Newf("odds feed status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * 500 * time.Millisecond
		timer := c.clock.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.Chan():
		}
	}

	if lastErr == nil {
		lastErr = crerr.New("odds feed request failed")
	}
	c.logger.WarnContext(ctx, "odds feed request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return crerr.Is(err, errFeedTransient) || stderrors.Is(err, context.DeadlineExceeded)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

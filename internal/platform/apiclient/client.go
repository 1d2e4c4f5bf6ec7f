package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cardbot/internal/mtg"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 8 << 20

type Config struct {
	UserAgent string
	// RPS caps requests per second across every caller of this client. Zero disables the cap.
	RPS     float64
	Timeout time.Duration
}

// Client performs rate-limited JSON GETs against one provider.
type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	provider   mtg.ProviderKind
	logger     *zap.Logger
}

func New(provider mtg.ProviderKind, cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "cardbot/1.0"
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(limit, 1),
		provider:   provider,
		logger:     logger.With(zap.String("provider", provider.String())),
	}
}

// GetJSON fetches url and decodes the body into target. Non-200 answers
// become *mtg.StatusError and undecodable bodies *mtg.DecodeError.
func (c *Client) GetJSON(ctx context.Context, operation, url string, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s %s: %w", c.provider, operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%s %s: build request: %w", c.provider, operation, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", c.provider, operation, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("provider request",
		zap.String("operation", operation),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &mtg.StatusError{
			Provider:   c.provider,
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", c.provider, operation, err)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return &mtg.DecodeError{Provider: c.provider, Operation: operation, Err: err}
	}
	return nil
}

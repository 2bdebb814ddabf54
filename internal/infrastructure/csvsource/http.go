package csvsource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/prelovedguru/backend/internal/domain"
)

const (
	maxAttempts    = 3
	maxBodyBytes   = 32 << 20
	maxErrorBody   = 512
	userAgent      = "PrelovedGuru/1.0"
	baseBackoff    = 500 * time.Millisecond
	defaultTimeout = 30 * time.Second
	defaultRate    = 1.0
	defaultBurst   = 5
)

// errRetryable marks a response status worth another attempt
var errRetryable = errors.New("retryable status")

// HTTPConfig holds configuration for the HTTP source
type HTTPConfig struct {
	URL     string
	Timeout time.Duration
	// RequestsPerSecond and Burst throttle fetches of the export
	RequestsPerSecond float64
	Burst             int
}

// HTTPSource downloads the product export over HTTP
type HTTPSource struct {
	httpClient  *http.Client
	url         string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
	sleep       func(context.Context, time.Duration) error
}

// NewHTTPSource creates a rate-limited HTTP source
func NewHTTPSource(config HTTPConfig, logger *zap.Logger) *HTTPSource {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRate
	}

	burst := config.Burst
	if burst <= 0 {
		burst = defaultBurst
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &HTTPSource{
		httpClient:  &http.Client{Timeout: timeout},
		url:         config.URL,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:      logger,
		sleep:       sleepContext,
	}
}

// Rows downloads and parses the export. Server errors and 429 responses are
// retried with exponential backoff; other failures return immediately.
func (s *HTTPSource) Rows(ctx context.Context) ([]domain.RawRow, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		body, err := s.fetch(ctx)
		if err == nil {
			rows, err := ParseRows(bytes.NewReader(body))
			if err != nil {
				return nil, fmt.Errorf("failed to parse CSV: %w", err)
			}
			s.logger.Debug("csv fetched", zap.String("url", s.url), zap.Int("rows", len(rows)), zap.Int("attempt", attempt))
			return rows, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !errors.Is(err, errRetryable) && !isTransport(err) {
			return nil, err
		}

		lastErr = err
		s.logger.Warn("csv fetch failed", zap.String("url", s.url), zap.Int("attempt", attempt), zap.Error(err))

		if attempt < maxAttempts {
			if err := s.sleep(ctx, exponentialBackoff(attempt)); err != nil {
				return nil, err
			}
		}
	}

	s.logger.Error("all csv fetch attempts failed", zap.String("url", s.url), zap.Error(lastErr))
	return nil, lastErr
}

// transportError wraps failures to reach the server at all
type transportError struct{ err error }

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func isTransport(err error) bool {
	var te *transportError
	return errors.As(err, &te)
}

// fetch performs one GET and returns the body of a 200 response
func (s *HTTPSource) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/csv")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &transportError{err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := readLimitedBody(resp.Body, maxErrorBody)
		err := fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %v", errRetryable, err)
		}
		return nil, err
	}

	body, err := readLimitedBody(resp.Body, maxBodyBytes)
	if err != nil {
		return nil, &transportError{err: fmt.Errorf("failed to read body: %w", err)}
	}
	return body, nil
}

// exponentialBackoff returns 500ms, 1s, 2s... for attempts 1, 2, 3...
func exponentialBackoff(attempt int) time.Duration {
	return baseBackoff * time.Duration(1<<(attempt-1))
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

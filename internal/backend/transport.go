package backend

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default request pacing shared by every backend of one run.
const (
	DefaultRatePerSec = 8.0
	DefaultBurst      = 16
)

// rateLimiter is a token-bucket rate limiter.
// It allows up to burstSize requests immediately, then refills at ratePerSec tokens/second.
// All methods are safe for concurrent use.
type rateLimiter struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	ratePerSec float64
	lastRefill time.Time
}

func newRateLimiter(ratePerSec float64, burst int) *rateLimiter {
	return &rateLimiter{
		tokens:     float64(burst),
		maxTokens:  float64(burst),
		ratePerSec: ratePerSec,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or ctx is cancelled.
func (rl *rateLimiter) Wait(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	for {
		rl.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(rl.lastRefill).Seconds()
		rl.tokens = min(rl.maxTokens, rl.tokens+elapsed*rl.ratePerSec)
		rl.lastRefill = now

		if rl.tokens >= 1 {
			rl.tokens--
			rl.mu.Unlock()
			return time.Since(start), nil
		}

		waitDur := time.Duration((1.0 - rl.tokens) / rl.ratePerSec * float64(time.Second))
		rl.mu.Unlock()

		select {
		case <-ctx.Done():
			return time.Since(start), ctx.Err()
		case <-time.After(waitDur):
		}
	}
}

// Transport paces outgoing requests and logs each one at debug level.
type Transport struct {
	base    http.RoundTripper
	limiter *rateLimiter
	logger  *zap.Logger
}

// NewTransport wraps base (http.DefaultTransport when nil).
func NewTransport(base http.RoundTripper, ratePerSec float64, burst int, logger *zap.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transport{base: base, limiter: newRateLimiter(ratePerSec, burst), logger: logger}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	waited, err := t.limiter.Wait(req.Context())
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("host", req.URL.Host),
		zap.Duration("waited", waited),
		zap.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		t.logger.Debug("http request failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	t.logger.Debug("http request", append(fields, zap.Int("status", resp.StatusCode))...)
	return resp, nil
}

// NewHTTPClient returns the paced client New hands to every backend when
// Options.HTTPClient is unset.
func NewHTTPClient(logger *zap.Logger) *http.Client {
	return &http.Client{Transport: NewTransport(nil, DefaultRatePerSec, DefaultBurst, logger)}
}

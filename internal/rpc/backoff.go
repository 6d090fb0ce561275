package rpc

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"net"
	"time"

	"github.com/rs/zerolog"
)

// NextBackoffDelay returns the retry delay for attempt N (1-based).
func NextBackoffDelay(cfg BackoffConfig, attempt int, rng *rand.Rand) time.Duration {
	if attempt <= 1 {
		return cfg.InitialDelay
	}
	if cfg.InitialDelay <= 0 {
		return 0
	}
	if cfg.Multiplier < 1.0 {
		cfg.Multiplier = 1.0
	}
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt-1))
	if cfg.MaxDelay > 0 && delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if cfg.Jitter {
		f := 0.5
		if rng != nil {
			f = 0.5 + rng.Float64()
		}
		delay = delay * f
	}
	return time.Duration(delay)
}

// Dialer opens one connection attempt.
type Dialer func(ctx context.Context, network, addr string) (net.Conn, error)

// DialWithRetry dials addr over TCP, sleeping per cfg between failed attempts.
// It gives up after cfg.MaxAttempts attempts (at least one) or when ctx ends.
func DialWithRetry(ctx context.Context, dial Dialer, addr string, cfg BackoffConfig, logger zerolog.Logger) (*NetSocket, error) {
	if dial == nil {
		var d net.Dialer
		dial = d.DialContext
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err := dial(ctx, "tcp", addr)
		if err == nil {
			return NewNetSocket(conn), nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		delay := NextBackoffDelay(cfg, attempt, rng)
		logger.Warn().Err(err).Str("addr", addr).Int("attempt", attempt).Dur("retry_in", delay).Msg("rpc dial failed")
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("rpc: dial %s: %w", addr, ctx.Err())
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("rpc: dial %s after %d attempts: %w", addr, attempts, lastErr)
}

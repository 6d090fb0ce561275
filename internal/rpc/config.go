package rpc

import "time"

// HeaderSize is the width of the size-prefixed length header.
const HeaderSize = 8

// BackoffConfig defines dial retry backoff behavior.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
	MaxAttempts  int
}

// Config holds the framing mode and per-operation timeouts. A zero timeout
// waits forever.
type Config struct {
	SizePrefixed bool

	// HeaderTimeout applies to the length header. The default of zero lets a
	// connection idle between messages; it also lets a silent peer hold a
	// receive open indefinitely.
	HeaderTimeout     time.Duration
	BodyTimeout       time.Duration
	FirstReadTimeout  time.Duration
	StreamIdleTimeout time.Duration
	SendTimeout       time.Duration
	FlushTimeout      time.Duration

	// StreamChunk is the growth step of a streaming receive buffer.
	StreamChunk int
	// MaxPayload is the largest frame accepted in either mode. Zero
	// disables the cap.
	MaxPayload uint64

	Backoff BackoffConfig
}

func DefaultConfig() Config {
	return Config{
		SizePrefixed:      true,
		HeaderTimeout:     0,
		BodyTimeout:       10 * time.Second,
		FirstReadTimeout:  0,
		StreamIdleTimeout: 250 * time.Millisecond,
		SendTimeout:       5 * time.Second,
		FlushTimeout:      1500 * time.Millisecond,
		StreamChunk:       4096,
		MaxPayload:        64 * 1024 * 1024,
		Backoff: BackoffConfig{
			InitialDelay: 250 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     5 * time.Second,
			Jitter:       true,
			MaxAttempts:  5,
		},
	}
}

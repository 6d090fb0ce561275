package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dccarter/suil-archive-sub003/internal/merkle"
	"github.com/dccarter/suil-archive-sub003/internal/rpc"
	"github.com/rs/zerolog"
)

// WireConfig is the wire.toml layout.
type WireConfig struct {
	Framer FramerConfig `toml:"framer"`
	Merkle MerkleConfig `toml:"merkle"`
	Server ServerConfig `toml:"server"`
	Dial   DialConfig   `toml:"dial"`
}

type FramerConfig struct {
	SizePrefixed       bool   `toml:"size_prefixed"`
	HeaderTimeoutMS    int64  `toml:"header_timeout_ms"`
	BodyTimeoutMS      int64  `toml:"body_timeout_ms"`
	FirstReadTimeoutMS int64  `toml:"first_read_timeout_ms"`
	StreamIdleMS       int64  `toml:"stream_idle_timeout_ms"`
	SendTimeoutMS      int64  `toml:"send_timeout_ms"`
	FlushTimeoutMS     int64  `toml:"flush_timeout_ms"`
	StreamChunk        int    `toml:"stream_chunk"`
	MaxPayload         uint64 `toml:"max_payload"`
}

type MerkleConfig struct {
	MaxPair int    `toml:"max_pair"`
	Hash    string `toml:"hash"`
	Strict  bool   `toml:"strict"`
}

type ServerConfig struct {
	Addr        string `toml:"addr"`
	MetricsAddr string `toml:"metrics_addr"`
}

type DialConfig struct {
	InitialDelayMS int64   `toml:"initial_delay_ms"`
	Multiplier     float64 `toml:"multiplier"`
	MaxDelayMS     int64   `toml:"max_delay_ms"`
	Jitter         bool    `toml:"jitter"`
	MaxAttempts    int     `toml:"max_attempts"`
}

// DefaultWireConfig mirrors rpc.DefaultConfig and merkle defaults.
func DefaultWireConfig() WireConfig {
	rc := rpc.DefaultConfig()
	return WireConfig{
		Framer: FramerConfig{
			SizePrefixed:       rc.SizePrefixed,
			HeaderTimeoutMS:    rc.HeaderTimeout.Milliseconds(),
			BodyTimeoutMS:      rc.BodyTimeout.Milliseconds(),
			FirstReadTimeoutMS: rc.FirstReadTimeout.Milliseconds(),
			StreamIdleMS:       rc.StreamIdleTimeout.Milliseconds(),
			SendTimeoutMS:      rc.SendTimeout.Milliseconds(),
			FlushTimeoutMS:     rc.FlushTimeout.Milliseconds(),
			StreamChunk:        rc.StreamChunk,
			MaxPayload:         rc.MaxPayload,
		},
		Merkle: MerkleConfig{
			MaxPair: merkle.DefaultMaxPair,
			Hash:    merkle.HashSHA256,
		},
		Server: ServerConfig{
			Addr:        ":7700",
			MetricsAddr: ":7701",
		},
		Dial: DialConfig{
			InitialDelayMS: rc.Backoff.InitialDelay.Milliseconds(),
			Multiplier:     rc.Backoff.Multiplier,
			MaxDelayMS:     rc.Backoff.MaxDelay.Milliseconds(),
			Jitter:         rc.Backoff.Jitter,
			MaxAttempts:    rc.Backoff.MaxAttempts,
		},
	}
}

// LoadWireConfig overlays the file at path on the defaults and validates the
// result. Unknown keys are rejected.
func LoadWireConfig(path string) (WireConfig, error) {
	cfg := DefaultWireConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return WireConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return WireConfig{}, fmt.Errorf("config parse failed (%s): unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := ValidateWireConfig(cfg); err != nil {
		return WireConfig{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func ValidateWireConfig(cfg WireConfig) error {
	f := cfg.Framer
	for name, v := range map[string]int64{
		"header_timeout_ms":      f.HeaderTimeoutMS,
		"body_timeout_ms":        f.BodyTimeoutMS,
		"first_read_timeout_ms":  f.FirstReadTimeoutMS,
		"stream_idle_timeout_ms": f.StreamIdleMS,
		"send_timeout_ms":        f.SendTimeoutMS,
		"flush_timeout_ms":       f.FlushTimeoutMS,
	} {
		if v < 0 {
			return fmt.Errorf("framer %s must not be negative", name)
		}
	}
	if f.StreamChunk <= 0 {
		return fmt.Errorf("framer stream_chunk must be positive")
	}
	if !f.SizePrefixed && f.StreamIdleMS == 0 {
		return fmt.Errorf("framer stream_idle_timeout_ms is required in streaming mode")
	}
	if cfg.Merkle.MaxPair <= 0 {
		return fmt.Errorf("merkle max_pair must be positive")
	}
	if _, err := merkle.HashByName(cfg.Merkle.Hash); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return fmt.Errorf("server addr is required")
	}
	if cfg.Dial.MaxAttempts < 1 {
		return fmt.Errorf("dial max_attempts must be at least 1")
	}
	return nil
}

// FramerConfig converts the file settings to an rpc.Config.
func (c WireConfig) FramerConfig() rpc.Config {
	ms := func(v int64) time.Duration { return time.Duration(v) * time.Millisecond }
	return rpc.Config{
		SizePrefixed:      c.Framer.SizePrefixed,
		HeaderTimeout:     ms(c.Framer.HeaderTimeoutMS),
		BodyTimeout:       ms(c.Framer.BodyTimeoutMS),
		FirstReadTimeout:  ms(c.Framer.FirstReadTimeoutMS),
		StreamIdleTimeout: ms(c.Framer.StreamIdleMS),
		SendTimeout:       ms(c.Framer.SendTimeoutMS),
		FlushTimeout:      ms(c.Framer.FlushTimeoutMS),
		StreamChunk:       c.Framer.StreamChunk,
		MaxPayload:        c.Framer.MaxPayload,
		Backoff: rpc.BackoffConfig{
			InitialDelay: ms(c.Dial.InitialDelayMS),
			Multiplier:   c.Dial.Multiplier,
			MaxDelay:     ms(c.Dial.MaxDelayMS),
			Jitter:       c.Dial.Jitter,
			MaxAttempts:  c.Dial.MaxAttempts,
		},
	}
}

// Tree builds the configured merkle tree.
func (c WireConfig) Tree(logger zerolog.Logger) (*merkle.Tree, error) {
	h, err := merkle.HashByName(c.Merkle.Hash)
	if err != nil {
		return nil, err
	}
	return &merkle.Tree{
		MaxPair: c.Merkle.MaxPair,
		Hash:    h,
		Strict:  c.Merkle.Strict,
		Logger:  logger,
	}, nil
}

package testlog

import (
	"testing"

	"github.com/dccarter/suil-archive-sub003/internal/logging"
	"github.com/rs/zerolog"
)

// Start configures test logging and returns a logger routed through t.Log.
func Start(t *testing.T) zerolog.Logger {
	t.Helper()
	cfg := logging.ConfigureTests()
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(cfg.Level).With().Str("test", t.Name()).Logger()
	logger.Info().Msg("start")
	return logger
}

package observability

import (
	"github.com/dccarter/suil-archive-sub003/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger builds the runtime logger for app and installs it as the global
// zerolog logger.
func InitLogger(app string) zerolog.Logger {
	logger := logging.Runtime(app)
	log.Logger = logger
	return logger
}

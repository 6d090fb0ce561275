package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "size_prefixed", "sized":
		return sizedTemplate, nil
	case "streaming", "stream":
		return streamingTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const sizedTemplate = `[framer]
size_prefixed = true
header_timeout_ms = 0
body_timeout_ms = 10000
send_timeout_ms = 5000
flush_timeout_ms = 1500
max_payload = 67108864

[merkle]
max_pair = 1024
hash = "sha256"

[server]
addr = ":7700"
metrics_addr = ":7701"

[dial]
initial_delay_ms = 250
multiplier = 2.0
max_delay_ms = 5000
jitter = true
max_attempts = 5
`

const streamingTemplate = `[framer]
size_prefixed = false
first_read_timeout_ms = 0
stream_idle_timeout_ms = 250
send_timeout_ms = 5000
flush_timeout_ms = 1500
stream_chunk = 4096
max_payload = 67108864

[merkle]
max_pair = 1024
hash = "sha256"

[server]
addr = ":7700"
metrics_addr = ":7701"

[dial]
initial_delay_ms = 250
multiplier = 2.0
max_delay_ms = 5000
jitter = true
max_attempts = 5
`

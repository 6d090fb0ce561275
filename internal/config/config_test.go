package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dccarter/suil-archive-sub003/internal/merkle"
	"github.com/dccarter/suil-archive-sub003/internal/testutil/testlog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wire.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestTemplatesLoadAndValidate(t *testing.T) {
	testlog.Start(t)
	for _, kind := range []string{"size_prefixed", "streaming"} {
		path := filepath.Join(t.TempDir(), kind+".toml")
		if err := WriteTemplate(path, kind, false); err != nil {
			t.Fatalf("write template %s: %v", kind, err)
		}
		if err := WriteTemplate(path, kind, false); err == nil {
			t.Fatalf("expected refusal to overwrite %s", path)
		}
		cfg, err := LoadWireConfig(path)
		if err != nil {
			t.Fatalf("load %s: %v", kind, err)
		}
		if cfg.FramerConfig().SizePrefixed != (kind == "size_prefixed") {
			t.Fatalf("%s: wrong framing mode", kind)
		}
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
[framer]
size_prefixed = false
stream_idle_timeout_ms = 100

[merkle]
hash = "blake2b"
`)
	cfg, err := LoadWireConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rc := cfg.FramerConfig()
	if rc.SizePrefixed || rc.StreamIdleTimeout != 100*time.Millisecond {
		t.Fatalf("framer overrides lost: %+v", rc)
	}
	if rc.BodyTimeout != 10*time.Second || rc.FlushTimeout != 1500*time.Millisecond {
		t.Fatalf("defaults lost: %+v", rc)
	}
	if rc.Backoff.MaxAttempts != 5 {
		t.Fatalf("dial defaults lost: %+v", rc.Backoff)
	}
	if cfg.Merkle.MaxPair != merkle.DefaultMaxPair {
		t.Fatalf("max_pair default lost: %d", cfg.Merkle.MaxPair)
	}
	if _, err := cfg.Tree(testlog.Start(t)); err != nil {
		t.Fatalf("tree: %v", err)
	}
}

func TestLoadRejectsUnknownKeysAndBadValues(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"unknown key":   "[framer]\nsize_prefix = true\n",
		"bad hash":      "[merkle]\nhash = \"md5\"\n",
		"negative":      "[framer]\nbody_timeout_ms = -1\n",
		"zero max pair": "[merkle]\nmax_pair = 0\n",
		"no idle":       "[framer]\nsize_prefixed = false\nstream_idle_timeout_ms = 0\n",
		"syntax":        "[framer\n",
	}
	for name, body := range cases {
		if _, err := LoadWireConfig(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	_, err := LoadWireConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "config load failed") {
		t.Fatalf("expected load failure, got %v", err)
	}
}

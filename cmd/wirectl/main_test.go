package main

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dccarter/suil-archive-sub003/internal/config"
	"github.com/dccarter/suil-archive-sub003/internal/merkle"
	"github.com/dccarter/suil-archive-sub003/internal/rpc"
	"github.com/dccarter/suil-archive-sub003/internal/server"
	"github.com/dccarter/suil-archive-sub003/internal/testutil/testlog"
)

func TestRootPrintsHex(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"root", "a", "b", "c"}, &out, testlog.Start(t)); err != nil {
		t.Fatalf("root: %v", err)
	}
	want, err := merkle.Root(merkle.Strings("a", "b", "c"), merkle.DefaultMaxPair)
	if err != nil {
		t.Fatalf("merkle.Root: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != want.Hex() {
		t.Fatalf("root got=%s want=%s", got, want.Hex())
	}
}

func TestRootEmptyPrintsSentinel(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"root"}, &out, testlog.Start(t)); err != nil {
		t.Fatalf("root: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != strings.Repeat("0", 64) {
		t.Fatalf("empty root got=%s", got)
	}
}

func TestRootRejectsUnknownHash(t *testing.T) {
	if err := run([]string{"root", "-hash", "md5", "a"}, &bytes.Buffer{}, testlog.Start(t)); err == nil {
		t.Fatalf("expected error for unknown hash")
	}
}

func TestInitWritesValidTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wire.toml")
	logger := testlog.Start(t)
	if err := run([]string{"init", "-kind", "streaming", "-output", path}, nil, logger); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := run([]string{"init", "-output", path}, nil, logger); err == nil {
		t.Fatalf("expected refusal to overwrite without -force")
	}
	if err := run([]string{"init", "-validate", "-output", path}, nil, logger); err != nil {
		t.Fatalf("validate: %v", err)
	}
	cfg, err := config.LoadWireConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Framer.SizePrefixed {
		t.Fatalf("streaming template loaded as size-prefixed")
	}
}

func TestSendEchoesThroughServer(t *testing.T) {
	logger := testlog.Start(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	echo := server.NewEcho(rpc.NewFramer(config.DefaultWireConfig().FramerConfig(), logger), logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- echo.Serve(ctx, ln) }()
	defer func() {
		cancel()
		<-done
	}()

	var out bytes.Buffer
	if err := run([]string{"send", "-addr", ln.Addr().String(), "hello wire"}, &out, logger); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "hello wire" {
		t.Fatalf("reply got=%q", got)
	}
}

func TestUnknownCommand(t *testing.T) {
	if err := run([]string{"bogus"}, nil, testlog.Start(t)); err == nil {
		t.Fatalf("expected error for unknown command")
	}
}

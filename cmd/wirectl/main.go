package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dccarter/suil-archive-sub003/internal/config"
	"github.com/dccarter/suil-archive-sub003/internal/merkle"
	"github.com/dccarter/suil-archive-sub003/internal/observability"
	"github.com/dccarter/suil-archive-sub003/internal/rpc"
	"github.com/dccarter/suil-archive-sub003/internal/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `usage: wirectl <command> [flags]

commands:
  serve   run the frame echo server with /healthz and /metrics
  send    send one frame and print the echoed reply
  root    print the merkle root of the given values
  init    write or validate a wire.toml template`

func main() {
	logger := observability.InitLogger("wirectl")
	if err := run(os.Args[1:], os.Stdout, logger); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal().Err(err).Msg("wirectl failed")
	}
}

func run(args []string, stdout io.Writer, logger zerolog.Logger) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return flag.ErrHelp
	}
	switch args[0] {
	case "serve":
		return runServe(args[1:], logger)
	case "send":
		return runSend(args[1:], stdout, logger)
	case "root":
		return runRoot(args[1:], stdout, logger)
	case "init":
		return runInit(args[1:], logger)
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// loadConfig returns the defaults when path is empty.
func loadConfig(path string) (config.WireConfig, error) {
	if path == "" {
		return config.DefaultWireConfig(), nil
	}
	return config.LoadWireConfig(path)
}

func runServe(args []string, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "wire.toml path (defaults when empty)")
	node := fs.String("node", "wirectl", "node name reported by /healthz")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
	}
	echo := server.NewEcho(rpc.NewFramer(cfg.FramerConfig(), logger), logger)

	if cfg.Server.MetricsAddr != "" {
		admin := &http.Server{
			Addr:              cfg.Server.MetricsAddr,
			Handler:           server.AdminRouter(*node, echo, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info().Str("addr", admin.Addr).Msg("admin endpoint listening")
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("admin endpoint stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = admin.Shutdown(shutdownCtx)
		}()
	}

	err = echo.Serve(ctx, ln)
	logger.Info().Msg("echo server stopped")
	return err
}

func runSend(args []string, stdout io.Writer, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "wire.toml path (defaults when empty)")
	addr := fs.String("addr", "127.0.0.1:7700", "echo server address")
	timeout := fs.Duration("timeout", 30*time.Second, "overall deadline")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("send takes exactly one payload argument")
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	fc := cfg.FramerConfig()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	sock, err := rpc.DialWithRetry(ctx, nil, *addr, fc.Backoff, logger)
	if err != nil {
		return err
	}
	defer sock.Close()

	framer := rpc.NewFramer(fc, logger)
	if err := framer.SendString(sock, fs.Arg(0)); err != nil {
		return err
	}
	reply, err := framer.Receive(sock)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s\n", reply)
	return err
}

func runRoot(args []string, stdout io.Writer, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("root", flag.ContinueOnError)
	hashName := fs.String("hash", merkle.HashSHA256, "sha256|blake2b|sha3-256")
	maxPair := fs.Int("max-pair", merkle.DefaultMaxPair, "bound on one serialized pair")
	strict := fs.Bool("strict", false, "fail instead of truncating oversized pairs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	h, err := merkle.HashByName(*hashName)
	if err != nil {
		return err
	}
	tree := merkle.New(*maxPair)
	tree.Hash = h
	tree.Strict = *strict
	tree.Logger = logger

	root, err := tree.Root(merkle.Strings(fs.Args()...))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, root.Hex())
	return err
}

func runInit(args []string, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	kind := fs.String("kind", "size_prefixed", "template kind: size_prefixed|streaming")
	output := fs.String("output", "wire.toml", "output path for the template")
	force := fs.Bool("force", false, "overwrite an existing file")
	validate := fs.Bool("validate", false, "validate the file at -output instead of writing it")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *validate {
		if _, err := config.LoadWireConfig(*output); err != nil {
			return err
		}
		logger.Info().Str("path", *output).Msg("config valid")
		return nil
	}
	if err := config.WriteTemplate(*output, *kind, *force); err != nil {
		return err
	}
	logger.Info().Str("kind", *kind).Str("path", *output).Msg("wrote config template")
	return nil
}

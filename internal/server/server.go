package server

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/dccarter/suil-archive-sub003/internal/rpc"
	"github.com/dccarter/suil-archive-sub003/internal/wire/cursor"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Echo answers every received frame with the same payload. Each connection
// is served by one goroutine, so one socket is never used concurrently.
type Echo struct {
	Framer   *rpc.Framer
	Logger   zerolog.Logger
	Appeared time.Time

	mu      sync.Mutex
	conns   map[net.Conn]struct{}
	closing bool
	wg      sync.WaitGroup
}

func NewEcho(framer *rpc.Framer, logger zerolog.Logger) *Echo {
	return &Echo{
		Framer:   framer,
		Logger:   logger,
		Appeared: time.Now(),
		conns:    make(map[net.Conn]struct{}),
	}
}

// Serve accepts on ln until ctx ends or Accept fails, then closes every open
// connection and waits for their handlers. Only an Accept failure that is not
// a shutdown is returned.
func (e *Echo) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		ln.Close()
		e.closeAll()
	})
	defer stop()

	e.Logger.Info().Str("addr", ln.Addr().String()).Str("mode", e.Framer.Mode()).Msg("echo server listening")
	for {
		conn, err := ln.Accept()
		if err != nil {
			// Handlers may be parked on a header read with no deadline, so
			// they only exit once their connections are closed.
			e.closeAll()
			e.wg.Wait()
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			e.Logger.Error().Err(err).Msg("echo server accept failed")
			return err
		}
		if !e.track(conn) {
			conn.Close()
			continue
		}
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			defer e.untrack(conn)
			e.handle(conn)
		}()
	}
}

func (e *Echo) handle(conn net.Conn) {
	defer conn.Close()
	logger := e.Logger.With().
		Str("conn", uuid.NewString()).
		Str("peer", conn.RemoteAddr().String()).
		Logger()
	logger.Debug().Msg("connection opened")

	sock := rpc.NewNetSocket(conn)
	buf := cursor.NewHeap(0)
	defer buf.Release()
	for {
		if err := e.Framer.ReceiveRaw(sock, buf); err != nil {
			if errors.Is(err, rpc.ErrClosed) {
				logger.Debug().Msg("connection closed by peer")
			} else {
				logger.Warn().Err(err).Msg("dropping connection")
			}
			return
		}
		if err := e.Framer.SendRaw(sock, buf.Bytes()); err != nil {
			logger.Warn().Err(err).Msg("dropping connection")
			return
		}
	}
}

// track reports false once shutdown has begun.
func (e *Echo) track(conn net.Conn) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closing {
		return false
	}
	e.conns[conn] = struct{}{}
	return true
}

func (e *Echo) untrack(conn net.Conn) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.conns, conn)
}

func (e *Echo) closeAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closing = true
	for conn := range e.conns {
		conn.Close()
	}
}

// Connections is the number of open connections.
func (e *Echo) Connections() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.conns)
}

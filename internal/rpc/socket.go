package rpc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"
)

// Socket is the blocking duplex contract the framer drives. A zero timeout
// waits forever; an expired timeout surfaces as ErrTimeout.
type Socket interface {
	// Send writes all of p.
	Send(p []byte, timeout time.Duration) error
	// Read reads up to len(p) bytes.
	Read(p []byte, timeout time.Duration) (int, error)
	// Receive reads exactly len(p) bytes.
	Receive(p []byte, timeout time.Duration) error
	Flush(timeout time.Duration) error
}

const netWriteBuffer = 64 * 1024

// NetSocket adapts a net.Conn (TCP, TLS, pipe) to Socket using deadlines.
// Sends are buffered until Flush.
type NetSocket struct {
	conn net.Conn
	w    *bufio.Writer
}

func NewNetSocket(conn net.Conn) *NetSocket {
	return &NetSocket{conn: conn, w: bufio.NewWriterSize(conn, netWriteBuffer)}
}

func (s *NetSocket) Conn() net.Conn { return s.conn }

func (s *NetSocket) Close() error { return s.conn.Close() }

func (s *NetSocket) Send(p []byte, timeout time.Duration) error {
	if err := s.conn.SetWriteDeadline(deadline(timeout)); err != nil {
		return mapNetErr(err)
	}
	n, err := s.w.Write(p)
	if err != nil {
		return fmt.Errorf("sent %d of %d bytes: %w", n, len(p), mapNetErr(err))
	}
	return nil
}

func (s *NetSocket) Read(p []byte, timeout time.Duration) (int, error) {
	if err := s.conn.SetReadDeadline(deadline(timeout)); err != nil {
		return 0, mapNetErr(err)
	}
	n, err := s.conn.Read(p)
	if err != nil {
		return n, mapNetErr(err)
	}
	return n, nil
}

func (s *NetSocket) Receive(p []byte, timeout time.Duration) error {
	if err := s.conn.SetReadDeadline(deadline(timeout)); err != nil {
		return mapNetErr(err)
	}
	n, err := io.ReadFull(s.conn, p)
	if err != nil {
		return fmt.Errorf("received %d of %d bytes: %w", n, len(p), mapNetErr(err))
	}
	return nil
}

func (s *NetSocket) Flush(timeout time.Duration) error {
	if err := s.conn.SetWriteDeadline(deadline(timeout)); err != nil {
		return mapNetErr(err)
	}
	if err := s.w.Flush(); err != nil {
		return mapNetErr(err)
	}
	return nil
}

func deadline(timeout time.Duration) time.Time {
	if timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(timeout)
}

func mapNetErr(err error) error {
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.ErrClosedPipe), errors.Is(err, net.ErrClosed):
		return fmt.Errorf("%w: %v", ErrClosed, err)
	default:
		return err
	}
}

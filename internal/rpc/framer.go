package rpc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/dccarter/suil-archive-sub003/internal/observability"
	"github.com/dccarter/suil-archive-sub003/internal/wire/cursor"
	"github.com/rs/zerolog"
)

const (
	ModeSizePrefixed = "size_prefixed"
	ModeStreaming    = "streaming"
)

// Framer sends and receives whole frames over a Socket. The framing mode is
// fixed at construction.
type Framer struct {
	cfg    Config
	logger zerolog.Logger
}

func NewFramer(cfg Config, logger zerolog.Logger) *Framer {
	if cfg.StreamChunk <= 0 {
		cfg.StreamChunk = DefaultConfig().StreamChunk
	}
	return &Framer{cfg: cfg, logger: logger.With().Str("mode", modeName(cfg.SizePrefixed)).Logger()}
}

func (f *Framer) SizePrefixed() bool { return f.cfg.SizePrefixed }

func (f *Framer) Mode() string { return modeName(f.cfg.SizePrefixed) }

func modeName(sizePrefixed bool) string {
	if sizePrefixed {
		return ModeSizePrefixed
	}
	return ModeStreaming
}

// ReceiveRaw reads one frame into buf, replacing its contents. buf may be
// re-provisioned, so views taken before the call are stale afterwards.
func (f *Framer) ReceiveRaw(sock Socket, buf *cursor.Heap) error {
	var err error
	if f.cfg.SizePrefixed {
		err = f.receiveSized(sock, buf)
	} else {
		err = f.receiveStream(sock, buf)
	}
	if err != nil {
		observability.RecordFrame("receive", f.Mode(), "error", 0)
		f.logger.Warn().Err(err).Int("buffered", buf.Len()).Msg("rpc receive failed")
		return err
	}
	observability.RecordFrame("receive", f.Mode(), "ok", buf.Len())
	f.logger.Trace().Int("bytes", buf.Len()).Msg("rpc frame received")
	return nil
}

// Receive reads one frame into a fresh allocation.
func (f *Framer) Receive(sock Socket) ([]byte, error) {
	buf := cursor.NewHeap(0)
	if err := f.ReceiveRaw(sock, buf); err != nil {
		buf.Release()
		return nil, err
	}
	return buf.Detach(), nil
}

func (f *Framer) receiveSized(sock Socket, buf *cursor.Heap) error {
	var hdr [HeaderSize]byte
	if err := sock.Receive(hdr[:], f.cfg.HeaderTimeout); err != nil {
		return fmt.Errorf("%w: length header: %w", ErrShortRead, err)
	}
	size := binary.LittleEndian.Uint64(hdr[:])
	if size > math.MaxInt32 || (f.cfg.MaxPayload > 0 && size > f.cfg.MaxPayload) {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrMalformedLength, size, f.cfg.MaxPayload)
	}

	buf.Reset()
	if buf.Cap() < int(size) {
		buf.CopyFrom(nil, int(size))
	}
	if size == 0 {
		return nil
	}
	body := buf.Available()[:size]
	if err := sock.Receive(body, f.cfg.BodyTimeout); err != nil {
		return fmt.Errorf("%w: body of %d bytes: %w", ErrShortRead, size, err)
	}
	buf.Commit(int(size))
	return nil
}

// receiveStream reads until a read comes back short of the free space, or
// until a follow-up read times out with data already buffered. A read that
// exactly fills the buffer means more may be coming. Frames of up to
// MaxPayload bytes are accepted, the same bound as the size-prefixed mode.
func (f *Framer) receiveStream(sock Socket, buf *cursor.Heap) error {
	buf.Reset()
	if buf.Cap() == 0 {
		buf.CopyFrom(nil, f.cfg.StreamChunk)
	}
	timeout := f.cfg.FirstReadTimeout
	for {
		space := buf.Available()
		n, err := sock.Read(space, timeout)
		buf.Commit(n)
		if err != nil {
			if errors.Is(err, ErrTimeout) {
				if buf.Len() > 0 {
					return nil
				}
				return fmt.Errorf("no data before first read deadline: %w", err)
			}
			return fmt.Errorf("%w: after %d bytes: %w", ErrShortRead, buf.Len(), err)
		}
		if f.cfg.MaxPayload > 0 && uint64(buf.Len()) > f.cfg.MaxPayload {
			return fmt.Errorf("%w: streaming frame exceeds %d bytes", ErrCapacityExceeded, f.cfg.MaxPayload)
		}
		if n < len(space) {
			if buf.Len() == 0 {
				return fmt.Errorf("%w: empty read", ErrShortRead)
			}
			return nil
		}
		buf.Grow(f.growStep(buf.Len()))
		timeout = f.cfg.StreamIdleTimeout
	}
}

// growStep is StreamChunk, shortened near MaxPayload so the buffer never
// holds more than one byte past the cap. That byte tells a frame of exactly
// MaxPayload bytes apart from an oversized one.
func (f *Framer) growStep(buffered int) int {
	step := f.cfg.StreamChunk
	if f.cfg.MaxPayload > 0 {
		if room := f.cfg.MaxPayload - uint64(buffered) + 1; room < uint64(step) {
			step = int(room)
		}
	}
	return step
}

// SendRaw writes payload as one frame and flushes the socket.
func (f *Framer) SendRaw(sock Socket, payload []byte) error {
	if err := f.send(sock, payload); err != nil {
		observability.RecordFrame("send", f.Mode(), "error", 0)
		f.logger.Warn().Err(err).Int("bytes", len(payload)).Msg("rpc send failed")
		return err
	}
	observability.RecordFrame("send", f.Mode(), "ok", len(payload))
	f.logger.Trace().Int("bytes", len(payload)).Msg("rpc frame sent")
	return nil
}

// SendString sends s without copying its bytes.
func (f *Framer) SendString(sock Socket, s string) error {
	return f.SendRaw(sock, unsafe.Slice(unsafe.StringData(s), len(s)))
}

// SendBuffer sends the unconsumed bytes of b and consumes them on success.
func (f *Framer) SendBuffer(sock Socket, b cursor.Buffer) error {
	if err := f.SendRaw(sock, b.Bytes()); err != nil {
		return err
	}
	b.Discard(b.Len())
	return nil
}

func (f *Framer) send(sock Socket, payload []byte) error {
	if f.cfg.SizePrefixed {
		if f.cfg.MaxPayload > 0 && uint64(len(payload)) > f.cfg.MaxPayload {
			return fmt.Errorf("%w: %d bytes (max %d)", ErrCapacityExceeded, len(payload), f.cfg.MaxPayload)
		}
		var hdr [HeaderSize]byte
		binary.LittleEndian.PutUint64(hdr[:], uint64(len(payload)))
		if err := sock.Send(hdr[:], f.cfg.SendTimeout); err != nil {
			return fmt.Errorf("%w: length header: %w", ErrShortWrite, err)
		}
	}
	if len(payload) > 0 {
		if err := sock.Send(payload, f.cfg.SendTimeout); err != nil {
			return fmt.Errorf("%w: body of %d bytes: %w", ErrShortWrite, len(payload), err)
		}
	}
	if err := sock.Flush(f.cfg.FlushTimeout); err != nil {
		return fmt.Errorf("%w: flush: %w", ErrShortWrite, err)
	}
	return nil
}

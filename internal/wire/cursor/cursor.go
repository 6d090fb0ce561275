// Package cursor owns capacity-bounded byte buffers tracked by a head
// (consume) and tail (produce) cursor.
//
// Ownership boundary:
// - borrowed views over caller memory
// - heap buffers allocated once and re-provisioned, never grown in place
// - inline buffers with a compile-time power-of-two capacity
//
// Forward and Reverse are partial operations: they move as many bytes as fit
// and return the count. Callers check the count.
package cursor

// Buffer is the shared cursor contract. Invariant: 0 <= head <= tail <= Cap().
type Buffer interface {
	// Forward appends up to Cap()-tail bytes of p and returns the count.
	Forward(p []byte) int
	// Reverse consumes up to Len() bytes into p and returns the count.
	Reverse(p []byte) int
	// Discard consumes up to n bytes without copying them out.
	Discard(n int) int
	// Reset sets head and tail to zero; capacity is kept.
	Reset()
	Len() int
	Cap() int
	// Bytes is the unconsumed region [head, tail).
	Bytes() []byte
	// Available is the free region [tail, Cap()).
	Available() []byte
	// Commit marks up to n bytes of Available() as written.
	Commit(n int) int
}

// cursors carries the head/tail pair over a window supplied per call, so the
// variants differ only in where the window lives.
type cursors struct {
	head int
	tail int
}

func (c *cursors) forward(win, p []byte) int {
	if c.tail >= len(win) {
		return 0
	}
	n := copy(win[c.tail:], p)
	c.tail += n
	return n
}

func (c *cursors) reverse(win, p []byte) int {
	n := copy(p, win[c.head:c.tail])
	c.head += n
	return n
}

func (c *cursors) discard(n int) int {
	if n < 0 {
		return 0
	}
	if avail := c.tail - c.head; n > avail {
		n = avail
	}
	c.head += n
	return n
}

func (c *cursors) commit(win []byte, n int) int {
	if n < 0 {
		return 0
	}
	if free := len(win) - c.tail; n > free {
		n = free
	}
	c.tail += n
	return n
}

func (c *cursors) reset() {
	c.head, c.tail = 0, 0
}

func (c *cursors) size() int {
	return c.tail - c.head
}

// Borrowed is a cursor view over caller-owned memory. It never allocates and
// never frees.
type Borrowed struct {
	win []byte
	cursors
}

// Borrow returns an empty buffer whose capacity is len(p).
func Borrow(p []byte) *Borrowed {
	return &Borrowed{win: p}
}

// View returns a buffer whose unconsumed region is all of p.
func View(p []byte) *Borrowed {
	return &Borrowed{win: p, cursors: cursors{tail: len(p)}}
}

func (b *Borrowed) Forward(p []byte) int { return b.forward(b.win, p) }
func (b *Borrowed) Reverse(p []byte) int { return b.reverse(b.win, p) }
func (b *Borrowed) Discard(n int) int    { return b.discard(n) }
func (b *Borrowed) Reset()               { b.reset() }
func (b *Borrowed) Len() int             { return b.size() }
func (b *Borrowed) Cap() int             { return len(b.win) }
func (b *Borrowed) Bytes() []byte        { return b.win[b.head:b.tail] }
func (b *Borrowed) Available() []byte    { return b.win[b.tail:] }
func (b *Borrowed) Commit(n int) int     { return b.commit(b.win, n) }

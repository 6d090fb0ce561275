package cursor

// noCopy trips `go vet` copylocks when a Heap is copied by value.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Heap owns one allocation made at construction. Re-provisioning through
// CopyFrom or Grow drops the current allocation and makes a new one; views
// taken before that point no longer alias the buffer.
type Heap struct {
	_   noCopy
	win []byte
	cursors
	released bool
}

func NewHeap(size int) *Heap {
	if size < 0 {
		size = 0
	}
	return &Heap{win: make([]byte, size)}
}

func (h *Heap) Forward(p []byte) int { return h.forward(h.win, p) }
func (h *Heap) Reverse(p []byte) int { return h.reverse(h.win, p) }
func (h *Heap) Discard(n int) int    { return h.discard(n) }
func (h *Heap) Reset()               { h.reset() }
func (h *Heap) Len() int             { return h.size() }
func (h *Heap) Cap() int             { return len(h.win) }
func (h *Heap) Bytes() []byte        { return h.win[h.head:h.tail] }
func (h *Heap) Available() []byte    { return h.win[h.tail:] }
func (h *Heap) Commit(n int) int     { return h.commit(h.win, n) }

// CopyFrom replaces the allocation with a new one of size bytes holding the
// first min(size, len(data)) bytes of data, and returns how many were copied.
func (h *Heap) CopyFrom(data []byte, size int) int {
	if size < 0 {
		size = 0
	}
	h.win = make([]byte, size)
	h.reset()
	h.released = false
	return h.forward(h.win, data)
}

// Grow re-provisions with extra more bytes of free space after the
// unconsumed region. Consumed bytes are not carried over.
func (h *Heap) Grow(extra int) {
	if extra < 0 {
		extra = 0
	}
	pending := h.win[h.head:h.tail]
	next := make([]byte, len(pending)+len(h.win)-h.tail+extra)
	n := copy(next, pending)
	h.win = next
	h.head, h.tail = 0, n
	h.released = false
}

// Release drops the allocation. It reports false when there was nothing left
// to release. A released Heap behaves as a zero-capacity buffer.
func (h *Heap) Release() bool {
	if h.released {
		return false
	}
	h.win = nil
	h.reset()
	h.released = true
	return true
}

// Detach hands the unconsumed bytes to the caller and releases the buffer.
func (h *Heap) Detach() []byte {
	out := h.win[h.head:h.tail:h.tail]
	h.Release()
	return out
}

package cursor

import "unsafe"

// MaxInline is the largest inline capacity.
const MaxInline = 8192

// Pow2 admits only power-of-two arrays up to MaxInline bytes, so an invalid
// inline capacity is rejected at compile time.
type Pow2 interface {
	~[1]byte | ~[2]byte | ~[4]byte | ~[8]byte | ~[16]byte | ~[32]byte |
		~[64]byte | ~[128]byte | ~[256]byte | ~[512]byte | ~[1024]byte |
		~[2048]byte | ~[4096]byte | ~[8192]byte
}

// Inline keeps its storage in the value itself. The zero value is an empty
// buffer ready for use; use it through a pointer.
type Inline[A Pow2] struct {
	arr A
	cursors
}

func (b *Inline[A]) window() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&b.arr)), unsafe.Sizeof(b.arr))
}

func (b *Inline[A]) Forward(p []byte) int { return b.forward(b.window(), p) }
func (b *Inline[A]) Reverse(p []byte) int { return b.reverse(b.window(), p) }
func (b *Inline[A]) Discard(n int) int    { return b.discard(n) }
func (b *Inline[A]) Reset()               { b.reset() }
func (b *Inline[A]) Len() int             { return b.size() }
func (b *Inline[A]) Cap() int             { return int(unsafe.Sizeof(b.arr)) }
func (b *Inline[A]) Bytes() []byte        { return b.window()[b.head:b.tail] }
func (b *Inline[A]) Available() []byte    { return b.window()[b.tail:] }
func (b *Inline[A]) Commit(n int) int     { return b.commit(b.window(), n) }

var (
	_ Buffer = (*Borrowed)(nil)
	_ Buffer = (*Heap)(nil)
	_ Buffer = (*Inline[[64]byte])(nil)
)

package cursor

import (
	"bytes"
	"testing"
)

func exerciseContract(t *testing.T, name string, b Buffer) {
	t.Helper()
	capacity := b.Cap()
	src := bytes.Repeat([]byte{0x5a}, capacity+17)

	accepted := 0
	for i := 0; i < 4; i++ {
		accepted += b.Forward(src[:capacity/2+3])
		if accepted > capacity {
			t.Fatalf("%s: forward accepted %d over capacity %d", name, accepted, capacity)
		}
	}
	if accepted != capacity || b.Len() != capacity {
		t.Fatalf("%s: accepted=%d len=%d want %d", name, accepted, b.Len(), capacity)
	}
	if n := b.Forward([]byte{1}); n != 0 {
		t.Fatalf("%s: forward into full buffer wrote %d", name, n)
	}

	out := make([]byte, capacity+10)
	if n := b.Reverse(out[:3]); n != 3 || b.Len() != capacity-3 {
		t.Fatalf("%s: reverse n=%d len=%d", name, n, b.Len())
	}
	if n := b.Reverse(out); n != capacity-3 {
		t.Fatalf("%s: reverse yielded %d, want %d", name, n, capacity-3)
	}
	if n := b.Reverse(out); n != 0 {
		t.Fatalf("%s: reverse on drained buffer yielded %d", name, n)
	}
	// draining does not rewind the tail
	if n := b.Forward([]byte{1}); n != 0 {
		t.Fatalf("%s: forward after drain wrote %d before reset", name, n)
	}

	b.Reset()
	if b.Len() != 0 || b.Cap() != capacity {
		t.Fatalf("%s: after reset len=%d cap=%d", name, b.Len(), b.Cap())
	}
	if n := b.Forward([]byte("abc")); n != 3 || !bytes.Equal(b.Bytes(), []byte("abc")) {
		t.Fatalf("%s: forward after reset n=%d bytes=%q", name, n, b.Bytes())
	}
	if n := b.Discard(10); n != 3 || b.Len() != 0 {
		t.Fatalf("%s: discard n=%d len=%d", name, n, b.Len())
	}
}

func TestBufferContractAcrossVariants(t *testing.T) {
	var inline Inline[[64]byte]
	exerciseContract(t, "borrowed", Borrow(make([]byte, 64)))
	exerciseContract(t, "heap", NewHeap(64))
	exerciseContract(t, "inline", &inline)
}

func TestAvailableAndCommit(t *testing.T) {
	b := NewHeap(8)
	n := copy(b.Available(), "hello")
	if got := b.Commit(n); got != 5 {
		t.Fatalf("commit got=%d", got)
	}
	if got := b.Commit(100); got != 3 {
		t.Fatalf("commit clamps to free space, got=%d", got)
	}
	if b.Len() != 8 || len(b.Available()) != 0 {
		t.Fatalf("len=%d available=%d", b.Len(), len(b.Available()))
	}
}

func TestViewBorrowsFilledBytes(t *testing.T) {
	src := []byte("payload")
	v := View(src)
	if v.Len() != len(src) || v.Cap() != len(src) {
		t.Fatalf("view len=%d cap=%d", v.Len(), v.Cap())
	}
	src[0] = 'P'
	if v.Bytes()[0] != 'P' {
		t.Fatalf("view copied instead of borrowing")
	}
}

func TestHeapCopyFromReplacesAllocation(t *testing.T) {
	h := NewHeap(4)
	h.Forward([]byte{1, 2, 3, 4})
	old := h.Bytes()

	if n := h.CopyFrom([]byte("abcdef"), 16); n != 6 {
		t.Fatalf("copied %d", n)
	}
	if h.Cap() != 16 || !bytes.Equal(h.Bytes(), []byte("abcdef")) {
		t.Fatalf("cap=%d bytes=%q", h.Cap(), h.Bytes())
	}
	h.Bytes()[0] = 'z'
	if old[0] != 1 {
		t.Fatalf("old view aliases new allocation")
	}

	if n := h.CopyFrom([]byte("abcdef"), 2); n != 2 || h.Len() != 2 {
		t.Fatalf("truncating copy n=%d len=%d", n, h.Len())
	}
}

func TestHeapGrowCarriesUnconsumed(t *testing.T) {
	h := NewHeap(4)
	h.Forward([]byte{1, 2, 3, 4})
	var skip [1]byte
	h.Reverse(skip[:])

	h.Grow(8)
	if h.Cap() != 3+8 {
		t.Fatalf("cap after grow got=%d", h.Cap())
	}
	if !bytes.Equal(h.Bytes(), []byte{2, 3, 4}) {
		t.Fatalf("bytes after grow got=%v", h.Bytes())
	}
	if n := h.Forward(bytes.Repeat([]byte{9}, 20)); n != 8 {
		t.Fatalf("forward after grow got=%d", n)
	}
}

func TestHeapReleaseOnce(t *testing.T) {
	h := NewHeap(32)
	h.Forward([]byte("x"))
	if !h.Release() {
		t.Fatalf("first release should report true")
	}
	if h.Release() {
		t.Fatalf("second release should report false")
	}
	if h.Cap() != 0 || h.Len() != 0 || h.Forward([]byte("y")) != 0 {
		t.Fatalf("released heap should behave as empty")
	}
	h.CopyFrom(nil, 8)
	if h.Cap() != 8 {
		t.Fatalf("re-provision after release got cap=%d", h.Cap())
	}
}

func TestHeapDetach(t *testing.T) {
	h := NewHeap(16)
	h.Forward([]byte("frame"))
	out := h.Detach()
	if string(out) != "frame" {
		t.Fatalf("detach got=%q", out)
	}
	if h.Cap() != 0 {
		t.Fatalf("detach should release")
	}
}

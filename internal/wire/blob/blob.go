// Package blob owns fixed-size byte values.
//
// Ownership boundary:
// - fixed capacity byte arrays with value semantics
// - hex/base64 textual projections
// - JSON/text encoding of the hex form
package blob

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"unsafe"
)

// Array lists the array shapes a Blob can be built over.
type Array interface {
	~[1]byte | ~[2]byte | ~[4]byte | ~[8]byte | ~[12]byte | ~[16]byte |
		~[20]byte | ~[24]byte | ~[32]byte | ~[48]byte | ~[64]byte |
		~[128]byte | ~[256]byte
}

// LengthError reports a construction from more bytes than the blob holds.
type LengthError struct {
	Want int
	Got  int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("blob: %d bytes do not fit in %d", e.Got, e.Want)
}

// Blob is an N-byte value. N is fixed by the array type and the storage is
// never reallocated; copying a Blob copies its bytes.
type Blob[A Array] struct {
	v A
}

// Common shapes.
type (
	B4  = Blob[[4]byte]
	B8  = Blob[[8]byte]
	B16 = Blob[[16]byte]
	B20 = Blob[[20]byte]
	B32 = Blob[[32]byte]
	B64 = Blob[[64]byte]
)

// New returns a zero-filled blob with b copied to its start.
func New[A Array](b ...byte) (Blob[A], error) {
	var out Blob[A]
	if len(b) > out.Len() {
		return Blob[A]{}, &LengthError{Want: out.Len(), Got: len(b)}
	}
	copy(out.raw(), b)
	return out, nil
}

// MustNew is New for literals known to fit.
func MustNew[A Array](b ...byte) Blob[A] {
	out, err := New[A](b...)
	if err != nil {
		panic(err)
	}
	return out
}

// FromArray wraps an existing array value.
func FromArray[A Array](a A) Blob[A] {
	return Blob[A]{v: a}
}

// Parse builds a blob from hex text with the FromHex rules.
func Parse[A Array](s string) Blob[A] {
	var out Blob[A]
	out.FromHex(s)
	return out
}

func (b *Blob[A]) raw() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&b.v)), unsafe.Sizeof(b.v))
}

// Len is the fixed capacity N.
func (b Blob[A]) Len() int {
	return int(unsafe.Sizeof(b.v))
}

// Array returns a copy of the underlying array.
func (b Blob[A]) Array() A {
	return b.v
}

// Bytes returns a view of the blob's storage. The view aliases b and is only
// valid while b is addressable and alive.
func (b *Blob[A]) Bytes() []byte {
	return b.raw()
}

// Clone returns a freshly allocated copy of the bytes.
func (b Blob[A]) Clone() []byte {
	out := make([]byte, b.Len())
	copy(out, b.raw())
	return out
}

func (b Blob[A]) Equal(other Blob[A]) bool {
	return b.v == other.v
}

// Hex renders lowercase hex, two digits per byte, no separators.
func (b Blob[A]) Hex() string {
	return hex.EncodeToString(b.raw())
}

func (b Blob[A]) String() string {
	return b.Hex()
}

// Format prints hex for %v and %s, hex of the raw bytes for %x and %X, and
// quoted hex for %q, honoring width and flags. Other verbs format the
// underlying array.
func (b Blob[A]) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v', 's':
		fmt.Fprintf(f, fmt.FormatString(f, 's'), b.Hex())
	case 'q':
		fmt.Fprintf(f, fmt.FormatString(f, 'q'), b.Hex())
	case 'x', 'X':
		fmt.Fprintf(f, fmt.FormatString(f, verb), b.raw())
	default:
		fmt.Fprintf(f, fmt.FormatString(f, verb), b.Array())
	}
}

func (b Blob[A]) Base64() string {
	return base64.StdEncoding.EncodeToString(b.raw())
}

// FromHex decodes at most N bytes from s and returns how many were decoded.
// Excess input is ignored and decoding stops at the first invalid digit; the
// remaining bytes keep their previous value.
func (b *Blob[A]) FromHex(s string) int {
	limit := len(s) &^ 1
	if limit > 2*b.Len() {
		limit = 2 * b.Len()
	}
	n, _ := hex.Decode(b.raw(), []byte(s[:limit]))
	return n
}

// FromBase64 replaces the contents with the decoded text, truncated to N.
func (b *Blob[A]) FromBase64(s string) (int, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return 0, fmt.Errorf("blob: decode base64: %w", err)
	}
	b.v = *new(A)
	return b.CopyFrom(data), nil
}

// CopyFrom copies min(N, len(src)) bytes into the start of b.
func (b *Blob[A]) CopyFrom(src []byte) int {
	return copy(b.raw(), src)
}

// CopyAt writes src at off. It writes nothing and returns false when the write
// would run past N.
func (b *Blob[A]) CopyAt(off int, src []byte) bool {
	if off < 0 || off+len(src) > b.Len() {
		return false
	}
	copy(b.raw()[off:], src)
	return true
}

func (b *Blob[A]) CopyStringAt(off int, s string) bool {
	if off < 0 || off+len(s) > b.Len() {
		return false
	}
	copy(b.raw()[off:], s)
	return true
}

// Slice returns a copy of [start, end). Callers guarantee end > start and
// end <= N.
func (b Blob[A]) Slice(start, end int) []byte {
	if start < 0 || end <= start || end > b.Len() {
		panic(fmt.Sprintf("blob: slice [%d:%d] out of range for %d bytes", start, end, b.Len()))
	}
	out := make([]byte, end-start)
	copy(out, b.raw()[start:end])
	return out
}

// Zero clears [start, end), clamped to the blob.
func (b *Blob[A]) Zero(start, end int) {
	start, end = b.clamp(start, end)
	clear(b.raw()[start:end])
}

// IsNil reports whether every byte in [start, end) is zero.
func (b Blob[A]) IsNil(start, end int) bool {
	start, end = b.clamp(start, end)
	for _, c := range b.raw()[start:end] {
		if c != 0 {
			return false
		}
	}
	return true
}

func (b Blob[A]) IsZero() bool {
	return b.v == *new(A)
}

func (b Blob[A]) clamp(start, end int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > b.Len() {
		end = b.Len()
	}
	if end < start {
		end = start
	}
	return start, end
}

// MarshalJSON encodes the blob as a quoted hex string.
func (b Blob[A]) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Hex())
}

// UnmarshalJSON accepts a quoted hex string; a short string leaves the
// remaining bytes zero.
func (b *Blob[A]) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("blob: expected hex string: %w", err)
	}
	b.v = *new(A)
	b.FromHex(s)
	return nil
}

func (b Blob[A]) MarshalText() ([]byte, error) {
	return []byte(b.Hex()), nil
}

func (b *Blob[A]) UnmarshalText(text []byte) error {
	b.v = *new(A)
	b.FromHex(string(text))
	return nil
}

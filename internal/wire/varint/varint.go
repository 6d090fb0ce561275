// Package varint holds an 8-byte big-endian integer value built on blob.
package varint

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dccarter/suil-archive-sub003/internal/wire/blob"
)

// Size is the stored width in bytes.
const Size = 8

var ErrOverflow = errors.New("varint: value does not fit target width")

// Integer is every width ReadAs/Write convert across.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// VarInt stores one uint64 in big-endian order regardless of host order.
type VarInt struct {
	blob.Blob[[Size]byte]
}

func New(v uint64) VarInt {
	var out VarInt
	out.Set(v)
	return out
}

// FromBytes reads the first 8 bytes of b as a big-endian value.
func FromBytes(b []byte) (VarInt, error) {
	if len(b) < Size {
		return VarInt{}, fmt.Errorf("varint: need %d bytes, have %d", Size, len(b))
	}
	var out VarInt
	out.CopyFrom(b[:Size])
	return out, nil
}

func (v VarInt) Uint64() uint64 {
	a := v.Array()
	return binary.BigEndian.Uint64(a[:])
}

func (v *VarInt) Set(x uint64) {
	binary.BigEndian.PutUint64(v.Bytes(), x)
}

// Length counts significant bytes: 0 for zero, else 1..8.
func (v VarInt) Length() int {
	n := 0
	for x := v.Uint64(); x != 0; x >>= 8 {
		n++
	}
	return n
}

// AppendTo appends the 8-byte big-endian form to dst.
func (v VarInt) AppendTo(dst []byte) []byte {
	a := v.Array()
	return append(dst, a[:]...)
}

// Write stores x widened to 64 bits; signed values are sign-extended.
func Write[T Integer](v *VarInt, x T) {
	v.Set(uint64(x))
}

// ReadAs converts the stored value to T, failing with ErrOverflow when it
// does not survive the round trip through T. Negative values written with
// Write read back unchanged at any width that holds them.
//
// The 64 stored bits carry no sign of their own and are read as two's
// complement. A signed T sees a stored value of 1<<63 or more as negative,
// so ReadAs[int64] and ReadAs[int] (on 64-bit platforms) never report
// ErrOverflow. Read unsigned values above math.MaxInt64 with an unsigned T.
func ReadAs[T Integer](v VarInt) (T, error) {
	u := v.Uint64()
	out := T(u)
	if uint64(out) != u {
		return out, fmt.Errorf("%w: %#x", ErrOverflow, u)
	}
	return out, nil
}

// TruncateAs converts the stored value to T keeping only its low bits.
func TruncateAs[T Integer](v VarInt) T {
	return T(v.Uint64())
}

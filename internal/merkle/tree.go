// Package merkle computes one content-binding digest over an ordered sequence
// of opaque values.
//
// Values are paired left to right (an odd last value pairs with itself), each
// pair is serialized into a bounded scratch buffer and double hashed. The same
// pairing is repeated over the resulting digests until one remains.
package merkle

import (
	"crypto/sha256"
	"encoding"
	"errors"
	"fmt"
	"hash"

	"github.com/dccarter/suil-archive-sub003/internal/observability"
	"github.com/dccarter/suil-archive-sub003/internal/wire/blob"
	"github.com/dccarter/suil-archive-sub003/internal/wire/cursor"
	"github.com/dccarter/suil-archive-sub003/internal/wire/varint"
	"github.com/rs/zerolog"
)

// DigestSize is the width of every tree digest.
const DigestSize = 32

// DefaultMaxPair bounds the serialized form of one pair.
const DefaultMaxPair = 1024

var (
	ErrPairTruncated = errors.New("merkle: pair serialization exceeds max pair size")
	ErrDigestSize    = errors.New("merkle: hash output is not 32 bytes")
	ErrMarshal       = errors.New("merkle: value marshal failed")
)

type Digest = blob.Blob[[DigestSize]byte]

// Sentinel returns the root of an empty sequence, the all-zero digest.
func Sentinel() Digest { return Digest{} }

// Value is anything with a stable binary form.
type Value = encoding.BinaryMarshaler

// Bytes is a Value holding raw bytes.
type Bytes []byte

func (b Bytes) MarshalBinary() ([]byte, error) { return b, nil }

// String is a Value holding text.
type String string

func (s String) MarshalBinary() ([]byte, error) { return []byte(s), nil }

// Strings wraps each string as a Value.
func Strings(ss ...string) []Value {
	out := make([]Value, len(ss))
	for i, s := range ss {
		out[i] = String(s)
	}
	return out
}

// Tree holds the parameters of a root computation. It carries no state
// between calls.
type Tree struct {
	// MaxPair bounds the scratch buffer one pair is serialized into. Bytes
	// past the bound are dropped unless Strict is set.
	MaxPair int
	// Hash builds the hasher; nil means SHA-256.
	Hash   func() hash.Hash
	Strict bool
	Logger zerolog.Logger
}

// New returns a SHA-256 tree bounded by maxPair.
func New(maxPair int) *Tree {
	return &Tree{MaxPair: maxPair, Hash: sha256.New, Logger: zerolog.Nop()}
}

// Root computes the root of values with SHA-256 and no strict bound.
func Root(values []Value, maxPair int) (Digest, error) {
	return New(maxPair).Root(values)
}

// Root computes the digest over values.
func (t *Tree) Root(values []Value) (Digest, error) {
	root, err := t.root(values)
	if err != nil {
		observability.RecordRoot("error")
		t.Logger.Warn().Err(err).Int("values", len(values)).Msg("merkle root failed")
		return Digest{}, err
	}
	observability.RecordRoot("ok")
	return root, nil
}

func (t *Tree) root(values []Value) (Digest, error) {
	if len(values) == 0 {
		return Sentinel(), nil
	}
	newHash := t.Hash
	if newHash == nil {
		newHash = sha256.New
	}
	p := pairer{
		scratch: cursor.NewHeap(t.MaxPair),
		hasher:  newHash(),
		strict:  t.Strict,
	}
	defer p.scratch.Release()

	raw := make([][]byte, len(values))
	for i, v := range values {
		b, err := v.MarshalBinary()
		if err != nil {
			return Digest{}, fmt.Errorf("%w: value %d: %v", ErrMarshal, i, err)
		}
		raw[i] = b
	}

	level, err := p.level(raw)
	if err != nil {
		return Digest{}, err
	}
	for len(level) > 1 {
		next := make([][]byte, len(level))
		for i := range level {
			next[i] = level[i].Clone()
		}
		if level, err = p.level(next); err != nil {
			return Digest{}, err
		}
	}
	if p.truncated > 0 {
		t.Logger.Debug().Int("pairs", p.truncated).Int("max_pair", t.MaxPair).Msg("merkle pair serialization truncated")
	}
	return level[0], nil
}

type pairer struct {
	scratch   *cursor.Heap
	hasher    hash.Hash
	strict    bool
	truncated int
}

// level reduces items to ceil(len/2) digests.
func (p *pairer) level(items [][]byte) ([]Digest, error) {
	out := make([]Digest, 0, (len(items)+1)/2)
	for i := 0; i < len(items); i += 2 {
		left := items[i]
		right := left
		if i+1 < len(items) {
			right = items[i+1]
		}
		d, err := p.pair(left, right)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (p *pairer) pair(left, right []byte) (Digest, error) {
	p.scratch.Reset()
	full := writeValue(p.scratch, left) && writeValue(p.scratch, right)
	if !full {
		if p.strict {
			return Digest{}, ErrPairTruncated
		}
		p.truncated++
	}
	return DoubleHash(p.hasher, p.scratch.Bytes())
}

// writeValue appends an 8-byte big-endian length and the bytes of v. It
// reports false when the buffer could not take all of it.
func writeValue(b cursor.Buffer, v []byte) bool {
	n := varint.New(uint64(len(v)))
	prefix := n.Array()
	ok := b.Forward(prefix[:]) == len(prefix)
	return b.Forward(v) == len(v) && ok
}

// SerializePair returns the bytes one pair hashes over, without any bound.
func SerializePair(left, right []byte) []byte {
	buf := cursor.NewHeap(2*varint.Size + len(left) + len(right))
	writeValue(buf, left)
	writeValue(buf, right)
	return buf.Detach()
}

// DoubleHash returns H(H(p)) using hasher, which is reset first.
func DoubleHash(hasher hash.Hash, p []byte) (Digest, error) {
	hasher.Reset()
	hasher.Write(p)
	var first [DigestSize]byte
	sum := hasher.Sum(first[:0])
	if len(sum) != DigestSize {
		return Digest{}, ErrDigestSize
	}
	hasher.Reset()
	hasher.Write(sum)
	var out Digest
	if len(hasher.Sum(out.Bytes()[:0])) != DigestSize {
		return Digest{}, ErrDigestSize
	}
	return out, nil
}

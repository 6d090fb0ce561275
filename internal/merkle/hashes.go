package merkle

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

const (
	HashSHA256  = "sha256"
	HashBlake2b = "blake2b"
	HashSHA3    = "sha3-256"
)

// HashByName maps a configured algorithm name to a 32-byte hash constructor.
func HashByName(name string) (func() hash.Hash, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", HashSHA256:
		return sha256.New, nil
	case HashBlake2b, "blake2b-256":
		return newBlake2b, nil
	case HashSHA3, "sha3":
		return sha3.New256, nil
	default:
		return nil, fmt.Errorf("merkle: unknown hash %q", name)
	}
}

func newBlake2b() hash.Hash {
	// New256 only fails for keys longer than 64 bytes.
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	return h
}

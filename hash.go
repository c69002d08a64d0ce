package hyperloglog

import (
	"github.com/cespare/xxhash/v2"
	metro "github.com/dgryski/go-metro"
	"github.com/spaolacci/murmur3"
)

// DefaultSeed is the metro hash seed used when no HashFunc is configured.
const DefaultSeed = 1337

// HashFunc maps an item to a uniformly distributed 64-bit value. It must be
// deterministic: equal items always hash to the same value.
type HashFunc func([]byte) uint64

var hashFunc = Metro(DefaultSeed)

// Metro returns a metro hash with the given seed.
func Metro(seed uint64) HashFunc {
	return func(e []byte) uint64 {
		return metro.Hash64(e, seed)
	}
}

// XXHash returns the unseeded 64-bit xxhash.
func XXHash() HashFunc {
	return xxhash.Sum64
}

// Murmur3 returns the lower 64 bits of the 128-bit murmur3 hash.
func Murmur3(seed uint32) HashFunc {
	return func(e []byte) uint64 {
		return murmur3.Sum64WithSeed(e, seed)
	}
}

// Package exact counts distinct items exactly, as the ground truth that
// sketch estimates are compared against.
package exact

import (
	"github.com/cespare/xxhash/v2"
	"github.com/kamstrup/intmap"
)

// Counter is an exact distinct counter. Items are keyed by their 64-bit
// xxhash, so memory stays at one word per distinct item; the chance of any
// collision among n items is about n²/2⁶⁵.
type Counter struct {
	seen *intmap.Set[uint64]
}

// New returns a Counter sized for about capacity distinct items.
func New(capacity int) *Counter {
	return &Counter{seen: intmap.NewSet[uint64](capacity)}
}

// Add records item and reports whether it was new.
func (c *Counter) Add(item []byte) bool {
	return c.seen.Add(xxhash.Sum64(item))
}

// Len returns the number of distinct items recorded.
func (c *Counter) Len() int {
	return c.seen.Len()
}

// Package hyperloglog implements a dense-register HyperLogLog sketch for
// approximating the number of distinct elements in a multiset.
package hyperloglog

import (
	"fmt"
	"math"
)

const (
	// MinPrecision is the smallest supported precision (16 registers).
	MinPrecision = 4
	// MaxPrecision is the largest supported precision (262144 registers).
	MaxPrecision = 18
)

// Sketch is a HyperLogLog data-structure for the count-distinct problem,
// approximating the number of distinct elements in a multiset.
//
// Insert and Merge are safe for concurrent use. Estimate reads the registers
// without locking and may observe a sketch that is mid-update.
type Sketch struct {
	p     uint8
	m     uint32
	alpha float64
	regs  *registers
	hash  HashFunc
}

// Option configures a Sketch.
type Option func(*Sketch)

// WithHash sets the hash function used by Insert. Sketches that are merged
// must use the same hash function.
func WithHash(h HashFunc) Option {
	return func(sk *Sketch) {
		if h != nil {
			sk.hash = h
		}
	}
}

// New returns a HyperLogLog Sketch with 2^precision registers.
func New(precision uint8, opts ...Option) (*Sketch, error) {
	if precision < MinPrecision || precision > MaxPrecision {
		return nil, fmt.Errorf("%w: precision %d is outside [%d, %d]",
			ErrInvalidConfig, precision, MinPrecision, MaxPrecision)
	}
	m := uint32(1) << precision
	sk := &Sketch{
		p:     precision,
		m:     m,
		alpha: alpha(float64(m)),
		regs:  newRegisters(m),
		hash:  hashFunc,
	}
	for _, opt := range opts {
		opt(sk)
	}
	return sk, nil
}

// New14 returns a HyperLogLog Sketch with 2^14 registers (precision 14)
func New14() *Sketch {
	sk, _ := New(14)
	return sk
}

// Precision returns p, the number of index bits.
func (sk *Sketch) Precision() uint8 { return sk.p }

// Registers returns a copy of the register values.
func (sk *Sketch) Registers() []uint8 { return sk.regs.snapshot() }

// Clone returns a deep copy of sk.
func (sk *Sketch) Clone() *Sketch {
	return &Sketch{
		p:     sk.p,
		m:     sk.m,
		alpha: sk.alpha,
		regs:  sk.regs.clone(),
		hash:  sk.hash,
	}
}

// Reset clears every register.
func (sk *Sketch) Reset() {
	sk.regs.reset()
}

// Insert adds element e to sketch and reports whether a register changed.
func (sk *Sketch) Insert(e []byte) bool {
	return sk.InsertHash(sk.hash(e))
}

// InsertHash adds hash x to sketch
func (sk *Sketch) InsertHash(x uint64) bool {
	i, r := getPosVal(x, sk.p)
	return sk.regs.max(i, r)
}

// Estimate returns the cardinality of the Sketch as a real number, applying
// linear counting in the small range and the hash-space correction in the
// large range.
func (sk *Sketch) Estimate() float64 {
	sum, ez := sk.regs.sumAndZeros()
	m := float64(sk.m)
	est := sk.alpha * m * m / sum

	switch {
	case ez > 0 && est <= 2.5*m:
		return linearCount(sk.m, uint32(ez))
	case est > twoTo64/30:
		return largeRangeCorrection(est)
	}
	return est
}

// Count returns the estimate rounded to the nearest integer.
func (sk *Sketch) Count() uint64 {
	est := sk.Estimate() + 0.5
	if est >= twoTo64 {
		return math.MaxUint64
	}
	return uint64(est)
}

// EstimateBeta returns the LogLog-Beta estimate, which replaces both range
// corrections with a single bias term. The bias polynomial is fitted for
// precision 14 only; at any other precision EstimateBeta returns Estimate.
func (sk *Sketch) EstimateBeta() float64 {
	if sk.p != betaPrecision {
		return sk.Estimate()
	}
	sum, ez := sk.regs.sumAndZeros()
	m := float64(sk.m)
	return math.Max(0, sk.alpha*m*(m-ez)/(sum+beta(ez)))
}

// Merge takes another Sketch and combines it with Sketch sk. Neither sketch
// is modified when the precisions differ.
func (sk *Sketch) Merge(other *Sketch) error {
	if other == nil {
		// Nothing to do
		return nil
	}
	if sk.p != other.p {
		return fmt.Errorf("%w: %d != %d", ErrIncompatiblePrecision, sk.p, other.p)
	}
	sk.regs.merge(other.regs)
	return nil
}

// Union returns a new Sketch holding the union of all sketches. The inputs
// are left untouched; nil entries are skipped.
func Union(sketches ...*Sketch) (*Sketch, error) {
	var res *Sketch
	for _, sk := range sketches {
		if sk == nil {
			continue
		}
		if res == nil {
			res = sk.Clone()
			continue
		}
		if err := res.Merge(sk); err != nil {
			return nil, err
		}
	}
	if res == nil {
		return nil, fmt.Errorf("%w: no sketches to union", ErrInvalidConfig)
	}
	return res, nil
}

// String reports the precision and the current estimate.
func (sk *Sketch) String() string {
	return fmt.Sprintf("hyperloglog(p=%d, m=%d, estimate=%.0f)", sk.p, sk.m, sk.Estimate())
}

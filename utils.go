package hyperloglog

import (
	"math"
	"math/bits"
)

// 2^64 as a float, the size of the hash space.
const twoTo64 = 18446744073709551616.0

func alpha(m float64) float64 {
	switch m {
	case 16:
		return 0.673
	case 32:
		return 0.697
	case 64:
		return 0.709
	}
	return 0.7213 / (1 + 1.079/m)
}

// betaPrecision is the only precision the beta polynomial is fitted for.
const betaPrecision = 14

// beta is the LogLog-Beta bias polynomial in the number of empty registers,
// fitted for precision 14.
func beta(ez float64) float64 {
	zl := math.Log(ez + 1)
	return -0.370393911*ez +
		0.070471823*zl +
		0.17393686*math.Pow(zl, 2) +
		0.16339839*math.Pow(zl, 3) +
		-0.09237745*math.Pow(zl, 4) +
		0.03738027*math.Pow(zl, 5) +
		-0.005384159*math.Pow(zl, 6) +
		0.00042419*math.Pow(zl, 7)
}

// getPosVal splits x into the register index (top p bits) and the rank of
// the remaining 64-p bits. The sentinel bit caps rho at 64-p+1.
func getPosVal(x uint64, p uint8) (uint32, uint8) {
	i := bextr(x, 64-p, p) // {x63,...,x64-p}
	w := x<<p | 1<<(p-1)   // {x63-p,...,x0}
	rho := uint8(bits.LeadingZeros64(w)) + 1
	return uint32(i), rho
}

func bextr(v uint64, start, length uint8) uint64 {
	return (v >> start) & ((1 << length) - 1)
}

func linearCount(m uint32, v uint32) float64 {
	fm := float64(m)
	return fm * math.Log(fm/float64(v))
}

// largeRangeCorrection compensates for hash collisions when the estimate
// approaches the size of the 64-bit hash space. Estimates at or beyond the
// hash space are returned unchanged.
func largeRangeCorrection(est float64) float64 {
	if est >= twoTo64 {
		return est
	}
	return -twoTo64 * math.Log(1-est/twoTo64)
}

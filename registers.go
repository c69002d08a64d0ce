package hyperloglog

import (
	"math"
	"sync/atomic"
)

// Registers are 6-bit fields, ten to a 64-bit word so that no field straddles
// two words. Each word is updated with a compare-and-swap loop, which keeps
// concurrent updates to different words independent and updates to the same
// word untorn.
const (
	regBits     = 6
	regMask     = 1<<regBits - 1
	regsPerWord = 10
)

type registers struct {
	words []atomic.Uint64
	m     uint32
}

func newRegisters(m uint32) *registers {
	return &registers{
		words: make([]atomic.Uint64, (m+regsPerWord-1)/regsPerWord),
		m:     m,
	}
}

func locate(i uint32) (uint32, uint) {
	return i / regsPerWord, uint(i%regsPerWord) * regBits
}

func (rs *registers) get(i uint32) uint8 {
	w, shift := locate(i)
	return uint8(rs.words[w].Load() >> shift & regMask)
}

// max raises register i to val and reports whether it changed.
func (rs *registers) max(i uint32, val uint8) bool {
	w, shift := locate(i)
	word := &rs.words[w]
	for {
		old := word.Load()
		if uint8(old>>shift&regMask) >= val {
			return false
		}
		next := old&^(regMask<<shift) | uint64(val)<<shift
		if word.CompareAndSwap(old, next) {
			return true
		}
	}
}

// merge raises every register to the value held by other.
func (rs *registers) merge(other *registers) {
	for i := range rs.words {
		ow := other.words[i].Load()
		if ow == 0 {
			continue
		}
		word := &rs.words[i]
		for {
			old := word.Load()
			next := maxFields(old, ow)
			if next == old || word.CompareAndSwap(old, next) {
				break
			}
		}
	}
}

func maxFields(a, b uint64) uint64 {
	var res uint64
	for shift := uint(0); shift < regsPerWord*regBits; shift += regBits {
		res |= max(a>>shift&regMask, b>>shift&regMask) << shift
	}
	return res
}

// fields returns the number of registers held by word w.
func (rs *registers) fields(w int) int {
	if rest := int(rs.m) - w*regsPerWord; rest < regsPerWord {
		return rest
	}
	return regsPerWord
}

// sumAndZeros returns the harmonic sum of 2^-reg and the number of empty
// registers in a single pass.
func (rs *registers) sumAndZeros() (res, ez float64) {
	for w := range rs.words {
		word := rs.words[w].Load()
		for j := 0; j < rs.fields(w); j++ {
			v := word >> (uint(j) * regBits) & regMask
			if v == 0 {
				ez++
			}
			res += math.Ldexp(1, -int(v))
		}
	}
	return res, ez
}

func (rs *registers) snapshot() []uint8 {
	out := make([]uint8, rs.m)
	for i := range out {
		out[i] = rs.get(uint32(i))
	}
	return out
}

func (rs *registers) clone() *registers {
	c := newRegisters(rs.m)
	for i := range rs.words {
		c.words[i].Store(rs.words[i].Load())
	}
	return c
}

func (rs *registers) reset() {
	for i := range rs.words {
		rs.words[i].Store(0)
	}
}

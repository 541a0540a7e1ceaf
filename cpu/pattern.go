// Package cpu provides a simple processor model that exercises a cache with
// configurable access streams.
package cpu

import (
	"fmt"
	"math/rand"
)

// An AccessPattern generates the address sequence of an access stream. All
// the returned addresses are 4-byte aligned.
type AccessPattern interface {
	NextAddress() uint64
}

// RandomPattern picks uniformly distributed addresses in a range.
type RandomPattern struct {
	rng    *rand.Rand
	lo, hi uint64
}

// rangeMustHoldOneWord panics when [lo, hi) cannot hold a single 4-byte
// word, which would leave a pattern with no address to return.
func rangeMustHoldOneWord(lo, hi uint64) {
	if hi < lo+4 {
		panic(fmt.Sprintf(
			"address range [0x%x, 0x%x) holds no 4-byte word", lo, hi))
	}
}

// NewRandomPattern creates a random pattern over [lo, hi).
func NewRandomPattern(lo, hi uint64, seed int64) *RandomPattern {
	rangeMustHoldOneWord(lo, hi)

	return &RandomPattern{
		rng: rand.New(rand.NewSource(seed)),
		lo:  lo,
		hi:  hi,
	}
}

// NextAddress returns a random address.
func (p *RandomPattern) NextAddress() uint64 {
	return p.lo + p.rng.Uint64()%((p.hi-p.lo)/4)*4
}

// ScanPattern walks a range sequentially with a fixed stride, wrapping
// around at the end of the range.
type ScanPattern struct {
	next   uint64
	stride uint64
	lo, hi uint64
}

// NewScanPattern creates a scan pattern over [lo, hi).
func NewScanPattern(lo, hi, stride uint64) *ScanPattern {
	rangeMustHoldOneWord(lo, hi)

	if stride == 0 {
		panic("scan stride must not be zero")
	}

	return &ScanPattern{
		next:   lo,
		stride: stride,
		lo:     lo,
		hi:     hi,
	}
}

// NextAddress returns the next address of the scan.
func (p *ScanPattern) NextAddress() uint64 {
	addr := p.next

	p.next += p.stride
	if p.next >= p.hi {
		p.next = p.lo
	}

	return addr
}

// WorkingSetPattern keeps revisiting a limited number of addresses, so a
// sufficiently large cache can serve most of the accesses from local data.
type WorkingSetPattern struct {
	rng       *rand.Rand
	addresses []uint64
}

// NewWorkingSetPattern creates a pattern that randomly visits the aligned
// addresses in [lo, hi).
func NewWorkingSetPattern(lo, hi uint64, seed int64) *WorkingSetPattern {
	rangeMustHoldOneWord(lo, hi)

	p := &WorkingSetPattern{
		rng: rand.New(rand.NewSource(seed)),
	}

	for addr := lo; addr < hi; addr += 4 {
		p.addresses = append(p.addresses, addr)
	}

	return p
}

// NextAddress returns a random address within the working set.
func (p *WorkingSetPattern) NextAddress() uint64 {
	return p.addresses[p.rng.Intn(len(p.addresses))]
}

// Package fastscan implements the per-query lookup table described in
// spec §4.2: for every 4-dimension group it precomputes the inner product
// between the query restricted to those dimensions and each of the 16
// possible 4-bit code patterns, then evaluates whole 32-code blocks by
// summing group contributions instead of touching each dimension.
//
// Grounded on the teacher's internal/pq.BuildADCTable (an asymmetric
// distance table keyed by sub-vector and centroid index) generalized from
// codebook-trained centroids to the fixed ±1 bipolar code alphabet SAQ's
// 1-bit short codes use, and on original_source/saqlib/quantization/caq's
// CaqCluEstimator call sites (Prepare/CompFastIP/GetExtIP signatures).
package fastscan

import (
	stdbits "math/bits"

	qbits "github.com/saqlib/saqcore/internal/bits"
	"github.com/saqlib/saqcore/internal/saq"
)

const groupSize = 4   // dimensions per nibble
const groupsPerLine = 4 // groups (16 dims) packed into one 64-byte line
const lineBytes = 64

// LUT is a per-query lookup table. It is constructed once per query and
// re-Prepared for every cluster the query visits (spec §3 lifecycle).
type LUT struct {
	numDimPad int
	exBits    uint8
	numGroups int

	query   []float32 // flat query copy, kept for the refinement pass
	q_l2sqr float32
	table   [][16]float32 // [group][nibble] -> signed inner product contribution

	// State captured by the most recent CompFastIP call, consumed by
	// GetExtIP. Mirrors the original's documented precondition: GetExtIP
	// must follow a CompFastIP on the same block.
	lastShortCode []byte
	lastRaw       [saq.KFastScanSize]float32
	ready         bool
}

// New allocates a LUT sized for numDimPad dimensions and exBits extended
// precision planes.
func New(numDimPad int, exBits uint8) *LUT {
	numGroups := numDimPad / groupSize
	return &LUT{
		numDimPad: numDimPad,
		exBits:    exBits,
		numGroups: numGroups,
		table:     make([][16]float32, numGroups),
	}
}

// Prepare fills the table for query and computes its squared L2 norm.
func (l *LUT) Prepare(query []float32) {
	if cap(l.query) < len(query) {
		l.query = make([]float32, len(query))
	}
	l.query = l.query[:len(query)]
	copy(l.query, query)

	var sumsq float32
	for _, v := range query {
		sumsq += v * v
	}
	l.q_l2sqr = sumsq

	for g := 0; g < l.numGroups; g++ {
		base := g * groupSize
		var q0, q1, q2, q3 float32
		if base < len(query) {
			q0 = query[base]
		}
		if base+1 < len(query) {
			q1 = query[base+1]
		}
		if base+2 < len(query) {
			q2 = query[base+2]
		}
		if base+3 < len(query) {
			q3 = query[base+3]
		}
		for v := 0; v < 16; v++ {
			s0 := bitSign(v, 0)
			s1 := bitSign(v, 1)
			s2 := bitSign(v, 2)
			s3 := bitSign(v, 3)
			l.table[g][v] = q0*s0 + q1*s1 + q2*s2 + q3*s3
		}
	}
	l.ready = false
}

func bitSign(v, k int) float32 {
	if (v>>uint(k))&1 == 1 {
		return 1
	}
	return -1
}

// GetQL2Sqr returns the query's squared L2 norm, computed during Prepare.
func (l *LUT) GetQL2Sqr() float32 { return l.q_l2sqr }

// nibble extracts the 4-bit code for dimension-group g and code slot j from
// the fast-scan interleaved layout (spec §6): 4 consecutive groups (16
// dims) form a 64-byte line holding all 32 codes' nibbles for those groups,
// two codes packed per byte.
func nibble(shortCode []byte, g, j int) uint8 {
	line := g / groupsPerLine
	sub := g % groupsPerLine
	byteIdx := line*lineBytes + sub*(saq.KFastScanSize/2) + j/2
	b := shortCode[byteIdx]
	if j%2 == 0 {
		return b >> 4
	}
	return b & 0x0F
}

// CompFastIP computes, for one 32-code block, the fast estimate of the
// inner product between the query and the full-precision residual each
// code encodes. shortCode is the block's packed codes (spec §4.2); residual
// norms are applied by the caller, not here. out may be nil: CompFastIP
// still refreshes the internal state GetExtIP depends on.
func (l *LUT) CompFastIP(shortCode []byte, out *[saq.KFastScanSize]float32) {
	for j := 0; j < saq.KFastScanSize; j++ {
		var sum float32
		for g := 0; g < l.numGroups; g++ {
			sum += l.table[g][nibble(shortCode, g, j)]
		}
		l.lastRaw[j] = sum
		if out != nil {
			out[j] = 2 * sum
		}
	}
	l.lastShortCode = shortCode
	l.ready = true
}

// Ready reports whether a CompFastIP call has run since the last Prepare,
// populating the state GetExtIP reads. It does not record which block that
// call covered. Exposed so callers (and tests) can check the precondition
// from spec §4.4 without relying on a hot-path error return.
func (l *LUT) Ready() bool { return l.ready }

// GetExtIP refines the short-code estimate for slot j using the extended
// per-dimension residual bits in longCode. delta is the quantization step
// 2/2^num_bits (spec §4.2). The short code's bit for each dimension forms
// the high bits of each dimension's reconstructed level; the long code
// supplies the remaining exBits low bits. The coarse (short-only) pass
// assumes the unknown low bits sit at their expected midpoint, so this
// call folds in the correction term for the bits now known.
func (l *LUT) GetExtIP(longCode []byte, delta float64, j int) float32 {
	if !l.ready {
		return l.lastRaw[j]
	}
	exBits := int(l.exBits)
	if exBits == 0 {
		return l.lastRaw[j]
	}

	levels := uint32(1) << uint(exBits)
	half := float32(levels) / 2

	var correction float32
	for g := 0; g < l.numGroups; g++ {
		for k := 0; k < groupSize; k++ {
			dim := g*groupSize + k
			if dim >= len(l.query) {
				continue
			}
			longVal := qbits.ExtractField(longCode, dim, exBits)
			correction += l.query[dim] * (float32(longVal) - half)
		}
	}

	return l.lastRaw[j] + float32(delta)*correction
}

// PopcountBytes returns the total number of set bits across data, used by
// callers that need a quick sanity check on code density in tests.
func PopcountBytes(data []byte) int {
	n := 0
	for _, b := range data {
		n += stdbits.OnesCount8(b)
	}
	return n
}

// Package transpose implements the bit-transposed query quantizer spec §4.3
// describes for the single-vector (non-fast-scan) path: an 8-bit scalar
// quantization of the query, transposed into bit-planes so the estimator can
// recover a weighted inner product via AND+popcount against a 1-bit-per-
// dimension code instead of per-dimension float multiplies.
//
// Grounded on original_source/saqlib/quantization/caq/caq_estimator.hpp's
// CaqEstimatorSingleImpl::prepare (new_transpose_bin and the q_vl_/q_vr_/
// delta_/sum_q_/q_l2sqr_/q_l2norm_ fields it populates), expressed the way
// the teacher's internal/pq package transposes trained codebook bits for
// its own ADC table construction.
package transpose

import "github.com/saqlib/saqcore/internal/bits"

// QueryQuantBits is the fixed quantization width the original hard-codes
// (kNumBits in CaqEstimatorSingleImpl), independent of the database codes'
// num_bits.
const QueryQuantBits = 8

// codeMax is 2^QueryQuantBits, the exclusive upper bound of a quantized level.
const codeMax = 1 << QueryQuantBits

// Quantizer holds one query's bit-transposed quantization. It is rebuilt by
// Prepare for every new query; a single-vector estimator holds one of these
// for the estimator's lifetime.
type Quantizer struct {
	numDimPad int
	numWords  int // numDimPad / 64

	qVL, qVR, delta float32
	sumQ            float32
	qL2Sqr          float32
	qL2Norm         float32

	querySQ  []uint16   // per-dimension quantized level, 0..255
	queryBin [][]uint64 // [plane][word], QueryQuantBits planes
}

// New allocates a Quantizer for numDimPad dimensions (must be a multiple of
// 64, per spec §3).
func New(numDimPad int) *Quantizer {
	numWords := numDimPad / 64
	planes := make([][]uint64, QueryQuantBits)
	for p := range planes {
		planes[p] = make([]uint64, numWords)
	}
	return &Quantizer{
		numDimPad: numDimPad,
		numWords:  numWords,
		querySQ:   make([]uint16, numDimPad),
		queryBin:  planes,
	}
}

// Prepare quantizes query and rebuilds the bit-plane transpose.
func (q *Quantizer) Prepare(query []float32) {
	var sumsq, sum float32
	vl, vr := query[0], query[0]
	for _, v := range query {
		sumsq += v * v
		sum += v
		if v < vl {
			vl = v
		}
		if v > vr {
			vr = v
		}
	}
	q.qL2Sqr = sumsq
	q.qL2Norm = sqrt32(sumsq)
	q.qVL = vl
	q.qVR = vr
	q.delta = (vr - vl) / (float32(codeMax) - 0.01)
	q.sumQ = sum

	for p := range q.queryBin {
		for w := range q.queryBin[p] {
			q.queryBin[p][w] = 0
		}
	}

	for i, v := range query {
		level := uint16(0)
		if q.delta > 0 {
			lv := (v - vl) / q.delta
			if lv < 0 {
				lv = 0
			}
			level = uint16(lv)
			if level >= codeMax {
				level = codeMax - 1
			}
		}
		q.querySQ[i] = level

		w := i / 64
		k := uint(i % 64)
		for p := 0; p < QueryQuantBits; p++ {
			if (level>>uint(p))&1 == 1 {
				q.queryBin[p][w] |= 1 << k
			}
		}
	}
}

func sqrt32(x float32) float32 {
	if x <= 0 {
		return 0
	}
	// Newton's method, started at or above the root and run until z stops
	// decreasing, which reaches float32 precision for any input size and
	// avoids pulling in math.Sqrt's float64 round trip on the hot prepare
	// path.
	z := x
	if z < 1 {
		z = 1
	}
	for {
		next := 0.5 * (z + x/z)
		if !(next < z) {
			return z
		}
		z = next
	}
}

// QL2Sqr, QL2Norm, SumQ, QVL, QVR, Delta expose the scalar state the
// single-vector estimator's formulas (spec §4.5) consume directly.
func (q *Quantizer) QL2Sqr() float32 { return q.qL2Sqr }
func (q *Quantizer) QL2Norm() float32 { return q.qL2Norm }
func (q *Quantizer) SumQ() float32    { return q.sumQ }
func (q *Quantizer) QVL() float32     { return q.qVL }
func (q *Quantizer) QVR() float32     { return q.qVR }
func (q *Quantizer) Delta() float32   { return q.delta }

// WeightedPopcountSum computes Σ_plane 2^plane * popcount(plane & code),
// the raw AND-popcount-weighted accumulator spec §4.3's "IP estimation"
// paragraph describes, against a 1-bit-per-dimension packed code.
func (q *Quantizer) WeightedPopcountSum(code []uint64) int64 {
	return bits.WeightedPlaneSum(q.queryBin, code)
}

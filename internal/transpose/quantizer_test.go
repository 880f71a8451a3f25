package transpose_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saqlib/saqcore/internal/transpose"
)

func makeQuery(dim int) []float32 {
	q := make([]float32, dim)
	for i := range q {
		q[i] = float32(i%7) - 3
	}
	return q
}

func TestQuantizer_PrepareComputesRange(t *testing.T) {
	q := transpose.New(64)
	query := makeQuery(64)
	q.Prepare(query)

	assert.Equal(t, float32(-3), q.QVL())
	assert.Equal(t, float32(3), q.QVR())
	assert.True(t, q.Delta() > 0)
	assert.True(t, q.QL2Norm() > 0)

	// sum_q is the raw query sum (spec §4.5), computed before quantization —
	// not the sum of the quantized integer levels. makeQuery(64) cycles
	// i%7-3 over 9 full periods (each summing to 0) plus one extra i=63
	// (63%7-3 = -3), so the raw sum is -3.
	assert.InDelta(t, float32(-3), q.SumQ(), 1e-4)
}

func TestQuantizer_WeightedPopcountSumIsDeterministic(t *testing.T) {
	q := transpose.New(64)
	query := makeQuery(64)
	q.Prepare(query)

	code := make([]uint64, 1)
	code[0] = 0xFFFFFFFFFFFFFFFF

	first := q.WeightedPopcountSum(code)
	second := q.WeightedPopcountSum(code)
	assert.Equal(t, first, second)
}

func TestQuantizer_AllSameValueHasZeroDeltaAndZeroLevels(t *testing.T) {
	q := transpose.New(64)
	query := make([]float32, 64)
	for i := range query {
		query[i] = 2.5
	}
	q.Prepare(query)

	require.Equal(t, float32(0), q.Delta())
	// every level is clamped to 0, so the weighted sum against an all-set
	// code is zero, even though sum_q (the raw query sum) is not.
	code := make([]uint64, 1)
	code[0] = ^uint64(0)
	assert.Equal(t, int64(0), q.WeightedPopcountSum(code))
	assert.InDelta(t, float32(64*2.5), q.SumQ(), 1e-3)
}

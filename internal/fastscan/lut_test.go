package fastscan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saqlib/saqcore/internal/fastscan"
	"github.com/saqlib/saqcore/internal/saq"
)

func TestLUT_PrepareComputesQL2Sqr(t *testing.T) {
	l := fastscan.New(16, 0)
	query := []float32{1, 2, 3, 4}
	l.Prepare(query)
	assert.InDelta(t, float32(1+4+9+16), l.GetQL2Sqr(), 1e-6)
}

func TestLUT_CompFastIP_AllZeroNibblesSumsNegatedQuery(t *testing.T) {
	l := fastscan.New(16, 0)
	query := make([]float32, 16)
	var total float32
	for i := range query {
		query[i] = float32(i + 1)
		total += query[i]
	}
	l.Prepare(query)

	shortCode := make([]byte, 64) // 4 groups -> one 64-byte line, all zero nibbles
	var out [saq.KFastScanSize]float32
	l.CompFastIP(shortCode, &out)

	// nibble 0 selects the all-negative sign pattern for every group, so
	// each slot's raw sum is -(sum of every query dimension).
	want := 2 * -total
	for j := range out {
		assert.InDelta(t, want, out[j], 1e-4)
	}
}

func TestLUT_CompFastIPIsDeterministic(t *testing.T) {
	l := fastscan.New(16, 0)
	query := []float32{1, -2, 3, -4, 5, -6, 7, -8, 9, -10, 11, -12, 13, -14, 15, -16}
	l.Prepare(query)

	shortCode := make([]byte, 64)
	for i := range shortCode {
		shortCode[i] = byte(i * 7)
	}

	var out1, out2 [saq.KFastScanSize]float32
	l.CompFastIP(shortCode, &out1)
	l.CompFastIP(shortCode, &out2)
	assert.Equal(t, out1, out2)
}

func TestLUT_ReadyReflectsCompFastIPState(t *testing.T) {
	l := fastscan.New(16, 2)
	query := make([]float32, 16)
	for i := range query {
		query[i] = float32(i)
	}
	l.Prepare(query)
	require.False(t, l.Ready())

	shortCode := make([]byte, 64)
	l.CompFastIP(shortCode, nil)
	assert.True(t, l.Ready())
}

func TestLUT_GetExtIPWithZeroExBitsReturnsRawEstimate(t *testing.T) {
	l := fastscan.New(16, 0)
	query := make([]float32, 16)
	for i := range query {
		query[i] = 1
	}
	l.Prepare(query)

	shortCode := make([]byte, 64)
	var raw [saq.KFastScanSize]float32
	l.CompFastIP(shortCode, &raw)

	got := l.GetExtIP(nil, 0, 0)
	assert.InDelta(t, raw[0]/2, got, 1e-4) // lastRaw is pre-doubling
}

// packNibbleShortCode builds one fast-scan line (4 groups, 16 dims) whose
// slot-0 nibble for each group reproduces bitSigns: bit k of the group's
// nibble is 1 (sign +1) or 0 (sign -1), following the interleaved layout
// nibble() reads (high nibble of each byte is slot 0, since j=0 is even).
func packNibbleShortCode(bitSigns [4][4]int) []byte {
	shortCode := make([]byte, 64)
	for g := 0; g < 4; g++ {
		var nib uint8
		for k := 0; k < 4; k++ {
			if bitSigns[g][k] == 1 {
				nib |= 1 << uint(k)
			}
		}
		byteIdx := g * (32 / 2) // line 0, sub=g, j=0 -> j/2=0
		shortCode[byteIdx] = nib << 4
	}
	return shortCode
}

// packLongCode packs a per-dimension exBits-wide field array the same way
// bits.ExtractField reads it: LSB-first, contiguous per dimension.
func packLongCode(longVals []uint32, exBits int) []byte {
	totalBits := len(longVals) * exBits
	data := make([]byte, (totalBits+7)/8)
	for d, v := range longVals {
		start := d * exBits
		for b := 0; b < exBits; b++ {
			if (v>>uint(b))&1 == 1 {
				idx := start + b
				data[idx/8] |= 1 << uint(idx%8)
			}
		}
	}
	return data
}

func TestLUT_GetExtIPMatchesGroundTruthReconstruction(t *testing.T) {
	const numDimPad = 16
	const exBits = 2
	const delta = 0.1

	query := make([]float32, numDimPad)
	for i := range query {
		query[i] = float32(i%5-2) * 0.3
	}

	l := fastscan.New(numDimPad, exBits)
	l.Prepare(query)

	bitSigns := [4][4]int{
		{1, 0, 1, 1},
		{0, 0, 1, 0},
		{1, 1, 0, 1},
		{0, 1, 0, 0},
	}
	shortCode := packNibbleShortCode(bitSigns)

	var raw [saq.KFastScanSize]float32
	l.CompFastIP(shortCode, &raw)
	require.True(t, l.Ready())

	longVals := []uint32{2, 0, 3, 1, 0, 3, 2, 1, 1, 0, 2, 3, 3, 1, 0, 2}
	longCode := packLongCode(longVals, exBits)

	got := l.GetExtIP(longCode, delta, 0)

	half := float32(uint32(1) << exBits) / 2
	var want float32
	for d := 0; d < numDimPad; d++ {
		g, k := d/4, d%4
		sign := float32(-1)
		if bitSigns[g][k] == 1 {
			sign = 1
		}
		want += query[d] * (sign + delta*(float32(longVals[d])-half))
	}

	assert.InDelta(t, want, got, 1e-4)
}

func TestPopcountBytes(t *testing.T) {
	assert.Equal(t, 8, fastscan.PopcountBytes([]byte{0xFF}))
	assert.Equal(t, 0, fastscan.PopcountBytes([]byte{0x00, 0x00}))
}

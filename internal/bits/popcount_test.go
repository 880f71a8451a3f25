package bits_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saqlib/saqcore/internal/bits"
)

func TestPopcount(t *testing.T) {
	assert.Equal(t, 0, bits.Popcount(0))
	assert.Equal(t, 64, bits.Popcount(^uint64(0)))
	assert.Equal(t, 1, bits.Popcount(1<<40))
}

func TestAndPopcount(t *testing.T) {
	a := []uint64{0b1111, 0b0000}
	b := []uint64{0b0101, 0b1111}
	assert.Equal(t, 2, bits.AndPopcount(a, b))
}

func TestAndPopcount_UnevenLengthsUsesShorter(t *testing.T) {
	a := []uint64{0b1111}
	b := []uint64{0b1111, 0b1111}
	assert.Equal(t, 4, bits.AndPopcount(a, b))
}

func TestWeightedPlaneSum(t *testing.T) {
	// plane 0 contributes popcount 2 * 2^0 = 2
	// plane 1 contributes popcount 1 * 2^1 = 2
	planes := [][]uint64{
		{0b011},
		{0b001},
	}
	code := []uint64{0b011}
	assert.Equal(t, int64(4), bits.WeightedPlaneSum(planes, code))
}

func TestMaskedSum(t *testing.T) {
	query := []float32{1, 2, 3, 4}
	code := []uint64{0b0101} // dims 0 and 2 set
	assert.InDelta(t, float32(4), bits.MaskedSum(query, code), 1e-6)
}

func TestExtractField_RoundTrips(t *testing.T) {
	data := make([]byte, 8)
	// pack value 5 (0b101) at dim 0 with width 3, value 2 at dim 1.
	for b := 0; b < 3; b++ {
		if (5>>uint(b))&1 == 1 {
			data[0] |= 1 << uint(b)
		}
	}
	for b := 0; b < 3; b++ {
		bitPos := 3 + b
		if (2>>uint(b))&1 == 1 {
			data[bitPos/8] |= 1 << uint(bitPos%8)
		}
	}
	assert.Equal(t, uint32(5), bits.ExtractField(data, 0, 3))
	assert.Equal(t, uint32(2), bits.ExtractField(data, 1, 3))
}

func TestExtractField_ZeroWidthIsZero(t *testing.T) {
	assert.Equal(t, uint32(0), bits.ExtractField([]byte{0xFF}, 0, 0))
}

func TestExtIP(t *testing.T) {
	query := []float32{1, 1}
	longCode := make([]byte, 2)
	longCode[0] = 0b11 // dim 0 = 3 (width 2), dim 1 encoded next
	got := bits.ExtIP(query, longCode, 2, 2)
	assert.InDelta(t, float64(3), got, 1e-6)
}

package rotate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saqlib/saqcore/internal/rotate"
)

func TestDense_IdentityIsNoOp(t *testing.T) {
	identity := []float64{
		1, 0,
		0, 1,
	}
	r := rotate.NewDense(2, identity)
	out := r.Apply([]float32{3, 4})
	assert.InDeltaSlice(t, []float32{3, 4}, out, 1e-5)
}

func TestDense_PreservesNorm(t *testing.T) {
	// A 2D rotation by 90 degrees is orthogonal: it must preserve L2 norm.
	rot90 := []float64{
		0, -1,
		1, 0,
	}
	r := rotate.NewDense(2, rot90)
	out := r.Apply([]float32{1, 0})

	var normBefore, normAfter float64
	normBefore = 1 * 1
	for _, v := range out {
		normAfter += float64(v) * float64(v)
	}
	assert.InDelta(t, normBefore, normAfter, 1e-5)
}

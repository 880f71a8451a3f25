// Package rotate applies an already-trained orthogonal projection to a
// query vector before estimation (spec §6: "rotator: Option<&{P:
// RowMajorMat<f32>}>"). Training the rotation matrix is out of scope here
// (spec §1 Non-goals) — this package only consumes one, the same way the
// pack's weaviate-weaviate/usecases/projector package consumes a
// gonum/mat.Dense it did not itself train.
package rotate

import "gonum.org/v1/gonum/mat"

// Rotator applies a fixed row-major projection matrix P to row vectors.
type Rotator interface {
	Apply(query []float32) []float32
}

// Dense wraps a gonum *mat.Dense as a Rotator, computing query*P.
type Dense struct {
	P *mat.Dense
}

// NewDense builds a Dense rotator from a flat row-major matrix of shape
// (dim, dim).
func NewDense(dim int, flatP []float64) *Dense {
	return &Dense{P: mat.NewDense(dim, dim, flatP)}
}

// Apply returns query*P as a new float32 slice.
func (d *Dense) Apply(query []float32) []float32 {
	dim := len(query)
	qf64 := make([]float64, dim)
	for i, v := range query {
		qf64[i] = float64(v)
	}
	qv := mat.NewVecDense(dim, qf64)

	var out mat.VecDense
	out.MulVec(d.P.T(), qv)

	result := make([]float32, dim)
	for i := 0; i < dim; i++ {
		result[i] = float32(out.AtVec(i))
	}
	return result
}

// Package clusterdata declares the read-only, externally-owned collaborator
// contracts the estimators consume (spec §6): cluster-scoped accessors for
// centroids, residual norms, and packed codes. Building this data (training
// centroids and codebooks, persisting it, memory-mapping it) is explicitly
// out of scope for this module; only the accessor shapes live here.
package clusterdata

import "github.com/saqlib/saqcore/internal/saq"

// ExFactor carries the per-vector rescale factor that maps a reconstructed,
// code-space inner product back to the original vector's inner-product
// scale (spec §3 glossary: "Rescale").
type ExFactor struct {
	Rescale float32
}

// Cluster is the read-only view into one cluster's quantized data a
// fast-scan estimator needs. All slices returned must be aligned per
// spec §6's binary alignment contract; callers own the backing storage and
// guarantee it outlives every estimator referencing it.
type Cluster interface {
	// Centroid returns the cluster's dense centroid, length NumDimPad.
	Centroid() []float32

	// FactorOL2Norm returns the 32 residual norms |o-c| for block blockIdx,
	// 64-byte aligned.
	FactorOL2Norm(blockIdx int) *[saq.KFastScanSize]float32

	// ShortCode returns the fast-scan interleaved 4-bit-per-group code
	// block, 64-byte aligned, sized 32*NumDimPad/8 bytes.
	ShortCode(blockIdx int) []byte

	// LongCode returns the extended-precision residual code for vecIdx,
	// 64-byte aligned, sized ceil(NumDimPad*ExBits/8) bytes.
	LongCode(vecIdx int) []byte

	// LongFactor returns the rescale factor for vecIdx.
	LongFactor(vecIdx int) ExFactor
}

// SingleCluster is the read-only view for non-fast-scan (single-vector)
// storage, additionally exposing one packed 1-bit code per vector.
type SingleCluster interface {
	Cluster
	// ShortCodeSingle returns the packed 1-bit-per-dimension code for
	// vecIdx, sized NumDimPad/8 bytes, as NumDimPad/64 uint64 words.
	ShortCodeSingle(vecIdx int) []uint64
}

// Package saq holds the shared constants and value types used across the
// distance-estimation core: the fast-scan block size, distance-type tag,
// and the candidate pair the search buffer sorts on.
package saq

// KMaxQuantizeBits is the largest num_bits a quantizer config may carry;
// above this the extended-precision rescale factor overflows to NaN.
const KMaxQuantizeBits = 13

// KFastScanSize is the number of codes packed into one fast-scan block.
const KFastScanSize = 32

// KDimPaddingSize is the required multiple for num_dim_pad.
const KDimPaddingSize = 64

// PID is a database vector identifier. The top bit is reserved by
// SearchBuffer to carry the "checked" flag, so IDs must fit in 31 bits.
type PID = uint32

// DistType selects which distance the estimators reconstruct.
type DistType int

const (
	// L2Sqr is squared Euclidean distance.
	L2Sqr DistType = iota
	// IP is inner product.
	IP
)

func (d DistType) String() string {
	switch d {
	case L2Sqr:
		return "l2sqr"
	case IP:
		return "ip"
	default:
		return "unknown"
	}
}

// Candidate pairs a database id with its estimated distance. Ordering is
// by Distance ascending.
type Candidate struct {
	ID       PID
	Distance float32
}

// Package single implements the scalar-per-code distance estimator for
// non-fast-scan storage (spec §4.5), built on the bit-transposed query
// quantizer in internal/transpose.
//
// Grounded on original_source/saqlib/quantization/caq/caq_estimator.hpp's
// CaqSingleEstimator<kDistType> and the CaqEstimatorSingleImpl it wraps;
// the magic constants 0.58 (const_bound) and 0.8 (est_error) are carried
// bitwise-identically per spec §4.5 and §9's explicit note that their
// provenance is undocumented and they must be treated as fixed.
package single

import (
	"github.com/saqlib/saqcore/internal/bits"
	"github.com/saqlib/saqcore/internal/clusterdata"
	"github.com/saqlib/saqcore/internal/saq"
	"github.com/saqlib/saqcore/internal/saqconfig"
	"github.com/saqlib/saqcore/internal/saqerrors"
	"github.com/saqlib/saqcore/internal/saqmetrics"
	"github.com/saqlib/saqcore/internal/transpose"
)

const constBound = 0.58 // bias-correction coefficient, spec §4.5 / §9
const estError = 0.8    // expected-error coefficient, spec §4.5 / §9

// Estimator evaluates distances one code at a time against a raw query,
// using AND-popcount-weighted sums instead of LUT lookups. It requires
// non-fast-scan quantizer data (spec §4.5).
type Estimator struct {
	numDimPad          int
	numBits            uint8
	exBits             uint8
	distType           saq.DistType
	searcherVarsBoundM float32

	quant *transpose.Quantizer

	rawQuery   []float32
	ipQC       float32 // set through SetCentroidIP; zero otherwise
	pruneBound float32

	Metrics saqmetrics.QueryRuntimeMetrics
}

// New validates cfg/scfg and constructs an Estimator. Unlike cluster.New it
// takes no query; the query is handed to Prepare. scfg.SearcherVarsBoundM
// is captured here so SetPruneBound only needs the per-call vars term.
// Fails with ConfigMismatch if cfg selects fast-scan layout (this path
// requires the opposite), or QuantizeOutOfRange if num_bits exceeds the
// 13-bit ceiling (spec §7). The distance type is taken from cfg; it is not
// compared against scfg.DistType.
func New(cfg saqconfig.QuantizerConfig, scfg saqconfig.SearcherConfig) (*Estimator, error) {
	if cfg.UseFastscan {
		return nil, saqerrors.New(saqerrors.KindConfigMismatch, "single.New", "quantizer data is in fast-scan layout; single.Estimator requires non-fast-scan codes")
	}
	if cfg.NumBits > saq.KMaxQuantizeBits {
		return nil, saqerrors.New(saqerrors.KindQuantizeOutOfRange, "single.New", "num_bits exceeds the 13-bit ceiling")
	}
	return &Estimator{
		numDimPad:          cfg.NumDimPad,
		numBits:            cfg.NumBits,
		exBits:             cfg.ExBits(),
		distType:           cfg.DistType,
		searcherVarsBoundM: scfg.SearcherVarsBoundM,
		quant:              transpose.New(cfg.NumDimPad),
	}, nil
}

// SetPruneBound stores without_ip_prune_bound = vars * searcherVarsBoundM,
// mirroring CluEstimator.SetPruneBound (spec §4.4) for the scalar path.
func (e *Estimator) SetPruneBound(vars float32) {
	e.pruneBound = vars * e.searcherVarsBoundM
}

// SetCentroidIP stores query·centroid for the IP-mode formulas.
// cluster.SingleEstimator does not call it (its IP mode fails in Prepare),
// so ipQC stays zero unless a caller sets it directly.
func (e *Estimator) SetCentroidIP(ipQC float32) { e.ipQC = ipQC }

// Prepare quantizes query and keeps a copy for the masked-sum refinement
// pass (spec §4.5: "Holds the raw query (not a LUT)").
func (e *Estimator) Prepare(query []float32) {
	if cap(e.rawQuery) < len(query) {
		e.rawQuery = make([]float32, len(query))
	}
	e.rawQuery = e.rawQuery[:len(query)]
	copy(e.rawQuery, query)
	e.quant.Prepare(query)
}

// VarsEstDist is the pessimistic, code-free estimate (spec §4.4's pattern
// applied scalar-wise).
func (e *Estimator) VarsEstDist(oL2Norm float32) float32 {
	switch e.distType {
	case saq.IP:
		return e.ipQC - e.pruneBound
	default:
		v := oL2Norm*oL2Norm + e.quant.QL2Sqr() - 2*e.pruneBound
		if v < 0 {
			return 0
		}
		return v
	}
}

// CompFastDist is the cheap screening estimate (spec §4.5).
func (e *Estimator) CompFastDist(oL2Norm float32, shortCode []uint64) float32 {
	if e.numBits == 0 {
		return e.VarsEstDist(oL2Norm)
	}

	tmp := float32(e.quant.WeightedPopcountSum(shortCode))
	ipOA1QQ := (tmp - (0.5*e.quant.SumQ() - constBound*e.quant.QL2Norm())) *
		(4.0 / estError) * oneOverSqrtD(e.numDimPad) * oL2Norm

	e.Metrics.AddFast(uint64(e.numDimPad))

	switch e.distType {
	case saq.IP:
		return 0.5 * ipOA1QQ
	default:
		v := e.quant.QL2Sqr() + oL2Norm*oL2Norm - ipOA1QQ
		if v < 0 {
			return 0
		}
		return v
	}
}

// CompAccurateDist refines the estimate for one vector using its extended
// precision long code (spec §4.5).
func (e *Estimator) CompAccurateDist(oL2Norm float32, shortCode []uint64, longCode []byte, exFac clusterdata.ExFactor) float32 {
	if e.numBits == 0 {
		switch e.distType {
		case saq.IP:
			return e.ipQC
		default:
			return oL2Norm*oL2Norm + e.quant.QL2Sqr()
		}
	}

	ipOA1Q := bits.MaskedSum(e.rawQuery, shortCode)
	codeDelta := 2.0 / float64(uint32(1)<<e.numBits)
	exIP := bits.ExtIP(e.rawQuery, longCode, int(e.exBits), e.numDimPad)

	tmp := float64(ipOA1Q) + exIP*codeDelta + (-1+codeDelta/2)*float64(e.quant.SumQ())
	ipOQ := exFac.Rescale * float32(tmp)

	e.Metrics.AddAccurate(uint64(e.numDimPad) * uint64(e.exBits))

	switch e.distType {
	case saq.IP:
		return ipOQ + e.ipQC
	default:
		return oL2Norm*oL2Norm + e.quant.QL2Sqr() - 2*ipOQ
	}
}

func oneOverSqrtD(numDimPad int) float32 {
	return 1 / sqrt32(float32(numDimPad))
}

func sqrt32(x float32) float32 {
	if x <= 0 {
		return 0
	}
	z := x
	for i := 0; i < 12; i++ {
		z -= (z*z - x) / (2 * z)
	}
	return z
}

// Package cluster implements the two cluster-scoped estimators spec §4.4
// and its single-vector wrapper (§4.5, "cluster-scoped wrapper") describe:
// Estimator (the spec's CluEstimator) drives the fast-scan LUT across whole
// 32-code blocks, and SingleEstimator (the spec's CluSingleEstimator) layers
// centroid subtraction over the scalar single.Estimator.
//
// Grounded on original_source/saqlib/quantization/caq/caq_estimator.hpp's
// CaqCluEstimator<kDistType> (construction, set_prune_bound, prepare,
// vars_est_dist, comp_fast_dist, comp_accurate_dist) and
// CaqCluEstimatorSingle<kDistType>.
package cluster

import (
	"github.com/saqlib/saqcore/internal/clusterdata"
	"github.com/saqlib/saqcore/internal/fastscan"
	"github.com/saqlib/saqcore/internal/rotate"
	"github.com/saqlib/saqcore/internal/saq"
	"github.com/saqlib/saqcore/internal/saqconfig"
	"github.com/saqlib/saqcore/internal/saqerrors"
	"github.com/saqlib/saqcore/internal/saqmetrics"
)

// Estimator is the fast-scan, block-batched distance estimator (spec
// §4.4). It is constructed once per query and re-Prepared for every
// cluster the query visits.
type Estimator struct {
	numDimPad          int
	numBits            uint8
	exBits             uint8
	distType           saq.DistType
	searcherVarsBoundM float32

	lut   *fastscan.LUT
	query []float32

	ipQC       float32
	pruneBound float32

	cluster clusterdata.Cluster

	Metrics saqmetrics.QueryRuntimeMetrics
}

// New constructs an Estimator for one query. rotator is optional; when it
// is non-nil, New applies it to query directly, matching the
// constructor-time "query = query * rotator.P" step spec §4.4 describes.
// qcfg.HasRotator is not consulted.
func New(qcfg saqconfig.QuantizerConfig, scfg saqconfig.SearcherConfig, query []float32, rotator rotate.Rotator) (*Estimator, error) {
	if !qcfg.UseFastscan {
		return nil, saqerrors.New(saqerrors.KindConfigMismatch, "cluster.New", "quantizer data is not in fast-scan layout; cluster.Estimator requires it")
	}
	if qcfg.DistType != scfg.DistType {
		return nil, saqerrors.New(saqerrors.KindConfigMismatch, "cluster.New", "quantizer dist_type disagrees with searcher dist_type")
	}
	if qcfg.NumBits > saq.KMaxQuantizeBits {
		return nil, saqerrors.New(saqerrors.KindQuantizeOutOfRange, "cluster.New", "num_bits exceeds the 13-bit ceiling")
	}

	q := query
	if rotator != nil {
		q = rotator.Apply(query)
	}

	return &Estimator{
		numDimPad:          qcfg.NumDimPad,
		numBits:            qcfg.NumBits,
		exBits:             qcfg.ExBits(),
		distType:           scfg.DistType,
		searcherVarsBoundM: scfg.SearcherVarsBoundM,
		lut:                fastscan.New(qcfg.NumDimPad, qcfg.ExBits()),
		query:              q,
	}, nil
}

// SetPruneBound stores without_ip_prune_bound = vars * searcher_vars_bound_m
// (spec §4.4).
func (e *Estimator) SetPruneBound(vars float32) {
	e.pruneBound = vars * e.searcherVarsBoundM
}

// Prepare captures cluster and rebuilds the LUT for it (spec §4.4): in IP
// mode the LUT runs on the raw (rotated) query and ip_q_c = query·centroid
// is cached; in L2 mode the LUT runs on the query-minus-centroid residual.
func (e *Estimator) Prepare(cluster clusterdata.Cluster) {
	e.cluster = cluster
	centroid := cluster.Centroid()

	switch e.distType {
	case saq.IP:
		var dot float32
		for i, v := range e.query {
			if i < len(centroid) {
				dot += v * centroid[i]
			}
		}
		e.ipQC = dot
		e.lut.Prepare(e.query)
	default:
		residual := make([]float32, len(e.query))
		for i, v := range e.query {
			c := float32(0)
			if i < len(centroid) {
				c = centroid[i]
			}
			residual[i] = v - c
		}
		e.lut.Prepare(residual)
	}
}

// VarsEstDist fills out with the pessimistic, LUT-free estimate for every
// slot in block blockIdx (spec §4.4).
func (e *Estimator) VarsEstDist(blockIdx int, out *[saq.KFastScanSize]float32) {
	oL2norm := e.cluster.FactorOL2Norm(blockIdx)
	qL2Sqr := e.lut.GetQL2Sqr()

	switch e.distType {
	case saq.IP:
		for j := range out {
			out[j] = e.ipQC - e.pruneBound
		}
	default:
		for j := range out {
			v := oL2norm[j]*oL2norm[j] + qL2Sqr - 2*e.pruneBound
			if v < 0 {
				v = 0
			}
			out[j] = v
		}
	}
}

// CompFastDist is the batched screening estimate for one block (spec
// §4.4). out may be nil to only refresh LUT state for a later
// CompAccurateDist call.
func (e *Estimator) CompFastDist(blockIdx int, out *[saq.KFastScanSize]float32) {
	if e.numBits == 0 {
		if out != nil {
			e.VarsEstDist(blockIdx, out)
		}
		return
	}

	shortCode := e.cluster.ShortCode(blockIdx)
	var raw [saq.KFastScanSize]float32
	e.lut.CompFastIP(shortCode, &raw)

	e.Metrics.AddFast(uint64(saq.KFastScanSize) * uint64(e.numDimPad))

	if out == nil {
		return
	}

	oL2norm := e.cluster.FactorOL2Norm(blockIdx)
	qL2Sqr := e.lut.GetQL2Sqr()

	switch e.distType {
	case saq.IP:
		for j := range out {
			out[j] = 0.5*raw[j] + e.ipQC
		}
	default:
		for j := range out {
			v := oL2norm[j]*oL2norm[j] + qL2Sqr - raw[j]
			if v < 0 {
				v = 0
			}
			out[j] = v
		}
	}
}

// CompAccurateDist refines the estimate for vecIdx using its extended
// precision long code (spec §4.4). Requires a preceding CompFastDist on
// vecIdx/32; if that precondition was skipped the LUT falls back to its
// last (possibly stale) state rather than raising, per spec §7's
// hot-path-never-raises policy.
func (e *Estimator) CompAccurateDist(vecIdx int) float32 {
	blockIdx := vecIdx / saq.KFastScanSize
	slot := vecIdx % saq.KFastScanSize

	oL2norm := e.cluster.FactorOL2Norm(blockIdx)[slot]
	qL2Sqr := e.lut.GetQL2Sqr()

	if e.numBits == 0 {
		switch e.distType {
		case saq.IP:
			return e.ipQC
		default:
			return oL2norm*oL2norm + qL2Sqr
		}
	}

	longCode := e.cluster.LongCode(vecIdx)
	exFac := e.cluster.LongFactor(vecIdx)
	delta := 2.0 / float64(uint32(1)<<e.numBits)

	ipOQ := exFac.Rescale * e.lut.GetExtIP(longCode, delta, slot)

	e.Metrics.AddAccurate(uint64(e.numDimPad) * uint64(e.exBits))

	switch e.distType {
	case saq.IP:
		return ipOQ + e.ipQC
	default:
		return oL2norm*oL2norm + qL2Sqr - 2*ipOQ
	}
}

// GetRuntimeMetrics returns the estimator's accumulated per-query counters
// (spec §4.4, supplemented by the original's full QueryRuntimeMetrics).
func (e *Estimator) GetRuntimeMetrics() saqmetrics.QueryRuntimeMetrics { return e.Metrics }

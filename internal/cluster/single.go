package cluster

import (
	"github.com/saqlib/saqcore/internal/clusterdata"
	"github.com/saqlib/saqcore/internal/rotate"
	"github.com/saqlib/saqcore/internal/saq"
	"github.com/saqlib/saqcore/internal/saqconfig"
	"github.com/saqlib/saqcore/internal/saqerrors"
	"github.com/saqlib/saqcore/internal/saqmetrics"
	"github.com/saqlib/saqcore/internal/single"
)

// SingleEstimator is the cluster-scoped wrapper over single.Estimator
// (spec §4.5's "cluster-scoped wrapper"; the spec's CluSingleEstimator,
// after the original's CaqCluEstimatorSingle). It applies centroid subtraction
// on Prepare; the IP path is not implemented, matching the original and
// spec §9's Open Questions note.
type SingleEstimator struct {
	est      *single.Estimator
	distType saq.DistType
	rotator  rotate.Rotator
	query    []float32

	cluster clusterdata.SingleCluster
}

// NewSingleEstimator constructs the wrapper; the underlying single.Estimator
// is built immediately, but IP-mode Prepare(cluster) calls fail with
// NotImplemented rather than construction itself, matching the original
// where the failure surfaces from prepare().
func NewSingleEstimator(qcfg saqconfig.QuantizerConfig, scfg saqconfig.SearcherConfig, query []float32, rotator rotate.Rotator) (*SingleEstimator, error) {
	est, err := single.New(qcfg, scfg)
	if err != nil {
		return nil, err
	}
	return &SingleEstimator{
		est:      est,
		distType: scfg.DistType,
		rotator:  rotator,
		query:    query,
	}, nil
}

// SetPruneBound stores without_ip_prune_bound = vars * searcher_vars_bound_m
// on the wrapped single.Estimator, the same operation CluEstimator exposes
// (spec §4.4/§4.5, SUPPLEMENTED FEATURES point 2: CluSingleEstimator carries
// the same operation set as CluEstimator).
func (e *SingleEstimator) SetPruneBound(vars float32) {
	e.est.SetPruneBound(vars)
}

// Prepare applies the rotator (if any) and subtracts cluster's centroid
// before quantizing, then caches cluster for the vecIdx-indexed operations
// below. Fails with NotImplemented in IP mode (spec §4.5).
func (e *SingleEstimator) Prepare(cluster clusterdata.SingleCluster) error {
	if e.distType == saq.IP {
		return saqerrors.New(saqerrors.KindNotImplemented, "cluster.SingleEstimator.Prepare", "IP distance is not implemented for the single-vector cluster estimator")
	}

	q := e.query
	if e.rotator != nil {
		q = e.rotator.Apply(q)
	}
	centroid := cluster.Centroid()
	residual := make([]float32, len(q))
	for i, v := range q {
		c := float32(0)
		if i < len(centroid) {
			c = centroid[i]
		}
		residual[i] = v - c
	}

	e.est.Prepare(residual)
	e.cluster = cluster
	return nil
}

func (e *SingleEstimator) blockSlot(vecIdx int) (int, int) {
	return vecIdx / saq.KFastScanSize, vecIdx % saq.KFastScanSize
}

// VarsEstDist is the pessimistic estimate for vecIdx.
func (e *SingleEstimator) VarsEstDist(vecIdx int) float32 {
	block, slot := e.blockSlot(vecIdx)
	oL2norm := e.cluster.FactorOL2Norm(block)[slot]
	return e.est.VarsEstDist(oL2norm)
}

// CompFastDist is the screening estimate for vecIdx.
func (e *SingleEstimator) CompFastDist(vecIdx int) float32 {
	block, slot := e.blockSlot(vecIdx)
	oL2norm := e.cluster.FactorOL2Norm(block)[slot]
	shortCode := e.cluster.ShortCodeSingle(vecIdx)
	return e.est.CompFastDist(oL2norm, shortCode)
}

// CompAccurateDist is the refined estimate for vecIdx.
func (e *SingleEstimator) CompAccurateDist(vecIdx int) float32 {
	block, slot := e.blockSlot(vecIdx)
	oL2norm := e.cluster.FactorOL2Norm(block)[slot]
	shortCode := e.cluster.ShortCodeSingle(vecIdx)
	longCode := e.cluster.LongCode(vecIdx)
	exFac := e.cluster.LongFactor(vecIdx)
	return e.est.CompAccurateDist(oL2norm, shortCode, longCode, exFac)
}

// GetRuntimeMetrics returns the accumulated per-query counters.
func (e *SingleEstimator) GetRuntimeMetrics() saqmetrics.QueryRuntimeMetrics { return e.est.Metrics }

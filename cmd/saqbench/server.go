package main

import (
	"context"

	"github.com/saqlib/saqcore/cmd/saqbench/distsvc"
	"github.com/saqlib/saqcore/internal/cluster"
	"github.com/saqlib/saqcore/internal/saq"
	"github.com/saqlib/saqcore/internal/saqconfig"
)

// distanceServer implements distsvc.Server by constructing a fresh
// cluster.Estimator per request against the process's resident cluster
// fixture. A production caller would instead keep long-lived estimators
// per in-flight query (spec §5: per-query, single-threaded, non-suspending).
type distanceServer struct {
	qcfg    saqconfig.QuantizerConfig
	scfg    saqconfig.SearcherConfig
	cluster *clusterFixture
}

func newDistanceServer(qcfg saqconfig.QuantizerConfig, scfg saqconfig.SearcherConfig, cf *clusterFixture) *distanceServer {
	return &distanceServer{qcfg: qcfg, scfg: scfg, cluster: cf}
}

func (s *distanceServer) EstimateDistance(_ context.Context, req *distsvc.EstimateDistanceRequest) (*distsvc.EstimateDistanceResponse, error) {
	query := padVector(req.Query, s.qcfg.NumDimPad)

	est, err := cluster.New(s.qcfg, s.scfg, query, nil)
	if err != nil {
		return nil, err
	}
	est.Prepare(s.cluster)

	block := int(req.VectorID) / saq.KFastScanSize
	var fast [saq.KFastScanSize]float32
	est.CompFastDist(block, &fast)

	if !req.Accurate {
		slot := int(req.VectorID) % saq.KFastScanSize
		return &distsvc.EstimateDistanceResponse{Distance: fast[slot]}, nil
	}

	return &distsvc.EstimateDistanceResponse{Distance: est.CompAccurateDist(int(req.VectorID))}, nil
}

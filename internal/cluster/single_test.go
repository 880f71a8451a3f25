package cluster_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saqlib/saqcore/internal/cluster"
	"github.com/saqlib/saqcore/internal/saq"
	"github.com/saqlib/saqcore/internal/saqconfig"
	"github.com/saqlib/saqcore/internal/saqerrors"
)

func singleConfigs() (saqconfig.QuantizerConfig, saqconfig.SearcherConfig) {
	q := saqconfig.QuantizerConfig{NumDimPad: 64, NumBits: 4, UseFastscan: false, DistType: saq.L2Sqr}
	s := saqconfig.SearcherConfig{DistType: saq.L2Sqr, SearcherVarsBoundM: 1.0, UseFastscan: false}
	return q, s
}

func TestSingleEstimator_IPModePrepareFails(t *testing.T) {
	q, s := singleConfigs()
	q.DistType, s.DistType = saq.IP, saq.IP
	query := make([]float32, q.NumDimPad)
	est, err := cluster.NewSingleEstimator(q, s, query, nil)
	require.NoError(t, err)

	fc := newFakeCluster(q.NumDimPad)
	err = est.Prepare(fc)
	require.Error(t, err)
	assert.True(t, saqerrors.Is(err, saqerrors.KindNotImplemented))
}

func TestSingleEstimator_L2ModeComputesDistances(t *testing.T) {
	q, s := singleConfigs()
	query := make([]float32, q.NumDimPad)
	for i := range query {
		query[i] = float32(i % 3)
	}
	est, err := cluster.NewSingleEstimator(q, s, query, nil)
	require.NoError(t, err)

	fc := newFakeCluster(q.NumDimPad)
	require.NoError(t, est.Prepare(fc))

	fast := est.CompFastDist(0)
	fast2 := est.CompFastDist(0)
	assert.Equal(t, fast, fast2)

	refined := est.CompAccurateDist(0)
	assert.True(t, refined >= 0)

	vars := est.VarsEstDist(0)
	assert.True(t, vars >= 0)
}

func TestSingleEstimator_RuntimeMetrics(t *testing.T) {
	q, s := singleConfigs()
	query := make([]float32, q.NumDimPad)
	est, err := cluster.NewSingleEstimator(q, s, query, nil)
	require.NoError(t, err)

	fc := newFakeCluster(q.NumDimPad)
	require.NoError(t, est.Prepare(fc))

	est.CompFastDist(0)
	est.CompAccurateDist(0)

	m := est.GetRuntimeMetrics()
	assert.Equal(t, uint64(2), m.TotalCompCnt)
}

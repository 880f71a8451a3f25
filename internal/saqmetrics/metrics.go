// Package saqmetrics exposes the estimator's QueryRuntimeMetrics (spec
// §4.4, supplemented by original_source/caq_estimator.hpp's full field set)
// as process-wide Prometheus counters, in the style of the teacher's
// internal/metrics package (one promauto-registered counter per hot
// quantity, incremented from the call site).
package saqmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FastBitsumTotal sums the bit work every CompFastDist call records:
	// num_dim_pad * KFastScanSize per fast-scan block, num_dim_pad per
	// single-vector code.
	FastBitsumTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saqcore_fast_bitsum_total",
		Help: "Cumulative fast-path bit work across all CompFastDist calls.",
	})
	// AccBitsumTotal sums num_dim_pad * (num_bits-1) over every CompAccurateDist call.
	AccBitsumTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saqcore_acc_bitsum_total",
		Help: "Cumulative refinement bit work across all CompAccurateDist calls.",
	})
	// TotalCompCount counts every distance computation, fast or accurate.
	TotalCompCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saqcore_total_comp_count",
		Help: "Total number of fast or accurate distance computations performed.",
	})
)

// QueryRuntimeMetrics mirrors the original estimator's per-query counters
// (original_source/caq_estimator.hpp QueryRuntimeMetrics). Each estimator
// owns one instance for its own lifetime and also feeds the process-wide
// Prometheus counters above.
type QueryRuntimeMetrics struct {
	FastBitsum   uint64
	AccBitsum    uint64
	TotalCompCnt uint64
}

// AddFast records one CompFastDist call covering dimBits bits of work.
func (m *QueryRuntimeMetrics) AddFast(dimBits uint64) {
	m.FastBitsum += dimBits
	m.TotalCompCnt++
	FastBitsumTotal.Add(float64(dimBits))
	TotalCompCount.Inc()
}

// AddAccurate records one CompAccurateDist call covering dimBits bits of work.
func (m *QueryRuntimeMetrics) AddAccurate(dimBits uint64) {
	m.AccBitsum += dimBits
	m.TotalCompCnt++
	AccBitsumTotal.Add(float64(dimBits))
	TotalCompCount.Inc()
}

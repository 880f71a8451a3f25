// Command saqbench is a demo harness around the estimation core: it builds
// (or loads) a sample cluster, runs the fast-scan cluster estimator and the
// search buffer over it, and serves a gRPC distance endpoint and a
// Prometheus /metrics page. None of this file is part of the estimation core itself
// (spec §1 draws that boundary at the constructors in internal/cluster,
// internal/single, and internal/buffer).
package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/saqlib/saqcore/cmd/saqbench/distsvc"
	"github.com/saqlib/saqcore/internal/buffer"
	"github.com/saqlib/saqcore/internal/cluster"
	"github.com/saqlib/saqcore/internal/saq"
	"github.com/saqlib/saqcore/internal/saqconfig"
	"github.com/saqlib/saqcore/internal/saqlog"
)

func main() {
	metricsAddr := flag.String("metrics", "0.0.0.0:9090", "Address to serve Prometheus metrics on")
	grpcAddr := flag.String("grpc", "0.0.0.0:4000", "Address to serve the distance estimation RPC on")
	sampleN := flag.Int("n", 4096, "Number of sample database vectors to generate")
	sampleDim := flag.Int("dim", 192, "Raw (pre-padding) vector dimensionality")
	parquetPath := flag.String("parquet", "", "Optional path to a .parquet file of sample vectors; generated in-memory if empty")
	flag.Parse()

	_ = godotenv.Load() // optional; missing .env is not an error

	logger, err := saqlog.New(saqlog.DefaultConfig())
	if err != nil {
		fmt.Fprintln(os.Stderr, "saqbench: logger init:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	qcfg, err := loadQuantizerConfig()
	if err != nil {
		logger.Error("invalid quantizer config", zap.Error(err))
		os.Exit(1)
	}
	scfg, err := saqconfig.Load("SAQ_SEARCH")
	if err != nil {
		logger.Error("invalid searcher config", zap.Error(err))
		os.Exit(1)
	}
	scfg.DistType = qcfg.DistType
	scfg.UseFastscan = qcfg.UseFastscan

	go func() {
		logger.Info("serving metrics", zap.String("address", *metricsAddr))
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()

	var fixture *fixtureBatch
	if *parquetPath != "" {
		fixture, err = loadParquetFixture(*parquetPath)
		if err != nil {
			logger.Error("loading parquet fixture", zap.Error(err))
			os.Exit(1)
		}
		logger.Info("loaded sample vectors", zap.String("path", *parquetPath), zap.Int("count", len(fixture.ids)))
	} else {
		fixture = buildFixture(memory.NewGoAllocator(), *sampleN, *sampleDim)
		logger.Info("generated sample vectors", zap.Int("count", *sampleN), zap.Int("dim", *sampleDim))
	}

	numDimPad := paddedDim(*sampleDim)
	if numDimPad != qcfg.NumDimPad {
		qcfg.NumDimPad = numDimPad
	}
	padded := make([][]float32, len(fixture.vectors))
	for i, v := range fixture.vectors {
		padded[i] = padVector(v, numDimPad)
	}

	cf := newClusterFixture(padded, numDimPad, qcfg.ExBits())

	query := padVector(padded[0], numDimPad)
	est, err := cluster.New(qcfg, scfg, query, nil)
	if err != nil {
		logger.Error("constructing cluster estimator", zap.Error(err))
		os.Exit(1)
	}
	est.Prepare(cf)

	graph := buildTraversalGraph(padded)
	frontier := buffer.New(10)
	traverseIntoFrontier(graph, 0, 32, frontier, func(vecIdx int) float32 {
		var fast [saq.KFastScanSize]float32
		est.CompFastDist(vecIdx/saq.KFastScanSize, &fast)
		return fast[vecIdx%saq.KFastScanSize]
	})

	logger.Info("frontier built from graph traversal", zap.Int("size", frontier.Size()))
	for frontier.HasNext() {
		id := frontier.Pop()
		// Re-run CompFastDist for id's own block immediately before refining
		// it: CompAccurateDist consumes LUT state left by the most recent
		// CompFastDist call on the same block (spec §4.4 precondition), and
		// the traversal loop above may have since visited a different block.
		var fast [saq.KFastScanSize]float32
		est.CompFastDist(int(id)/saq.KFastScanSize, &fast)
		refined := est.CompAccurateDist(int(id))
		logger.Debug("refined candidate", zap.Uint32("id", id), zap.Float32("distance", refined))
	}

	metrics := est.GetRuntimeMetrics()
	logger.Info("runtime metrics",
		zap.Uint64("fast_bitsum", metrics.FastBitsum),
		zap.Uint64("acc_bitsum", metrics.AccBitsum),
		zap.Uint64("total_comp_cnt", metrics.TotalCompCnt),
	)

	lis, err := net.Listen("tcp", *grpcAddr)
	if err != nil {
		logger.Error("grpc listen failed", zap.Error(err))
		os.Exit(1)
	}
	grpcServer := grpc.NewServer()
	grpcServer.RegisterService(&distsvc.ServiceDesc, newDistanceServer(qcfg, scfg, cf))

	logger.Info("distance RPC listening", zap.String("address", *grpcAddr))
	if err := grpcServer.Serve(lis); err != nil {
		logger.Error("grpc server stopped", zap.Error(err))
	}
}

func loadQuantizerConfig() (saqconfig.QuantizerConfig, error) {
	cfg, err := saqconfig.LoadQuantizer("SAQ")
	if err != nil {
		return saqconfig.QuantizerConfig{}, err
	}
	if v, ok := os.LookupEnv("SAQ_DIST_TYPE"); ok && v == "ip" {
		cfg.DistType = saq.IP
	}
	return cfg, nil
}

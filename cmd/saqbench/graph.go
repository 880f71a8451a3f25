package main

import (
	"math"

	"github.com/coder/hnsw"

	"github.com/saqlib/saqcore/internal/buffer"
	"github.com/saqlib/saqcore/internal/saq"
)

// buildTraversalGraph builds an hnsw.Graph over the padded fixture
// vectors, grounded directly on the teacher's internal/store.HNSWIndex:
// hnsw.New takes a distance function over the graph's own key type, and
// nodes carry only their key, the vector content staying in external
// storage (here, a plain map instead of Arrow buffers) looked up by the
// distance function itself. The estimator core never depends on this
// package; it only exists to hand the search buffer a realistic stream of
// candidate ids (spec §2: "Outputs are fed into the search buffer").
func buildTraversalGraph(vectors [][]float32) *hnsw.Graph[uint32] {
	lookup := make(map[uint32][]float32, len(vectors))
	for i, v := range vectors {
		lookup[uint32(i)] = v
	}

	g := hnsw.New(func(a, b uint32) float32 {
		return euclidean(lookup[a], lookup[b])
	})
	for i := range vectors {
		g.Add(hnsw.Node[uint32]{Key: uint32(i)})
	}
	return g
}

func euclidean(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return float32(math.Sqrt(float64(sum)))
}

// traverseIntoFrontier runs an approximate k-nearest search from seed
// (an id already in the graph), scoring each returned candidate with the
// estimator's own fast distance and inserting it into frontier — the
// graph supplies candidate ids, the estimator supplies the distance the
// frontier actually sorts on.
func traverseIntoFrontier(g *hnsw.Graph[uint32], seed uint32, k int, frontier *buffer.SearchBuffer, fastDistFor func(vecIdx int) float32) {
	neighbors := g.Search(seed, k, k*2)
	for _, n := range neighbors {
		d := fastDistFor(int(n.Key))
		frontier.Insert(saq.PID(n.Key), d)
	}
}

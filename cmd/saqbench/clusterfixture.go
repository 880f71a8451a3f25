package main

import (
	"github.com/saqlib/saqcore/internal/clusterdata"
	"github.com/saqlib/saqcore/internal/saq"
)

// clusterFixture is a toy in-memory clusterdata.Cluster built directly from
// fixtureBatch's vectors. Building a quantizer (computing real codes from
// raw vectors) is explicitly out of scope for the estimation core (spec
// §1 Non-goals); this exists only so the benchmark harness has something
// to hand the estimators, using the simplest code scheme that satisfies
// the LUT's documented layout.
type clusterFixture struct {
	numDimPad int
	exBits    uint8
	centroid  []float32

	blocks     [][saq.KFastScanSize]float32 // factor_o_l2norm per block
	shortCodes [][]byte                     // one interleaved nibble block per block index
	longCodes  [][]byte                     // one per vector
	factors    []clusterdata.ExFactor       // one per vector
}

// newClusterFixture builds a single cluster over vectors (already padded
// to numDimPad), computing the mean as centroid and a sign-bit short code
// plus a uniformly quantized long code for each residual.
func newClusterFixture(vectors [][]float32, numDimPad int, exBits uint8) *clusterFixture {
	centroid := make([]float32, numDimPad)
	for _, v := range vectors {
		for d := 0; d < numDimPad; d++ {
			centroid[d] += v[d]
		}
	}
	n := len(vectors)
	if n > 0 {
		for d := range centroid {
			centroid[d] /= float32(n)
		}
	}

	numBlocks := (n + saq.KFastScanSize - 1) / saq.KFastScanSize
	cf := &clusterFixture{
		numDimPad:  numDimPad,
		exBits:     exBits,
		centroid:   centroid,
		blocks:     make([][saq.KFastScanSize]float32, numBlocks),
		shortCodes: make([][]byte, numBlocks),
		longCodes:  make([][]byte, n),
		factors:    make([]clusterdata.ExFactor, n),
	}

	numGroups := numDimPad / 4
	for b := 0; b < numBlocks; b++ {
		// One 64-byte "line" per 4 groups (spec §6 interleaved layout).
		lines := (numGroups + 3) / 4
		shortCode := make([]byte, lines*64)
		cf.shortCodes[b] = shortCode

		for j := 0; j < saq.KFastScanSize; j++ {
			vecIdx := b*saq.KFastScanSize + j
			var residual []float32
			if vecIdx < n {
				residual = make([]float32, numDimPad)
				for d := 0; d < numDimPad; d++ {
					residual[d] = vectors[vecIdx][d] - centroid[d]
				}
			} else {
				residual = make([]float32, numDimPad)
			}

			var sumsq float32
			for _, r := range residual {
				sumsq += r * r
			}
			cf.blocks[b][j] = sqrt32(sumsq)

			for g := 0; g < numGroups; g++ {
				var nib byte
				for k := 0; k < 4; k++ {
					dim := g*4 + k
					if residual[dim] >= 0 {
						nib |= 1 << uint(k)
					}
				}
				line := g / 4
				sub := g % 4
				byteIdx := line*64 + sub*(saq.KFastScanSize/2) + j/2
				if j%2 == 0 {
					shortCode[byteIdx] |= nib << 4
				} else {
					shortCode[byteIdx] |= nib
				}
			}

			if vecIdx < n {
				cf.longCodes[vecIdx] = encodeLongCode(residual, numDimPad, exBits)
				cf.factors[vecIdx] = clusterdata.ExFactor{Rescale: 1.0}
			}
		}
	}

	return cf
}

// encodeLongCode packs each dimension's residual into an exBits-wide
// unsigned field, mapping the assumed [-1, 1] residual range onto
// [0, 2^exBits), little-endian within each byte — the layout
// internal/bits.ExtractField and internal/fastscan.GetExtIP expect.
func encodeLongCode(residual []float32, numDimPad int, exBits uint8) []byte {
	if exBits == 0 {
		return nil
	}
	totalBits := numDimPad * int(exBits)
	out := make([]byte, (totalBits+7)/8)
	levels := uint32(1) << exBits

	for dim, r := range residual {
		v := (r + 1) / 2 // map [-1,1] -> [0,1]
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		level := uint32(v * float32(levels-1))
		startBit := dim * int(exBits)
		for bpos := 0; bpos < int(exBits); bpos++ {
			if (level>>uint(bpos))&1 == 1 {
				idx := startBit + bpos
				out[idx/8] |= 1 << uint(idx%8)
			}
		}
	}
	return out
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

func (cf *clusterFixture) Centroid() []float32 { return cf.centroid }

func (cf *clusterFixture) FactorOL2Norm(blockIdx int) *[saq.KFastScanSize]float32 {
	return &cf.blocks[blockIdx]
}

func (cf *clusterFixture) ShortCode(blockIdx int) []byte { return cf.shortCodes[blockIdx] }

func (cf *clusterFixture) LongCode(vecIdx int) []byte { return cf.longCodes[vecIdx] }

func (cf *clusterFixture) LongFactor(vecIdx int) clusterdata.ExFactor { return cf.factors[vecIdx] }

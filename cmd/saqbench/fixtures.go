package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/parquet-go/parquet-go"

	"github.com/saqlib/saqcore/internal/saq"
)

// vectorRecord is the Parquet row shape for a sample query/database vector,
// grounded on the teacher's internal/storage.VectorRecord.
type vectorRecord struct {
	ID     int32     `parquet:"id"`
	Vector []float32 `parquet:"vector"`
}

// fixtureBatch holds the in-memory sample vectors a benchmark run uses,
// built as an Arrow FixedSizeList Float32 record batch the way the
// teacher's internal/storage package builds its vector records, then
// flattened into plain slices for the estimator core (which never touches
// Arrow directly — that's a demo-harness concern, spec §1).
type fixtureBatch struct {
	mem     memory.Allocator
	record  arrow.Record
	ids     []int32
	vectors [][]float32
}

// buildFixture synthesizes n vectors of dimension dim as an Arrow record
// batch, the same FixedSizeListOf(Float32) schema the teacher's
// readParquet/writeParquet pair uses, seeded by a simple deterministic
// generator (no math/rand — determinism matters for the estimator's
// byte-identical-output testable property, spec §8).
func buildFixture(mem memory.Allocator, n, dim int) *fixtureBatch {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int32},
		{Name: "vector", Type: arrow.FixedSizeListOf(int32(dim), arrow.PrimitiveTypes.Float32)},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	idBuilder := b.Field(0).(*array.Int32Builder)
	vecBuilder := b.Field(1).(*array.FixedSizeListBuilder)
	vecValBuilder := vecBuilder.ValueBuilder().(*array.Float32Builder)

	ids := make([]int32, n)
	vectors := make([][]float32, n)
	for i := 0; i < n; i++ {
		idBuilder.Append(int32(i))
		vecBuilder.Append(true)
		vec := make([]float32, dim)
		for d := 0; d < dim; d++ {
			vec[d] = float32(math.Sin(float64(i*dim+d)*0.017)) + float32(i%7)*0.01
		}
		vecValBuilder.AppendValues(vec, nil)
		ids[i] = int32(i)
		vectors[i] = vec
	}

	return &fixtureBatch{
		mem:     mem,
		record:  b.NewRecord(),
		ids:     ids,
		vectors: vectors,
	}
}

// writeParquet persists the fixture as Parquet, mirroring the teacher's
// writeParquet helper but for the single vectorRecord shape this demo uses.
func (f *fixtureBatch) writeParquet(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	pw := parquet.NewGenericWriter[vectorRecord](file, parquet.Compression(&parquet.Zstd))
	rows := make([]vectorRecord, len(f.ids))
	for i := range f.ids {
		rows[i] = vectorRecord{ID: f.ids[i], Vector: f.vectors[i]}
	}
	if _, err := pw.Write(rows); err != nil {
		_ = pw.Close()
		return err
	}
	return pw.Close()
}

// loadParquetFixture reads a previously written sample file back, the
// mirror of the teacher's readParquet helper.
func loadParquetFixture(path string) (*fixtureBatch, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, err
	}
	pr := parquet.NewGenericReader[vectorRecord](pf)
	rows := make([]vectorRecord, pr.NumRows())
	n, err := pr.Read(rows)
	if err != nil && err != io.EOF {
		return nil, err
	}
	rows = rows[:n]
	if len(rows) == 0 {
		return nil, fmt.Errorf("saqbench: %s contains no rows", path)
	}

	ids := make([]int32, len(rows))
	vectors := make([][]float32, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
		vectors[i] = row.Vector
	}
	return &fixtureBatch{ids: ids, vectors: vectors}, nil
}

// padVector right-pads v with zeros to saq.KDimPaddingSize-aligned numDimPad,
// the padding convention spec §3 requires ("num_dim_pad % 64 == 0").
func padVector(v []float32, numDimPad int) []float32 {
	if len(v) >= numDimPad {
		return v[:numDimPad]
	}
	out := make([]float32, numDimPad)
	copy(out, v)
	return out
}

// paddedDim rounds dim up to the next multiple of saq.KDimPaddingSize.
func paddedDim(dim int) int {
	if dim%saq.KDimPaddingSize == 0 {
		return dim
	}
	return (dim/saq.KDimPaddingSize + 1) * saq.KDimPaddingSize
}

// Package buffer implements the bounded sorted candidate frontier spec
// §4.6 describes: a capacity-K array of Candidates kept sorted ascending
// by distance, with a cursor separating checked from unchecked entries and
// the checked flag overlaid on the candidate id's top bit.
//
// Grounded 1:1 on original_source/saqlib/utils/buffer.hpp's SearchBuffer
// (binary_search, insert, pop, clear, resize, copy_results), adapted from
// the original's raw-pointer/memmove style to Go slices the way the
// teacher's internal/store ring buffers manage shifting in place.
package buffer

import (
	"math"
	"sort"
	"unsafe"

	"github.com/saqlib/saqcore/internal/aligned"
	"github.com/saqlib/saqcore/internal/saq"
)

// checkedBit is the top bit of a 32-bit id, reserved for the checked flag
// (spec §3, §9: "database IDs therefore must fit in 31 bits").
const checkedBit = uint32(1) << 31

// SearchBuffer is a capacity-bounded, ascending-sorted candidate list used
// as the traversal frontier for graph-based ANN search.
type SearchBuffer struct {
	capacity int
	data     []saq.Candidate // length capacity+1, only [0:size) populated
	size     int
	cur      int
}

// New allocates a SearchBuffer of the given capacity, backed by a
// 64-byte-aligned array of capacity+1 slots (spec §4.6: "capacity+1 slots
// exist to simplify the shift").
func New(capacity int) *SearchBuffer {
	b := &SearchBuffer{capacity: capacity}
	b.allocate()
	return b
}

// candidateSize is the in-memory size of saq.Candidate (uint32 id + float32
// distance), used to size the aligned backing allocation.
const candidateSize = 8

func (b *SearchBuffer) allocate() {
	n := b.capacity + 1
	buf, err := aligned.Bytes(n*candidateSize, aligned.Align64)
	if err != nil {
		// aligned.Bytes only fails on invalid input (negative size, bad
		// alignment); both are programmer errors here, not a runtime
		// condition the hot path needs to survive.
		panic(err)
	}
	if n == 0 {
		b.data = nil
		return
	}
	b.data = unsafe.Slice((*saq.Candidate)(unsafe.Pointer(&buf[0])), n)
}

// Resize reallocates the buffer for newCapacity; prior contents are
// discarded (spec §4.6).
func (b *SearchBuffer) Resize(newCapacity int) {
	b.capacity = newCapacity
	b.size = 0
	b.cur = 0
	b.allocate()
}

// Clear empties the buffer without reallocating.
func (b *SearchBuffer) Clear() {
	b.size = 0
	b.cur = 0
}

// IsFull reports whether the buffer would reject a candidate at the given
// distance: true iff the buffer is at capacity and dist is strictly greater
// than its current worst entry (spec §4.6, "Full semantics"). A candidate
// that ties the worst distance is still accepted.
func (b *SearchBuffer) IsFull(dist float32) bool {
	return b.size == b.capacity && dist > b.data[b.size-1].Distance
}

// binarySearch returns the smallest index lo in [0, size) with
// data[lo].Distance >= dist (or size if none), the insertion point that
// keeps the array sorted ascending.
func (b *SearchBuffer) binarySearch(dist float32) int {
	return sort.Search(b.size, func(i int) bool {
		return b.data[i].Distance >= dist
	})
}

// Insert adds (id, dist) if it would improve the frontier, maintaining
// sort order and the cursor invariant (spec §4.6).
func (b *SearchBuffer) Insert(id saq.PID, dist float32) {
	if b.IsFull(dist) {
		return
	}

	lo := b.binarySearch(dist)
	end := b.size
	if b.size < b.capacity {
		end = b.size + 1
	}
	copy(b.data[lo+1:end], b.data[lo:end-1])
	b.data[lo] = saq.Candidate{ID: id &^ checkedBit, Distance: dist}

	if b.size < b.capacity {
		b.size++
	}
	if lo < b.cur {
		b.cur = lo
	}
}

// Pop returns the id at the cursor, marks it checked, and advances the
// cursor past any now-checked entries (spec §4.6).
func (b *SearchBuffer) Pop() saq.PID {
	id := b.data[b.cur].ID &^ checkedBit
	b.data[b.cur].ID |= checkedBit
	b.cur++
	for b.cur < b.size && b.data[b.cur].ID&checkedBit != 0 {
		b.cur++
	}
	return id
}

// NextID returns the id at the cursor without advancing it.
func (b *SearchBuffer) NextID() saq.PID {
	return b.data[b.cur].ID &^ checkedBit
}

// HasNext reports whether any unchecked entry remains.
func (b *SearchBuffer) HasNext() bool { return b.cur < b.size }

// TopDist returns the worst (largest) distance currently held, or +Inf if
// the buffer has not reached capacity.
func (b *SearchBuffer) TopDist() float32 {
	if b.size < b.capacity {
		return float32(math.Inf(1))
	}
	return b.data[b.size-1].Distance
}

// Size returns the number of live entries.
func (b *SearchBuffer) Size() int { return b.size }

// CopyResults copies the size live ids into out, stripping the checked
// bit, and returns the number copied.
func (b *SearchBuffer) CopyResults(out []saq.PID) int {
	n := b.size
	if len(out) < n {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		out[i] = b.data[i].ID &^ checkedBit
	}
	return n
}

// Package aligned provides the allocation primitives spec §4.1 asks for:
// byte and float32 buffers guaranteed to start on a 32- or 64-byte
// boundary, built the way the teacher's internal/memory.ArenaAllocator
// wraps a plain []byte pool, but sized for the one-shot, never-resized
// allocations the estimators and search buffer need at construction time.
//
// Go has no std::aligned_alloc equivalent exposed to user code, so
// alignment is obtained by over-allocating and slicing forward to the
// first aligned byte, the same technique every pure-Go SIMD library in
// the ecosystem uses in place of posix_memalign.
package aligned

import (
	"unsafe"

	"github.com/saqlib/saqcore/internal/saqerrors"
)

// Alignment is the set of alignments the estimators ever request.
type Alignment int

const (
	Align32 Alignment = 32
	Align64 Alignment = 64
)

func (a Alignment) valid() bool { return a == Align32 || a == Align64 }

// Bytes returns a zero-initialized byte slice of length size whose first
// byte is aligned to align (32 or 64). The returned slice's cap equals size,
// so appending to it reallocates instead of growing into the padding.
func Bytes(size int, align Alignment) ([]byte, error) {
	if !align.valid() {
		return nil, saqerrors.New(saqerrors.KindAllocationError, "aligned.Bytes", "alignment must be 32 or 64")
	}
	if size < 0 {
		return nil, saqerrors.New(saqerrors.KindAllocationError, "aligned.Bytes", "negative size")
	}
	if size == 0 {
		return []byte{}, nil
	}

	raw := make([]byte, size+int(align)-1)
	base := uintptr(unsafe.Pointer(&raw[0]))
	mask := uintptr(align - 1)
	pad := (uintptr(align) - (base & mask)) & mask
	return raw[pad : pad+uintptr(size) : pad+uintptr(size)], nil
}

// Float32s returns a zero-initialized []float32 of length n whose backing
// array starts on an align-byte boundary.
func Float32s(n int, align Alignment) ([]float32, error) {
	b, err := Bytes(n*4, align)
	if err != nil {
		return nil, saqerrors.Wrap(err, saqerrors.KindAllocationError, "aligned.Float32s", "backing byte allocation failed")
	}
	if n == 0 {
		return []float32{}, nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), n), nil
}

// IsAligned reports whether p's address is a multiple of align. Only the
// package tests call it; no allocation path asserts alignment at runtime.
func IsAligned(p unsafe.Pointer, align Alignment) bool {
	return uintptr(p)%uintptr(align) == 0
}

// PrefetchL1 and PrefetchL2 are advisory prefetch hints (spec §9): Go
// exposes no prefetch intrinsic to non-assembly code, so these are
// documented no-ops. Callers may call them on the hot path without any
// functional effect; no test may depend on them doing anything.
func PrefetchL1(_ unsafe.Pointer) {}
func PrefetchL2(_ unsafe.Pointer) {}

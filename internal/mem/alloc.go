// Package mem provides memory allocation utilities.
package mem

import (
	"unsafe"
)

// Alignment is the byte alignment required for AVX-512 (64 bytes).
const Alignment = 64

// AllocAligned allocates a byte slice of the given size with 64-byte alignment.
// The returned slice is guaranteed to start at a memory address divisible by 64.
//
// Note: This function allocates slightly more memory than requested to ensure
// alignment. The underlying array is kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	// Allocate size + alignment so an aligned offset always exists within
	// the buffer.
	buf := make([]byte, size+Alignment)

	ptr := unsafe.Pointer(&buf[0]) //nolint:gosec // unsafe is required for memory alignment
	addr := uintptr(ptr)
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	return buf[offset : offset+uintptr(size)]
}

// AllocAlignedFloat32 allocates a float32 slice of the given length with
// 64-byte alignment.
func AllocAlignedFloat32(n int) []float32 {
	if n <= 0 {
		return nil
	}

	byteSlice := AllocAligned(n * 4)

	// Safe because AllocAligned guarantees 64-byte alignment, which covers
	// the 4-byte alignment float32 requires.
	ptr := unsafe.Pointer(&byteSlice[0])    //nolint:gosec // unsafe is required for memory alignment
	return unsafe.Slice((*float32)(ptr), n) //nolint:gosec // unsafe is required for memory alignment
}

// Float32View reinterprets an aligned byte buffer as float32 values.
// b must originate from AllocAligned and have a length divisible by 4.
// The view aliases b; writes through either are visible in both.
func Float32View(b []byte) []float32 {
	if len(b) == 0 {
		return nil
	}
	ptr := unsafe.Pointer(&b[0])                   //nolint:gosec // unsafe is required for reinterpretation
	return unsafe.Slice((*float32)(ptr), len(b)/4) //nolint:gosec // unsafe is required for reinterpretation
}

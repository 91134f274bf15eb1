package mem

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocAligned(t *testing.T) {
	sizes := []int{1, 7, 64, 100, 4096}

	for _, size := range sizes {
		buf := AllocAligned(size)
		require.Len(t, buf, size)

		addr := uintptr(unsafe.Pointer(&buf[0]))
		assert.Zero(t, addr%Alignment, "size %d not %d-byte aligned", size, Alignment)
	}

	assert.Nil(t, AllocAligned(0))
	assert.Nil(t, AllocAligned(-1))
}

func TestAllocAlignedFloat32(t *testing.T) {
	buf := AllocAlignedFloat32(100)
	require.Len(t, buf, 100)

	addr := uintptr(unsafe.Pointer(&buf[0]))
	assert.Zero(t, addr%Alignment)

	// Fresh allocation is zeroed and writable.
	for i := range buf {
		assert.Zero(t, buf[i])
		buf[i] = float32(i)
	}
	assert.Equal(t, float32(99), buf[99])

	assert.Nil(t, AllocAlignedFloat32(0))
}

func TestFloat32View(t *testing.T) {
	b := AllocAligned(16)
	f := Float32View(b)
	require.Len(t, f, 4)

	// The view aliases the bytes.
	f[0] = 1.0
	assert.NotEqual(t, []byte{0, 0, 0, 0}, b[:4])

	f2 := Float32View(b)
	assert.Equal(t, float32(1.0), f2[0])

	assert.Nil(t, Float32View(nil))
}

package arena_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-lang/emberc/compiler/arena"
)

func TestAllocZeroed(t *testing.T) {
	a := arena.New(4096)

	p, err := arena.Alloc[int64](a)
	require.NoError(t, err)
	assert.Equal(t, int64(0), *p)
}

func TestEmplaceStoresValue(t *testing.T) {
	a := arena.New(4096)

	type pair struct{ X, Y int32 }

	p, err := arena.Emplace(a, pair{X: 1, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, int32(1), p.X)
	assert.Equal(t, int32(2), p.Y)
}

func TestAllocAlignment(t *testing.T) {
	a := arena.New(4096)

	// Force an odd offset with a byte-sized allocation, then confirm
	// the next allocation of a wider type still lands aligned.
	_, err := arena.Alloc[byte](a)
	require.NoError(t, err)

	p, err := arena.Alloc[int64](a)
	require.NoError(t, err)

	addr := uintptr(unsafe.Pointer(p))
	assert.Zero(t, addr%unsafe.Alignof(*p))
}

func TestAllocExhausted(t *testing.T) {
	a := arena.New(8)

	_, err := arena.Alloc[[64]byte](a)
	assert.ErrorIs(t, err, arena.ErrExhausted)
}

func TestUsedAndCap(t *testing.T) {
	a := arena.New(64)
	assert.Equal(t, 64, a.Cap())
	assert.Zero(t, a.Used())

	_, err := arena.Alloc[int64](a)
	require.NoError(t, err)
	assert.Equal(t, 8, a.Used())
}

func TestMustAllocPanicsOnExhaustion(t *testing.T) {
	a := arena.New(4)

	assert.Panics(t, func() {
		arena.MustAlloc[int64](a)
	})
}

package gfx

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryInsertGet(t *testing.T) {
	var r registry[int]

	a := new(int)
	*a = 7
	b := new(int)
	*b = 9

	idA := r.Insert(a)
	idB := r.Insert(b)
	assert.NotEqual(t, idA, idB)

	require.NotNil(t, r.Get(idA))
	assert.Equal(t, 7, *r.Get(idA))
	assert.Equal(t, 9, *r.Get(idB))
	assert.Equal(t, 2, r.Len())

	assert.Nil(t, r.Get(ResourceID(1000)))
}

func TestRegistryRemoveUnused(t *testing.T) {
	var r registry[int]

	kept := new(int)
	dropped := new(int)
	keptID := r.Insert(kept)
	droppedID := r.Insert(dropped)

	dropped = nil
	_ = dropped
	runtime.GC()
	runtime.GC()

	removed := r.RemoveUnused()
	require.Equal(t, []ResourceID{droppedID}, removed)
	assert.Nil(t, r.Get(droppedID))
	assert.NotNil(t, r.Get(keptID))
	assert.Equal(t, 1, r.Len())

	// a second scan finds nothing new
	assert.Empty(t, r.RemoveUnused())
	runtime.KeepAlive(kept)
}

func TestRegistryRecyclesSlots(t *testing.T) {
	var r registry[int]

	first := new(int)
	firstID := r.Insert(first)

	first = nil
	_ = first
	runtime.GC()
	runtime.GC()
	require.Equal(t, []ResourceID{firstID}, r.RemoveUnused())

	second := new(int)
	secondID := r.Insert(second)
	assert.Equal(t, firstID, secondID)
	assert.NotNil(t, r.Get(secondID))
	runtime.KeepAlive(second)
}

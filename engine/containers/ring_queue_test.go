package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingQueueFIFO(t *testing.T) {
	q := NewRingQueue[int](4)

	require.NoError(t, q.Enqueue(1))
	require.NoError(t, q.Enqueue(2))
	require.NoError(t, q.Enqueue(3))

	v, err := q.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = q.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	require.NoError(t, q.Enqueue(4))
	require.NoError(t, q.Enqueue(5))

	for _, want := range []int{3, 4, 5} {
		v, err = q.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
	assert.True(t, q.IsEmpty())
}

func TestRingQueueFull(t *testing.T) {
	q := NewRingQueue[string](2)
	require.NoError(t, q.Enqueue("a"))
	require.NoError(t, q.Enqueue("b"))
	assert.True(t, q.IsFull())
	assert.Error(t, q.Enqueue("c"))
}

func TestRingQueueDequeueEmpty(t *testing.T) {
	q := NewRingQueue[int](2)
	_, err := q.Dequeue()
	assert.Error(t, err)
}

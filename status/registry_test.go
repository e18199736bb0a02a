package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_CachedPointers(t *testing.T) {
	r := NewRegistry()
	a := r.Ints.Get("tasks.active")
	b := r.Ints.Get("tasks.active")
	assert.Same(t, a, b)

	a.Add(3)
	assert.Equal(t, int64(3), b.Load())
}

func TestRegistry_SnapshotOrder(t *testing.T) {
	r := NewRegistry()
	r.Ints.Get("b").Store(2)
	r.Ints.Get("a").Store(1)
	r.Floats.Get("dt").Store(0.016)

	assert.Equal(t, []Metric{
		{Key: "a", Value: "1"},
		{Key: "b", Value: "2"},
		{Key: "dt", Value: "0.02"},
	}, r.Snapshot())
}

func TestAtomicFloat_Add(t *testing.T) {
	var f AtomicFloat
	assert.Equal(t, 0.0, f.Load())
	f.Add(1.5)
	assert.Equal(t, 2.0, f.Add(0.5))
}

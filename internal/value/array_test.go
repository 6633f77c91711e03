package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nums(vs ...float64) []Value {
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = Number(v)
	}
	return out
}

func TestArrayBasics(t *testing.T) {
	a := NewArray(nums(1, 2, 3))
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, 2.0, a.Get(1).AsNumber())
	assert.Equal(t, "[1, 2, 3]", a.Print(false))
}

func TestArrayAddSetDelete(t *testing.T) {
	a := NewArray(nums(1, 2))

	added := a.Add(Number(3))
	assert.Equal(t, 3, added.Len())
	assert.Equal(t, 2, a.Len())

	set, ok := a.Set(0, Number(9))
	require.True(t, ok)
	assert.Equal(t, 9.0, set.Get(0).AsNumber())
	assert.Equal(t, 1.0, a.Get(0).AsNumber())

	_, ok = a.Set(5, Number(0))
	assert.False(t, ok)

	del, ok := a.Delete(0)
	require.True(t, ok)
	assert.Equal(t, 1, del.Len())
	assert.Equal(t, 2.0, del.Get(0).AsNumber())
}

func TestArrayInplaceMutators(t *testing.T) {
	a := NewArray(nums(1, 2, 3))
	a.InplaceAdd(Number(4))
	assert.Equal(t, 4, a.Len())

	ok := a.InplaceSet(0, Number(100))
	require.True(t, ok)
	assert.Equal(t, 100.0, a.Get(0).AsNumber())

	ok = a.InplaceDelete(1)
	require.True(t, ok)
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, 3.0, a.Get(1).AsNumber())
}

func TestArrayConcatAndDiff(t *testing.T) {
	a := NewArray(nums(1, 2))
	b := NewArray(nums(2, 3))

	c := ConcatArrays(a, b)
	assert.Equal(t, 4, c.Len())

	d := DiffArrays(a, b)
	require.Equal(t, 1, d.Len())
	assert.Equal(t, 1.0, d.Get(0).AsNumber())
}

func TestArraySliceRange(t *testing.T) {
	a := NewArray(nums(0, 1, 2, 3, 4))

	full := a.SliceRange(0, 4)
	assert.Same(t, a, full)

	mid := a.SliceRange(1, 2)
	require.Equal(t, 2, mid.Len())
	assert.Equal(t, 1.0, mid.Get(0).AsNumber())

	empty := a.SliceRange(3, 1)
	assert.Equal(t, 0, empty.Len())
}

func TestArrayEqualCompare(t *testing.T) {
	a := NewArray(nums(1, 2))
	b := NewArray(nums(1, 2))
	c := NewArray(nums(1, 3))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))

	cmp, err := a.Compare(c)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	shorter := NewArray(nums(1))
	cmp, err = shorter.Compare(a)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)
}

func TestArrayIterator(t *testing.T) {
	a := NewArray(nums(10, 20))
	it := a.NewIterator()
	require.True(t, it.Valid())
	assert.Equal(t, 10.0, it.Current().AsNumber())

	it2 := it.Next()
	require.True(t, it2.Valid())
	assert.Equal(t, 20.0, it2.Current().AsNumber())

	it3 := it2.Next()
	assert.False(t, it3.Valid())

	it.InplaceNext()
	assert.Equal(t, 20.0, it.Current().AsNumber())
}

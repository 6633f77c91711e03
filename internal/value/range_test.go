package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeStepDirection(t *testing.T) {
	assert.Equal(t, int64(1), NewRange(0, 5).Step())
	assert.Equal(t, int64(-1), NewRange(5, 0).Step())
	assert.Equal(t, int64(-1), NewRange(3, 3).Step())
}

func TestRangeEqualCompare(t *testing.T) {
	a := NewRange(0, 5)
	b := NewRange(0, 5)
	c := NewRange(0, 6)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, -1, a.Compare(c))
	assert.Equal(t, 1, c.Compare(a))
}

func TestRangePrint(t *testing.T) {
	assert.Equal(t, "0..5", NewRange(0, 5).Print(false))
}

func TestRangeIteratorAscending(t *testing.T) {
	r := NewRange(1, 3)
	it := r.NewIterator()

	var seen []int64
	for it.Valid() {
		seen = append(seen, it.Current().AsInt())
		it = it.Next()
	}
	assert.Equal(t, []int64{1, 2, 3}, seen)
}

func TestRangeIteratorDescending(t *testing.T) {
	r := NewRange(3, 1)
	it := r.NewIterator()

	var seen []int64
	for it.Valid() {
		seen = append(seen, it.Current().AsInt())
		it.InplaceNext()
	}
	assert.Equal(t, []int64{3, 2, 1}, seen)
}

func TestRangeSingleElement(t *testing.T) {
	r := NewRange(4, 4)
	it := r.NewIterator()
	require.True(t, it.Valid())
	assert.Equal(t, int64(4), it.Current().AsInt())
	it.InplaceNext()
	assert.False(t, it.Valid())
}

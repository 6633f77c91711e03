package value

import (
	"fmt"
	"strings"
)

// Array is a dynamic vector of values. The plain operations (Add, Set,
// Delete, Concat, Diff) return a new array and leave the receiver
// untouched; the Inplace* variants mutate the receiver and are only
// safe under the single-reference fast path described in spec.md §3.
type Array struct {
	header
	elems []Value
}

// NewArray builds an array from elems, taking ownership (no copy, no
// additional retain: the caller already holds one reference per
// element, e.g. freshly popped off the stack).
func NewArray(elems []Value) *Array {
	return &Array{elems: elems}
}

// NewArrayWithCapacity returns an empty array with the given backing
// capacity reserved.
func NewArrayWithCapacity(capacity int) *Array {
	return &Array{elems: make([]Value, 0, capacity)}
}

func (a *Array) Type() Type { return TypeArray }

func (a *Array) Release() {
	if a.releaseSelf() {
		for _, e := range a.elems {
			e.Release()
		}
	}
}

func (a *Array) Print(quoted bool) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range a.elems {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(Print(e, true))
	}
	b.WriteByte(']')
	_ = quoted
	return b.String()
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.elems) }

// Get returns the element at i without bounds checking; callers must
// validate via Len first (GET_ELEMENT is documented as O(1)).
func (a *Array) Get(i int64) Value { return a.elems[i] }

// Elements exposes the backing slice for read-only iteration (e.g. by
// Equal/Compare); callers must not mutate it.
func (a *Array) Elements() []Value { return a.elems }

// Add returns a new array with val appended; val is retained by the
// caller before calling Add (the array takes over that reference).
func (a *Array) Add(val Value) *Array {
	out := make([]Value, len(a.elems)+1)
	copy(out, a.elems)
	out[len(a.elems)] = val
	for _, e := range a.elems {
		e.Retain()
	}
	return NewArray(out)
}

// InplaceAdd appends val directly onto the receiver's backing slice.
func (a *Array) InplaceAdd(val Value) {
	a.elems = append(a.elems, val)
}

// Set returns a new array with index i replaced by val.
func (a *Array) Set(i int64, val Value) (*Array, bool) {
	if i < 0 || i >= int64(len(a.elems)) {
		return nil, false
	}
	out := make([]Value, len(a.elems))
	copy(out, a.elems)
	for idx, e := range a.elems {
		if int64(idx) != i {
			e.Retain()
		}
	}
	out[i] = val
	return NewArray(out), true
}

// InplaceSet releases the old element at i and stores val in its
// place.
func (a *Array) InplaceSet(i int64, val Value) bool {
	if i < 0 || i >= int64(len(a.elems)) {
		return false
	}
	a.elems[i].Release()
	a.elems[i] = val
	return true
}

// Delete returns a new array with index i removed.
func (a *Array) Delete(i int64) (*Array, bool) {
	if i < 0 || i >= int64(len(a.elems)) {
		return nil, false
	}
	out := make([]Value, 0, len(a.elems)-1)
	for idx, e := range a.elems {
		if int64(idx) == i {
			continue
		}
		e.Retain()
		out = append(out, e)
	}
	return NewArray(out), true
}

// InplaceDelete removes index i from the receiver's backing slice,
// releasing the removed element.
func (a *Array) InplaceDelete(i int64) bool {
	if i < 0 || i >= int64(len(a.elems)) {
		return false
	}
	a.elems[i].Release()
	copy(a.elems[i:], a.elems[i+1:])
	a.elems = a.elems[:len(a.elems)-1]
	return true
}

// ConcatArrays returns a+b as a new array. Elements of both operands
// are retained into the result.
func ConcatArrays(a, b *Array) *Array {
	out := make([]Value, 0, len(a.elems)+len(b.elems))
	for _, e := range a.elems {
		e.Retain()
		out = append(out, e)
	}
	for _, e := range b.elems {
		e.Retain()
		out = append(out, e)
	}
	return NewArray(out)
}

// InplaceConcat appends b's (retained) elements onto a's backing
// slice. Only safe under the single-reference fast path.
func (a *Array) InplaceConcat(b *Array) {
	for _, e := range b.elems {
		e.Retain()
		a.elems = append(a.elems, e)
	}
}

// InplaceDiff removes from a's backing slice every element also present
// in b (by Equal), releasing the removed elements. Only safe under the
// single-reference fast path.
func (a *Array) InplaceDiff(b *Array) {
	out := a.elems[:0]
	for _, e := range a.elems {
		found := false
		for _, o := range b.elems {
			if Equal(e, o) {
				found = true
				break
			}
		}
		if found {
			e.Release()
			continue
		}
		out = append(out, e)
	}
	a.elems = out
}

// DiffArrays returns the elements of a that are not present in b
// (by Equal), preserving a's order.
func DiffArrays(a, b *Array) *Array {
	out := make([]Value, 0, len(a.elems))
	for _, e := range a.elems {
		found := false
		for _, o := range b.elems {
			if Equal(e, o) {
				found = true
				break
			}
		}
		if found {
			continue
		}
		e.Retain()
		out = append(out, e)
	}
	return NewArray(out)
}

// SliceIndex returns the element at int64 index i, or false if i is
// out of [0, length).
func (a *Array) SliceIndex(i int64) (Value, bool) {
	if i < 0 || i >= int64(len(a.elems)) {
		return Nil, false
	}
	return a.elems[i], true
}

// SliceRange implements the slicing rule in spec.md §4.2: given
// [start,end], return a new empty array if start>end, start>len-1, or
// end<0; return the same array (ownership transferred to the caller,
// i.e. the receiver is retained once more by the caller) if
// start<=0 && end>=len-1; otherwise a new copied sub-array.
func (a *Array) SliceRange(start, end int64) *Array {
	length := int64(len(a.elems))
	if start > end || start > length-1 || end < 0 {
		return NewArray(nil)
	}
	if start <= 0 && end >= length-1 {
		a.Retain()
		return a
	}
	if start < 0 {
		start = 0
	}
	if end > length-1 {
		end = length - 1
	}
	out := make([]Value, end-start+1)
	copy(out, a.elems[start:end+1])
	for _, e := range out {
		e.Retain()
	}
	return NewArray(out)
}

// Equal compares two arrays element-wise.
func (a *Array) Equal(o *Array) bool {
	if len(a.elems) != len(o.elems) {
		return false
	}
	for i := range a.elems {
		if !Equal(a.elems[i], o.elems[i]) {
			return false
		}
	}
	return true
}

// Compare implements lexicographic ordering over element Compare.
func (a *Array) Compare(o *Array) (int, error) {
	n := len(a.elems)
	if len(o.elems) < n {
		n = len(o.elems)
	}
	for i := 0; i < n; i++ {
		c, err := Compare(a.elems[i], o.elems[i])
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}
	switch {
	case len(a.elems) < len(o.elems):
		return -1, nil
	case len(a.elems) > len(o.elems):
		return 1, nil
	default:
		return 0, nil
	}
}

// NewIterator builds the array's iterator.
func (a *Array) NewIterator() Iterator {
	a.Retain()
	return &arrayIterator{arr: a, index: 0}
}

// arrayIterator walks an Array by index.
type arrayIterator struct {
	header
	arr   *Array
	index int
}

func (it *arrayIterator) Type() Type { return TypeIterator }

func (it *arrayIterator) Release() {
	if it.releaseSelf() {
		it.arr.Release()
	}
}

func (it *arrayIterator) Print(quoted bool) string {
	_ = quoted
	return fmt.Sprintf("<iterator %s>", it.arr.Print(false))
}

func (it *arrayIterator) Valid() bool { return it.index < it.arr.Len() }

func (it *arrayIterator) Current() Value {
	v := it.arr.Get(int64(it.index))
	v.Retain()
	return v
}

func (it *arrayIterator) Next() Iterator {
	it.arr.Retain()
	return &arrayIterator{arr: it.arr, index: it.index + 1}
}

func (it *arrayIterator) InplaceNext() { it.index++ }

package value

import "fmt"

// Range is an immutable half-described sequence of int64 values: a
// start and end (both inclusive) and a step of +1 or -1 derived from
// the sign of end-start. Grounded on original_source/src/range.c's
// hk_range_t.
type Range struct {
	header
	start int64
	end   int64
	step  int64
}

// NewRange builds a range, deriving step from the sign of end-start as
// src/range.c's hk_range_new does.
func NewRange(start, end int64) *Range {
	step := int64(-1)
	if start < end {
		step = 1
	}
	return &Range{start: start, end: end, step: step}
}

func (r *Range) Type() Type { return TypeRange }

func (r *Range) Release() {
	if r.releaseSelf() {
		// no owned contents
	}
}

func (r *Range) Print(quoted bool) string {
	_ = quoted
	return fmt.Sprintf("%d..%d", r.start, r.end)
}

func (r *Range) Start() int64 { return r.start }
func (r *Range) End() int64   { return r.end }
func (r *Range) Step() int64  { return r.step }

// Equal compares (start, end) only, per spec.md §4.1.
func (r *Range) Equal(o *Range) bool { return r.start == o.start && r.end == o.end }

// Compare orders by start, tie-breaking on end.
func (r *Range) Compare(o *Range) int {
	switch {
	case r.start < o.start:
		return -1
	case r.start > o.start:
		return 1
	case r.end < o.end:
		return -1
	case r.end > o.end:
		return 1
	default:
		return 0
	}
}

// NewIterator builds the range's iterator, starting at r.start.
func (r *Range) NewIterator() Iterator {
	r.Retain()
	return &rangeIterator{rng: r, current: r.start}
}

// rangeIterator walks a Range one step at a time. Grounded on
// original_source/src/range.c's range_iterator_t.
type rangeIterator struct {
	header
	rng     *Range
	current int64
}

func (it *rangeIterator) Type() Type { return TypeIterator }

func (it *rangeIterator) Release() {
	if it.releaseSelf() {
		it.rng.Release()
	}
}

func (it *rangeIterator) Print(quoted bool) string {
	_ = quoted
	return fmt.Sprintf("<iterator %s>", it.rng.Print(false))
}

func (it *rangeIterator) Valid() bool {
	if it.rng.step == 1 {
		return it.current <= it.rng.end
	}
	return it.current >= it.rng.end
}

func (it *rangeIterator) Current() Value {
	return Number(float64(it.current))
}

func (it *rangeIterator) Next() Iterator {
	it.rng.Retain()
	return &rangeIterator{rng: it.rng, current: it.current + it.rng.step}
}

func (it *rangeIterator) InplaceNext() {
	it.current += it.rng.step
}

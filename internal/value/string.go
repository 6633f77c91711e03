package value

import "bytes"

// String is an immutable byte buffer with an explicit length, plus a
// single-reference fast path for in-place concatenation. Mirrors
// core/../include/hook/string.h's hk_string_t: length-prefixed bytes, no
// implicit NUL-termination semantics exposed at this layer (the NUL
// spec.md mentions is purely a C-interop convenience and is not part of
// the observable Go value model).
type String struct {
	header
	data []byte
}

// NewString copies s into a new String with reference count 0.
func NewString(s string) *String {
	return &String{data: []byte(s)}
}

// NewStringFromBytes takes ownership of b (no copy) and wraps it.
func NewStringFromBytes(b []byte) *String {
	return &String{data: b}
}

func (s *String) Type() Type { return TypeString }

func (s *String) Release() {
	if s.releaseSelf() {
		// No owned children to release; the buffer is reclaimed by the
		// Go garbage collector once unreferenced.
	}
}

func (s *String) Print(quoted bool) string {
	if !quoted {
		return string(s.data)
	}
	return "\"" + string(s.data) + "\""
}

// Len returns the byte length.
func (s *String) Len() int { return len(s.data) }

// Bytes returns the underlying buffer. Callers must not mutate it
// except through InplaceConcat, which owns the single-reference
// contract.
func (s *String) Bytes() []byte { return s.data }

func (s *String) String() string { return string(s.data) }

// Equal compares two strings byte for byte.
func (s *String) Equal(o *String) bool { return bytes.Equal(s.data, o.data) }

// Compare returns -1, 0 or 1 using byte-lexicographic order.
func (s *String) Compare(o *String) int { return bytes.Compare(s.data, o.data) }

// Concat returns a String holding s followed by o. An empty operand is
// reused without copying (spec.md §4.2: "Concatenation of an empty
// operand is a no-op reuse"); neither input is mutated.
func Concat(s, o *String) *String {
	if len(s.data) == 0 {
		return o
	}
	if len(o.data) == 0 {
		return s
	}
	buf := make([]byte, 0, len(s.data)+len(o.data))
	buf = append(buf, s.data...)
	buf = append(buf, o.data...)
	return NewStringFromBytes(buf)
}

// InplaceConcat appends o's bytes onto s's buffer. Only safe to call
// under the single-reference fast path: s must have no other live
// reference besides the one the caller is about to overwrite.
func (s *String) InplaceConcat(o *String) {
	if len(o.data) == 0 {
		return
	}
	s.data = append(s.data, o.data...)
}

// SliceIndex implements the integer-index rule of GET_ELEMENT on a
// string: the byte at index i as a 1-character string, or false when i
// is out of bounds. The range rule is SliceRange.
func (s *String) SliceIndex(i int64) (*String, bool) {
	if i < 0 || i >= int64(len(s.data)) {
		return nil, false
	}
	return NewStringFromBytes([]byte{s.data[i]}), true
}

// SliceRange returns the substring for an inclusive [start,end] range,
// following the same boundary rules as Array.SliceRange: empty if the
// range misses the string entirely, the same string (retained once
// more) if it covers the string fully, otherwise a copied substring.
func (s *String) SliceRange(start, end int64) *String {
	length := int64(len(s.data))
	if start > end || start > length-1 || end < 0 {
		return NewString("")
	}
	if start <= 0 && end >= length-1 {
		s.Retain()
		return s
	}
	if start < 0 {
		start = 0
	}
	if end > length-1 {
		end = length - 1
	}
	buf := make([]byte, end-start+1)
	copy(buf, s.data[start:end+1])
	return NewStringFromBytes(buf)
}

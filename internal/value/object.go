package value

// Object is the capability every heap-allocated value kind implements:
// a reference count, a type tag, and a print routine for diagnostics.
// The concrete kinds are String, Range, Array, Struct, Instance, the
// Iterator interface's implementations, Closure, Native and Userdata.
type Object interface {
	Type() Type
	RefCount() int32
	Retain()
	Release()
	Print(quoted bool) string
}

// header is embedded by every heap object and carries the reference
// count spec.md requires as "the first field" of every heap object.
// Objects are born with count 0; Retain increments; release decrements
// and reports whether the count reached zero so the owner can free its
// contents.
type header struct {
	count int32
}

// RefCount returns the current reference count.
func (h *header) RefCount() int32 { return h.count }

// Retain increments the reference count.
func (h *header) Retain() { h.count++ }

// releaseSelf decrements the count and reports whether it reached zero,
// i.e. whether the caller must now free the object's owned contents.
func (h *header) releaseSelf() bool {
	h.count--
	return h.count <= 0
}

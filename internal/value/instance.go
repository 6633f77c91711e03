package value

import "strings"

// Instance pairs a Struct descriptor with a parallel value vector.
// The plain SetField returns a new instance (copy-on-write); InplaceSetField
// mutates the receiver and is only safe under the single-reference fast
// path.
type Instance struct {
	header
	strct  *Struct
	values []Value
}

// NewInstance builds an instance of strct, zero-initialized to Nil and
// then padded/overwritten by the first len(args) positional args
// (truncated or nil-padded to strct.Len(), per spec.md's INSTANCE
// opcode). strct is retained once by the new instance.
func NewInstance(strct *Struct, args []Value) *Instance {
	strct.Retain()
	values := make([]Value, strct.Len())
	for i := range values {
		values[i] = Nil
	}
	n := len(args)
	if n > len(values) {
		n = len(values)
	}
	copy(values, args[:n])
	return &Instance{strct: strct, values: values}
}

func (i *Instance) Type() Type { return TypeInstance }

func (i *Instance) Release() {
	if i.releaseSelf() {
		for _, v := range i.values {
			v.Release()
		}
		i.strct.Release()
	}
}

func (i *Instance) Print(quoted bool) string {
	_ = quoted
	var b strings.Builder
	if name, ok := i.strct.Name(); ok {
		b.WriteString(name)
		b.WriteByte(' ')
	}
	b.WriteByte('{')
	fields := i.strct.Fields()
	for idx, f := range fields {
		if idx > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f)
		b.WriteString(" = ")
		b.WriteString(Print(i.values[idx], true))
	}
	b.WriteByte('}')
	return b.String()
}

// Struct returns the instance's descriptor.
func (i *Instance) Struct() *Struct { return i.strct }

// GetField looks up a field by name, returning (value, found).
func (i *Instance) GetField(name string) (Value, bool) {
	idx := i.strct.IndexOf(name)
	if idx < 0 {
		return Nil, false
	}
	return i.values[idx], true
}

// GetFieldAt returns the field at a known index without name lookup,
// used by FETCH_FIELD's write-back path.
func (i *Instance) GetFieldAt(idx int) Value { return i.values[idx] }

// SetField returns a new instance, structurally sharing the struct
// descriptor, with the named field replaced by val. Returns (nil,
// false) if the field is undeclared.
func (i *Instance) SetField(name string, val Value) (*Instance, bool) {
	idx := i.strct.IndexOf(name)
	if idx < 0 {
		return nil, false
	}
	i.strct.Retain()
	values := make([]Value, len(i.values))
	copy(values, i.values)
	for n, v := range values {
		if n != idx {
			v.Retain()
		}
	}
	values[idx] = val
	return &Instance{strct: i.strct, values: values}, true
}

// InplaceSetField releases the field's old value and stores val,
// mutating the receiver directly.
func (i *Instance) InplaceSetField(name string, val Value) bool {
	idx := i.strct.IndexOf(name)
	if idx < 0 {
		return false
	}
	i.values[idx].Release()
	i.values[idx] = val
	return true
}

// InplaceSetFieldAt is the index-addressed counterpart used once the
// field index has already been resolved (e.g. FETCH_FIELD's
// write-back).
func (i *Instance) InplaceSetFieldAt(idx int, val Value) {
	i.values[idx].Release()
	i.values[idx] = val
}

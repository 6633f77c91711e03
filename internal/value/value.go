// Package value implements the uniform tagged value representation that
// the hookvm bytecode interpreter operates on, together with the heap
// object kinds a value may point to.
//
// Value Representation:
//
// A Value is a small fixed-size cell: a type tag, a set of derived flag
// bits, and a payload that is either an inline scalar (bool, float64) or
// a pointer to a heap Object. Scalars never allocate; every Object on
// the heap carries its own reference count as described in Object.
//
// Flags are derived once at construction time and never recomputed:
//
//	object     <=> payload is a heap pointer
//	falsey     <=> type is Nil, or type is Bool with value false
//	comparable <=> type in {Nil, Bool, Number, String, Range, Array}
//	iterable   <=> type in {Range, Array}
//	native     =>  type is Callable and the callable is a Native
//
// Reference counting:
//
// Every heap Object is born with a reference count of zero. A container
// that retains a value (the stack, an Array, an Instance, a Closure's
// captured vector) calls Retain; releasing a container calls Release,
// which decrements the count and recursively frees the object's owned
// contents once the count reaches zero. There are no cycles: instances
// point at their Struct, Arrays point at elements, Closures point at
// captured values and a Function — all graphs rooted on the value stack
// are DAGs.
package value

import "fmt"

// Type is the tag identifying what kind of value a Value holds.
type Type uint8

const (
	TypeNil Type = iota
	TypeBool
	TypeNumber
	TypeString
	TypeRange
	TypeArray
	TypeStruct
	TypeInstance
	TypeIterator
	TypeCallable
	TypeUserdata
)

func (t Type) String() string {
	switch t {
	case TypeNil:
		return "nil"
	case TypeBool:
		return "bool"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeRange:
		return "range"
	case TypeArray:
		return "array"
	case TypeStruct:
		return "struct"
	case TypeInstance:
		return "instance"
	case TypeIterator:
		return "iterator"
	case TypeCallable:
		return "callable"
	case TypeUserdata:
		return "userdata"
	default:
		return "unknown"
	}
}

// Flags is a bit set describing derived properties of a Value. See the
// package doc comment for the invariants tying each bit to Type.
type Flags uint8

const (
	FlagNone       Flags = 0
	FlagObject     Flags = 1 << 0
	FlagFalsey     Flags = 1 << 1
	FlagComparable Flags = 1 << 2
	FlagIterable   Flags = 1 << 3
	FlagNative     Flags = 1 << 4
)

// Value is the uniform tagged cell every hookvm opcode pushes, pops and
// stores. It is deliberately small and copied by value; only the obj
// field (when FlagObject is set) is a shared, reference-counted pointer.
type Value struct {
	typ   Type
	flags Flags
	b     bool
	n     float64
	obj   Object
}

// Nil is the singleton nil value.
var Nil = Value{typ: TypeNil, flags: FlagFalsey | FlagComparable}

// False and True are the two boolean values.
var False = Value{typ: TypeBool, flags: FlagFalsey | FlagComparable, b: false}
var True = Value{typ: TypeBool, flags: FlagComparable, b: true}

// Bool returns the boolean value for b.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Number wraps a float64 as a number value.
func Number(n float64) Value {
	return Value{typ: TypeNumber, flags: FlagComparable, n: n}
}

// fromObject builds a Value around a heap Object, deriving flags from
// typ per the invariants in the package doc comment.
func fromObject(typ Type, flags Flags, obj Object) Value {
	return Value{typ: typ, flags: flags | FlagObject, obj: obj}
}

// FromString wraps a *String as a value.
func FromString(s *String) Value {
	return fromObject(TypeString, FlagComparable, s)
}

// FromRange wraps a *Range as a value.
func FromRange(r *Range) Value {
	return fromObject(TypeRange, FlagComparable|FlagIterable, r)
}

// FromArray wraps an *Array as a value.
func FromArray(a *Array) Value {
	return fromObject(TypeArray, FlagComparable|FlagIterable, a)
}

// FromStruct wraps a *Struct as a value.
func FromStruct(s *Struct) Value {
	return fromObject(TypeStruct, FlagNone, s)
}

// FromInstance wraps an *Instance as a value.
func FromInstance(i *Instance) Value {
	return fromObject(TypeInstance, FlagNone, i)
}

// FromIterator wraps an Iterator as a value.
func FromIterator(it Iterator) Value {
	return fromObject(TypeIterator, FlagNone, it)
}

// FromClosure wraps a *Closure as a value.
func FromClosure(c *Closure) Value {
	return fromObject(TypeCallable, FlagNone, c)
}

// FromNative wraps a *Native as a value.
func FromNative(n *Native) Value {
	return fromObject(TypeCallable, FlagNative, n)
}

// FromUserdata wraps a *Userdata as a value.
func FromUserdata(u *Userdata) Value {
	return fromObject(TypeUserdata, FlagNone, u)
}

// Type returns the value's type tag.
func (v Value) Type() Type { return v.typ }

// IsObject reports whether the value's payload is a heap pointer.
func (v Value) IsObject() bool { return v.flags&FlagObject != 0 }

// IsFalsey reports whether the value is nil or boolean false.
func (v Value) IsFalsey() bool { return v.flags&FlagFalsey != 0 }

// IsTruthy is the complement of IsFalsey.
func (v Value) IsTruthy() bool { return !v.IsFalsey() }

// IsComparable reports whether the value belongs to the comparable set.
func (v Value) IsComparable() bool { return v.flags&FlagComparable != 0 }

// IsIterable reports whether the value may be turned into an iterator.
func (v Value) IsIterable() bool { return v.flags&FlagIterable != 0 }

// IsNative reports whether the value is a native callable.
func (v Value) IsNative() bool { return v.flags&FlagNative != 0 }

// IsInt reports whether the value is a number equal to its own
// truncation to int64 (spec.md's definition of "integer").
func (v Value) IsInt() bool {
	return v.typ == TypeNumber && v.n == float64(int64(v.n))
}

// AsBool returns the boolean payload. Caller must check Type() == TypeBool.
func (v Value) AsBool() bool { return v.b }

// AsNumber returns the float64 payload. Caller must check Type() == TypeNumber.
func (v Value) AsNumber() float64 { return v.n }

// AsInt truncates the number payload to int64.
func (v Value) AsInt() int64 { return int64(v.n) }

// Object returns the heap object payload, or nil for scalar values.
func (v Value) Object() Object { return v.obj }

// AsString type-asserts the payload to *String.
func (v Value) AsString() *String { return v.obj.(*String) }

// AsRange type-asserts the payload to *Range.
func (v Value) AsRange() *Range { return v.obj.(*Range) }

// AsArray type-asserts the payload to *Array.
func (v Value) AsArray() *Array { return v.obj.(*Array) }

// AsStruct type-asserts the payload to *Struct.
func (v Value) AsStruct() *Struct { return v.obj.(*Struct) }

// AsInstance type-asserts the payload to *Instance.
func (v Value) AsInstance() *Instance { return v.obj.(*Instance) }

// AsIterator type-asserts the payload to Iterator.
func (v Value) AsIterator() Iterator { return v.obj.(Iterator) }

// AsClosure type-asserts the payload to *Closure. Panics if the callable
// is native; callers should check IsNative first.
func (v Value) AsClosure() *Closure { return v.obj.(*Closure) }

// AsNative type-asserts the payload to *Native.
func (v Value) AsNative() *Native { return v.obj.(*Native) }

// AsUserdata type-asserts the payload to *Userdata.
func (v Value) AsUserdata() *Userdata { return v.obj.(*Userdata) }

// TypeName returns the type name as printed by runtime error messages.
func (v Value) TypeName() string { return v.typ.String() }

// Retain increments the heap object's reference count. A no-op on
// scalar values.
func (v Value) Retain() {
	if v.obj != nil {
		v.obj.Retain()
	}
}

// Release decrements the heap object's reference count, recursively
// releasing owned contents once it reaches zero. A no-op on scalars.
func (v Value) Release() {
	if v.obj != nil {
		v.obj.Release()
	}
}

// RefCount returns the object's reference count, or 0 for scalars.
func (v Value) RefCount() int32 {
	if v.obj == nil {
		return 0
	}
	return v.obj.RefCount()
}

// GoString supports %#v and is handy under a debugger.
func (v Value) GoString() string {
	return fmt.Sprintf("Value{%s %s}", v.typ, Print(v, true))
}

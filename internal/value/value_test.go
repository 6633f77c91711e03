package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilBoolNumberFlags(t *testing.T) {
	assert.True(t, Nil.IsFalsey())
	assert.True(t, Nil.IsComparable())
	assert.False(t, Nil.IsObject())

	assert.True(t, False.IsFalsey())
	assert.False(t, True.IsFalsey())
	assert.True(t, Bool(true).AsBool())
	assert.False(t, Bool(false).AsBool())

	n := Number(3.5)
	assert.Equal(t, TypeNumber, n.Type())
	assert.Equal(t, 3.5, n.AsNumber())
	assert.True(t, n.IsComparable())
	assert.False(t, n.IsFalsey())
}

func TestIsInt(t *testing.T) {
	assert.True(t, Number(4).IsInt())
	assert.False(t, Number(4.5).IsInt())
}

func TestFromStringRetainRelease(t *testing.T) {
	s := NewString("hi")
	v := FromString(s)
	assert.Equal(t, TypeString, v.Type())
	assert.True(t, v.IsObject())
	assert.True(t, v.IsComparable())
	assert.Equal(t, int32(0), v.RefCount())
	v.Retain()
	assert.Equal(t, int32(1), v.RefCount())
	v.Release()
	assert.Equal(t, int32(0), v.RefCount())
}

func TestFromRangeArrayFlags(t *testing.T) {
	r := FromRange(NewRange(0, 3))
	assert.True(t, r.IsIterable())
	assert.True(t, r.IsComparable())

	a := FromArray(NewArray(nil))
	assert.True(t, a.IsIterable())
	assert.True(t, a.IsComparable())
}

func TestFromStructInstanceNotComparable(t *testing.T) {
	st := NewStruct("Point", true)
	st.DefineField("x")
	sv := FromStruct(st)
	assert.False(t, sv.IsComparable())
	assert.False(t, sv.IsIterable())

	inst := NewInstance(st, []Value{Number(1)})
	iv := FromInstance(inst)
	assert.False(t, iv.IsComparable())
}

func TestFromNativeIsNativeFlag(t *testing.T) {
	n := NewNative("f", 0, func(h Host, args []Value) (Value, Status, error) {
		return Nil, StatusOK, nil
	})
	v := FromNative(n)
	assert.Equal(t, TypeCallable, v.Type())
	assert.True(t, v.IsNative())

	cl := NewClosure(nil, nil)
	cv := FromClosure(cl)
	assert.Equal(t, TypeCallable, cv.Type())
	assert.False(t, cv.IsNative())
}

func TestTypeNameAndGoString(t *testing.T) {
	assert.Equal(t, "nil", Nil.TypeName())
	assert.Equal(t, "number", Number(1).TypeName())
	s := FromString(NewString("x"))
	assert.Contains(t, s.GoString(), "string")
	assert.Contains(t, s.GoString(), `"x"`)
}

func TestAsAccessorsRoundTrip(t *testing.T) {
	arr := FromArray(NewArray([]Value{Number(1), Number(2)}))
	require.Equal(t, 2, arr.AsArray().Len())

	ud := FromUserdata(NewUserdata("tag", 42, nil))
	require.Equal(t, 42, ud.AsUserdata().Ptr())
}

package value

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, v Value) Value {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Serialize(&buf, v))
	out, err := Deserialize(&buf)
	require.NoError(t, err)
	return out
}

func TestSerializeScalars(t *testing.T) {
	assert.Equal(t, TypeNil, roundTrip(t, Nil).Type())
	assert.True(t, roundTrip(t, True).AsBool())
	assert.Equal(t, 3.5, roundTrip(t, Number(3.5)).AsNumber())
}

func TestSerializeString(t *testing.T) {
	out := roundTrip(t, FromString(NewString("hello")))
	assert.Equal(t, "hello", out.AsString().String())
}

func TestSerializeRange(t *testing.T) {
	out := roundTrip(t, FromRange(NewRange(1, 9)))
	r := out.AsRange()
	assert.Equal(t, int64(1), r.Start())
	assert.Equal(t, int64(9), r.End())
}

func TestSerializeArray(t *testing.T) {
	a := FromArray(NewArray([]Value{Number(1), FromString(NewString("a")), Bool(true)}))
	out := roundTrip(t, a)
	require.Equal(t, TypeArray, out.Type())
	arr := out.AsArray()
	require.Equal(t, 3, arr.Len())
	assert.Equal(t, 1.0, arr.Get(0).AsNumber())
	assert.Equal(t, "a", arr.Get(1).AsString().String())
	assert.True(t, arr.Get(2).AsBool())
}

func TestSerializeStructAndInstance(t *testing.T) {
	st := NewStruct("Point", true)
	st.DefineField("x")
	st.DefineField("y")

	out := roundTrip(t, FromStruct(st))
	require.Equal(t, TypeStruct, out.Type())
	name, ok := out.AsStruct().Name()
	assert.True(t, ok)
	assert.Equal(t, "Point", name)
	assert.Equal(t, []string{"x", "y"}, out.AsStruct().Fields())

	inst := NewInstance(st, []Value{Number(1), Number(2)})
	outInst := roundTrip(t, FromInstance(inst))
	require.Equal(t, TypeInstance, outInst.Type())
	v, ok := outInst.AsInstance().GetField("y")
	require.True(t, ok)
	assert.Equal(t, 2.0, v.AsNumber())
}

func TestDeserializeUnknownTag(t *testing.T) {
	_, err := Deserialize(bytes.NewReader([]byte{0xFF}))
	assert.Error(t, err)
}

func TestSerializeUnserializableKind(t *testing.T) {
	n := FromNative(NewNative("f", 0, func(h Host, args []Value) (Value, Status, error) {
		return Nil, StatusOK, nil
	}))
	var buf bytes.Buffer
	err := Serialize(&buf, n)
	assert.Error(t, err)
}

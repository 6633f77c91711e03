package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/hookvm/internal/chunk"
	"github.com/kristofer/hookvm/internal/value"
)

// run compiles a tiny hand-built chunk (no compiler front end involved)
// into a top-level closure and invokes it, the same path cmd/hookvm's
// main uses for a compiled program.
func run(t *testing.T, s *State, build func(c *chunk.Chunk)) (value.Value, error) {
	t.Helper()
	c := chunk.New()
	build(c)
	fn := &chunk.Function{FnChunk: c, FuncName: "", FileName: "t.hk"}
	cl := value.FromClosure(value.NewClosure(fn, nil))
	return s.CallValue(cl, nil)
}

func TestStateNewRoundsCapacity(t *testing.T) {
	s := New(10, nil, nil)
	assert.Equal(t, minStackCapacity, s.StackCapacity())

	s = New(300, nil, nil)
	assert.Equal(t, 512, s.StackCapacity())
}

func TestReturnNilAndReturn(t *testing.T) {
	s := New(0, nil, nil)
	v, err := run(t, s, func(c *chunk.Chunk) {
		c.EmitOpcode(chunk.OpReturnNil)
	})
	require.NoError(t, err)
	assert.Equal(t, value.TypeNil, v.Type())

	v, err = run(t, s, func(c *chunk.Chunk) {
		c.EmitOpcode(chunk.OpTrue)
		c.EmitOpcode(chunk.OpReturn)
	})
	require.NoError(t, err)
	assert.True(t, v.AsBool())
}

func TestArithmeticAddInts(t *testing.T) {
	s := New(0, nil, nil)
	v, err := run(t, s, func(c *chunk.Chunk) {
		c.EmitOpcode(chunk.OpInt)
		c.EmitWord(2)
		c.EmitOpcode(chunk.OpInt)
		c.EmitWord(3)
		c.EmitOpcode(chunk.OpAdd)
		c.EmitOpcode(chunk.OpReturn)
	})
	require.NoError(t, err)
	assert.Equal(t, 5.0, v.AsNumber())
}

func TestDivideByZeroIsInf(t *testing.T) {
	s := New(0, nil, nil)
	v, err := run(t, s, func(c *chunk.Chunk) {
		c.EmitOpcode(chunk.OpInt)
		c.EmitWord(1)
		c.EmitOpcode(chunk.OpInt)
		c.EmitWord(0)
		c.EmitOpcode(chunk.OpDivide)
		c.EmitOpcode(chunk.OpReturn)
	})
	require.NoError(t, err)
	assert.True(t, v.AsNumber() > 0)
}

func TestAddTypeMismatchErrors(t *testing.T) {
	s := New(0, nil, nil)
	idx := byte(0)
	_, err := run(t, s, func(c *chunk.Chunk) {
		idx = c.AddConstant(value.FromString(value.NewString("x")))
		c.EmitOpcode(chunk.OpConstant)
		c.EmitByte(idx)
		c.EmitOpcode(chunk.OpInt)
		c.EmitWord(1)
		c.EmitOpcode(chunk.OpAdd)
		c.EmitOpcode(chunk.OpReturn)
	})
	require.Error(t, err)
	rt, ok := err.(*value.RuntimeError)
	require.True(t, ok)
	assert.Equal(t, value.ErrType, rt.Kind)
}

func TestDefineGlobalAndResolveViaGlobalOp(t *testing.T) {
	s := New(0, nil, nil)
	idx, err := s.DefineGlobal("answer", value.Number(42))
	require.NoError(t, err)

	v, err := run(t, s, func(c *chunk.Chunk) {
		c.EmitOpcode(chunk.OpGlobal)
		c.EmitByte(byte(idx))
		c.EmitOpcode(chunk.OpReturn)
	})
	require.NoError(t, err)
	assert.Equal(t, 42.0, v.AsNumber())
}

func TestDefineGlobalRedefinitionReusesSlot(t *testing.T) {
	s := New(0, nil, nil)
	idx1, err := s.DefineGlobal("g", value.Number(1))
	require.NoError(t, err)
	idx2, err := s.DefineGlobal("g", value.Number(2))
	require.NoError(t, err)
	assert.Equal(t, idx1, idx2)

	slot, ok := s.GlobalSlot("g")
	require.True(t, ok)
	assert.Equal(t, idx1, slot)
}

func TestCallNativeArityPadding(t *testing.T) {
	s := New(0, nil, nil)
	seen := -1.0
	native := value.FromNative(value.NewNative("f", 2, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
		seen = args[1].AsNumber()
		if args[1].Type() == value.TypeNil {
			seen = -999
		}
		return value.Nil, value.StatusOK, nil
	}))
	_, err := s.CallValue(native, []value.Value{value.Number(1)})
	require.NoError(t, err)
	assert.Equal(t, -999.0, seen)
	assert.Equal(t, int64(1), s.CallStats.PaddedCalls)
}

func TestCallValueErrorPropagates(t *testing.T) {
	s := New(0, nil, nil)
	native := value.FromNative(value.NewNative("f", 0, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
		return value.Nil, value.StatusError, value.Errf(value.ErrRange, "boom")
	}))
	_, err := s.CallValue(native, nil)
	require.Error(t, err)
	rt, ok := err.(*value.RuntimeError)
	require.True(t, ok)
	assert.Equal(t, value.ErrRange, rt.Kind)
}

func TestCallingNonCallableErrors(t *testing.T) {
	s := New(0, nil, nil)
	_, err := s.CallValue(value.Number(5), nil)
	require.Error(t, err)
}

func TestStackOverflowReturnsError(t *testing.T) {
	s := New(0, nil, nil)
	_, err := run(t, s, func(c *chunk.Chunk) {
		for i := 0; i < minStackCapacity+10; i++ {
			c.EmitOpcode(chunk.OpNil)
		}
		c.EmitOpcode(chunk.OpReturnNil)
	})
	require.Error(t, err)
	rt, ok := err.(*value.RuntimeError)
	require.True(t, ok)
	assert.Equal(t, value.ErrStackOverflow, rt.Kind)
}

func TestModuleResolverCachesResult(t *testing.T) {
	calls := 0
	resolver := MapResolver{
		"m": func() (value.Value, error) {
			calls++
			return value.FromString(value.NewString("loaded")), nil
		},
	}
	s := New(0, resolver, nil)

	get := func() value.Value {
		v, err := run(t, s, func(c *chunk.Chunk) {
			idx := c.AddConstant(value.FromString(value.NewString("m")))
			c.EmitOpcode(chunk.OpConstant)
			c.EmitByte(idx)
			c.EmitOpcode(chunk.OpLoadModule)
			c.EmitOpcode(chunk.OpReturn)
		})
		require.NoError(t, err)
		return v
	}

	v1 := get()
	v2 := get()
	assert.Equal(t, "loaded", v1.AsString().String())
	assert.Equal(t, "loaded", v2.AsString().String())
	assert.Equal(t, 1, calls)
}

func TestModuleNotFound(t *testing.T) {
	s := New(0, MapResolver{}, nil)
	_, err := run(t, s, func(c *chunk.Chunk) {
		idx := c.AddConstant(value.FromString(value.NewString("missing")))
		c.EmitOpcode(chunk.OpConstant)
		c.EmitByte(idx)
		c.EmitOpcode(chunk.OpLoadModule)
		c.EmitOpcode(chunk.OpReturn)
	})
	assert.Error(t, err)
}

func TestTeardownReleasesGlobals(t *testing.T) {
	s := New(0, nil, nil)
	str := value.FromString(value.NewString("x"))
	str.Retain()
	_, err := s.DefineGlobal("g", str)
	require.NoError(t, err)
	s.Teardown()
	assert.Equal(t, 0, s.StackTop())
}

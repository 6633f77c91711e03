package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHost struct{}

func (stubHost) CallValue(callee Value, args []Value) (Value, error) { return Nil, nil }

func TestNativeCall(t *testing.T) {
	n := NewNative("double", 1, func(h Host, args []Value) (Value, Status, error) {
		return Number(args[0].AsNumber() * 2), StatusOK, nil
	})
	assert.Equal(t, "double", n.Name())
	assert.Equal(t, 1, n.Arity())

	v, status, err := n.Call(stubHost{}, []Value{Number(21)})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, 42.0, v.AsNumber())
	assert.Equal(t, "<native double>", n.Print(false))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "error", StatusError.String())
	assert.Equal(t, "suspend", StatusSuspend.String())
	assert.Equal(t, "no-trace", StatusNoTrace.String())
}

func TestUserdataDeinitCalledOnce(t *testing.T) {
	calls := 0
	u := NewUserdata("test.tag", 7, func(ptr any) {
		calls++
		assert.Equal(t, 7, ptr)
	})
	assert.Equal(t, "test.tag", u.Tag())
	assert.Equal(t, 7, u.Ptr())
	assert.NotEqual(t, "", u.ID().String())

	u.Retain()
	u.Retain()
	u.Release()
	assert.Equal(t, 0, calls)
	u.Release()
	assert.Equal(t, 1, calls)
}

type fakeFn struct{ name string }

func (f fakeFn) Name() string   { return f.name }
func (f fakeFn) File() string   { return "f.hk" }
func (f fakeFn) Arity() int     { return 0 }
func (f fakeFn) Nonlocals() int { return 1 }

func TestClosureCapturedAccess(t *testing.T) {
	cl := NewClosure(fakeFn{name: "fn"}, []Value{Number(5)})
	assert.Equal(t, "fn", cl.Function().Name())
	assert.Equal(t, 5.0, cl.Nonlocal(0).AsNumber())
	assert.Equal(t, "<function fn>", cl.Print(false))
}

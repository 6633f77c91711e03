package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/hookvm/internal/value"
)

// nopHost satisfies value.Host for natives under test that never call
// back into a script closure.
type nopHost struct{}

func (nopHost) CallValue(callee value.Value, args []value.Value) (value.Value, error) {
	return value.Nil, nil
}

// call locates a namespace field by name and invokes it, the way
// opGetField + OpCall would from compiled script code.
func call(t *testing.T, mod value.Value, name string, args ...value.Value) (value.Value, value.Status, error) {
	t.Helper()
	require.Equal(t, value.TypeInstance, mod.Type())
	inst := mod.AsInstance()
	fv, ok := inst.GetField(name)
	require.True(t, ok, "module has no field %q", name)
	require.Equal(t, value.TypeCallable, fv.Type())
	require.True(t, fv.IsNative())
	return fv.AsNative().Call(nopHost{}, args)
}

func TestRegistryCoversAllModules(t *testing.T) {
	r := Resolver()
	for _, name := range []string{"numbers", "utf8", "regexp", "encoding", "ecc", "threading", "redis", "mongodb", "rocksdb"} {
		v, err := r.Resolve(name)
		require.NoError(t, err, name)
		assert.Equal(t, value.TypeInstance, v.Type(), name)
	}
}

func TestNumbersModule(t *testing.T) {
	mod := numbersModule()
	v, status, err := call(t, mod, "abs", value.Number(-4))
	require.NoError(t, err)
	assert.Equal(t, value.StatusOK, status)
	assert.Equal(t, 4.0, v.AsNumber())

	v, _, err = call(t, mod, "sqrt", value.Number(9))
	require.NoError(t, err)
	assert.Equal(t, 3.0, v.AsNumber())

	_, _, err = call(t, mod, "sqrt", value.Number(-1))
	assert.Error(t, err)

	inst := mod.AsInstance()
	pi, ok := inst.GetField("PI")
	require.True(t, ok)
	assert.InDelta(t, 3.14159, pi.AsNumber(), 0.001)
}

func TestUtf8Module(t *testing.T) {
	mod := utf8Module()
	v, _, err := call(t, mod, "len", str("héllo"))
	require.NoError(t, err)
	assert.Equal(t, 5.0, v.AsNumber())

	v, _, err = call(t, mod, "sub", str("héllo"), value.Number(1), value.Number(2))
	require.NoError(t, err)
	assert.Equal(t, "él", v.AsString().String())

	_, _, err = call(t, mod, "sub", str("hi"), value.Number(0), value.Number(5))
	assert.Error(t, err)
}

func TestRegexpModule(t *testing.T) {
	mod := regexpModule()
	re, status, err := call(t, mod, "new", str(`\d+`))
	require.NoError(t, err)
	assert.Equal(t, value.StatusOK, status)

	v, _, err := call(t, mod, "is_match", re, str("abc123"))
	require.NoError(t, err)
	assert.True(t, v.AsBool())

	v, _, err = call(t, mod, "find", re, str("abc123def"))
	require.NoError(t, err)
	assert.Equal(t, "123", v.AsString().String())

	_, _, err = call(t, mod, "new", str(`(`))
	assert.Error(t, err)
}

func TestEncodingModule(t *testing.T) {
	mod := encodingModule()
	enc, _, err := call(t, mod, "base64_encode", str("hello"))
	require.NoError(t, err)
	dec, _, err := call(t, mod, "base64_decode", enc)
	require.NoError(t, err)
	assert.Equal(t, "hello", dec.AsString().String())

	hexEnc, _, err := call(t, mod, "hex_encode", str("hi"))
	require.NoError(t, err)
	assert.Equal(t, "6869", hexEnc.AsString().String())

	arr := value.FromArray(value.NewArray([]value.Value{value.Number(1), str("a"), value.Bool(true)}))
	js, _, err := call(t, mod, "json_encode", arr)
	require.NoError(t, err)
	assert.Equal(t, `[1,"a",true]`, js.AsString().String())

	back, _, err := call(t, mod, "json_decode", js)
	require.NoError(t, err)
	assert.Equal(t, value.TypeArray, back.Type())
	assert.Equal(t, 3, back.AsArray().Len())

	key := str("0123456789abcdef0123456789abcdef")
	sealed, _, err := call(t, mod, "seal", key, str("secret"))
	require.NoError(t, err)
	opened, _, err := call(t, mod, "open", key, sealed)
	require.NoError(t, err)
	assert.Equal(t, "secret", opened.AsString().String())
}

func TestEccModule(t *testing.T) {
	mod := eccModule()
	kp, status, err := call(t, mod, "generate_keypair")
	require.NoError(t, err)
	assert.Equal(t, value.StatusOK, status)

	pub, _, err := call(t, mod, "public_key", kp)
	require.NoError(t, err)

	sig, _, err := call(t, mod, "sign", kp, str("message"))
	require.NoError(t, err)

	ok, _, err := call(t, mod, "verify", pub, str("message"), sig)
	require.NoError(t, err)
	assert.True(t, ok.AsBool())

	bad, _, err := call(t, mod, "verify", pub, str("tampered"), sig)
	require.NoError(t, err)
	assert.False(t, bad.AsBool())
}

func TestRedisReplyToValue(t *testing.T) {
	assert.Equal(t, value.Nil, redisReplyToValue(nil))
	assert.Equal(t, 5.0, redisReplyToValue(int64(5)).AsNumber())
	assert.Equal(t, "ok", redisReplyToValue("ok").AsString().String())
	arr := redisReplyToValue([]any{int64(1), "two"})
	require.Equal(t, value.TypeArray, arr.Type())
	assert.Equal(t, 2, arr.AsArray().Len())
}

func TestThreadModule(t *testing.T) {
	mod := threadModule()
	m, _, err := call(t, mod, "new_mutex")
	require.NoError(t, err)
	_, _, err = call(t, mod, "lock", m)
	require.NoError(t, err)
	_, _, err = call(t, mod, "unlock", m)
	require.NoError(t, err)

	native := value.FromNative(value.NewNative("noop", 0, func(h value.Host, args []value.Value) (value.Value, value.Status, error) {
		return value.Nil, value.StatusOK, nil
	}))
	th, _, err := call(t, mod, "new_thread", native)
	require.NoError(t, err)
	_, _, err = call(t, mod, "join", th)
	require.NoError(t, err)
}

func TestMongodbAndRocksdbStubs(t *testing.T) {
	_, _, err := call(t, mongodbModule(), "new_client", str("mongodb://x"))
	assert.Error(t, err)

	v, status, err := call(t, rocksdbModule(), "dummy")
	require.NoError(t, err)
	assert.Equal(t, value.StatusOK, status)
	assert.Equal(t, value.Nil, v)
}

// Package modules implements the stdlib collaborators spec.md §4.6
// treats as external to the execution core: each one builds a
// namespace object (an anonymous struct/instance pair, the same shape
// original_source/src/state.c's push_new_native + construct idiom
// produces) whose fields are value.Native callables, and registers a
// loader under vm.MapResolver keyed by the import name scripts use
// (`import "numbers"`).
//
// Every module here owns its Go-side dependency directly (net/http
// clients excepted — go-redis, crypto/ecdsa, golang.org/x/crypto/hkdf,
// x/sync/singleflight) and never reaches back into the vm package
// except through value.Host, so a module can be unit-tested without a
// running State.
package modules

import "github.com/kristofer/hookvm/internal/value"

// entry is one exported binding in a module namespace.
type entry struct {
	name string
	val  value.Value
}

// fn declares a native-callable export.
func fn(name string, arity int, f value.NativeFunc) entry {
	return entry{name: name, val: value.FromNative(value.NewNative(name, arity, f))}
}

// constant declares a plain-value export (a number or string constant).
func constant(name string, v value.Value) entry {
	return entry{name: name, val: v}
}

// namespace builds the Struct+Instance pair a module resolver returns:
// an unnamed struct declaring one field per entry, instantiated with
// the entries' values in declaration order. The result carries
// reference count zero, the general value.header "born at zero"
// convention — unlike opStruct/opInstance, which self-retain their
// result to 1 before pushing it onto the VM's own stack slot, this
// value has no stack slot yet, so it is left for its caller to own:
// internal/vm's LOAD_MODULE dispatch retains the value it gets back
// from ModuleResolver.Resolve before caching and pushing it.
func namespace(entries []entry) value.Value {
	strct := value.NewStruct("", false)
	vals := make([]value.Value, len(entries))
	for i, e := range entries {
		strct.DefineField(e.name)
		e.val.Retain()
		vals[i] = e.val
	}
	inst := value.NewInstance(strct, vals)
	return value.FromInstance(inst)
}

// argError reports a wrong-typed argument the way ops_access.go's
// GET_ELEMENT/GET_FIELD family does: the module name, the 0-based
// argument position, and the type actually received.
func argError(module string, i int, want string, got value.Value) error {
	return value.Errf(value.ErrType, "%s: argument %d must be %s, got %s", module, i, want, got.TypeName())
}

func arityError(module string, want, got int) error {
	return value.Errf(value.ErrArity, "%s: expected %d argument(s), got %d", module, want, got)
}

func stringArg(module string, args []value.Value, i int) (string, error) {
	if i >= len(args) {
		return "", arityError(module, i+1, len(args))
	}
	if args[i].Type() != value.TypeString {
		return "", argError(module, i, "a string", args[i])
	}
	return args[i].AsString().String(), nil
}

func numberArg(module string, args []value.Value, i int) (float64, error) {
	if i >= len(args) {
		return 0, arityError(module, i+1, len(args))
	}
	if args[i].Type() != value.TypeNumber {
		return 0, argError(module, i, "a number", args[i])
	}
	return args[i].AsNumber(), nil
}

func intArg(module string, args []value.Value, i int) (int64, error) {
	n, err := numberArg(module, args, i)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

func arrayArg(module string, args []value.Value, i int) (*value.Array, error) {
	if i >= len(args) {
		return nil, arityError(module, i+1, len(args))
	}
	if args[i].Type() != value.TypeArray {
		return nil, argError(module, i, "an array", args[i])
	}
	return args[i].AsArray(), nil
}

func callableArg(module string, args []value.Value, i int) (value.Value, error) {
	if i >= len(args) {
		return value.Nil, arityError(module, i+1, len(args))
	}
	if args[i].Type() != value.TypeCallable {
		return value.Nil, argError(module, i, "a callable", args[i])
	}
	return args[i], nil
}

func str(s string) value.Value { return value.FromString(value.NewString(s)) }

func bytesVal(b []byte) value.Value { return value.FromString(value.NewStringFromBytes(b)) }

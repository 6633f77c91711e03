package vm

import "github.com/kristofer/hookvm/internal/value"

// ModuleResolver is the injected capability LOAD_MODULE delegates to
// (spec.md §4.6, §9 "Abstract as an injected ModuleResolver
// capability"). Implementations typically register native callables
// via push_new_native/construct and return an Instance value; the
// State never talks to a concrete module implementation directly.
type ModuleResolver interface {
	// Resolve loads the named module, or reports an error (e.g.
	// ErrModuleNotFound) if name is unknown to this resolver.
	Resolve(name string) (value.Value, error)
}

// ErrModuleNotFound is returned by a ModuleResolver (or surfaced by
// State.LoadModule) when name has no registered loader. Modules whose
// contract is acknowledged by spec.md but not backed by a real driver
// in this build (mongodb) still resolve successfully to a namespace
// object — each native in it fails with a descriptive error only when
// called, the same way a real driver's own connection failure would
// surface — rather than returning this sentinel at import time; see
// modules/mongodb.go.
var ErrModuleNotFound = value.Errf(value.ErrType, "module not found")

// ModuleResolverFunc adapts a plain function to ModuleResolver.
type ModuleResolverFunc func(name string) (value.Value, error)

func (f ModuleResolverFunc) Resolve(name string) (value.Value, error) { return f(name) }

// ChainResolver tries each resolver in order, returning the first
// success. Used to compose the builtin module set with host-supplied
// extensions without either side needing to know about the other.
type ChainResolver []ModuleResolver

func (c ChainResolver) Resolve(name string) (value.Value, error) {
	for _, r := range c {
		v, err := r.Resolve(name)
		if err == nil {
			return v, nil
		}
	}
	return value.Nil, ErrModuleNotFound
}

// MapResolver is the simplest ModuleResolver: a fixed table of
// pre-built module values, keyed by name. Most of modules/ registers
// itself into one of these at process start.
type MapResolver map[string]func() (value.Value, error)

func (m MapResolver) Resolve(name string) (value.Value, error) {
	loader, ok := m[name]
	if !ok {
		return value.Nil, ErrModuleNotFound
	}
	return loader()
}

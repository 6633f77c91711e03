// Package vm implements the embedder-facing State and the opcode
// dispatch loop that interprets a compiled chunk.Chunk against it.
//
// Grounded on the teacher's pkg/vm (VM struct, New/Run shape,
// RuntimeError/StackFrame trace printing) generalized from smog's
// message-send machine to hookvm's stack-based, refcounted value
// model, with exact opcode/operand semantics taken from spec.md §4.4
// and original_source/src/state.c.
package vm

import (
	"math"

	"go.uber.org/zap"

	"github.com/kristofer/hookvm/internal/value"
)

const minStackCapacity = 256

// CallStats counts arity-adjustment events; diagnostic only, never
// observable from script semantics (SPEC_FULL.md §3). PaddedCalls
// counts each Nil pushed to pad a CALL or INSTANCE argument list.
// TruncatedCalls counts each extra argument INSTANCE drops; CALL never
// truncates (its extra arguments stay on the stack until the frame
// ends), so it does not add to TruncatedCalls.
type CallStats struct {
	PaddedCalls    int64
	TruncatedCalls int64
}

// State is a single VM instance: a value stack with a fixed
// power-of-two capacity, the global slot table, the module cache, and
// an injected ModuleResolver. One State must never be entered
// concurrently from multiple goroutines (spec.md §5).
type State struct {
	stack []value.Value
	top   int // index of the next free slot

	globalNames map[string]int // name -> absolute stack slot
	globalsTop  int            // number of globals currently defined

	modules  map[string]value.Value
	resolver ModuleResolver

	frames []*frame // active call frames, for trace printing

	log       *zap.Logger
	CallStats CallStats
}

// New allocates a State with a stack capacity at least min, rounded up
// to a power of two not less than minStackCapacity (spec.md §4.5).
func New(min int, resolver ModuleResolver, log *zap.Logger) *State {
	cap := minStackCapacity
	for cap < min {
		cap *= 2
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &State{
		stack:       make([]value.Value, cap),
		globalNames: make(map[string]int),
		modules:     make(map[string]value.Value),
		resolver:    resolver,
		log:         log.Named("vm"),
	}
}

// StackCapacity returns the fixed stack capacity chosen at Init.
func (s *State) StackCapacity() int { return len(s.stack) }

// StackTop returns the current stack top index.
func (s *State) StackTop() int { return s.top }

// push appends val to the stack, returning a StackOverflow
// RuntimeError (and leaving the stack unchanged) if it would exceed
// capacity.
func (s *State) push(val value.Value) error {
	if s.top >= len(s.stack) {
		return value.Errf(value.ErrStackOverflow, "stack overflow: capacity %d exceeded", len(s.stack))
	}
	s.stack[s.top] = val
	s.top++
	return nil
}

// pop removes and returns the top value. Ownership passes to the
// caller; pop itself never releases.
func (s *State) pop() value.Value {
	s.top--
	v := s.stack[s.top]
	s.stack[s.top] = value.Nil
	return v
}

// peek returns the value `distance` slots below the top without
// popping (0 = top).
func (s *State) peek(distance int) value.Value {
	return s.stack[s.top-1-distance]
}

// Push* is the public, typed push surface for embedders (spec.md
// §4.5). Each restores the stack top on overflow.
func (s *State) PushNil() error              { return s.push(value.Nil) }
func (s *State) PushBool(b bool) error        { return s.push(value.Bool(b)) }
func (s *State) PushNumber(n float64) error   { return s.push(value.Number(n)) }
func (s *State) PushString(str string) error  { return s.push(value.FromString(value.NewString(str))) }
func (s *State) PushValue(v value.Value) error {
	v.Retain()
	return s.push(v)
}

// PushNewNative pushes a fresh native callable, for use by module
// loaders building an instance via push_new_native + construct
// (spec.md §4.6).
func (s *State) PushNewNative(name string, arity int, fn value.NativeFunc) error {
	n := value.FromNative(value.NewNative(name, arity, fn))
	n.Retain()
	return s.push(n)
}

// Pop discards the top value, releasing its reference.
func (s *State) Pop() {
	v := s.pop()
	v.Release()
}

// Compare exposes value.Compare to embedders.
func (s *State) Compare(a, b value.Value) (int, error) { return value.Compare(a, b) }

// DefineGlobal installs val (retained) into a fresh global slot named
// name, usable from GLOBAL(byte) once compiled code references it by
// that slot index. Must be called before any frame pushes locals above
// the globals segment.
func (s *State) DefineGlobal(name string, val value.Value) (int, error) {
	if idx, ok := s.globalNames[name]; ok {
		old := s.stack[idx]
		old.Release()
		val.Retain()
		s.stack[idx] = val
		return idx, nil
	}
	idx := s.globalsTop
	if err := s.push(val); err != nil {
		return 0, err
	}
	val.Retain()
	s.globalNames[name] = idx
	s.globalsTop++
	return idx, nil
}

// GlobalSlot returns the absolute stack slot for a global name, used
// by the compiler to resolve GLOBAL(byte) operands at compile time.
func (s *State) GlobalSlot(name string) (int, bool) {
	idx, ok := s.globalNames[name]
	return idx, ok
}

// Teardown releases every global slot and resets the stack to empty.
// It does not check the stack top against the global count first (a
// State may be reused across many Run calls). Mirrors
// spec.md §4.5's teardown contract for a State that is being
// permanently discarded.
func (s *State) Teardown() {
	for i := 0; i < s.globalsTop; i++ {
		s.stack[i].Release()
	}
	s.top = 0
	s.globalsTop = 0
}

// CallValue implements value.Host for natives that need to call back
// into a script-level callable (e.g. the thread module).
func (s *State) CallValue(callee value.Value, args []value.Value) (value.Value, error) {
	callee.Retain()
	if err := s.push(callee); err != nil {
		callee.Release()
		return value.Nil, err
	}
	for _, a := range args {
		a.Retain()
		if err := s.push(a); err != nil {
			return value.Nil, err
		}
	}
	if err := s.Call(len(args)); err != nil {
		return value.Nil, err
	}
	return s.pop(), nil
}

// isNaN is a tiny helper kept here (rather than importing math all
// over vm/) for the few opcodes that special-case it directly.
func isNaN(n float64) bool { return math.IsNaN(n) }

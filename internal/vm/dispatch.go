package vm

import (
	"encoding/binary"

	"github.com/kristofer/hookvm/internal/chunk"
	"github.com/kristofer/hookvm/internal/value"
)

// traceErr carries a RuntimeError together with the trace accumulated
// as it unwinds through nested calls. Each level of doCall appends
// exactly one traceFrame for the callee it was trying to invoke,
// mirroring original_source/src/state.c's do_call/print_trace pairing
// (spec.md §7: one line per surviving frame, innermost first).
type traceErr struct {
	rt    *value.RuntimeError
	trace []traceFrame
}

func (e *traceErr) Error() string { return e.rt.Error() }

func asRuntimeError(err error) *value.RuntimeError {
	if te, ok := err.(*traceErr); ok {
		return te.rt
	}
	if rt, ok := err.(*value.RuntimeError); ok {
		return rt
	}
	return value.Errf(value.ErrType, "%s", err.Error())
}

// Call invokes the callable at stack slot (top-numArgs-1) with the
// numArgs values above it, per spec.md §4.4's CALL semantics and
// original_source/src/state.c's do_call. On success the callee and its
// arguments are replaced by a single result value. On failure the
// callee and its arguments are discarded entirely and the stack top
// returns to its value from before the call (spec.md §4.5).
func (s *State) Call(numArgs int) error {
	err := s.doCall(numArgs)
	if err == nil {
		return nil
	}
	te, ok := err.(*traceErr)
	if !ok {
		return err
	}
	s.logTrace(te.rt, te.trace)
	return te.rt
}

func (s *State) doCall(numArgs int) error {
	base := s.top - numArgs - 1
	callee := s.stack[base]
	if callee.Type() != value.TypeCallable {
		s.discardFrame(base)
		return value.Errf(value.ErrType, "cannot call value of type %s", callee.TypeName())
	}
	if callee.IsNative() {
		return s.callNative(base, callee.AsNative(), numArgs)
	}
	return s.callClosure(base, callee.AsClosure(), numArgs)
}

func (s *State) callNative(base int, n *value.Native, numArgs int) error {
	if err := s.adjustCallArgs(n.Arity(), numArgs); err != nil {
		s.discardFrame(base)
		return err
	}
	args := make([]value.Value, n.Arity())
	copy(args, s.stack[base+1:base+1+n.Arity()])
	result, status, err := n.Call(s, args)
	if status != value.StatusOK || err != nil {
		if status != value.StatusNoTrace {
			return &traceErr{
				rt:    asRuntimeError(err),
				trace: []traceFrame{{Name: n.Name(), Native: true}},
			}
		}
		s.discardFrame(base)
		return asRuntimeError(err)
	}
	n.Release()
	s.moveResult(base, result)
	return nil
}

func (s *State) callClosure(base int, cl *value.Closure, numArgs int) error {
	fn, ok := cl.Function().(*chunk.Function)
	if !ok {
		s.discardFrame(base)
		return value.Errf(value.ErrType, "closure function has no compiled chunk")
	}
	if err := s.adjustCallArgs(fn.Arity(), numArgs); err != nil {
		s.discardFrame(base)
		return err
	}
	fr := &frame{base: base, fn: fn, closure: cl}
	s.frames = append(s.frames, fr)
	result, line, err := s.runFrame(fr)
	s.frames = s.frames[:len(s.frames)-1]
	if err != nil {
		te, ok := err.(*traceErr)
		if !ok {
			te = &traceErr{rt: asRuntimeError(err)}
		}
		te.trace = append(te.trace, traceFrame{Name: fn.Name(), File: fn.File(), Line: line})
		s.discardFrame(base)
		return te
	}
	cl.Release()
	s.moveResult(base, result)
	return nil
}

// adjustCallArgs pads the argument list with Nil up to arity (spec.md
// §4.4's "fewer arguments than arity are nil-padded"). A call with more
// arguments than arity is NOT truncated here: the extras remain on the
// stack as ordinary (unaddressed) frame slots and are released when the
// frame is discarded or its result is moved, exactly as
// original_source/src/state.c's adjust_call_args behaves.
func (s *State) adjustCallArgs(arity, numArgs int) error {
	for numArgs < arity {
		if err := s.push(value.Nil); err != nil {
			return err
		}
		numArgs++
		s.CallStats.PaddedCalls++
	}
	return nil
}

// discardFrame releases every stack slot from base to the current top,
// inclusive, and resets the stack top to base (spec.md §4.5: a failed
// call returns the stack to its pre-call state).
func (s *State) discardFrame(base int) {
	for s.top > base {
		s.top--
		s.stack[s.top].Release()
	}
}

// moveResult overwrites slot base with result, releasing every slot
// strictly above base (the consumed arguments/locals). The callee's
// own reference at base is the caller's responsibility: callNative and
// callClosure release it explicitly before calling moveResult, exactly
// as original_source/src/state.c's do_call pairs
// hk_native_release/hk_closure_release with move_result.
func (s *State) moveResult(base int, result value.Value) {
	for s.top > base+1 {
		s.top--
		s.stack[s.top].Release()
	}
	s.stack[base] = result
	s.top = base + 1
}

// runFrame executes fr's chunk until RETURN/RETURN_NIL, returning the
// value left on the stack and, on error, the source line at the
// failing instruction. It is the Go-native equivalent of
// original_source/src/state.c's call_function: a flat opcode switch
// over fr's code stream, operating on the shared absolute stack via
// fr.base.
func (s *State) runFrame(fr *frame) (value.Value, int32, error) {
	c := fr.fn.FnChunk
	code := c.Code
	pc := 0
	fail := func(err error) (value.Value, int32, error) {
		return value.Nil, c.LineFor(pc), err
	}
	readByte := func() byte {
		b := code[pc]
		pc++
		return b
	}
	readWord := func() int {
		w := binary.LittleEndian.Uint16(code[pc : pc+2])
		pc += 2
		return int(w)
	}
	for {
		op := chunk.Opcode(readByte())
		switch op {
		case chunk.OpNil:
			if err := s.push(value.Nil); err != nil {
				return fail(err)
			}
		case chunk.OpFalse:
			if err := s.push(value.False); err != nil {
				return fail(err)
			}
		case chunk.OpTrue:
			if err := s.push(value.True); err != nil {
				return fail(err)
			}
		case chunk.OpInt:
			n := int16(readWord())
			if err := s.push(value.Number(float64(n))); err != nil {
				return fail(err)
			}
		case chunk.OpConstant:
			val := c.Constants[readByte()]
			val.Retain()
			if err := s.push(val); err != nil {
				val.Release()
				return fail(err)
			}
		case chunk.OpRange:
			if err := s.opRange(); err != nil {
				return fail(err)
			}
		case chunk.OpArray:
			if err := s.opArray(int(readByte())); err != nil {
				return fail(err)
			}
		case chunk.OpStruct:
			if err := s.opStruct(int(readByte())); err != nil {
				return fail(err)
			}
		case chunk.OpInstance:
			if err := s.opInstance(int(readByte())); err != nil {
				return fail(err)
			}
		case chunk.OpConstruct:
			if err := s.opConstruct(int(readByte())); err != nil {
				return fail(err)
			}
		case chunk.OpIterator:
			if err := s.opIterator(); err != nil {
				return fail(err)
			}
		case chunk.OpClosure:
			child := fr.fn.Children[readByte()]
			if err := s.opClosure(child); err != nil {
				return fail(err)
			}
		case chunk.OpUnpackArray:
			if err := s.opUnpackArray(int(readByte())); err != nil {
				return fail(err)
			}
		case chunk.OpUnpackStruct:
			if err := s.opUnpackStruct(int(readByte())); err != nil {
				return fail(err)
			}
		case chunk.OpPop:
			s.top--
			s.stack[s.top].Release()
		case chunk.OpGlobal:
			val := s.stack[readByte()]
			val.Retain()
			if err := s.push(val); err != nil {
				val.Release()
				return fail(err)
			}
		case chunk.OpNonlocal:
			val := fr.closure.Nonlocal(int(readByte()))
			val.Retain()
			if err := s.push(val); err != nil {
				val.Release()
				return fail(err)
			}
		case chunk.OpLoad:
			val := s.stack[fr.base+int(readByte())]
			val.Retain()
			if err := s.push(val); err != nil {
				val.Release()
				return fail(err)
			}
		case chunk.OpStore:
			idx := fr.base + int(readByte())
			val := s.pop()
			s.stack[idx].Release()
			s.stack[idx] = val
		case chunk.OpAddElement:
			if err := s.opAddElement(); err != nil {
				return fail(err)
			}
		case chunk.OpGetElement:
			if err := s.opGetElement(); err != nil {
				return fail(err)
			}
		case chunk.OpFetchElement:
			if err := s.opFetchElement(); err != nil {
				return fail(err)
			}
		case chunk.OpSetElement:
			s.opSetElement()
		case chunk.OpPutElement:
			if err := s.opPutElement(); err != nil {
				return fail(err)
			}
		case chunk.OpDeleteElement:
			if err := s.opDeleteElement(); err != nil {
				return fail(err)
			}
		case chunk.OpInplaceAddElement:
			if err := s.opInplaceAddElement(); err != nil {
				return fail(err)
			}
		case chunk.OpInplacePutElement:
			if err := s.opInplacePutElement(); err != nil {
				return fail(err)
			}
		case chunk.OpInplaceDeleteElement:
			if err := s.opInplaceDeleteElement(); err != nil {
				return fail(err)
			}
		case chunk.OpGetField:
			name := c.Constants[readByte()].AsString()
			if err := s.opGetField(name); err != nil {
				return fail(err)
			}
		case chunk.OpFetchField:
			name := c.Constants[readByte()].AsString()
			if err := s.opFetchField(name); err != nil {
				return fail(err)
			}
		case chunk.OpSetField:
			s.opSetField()
		case chunk.OpPutField:
			name := c.Constants[readByte()].AsString()
			if err := s.opPutField(name); err != nil {
				return fail(err)
			}
		case chunk.OpInplacePutField:
			name := c.Constants[readByte()].AsString()
			if err := s.opInplacePutField(name); err != nil {
				return fail(err)
			}
		case chunk.OpCurrent:
			s.opCurrent()
		case chunk.OpJump:
			pc = readWord()
		case chunk.OpJumpIfFalse:
			offset := readWord()
			val := s.pop()
			if val.IsFalsey() {
				pc = offset
			}
			val.Release()
		case chunk.OpJumpIfTrue:
			offset := readWord()
			val := s.pop()
			if val.IsTruthy() {
				pc = offset
			}
			val.Release()
		case chunk.OpJumpIfTrueOrPop:
			offset := readWord()
			val := s.peek(0)
			if val.IsTruthy() {
				pc = offset
				break
			}
			s.top--
			val.Release()
		case chunk.OpJumpIfFalseOrPop:
			offset := readWord()
			val := s.peek(0)
			if val.IsFalsey() {
				pc = offset
				break
			}
			s.top--
			val.Release()
		case chunk.OpJumpIfNotEqual:
			offset := readWord()
			val2 := s.peek(0)
			val1 := s.peek(1)
			if value.Equal(val1, val2) {
				val1.Release()
				val2.Release()
				s.top -= 2
				break
			}
			pc = offset
			val2.Release()
			s.top--
		case chunk.OpJumpIfNotValid:
			offset := readWord()
			it := s.peek(0).AsIterator()
			if !it.Valid() {
				pc = offset
			}
		case chunk.OpNext:
			s.opNext()
		case chunk.OpEqual:
			s.opEqual()
		case chunk.OpGreater:
			if err := s.opGreater(); err != nil {
				return fail(err)
			}
		case chunk.OpLess:
			if err := s.opLess(); err != nil {
				return fail(err)
			}
		case chunk.OpNotEqual:
			s.opNotEqual()
		case chunk.OpNotGreater:
			if err := s.opNotGreater(); err != nil {
				return fail(err)
			}
		case chunk.OpNotLess:
			if err := s.opNotLess(); err != nil {
				return fail(err)
			}
		case chunk.OpBitwiseOr:
			if err := s.opBitwiseOr(); err != nil {
				return fail(err)
			}
		case chunk.OpBitwiseXor:
			if err := s.opBitwiseXor(); err != nil {
				return fail(err)
			}
		case chunk.OpBitwiseAnd:
			if err := s.opBitwiseAnd(); err != nil {
				return fail(err)
			}
		case chunk.OpLeftShift:
			if err := s.opLeftShift(); err != nil {
				return fail(err)
			}
		case chunk.OpRightShift:
			if err := s.opRightShift(); err != nil {
				return fail(err)
			}
		case chunk.OpAdd:
			if err := s.opAdd(); err != nil {
				return fail(err)
			}
		case chunk.OpSubtract:
			if err := s.opSubtract(); err != nil {
				return fail(err)
			}
		case chunk.OpMultiply:
			if err := s.opMultiply(); err != nil {
				return fail(err)
			}
		case chunk.OpDivide:
			if err := s.opDivide(); err != nil {
				return fail(err)
			}
		case chunk.OpQuotient:
			if err := s.opQuotient(); err != nil {
				return fail(err)
			}
		case chunk.OpRemainder:
			if err := s.opRemainder(); err != nil {
				return fail(err)
			}
		case chunk.OpNegate:
			if err := s.opNegate(); err != nil {
				return fail(err)
			}
		case chunk.OpNot:
			s.opNot()
		case chunk.OpBitwiseNot:
			if err := s.opBitwiseNot(); err != nil {
				return fail(err)
			}
		case chunk.OpIncrement:
			if err := s.opIncrement(); err != nil {
				return fail(err)
			}
		case chunk.OpDecrement:
			if err := s.opDecrement(); err != nil {
				return fail(err)
			}
		case chunk.OpCall:
			if err := s.doCall(int(readByte())); err != nil {
				return fail(err)
			}
		case chunk.OpLoadModule:
			if err := s.opLoadModule(); err != nil {
				return fail(err)
			}
		case chunk.OpReturn:
			return s.pop(), 0, nil
		case chunk.OpReturnNil:
			return value.Nil, 0, nil
		default:
			return fail(value.Errf(value.ErrType, "unknown opcode %d", op))
		}
	}
}

// opLoadModule pops a module-name string and pushes the module's
// value, resolving through the State's ModuleResolver and caching the
// result (spec.md §4.6/§9).
func (s *State) opLoadModule() error {
	nameVal := s.pop()
	name := nameVal.AsString().String()
	nameVal.Release()
	if cached, ok := s.modules[name]; ok {
		cached.Retain()
		return s.push(cached)
	}
	if s.resolver == nil {
		return value.Errf(value.ErrType, "module not found: %s", name)
	}
	mod, err := s.resolver.Resolve(name)
	if err != nil {
		return value.Errf(value.ErrType, "module not found: %s", name)
	}
	mod.Retain()
	s.modules[name] = mod
	mod.Retain()
	return s.push(mod)
}

package vm

import (
	"github.com/kristofer/hookvm/internal/chunk"
	"github.com/kristofer/hookvm/internal/value"
)

// The op* methods in this file build the aggregate value kinds (range,
// array, struct, instance, closure) and the iterator/unpack machinery,
// grounded on original_source/src/state.c's do_range/do_array/
// do_struct/do_instance/do_construct/do_iterator/do_closure/
// do_unpack_array/do_unpack_struct.

func (s *State) opRange() error {
	val2 := s.stack[s.top-1]
	val1 := s.stack[s.top-2]
	if val1.Type() != value.TypeNumber || val2.Type() != value.TypeNumber {
		return value.Errf(value.ErrType, "range must be of type number")
	}
	r := value.NewRange(val1.AsInt(), val2.AsInt())
	rv := value.FromRange(r)
	rv.Retain()
	s.stack[s.top-2] = rv
	s.top--
	return nil
}

func (s *State) opArray(length int) error {
	base := s.top - length
	elems := make([]value.Value, length)
	copy(elems, s.stack[base:s.top])
	arr := value.NewArray(elems)
	s.top = base
	av := value.FromArray(arr)
	av.Retain()
	return s.push(av)
}

func (s *State) opStruct(length int) error {
	base := s.top - length - 1
	nameVal := s.stack[base]
	var name string
	hasName := nameVal.Type() != value.TypeNil
	if hasName {
		name = nameVal.AsString().String()
	}
	strct := value.NewStruct(name, hasName)
	for i := 0; i < length; i++ {
		fieldVal := s.stack[base+1+i]
		fieldName := fieldVal.AsString()
		if !strct.DefineField(fieldName.String()) {
			return value.Errf(value.ErrField, "field %s is already defined", fieldName.String())
		}
	}
	for i := 0; i < length; i++ {
		s.stack[base+1+i].Release()
	}
	s.top = base
	strct.Retain()
	nameVal.Release()
	return s.push(value.FromStruct(strct))
}

func (s *State) opInstance(numArgs int) error {
	base := s.top - numArgs - 1
	strctVal := s.stack[base]
	if strctVal.Type() != value.TypeStruct {
		return value.Errf(value.ErrType, "cannot use %s as a struct", strctVal.TypeName())
	}
	strct := strctVal.AsStruct()
	length := strct.Len()
	if err := s.adjustInstanceArgs(length, numArgs); err != nil {
		return err
	}
	args := make([]value.Value, length)
	copy(args, s.stack[base+1:base+1+length])
	inst := value.NewInstance(strct, args)
	s.top = base
	iv := value.FromInstance(inst)
	iv.Retain()
	strct.Release()
	return s.push(iv)
}

// adjustInstanceArgs pads with Nil up to length, or truncates (popping
// and releasing) down to length, per
// original_source/src/state.c's adjust_instance_args. Unlike CALL's
// arity adjustment, INSTANCE does truncate extra arguments immediately.
func (s *State) adjustInstanceArgs(length, numArgs int) error {
	if numArgs > length {
		for numArgs > length {
			s.Pop()
			numArgs--
			s.CallStats.TruncatedCalls++
		}
		return nil
	}
	for numArgs < length {
		if err := s.push(value.Nil); err != nil {
			return err
		}
		numArgs++
		s.CallStats.PaddedCalls++
	}
	return nil
}

func (s *State) opConstruct(length int) error {
	n := length * 2
	base := s.top - n - 1
	nameVal := s.stack[base]
	var name string
	hasName := nameVal.Type() != value.TypeNil
	if hasName {
		name = nameVal.AsString().String()
	}
	strct := value.NewStruct(name, hasName)
	for i := 1; i <= n; i += 2 {
		fieldVal := s.stack[base+i]
		fieldName := fieldVal.AsString()
		if !strct.DefineField(fieldName.String()) {
			return value.Errf(value.ErrField, "field %s is already defined", fieldName.String())
		}
	}
	for i := 1; i <= n; i += 2 {
		s.stack[base+i].Release()
	}
	args := make([]value.Value, length)
	for i, j := 2, 0; i <= n; i, j = i+2, j+1 {
		args[j] = s.stack[base+i]
	}
	inst := value.NewInstance(strct, args)
	s.top = base
	iv := value.FromInstance(inst)
	iv.Retain()
	nameVal.Release()
	return s.push(iv)
}

func (s *State) opIterator() error {
	val := s.stack[s.top-1]
	if val.Type() == value.TypeIterator {
		return nil
	}
	if !val.IsIterable() {
		return value.Errf(value.ErrType, "value of type %s is not iterable", val.TypeName())
	}
	var it value.Iterator
	switch val.Type() {
	case value.TypeRange:
		it = val.AsRange().NewIterator()
	case value.TypeArray:
		it = val.AsArray().NewIterator()
	}
	iv := value.FromIterator(it)
	iv.Retain()
	s.stack[s.top-1] = iv
	val.Release()
	return nil
}

func (s *State) opClosure(fn *chunk.Function) error {
	n := fn.Nonlocals()
	base := s.top - n
	captured := make([]value.Value, n)
	copy(captured, s.stack[base:s.top])
	cl := value.NewClosure(fn, captured)
	s.top = base
	cv := value.FromClosure(cl)
	cv.Retain()
	return s.push(cv)
}

func (s *State) opUnpackArray(n int) error {
	val := s.pop()
	if val.Type() != value.TypeArray {
		val.Release()
		return value.Errf(value.ErrType, "value of type %s is not an array", val.TypeName())
	}
	arr := val.AsArray()
	length := arr.Len()
	limit := n
	if length < limit {
		limit = length
	}
	for i := 0; i < limit; i++ {
		elem := arr.Get(int64(i))
		elem.Retain()
		if err := s.push(elem); err != nil {
			arr.Release()
			return err
		}
	}
	for i := length; i < n; i++ {
		if err := s.push(value.Nil); err != nil {
			arr.Release()
			return err
		}
	}
	arr.Release()
	return nil
}

func (s *State) opUnpackStruct(n int) error {
	val := s.stack[s.top-1]
	if val.Type() != value.TypeInstance {
		return value.Errf(value.ErrType, "value of type %s is not an instance of struct", val.TypeName())
	}
	inst := val.AsInstance()
	strct := inst.Struct()
	base := s.top - 1 - n
	for i := 0; i < n; i++ {
		nameVal := s.stack[base+i]
		name := nameVal.AsString()
		idx := strct.IndexOf(name.String())
		var result value.Value
		if idx == -1 {
			result = value.Nil
		} else {
			result = inst.GetFieldAt(idx)
		}
		result.Retain()
		name.Release()
		s.stack[base+i] = result
	}
	s.top--
	inst.Release()
	return nil
}

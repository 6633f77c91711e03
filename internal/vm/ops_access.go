package vm

import "github.com/kristofer/hookvm/internal/value"

// The op* methods in this file implement the element (array/string
// index and slice) and field (instance) opcodes, grounded on
// original_source/src/state.c's do_*_element/do_*_field family. Each
// Inplace* variant takes the single-reference fast path
// (RefCount() == 2: one held by the stack slot about to be overwritten,
// one by the container itself) exactly as spec.md §3 describes.

func (s *State) opAddElement() error {
	val2 := s.stack[s.top-1]
	val1 := s.stack[s.top-2]
	if val1.Type() != value.TypeArray {
		return value.Errf(value.ErrType, "cannot use %s as an array", val1.TypeName())
	}
	arr := val1.AsArray()
	result := arr.Add(val2)
	rv := value.FromArray(result)
	rv.Retain()
	s.stack[s.top-2] = rv
	s.top--
	arr.Release()
	return nil
}

func (s *State) opGetElement() error {
	val2 := s.stack[s.top-1]
	val1 := s.stack[s.top-2]
	switch val1.Type() {
	case value.TypeString:
		str := val1.AsString()
		if val2.IsInt() {
			i := val2.AsInt()
			sub, ok := str.SliceIndex(i)
			if !ok {
				return value.Errf(value.ErrRange, "index %d is out of bounds for string of length %d", i, str.Len())
			}
			rv := value.FromString(sub)
			rv.Retain()
			s.stack[s.top-2] = rv
			s.top--
			str.Release()
			return nil
		}
		if val2.Type() != value.TypeRange {
			return value.Errf(value.ErrType, "string cannot be indexed by %s", val2.TypeName())
		}
		rng := val2.AsRange()
		sub := str.SliceRange(rng.Start(), rng.End())
		rv := value.FromString(sub)
		rv.Retain()
		s.stack[s.top-2] = rv
		s.top--
		str.Release()
		rng.Release()
		return nil
	case value.TypeArray:
		arr := val1.AsArray()
		if val2.IsInt() {
			i := val2.AsInt()
			elem, ok := arr.SliceIndex(i)
			if !ok {
				return value.Errf(value.ErrRange, "index %d is out of bounds for array of length %d", i, arr.Len())
			}
			elem.Retain()
			s.stack[s.top-2] = elem
			s.top--
			arr.Release()
			return nil
		}
		if val2.Type() != value.TypeRange {
			return value.Errf(value.ErrType, "array cannot be indexed by %s", val2.TypeName())
		}
		rng := val2.AsRange()
		sub := arr.SliceRange(rng.Start(), rng.End())
		rv := value.FromArray(sub)
		rv.Retain()
		s.stack[s.top-2] = rv
		s.top--
		arr.Release()
		rng.Release()
		return nil
	default:
		return value.Errf(value.ErrType, "%s cannot be indexed", val1.TypeName())
	}
}

func (s *State) arrayIndexOperands() (*value.Array, int64, error) {
	val2 := s.stack[s.top-1]
	val1 := s.stack[s.top-2]
	if val1.Type() != value.TypeArray {
		return nil, 0, value.Errf(value.ErrType, "cannot use %s as an array", val1.TypeName())
	}
	if !val2.IsInt() {
		return nil, 0, value.Errf(value.ErrType, "array cannot be indexed by %s", val2.TypeName())
	}
	arr := val1.AsArray()
	i := val2.AsInt()
	if i < 0 || i >= int64(arr.Len()) {
		return nil, 0, value.Errf(value.ErrRange, "index %d is out of bounds for array of length %d", i, arr.Len())
	}
	return arr, i, nil
}

// opFetchElement pushes the element at the top index below its array
// (leaving both the array and the index on the stack, for the
// subsequent PUT_ELEMENT/INPLACE_PUT_ELEMENT to address).
func (s *State) opFetchElement() error {
	arr, i, err := s.arrayIndexOperands()
	if err != nil {
		return err
	}
	elem := arr.Get(i)
	elem.Retain()
	return s.push(elem)
}

// opSetElement replaces slot[0] (array) with the result of writing
// val3 at index val2 (already validated by a preceding FETCH_ELEMENT).
func (s *State) opSetElement() {
	val3 := s.stack[s.top-1]
	val2 := s.stack[s.top-3]
	val1 := s.stack[s.top-4]
	arr := val1.AsArray()
	idx := val2.AsInt()
	result, _ := arr.Set(idx, val3)
	rv := value.FromArray(result)
	rv.Retain()
	s.stack[s.top-4] = rv
	s.top -= 3
	arr.Release()
}

func (s *State) opPutElement() error {
	val3 := s.stack[s.top-1]
	arr, i, err := s.arrayIndexOperands2()
	if err != nil {
		return err
	}
	result, _ := arr.Set(i, val3)
	rv := value.FromArray(result)
	rv.Retain()
	s.stack[s.top-3] = rv
	s.top -= 2
	arr.Release()
	return nil
}

// arrayIndexOperands2 reads array/index from the three-deep stack shape
// PUT_ELEMENT and its inplace variant see (array, index, newValue).
func (s *State) arrayIndexOperands2() (*value.Array, int64, error) {
	val2 := s.stack[s.top-2]
	val1 := s.stack[s.top-3]
	if val1.Type() != value.TypeArray {
		return nil, 0, value.Errf(value.ErrType, "cannot use %s as an array", val1.TypeName())
	}
	if !val2.IsInt() {
		return nil, 0, value.Errf(value.ErrType, "array cannot be indexed by %s", val2.TypeName())
	}
	arr := val1.AsArray()
	i := val2.AsInt()
	if i < 0 || i >= int64(arr.Len()) {
		return nil, 0, value.Errf(value.ErrRange, "index %d is out of bounds for array of length %d", i, arr.Len())
	}
	return arr, i, nil
}

func (s *State) opDeleteElement() error {
	arr, i, err := s.arrayIndexOperands()
	if err != nil {
		return err
	}
	result, _ := arr.Delete(i)
	rv := value.FromArray(result)
	rv.Retain()
	s.stack[s.top-2] = rv
	s.top--
	arr.Release()
	return nil
}

func (s *State) opInplaceAddElement() error {
	val2 := s.stack[s.top-1]
	val1 := s.stack[s.top-2]
	if val1.Type() != value.TypeArray {
		return value.Errf(value.ErrType, "cannot use %s as an array", val1.TypeName())
	}
	arr := val1.AsArray()
	if arr.RefCount() == 2 {
		arr.InplaceAdd(val2)
		s.top--
		return nil
	}
	result := arr.Add(val2)
	rv := value.FromArray(result)
	rv.Retain()
	s.stack[s.top-2] = rv
	s.top--
	arr.Release()
	return nil
}

func (s *State) opInplacePutElement() error {
	val3 := s.stack[s.top-1]
	arr, i, err := s.arrayIndexOperands2()
	if err != nil {
		return err
	}
	if arr.RefCount() == 2 {
		arr.InplaceSet(i, val3)
		s.top -= 2
		return nil
	}
	result, _ := arr.Set(i, val3)
	rv := value.FromArray(result)
	rv.Retain()
	s.stack[s.top-3] = rv
	s.top -= 2
	arr.Release()
	return nil
}

func (s *State) opInplaceDeleteElement() error {
	arr, i, err := s.arrayIndexOperands()
	if err != nil {
		return err
	}
	if arr.RefCount() == 2 {
		arr.InplaceDelete(i)
		s.top--
		return nil
	}
	result, _ := arr.Delete(i)
	rv := value.FromArray(result)
	rv.Retain()
	s.stack[s.top-2] = rv
	s.top--
	arr.Release()
	return nil
}

func (s *State) instanceFieldOperand(name *value.String) (*value.Instance, int, error) {
	val := s.stack[s.top-1]
	if val.Type() != value.TypeInstance {
		return nil, 0, value.Errf(value.ErrType, "cannot use %s as an instance of struct", val.TypeName())
	}
	inst := val.AsInstance()
	idx := inst.Struct().IndexOf(name.String())
	if idx == -1 {
		return nil, 0, value.Errf(value.ErrField, "no field %s on struct", name.String())
	}
	return inst, idx, nil
}

func (s *State) opGetField(name *value.String) error {
	inst, idx, err := s.instanceFieldOperand(name)
	if err != nil {
		return err
	}
	field := inst.GetFieldAt(idx)
	field.Retain()
	s.stack[s.top-1] = field
	inst.Release()
	return nil
}

// opFetchField pushes the field index then the field value, leaving
// the instance beneath both for the following PUT_FIELD/
// INPLACE_PUT_FIELD to address.
func (s *State) opFetchField(name *value.String) error {
	inst, idx, err := s.instanceFieldOperand(name)
	if err != nil {
		return err
	}
	if err := s.push(value.Number(float64(idx))); err != nil {
		return err
	}
	field := inst.GetFieldAt(idx)
	field.Retain()
	return s.push(field)
}

func (s *State) opSetField() {
	val3 := s.stack[s.top-1]
	val2 := s.stack[s.top-3]
	val1 := s.stack[s.top-4]
	inst := val1.AsInstance()
	idx := int(val2.AsInt())
	result, _ := inst.SetField(inst.Struct().Fields()[idx], val3)
	rv := value.FromInstance(result)
	rv.Retain()
	s.stack[s.top-4] = rv
	s.top -= 3
	inst.Release()
}

func (s *State) opPutField(name *value.String) error {
	val2 := s.stack[s.top-1]
	val1 := s.stack[s.top-2]
	if val1.Type() != value.TypeInstance {
		return value.Errf(value.ErrType, "cannot use %s as an instance of struct", val1.TypeName())
	}
	inst := val1.AsInstance()
	idx := inst.Struct().IndexOf(name.String())
	if idx == -1 {
		return value.Errf(value.ErrField, "no field %s on struct", name.String())
	}
	result, _ := inst.SetField(name.String(), val2)
	rv := value.FromInstance(result)
	rv.Retain()
	s.stack[s.top-2] = rv
	s.top--
	inst.Release()
	return nil
}

func (s *State) opInplacePutField(name *value.String) error {
	val2 := s.stack[s.top-1]
	val1 := s.stack[s.top-2]
	if val1.Type() != value.TypeInstance {
		return value.Errf(value.ErrType, "cannot use %s as an instance of struct", val1.TypeName())
	}
	inst := val1.AsInstance()
	idx := inst.Struct().IndexOf(name.String())
	if idx == -1 {
		return value.Errf(value.ErrField, "no field %s on struct", name.String())
	}
	if inst.RefCount() == 2 {
		inst.InplaceSetFieldAt(idx, val2)
		s.top--
		return nil
	}
	result, _ := inst.SetField(name.String(), val2)
	rv := value.FromInstance(result)
	rv.Retain()
	s.stack[s.top-2] = rv
	s.top--
	inst.Release()
	return nil
}

func (s *State) opCurrent() {
	val := s.stack[s.top-1]
	it := val.AsIterator()
	result := it.Current()
	old := s.stack[s.top-2]
	old.Release()
	s.stack[s.top-2] = result
}

func (s *State) opNext() {
	val := s.stack[s.top-1]
	it := val.AsIterator()
	if it.RefCount() == 2 {
		it.InplaceNext()
		return
	}
	next := it.Next()
	nv := value.FromIterator(next)
	nv.Retain()
	s.stack[s.top-1] = nv
	it.Release()
}

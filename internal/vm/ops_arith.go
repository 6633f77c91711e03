package vm

import (
	"math"

	"github.com/kristofer/hookvm/internal/value"
)

// The op* methods in this file implement the binary/unary arithmetic,
// bitwise, and relational opcodes (spec.md §4.4). Each operates
// directly on the top one or two stack slots, mirroring
// original_source/src/state.c's do_add/do_subtract/.../do_not_less:
// operands are consumed, released as needed, and the result replaces
// the lower operand's slot.

func (s *State) opEqual() {
	val2 := s.stack[s.top-1]
	val1 := s.stack[s.top-2]
	s.stack[s.top-2] = value.Bool(value.Equal(val1, val2))
	s.top--
	val1.Release()
	val2.Release()
}

func (s *State) opNotEqual() {
	val2 := s.stack[s.top-1]
	val1 := s.stack[s.top-2]
	s.stack[s.top-2] = value.Bool(!value.Equal(val1, val2))
	s.top--
	val1.Release()
	val2.Release()
}

func (s *State) opGreater() error {
	val2 := s.stack[s.top-1]
	val1 := s.stack[s.top-2]
	c, err := value.Compare(val1, val2)
	if err != nil {
		return err
	}
	s.stack[s.top-2] = value.Bool(c > 0)
	s.top--
	val1.Release()
	val2.Release()
	return nil
}

func (s *State) opLess() error {
	val2 := s.stack[s.top-1]
	val1 := s.stack[s.top-2]
	c, err := value.Compare(val1, val2)
	if err != nil {
		return err
	}
	s.stack[s.top-2] = value.Bool(c < 0)
	s.top--
	val1.Release()
	val2.Release()
	return nil
}

func (s *State) opNotGreater() error {
	val2 := s.stack[s.top-1]
	val1 := s.stack[s.top-2]
	c, err := value.Compare(val1, val2)
	if err != nil {
		return err
	}
	s.stack[s.top-2] = value.Bool(c <= 0)
	s.top--
	val1.Release()
	val2.Release()
	return nil
}

func (s *State) opNotLess() error {
	val2 := s.stack[s.top-1]
	val1 := s.stack[s.top-2]
	c, err := value.Compare(val1, val2)
	if err != nil {
		return err
	}
	s.stack[s.top-2] = value.Bool(c >= 0)
	s.top--
	val1.Release()
	val2.Release()
	return nil
}

func (s *State) bitwiseOperands(op string) (int64, int64, error) {
	val2 := s.stack[s.top-1]
	val1 := s.stack[s.top-2]
	if val1.Type() != value.TypeNumber || val2.Type() != value.TypeNumber {
		return 0, 0, value.Errf(value.ErrType, "cannot apply `%s` between %s and %s", op, val1.TypeName(), val2.TypeName())
	}
	return val1.AsInt(), val2.AsInt(), nil
}

func (s *State) opBitwiseOr() error {
	a, b, err := s.bitwiseOperands("bitwise or")
	if err != nil {
		return err
	}
	s.stack[s.top-2] = value.Number(float64(a | b))
	s.top--
	return nil
}

func (s *State) opBitwiseXor() error {
	a, b, err := s.bitwiseOperands("bitwise xor")
	if err != nil {
		return err
	}
	s.stack[s.top-2] = value.Number(float64(a ^ b))
	s.top--
	return nil
}

func (s *State) opBitwiseAnd() error {
	a, b, err := s.bitwiseOperands("bitwise and")
	if err != nil {
		return err
	}
	s.stack[s.top-2] = value.Number(float64(a & b))
	s.top--
	return nil
}

func (s *State) opLeftShift() error {
	a, b, err := s.bitwiseOperands("left shift")
	if err != nil {
		return err
	}
	s.stack[s.top-2] = value.Number(float64(a << uint64(b)))
	s.top--
	return nil
}

func (s *State) opRightShift() error {
	a, b, err := s.bitwiseOperands("right shift")
	if err != nil {
		return err
	}
	s.stack[s.top-2] = value.Number(float64(a >> uint64(b)))
	s.top--
	return nil
}

func (s *State) opAdd() error {
	val2 := s.stack[s.top-1]
	val1 := s.stack[s.top-2]
	switch val1.Type() {
	case value.TypeNumber:
		if val2.Type() != value.TypeNumber {
			return value.Errf(value.ErrType, "cannot add %s to number", val2.TypeName())
		}
		s.stack[s.top-2] = value.Number(val1.AsNumber() + val2.AsNumber())
		s.top--
		return nil
	case value.TypeString:
		if val2.Type() != value.TypeString {
			return value.Errf(value.ErrType, "cannot concatenate string and %s", val2.TypeName())
		}
		s.concatStrings(val1, val2)
		return nil
	case value.TypeArray:
		if val2.Type() != value.TypeArray {
			return value.Errf(value.ErrType, "cannot concatenate array and %s", val2.TypeName())
		}
		s.concatArrays(val1, val2)
		return nil
	default:
		return value.Errf(value.ErrType, "cannot add %s to %s", val2.TypeName(), val1.TypeName())
	}
}

func (s *State) concatStrings(val1, val2 value.Value) {
	str1 := val1.AsString()
	if str1.Len() == 0 {
		s.stack[s.top-2] = val2
		s.top--
		str1.Release()
		return
	}
	str2 := val2.AsString()
	if str2.Len() == 0 {
		s.top--
		str2.Release()
		return
	}
	if str1.RefCount() == 1 {
		str1.InplaceConcat(str2)
		s.top--
		str2.Release()
		return
	}
	result := value.Concat(str1, str2)
	result.Retain()
	s.stack[s.top-2] = value.FromString(result)
	s.top--
	str1.Release()
	str2.Release()
}

func (s *State) concatArrays(val1, val2 value.Value) {
	arr1 := val1.AsArray()
	if arr1.Len() == 0 {
		s.stack[s.top-2] = val2
		s.top--
		arr1.Release()
		return
	}
	arr2 := val2.AsArray()
	if arr2.Len() == 0 {
		s.top--
		arr2.Release()
		return
	}
	if arr1.RefCount() == 1 {
		arr1.InplaceConcat(arr2)
		s.top--
		arr2.Release()
		return
	}
	result := value.ConcatArrays(arr1, arr2)
	result.Retain()
	s.stack[s.top-2] = value.FromArray(result)
	s.top--
	arr1.Release()
	arr2.Release()
}

func (s *State) opSubtract() error {
	val2 := s.stack[s.top-1]
	val1 := s.stack[s.top-2]
	switch val1.Type() {
	case value.TypeNumber:
		if val2.Type() != value.TypeNumber {
			return value.Errf(value.ErrType, "cannot subtract %s from number", val2.TypeName())
		}
		s.stack[s.top-2] = value.Number(val1.AsNumber() - val2.AsNumber())
		s.top--
		return nil
	case value.TypeArray:
		if val2.Type() != value.TypeArray {
			return value.Errf(value.ErrType, "cannot diff between array and %s", val2.TypeName())
		}
		s.diffArrays(val1, val2)
		return nil
	default:
		return value.Errf(value.ErrType, "cannot subtract %s from %s", val2.TypeName(), val1.TypeName())
	}
}

func (s *State) diffArrays(val1, val2 value.Value) {
	arr1 := val1.AsArray()
	arr2 := val2.AsArray()
	if arr1.Len() == 0 || arr2.Len() == 0 {
		s.top--
		arr2.Release()
		return
	}
	if arr1.RefCount() == 1 {
		arr1.InplaceDiff(arr2)
		s.top--
		arr2.Release()
		return
	}
	result := value.DiffArrays(arr1, arr2)
	result.Retain()
	s.stack[s.top-2] = value.FromArray(result)
	s.top--
	arr1.Release()
	arr2.Release()
}

func (s *State) opMultiply() error {
	val2 := s.stack[s.top-1]
	val1 := s.stack[s.top-2]
	if val1.Type() != value.TypeNumber || val2.Type() != value.TypeNumber {
		return value.Errf(value.ErrType, "cannot multiply %s to %s", val2.TypeName(), val1.TypeName())
	}
	s.stack[s.top-2] = value.Number(val1.AsNumber() * val2.AsNumber())
	s.top--
	return nil
}

func (s *State) opDivide() error {
	val2 := s.stack[s.top-1]
	val1 := s.stack[s.top-2]
	if val1.Type() != value.TypeNumber || val2.Type() != value.TypeNumber {
		return value.Errf(value.ErrType, "cannot divide %s by %s", val1.TypeName(), val2.TypeName())
	}
	s.stack[s.top-2] = value.Number(val1.AsNumber() / val2.AsNumber())
	s.top--
	return nil
}

func (s *State) opQuotient() error {
	val2 := s.stack[s.top-1]
	val1 := s.stack[s.top-2]
	if val1.Type() != value.TypeNumber || val2.Type() != value.TypeNumber {
		return value.Errf(value.ErrType, "cannot apply `quotient` between %s and %s", val1.TypeName(), val2.TypeName())
	}
	s.stack[s.top-2] = value.Number(math.Floor(val1.AsNumber() / val2.AsNumber()))
	s.top--
	return nil
}

func (s *State) opRemainder() error {
	val2 := s.stack[s.top-1]
	val1 := s.stack[s.top-2]
	if val1.Type() != value.TypeNumber || val2.Type() != value.TypeNumber {
		return value.Errf(value.ErrType, "cannot apply `remainder` between %s and %s", val1.TypeName(), val2.TypeName())
	}
	s.stack[s.top-2] = value.Number(math.Mod(val1.AsNumber(), val2.AsNumber()))
	s.top--
	return nil
}

func (s *State) opNegate() error {
	val := s.stack[s.top-1]
	if val.Type() != value.TypeNumber {
		return value.Errf(value.ErrType, "cannot apply `negate` to %s", val.TypeName())
	}
	s.stack[s.top-1] = value.Number(-val.AsNumber())
	return nil
}

func (s *State) opNot() {
	val := s.stack[s.top-1]
	s.stack[s.top-1] = value.Bool(val.IsFalsey())
	val.Release()
}

func (s *State) opBitwiseNot() error {
	val := s.stack[s.top-1]
	if val.Type() != value.TypeNumber {
		return value.Errf(value.ErrType, "cannot apply `bitwise not` to %s", val.TypeName())
	}
	s.stack[s.top-1] = value.Number(float64(^val.AsInt()))
	return nil
}

func (s *State) opIncrement() error {
	val := s.stack[s.top-1]
	if val.Type() != value.TypeNumber {
		return value.Errf(value.ErrType, "cannot increment value of type %s", val.TypeName())
	}
	s.stack[s.top-1] = value.Number(val.AsNumber() + 1)
	return nil
}

func (s *State) opDecrement() error {
	val := s.stack[s.top-1]
	if val.Type() != value.TypeNumber {
		return value.Errf(value.ErrType, "cannot decrement value of type %s", val.TypeName())
	}
	s.stack[s.top-1] = value.Number(val.AsNumber() - 1)
	return nil
}

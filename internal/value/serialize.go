package value

import (
	"encoding/binary"
	"io"
)

// Type tags used on the wire by Serialize/Deserialize, matching
// spec.md §6's byte layout. These are independent of the in-memory
// Type enum so the wire format never shifts when Type gains a member.
const (
	wireNil      byte = 0
	wireBool     byte = 1
	wireNumber   byte = 2
	wireString   byte = 3
	wireRange    byte = 4
	wireArray    byte = 5
	wireStruct   byte = 6
	wireInstance byte = 7
)

// Serialize writes v to w in the binary layout of spec.md §6. Closures,
// natives, iterators and userdata are not serializable and return a
// SerializationError.
func Serialize(w io.Writer, v Value) error {
	switch v.typ {
	case TypeNil:
		return writeByte(w, wireNil)
	case TypeBool:
		if err := writeByte(w, wireBool); err != nil {
			return err
		}
		b := byte(0)
		if v.b {
			b = 1
		}
		return writeByte(w, b)
	case TypeNumber:
		if err := writeByte(w, wireNumber); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, v.n)
	case TypeString:
		if err := writeByte(w, wireString); err != nil {
			return err
		}
		return writeBytes(w, v.AsString().Bytes())
	case TypeRange:
		if err := writeByte(w, wireRange); err != nil {
			return err
		}
		r := v.AsRange()
		if err := binary.Write(w, binary.LittleEndian, r.Start()); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, r.End())
	case TypeArray:
		if err := writeByte(w, wireArray); err != nil {
			return err
		}
		arr := v.AsArray()
		if err := binary.Write(w, binary.LittleEndian, int32(arr.Len())); err != nil {
			return err
		}
		for _, e := range arr.Elements() {
			if err := Serialize(w, e); err != nil {
				return err
			}
		}
		return nil
	case TypeStruct:
		if err := writeByte(w, wireStruct); err != nil {
			return err
		}
		return serializeStruct(w, v.AsStruct())
	case TypeInstance:
		if err := writeByte(w, wireInstance); err != nil {
			return err
		}
		inst := v.AsInstance()
		if err := serializeStruct(w, inst.Struct()); err != nil {
			return err
		}
		for _, e := range inst.strct.Fields() {
			idx := inst.strct.IndexOf(e)
			if err := Serialize(w, inst.GetFieldAt(idx)); err != nil {
				return err
			}
		}
		return nil
	default:
		return Errf(ErrSerialization, "value of type %s is not serializable", v.TypeName())
	}
}

func serializeStruct(w io.Writer, s *Struct) error {
	name, hasName := s.Name()
	if !hasName {
		if err := writeBytes(w, nil); err != nil {
			return err
		}
	} else if err := writeBytes(w, []byte(name)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(s.Len())); err != nil {
		return err
	}
	for _, f := range s.Fields() {
		if err := writeBytes(w, []byte(f)); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize reads back a value written by Serialize.
func Deserialize(r io.Reader) (Value, error) {
	tag, err := readByte(r)
	if err != nil {
		return Nil, err
	}
	switch tag {
	case wireNil:
		return Nil, nil
	case wireBool:
		b, err := readByte(r)
		if err != nil {
			return Nil, err
		}
		return Bool(b != 0), nil
	case wireNumber:
		var n float64
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return Nil, err
		}
		return Number(n), nil
	case wireString:
		b, err := readBytes(r)
		if err != nil {
			return Nil, err
		}
		return FromString(NewStringFromBytes(b)), nil
	case wireRange:
		var start, end int64
		if err := binary.Read(r, binary.LittleEndian, &start); err != nil {
			return Nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &end); err != nil {
			return Nil, err
		}
		return FromRange(NewRange(start, end)), nil
	case wireArray:
		var n int32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return Nil, err
		}
		elems := make([]Value, n)
		for i := range elems {
			v, err := Deserialize(r)
			if err != nil {
				return Nil, err
			}
			elems[i] = v
		}
		return FromArray(NewArray(elems)), nil
	case wireStruct:
		s, err := deserializeStruct(r)
		if err != nil {
			return Nil, err
		}
		return FromStruct(s), nil
	case wireInstance:
		s, err := deserializeStruct(r)
		if err != nil {
			return Nil, err
		}
		values := make([]Value, s.Len())
		for i := range values {
			v, err := Deserialize(r)
			if err != nil {
				return Nil, err
			}
			values[i] = v
		}
		s.Retain()
		return FromInstance(&Instance{strct: s, values: values}), nil
	default:
		return Nil, Errf(ErrSerialization, "unknown value tag 0x%02x", tag)
	}
}

func deserializeStruct(r io.Reader) (*Struct, error) {
	nameBytes, err := readBytes(r)
	if err != nil {
		return nil, err
	}
	var s *Struct
	if len(nameBytes) == 0 {
		s = NewStruct("", false)
	} else {
		s = NewStruct(string(nameBytes), true)
	}
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	for i := int32(0); i < n; i++ {
		fb, err := readBytes(r)
		if err != nil {
			return nil, err
		}
		s.DefineField(string(fb))
	}
	return s, nil
}

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func writeBytes(w io.Writer, b []byte) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBytes(r io.Reader) ([]byte, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

package chunk

import (
	"encoding/binary"
	"io"

	"github.com/kristofer/hookvm/internal/value"
)

// Serialize writes c to w in the binary layout of spec.md §6:
// code_length (i32) + code bytes, lines_length (i32) + (line_no,
// offset) i32 pairs, then the constant pool as a serialized value
// array. Grounded on the teacher's pkg/bytecode/format.go Encode, with
// the constant-type tags replaced by value.Serialize's own tag set.
func (c *Chunk) Serialize(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(c.Code))); err != nil {
		return err
	}
	if _, err := w.Write(c.Code); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(len(c.Lines))); err != nil {
		return err
	}
	for _, rec := range c.Lines {
		if err := binary.Write(w, binary.LittleEndian, rec.No); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, rec.Offset); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, int32(len(c.Constants))); err != nil {
		return err
	}
	for _, v := range c.Constants {
		if err := value.Serialize(w, v); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize reads back a Chunk written by Serialize.
func Deserialize(r io.Reader) (*Chunk, error) {
	c := New()

	var codeLen int32
	if err := binary.Read(r, binary.LittleEndian, &codeLen); err != nil {
		return nil, err
	}
	c.Code = make([]byte, codeLen)
	if _, err := io.ReadFull(r, c.Code); err != nil {
		return nil, err
	}

	var linesLen int32
	if err := binary.Read(r, binary.LittleEndian, &linesLen); err != nil {
		return nil, err
	}
	c.Lines = make([]LineRecord, linesLen)
	for i := range c.Lines {
		if err := binary.Read(r, binary.LittleEndian, &c.Lines[i].No); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &c.Lines[i].Offset); err != nil {
			return nil, err
		}
	}

	var constLen int32
	if err := binary.Read(r, binary.LittleEndian, &constLen); err != nil {
		return nil, err
	}
	c.Constants = make([]value.Value, constLen)
	for i := range c.Constants {
		v, err := value.Deserialize(r)
		if err != nil {
			return nil, err
		}
		c.Constants[i] = v
	}
	return c, nil
}

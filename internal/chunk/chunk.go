package chunk

import (
	"encoding/binary"

	"github.com/kristofer/hookvm/internal/value"
)

// LineRecord pairs a source line number with the first code offset it
// covers; the table is compressed by collapsing consecutive
// instructions that share a line (spec.md §4.3).
type LineRecord struct {
	No     int32
	Offset int32
}

// Chunk is a compiled function body: code, a constant pool, and a line
// table. Grounded on
// _examples/original_source/include/hook/chunk.h's hk_chunk_t and the
// teacher's pkg/bytecode.Bytecode for the Go-side API shape.
type Chunk struct {
	Code      []byte
	Lines     []LineRecord
	Constants []value.Value
}

// New returns an empty chunk ready for emission.
func New() *Chunk {
	return &Chunk{}
}

// EmitByte appends a single byte to the code stream.
func (c *Chunk) EmitByte(b byte) {
	c.Code = append(c.Code, b)
}

// EmitWord appends a little-endian 16-bit operand.
func (c *Chunk) EmitWord(w uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], w)
	c.Code = append(c.Code, buf[0], buf[1])
}

// EmitOpcode appends a single opcode byte. Callers follow it with
// EmitByte/EmitWord for opcodes that take an operand.
func (c *Chunk) EmitOpcode(op Opcode) {
	c.EmitByte(byte(op))
}

// PatchWord overwrites the little-endian 16-bit operand at offset,
// used by codegen to back-patch a forward jump once its target offset
// is known.
func (c *Chunk) PatchWord(offset int, w uint16) {
	binary.LittleEndian.PutUint16(c.Code[offset:offset+2], w)
}

// Here returns the current end of the code stream, the offset a
// subsequent instruction will be emitted at.
func (c *Chunk) Here() int { return len(c.Code) }

// AddConstant appends val to the constant pool and returns its index.
// Panics if the pool would exceed 256 entries; CONSTANT's operand is a
// single byte (spec.md §6).
func (c *Chunk) AddConstant(val value.Value) byte {
	if len(c.Constants) >= 256 {
		panic("chunk: constant pool exceeds 256 entries")
	}
	c.Constants = append(c.Constants, val)
	return byte(len(c.Constants) - 1)
}

// AddLine records that the instruction about to be emitted (at the
// chunk's current code length) belongs to line_no. A no-op if the most
// recently recorded line is already line_no, implementing the
// "collapsing consecutive equal line numbers" compression spec.md §4.3
// describes.
func (c *Chunk) AddLine(lineNo int32) {
	offset := int32(len(c.Code))
	if n := len(c.Lines); n > 0 && c.Lines[n-1].No == lineNo {
		return
	}
	c.Lines = append(c.Lines, LineRecord{No: lineNo, Offset: offset})
}

// LineFor resolves the source line covering a code offset, via linear
// scan of the (already small, compressed) line table.
func (c *Chunk) LineFor(offset int) int32 {
	var line int32
	for _, rec := range c.Lines {
		if int32(offset) < rec.Offset {
			break
		}
		line = rec.No
	}
	return line
}

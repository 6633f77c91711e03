package chunk

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/kristofer/hookvm/internal/value"
)

// Disassemble writes a human-readable listing of c to w, one
// instruction per line, annotated with the source line and the
// constant-pool value for CONSTANT operands. This is the CLI's
// -disasm flag; it recovers the debug-dump functionality of
// original_source/src/state.c (not distilled into spec.md, which only
// requires that line numbers be recoverable from a pc) in the
// teacher's Debugger idiom.
func (c *Chunk) Disassemble(w io.Writer, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	offset := 0
	for offset < len(c.Code) {
		offset = c.disassembleInstruction(w, offset)
	}
}

func (c *Chunk) disassembleInstruction(w io.Writer, offset int) int {
	op := Opcode(c.Code[offset])
	line := c.LineFor(offset)
	fmt.Fprintf(w, "%04d %4d %-22s", offset, line, op.String())
	next := offset + 1
	switch {
	case op.hasByteOperand():
		b := c.Code[next]
		next++
		if op == OpConstant && int(b) < len(c.Constants) {
			fmt.Fprintf(w, " %3d ; %s", b, value.Print(c.Constants[b], true))
		} else {
			fmt.Fprintf(w, " %3d", b)
		}
	case op.hasWordOperand():
		word := binary.LittleEndian.Uint16(c.Code[next : next+2])
		next += 2
		fmt.Fprintf(w, " %5d", word)
	}
	fmt.Fprintln(w)
	return next
}

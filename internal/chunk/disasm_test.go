package chunk

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kristofer/hookvm/internal/value"
)

func TestDisassemble(t *testing.T) {
	c := New()
	idx := c.AddConstant(value.Number(7))
	c.AddLine(1)
	c.EmitOpcode(OpConstant)
	c.EmitByte(idx)
	c.AddLine(2)
	c.EmitOpcode(OpReturn)

	var buf bytes.Buffer
	c.Disassemble(&buf, "test.hk")

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "== test.hk ==\n"))
	assert.Contains(t, out, "CONSTANT")
	assert.Contains(t, out, "; 7")
	assert.Contains(t, out, "RETURN")
}

func TestDisassembleWordOperand(t *testing.T) {
	c := New()
	c.EmitOpcode(OpJump)
	c.EmitWord(10)

	var buf bytes.Buffer
	c.Disassemble(&buf, "j")
	assert.Contains(t, buf.String(), "JUMP")
}

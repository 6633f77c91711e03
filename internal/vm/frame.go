package vm

import (
	"github.com/kristofer/hookvm/internal/chunk"
	"github.com/kristofer/hookvm/internal/value"
)

// frame is the contiguous stack region owned by one active call: slot
// base+0 is the callable, base+1..arity are arguments, and
// base+arity+1.. are locals the compiler allocates upward (spec.md
// §4.4/GLOSSARY).
type frame struct {
	base    int
	fn      *chunk.Function
	closure *value.Closure // nil for a top-level program (no nonlocals possible)
}

package value

import "fmt"

// FunctionRef is the minimal view of a compiled function a Closure
// needs, satisfied by *chunk.Function. It is declared here rather than
// imported to keep the value package (which chunk itself depends on
// for its constant pool) free of a cycle back to chunk.
type FunctionRef interface {
	Name() string
	File() string
	Arity() int
	Nonlocals() int
}

// Closure pairs a function with its captured nonlocal values. Closures
// are immutable after construction: the captured vector is fixed at
// FunctionRef.Nonlocals() length.
type Closure struct {
	header
	fn       FunctionRef
	captured []Value
}

// NewClosure packs fn with captured, which the closure takes ownership
// of (the caller already holds one reference per captured value,
// popped off the stack by the CLOSURE opcode).
func NewClosure(fn FunctionRef, captured []Value) *Closure {
	return &Closure{fn: fn, captured: captured}
}

func (c *Closure) Type() Type { return TypeCallable }

func (c *Closure) Release() {
	if c.releaseSelf() {
		for _, v := range c.captured {
			v.Release()
		}
	}
}

func (c *Closure) Print(quoted bool) string {
	_ = quoted
	return fmt.Sprintf("<function %s>", c.fn.Name())
}

// Function returns the closure's function reference.
func (c *Closure) Function() FunctionRef { return c.fn }

// Nonlocal returns the captured value at idx.
func (c *Closure) Nonlocal(idx int) Value { return c.captured[idx] }

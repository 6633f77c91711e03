package chunk

// Function pairs a compiled Chunk with the metadata a closure needs at
// call time: arity, a name and source file for trace printing, an
// ordered table of nested function prototypes (for CLOSURE's child
// index), and the count of nonlocal captures the compiler computed.
//
// Function implements value.FunctionRef so value.Closure can reference
// it without the value package importing chunk (which would cycle back
// through Chunk.Constants []value.Value).
type Function struct {
	FnChunk      *Chunk
	ArityCount   int
	FuncName     string
	FileName     string
	Children     []*Function
	NumNonlocals int
}

// Name returns the function's declared name ("" for the top-level
// program chunk).
func (f *Function) Name() string { return f.FuncName }

// File returns the source file name used in stack traces.
func (f *Function) File() string { return f.FileName }

// Arity returns the declared parameter count.
func (f *Function) Arity() int { return f.ArityCount }

// Nonlocals returns the number of values a closure over this function
// must capture.
func (f *Function) Nonlocals() int { return f.NumNonlocals }

// Package codegen walks an ast.Program and emits internal/chunk
// bytecode, implementing the compiler side of spec.md §4.6's
// compiler/VM contract: locals are frame-relative slots (OpLoad/
// OpStore), top-level bindings are frame-0 absolute slots (OpGlobal),
// and closures capture enclosing-function locals as an ordered
// nonlocal list pushed onto the stack immediately before OpClosure
// (mirroring chunk.Function.NumNonlocals and vm.opClosure).
//
// This is the "minimal front end" PACKAGE LAYOUT names: it proves the
// chunk-producing contract for a pragmatic subset of hookvm's grammar,
// not a complete reimplementation of every original_source/src/hk_parser.c
// construct (no match/loop/for-C-style/del; see DESIGN.md).
package codegen

import (
	"fmt"

	"github.com/kristofer/hookvm/internal/chunk"
	"github.com/kristofer/hookvm/internal/compiler/ast"
	"github.com/kristofer/hookvm/internal/compiler/lexer"
	"github.com/kristofer/hookvm/internal/value"
)

const (
	resNotFound = iota
	resLocal
	resGlobal
	resNonlocal
)

// Globals is the subset of vm.State's embedder API (spec.md §4.5) that
// codegen needs: top-level let/fn/struct bindings become named global
// slots, resolved to an absolute stack index at compile time via the
// same table the host uses to install builtins.
type Globals interface {
	DefineGlobal(name string, val value.Value) (int, error)
	GlobalSlot(name string) (int, bool)
}

// capture records how a nonlocal slot's value is fetched from the
// enclosing function's own frame at closure-creation time.
type capture struct {
	name          string
	fromLocal     bool
	parentSlot    int
	parentNonlocal int
}

// funcScope tracks name->slot bindings for one function body (or the
// top-level program, whose bindings are absolute global slots rather
// than frame-relative locals — see Globals).
type funcScope struct {
	parent       *funcScope
	isGlobal     bool
	globals      Globals // only set when isGlobal
	locals       map[string]int
	nextSlot     int
	captures     []capture
	captureIndex map[string]int
}

func newFuncScope(parent *funcScope, isGlobal bool) *funcScope {
	return &funcScope{
		parent:       parent,
		isGlobal:     isGlobal,
		locals:       make(map[string]int),
		nextSlot:     1, // slot 0 is always the callable itself (frame.go)
		captureIndex: make(map[string]int),
	}
}

func (s *funcScope) declare(name string) (int, error) {
	if s.isGlobal {
		idx, err := s.globals.DefineGlobal(name, value.Nil)
		if err != nil {
			return 0, err
		}
		s.locals[name] = idx
		return idx, nil
	}
	slot := s.nextSlot
	s.nextSlot++
	s.locals[name] = slot
	return slot, nil
}

func (s *funcScope) resolve(name string) (kind, idx int) {
	if slot, ok := s.locals[name]; ok {
		if s.isGlobal {
			return resGlobal, slot
		}
		return resLocal, slot
	}
	if i, ok := s.captureIndex[name]; ok {
		return resNonlocal, i
	}
	if s.parent == nil {
		return resNotFound, 0
	}
	pkind, pidx := s.parent.resolve(name)
	switch pkind {
	case resNotFound:
		return resNotFound, 0
	case resGlobal:
		return resGlobal, pidx
	case resLocal:
		i := len(s.captures)
		s.captures = append(s.captures, capture{name: name, fromLocal: true, parentSlot: pidx})
		s.captureIndex[name] = i
		return resNonlocal, i
	default: // resNonlocal in the parent
		i := len(s.captures)
		s.captures = append(s.captures, capture{name: name, fromLocal: false, parentNonlocal: pidx})
		s.captureIndex[name] = i
		return resNonlocal, i
	}
}

// loopCtx accumulates the code offsets of forward jumps a break/
// continue inside the loop body needs patched once the loop's exit
// and continuation points are known. Both break and continue are
// always forward jumps at the point they're compiled (the enclosing
// loop patches them once it knows where "exit" and "advance" land).
type loopCtx struct {
	continueJumps []int
	breakJumps    []int
}

// Codegen emits one function's chunk. Nested function literals spawn
// a child Codegen whose scope.parent is this one, so name resolution
// can walk outward for nonlocal capture.
type Codegen struct {
	chunk    *chunk.Chunk
	fn       *chunk.Function
	scope    *funcScope
	loops    []*loopCtx
	fileName string
	tempSeq  int
}

// CompileProgram compiles a parsed program into the top-level
// Function (arity 0, NumNonlocals 0, the program's "callable" slot is
// never read). Top-level let/fn/struct bindings are installed as
// named globals on globals so compiled GLOBAL operands address the
// same absolute slots the embedder's builtins occupy.
func CompileProgram(file string, prog *ast.Program, globals Globals) (*chunk.Function, error) {
	scope := newFuncScope(nil, true)
	scope.globals = globals
	cg := &Codegen{
		chunk:    chunk.New(),
		fn:       &chunk.Function{FileName: file},
		scope:    scope,
		fileName: file,
	}
	cg.fn.FnChunk = cg.chunk
	for _, stmt := range prog.Statements {
		if err := cg.compileStatement(stmt); err != nil {
			return nil, err
		}
	}
	cg.chunk.EmitOpcode(chunk.OpReturnNil)
	return cg.fn, nil
}

// freshName returns a compiler-private name guaranteed distinct from
// any other temp allocated by this Codegen, so nested loops (which at
// top level would otherwise collide on a shared global name) each get
// their own slot.
func (cg *Codegen) freshName(prefix string) string {
	cg.tempSeq++
	return fmt.Sprintf("%s#%d", prefix, cg.tempSeq)
}

func (cg *Codegen) line(_ int32) {
	// Source positions aren't threaded through every ast node in this
	// minimal front end; line-table entries collapse to a single
	// record, which is sufficient for spec.md's trace format (the
	// VM's own call-depth framing carries the useful diagnostic).
	cg.chunk.AddLine(1)
}

func (cg *Codegen) emit(op chunk.Opcode) {
	cg.line(0)
	cg.chunk.EmitOpcode(op)
}

func (cg *Codegen) emitByte(op chunk.Opcode, b byte) {
	cg.line(0)
	cg.chunk.EmitOpcode(op)
	cg.chunk.EmitByte(b)
}

func (cg *Codegen) emitJump(op chunk.Opcode) int {
	cg.line(0)
	cg.chunk.EmitOpcode(op)
	offset := cg.chunk.Here()
	cg.chunk.EmitWord(0)
	return offset
}

func (cg *Codegen) patchJumpHere(offset int) {
	cg.chunk.PatchWord(offset, uint16(cg.chunk.Here()))
}

func (cg *Codegen) compileStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		if err := cg.compileExpr(s.Value); err != nil {
			return err
		}
		slot, err := cg.scope.declare(s.Name)
		if err != nil {
			return err
		}
		cg.emitByte(chunk.OpStore, byte(slot))
		return nil
	case *ast.ExpressionStatement:
		if err := cg.compileExpr(s.Expr); err != nil {
			return err
		}
		cg.emit(chunk.OpPop)
		return nil
	case *ast.ReturnStatement:
		if s.Value == nil {
			cg.emit(chunk.OpReturnNil)
			return nil
		}
		if err := cg.compileExpr(s.Value); err != nil {
			return err
		}
		cg.emit(chunk.OpReturn)
		return nil
	case *ast.IfStatement:
		return cg.compileIf(s)
	case *ast.WhileStatement:
		return cg.compileWhile(s)
	case *ast.ForeachStatement:
		return cg.compileForeach(s)
	case *ast.BreakStatement:
		if len(cg.loops) == 0 {
			return fmt.Errorf("break outside a loop")
		}
		l := cg.loops[len(cg.loops)-1]
		l.breakJumps = append(l.breakJumps, cg.emitJump(chunk.OpJump))
		return nil
	case *ast.ContinueStatement:
		if len(cg.loops) == 0 {
			return fmt.Errorf("continue outside a loop")
		}
		l := cg.loops[len(cg.loops)-1]
		l.continueJumps = append(l.continueJumps, cg.emitJump(chunk.OpJump))
		return nil
	case *ast.FnStatement:
		return cg.compileFnDecl(s.Name, s.Params, s.Body)
	case *ast.StructStatement:
		return cg.compileStructDecl(s.Name, s.Fields)
	default:
		return fmt.Errorf("codegen: unhandled statement %T", stmt)
	}
}

func (cg *Codegen) compileIf(s *ast.IfStatement) error {
	if err := cg.compileExpr(s.Cond); err != nil {
		return err
	}
	elseJump := cg.emitJump(chunk.OpJumpIfFalse)
	for _, st := range s.Then {
		if err := cg.compileStatement(st); err != nil {
			return err
		}
	}
	if s.Else == nil {
		cg.patchJumpHere(elseJump)
		return nil
	}
	endJump := cg.emitJump(chunk.OpJump)
	cg.patchJumpHere(elseJump)
	for _, st := range s.Else {
		if err := cg.compileStatement(st); err != nil {
			return err
		}
	}
	cg.patchJumpHere(endJump)
	return nil
}

func (cg *Codegen) compileWhile(s *ast.WhileStatement) error {
	condStart := cg.chunk.Here()
	if err := cg.compileExpr(s.Cond); err != nil {
		return err
	}
	exitJump := cg.emitJump(chunk.OpJumpIfFalse)
	l := &loopCtx{}
	cg.loops = append(cg.loops, l)
	for _, st := range s.Body {
		if err := cg.compileStatement(st); err != nil {
			return err
		}
	}
	cg.loops = cg.loops[:len(cg.loops)-1]
	// continue re-checks the condition, same as falling off the body.
	for _, cj := range l.continueJumps {
		cg.patchJumpHere(cj)
	}
	cg.emit(chunk.OpJump)
	cg.chunk.EmitWord(uint16(condStart))
	cg.patchJumpHere(exitJump)
	for _, bj := range l.breakJumps {
		cg.patchJumpHere(bj)
	}
	return nil
}

// compileForeach lowers to the iterator protocol opcodes (spec.md
// §4.2/§4.4): ITERATOR, then a loop guarded by JUMP_IF_NOT_VALID,
// binding the loop variable from CURRENT before the body and
// advancing via NEXT after it.
func (cg *Codegen) compileForeach(s *ast.ForeachStatement) error {
	if err := cg.compileExpr(s.Iterable); err != nil {
		return err
	}
	cg.emit(chunk.OpIterator)
	itSlot, err := cg.scope.declare(cg.freshName("iter"))
	if err != nil {
		return err
	}
	cg.emitByte(chunk.OpStore, byte(itSlot))

	loopStart := cg.chunk.Here()
	cg.emitByte(chunk.OpLoad, byte(itSlot))
	// JUMP_IF_NOT_VALID only peeks; the iterator copy it leaves behind
	// is popped explicitly: by the Pop right after the jump on the
	// fall-through path, and by the Pop at the exit target on the exit
	// path.
	exitJump := cg.emitJump(chunk.OpJumpIfNotValid)
	cg.emit(chunk.OpPop)

	cg.emit(chunk.OpNil)
	cg.emitByte(chunk.OpLoad, byte(itSlot))
	cg.emit(chunk.OpCurrent)
	cg.emit(chunk.OpPop)
	varSlot, err := cg.scope.declare(s.Name)
	if err != nil {
		return err
	}
	cg.emitByte(chunk.OpStore, byte(varSlot))

	l := &loopCtx{}
	cg.loops = append(cg.loops, l)
	for _, st := range s.Body {
		if err := cg.compileStatement(st); err != nil {
			return err
		}
	}
	cg.loops = cg.loops[:len(cg.loops)-1]

	for _, cj := range l.continueJumps {
		cg.patchJumpHere(cj)
	}
	cg.emitByte(chunk.OpLoad, byte(itSlot))
	cg.emit(chunk.OpNext)
	cg.emitByte(chunk.OpStore, byte(itSlot))
	cg.emit(chunk.OpJump)
	cg.chunk.EmitWord(uint16(loopStart))

	exitTarget := cg.chunk.Here()
	cg.chunk.PatchWord(exitJump, uint16(exitTarget))
	for _, bj := range l.breakJumps {
		cg.chunk.PatchWord(bj, uint16(exitTarget))
	}
	cg.emit(chunk.OpPop)
	return nil
}

// compileFnDecl compiles a named function and binds it like a let: the
// closure value is stored into a freshly declared slot so the function
// can be referenced (and, since the slot is declared before the body
// compiles, can recurse).
func (cg *Codegen) compileFnDecl(name string, params []string, body []ast.Statement) error {
	slot, err := cg.scope.declare(name)
	if err != nil {
		return err
	}
	if err := cg.compileFnValue(params, body, name); err != nil {
		return err
	}
	cg.emitByte(chunk.OpStore, byte(slot))
	return nil
}

// compileStructDecl declares a struct type: `struct Name { a, b, c }`.
// STRUCT expects the (optional) type name beneath its field-name
// strings (ops_aggregate.go's opStruct), so the name constant is
// emitted first. The resulting Struct value is bound under its own
// name like a let binding, so later code can reference the type
// (e.g. a native match on an instance's struct).
func (cg *Codegen) compileStructDecl(name string, fields []string) error {
	cg.emitConstant(value.FromString(value.NewString(name)))
	for _, f := range fields {
		cg.emitConstant(value.FromString(value.NewString(f)))
	}
	cg.emitByte(chunk.OpStruct, byte(len(fields)))
	slot, err := cg.scope.declare(name)
	if err != nil {
		return err
	}
	cg.emitByte(chunk.OpStore, byte(slot))
	return nil
}

func (cg *Codegen) compileFnValue(params []string, body []ast.Statement, name string) error {
	child := &Codegen{
		chunk:    chunk.New(),
		scope:    newFuncScope(cg.scope, false),
		fileName: cg.fileName,
	}
	child.fn = &chunk.Function{
		FnChunk:    child.chunk,
		ArityCount: len(params),
		FuncName:   name,
		FileName:   cg.fileName,
	}
	for _, p := range params {
		child.scope.declare(p)
	}
	for _, st := range body {
		if err := child.compileStatement(st); err != nil {
			return err
		}
	}
	child.emit(chunk.OpReturnNil)
	child.fn.NumNonlocals = len(child.scope.captures)

	for _, c := range child.scope.captures {
		if c.fromLocal {
			cg.emitByte(chunk.OpLoad, byte(c.parentSlot))
		} else {
			cg.emitByte(chunk.OpNonlocal, byte(c.parentNonlocal))
		}
	}
	idx := len(cg.fn.Children)
	cg.fn.Children = append(cg.fn.Children, child.fn)
	cg.emitByte(chunk.OpClosure, byte(idx))
	return nil
}

func (cg *Codegen) emitConstantIndex(val value.Value) byte {
	return cg.chunk.AddConstant(val)
}

func (cg *Codegen) emitConstant(val value.Value) {
	idx := cg.chunk.AddConstant(val)
	cg.emitByte(chunk.OpConstant, idx)
}

func (cg *Codegen) compileExpr(expr ast.Expression) error {
	switch e := expr.(type) {
	case *ast.NilLiteral:
		cg.emit(chunk.OpNil)
	case *ast.TrueLiteral:
		cg.emit(chunk.OpTrue)
	case *ast.FalseLiteral:
		cg.emit(chunk.OpFalse)
	case *ast.NumberLiteral:
		if e.Value == float64(int16(e.Value)) {
			cg.line(0)
			cg.chunk.EmitOpcode(chunk.OpInt)
			cg.chunk.EmitWord(uint16(int16(e.Value)))
		} else {
			cg.emitConstant(value.Number(e.Value))
		}
	case *ast.StringLiteral:
		cg.emitConstant(value.FromString(value.NewString(e.Value)))
	case *ast.Identifier:
		return cg.compileNameLoad(e.Name)
	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			if err := cg.compileExpr(el); err != nil {
				return err
			}
		}
		cg.emitByte(chunk.OpArray, byte(len(e.Elements)))
	case *ast.RangeLiteral:
		if err := cg.compileExpr(e.Start); err != nil {
			return err
		}
		if err := cg.compileExpr(e.End); err != nil {
			return err
		}
		cg.emit(chunk.OpRange)
	case *ast.ConstructExpr:
		return cg.compileConstruct(e)
	case *ast.UnaryExpr:
		if err := cg.compileExpr(e.Right); err != nil {
			return err
		}
		return cg.compileUnaryOp(e.Op)
	case *ast.BinaryExpr:
		if err := cg.compileExpr(e.Left); err != nil {
			return err
		}
		if err := cg.compileExpr(e.Right); err != nil {
			return err
		}
		return cg.compileBinaryOp(e.Op)
	case *ast.LogicalExpr:
		return cg.compileLogical(e)
	case *ast.AssignExpr:
		if err := cg.compileExpr(e.Value); err != nil {
			return err
		}
		return cg.compileNameStore(e.Name)
	case *ast.IndexExpr:
		if err := cg.compileExpr(e.Receiver); err != nil {
			return err
		}
		if err := cg.compileExpr(e.Index); err != nil {
			return err
		}
		cg.emit(chunk.OpGetElement)
	case *ast.IndexAssignExpr:
		if err := cg.compileExpr(e.Receiver); err != nil {
			return err
		}
		if err := cg.compileExpr(e.Index); err != nil {
			return err
		}
		cg.emit(chunk.OpFetchElement)
		if err := cg.compileExpr(e.Value); err != nil {
			return err
		}
		cg.emit(chunk.OpSetElement)
		return cg.storeBackIfIdentifier(e.Receiver)
	case *ast.FieldExpr:
		if err := cg.compileExpr(e.Receiver); err != nil {
			return err
		}
		idx := cg.emitConstantIndex(value.FromString(value.NewString(e.Name)))
		cg.emitByte(chunk.OpGetField, idx)
	case *ast.FieldAssignExpr:
		if err := cg.compileExpr(e.Receiver); err != nil {
			return err
		}
		idx := cg.emitConstantIndex(value.FromString(value.NewString(e.Name)))
		cg.emitByte(chunk.OpFetchField, idx)
		if err := cg.compileExpr(e.Value); err != nil {
			return err
		}
		cg.emit(chunk.OpSetField)
		return cg.storeBackIfIdentifier(e.Receiver)
	case *ast.CallExpr:
		if err := cg.compileExpr(e.Callee); err != nil {
			return err
		}
		for _, a := range e.Args {
			if err := cg.compileExpr(a); err != nil {
				return err
			}
		}
		cg.emitByte(chunk.OpCall, byte(len(e.Args)))
	case *ast.FnExpr:
		return cg.compileFnValue(e.Params, e.Body, "")
	case *ast.ImportExpr:
		cg.emitConstant(value.FromString(value.NewString(e.Module)))
		cg.emit(chunk.OpLoadModule)
	default:
		return fmt.Errorf("codegen: unhandled expression %T", expr)
	}
	return nil
}

func (cg *Codegen) compileConstruct(e *ast.ConstructExpr) error {
	if e.TypeName != "" {
		cg.emitConstant(value.FromString(value.NewString(e.TypeName)))
	} else {
		cg.emit(chunk.OpNil)
	}
	for _, f := range e.Fields {
		cg.emitConstant(value.FromString(value.NewString(f.Name)))
		if err := cg.compileExpr(f.Value); err != nil {
			return err
		}
	}
	cg.emitByte(chunk.OpConstruct, byte(len(e.Fields)))
	return nil
}

func (cg *Codegen) compileNameLoad(name string) error {
	kind, idx := cg.scope.resolve(name)
	switch kind {
	case resLocal:
		cg.emitByte(chunk.OpLoad, byte(idx))
	case resGlobal:
		cg.emitByte(chunk.OpGlobal, byte(idx))
	case resNonlocal:
		cg.emitByte(chunk.OpNonlocal, byte(idx))
	default:
		return fmt.Errorf("undefined name %q", name)
	}
	return nil
}

// compileNameStore only supports reassigning a name bound directly in
// the current function's own scope (STORE always addresses fr.base+
// operand, so it can only ever reach the executing frame's own slots —
// there is no SET_GLOBAL opcode). At the top level that scope IS the
// global table, so top-level reassignment works the same way. A
// captured (nonlocal) or outer-global name is read-only from inside a
// nested function, a simplification over the original's full upvalue
// semantics noted in DESIGN.md.
// compileNameStore leaves the stored value on the stack as the
// assignment expression's own result (so `x = 5;` still conforms to
// the "every expression leaves exactly one value" contract
// ExpressionStatement's trailing POP relies on, and so `let y = x = 5;`
// works). STORE pops and owns the value, so the result is re-fetched
// from the slot it now lives in rather than re-evaluated.
func (cg *Codegen) compileNameStore(name string) error {
	slot, ok := cg.scope.locals[name]
	if !ok {
		return fmt.Errorf("cannot assign to undeclared or captured name %q", name)
	}
	cg.emitByte(chunk.OpStore, byte(slot))
	if cg.scope.isGlobal {
		cg.emitByte(chunk.OpGlobal, byte(slot))
	} else {
		cg.emitByte(chunk.OpLoad, byte(slot))
	}
	return nil
}

// storeBackIfIdentifier persists SET_FIELD/SET_ELEMENT's result (which
// lands on the stack as a new container value, since both opcodes
// copy rather than mutate the original) back into the slot the
// receiver was loaded from, when that receiver is a plain name. A
// chained receiver (`a.b.c = 1`) still evaluates left-to-right and
// produces a value, it just doesn't persist past the expression —
// matching compileNameStore's own named-slots-only scope.
func (cg *Codegen) storeBackIfIdentifier(receiver ast.Expression) error {
	id, ok := receiver.(*ast.Identifier)
	if !ok {
		return nil
	}
	return cg.compileNameStore(id.Name)
}

// compileLogical short-circuits && and || using the OrPop/AndPop jump
// family, leaving exactly one value on the stack.
func (cg *Codegen) compileLogical(e *ast.LogicalExpr) error {
	if err := cg.compileExpr(e.Left); err != nil {
		return err
	}
	var op chunk.Opcode
	if e.Op == lexer.TokenAmpAmp {
		op = chunk.OpJumpIfFalseOrPop
	} else {
		op = chunk.OpJumpIfTrueOrPop
	}
	end := cg.emitJump(op)
	if err := cg.compileExpr(e.Right); err != nil {
		return err
	}
	cg.patchJumpHere(end)
	return nil
}

func (cg *Codegen) compileBinaryOp(op lexer.TokenType) error {
	switch op {
	case lexer.TokenPlus:
		cg.emit(chunk.OpAdd)
	case lexer.TokenDash:
		cg.emit(chunk.OpSubtract)
	case lexer.TokenStar:
		cg.emit(chunk.OpMultiply)
	case lexer.TokenSlash:
		cg.emit(chunk.OpDivide)
	case lexer.TokenTildeSlash:
		cg.emit(chunk.OpQuotient)
	case lexer.TokenPercent:
		cg.emit(chunk.OpRemainder)
	case lexer.TokenEqEq:
		cg.emit(chunk.OpEqual)
	case lexer.TokenBangEq:
		cg.emit(chunk.OpNotEqual)
	case lexer.TokenLt:
		cg.emit(chunk.OpLess)
	case lexer.TokenLtEq:
		cg.emit(chunk.OpNotGreater)
	case lexer.TokenGt:
		cg.emit(chunk.OpGreater)
	case lexer.TokenGtEq:
		cg.emit(chunk.OpNotLess)
	case lexer.TokenPipe:
		cg.emit(chunk.OpBitwiseOr)
	case lexer.TokenCaret:
		cg.emit(chunk.OpBitwiseXor)
	case lexer.TokenAmp:
		cg.emit(chunk.OpBitwiseAnd)
	case lexer.TokenLtLt:
		cg.emit(chunk.OpLeftShift)
	case lexer.TokenGtGt:
		cg.emit(chunk.OpRightShift)
	default:
		return fmt.Errorf("codegen: unhandled binary operator %v", op)
	}
	return nil
}

func (cg *Codegen) compileUnaryOp(op lexer.TokenType) error {
	switch op {
	case lexer.TokenDash:
		cg.emit(chunk.OpNegate)
	case lexer.TokenBang:
		cg.emit(chunk.OpNot)
	case lexer.TokenTilde:
		cg.emit(chunk.OpBitwiseNot)
	default:
		return fmt.Errorf("codegen: unhandled unary operator %v", op)
	}
	return nil
}

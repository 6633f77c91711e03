// Package ast defines the node types the parser produces and codegen
// walks. Grounded on the teacher's pkg/ast.Node/Expression/Statement
// split, widened from smog's message-send nodes to the brace-and-call
// grammar hookvm compiles (spec.md §4.6's compiler contract).
package ast

import "github.com/kristofer/hookvm/internal/compiler/lexer"

// Node is implemented by every AST node.
type Node interface {
	node()
}

// Expression is a node that evaluates to a value.
type Expression interface {
	Node
	exprNode()
}

// Statement is a node executed for effect.
type Statement interface {
	Node
	stmtNode()
}

// Program is the root of a compiled source file.
type Program struct {
	Statements []Statement
}

func (*Program) node() {}

// --- Statements ---

// LetStatement declares a new local, `let name = value` or
// `mut name = value`. Mut only affects whether later reassignment is
// permitted at the source level; both compile to the same STORE slot.
type LetStatement struct {
	Name  string
	Mut   bool
	Value Expression
}

func (*LetStatement) node()     {}
func (*LetStatement) stmtNode() {}

// ExpressionStatement wraps an expression evaluated for effect; its
// result is popped.
type ExpressionStatement struct {
	Expr Expression
}

func (*ExpressionStatement) node()     {}
func (*ExpressionStatement) stmtNode() {}

// ReturnStatement returns Value (nil Value means a bare `return`).
type ReturnStatement struct {
	Value Expression
}

func (*ReturnStatement) node()     {}
func (*ReturnStatement) stmtNode() {}

// IfStatement is `if cond { then } else { else_ }`; Else may be nil.
type IfStatement struct {
	Cond Expression
	Then []Statement
	Else []Statement
}

func (*IfStatement) node()     {}
func (*IfStatement) stmtNode() {}

// WhileStatement is `while cond { body }`.
type WhileStatement struct {
	Cond Expression
	Body []Statement
}

func (*WhileStatement) node()     {}
func (*WhileStatement) stmtNode() {}

// ForeachStatement is `foreach name in iterable { body }`.
type ForeachStatement struct {
	Name     string
	Iterable Expression
	Body     []Statement
}

func (*ForeachStatement) node()     {}
func (*ForeachStatement) stmtNode() {}

// BreakStatement exits the innermost loop.
type BreakStatement struct{}

func (*BreakStatement) node()     {}
func (*BreakStatement) stmtNode() {}

// ContinueStatement jumps to the innermost loop's next iteration.
type ContinueStatement struct{}

func (*ContinueStatement) node()     {}
func (*ContinueStatement) stmtNode() {}

// FnStatement declares a named function at the current scope:
// `fn name(params) { body }`.
type FnStatement struct {
	Name   string
	Params []string
	Body   []Statement
}

func (*FnStatement) node()     {}
func (*FnStatement) stmtNode() {}

// StructStatement declares a struct type: `struct Name { a, b, c }`.
type StructStatement struct {
	Name   string
	Fields []string
}

func (*StructStatement) node()     {}
func (*StructStatement) stmtNode() {}

// --- Expressions ---

type NilLiteral struct{}
type TrueLiteral struct{}
type FalseLiteral struct{}

func (*NilLiteral) node()     {}
func (*NilLiteral) exprNode() {}

func (*TrueLiteral) node()     {}
func (*TrueLiteral) exprNode() {}

func (*FalseLiteral) node()     {}
func (*FalseLiteral) exprNode() {}

// NumberLiteral covers both TOKEN_INT and TOKEN_FLOAT; hookvm values
// represent both as float64 (spec.md §4.1).
type NumberLiteral struct{ Value float64 }

func (*NumberLiteral) node()     {}
func (*NumberLiteral) exprNode() {}

type StringLiteral struct{ Value string }

func (*StringLiteral) node()     {}
func (*StringLiteral) exprNode() {}

type Identifier struct{ Name string }

func (*Identifier) node()     {}
func (*Identifier) exprNode() {}

// ArrayLiteral is `[e1, e2, ...]`.
type ArrayLiteral struct{ Elements []Expression }

func (*ArrayLiteral) node()     {}
func (*ArrayLiteral) exprNode() {}

// RangeLiteral is `start..end`.
type RangeLiteral struct{ Start, End Expression }

func (*RangeLiteral) node()     {}
func (*RangeLiteral) exprNode() {}

// StructFieldInit is one `name: value` initializer of a ConstructExpr.
type StructFieldInit struct {
	Name  string
	Value Expression
}

// ConstructExpr builds a struct instance: `Name{a: 1, b: 2}` (Name ==
// "" for the unnamed-struct form).
type ConstructExpr struct {
	TypeName string
	Fields   []StructFieldInit
}

func (*ConstructExpr) node()     {}
func (*ConstructExpr) exprNode() {}

// UnaryExpr is a prefix operator: `-x`, `!x`, `~x`.
type UnaryExpr struct {
	Op    lexer.TokenType
	Right Expression
}

func (*UnaryExpr) node()     {}
func (*UnaryExpr) exprNode() {}

// BinaryExpr is an infix operator application.
type BinaryExpr struct {
	Op          lexer.TokenType
	Left, Right Expression
}

func (*BinaryExpr) node()     {}
func (*BinaryExpr) exprNode() {}

// LogicalExpr is `&&`/`||`, kept distinct from BinaryExpr because
// codegen short-circuits them via JUMP_IF_FALSE_OR_POP/
// JUMP_IF_TRUE_OR_POP instead of evaluating both operands.
type LogicalExpr struct {
	Op          lexer.TokenType
	Left, Right Expression
}

func (*LogicalExpr) node()     {}
func (*LogicalExpr) exprNode() {}

// AssignExpr is `name = value`.
type AssignExpr struct {
	Name  string
	Value Expression
}

func (*AssignExpr) node()     {}
func (*AssignExpr) exprNode() {}

// IndexExpr is `receiver[index]`.
type IndexExpr struct {
	Receiver Expression
	Index    Expression
}

func (*IndexExpr) node()     {}
func (*IndexExpr) exprNode() {}

// IndexAssignExpr is `receiver[index] = value`.
type IndexAssignExpr struct {
	Receiver Expression
	Index    Expression
	Value    Expression
}

func (*IndexAssignExpr) node()     {}
func (*IndexAssignExpr) exprNode() {}

// FieldExpr is `receiver.name`.
type FieldExpr struct {
	Receiver Expression
	Name     string
}

func (*FieldExpr) node()     {}
func (*FieldExpr) exprNode() {}

// FieldAssignExpr is `receiver.name = value`.
type FieldAssignExpr struct {
	Receiver Expression
	Name     string
	Value    Expression
}

func (*FieldAssignExpr) node()     {}
func (*FieldAssignExpr) exprNode() {}

// CallExpr is `callee(args...)`.
type CallExpr struct {
	Callee Expression
	Args   []Expression
}

func (*CallExpr) node()     {}
func (*CallExpr) exprNode() {}

// FnExpr is an anonymous function literal: `fn(params) { body }`.
type FnExpr struct {
	Params []string
	Body   []Statement
}

func (*FnExpr) node()     {}
func (*FnExpr) exprNode() {}

// ImportExpr is `import "name"`, compiling to LOAD_MODULE.
type ImportExpr struct {
	Module string
}

func (*ImportExpr) node()     {}
func (*ImportExpr) exprNode() {}

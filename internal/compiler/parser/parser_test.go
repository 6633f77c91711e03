package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/hookvm/internal/compiler/ast"
	"github.com/kristofer/hookvm/internal/compiler/lexer"
)

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New("t.hk", src)
	prog, err := p.Parse()
	require.NoError(t, err)
	return prog
}

func TestParseLetStatement(t *testing.T) {
	prog := parseOK(t, `let x = 1;`)
	require.Len(t, prog.Statements, 1)
	let, ok := prog.Statements[0].(*ast.LetStatement)
	require.True(t, ok)
	assert.Equal(t, "x", let.Name)
	assert.False(t, let.Mut)
	num, ok := let.Value.(*ast.NumberLiteral)
	require.True(t, ok)
	assert.Equal(t, 1.0, num.Value)
}

func TestParseMutStatement(t *testing.T) {
	prog := parseOK(t, `mut y = 2;`)
	let := prog.Statements[0].(*ast.LetStatement)
	assert.Equal(t, "y", let.Name)
	assert.True(t, let.Mut)
}

func TestParseReturnWithAndWithoutValue(t *testing.T) {
	prog := parseOK(t, `return 1; return;`)
	require.Len(t, prog.Statements, 2)
	r1 := prog.Statements[0].(*ast.ReturnStatement)
	require.NotNil(t, r1.Value)
	r2 := prog.Statements[1].(*ast.ReturnStatement)
	assert.Nil(t, r2.Value)
}

func TestParseIfElseIfElse(t *testing.T) {
	prog := parseOK(t, `
		if a {
			return 1;
		} else if b {
			return 2;
		} else {
			return 3;
		}
	`)
	ifs := prog.Statements[0].(*ast.IfStatement)
	require.Len(t, ifs.Then, 1)
	require.Len(t, ifs.Else, 1)
	elseIf, ok := ifs.Else[0].(*ast.IfStatement)
	require.True(t, ok)
	require.Len(t, elseIf.Else, 1)
}

func TestParseWhileStatement(t *testing.T) {
	prog := parseOK(t, `while x { break; continue; }`)
	ws := prog.Statements[0].(*ast.WhileStatement)
	require.Len(t, ws.Body, 2)
	_, isBreak := ws.Body[0].(*ast.BreakStatement)
	_, isContinue := ws.Body[1].(*ast.ContinueStatement)
	assert.True(t, isBreak)
	assert.True(t, isContinue)
}

func TestParseForeachStatement(t *testing.T) {
	prog := parseOK(t, `foreach x in [1, 2] { }`)
	fe := prog.Statements[0].(*ast.ForeachStatement)
	assert.Equal(t, "x", fe.Name)
	_, ok := fe.Iterable.(*ast.ArrayLiteral)
	assert.True(t, ok)
}

func TestParseFnStatementAndParams(t *testing.T) {
	prog := parseOK(t, `fn add(a, b) { return a + b; }`)
	fn := prog.Statements[0].(*ast.FnStatement)
	assert.Equal(t, "add", fn.Name)
	assert.Equal(t, []string{"a", "b"}, fn.Params)
	require.Len(t, fn.Body, 1)
}

func TestParseFnExprAnonymous(t *testing.T) {
	prog := parseOK(t, `let f = fn(x) { return x; };`)
	let := prog.Statements[0].(*ast.LetStatement)
	fnExpr, ok := let.Value.(*ast.FnExpr)
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, fnExpr.Params)
}

func TestParseStructStatement(t *testing.T) {
	prog := parseOK(t, `struct Point { x, y }`)
	ss := prog.Statements[0].(*ast.StructStatement)
	assert.Equal(t, "Point", ss.Name)
	assert.Equal(t, []string{"x", "y"}, ss.Fields)
}

func TestParseArrayLiteral(t *testing.T) {
	prog := parseOK(t, `[1, 2, 3];`)
	es := prog.Statements[0].(*ast.ExpressionStatement)
	arr, ok := es.Expr.(*ast.ArrayLiteral)
	require.True(t, ok)
	require.Len(t, arr.Elements, 3)
}

func TestParseEmptyArrayLiteral(t *testing.T) {
	prog := parseOK(t, `[];`)
	es := prog.Statements[0].(*ast.ExpressionStatement)
	arr, ok := es.Expr.(*ast.ArrayLiteral)
	require.True(t, ok)
	assert.Nil(t, arr.Elements)
}

func TestParseRangeLiteral(t *testing.T) {
	prog := parseOK(t, `[1..5];`)
	es := prog.Statements[0].(*ast.ExpressionStatement)
	rl, ok := es.Expr.(*ast.RangeLiteral)
	require.True(t, ok)
	assert.Equal(t, 1.0, rl.Start.(*ast.NumberLiteral).Value)
	assert.Equal(t, 5.0, rl.End.(*ast.NumberLiteral).Value)
}

func TestParseAnonymousConstructExpr(t *testing.T) {
	prog := parseOK(t, `{ a: 1, b: 2 };`)
	es := prog.Statements[0].(*ast.ExpressionStatement)
	ce, ok := es.Expr.(*ast.ConstructExpr)
	require.True(t, ok)
	assert.Equal(t, "", ce.TypeName)
	require.Len(t, ce.Fields, 2)
	assert.Equal(t, "a", ce.Fields[0].Name)
}

func TestParseNamedConstructExpr(t *testing.T) {
	prog := parseOK(t, `Point{x: 1, y: 2};`)
	es := prog.Statements[0].(*ast.ExpressionStatement)
	ce, ok := es.Expr.(*ast.ConstructExpr)
	require.True(t, ok)
	assert.Equal(t, "Point", ce.TypeName)
	require.Len(t, ce.Fields, 2)
}

func TestParseSimpleAssignment(t *testing.T) {
	prog := parseOK(t, `x = 5;`)
	es := prog.Statements[0].(*ast.ExpressionStatement)
	ae, ok := es.Expr.(*ast.AssignExpr)
	require.True(t, ok)
	assert.Equal(t, "x", ae.Name)
}

func TestParseIndexAndIndexAssign(t *testing.T) {
	prog := parseOK(t, `a[0]; a[0] = 9;`)
	require.Len(t, prog.Statements, 2)
	idx := prog.Statements[0].(*ast.ExpressionStatement).Expr.(*ast.IndexExpr)
	_, ok := idx.Receiver.(*ast.Identifier)
	assert.True(t, ok)

	idxAssign := prog.Statements[1].(*ast.ExpressionStatement).Expr.(*ast.IndexAssignExpr)
	assert.Equal(t, 9.0, idxAssign.Value.(*ast.NumberLiteral).Value)
}

func TestParseFieldAndFieldAssign(t *testing.T) {
	prog := parseOK(t, `p.x; p.x = 9;`)
	require.Len(t, prog.Statements, 2)
	fe := prog.Statements[0].(*ast.ExpressionStatement).Expr.(*ast.FieldExpr)
	assert.Equal(t, "x", fe.Name)

	fa := prog.Statements[1].(*ast.ExpressionStatement).Expr.(*ast.FieldAssignExpr)
	assert.Equal(t, "x", fa.Name)
	assert.Equal(t, 9.0, fa.Value.(*ast.NumberLiteral).Value)
}

func TestParseCallExpr(t *testing.T) {
	prog := parseOK(t, `f(1, 2);`)
	call := prog.Statements[0].(*ast.ExpressionStatement).Expr.(*ast.CallExpr)
	require.Len(t, call.Args, 2)
	_, ok := call.Callee.(*ast.Identifier)
	assert.True(t, ok)
}

func TestParseImportExpr(t *testing.T) {
	prog := parseOK(t, `import "encoding";`)
	ie := prog.Statements[0].(*ast.ExpressionStatement).Expr.(*ast.ImportExpr)
	assert.Equal(t, "encoding", ie.Module)
}

func TestParseUnaryOperators(t *testing.T) {
	prog := parseOK(t, `-1; !true; ~1;`)
	require.Len(t, prog.Statements, 3)
	neg := prog.Statements[0].(*ast.ExpressionStatement).Expr.(*ast.UnaryExpr)
	assert.Equal(t, lexer.TokenDash, neg.Op)
	not := prog.Statements[1].(*ast.ExpressionStatement).Expr.(*ast.UnaryExpr)
	assert.Equal(t, lexer.TokenBang, not.Op)
}

func TestParseBinaryPrecedence(t *testing.T) {
	prog := parseOK(t, `1 + 2 * 3;`)
	bin := prog.Statements[0].(*ast.ExpressionStatement).Expr.(*ast.BinaryExpr)
	assert.Equal(t, lexer.TokenPlus, bin.Op)
	_, leftIsNum := bin.Left.(*ast.NumberLiteral)
	assert.True(t, leftIsNum)
	rightMul, ok := bin.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, lexer.TokenStar, rightMul.Op)
}

func TestParseParenGrouping(t *testing.T) {
	prog := parseOK(t, `(1 + 2) * 3;`)
	bin := prog.Statements[0].(*ast.ExpressionStatement).Expr.(*ast.BinaryExpr)
	assert.Equal(t, lexer.TokenStar, bin.Op)
	_, ok := bin.Left.(*ast.BinaryExpr)
	assert.True(t, ok)
}

func TestParseLogicalShortCircuitNodes(t *testing.T) {
	prog := parseOK(t, `a && b || c;`)
	logOr := prog.Statements[0].(*ast.ExpressionStatement).Expr.(*ast.LogicalExpr)
	assert.Equal(t, lexer.TokenPipePipe, logOr.Op)
	_, ok := logOr.Left.(*ast.LogicalExpr)
	assert.True(t, ok)
}

func TestParseChainedFieldAndIndexAndCall(t *testing.T) {
	prog := parseOK(t, `a.b[0](1);`)
	call := prog.Statements[0].(*ast.ExpressionStatement).Expr.(*ast.CallExpr)
	idx, ok := call.Callee.(*ast.IndexExpr)
	require.True(t, ok)
	field, ok := idx.Receiver.(*ast.FieldExpr)
	require.True(t, ok)
	assert.Equal(t, "b", field.Name)
}

func TestParseErrorsAccumulateOnUnexpectedToken(t *testing.T) {
	p := New("t.hk", `let = 1;`)
	_, err := p.Parse()
	require.Error(t, err)
	assert.NotEmpty(t, p.Errors())
}

func TestParseErrorsOnIllegalToken(t *testing.T) {
	p := New("t.hk", `@;`)
	_, err := p.Parse()
	require.Error(t, err)
}

// Package parser implements a recursive-descent/Pratt parser over the
// lexer's token stream, producing an ast.Program.
//
// Structurally this follows the teacher's pkg/parser.Parser: a
// curTok/peekTok two-token window, an accumulated error slice instead
// of panicking on the first mistake, and one parse function per
// grammar rule. The grammar itself is hookvm's brace-and-call syntax
// (spec.md §4.6 names compilation as an external collaborator; this
// front end exists to prove the contract, not to accept the full
// original language).
package parser

import (
	"fmt"
	"strconv"

	"github.com/kristofer/hookvm/internal/compiler/ast"
	"github.com/kristofer/hookvm/internal/compiler/lexer"
)

// precedence levels, lowest to highest.
const (
	precLowest = iota
	precOr
	precAnd
	precEquality
	precComparison
	precBitwise
	precShift
	precSum
	precProduct
	precUnary
	precCall
	precIndex
)

var precedences = map[lexer.TokenType]int{
	lexer.TokenPipePipe: precOr,
	lexer.TokenAmpAmp:   precAnd,
	lexer.TokenEqEq:     precEquality,
	lexer.TokenBangEq:   precEquality,
	lexer.TokenLt:       precComparison,
	lexer.TokenLtEq:     precComparison,
	lexer.TokenGt:       precComparison,
	lexer.TokenGtEq:     precComparison,
	lexer.TokenPipe:     precBitwise,
	lexer.TokenCaret:    precBitwise,
	lexer.TokenAmp:      precBitwise,
	lexer.TokenLtLt:     precShift,
	lexer.TokenGtGt:     precShift,
	lexer.TokenPlus:     precSum,
	lexer.TokenDash:     precSum,
	lexer.TokenStar:     precProduct,
	lexer.TokenSlash:    precProduct,
	lexer.TokenPercent:  precProduct,
	lexer.TokenTildeSlash: precProduct,
	lexer.TokenLParen:   precCall,
	lexer.TokenLBracket: precIndex,
	lexer.TokenDot:      precIndex,
}

// Parser turns a token stream into an ast.Program.
type Parser struct {
	l       *lexer.Lexer
	cur     lexer.Token
	peek    lexer.Token
	errors  []string
}

// New creates a Parser over source, tagged with file for diagnostics.
func New(file, source string) *Parser {
	p := &Parser{l: lexer.New(file, source)}
	p.advance()
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) addErrorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

// Errors returns accumulated parse errors.
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) expect(tt lexer.TokenType) bool {
	if p.cur.Type != tt {
		p.addErrorf("line %d: unexpected token %q", p.cur.Line, p.cur.Literal)
		return false
	}
	p.advance()
	return true
}

// Parse parses the whole input into a Program.
func (p *Parser) Parse() (*ast.Program, error) {
	prog := &ast.Program{}
	for p.cur.Type != lexer.TokenEOF {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
	}
	if len(p.errors) > 0 {
		return prog, fmt.Errorf("parser errors: %v", p.errors)
	}
	return prog, nil
}

func (p *Parser) parseBlock() []ast.Statement {
	p.expect(lexer.TokenLBrace)
	var stmts []ast.Statement
	for p.cur.Type != lexer.TokenRBrace && p.cur.Type != lexer.TokenEOF {
		if s := p.parseStatement(); s != nil {
			stmts = append(stmts, s)
		}
	}
	p.expect(lexer.TokenRBrace)
	return stmts
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case lexer.TokenLet, lexer.TokenMut:
		return p.parseLetStatement()
	case lexer.TokenReturn:
		return p.parseReturnStatement()
	case lexer.TokenIf:
		return p.parseIfStatement()
	case lexer.TokenWhile:
		return p.parseWhileStatement()
	case lexer.TokenForeach:
		return p.parseForeachStatement()
	case lexer.TokenFn:
		if p.peek.Type == lexer.TokenName {
			return p.parseFnStatement()
		}
	case lexer.TokenStruct:
		return p.parseStructStatement()
	case lexer.TokenBreak:
		p.advance()
		return &ast.BreakStatement{}
	case lexer.TokenContinue:
		p.advance()
		return &ast.ContinueStatement{}
	case lexer.TokenSemicolon:
		p.advance()
		return nil
	}
	expr := p.parseExpression(precLowest)
	if p.cur.Type == lexer.TokenSemicolon {
		p.advance()
	}
	if expr == nil {
		return nil
	}
	return &ast.ExpressionStatement{Expr: expr}
}

func (p *Parser) parseLetStatement() ast.Statement {
	mut := p.cur.Type == lexer.TokenMut
	p.advance()
	name := p.cur.Literal
	p.expect(lexer.TokenName)
	p.expect(lexer.TokenEq)
	value := p.parseExpression(precLowest)
	if p.cur.Type == lexer.TokenSemicolon {
		p.advance()
	}
	return &ast.LetStatement{Name: name, Mut: mut, Value: value}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	p.advance()
	if p.cur.Type == lexer.TokenSemicolon || p.cur.Type == lexer.TokenRBrace {
		if p.cur.Type == lexer.TokenSemicolon {
			p.advance()
		}
		return &ast.ReturnStatement{}
	}
	value := p.parseExpression(precLowest)
	if p.cur.Type == lexer.TokenSemicolon {
		p.advance()
	}
	return &ast.ReturnStatement{Value: value}
}

func (p *Parser) parseIfStatement() ast.Statement {
	p.advance()
	cond := p.parseExpression(precLowest)
	then := p.parseBlock()
	var els []ast.Statement
	if p.cur.Type == lexer.TokenElse {
		p.advance()
		if p.cur.Type == lexer.TokenIf {
			els = []ast.Statement{p.parseIfStatement()}
		} else {
			els = p.parseBlock()
		}
	}
	return &ast.IfStatement{Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseWhileStatement() ast.Statement {
	p.advance()
	cond := p.parseExpression(precLowest)
	body := p.parseBlock()
	return &ast.WhileStatement{Cond: cond, Body: body}
}

func (p *Parser) parseForeachStatement() ast.Statement {
	p.advance()
	name := p.cur.Literal
	p.expect(lexer.TokenName)
	p.expect(lexer.TokenIn)
	iterable := p.parseExpression(precLowest)
	body := p.parseBlock()
	return &ast.ForeachStatement{Name: name, Iterable: iterable, Body: body}
}

func (p *Parser) parseFnStatement() ast.Statement {
	p.advance()
	name := p.cur.Literal
	p.expect(lexer.TokenName)
	params := p.parseParams()
	body := p.parseBlock()
	return &ast.FnStatement{Name: name, Params: params, Body: body}
}

func (p *Parser) parseParams() []string {
	p.expect(lexer.TokenLParen)
	var params []string
	for p.cur.Type != lexer.TokenRParen && p.cur.Type != lexer.TokenEOF {
		params = append(params, p.cur.Literal)
		p.expect(lexer.TokenName)
		if p.cur.Type == lexer.TokenComma {
			p.advance()
		}
	}
	p.expect(lexer.TokenRParen)
	return params
}

func (p *Parser) parseStructStatement() ast.Statement {
	p.advance()
	name := p.cur.Literal
	p.expect(lexer.TokenName)
	p.expect(lexer.TokenLBrace)
	var fields []string
	for p.cur.Type != lexer.TokenRBrace && p.cur.Type != lexer.TokenEOF {
		fields = append(fields, p.cur.Literal)
		p.expect(lexer.TokenName)
		if p.cur.Type == lexer.TokenComma {
			p.advance()
		}
	}
	p.expect(lexer.TokenRBrace)
	return &ast.StructStatement{Name: name, Fields: fields}
}

// parseExpression implements Pratt parsing: a prefix parser for the
// current token, then a loop applying infix/postfix parsers while the
// next operator binds tighter than minPrec.
func (p *Parser) parseExpression(minPrec int) ast.Expression {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}
	for {
		prec, ok := precedences[p.cur.Type]
		if !ok || prec <= minPrec {
			break
		}
		left = p.parseInfix(left)
	}
	return left
}

func (p *Parser) parsePrefix() ast.Expression {
	switch p.cur.Type {
	case lexer.TokenInt, lexer.TokenFloat:
		v, err := strconv.ParseFloat(p.cur.Literal, 64)
		if err != nil {
			p.addErrorf("line %d: invalid number %q", p.cur.Line, p.cur.Literal)
		}
		p.advance()
		return &ast.NumberLiteral{Value: v}
	case lexer.TokenString:
		lit := p.cur.Literal
		p.advance()
		return &ast.StringLiteral{Value: lit}
	case lexer.TokenTrue:
		p.advance()
		return &ast.TrueLiteral{}
	case lexer.TokenFalse:
		p.advance()
		return &ast.FalseLiteral{}
	case lexer.TokenNil:
		p.advance()
		return &ast.NilLiteral{}
	case lexer.TokenName:
		return p.parseNameOrAssignOrConstruct()
	case lexer.TokenBang, lexer.TokenDash, lexer.TokenTilde:
		op := p.cur.Type
		p.advance()
		right := p.parseExpression(precUnary)
		return &ast.UnaryExpr{Op: op, Right: right}
	case lexer.TokenLParen:
		p.advance()
		expr := p.parseExpression(precLowest)
		p.expect(lexer.TokenRParen)
		return expr
	case lexer.TokenLBracket:
		return p.parseArrayOrRange()
	case lexer.TokenLBrace:
		return p.parseConstructBody("")
	case lexer.TokenFn:
		return p.parseFnExpr()
	case lexer.TokenImport:
		p.advance()
		mod := p.cur.Literal
		p.expect(lexer.TokenString)
		return &ast.ImportExpr{Module: mod}
	default:
		p.addErrorf("line %d: unexpected token %q", p.cur.Line, p.cur.Literal)
		p.advance()
		return nil
	}
}

// parseNameOrAssignOrConstruct resolves the three ways an identifier
// can start an expression: a plain reference, a simple assignment
// (`name = value`), or a named struct construction (`Name{...}`). A
// `{` after the name starts a construction only when it is followed by
// `}` or by `field:`; otherwise it is left for the enclosing statement
// (so `while i < n {` opens the loop body).
func (p *Parser) parseNameOrAssignOrConstruct() ast.Expression {
	name := p.cur.Literal
	p.advance()
	if p.cur.Type == lexer.TokenEq {
		p.advance()
		value := p.parseExpression(precLowest)
		return &ast.AssignExpr{Name: name, Value: value}
	}
	if p.cur.Type == lexer.TokenLBrace {
		if p.peek.Type == lexer.TokenRBrace {
			return p.parseConstructBody(name)
		}
		if p.peek.Type == lexer.TokenName {
			saved := *p.l
			next := p.l.NextToken()
			*p.l = saved
			if next.Type == lexer.TokenColon {
				return p.parseConstructBody(name)
			}
		}
	}
	return &ast.Identifier{Name: name}
}

func (p *Parser) parseConstructBody(typeName string) ast.Expression {
	p.expect(lexer.TokenLBrace)
	var fields []ast.StructFieldInit
	for p.cur.Type != lexer.TokenRBrace && p.cur.Type != lexer.TokenEOF {
		fname := p.cur.Literal
		p.expect(lexer.TokenName)
		p.expect(lexer.TokenColon)
		val := p.parseExpression(precLowest)
		fields = append(fields, ast.StructFieldInit{Name: fname, Value: val})
		if p.cur.Type == lexer.TokenComma {
			p.advance()
		}
	}
	p.expect(lexer.TokenRBrace)
	return &ast.ConstructExpr{TypeName: typeName, Fields: fields}
}

func (p *Parser) parseArrayOrRange() ast.Expression {
	p.advance()
	if p.cur.Type == lexer.TokenRBracket {
		p.advance()
		return &ast.ArrayLiteral{}
	}
	first := p.parseExpression(precLowest)
	if p.cur.Type == lexer.TokenDotDot {
		p.advance()
		end := p.parseExpression(precLowest)
		p.expect(lexer.TokenRBracket)
		return &ast.RangeLiteral{Start: first, End: end}
	}
	elems := []ast.Expression{first}
	for p.cur.Type == lexer.TokenComma {
		p.advance()
		elems = append(elems, p.parseExpression(precLowest))
	}
	p.expect(lexer.TokenRBracket)
	return &ast.ArrayLiteral{Elements: elems}
}

func (p *Parser) parseFnExpr() ast.Expression {
	p.advance()
	params := p.parseParams()
	body := p.parseBlock()
	return &ast.FnExpr{Params: params, Body: body}
}

func (p *Parser) parseInfix(left ast.Expression) ast.Expression {
	switch p.cur.Type {
	case lexer.TokenLParen:
		return p.parseCall(left)
	case lexer.TokenLBracket:
		return p.parseIndex(left)
	case lexer.TokenDot:
		return p.parseField(left)
	case lexer.TokenAmpAmp, lexer.TokenPipePipe:
		op := p.cur.Type
		prec := precedences[op]
		p.advance()
		right := p.parseExpression(prec)
		return &ast.LogicalExpr{Op: op, Left: left, Right: right}
	default:
		op := p.cur.Type
		prec := precedences[op]
		p.advance()
		right := p.parseExpression(prec)
		return &ast.BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseCall(callee ast.Expression) ast.Expression {
	p.advance()
	var args []ast.Expression
	for p.cur.Type != lexer.TokenRParen && p.cur.Type != lexer.TokenEOF {
		args = append(args, p.parseExpression(precLowest))
		if p.cur.Type == lexer.TokenComma {
			p.advance()
		}
	}
	p.expect(lexer.TokenRParen)
	return &ast.CallExpr{Callee: callee, Args: args}
}

func (p *Parser) parseIndex(receiver ast.Expression) ast.Expression {
	p.advance()
	index := p.parseExpression(precLowest)
	p.expect(lexer.TokenRBracket)
	if p.cur.Type == lexer.TokenEq {
		p.advance()
		value := p.parseExpression(precLowest)
		return &ast.IndexAssignExpr{Receiver: receiver, Index: index, Value: value}
	}
	return &ast.IndexExpr{Receiver: receiver, Index: index}
}

func (p *Parser) parseField(receiver ast.Expression) ast.Expression {
	p.advance()
	name := p.cur.Literal
	p.expect(lexer.TokenName)
	if p.cur.Type == lexer.TokenEq {
		p.advance()
		value := p.parseExpression(precLowest)
		return &ast.FieldAssignExpr{Receiver: receiver, Name: name, Value: value}
	}
	return &ast.FieldExpr{Receiver: receiver, Name: name}
}

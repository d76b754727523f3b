// Package parser implements a precedence-climbing (Pratt) parser for
// gmscript source: given a lexer it produces either a Program or a list of
// diagnostic errors with spans. Error recovery between top-level items
// resynchronizes at the next top-level boundary so a single pass can
// report more than one syntax error.
package parser

import (
	"fmt"

	"github.com/bramhosler/gmscript/internal/ast"
	"github.com/bramhosler/gmscript/internal/lexer"
	"github.com/bramhosler/gmscript/pkg/token"
)

// Precedence levels, lowest to highest (spec §4.2).
const (
	_ int = iota
	LOWEST
	ASSIGN    // = += -= *= /= %=
	TERNARY   // ?:
	LOGIC_OR  // ||
	LOGIC_XOR // ^^
	LOGIC_AND // &&
	BIT_OR    // |
	BIT_XOR   // ^
	BIT_AND   // &
	EQUALITY  // == !=
	RELATIONAL // < <= > >=
	SUM       // + -
	PRODUCT   // * / %
	POSTFIX   // postfix ++ --
	PREFIX    // prefix ! ~ + - ++ --
)

var precedences = map[token.Type]int{
	token.ASSIGN: ASSIGN, token.PLUS_ASSIGN: ASSIGN, token.MINUS_ASSIGN: ASSIGN,
	token.STAR_ASSIGN: ASSIGN, token.SLASH_ASSIGN: ASSIGN, token.PERCENT_ASSIGN: ASSIGN,

	token.QUESTION: TERNARY,

	token.OR_OR:  LOGIC_OR,
	token.XOR_XOR: LOGIC_XOR,
	token.AND_AND: LOGIC_AND,

	token.PIPE:  BIT_OR,
	token.CARET: BIT_XOR,
	token.AMP:   BIT_AND,

	token.EQ: EQUALITY, token.NEQ: EQUALITY,
	token.LT: RELATIONAL, token.LE: RELATIONAL, token.GT: RELATIONAL, token.GE: RELATIONAL,

	token.PLUS: SUM, token.MINUS: SUM,
	token.STAR: PRODUCT, token.SLASH: PRODUCT, token.PERCENT: PRODUCT,

	token.INC: POSTFIX, token.DEC: POSTFIX,
}

// ParseError is a single diagnostic with a span and an explanatory reason.
type ParseError struct {
	Message string
	Span    token.Span
	Reason  string
}

func (e ParseError) Error() string { return e.Message }

// Parser consumes a lexer's token stream and builds a Program.
type Parser struct {
	l    *lexer.Lexer
	cur  token.Token
	peek token.Token

	errors []ParseError
}

// New creates a Parser reading from l and primes the two-token lookahead.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.advance()
	p.advance()
	return p
}

// Errors returns accumulated parse errors.
func (p *Parser) Errors() []ParseError { return p.errors }

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek.Type == t }

func (p *Parser) expect(t token.Type) bool {
	if p.curIs(t) {
		p.advance()
		return true
	}
	p.errorf(p.cur.Span, "unexpected-token", "expected %s, got %s", t, p.cur.Type)
	return false
}

func (p *Parser) errorf(span token.Span, reason, format string, args ...any) {
	p.errors = append(p.errors, ParseError{
		Message: fmt.Sprintf(format, args...),
		Span:    span,
		Reason:  reason,
	})
}

// skipTerminators consumes a run of `;` / NEWLINE tokens (spec §4.2
// `terminator := (';' | NEWLINE)+`). The run may be empty, so callers never
// have to special-case trailing blank lines.
func (p *Parser) skipTerminators() {
	for p.curIs(token.SEMICOLON) || p.curIs(token.NEWLINE) {
		p.advance()
	}
}

func (p *Parser) skipOneTerminatorRun() {
	if !p.curIs(token.SEMICOLON) && !p.curIs(token.NEWLINE) && !p.curIs(token.EOF) && !p.curIs(token.RBRACE) {
		p.errorf(p.cur.Span, "expected-terminator", "expected ';' or newline, got %s", p.cur.Type)
	}
	p.skipTerminators()
}

// ParseProgram parses the full token stream into a Program. The Program is
// returned even when errors occurred: it then holds every top-level item
// recovery could salvage, and the items that failed to parse are missing
// from it. Callers are expected to treat a non-empty error list as a
// failed compile.
func (p *Parser) ParseProgram() (*ast.Program, []ParseError) {
	prog := &ast.Program{}
	p.skipTerminators()
	for !p.curIs(token.EOF) {
		item := p.parseTopLevel()
		if item != nil {
			prog.Items = append(prog.Items, item)
		}
		p.skipTerminators()
	}
	return prog, p.errors
}

func (p *Parser) parseTopLevel() ast.TopLevel {
	if p.curIs(token.FUNCTION) {
		fd := p.parseFuncDef()
		if fd == nil {
			p.synchronize()
			return nil
		}
		return fd
	}

	stmt := p.parseStatement()
	if stmt == nil {
		p.synchronize()
		return nil
	}
	return &ast.StmtTopLevel{Stmt: stmt}
}

// synchronize discards tokens until the next top-level boundary (a
// terminator, EOF, or the `function` keyword) so subsequent top-level
// items can still be parsed after an error (spec §4.2).
func (p *Parser) synchronize() {
	for !p.curIs(token.EOF) {
		if p.curIs(token.SEMICOLON) || p.curIs(token.NEWLINE) {
			p.advance()
			return
		}
		if p.curIs(token.FUNCTION) {
			return
		}
		p.advance()
	}
}

func (p *Parser) parseFuncDef() *ast.FuncDef {
	start := p.cur.Span.Start
	p.advance() // consume 'function'

	if !p.curIs(token.IDENT) {
		p.errorf(p.cur.Span, "expected-name", "expected function name, got %s", p.cur.Type)
		return nil
	}
	name := p.cur.Literal
	p.advance()

	if !p.expect(token.LPAREN) {
		return nil
	}
	var params []string
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		if !p.curIs(token.IDENT) {
			p.errorf(p.cur.Span, "expected-param", "expected parameter name, got %s", p.cur.Type)
			return nil
		}
		params = append(params, p.cur.Literal)
		p.advance()
		if p.curIs(token.COMMA) {
			p.advance() // trailing commas accepted (spec §4.2)
		} else {
			break
		}
	}
	if !p.expect(token.RPAREN) {
		return nil
	}

	p.skipTerminators()
	if !p.curIs(token.LBRACE) {
		p.errorf(p.cur.Span, "expected-body", "expected '{' to start function body, got %s", p.cur.Type)
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}

	return &ast.FuncDef{
		Name:   name,
		Params: params,
		Body:   body.Stmts,
		Sp:     token.Span{Start: start, End: body.Sp.End},
	}
}

// parseBlock parses a brace-delimited statement list. The body is a flat
// list of statements (no implicit nested block), matching spec §3.2.
func (p *Parser) parseBlock() *ast.Block {
	start := p.cur.Span.Start
	if !p.expect(token.LBRACE) {
		return nil
	}
	p.skipTerminators()

	var stmts []ast.Stmt
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt == nil {
			p.synchronizeInBlock()
			continue
		}
		stmts = append(stmts, stmt)
		p.skipTerminators()
	}
	end := p.cur.Span.End
	p.expect(token.RBRACE)

	return &ast.Block{Stmts: stmts, Sp: token.Span{Start: start, End: end}}
}

// synchronizeInBlock recovers from a statement-level error without leaving
// the enclosing block: it advances past the offending token up to the next
// terminator, '}', or EOF.
func (p *Parser) synchronizeInBlock() {
	for !p.curIs(token.EOF) && !p.curIs(token.RBRACE) {
		if p.curIs(token.SEMICOLON) || p.curIs(token.NEWLINE) {
			p.advance()
			return
		}
		p.advance()
	}
}

package parser

import (
	"github.com/bramhosler/gmscript/internal/ast"
	"github.com/bramhosler/gmscript/pkg/token"
)

var compoundAssignOps = map[token.Type]ast.AssignOp{
	token.PLUS_ASSIGN:    ast.AssignAdd,
	token.MINUS_ASSIGN:   ast.AssignSub,
	token.STAR_ASSIGN:    ast.AssignMul,
	token.SLASH_ASSIGN:   ast.AssignDiv,
	token.PERCENT_ASSIGN: ast.AssignMod,
}

var binaryOps = map[token.Type]ast.BinaryOp{
	token.PLUS: ast.BinAdd, token.MINUS: ast.BinSub,
	token.STAR: ast.BinMul, token.SLASH: ast.BinDiv, token.PERCENT: ast.BinMod,
	token.EQ: ast.BinEq, token.NEQ: ast.BinNeq,
	token.LT: ast.BinLt, token.LE: ast.BinLe, token.GT: ast.BinGt, token.GE: ast.BinGe,
	token.AND_AND: ast.BinAnd, token.OR_OR: ast.BinOr, token.XOR_XOR: ast.BinXor,
	token.PIPE: ast.BinBitOr, token.CARET: ast.BinBitXor, token.AMP: ast.BinBitAnd,
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.cur.Type]; ok {
		return prec
	}
	return LOWEST
}

// parseExpression implements precedence-climbing: parse a prefix/atom,
// then repeatedly fold in infix operators whose precedence exceeds minPrec.
func (p *Parser) parseExpression(minPrec int) ast.Expr {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}

	for {
		prec, ok := precedences[p.cur.Type]
		if !ok || prec <= minPrec {
			break
		}

		switch p.cur.Type {
		case token.ASSIGN:
			left = p.parseAssign(left, ast.AssignPlain)
		case token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN, token.PERCENT_ASSIGN:
			left = p.parseAssign(left, compoundAssignOps[p.cur.Type])
		case token.QUESTION:
			left = p.parseTernary(left)
		case token.INC, token.DEC:
			left = p.parsePostfixIncDec(left)
		default:
			left = p.parseBinary(left)
		}
		if left == nil {
			return nil
		}
	}
	return left
}

// parseAssign requires left to be an Identifier (spec §3.2/§4.2 invariant:
// assignment left-hand side must be an identifier). Assignment is
// right-associative by recursing back into parseExpression at the same
// precedence level rather than descending to a tighter one (spec §9's
// "assignment as nesting" decision: `a = b = 1` parses as `a = (b = 1)`).
func (p *Parser) parseAssign(left ast.Expr, op ast.AssignOp) ast.Expr {
	target, ok := left.(*ast.Identifier)
	if !ok {
		p.errorf(left.Span(), "invalid-assign-target", "assignment target must be an identifier")
		return nil
	}
	p.advance() // consume the assignment operator
	value := p.parseExpression(ASSIGN - 1)
	if value == nil {
		return nil
	}
	return &ast.Assign{Op: op, Target: target, Value: value, Sp: token.Span{Start: target.Sp.Start, End: value.Span().End}}
}

// parseTernary parses `cond ? then : else`; the else-branch is parsed at
// the logical-or level (spec §4.2 level 2).
func (p *Parser) parseTernary(cond ast.Expr) ast.Expr {
	p.advance() // consume '?'
	// The then-branch is bounded by the ':' token rather than by
	// precedence, so it is parsed as a full expression.
	thenExpr := p.parseExpression(LOWEST)
	if thenExpr == nil {
		return nil
	}
	if !p.expect(token.COLON) {
		return nil
	}
	elseExpr := p.parseExpression(LOGIC_OR - 1)
	if elseExpr == nil {
		return nil
	}
	return &ast.Ternary{Cond: cond, Then: thenExpr, Else: elseExpr, Sp: token.Span{Start: cond.Span().Start, End: elseExpr.Span().End}}
}

// parsePostfixIncDec requires the operand to be an Identifier (spec §4.2
// edge case: postfix ++/-- on a non-identifier is a parse error).
func (p *Parser) parsePostfixIncDec(left ast.Expr) ast.Expr {
	target, ok := left.(*ast.Identifier)
	if !ok {
		p.errorf(p.cur.Span, "invalid-incdec-target", "postfix %s requires an identifier operand", p.cur.Type)
		return nil
	}
	inc := p.cur.Type == token.INC
	sp := token.Span{Start: target.Sp.Start, End: p.cur.Span.End}
	p.advance()
	return &ast.IncDec{Target: target, Inc: inc, Postfix: true, Sp: sp}
}

func (p *Parser) parseBinary(left ast.Expr) ast.Expr {
	opTokType := p.cur.Type
	prec := precedences[opTokType]
	p.advance()
	right := p.parseExpression(prec)
	if right == nil {
		return nil
	}
	op, ok := binaryOps[opTokType]
	if !ok {
		p.errorf(left.Span(), "unknown-binary-op", "unsupported binary operator %s", opTokType)
		return nil
	}
	return &ast.Binary{Op: op, Left: left, Right: right, Sp: token.Span{Start: left.Span().Start, End: right.Span().End}}
}

// parsePrefix parses a prefix unary operator or an atom (spec §4.2 levels
// 14 and 15).
func (p *Parser) parsePrefix() ast.Expr {
	switch p.cur.Type {
	case token.BANG:
		return p.parseUnary(ast.UnaryNot)
	case token.TILDE:
		return p.parseUnary(ast.UnaryBNot)
	case token.PLUS:
		return p.parseUnary(ast.UnaryPlus)
	case token.MINUS:
		return p.parseUnary(ast.UnaryMinus)
	case token.INC, token.DEC:
		return p.parsePrefixIncDec()
	default:
		return p.parseAtom()
	}
}

func (p *Parser) parseUnary(op ast.UnaryOp) ast.Expr {
	start := p.cur.Span.Start
	p.advance()
	operand := p.parseExpression(PREFIX)
	if operand == nil {
		return nil
	}
	return &ast.Unary{Op: op, Operand: operand, Sp: token.Span{Start: start, End: operand.Span().End}}
}

// parsePrefixIncDec requires the following atom to be an identifier (spec
// §4.2 edge case: prefix ++/-- on a literal or non-identifier is a parse
// error; the parser recognizes ++/-- only when the next atom is an
// identifier).
func (p *Parser) parsePrefixIncDec() ast.Expr {
	start := p.cur.Span.Start
	inc := p.cur.Type == token.INC
	p.advance()
	if !p.curIs(token.IDENT) {
		p.errorf(p.cur.Span, "invalid-incdec-target", "prefix ++/-- requires an identifier operand, got %s", p.cur.Type)
		return nil
	}
	target := &ast.Identifier{Name: p.cur.Literal, Sp: p.cur.Span}
	end := p.cur.Span.End
	p.advance()
	return &ast.IncDec{Target: target, Inc: inc, Postfix: false, Sp: token.Span{Start: start, End: end}}
}

func (p *Parser) parseAtom() ast.Expr {
	switch p.cur.Type {
	case token.NUMBER:
		n := &ast.NumberLit{Value: p.cur.Literal, Sp: p.cur.Span}
		p.advance()
		return n
	case token.STRING:
		s := &ast.StringLit{Value: p.cur.Literal, Sp: p.cur.Span}
		p.advance()
		return s
	case token.TRUE:
		b := &ast.BoolLit{Value: true, Sp: p.cur.Span}
		p.advance()
		return b
	case token.FALSE:
		b := &ast.BoolLit{Value: false, Sp: p.cur.Span}
		p.advance()
		return b
	case token.NULL:
		n := &ast.NullLit{Sp: p.cur.Span}
		p.advance()
		return n
	case token.IDENT:
		return p.parseIdentOrCall()
	case token.LPAREN:
		return p.parseParen()
	default:
		p.errorf(p.cur.Span, "unexpected-token", "unexpected token %s in expression", p.cur.Type)
		p.advance()
		return nil
	}
}

func (p *Parser) parseIdentOrCall() ast.Expr {
	name := p.cur.Literal
	start := p.cur.Span
	p.advance()

	if !p.curIs(token.LPAREN) {
		return &ast.Identifier{Name: name, Sp: start}
	}

	p.advance() // consume '('
	var args []ast.Expr
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		arg := p.parseExpression(ASSIGN)
		if arg == nil {
			return nil
		}
		args = append(args, arg)
		if p.curIs(token.COMMA) {
			p.advance() // trailing commas accepted (spec §4.2)
			continue
		}
		break
	}
	end := p.cur.Span.End
	if !p.expect(token.RPAREN) {
		return nil
	}
	return &ast.Call{Callee: name, Args: args, Sp: token.Span{Start: start.Start, End: end}}
}

func (p *Parser) parseParen() ast.Expr {
	start := p.cur.Span.Start
	p.advance() // consume '('
	inner := p.parseExpression(LOWEST)
	if inner == nil {
		return nil
	}
	end := p.cur.Span.End
	if !p.expect(token.RPAREN) {
		return nil
	}
	return &ast.Paren{Inner: inner, Sp: token.Span{Start: start, End: end}}
}

package parser

import (
	"github.com/bramhosler/gmscript/internal/ast"
	"github.com/bramhosler/gmscript/pkg/token"
)

// parseStatement dispatches on the current token to one of the statement
// forms in the grammar outline (spec §4.2). Bare-statement forms (not
// brace-delimited) are returned unwrapped; only an explicit `{ ... }`
// surface form produces an *ast.Block, per the spec §3.2 invariant.
func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur.Type {
	case token.LBRACE:
		return p.parseBlock()
	case token.VAR:
		return p.parseVarDecl()
	case token.IF:
		return p.parseIf()
	case token.RETURN:
		return p.parseReturn()
	case token.BREAK:
		s := &ast.Break{Sp: p.cur.Span}
		p.advance()
		p.skipOneTerminatorRun()
		return s
	case token.CONTINUE:
		s := &ast.Continue{Sp: p.cur.Span}
		p.advance()
		p.skipOneTerminatorRun()
		return s
	case token.REPEAT:
		return p.parseRepeat()
	case token.WHILE:
		return p.parseWhile()
	case token.DO:
		return p.parseDoUntil()
	case token.FOR:
		return p.parseFor()
	default:
		return p.parseExprStatement()
	}
}

// parseSingleStatementBody parses the single statement accepted as an
// if/loop body: any form parseStatement accepts (return, break, continue,
// var-decl, expression, a nested if, a loop, or a block).
func (p *Parser) parseSingleStatementBody() ast.Stmt {
	return p.parseStatement()
}

func (p *Parser) parseVarDecl() ast.Stmt {
	start := p.cur.Span.Start
	p.advance() // consume 'var'

	var entries []ast.VarDeclEntry
	for {
		if !p.curIs(token.IDENT) {
			p.errorf(p.cur.Span, "expected-var-name", "expected identifier in var declaration, got %s", p.cur.Type)
			return nil
		}
		name := p.cur.Literal
		p.advance()

		var init ast.Expr
		if p.curIs(token.ASSIGN) {
			p.advance()
			init = p.parseExpression(ASSIGN)
			if init == nil {
				return nil
			}
		}
		entries = append(entries, ast.VarDeclEntry{Name: name, Init: init})

		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}

	end := p.cur.Span.End
	p.skipOneTerminatorRun()
	return &ast.VarDecl{Entries: entries, Sp: token.Span{Start: start, End: end}}
}

func (p *Parser) parseExprStatement() ast.Stmt {
	start := p.cur.Span.Start
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	end := p.cur.Span.End
	p.skipOneTerminatorRun()
	return &ast.ExprStmt{Expr: expr, Sp: token.Span{Start: start, End: end}}
}

func (p *Parser) parseReturn() ast.Stmt {
	start := p.cur.Span.Start
	p.advance() // consume 'return'

	var value ast.Expr
	if !p.curIs(token.SEMICOLON) && !p.curIs(token.NEWLINE) && !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		value = p.parseExpression(LOWEST)
	}
	end := p.cur.Span.End
	p.skipOneTerminatorRun()
	return &ast.Return{Value: value, Sp: token.Span{Start: start, End: end}}
}

// parseParenOrBareCondition accepts both `(e)` and bare `e` surface forms
// (spec §4.2's "while likewise accepts (e) or bare e").
func (p *Parser) parseParenOrBareCondition() ast.Expr {
	if p.curIs(token.LPAREN) {
		p.advance()
		cond := p.parseExpression(LOWEST)
		p.expect(token.RPAREN)
		return cond
	}
	return p.parseExpression(LOWEST)
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.cur.Span.Start
	p.advance() // consume 'if'

	cond := p.parseParenOrBareCondition()
	if cond == nil {
		return nil
	}

	if p.curIs(token.THEN) {
		p.advance()
	}

	thenBody := p.parseSingleStatementBody()
	if thenBody == nil {
		return nil
	}

	end := thenBody.Span().End
	var elseBody ast.Stmt

	// A terminator (including the documented semicolon-before-else case,
	// spec §9 Open Questions) may separate the then-branch from `else`.
	// Consuming it unconditionally here is safe even when no `else`
	// follows: it is a statement terminator the enclosing block would
	// have skipped anyway.
	p.skipTerminators()
	if p.curIs(token.ELSE) {
		p.advance()
		elseBody = p.parseSingleStatementBody()
		if elseBody == nil {
			return nil
		}
		end = elseBody.Span().End
	}

	return &ast.If{Cond: cond, ThenBody: thenBody, ElseBody: elseBody, Sp: token.Span{Start: start, End: end}}
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.cur.Span.Start
	p.advance() // consume 'while'

	cond := p.parseParenOrBareCondition()
	if cond == nil {
		return nil
	}
	body := p.parseSingleStatementBody()
	if body == nil {
		return nil
	}
	return &ast.While{Cond: cond, Body: body, Sp: token.Span{Start: start, End: body.Span().End}}
}

func (p *Parser) parseDoUntil() ast.Stmt {
	start := p.cur.Span.Start
	p.advance() // consume 'do'

	body := p.parseSingleStatementBody()
	if body == nil {
		return nil
	}
	p.skipTerminators()
	if !p.expect(token.UNTIL) {
		return nil
	}
	cond := p.parseParenOrBareCondition()
	if cond == nil {
		return nil
	}
	end := p.cur.Span.End
	p.skipOneTerminatorRun()
	return &ast.DoUntil{Body: body, Cond: cond, Sp: token.Span{Start: start, End: end}}
}

func (p *Parser) parseRepeat() ast.Stmt {
	start := p.cur.Span.Start
	p.advance() // consume 'repeat'

	if !p.expect(token.LPAREN) {
		return nil
	}
	count := p.parseExpression(LOWEST)
	if count == nil {
		return nil
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	body := p.parseSingleStatementBody()
	if body == nil {
		return nil
	}
	return &ast.Repeat{Count: count, Body: body, Sp: token.Span{Start: start, End: body.Span().End}}
}

func (p *Parser) parseFor() ast.Stmt {
	start := p.cur.Span.Start
	p.advance() // consume 'for'

	if !p.expect(token.LPAREN) {
		return nil
	}

	var init ast.Stmt
	if !p.curIs(token.SEMICOLON) {
		if p.curIs(token.VAR) {
			init = p.parseForVarDecl()
		} else {
			init = p.parseForExprStmt()
		}
		if init == nil {
			return nil
		}
	} else {
		p.advance()
	}

	var cond ast.Expr
	if !p.curIs(token.SEMICOLON) {
		cond = p.parseExpression(LOWEST)
		if cond == nil {
			return nil
		}
	}
	if !p.expect(token.SEMICOLON) {
		return nil
	}

	var update ast.Stmt
	if !p.curIs(token.RPAREN) {
		updateStart := p.cur.Span.Start
		updateExpr := p.parseExpression(LOWEST)
		if updateExpr == nil {
			return nil
		}
		update = &ast.ExprStmt{Expr: updateExpr, Sp: token.Span{Start: updateStart, End: p.cur.Span.Start}}
	}
	if !p.expect(token.RPAREN) {
		return nil
	}

	body := p.parseSingleStatementBody()
	if body == nil {
		return nil
	}

	return &ast.For{Init: init, Cond: cond, Update: update, Body: body, Sp: token.Span{Start: start, End: body.Span().End}}
}

// parseForVarDecl parses the `var x = ...` form of a for-header init clause
// without consuming the trailing semicolon itself (the caller does).
func (p *Parser) parseForVarDecl() ast.Stmt {
	start := p.cur.Span.Start
	p.advance() // consume 'var'

	if !p.curIs(token.IDENT) {
		p.errorf(p.cur.Span, "expected-var-name", "expected identifier in for-loop var declaration, got %s", p.cur.Type)
		return nil
	}
	name := p.cur.Literal
	p.advance()

	var init ast.Expr
	if p.curIs(token.ASSIGN) {
		p.advance()
		init = p.parseExpression(ASSIGN)
		if init == nil {
			return nil
		}
	}
	decl := &ast.VarDecl{Entries: []ast.VarDeclEntry{{Name: name, Init: init}}, Sp: token.Span{Start: start, End: p.cur.Span.Start}}
	if !p.expect(token.SEMICOLON) {
		return nil
	}
	return decl
}

func (p *Parser) parseForExprStmt() ast.Stmt {
	start := p.cur.Span.Start
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	stmt := &ast.ExprStmt{Expr: expr, Sp: token.Span{Start: start, End: p.cur.Span.Start}}
	if !p.expect(token.SEMICOLON) {
		return nil
	}
	return stmt
}

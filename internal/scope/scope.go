// Package scope implements the lexical scope analyzer (spec component C4):
// given an AST root, it builds a tree of scopes mirroring the program's
// lexical structure and records where each name is introduced. It never
// rejects a program; name resolution against these scopes is the IR
// generator's job, not this package's.
package scope

import (
	"github.com/bramhosler/gmscript/internal/ast"
)

// SymbolKind distinguishes a plain variable from a function declaration.
type SymbolKind int

const (
	SymbolVariable SymbolKind = iota
	SymbolFunction
)

// Symbol is one name recorded in a Scope.
type Symbol struct {
	Name       string
	Kind       SymbolKind
	Parameters []string // non-nil only for SymbolFunction
}

// Scope is one node in the scope tree: a symbol table plus its children,
// in the order they were opened during the walk.
type Scope struct {
	Symbols  map[string]*Symbol
	Children []*Scope
	Parent   *Scope
}

func newScope(parent *Scope) *Scope {
	s := &Scope{Symbols: make(map[string]*Symbol), Parent: parent}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// define records name in s. Duplicate declarations do not crash the build:
// the last write wins in the table, but both occurrences are considered
// recorded by the caller (this package does not track occurrence counts,
// only the final binding, matching spec §3.3's tolerance policy).
func (s *Scope) define(name string, kind SymbolKind, params []string) {
	s.Symbols[name] = &Symbol{Name: name, Kind: kind, Parameters: params}
}

// Analyzer walks an AST and builds its scope tree. It implements
// ast.Visitor; VisitExpr is a no-op since expressions introduce no scopes
// and identifier uses are not recorded here (spec §4.3).
type Analyzer struct {
	current *Scope
}

// Analyze builds the scope tree rooted at a fresh global scope and returns
// it. It never fails.
func Analyze(program *ast.Program) *Scope {
	a := &Analyzer{}
	root := newScope(nil)
	a.current = root
	for _, item := range program.Items {
		item.Accept(a)
	}
	return root
}

func (a *Analyzer) VisitProgram(p *ast.Program) (any, error) {
	for _, item := range p.Items {
		item.Accept(a)
	}
	return nil, nil
}

func (a *Analyzer) VisitTopLevel(t ast.TopLevel) (any, error) {
	switch n := t.(type) {
	case *ast.FuncDef:
		return a.VisitFuncDef(n)
	case *ast.StmtTopLevel:
		n.Stmt.Accept(a)
	}
	return nil, nil
}

// VisitFuncDef records the function's name in the enclosing scope, then
// opens one child scope for its body holding the parameters as variables
// and any `var` declarations the body introduces (spec §4.3).
func (a *Analyzer) VisitFuncDef(f *ast.FuncDef) (any, error) {
	a.current.define(f.Name, SymbolFunction, f.Params)

	outer := a.current
	body := newScope(outer)
	a.current = body
	for _, p := range f.Params {
		body.define(p, SymbolVariable, nil)
	}
	for _, stmt := range f.Body {
		stmt.Accept(a)
	}
	a.current = outer
	return nil, nil
}

func (a *Analyzer) VisitFunc(f *ast.Func) (any, error) {
	outer := a.current
	body := newScope(outer)
	a.current = body
	for _, p := range f.Params {
		body.define(p, SymbolVariable, nil)
	}
	for _, stmt := range f.Body {
		stmt.Accept(a)
	}
	a.current = outer
	return nil, nil
}

// VisitStmt opens child scopes for every scope-opening construct named in
// spec §4.3 and recurses. Blocks that appear as loop/if bodies get their
// own scope in addition to the construct's own scope, matching the "two
// scopes deep" invariant for `if (e) { ... }` and similar.
func (a *Analyzer) VisitStmt(s ast.Stmt) (any, error) {
	switch n := s.(type) {
	case *ast.VarDecl:
		for _, entry := range n.Entries {
			a.current.define(entry.Name, SymbolVariable, nil)
			if entry.Init != nil {
				entry.Init.Accept(a)
			}
		}

	case *ast.Block:
		a.inScope(func() {
			for _, stmt := range n.Stmts {
				stmt.Accept(a)
			}
		})

	case *ast.ExprStmt:
		n.Expr.Accept(a)

	case *ast.Return:
		if n.Value != nil {
			n.Value.Accept(a)
		}

	case *ast.Break, *ast.Continue:
		// no scope, no symbols

	case *ast.If:
		n.Cond.Accept(a)
		a.inScope(func() { n.ThenBody.Accept(a) })
		if n.ElseBody != nil {
			a.inScope(func() { n.ElseBody.Accept(a) })
		}

	case *ast.While:
		n.Cond.Accept(a)
		a.inScope(func() { n.Body.Accept(a) })

	case *ast.DoUntil:
		// The until condition is analyzed in the outer scope (spec §4.3).
		a.inScope(func() { n.Body.Accept(a) })
		n.Cond.Accept(a)

	case *ast.Repeat:
		n.Count.Accept(a)
		a.inScope(func() { n.Body.Accept(a) })

	case *ast.For:
		a.inScope(func() {
			if n.Init != nil {
				n.Init.Accept(a)
			}
			if n.Cond != nil {
				n.Cond.Accept(a)
			}
			if n.Update != nil {
				n.Update.Accept(a)
			}
			n.Body.Accept(a)
		})
	}
	return nil, nil
}

// VisitExpr is a no-op: expressions never open scopes, and identifier uses
// are not recorded here (name resolution is deferred to lowering, spec §9).
func (a *Analyzer) VisitExpr(e ast.Expr) (any, error) { return nil, nil }

// inScope pushes a fresh child scope, runs fn with it current, and restores
// the previous current scope afterward.
func (a *Analyzer) inScope(fn func()) {
	outer := a.current
	a.current = newScope(outer)
	fn()
	a.current = outer
}

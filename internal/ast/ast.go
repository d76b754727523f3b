// Package ast defines the gmscript abstract syntax tree: a closed set of
// expression, statement, and top-level node types, each dispatching through
// a shared Visitor interface. Nodes are produced by the parser in source
// order, owned by the Program root, and never mutated afterward.
package ast

import "github.com/bramhosler/gmscript/pkg/token"

// Visitor is the interface for walking the tree. It is generic in its
// return type; implementations return whatever is meaningful for their
// pass (the scope analyzer returns nil). The IR generator in internal/ir
// does not implement it and walks the tree with its own type switches.
type Visitor interface {
	VisitProgram(p *Program) (any, error)
	VisitTopLevel(t TopLevel) (any, error)
	VisitFuncDef(f *FuncDef) (any, error)
	VisitFunc(f *Func) (any, error)
	VisitStmt(s Stmt) (any, error)
	VisitExpr(e Expr) (any, error)
}

// Node is implemented by every AST node.
type Node interface {
	Span() token.Span
}

// Program is the root of the tree: an ordered sequence of top-level items.
type Program struct {
	Items []TopLevel
}

func (p *Program) Accept(v Visitor) (any, error) { return v.VisitProgram(p) }

func (p *Program) Span() token.Span {
	if len(p.Items) == 0 {
		return token.Span{}
	}
	return token.Span{Start: p.Items[0].Span().Start, End: p.Items[len(p.Items)-1].Span().End}
}

// TopLevel is either a statement or a function definition.
type TopLevel interface {
	Node
	Accept(v Visitor) (any, error)
	topLevelNode()
}

// FuncDef is a named function definition: `function name(params) { body }`.
type FuncDef struct {
	Name   string
	Params []string
	Body   []Stmt
	Sp     token.Span
}

func (f *FuncDef) Accept(v Visitor) (any, error) { return v.VisitFuncDef(f) }
func (f *FuncDef) Span() token.Span              { return f.Sp }
func (*FuncDef) topLevelNode()                   {}

// StmtTopLevel wraps a bare statement appearing at program top level.
type StmtTopLevel struct {
	Stmt Stmt
}

func (s *StmtTopLevel) Accept(v Visitor) (any, error) { return v.VisitTopLevel(s) }
func (s *StmtTopLevel) Span() token.Span              { return s.Stmt.Span() }
func (*StmtTopLevel) topLevelNode()                   {}

// Func is reserved for first-class function values; the current grammar
// only ever produces FuncDef at top level, but the visitor contract names
// VisitFunc separately (spec §3.2) so a later grammar extension (function
// expressions) has a home without reshaping the interface.
type Func struct {
	Params []string
	Body   []Stmt
	Sp     token.Span
}

func (f *Func) Accept(v Visitor) (any, error) { return v.VisitFunc(f) }
func (f *Func) Span() token.Span              { return f.Sp }

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	Accept(v Visitor) (any, error)
	stmtNode()
}

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	Expr Expr
	Sp   token.Span
}

func (s *ExprStmt) Accept(v Visitor) (any, error) { return v.VisitStmt(s) }
func (s *ExprStmt) Span() token.Span              { return s.Sp }
func (*ExprStmt) stmtNode()                       {}

// VarDeclEntry is one `name [= init]` entry in a `var` declaration list.
type VarDeclEntry struct {
	Name string
	Init Expr // nil if no initializer
}

// VarDecl is a `var a, b = 1, c;` declaration statement.
type VarDecl struct {
	Entries []VarDeclEntry
	Sp      token.Span
}

func (s *VarDecl) Accept(v Visitor) (any, error) { return v.VisitStmt(s) }
func (s *VarDecl) Span() token.Span              { return s.Sp }
func (*VarDecl) stmtNode()                       {}

// Block is a brace-delimited statement list.
type Block struct {
	Stmts []Stmt
	Sp    token.Span
}

func (s *Block) Accept(v Visitor) (any, error) { return v.VisitStmt(s) }
func (s *Block) Span() token.Span              { return s.Sp }
func (*Block) stmtNode()                       {}

// Return is `return [expr];`.
type Return struct {
	Value Expr // nil if bare `return;`
	Sp    token.Span
}

func (s *Return) Accept(v Visitor) (any, error) { return v.VisitStmt(s) }
func (s *Return) Span() token.Span              { return s.Sp }
func (*Return) stmtNode()                       {}

// Break is `break;`.
type Break struct{ Sp token.Span }

func (s *Break) Accept(v Visitor) (any, error) { return v.VisitStmt(s) }
func (s *Break) Span() token.Span              { return s.Sp }
func (*Break) stmtNode()                       {}

// Continue is `continue;`.
type Continue struct{ Sp token.Span }

func (s *Continue) Accept(v Visitor) (any, error) { return v.VisitStmt(s) }
func (s *Continue) Span() token.Span              { return s.Sp }
func (*Continue) stmtNode()                       {}

// If is `if cond then_body [else else_body]`. ThenBody and ElseBody are
// always statements: the parser wraps a single bare statement into a Block
// only when the surface form was itself brace-delimited (spec §3.2).
type If struct {
	Cond     Expr
	ThenBody Stmt
	ElseBody Stmt // nil if no else clause
	Sp       token.Span
}

func (s *If) Accept(v Visitor) (any, error) { return v.VisitStmt(s) }
func (s *If) Span() token.Span              { return s.Sp }
func (*If) stmtNode()                       {}

// While is `while cond body`.
type While struct {
	Cond Expr
	Body Stmt
	Sp   token.Span
}

func (s *While) Accept(v Visitor) (any, error) { return v.VisitStmt(s) }
func (s *While) Span() token.Span              { return s.Sp }
func (*While) stmtNode()                       {}

// DoUntil is `do body until (cond);`: post-tested, terminates once cond
// becomes true.
type DoUntil struct {
	Body Stmt
	Cond Expr
	Sp   token.Span
}

func (s *DoUntil) Accept(v Visitor) (any, error) { return v.VisitStmt(s) }
func (s *DoUntil) Span() token.Span              { return s.Sp }
func (*DoUntil) stmtNode()                       {}

// Repeat is `repeat (n) body`: executes body n times.
type Repeat struct {
	Count Expr
	Body  Stmt
	Sp    token.Span
}

func (s *Repeat) Accept(v Visitor) (any, error) { return v.VisitStmt(s) }
func (s *Repeat) Span() token.Span              { return s.Sp }
func (*Repeat) stmtNode()                       {}

// For is `for (init; cond; update) body`. Init, Cond, and Update may each
// be nil if the corresponding clause was empty.
type For struct {
	Init   Stmt // VarDecl or ExprStmt, or nil
	Cond   Expr // nil means unconditional
	Update Stmt // ExprStmt, or nil
	Body   Stmt
	Sp     token.Span
}

func (s *For) Accept(v Visitor) (any, error) { return v.VisitStmt(s) }
func (s *For) Span() token.Span              { return s.Sp }
func (*For) stmtNode()                       {}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// Expr is implemented by every expression node.
type Expr interface {
	Node
	Accept(v Visitor) (any, error)
	exprNode()
}

// NumberLit is a numeric literal, lexed verbatim as a decimal string so the
// lowering pass can choose its numeric representation.
type NumberLit struct {
	Value string
	Sp    token.Span
}

func (e *NumberLit) Accept(v Visitor) (any, error) { return v.VisitExpr(e) }
func (e *NumberLit) Span() token.Span              { return e.Sp }
func (*NumberLit) exprNode()                       {}

// StringLit is a double-quoted string literal with the quotes stripped.
type StringLit struct {
	Value string
	Sp    token.Span
}

func (e *StringLit) Accept(v Visitor) (any, error) { return v.VisitExpr(e) }
func (e *StringLit) Span() token.Span              { return e.Sp }
func (*StringLit) exprNode()                       {}

// BoolLit is `true` or `false`.
type BoolLit struct {
	Value bool
	Sp    token.Span
}

func (e *BoolLit) Accept(v Visitor) (any, error) { return v.VisitExpr(e) }
func (e *BoolLit) Span() token.Span              { return e.Sp }
func (*BoolLit) exprNode()                       {}

// NullLit is the `null` literal.
type NullLit struct{ Sp token.Span }

func (e *NullLit) Accept(v Visitor) (any, error) { return v.VisitExpr(e) }
func (e *NullLit) Span() token.Span              { return e.Sp }
func (*NullLit) exprNode()                       {}

// Identifier is a borrowed name reference.
type Identifier struct {
	Name string
	Sp   token.Span
}

func (e *Identifier) Accept(v Visitor) (any, error) { return v.VisitExpr(e) }
func (e *Identifier) Span() token.Span              { return e.Sp }
func (*Identifier) exprNode()                       {}

// Call is `callee(args...)`.
type Call struct {
	Callee string
	Args   []Expr
	Sp     token.Span
}

func (e *Call) Accept(v Visitor) (any, error) { return v.VisitExpr(e) }
func (e *Call) Span() token.Span              { return e.Sp }
func (*Call) exprNode()                       {}

// Paren is a parenthesized expression, kept as its own node so source spans
// stay accurate; it carries no semantics beyond its inner expression.
type Paren struct {
	Inner Expr
	Sp    token.Span
}

func (e *Paren) Accept(v Visitor) (any, error) { return v.VisitExpr(e) }
func (e *Paren) Span() token.Span              { return e.Sp }
func (*Paren) exprNode()                       {}

// UnaryOp identifies a prefix unary operator.
type UnaryOp int

const (
	UnaryNot   UnaryOp = iota // !
	UnaryBNot                 // ~
	UnaryPlus                 // +
	UnaryMinus                 // -
)

// Unary is a prefix `! ~ + -` expression.
type Unary struct {
	Op      UnaryOp
	Operand Expr
	Sp      token.Span
}

func (e *Unary) Accept(v Visitor) (any, error) { return v.VisitExpr(e) }
func (e *Unary) Span() token.Span              { return e.Sp }
func (*Unary) exprNode()                       {}

// IncDec is a pre- or post-increment/decrement on an identifier. The parser
// guarantees Target is always an *Identifier (spec §3.2 invariant).
type IncDec struct {
	Target  *Identifier
	Inc     bool // true for ++, false for --
	Postfix bool
	Sp      token.Span
}

func (e *IncDec) Accept(v Visitor) (any, error) { return v.VisitExpr(e) }
func (e *IncDec) Span() token.Span              { return e.Sp }
func (*IncDec) exprNode()                       {}

// BinaryOp identifies a binary operator.
type BinaryOp int

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod

	BinEq
	BinNeq
	BinLt
	BinLe
	BinGt
	BinGe

	BinAnd // && (short-circuit)
	BinOr  // || (short-circuit)
	BinXor // ^^ (not short-circuit)

	BinBitOr
	BinBitAnd
	BinBitXor
)

// Binary is any binary arithmetic, comparison, logical, or bitwise
// expression.
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
	Sp    token.Span
}

func (e *Binary) Accept(v Visitor) (any, error) { return v.VisitExpr(e) }
func (e *Binary) Span() token.Span              { return e.Sp }
func (*Binary) exprNode()                       {}

// AssignOp identifies a compound assignment operator; AssignOp alone (no
// compounding) uses AssignPlain.
type AssignOp int

const (
	AssignPlain AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
)

// Assign is `target = value` or a compound `target op= value`. Target is
// always an *Identifier (spec §3.2 invariant).
type Assign struct {
	Op     AssignOp
	Target *Identifier
	Value  Expr
	Sp     token.Span
}

func (e *Assign) Accept(v Visitor) (any, error) { return v.VisitExpr(e) }
func (e *Assign) Span() token.Span              { return e.Sp }
func (*Assign) exprNode()                       {}

// Ternary is `cond ? then : else`.
type Ternary struct {
	Cond Expr
	Then Expr
	Else Expr
	Sp   token.Span
}

func (e *Ternary) Accept(v Visitor) (any, error) { return v.VisitExpr(e) }
func (e *Ternary) Span() token.Span              { return e.Sp }
func (*Ternary) exprNode()                       {}

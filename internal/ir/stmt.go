package ir

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/bramhosler/gmscript/internal/ast"
)

func zeroF64() value.Value { return constant.NewFloat(types.Double, 0) }

// lowerStmt lowers one statement and returns the SSA value it contributes
// to its enclosing block's "last computed value" (spec §4.4's function and
// if/phi lowering both thread this through to decide final-return and
// merge-phi values).
func (g *Generator) lowerStmt(s ast.Stmt) (value.Value, error) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		return g.lowerExpr(n.Expr)

	case *ast.VarDecl:
		return g.lowerVarDecl(n)

	case *ast.Block:
		var last value.Value = zeroF64()
		for _, stmt := range n.Stmts {
			if g.curBlock.Term != nil {
				break // stop after the first terminator, spec §4.4
			}
			v, err := g.lowerStmt(stmt)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil

	case *ast.Return:
		var v value.Value = zeroF64()
		if n.Value != nil {
			val, err := g.lowerExpr(n.Value)
			if err != nil {
				return nil, err
			}
			v = val
		}
		fv, err := g.coerceToF64(v)
		if err != nil {
			return nil, err
		}
		g.curBlock.NewRet(fv)
		return fv, nil

	case *ast.Break:
		if len(g.loopStack) == 0 {
			return nil, ErrBreakOutsideLoop
		}
		frame := g.loopStack[len(g.loopStack)-1]
		g.curBlock.NewBr(frame.exit)
		return zeroF64(), nil

	case *ast.Continue:
		if len(g.loopStack) == 0 {
			return nil, ErrContinueOutsideLoop
		}
		frame := g.loopStack[len(g.loopStack)-1]
		g.curBlock.NewBr(frame.continueTarget)
		return zeroF64(), nil

	case *ast.If:
		return g.lowerIf(n)
	case *ast.While:
		return g.lowerWhile(n)
	case *ast.DoUntil:
		return g.lowerDoUntil(n)
	case *ast.Repeat:
		return g.lowerRepeat(n)
	case *ast.For:
		return g.lowerFor(n)

	default:
		return zeroF64(), nil
	}
}

// lowerVarDecl allocates (or reuses, for a tolerated re-declaration -- spec
// §3.3/§9's "last write wins") an f64 stack slot per entry and stores its
// initializer, defaulting to 0.0 when absent.
func (g *Generator) lowerVarDecl(n *ast.VarDecl) (value.Value, error) {
	var last value.Value = zeroF64()
	for _, entry := range n.Entries {
		var v value.Value = zeroF64()
		if entry.Init != nil {
			val, err := g.lowerExpr(entry.Init)
			if err != nil {
				return nil, err
			}
			v = val
		}
		fv, err := g.coerceToF64(v)
		if err != nil {
			return nil, err
		}
		slot, ok := g.locals[entry.Name]
		if !ok {
			slot = g.curBlock.NewAlloca(types.Double)
			g.locals[entry.Name] = slot
		}
		g.curBlock.NewStore(fv, slot)
		last = fv
	}
	return last, nil
}

// lowerIf implements the if/phi pattern of spec §4.4. When there is no
// else clause the false edge from the entry block branches directly into
// merge, so merge always has at least that predecessor; the then-value is
// used as the merge's value in that case (there being no well-defined
// value on the direct edge to phi against). If the then-branch itself
// terminates (e.g. `if (a) return a;`), thenVal was computed in a block
// that does not dominate merge; returning it anyway is the same
// then-value-fallback quirk as the mismatched-branch-type case (see
// DESIGN.md), carried over deliberately rather than special-cased away.
func (g *Generator) lowerIf(n *ast.If) (value.Value, error) {
	condVal, err := g.lowerExpr(n.Cond)
	if err != nil {
		return nil, err
	}
	condBool, err := g.coerceToBool(condVal)
	if err != nil {
		return nil, err
	}

	thenBlock := g.newBlock()
	mergeBlock := g.newBlock()

	if n.ElseBody != nil {
		eb := g.newBlock()
		g.curBlock.NewCondBr(condBool, thenBlock, eb)

		g.curBlock = thenBlock
		thenVal, err := g.lowerStmt(n.ThenBody)
		if err != nil {
			return nil, err
		}
		thenEnd := g.curBlock
		thenTerminated := thenEnd.Term != nil
		if !thenTerminated {
			thenEnd.NewBr(mergeBlock)
		}

		g.curBlock = eb
		elseVal, err := g.lowerStmt(n.ElseBody)
		if err != nil {
			return nil, err
		}
		elseEnd := g.curBlock
		elseTerminated := elseEnd.Term != nil
		if !elseTerminated {
			elseEnd.NewBr(mergeBlock)
		}

		g.curBlock = mergeBlock
		switch {
		case thenTerminated && elseTerminated:
			mergeBlock.NewUnreachable()
			return zeroF64(), nil
		case thenTerminated:
			return elseVal, nil
		case elseTerminated:
			return thenVal, nil
		case types.Equal(thenVal.Type(), elseVal.Type()):
			return mergeBlock.NewPhi(newIncoming(thenVal, thenEnd), newIncoming(elseVal, elseEnd)), nil
		default:
			return thenVal, nil
		}
	}

	// No else clause: the false edge goes straight to merge.
	g.curBlock.NewCondBr(condBool, thenBlock, mergeBlock)

	g.curBlock = thenBlock
	thenVal, err := g.lowerStmt(n.ThenBody)
	if err != nil {
		return nil, err
	}
	thenEnd := g.curBlock
	if thenEnd.Term == nil {
		thenEnd.NewBr(mergeBlock)
	}

	g.curBlock = mergeBlock
	return thenVal, nil
}

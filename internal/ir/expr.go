package ir

import (
	"fmt"
	"strconv"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/bramhosler/gmscript/internal/ast"
)

// lowerExpr dispatches on the concrete expression node; it is the
// expression-level counterpart of lowerStmt and does not implement
// ast.Visitor directly (the visitor's Expr return type would have to be
// boxed through `any`, which buys nothing here over a plain switch).
func (g *Generator) lowerExpr(e ast.Expr) (value.Value, error) {
	switch n := e.(type) {
	case *ast.NumberLit:
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed number literal %q", ErrInvalidOperation, n.Value)
		}
		return constant.NewFloat(types.Double, f), nil
	case *ast.BoolLit:
		return boolConst(n.Value), nil
	case *ast.NullLit:
		return constant.NewNull(types.NewPointer(types.I8)), nil
	case *ast.StringLit:
		return g.lowerStringLit(n.Value), nil
	case *ast.Identifier:
		return g.lowerIdentifier(n)
	case *ast.Paren:
		return g.lowerExpr(n.Inner)
	case *ast.Unary:
		return g.lowerUnary(n)
	case *ast.IncDec:
		return g.lowerIncDec(n)
	case *ast.Assign:
		return g.lowerAssign(n)
	case *ast.Ternary:
		return g.lowerTernary(n)
	case *ast.Call:
		return g.lowerCall(n)
	case *ast.Binary:
		switch n.Op {
		case ast.BinAnd:
			return g.lowerShortCircuit(n, true)
		case ast.BinOr:
			return g.lowerShortCircuit(n, false)
		case ast.BinXor:
			return g.lowerLogicalXor(n)
		default:
			lv, err := g.lowerExpr(n.Left)
			if err != nil {
				return nil, err
			}
			rv, err := g.lowerExpr(n.Right)
			if err != nil {
				return nil, err
			}
			return g.lowerBinaryOp(n.Op, lv, rv)
		}
	default:
		return nil, fmt.Errorf("%w: unhandled expression node %T", ErrInvalidOperation, e)
	}
}

func (g *Generator) lowerIdentifier(n *ast.Identifier) (value.Value, error) {
	slot, ok := g.locals[n.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUndefinedVariable, n.Name)
	}
	return g.curBlock.NewLoad(types.Double, slot), nil
}

// lowerStringLit interns a string constant as a module-level global and
// returns a pointer to its first byte, the "pointer" type named in spec
// §4.4's numeric type model.
func (g *Generator) lowerStringLit(s string) value.Value {
	data := constant.NewCharArrayFromString(s + "\x00")
	global := g.module.NewGlobalDef(g.freshStringName(), data)
	global.Immutable = true
	zero := constant.NewInt(types.I64, 0)
	return constant.NewGetElementPtr(data.Type(), global, zero, zero)
}

func (g *Generator) lowerUnary(n *ast.Unary) (value.Value, error) {
	v, err := g.lowerExpr(n.Operand)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case ast.UnaryPlus:
		return v, nil
	case ast.UnaryMinus:
		if isF64(v.Type()) {
			return g.curBlock.NewFSub(constant.NewFloat(types.Double, 0), v), nil
		}
		iv, err := g.coerceToI32(v)
		if err != nil {
			return nil, err
		}
		return g.curBlock.NewSub(constant.NewInt(types.I32, 0), iv), nil
	case ast.UnaryNot:
		b, err := g.coerceToBool(v)
		if err != nil {
			return nil, err
		}
		return g.curBlock.NewXor(b, constant.NewInt(types.I1, 1)), nil
	case ast.UnaryBNot:
		iv, err := g.coerceToI32(v)
		if err != nil {
			return nil, err
		}
		return g.curBlock.NewXor(iv, constant.NewInt(types.I32, -1)), nil
	default:
		return nil, fmt.Errorf("%w: unknown unary operator", ErrInvalidOperation)
	}
}

// lowerIncDec implements pre/post ++/-- (spec §4.4): the increment constant
// is always 1.0 of type f64, since every variable slot is f64 (see
// lowerAssign's doc comment for why slots are uniformly f64).
func (g *Generator) lowerIncDec(n *ast.IncDec) (value.Value, error) {
	slot, ok := g.locals[n.Target.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUndefinedVariable, n.Target.Name)
	}
	oldVal := g.curBlock.NewLoad(types.Double, slot)
	one := constant.NewFloat(types.Double, 1)

	var newVal value.Value
	if n.Inc {
		newVal = g.curBlock.NewFAdd(oldVal, one)
	} else {
		newVal = g.curBlock.NewFSub(oldVal, one)
	}
	g.curBlock.NewStore(newVal, slot)

	if n.Postfix {
		return oldVal, nil
	}
	return newVal, nil
}

// lowerAssign implements `x = e` and `x op= e` (spec §4.4). Every variable
// slot is allocated as f64 (see VarDecl lowering in stmt.go): this keeps
// the stack-slot side table trivial (no per-name type tracking is needed)
// at the cost of eagerly coercing non-f64 values -- booleans become
// 1.0/0.0 -- at store time, which is value-preserving and matches f64
// being "the default for every value not otherwise typed" (spec §3.4).
func (g *Generator) lowerAssign(n *ast.Assign) (value.Value, error) {
	slot, ok := g.locals[n.Target.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUndefinedVariable, n.Target.Name)
	}

	rv, err := g.lowerExpr(n.Value)
	if err != nil {
		return nil, err
	}

	if n.Op == ast.AssignPlain {
		fv, err := g.coerceToF64(rv)
		if err != nil {
			return nil, err
		}
		g.curBlock.NewStore(fv, slot)
		return fv, nil
	}

	cur := g.curBlock.NewLoad(types.Double, slot)
	result, err := g.lowerBinaryOp(compoundToBinary(n.Op), cur, rv)
	if err != nil {
		return nil, err
	}
	fv, err := g.coerceToF64(result)
	if err != nil {
		return nil, err
	}
	g.curBlock.NewStore(fv, slot)
	return fv, nil
}

func compoundToBinary(op ast.AssignOp) ast.BinaryOp {
	switch op {
	case ast.AssignAdd:
		return ast.BinAdd
	case ast.AssignSub:
		return ast.BinSub
	case ast.AssignMul:
		return ast.BinMul
	case ast.AssignDiv:
		return ast.BinDiv
	case ast.AssignMod:
		return ast.BinMod
	default:
		panic("compoundToBinary: not a compound assignment operator")
	}
}

// lowerTernary follows the if/phi pattern (spec §4.4): a phi is emitted
// only when both branches share a type; otherwise the then-value is
// returned as a fallback, a known quirk carried over unchanged (see
// DESIGN.md).
func (g *Generator) lowerTernary(n *ast.Ternary) (value.Value, error) {
	condVal, err := g.lowerExpr(n.Cond)
	if err != nil {
		return nil, err
	}
	condBool, err := g.coerceToBool(condVal)
	if err != nil {
		return nil, err
	}

	thenBlock := g.newBlock()
	elseBlock := g.newBlock()
	mergeBlock := g.newBlock()
	g.curBlock.NewCondBr(condBool, thenBlock, elseBlock)

	g.curBlock = thenBlock
	thenVal, err := g.lowerExpr(n.Then)
	if err != nil {
		return nil, err
	}
	thenEnd := g.curBlock
	thenEnd.NewBr(mergeBlock)

	g.curBlock = elseBlock
	elseVal, err := g.lowerExpr(n.Else)
	if err != nil {
		return nil, err
	}
	elseEnd := g.curBlock
	elseEnd.NewBr(mergeBlock)

	g.curBlock = mergeBlock
	if types.Equal(thenVal.Type(), elseVal.Type()) {
		return mergeBlock.NewPhi(newIncoming(thenVal, thenEnd), newIncoming(elseVal, elseEnd)), nil
	}
	return thenVal, nil
}

// lowerCall implements f(args...) (spec §4.4): unknown callees are a hard
// error, arguments are lowered left to right and coerced to f64 to match
// every function's uniform f64 parameter signature.
func (g *Generator) lowerCall(n *ast.Call) (value.Value, error) {
	fn, ok := g.funcs[n.Callee]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUndefinedFunction, n.Callee)
	}
	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		av, err := g.lowerExpr(a)
		if err != nil {
			return nil, err
		}
		fv, err := g.coerceToF64(av)
		if err != nil {
			return nil, err
		}
		args[i] = fv
	}
	return g.curBlock.NewCall(fn, args...), nil
}

package ir

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/bramhosler/gmscript/internal/ast"
)

// lowerBinaryOp implements the §4.4 coercion table for every binary
// operator except the short-circuiting `&&`/`||` and the always-eager
// `^^`, which have their own bespoke lowering (lowerShortCircuit and
// lowerLogicalXor, below) since they
// need basic blocks or boolean-specific coercion, not this value-level
// dispatch.
func (g *Generator) lowerBinaryOp(op ast.BinaryOp, lhs, rhs value.Value) (value.Value, error) {
	lt, rt := lhs.Type(), rhs.Type()

	switch {
	case isF64(lt) && isF64(rt):
		return g.lowerOnF64(op, lhs, rhs)
	case isIntish(lt) && isIntish(rt):
		return g.lowerOnInt(op, lhs, rhs)
	case isIntish(lt) && isF64(rt):
		promoted, err := g.coerceToF64(lhs)
		if err != nil {
			return nil, err
		}
		return g.lowerOnF64(op, promoted, rhs)
	case isF64(lt) && isIntish(rt):
		promoted, err := g.coerceToF64(rhs)
		if err != nil {
			return nil, err
		}
		return g.lowerOnF64(op, lhs, promoted)
	default:
		return nil, fmt.Errorf("%w: %s and %s", ErrTypeMismatch, lt, rt)
	}
}

func (g *Generator) lowerOnF64(op ast.BinaryOp, lhs, rhs value.Value) (value.Value, error) {
	switch op {
	case ast.BinAdd:
		return g.curBlock.NewFAdd(lhs, rhs), nil
	case ast.BinSub:
		return g.curBlock.NewFSub(lhs, rhs), nil
	case ast.BinMul:
		return g.curBlock.NewFMul(lhs, rhs), nil
	case ast.BinDiv:
		return g.curBlock.NewFDiv(lhs, rhs), nil
	case ast.BinMod:
		return g.curBlock.NewFRem(lhs, rhs), nil
	case ast.BinEq:
		return g.curBlock.NewFCmp(enum.FPredOEQ, lhs, rhs), nil
	case ast.BinNeq:
		return g.curBlock.NewFCmp(enum.FPredONE, lhs, rhs), nil
	case ast.BinLt:
		return g.curBlock.NewFCmp(enum.FPredOLT, lhs, rhs), nil
	case ast.BinLe:
		return g.curBlock.NewFCmp(enum.FPredOLE, lhs, rhs), nil
	case ast.BinGt:
		return g.curBlock.NewFCmp(enum.FPredOGT, lhs, rhs), nil
	case ast.BinGe:
		return g.curBlock.NewFCmp(enum.FPredOGE, lhs, rhs), nil
	case ast.BinBitOr, ast.BinBitAnd, ast.BinBitXor:
		// Bitwise on two f64 operands: round-trip through i32 (spec §4.4).
		li, err := g.coerceToI32(lhs)
		if err != nil {
			return nil, err
		}
		ri, err := g.coerceToI32(rhs)
		if err != nil {
			return nil, err
		}
		res := g.intBitwise(op, li, ri)
		return g.curBlock.NewSIToFP(res, types.Double), nil
	default:
		return nil, fmt.Errorf("%w: operator not valid on f64 operands", ErrInvalidOperation)
	}
}

// lowerOnInt handles both sides being i1-or-i32 (possibly a mix, e.g. an
// i1 comparison result combined with an i32 loop counter): both operands
// are widened to i32 first.
func (g *Generator) lowerOnInt(op ast.BinaryOp, lhs, rhs value.Value) (value.Value, error) {
	li, err := g.coerceToI32(lhs)
	if err != nil {
		return nil, err
	}
	ri, err := g.coerceToI32(rhs)
	if err != nil {
		return nil, err
	}
	switch op {
	case ast.BinAdd:
		return g.curBlock.NewAdd(li, ri), nil
	case ast.BinSub:
		return g.curBlock.NewSub(li, ri), nil
	case ast.BinMul:
		return g.curBlock.NewMul(li, ri), nil
	case ast.BinDiv:
		return g.curBlock.NewSDiv(li, ri), nil
	case ast.BinMod:
		return g.curBlock.NewSRem(li, ri), nil
	case ast.BinEq:
		return g.curBlock.NewICmp(enum.IPredEQ, li, ri), nil
	case ast.BinNeq:
		return g.curBlock.NewICmp(enum.IPredNE, li, ri), nil
	case ast.BinLt:
		return g.curBlock.NewICmp(enum.IPredSLT, li, ri), nil
	case ast.BinLe:
		return g.curBlock.NewICmp(enum.IPredSLE, li, ri), nil
	case ast.BinGt:
		return g.curBlock.NewICmp(enum.IPredSGT, li, ri), nil
	case ast.BinGe:
		return g.curBlock.NewICmp(enum.IPredSGE, li, ri), nil
	case ast.BinBitOr, ast.BinBitAnd, ast.BinBitXor:
		return g.intBitwise(op, li, ri), nil
	default:
		return nil, fmt.Errorf("%w: operator not valid on int operands", ErrInvalidOperation)
	}
}

func (g *Generator) intBitwise(op ast.BinaryOp, li, ri value.Value) value.Value {
	switch op {
	case ast.BinBitOr:
		return g.curBlock.NewOr(li, ri)
	case ast.BinBitAnd:
		return g.curBlock.NewAnd(li, ri)
	default: // ast.BinBitXor
		return g.curBlock.NewXor(li, ri)
	}
}

// lowerLogicalXor implements `^^`: unlike `&&`/`||` it is not short-circuit,
// so both operands are evaluated eagerly, coerced to i1, and combined with
// an ordinary xor (spec §4.4).
func (g *Generator) lowerLogicalXor(n *ast.Binary) (value.Value, error) {
	lv, err := g.lowerExpr(n.Left)
	if err != nil {
		return nil, err
	}
	rv, err := g.lowerExpr(n.Right)
	if err != nil {
		return nil, err
	}
	lb, err := g.coerceToBool(lv)
	if err != nil {
		return nil, err
	}
	rb, err := g.coerceToBool(rv)
	if err != nil {
		return nil, err
	}
	return g.curBlock.NewXor(lb, rb), nil
}

// lowerShortCircuit implements the `&&`/`||` branch+phi pattern of spec
// §4.4. isAnd selects which side short-circuits and which boolean the
// short-circuit edge contributes to the merge phi.
func (g *Generator) lowerShortCircuit(n *ast.Binary, isAnd bool) (value.Value, error) {
	lv, err := g.lowerExpr(n.Left)
	if err != nil {
		return nil, err
	}
	lb, err := g.coerceToBool(lv)
	if err != nil {
		return nil, err
	}

	rhsBlock := g.newBlock()
	mergeBlock := g.newBlock()
	entryEnd := g.curBlock
	if isAnd {
		entryEnd.NewCondBr(lb, rhsBlock, mergeBlock)
	} else {
		entryEnd.NewCondBr(lb, mergeBlock, rhsBlock)
	}

	g.curBlock = rhsBlock
	rv, err := g.lowerExpr(n.Right)
	if err != nil {
		return nil, err
	}
	rb, err := g.coerceToBool(rv)
	if err != nil {
		return nil, err
	}
	rhsEnd := g.curBlock
	rhsEnd.NewBr(mergeBlock)

	g.curBlock = mergeBlock
	shortCircuitValue := boolConst(!isAnd)
	return mergeBlock.NewPhi(
		ir.NewIncoming(shortCircuitValue, entryEnd),
		ir.NewIncoming(rb, rhsEnd),
	), nil
}

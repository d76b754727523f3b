package ir

import (
	"fmt"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

func isF64(t types.Type) bool { return types.Equal(t, types.Double) }
func isI1(t types.Type) bool  { return types.Equal(t, types.I1) }
func isI32(t types.Type) bool { return types.Equal(t, types.I32) }
func isIntish(t types.Type) bool {
	return isI1(t) || isI32(t)
}
func isPointer(t types.Type) bool {
	_, ok := t.(*types.PointerType)
	return ok
}

// coerceToF64 implements the f64 side of the §4.4 coercion table: i1 via
// select(1.0, 0.0), i32 via signed-int-to-float, f64 unchanged.
func (g *Generator) coerceToF64(v value.Value) (value.Value, error) {
	t := v.Type()
	switch {
	case isF64(t):
		return v, nil
	case isI1(t):
		return g.curBlock.NewSelect(v, constant.NewFloat(types.Double, 1), constant.NewFloat(types.Double, 0)), nil
	case isI32(t):
		return g.curBlock.NewSIToFP(v, types.Double), nil
	default:
		return nil, fmt.Errorf("%w: cannot coerce %s to f64", ErrTypeMismatch, t)
	}
}

// coerceToI32 widens i1 (zero-extend) or truncates f64 (signed-float-to-int)
// to i32; used for bitwise-on-float round-tripping and repeat counters.
func (g *Generator) coerceToI32(v value.Value) (value.Value, error) {
	t := v.Type()
	switch {
	case isI32(t):
		return v, nil
	case isI1(t):
		return g.curBlock.NewZExt(v, types.I32), nil
	case isF64(t):
		return g.curBlock.NewFPToSI(v, types.I32), nil
	default:
		return nil, fmt.Errorf("%w: cannot coerce %s to i32", ErrTypeMismatch, t)
	}
}

// coerceToBool implements condition normalization (spec §4.4): identity for
// i1, `!= 0` for i32, `!= 0.0` for f64, `!= null` for pointers.
func (g *Generator) coerceToBool(v value.Value) (value.Value, error) {
	t := v.Type()
	switch {
	case isI1(t):
		return v, nil
	case isI32(t):
		return g.curBlock.NewICmp(enum.IPredNE, v, constant.NewInt(types.I32, 0)), nil
	case isF64(t):
		return g.curBlock.NewFCmp(enum.FPredONE, v, constant.NewFloat(types.Double, 0)), nil
	case isPointer(t):
		pt := t.(*types.PointerType)
		return g.curBlock.NewICmp(enum.IPredNE, v, constant.NewNull(pt)), nil
	default:
		return nil, fmt.Errorf("%w: cannot coerce %s to bool", ErrTypeMismatch, t)
	}
}

func boolConst(b bool) *constant.Int {
	if b {
		return constant.NewInt(types.I1, 1)
	}
	return constant.NewInt(types.I1, 0)
}

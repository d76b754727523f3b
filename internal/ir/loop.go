package ir

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/bramhosler/gmscript/internal/ast"
)

func (g *Generator) lowerWhile(n *ast.While) (value.Value, error) {
	condBlock := g.newBlock()
	bodyBlock := g.newBlock()
	exitBlock := g.newBlock()

	g.curBlock.NewBr(condBlock)

	g.curBlock = condBlock
	condVal, err := g.lowerExpr(n.Cond)
	if err != nil {
		return nil, err
	}
	condBool, err := g.coerceToBool(condVal)
	if err != nil {
		return nil, err
	}
	condBlock.NewCondBr(condBool, bodyBlock, exitBlock)

	g.loopStack = append(g.loopStack, loopFrame{exit: exitBlock, continueTarget: condBlock})
	g.curBlock = bodyBlock
	_, err = g.lowerStmt(n.Body)
	g.loopStack = g.loopStack[:len(g.loopStack)-1]
	if err != nil {
		return nil, err
	}
	if g.curBlock.Term == nil {
		g.curBlock.NewBr(condBlock)
	}

	g.curBlock = exitBlock
	return zeroF64(), nil
}

// lowerDoUntil lowers `do S until (c)`: the body runs before the first
// condition check, and the loop continues while the condition is false
// (spec §4.4's explicit negation).
func (g *Generator) lowerDoUntil(n *ast.DoUntil) (value.Value, error) {
	bodyBlock := g.newBlock()
	condBlock := g.newBlock()
	exitBlock := g.newBlock()

	g.curBlock.NewBr(bodyBlock)

	g.loopStack = append(g.loopStack, loopFrame{exit: exitBlock, continueTarget: condBlock})
	g.curBlock = bodyBlock
	_, err := g.lowerStmt(n.Body)
	g.loopStack = g.loopStack[:len(g.loopStack)-1]
	if err != nil {
		return nil, err
	}
	if g.curBlock.Term == nil {
		g.curBlock.NewBr(condBlock)
	}

	g.curBlock = condBlock
	condVal, err := g.lowerExpr(n.Cond)
	if err != nil {
		return nil, err
	}
	condBool, err := g.coerceToBool(condVal)
	if err != nil {
		return nil, err
	}
	negated := g.curBlock.NewXor(condBool, constant.NewInt(types.I1, 1))
	condBlock.NewCondBr(negated, bodyBlock, exitBlock)

	g.curBlock = exitBlock
	return zeroF64(), nil
}

// lowerRepeat lowers `repeat (n) S`: an i32 counter compared with signed
// `<` against n (cast to i32 if it arrived as f64), incremented before the
// backedge (spec §4.4). The increment has its own block, which is also the
// `continue` target, so a `continue` still counts the iteration.
func (g *Generator) lowerRepeat(n *ast.Repeat) (value.Value, error) {
	countVal, err := g.lowerExpr(n.Count)
	if err != nil {
		return nil, err
	}
	countI32, err := g.coerceToI32(countVal)
	if err != nil {
		return nil, err
	}

	counterSlot := g.curBlock.NewAlloca(types.I32)
	g.curBlock.NewStore(constant.NewInt(types.I32, 0), counterSlot)

	condBlock := g.newBlock()
	bodyBlock := g.newBlock()
	incBlock := g.newBlock()
	exitBlock := g.newBlock()

	g.curBlock.NewBr(condBlock)

	g.curBlock = condBlock
	counter := g.curBlock.NewLoad(types.I32, counterSlot)
	cmp := g.curBlock.NewICmp(enum.IPredSLT, counter, countI32)
	condBlock.NewCondBr(cmp, bodyBlock, exitBlock)

	g.loopStack = append(g.loopStack, loopFrame{exit: exitBlock, continueTarget: incBlock})
	g.curBlock = bodyBlock
	_, err = g.lowerStmt(n.Body)
	g.loopStack = g.loopStack[:len(g.loopStack)-1]
	if err != nil {
		return nil, err
	}
	if g.curBlock.Term == nil {
		g.curBlock.NewBr(incBlock)
	}

	cur := incBlock.NewLoad(types.I32, counterSlot)
	next := incBlock.NewAdd(cur, constant.NewInt(types.I32, 1))
	incBlock.NewStore(next, counterSlot)
	incBlock.NewBr(condBlock)

	g.curBlock = exitBlock
	return zeroF64(), nil
}

// lowerFor lowers `for (init; c; u) S`. init runs in the enclosing block;
// when c is absent the condition is the constant true and exit is
// statically unreachable, so it is terminated with `unreachable` (spec
// §4.4) -- this happens even though a `break` inside the body may still
// branch into exit, which is accepted as-is (see DESIGN.md).
func (g *Generator) lowerFor(n *ast.For) (value.Value, error) {
	if n.Init != nil {
		if _, err := g.lowerStmt(n.Init); err != nil {
			return nil, err
		}
	}

	condBlock := g.newBlock()
	bodyBlock := g.newBlock()
	updateBlock := g.newBlock()
	exitBlock := g.newBlock()

	g.curBlock.NewBr(condBlock)

	g.curBlock = condBlock
	if n.Cond != nil {
		condVal, err := g.lowerExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		condBool, err := g.coerceToBool(condVal)
		if err != nil {
			return nil, err
		}
		condBlock.NewCondBr(condBool, bodyBlock, exitBlock)
	} else {
		condBlock.NewBr(bodyBlock)
		exitBlock.NewUnreachable()
	}

	g.loopStack = append(g.loopStack, loopFrame{exit: exitBlock, continueTarget: updateBlock})
	g.curBlock = bodyBlock
	_, err := g.lowerStmt(n.Body)
	g.loopStack = g.loopStack[:len(g.loopStack)-1]
	if err != nil {
		return nil, err
	}
	if g.curBlock.Term == nil {
		g.curBlock.NewBr(updateBlock)
	}

	g.curBlock = updateBlock
	if n.Update != nil {
		if _, err := g.lowerStmt(n.Update); err != nil {
			return nil, err
		}
	}
	if g.curBlock.Term == nil {
		g.curBlock.NewBr(condBlock)
	}

	g.curBlock = exitBlock
	return zeroF64(), nil
}

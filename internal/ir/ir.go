// Package ir lowers a gmscript AST onto a typed SSA IR module using
// github.com/llir/llvm as the builder. Lowering is a single pass per
// function body; forward references and recursion are resolved by
// declaring every function's signature before any body is lowered.
package ir

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/bramhosler/gmscript/internal/ast"
)

// loopFrame tracks the blocks `break` and `continue` target inside the
// loop currently being lowered. Pushed on loop entry, popped on exit.
type loopFrame struct {
	exit           *ir.Block
	continueTarget *ir.Block
}

// Generator walks an AST and builds an *ir.Module; the entry point is
// Lower. It does not implement ast.Visitor: lowerStmt and lowerExpr
// dispatch on the node type with type switches.
type Generator struct {
	module *ir.Module

	funcs map[string]*ir.Func

	curFunc  *ir.Func
	curBlock *ir.Block
	locals   map[string]*ir.InstAlloca

	loopStack []loopFrame
	strCount  int
}

// Lower builds a fresh *ir.Module named moduleName from program. Every
// FuncDef becomes a module-level function of n f64 parameters returning
// f64; every bare top-level statement is folded into a synthesized
// zero-argument `main`.
func Lower(program *ast.Program, moduleName string) (*ir.Module, error) {
	g := &Generator{
		module: ir.NewModule(),
		funcs:  map[string]*ir.Func{},
	}
	g.module.SourceFilename = moduleName

	// Pass 1: declare every function's signature up front so calls --
	// including forward references and direct recursion -- resolve
	// against the table regardless of definition order.
	for _, item := range program.Items {
		fd, ok := item.(*ast.FuncDef)
		if !ok {
			continue
		}
		if _, dup := g.funcs[fd.Name]; dup {
			return nil, fmt.Errorf("%w: function %q declared twice", ErrInvalidOperation, fd.Name)
		}
		params := make([]*ir.Param, len(fd.Params))
		for i, name := range fd.Params {
			params[i] = ir.NewParam(name, types.Double)
		}
		g.funcs[fd.Name] = g.module.NewFunc(fd.Name, types.Double, params...)
	}

	mainFn := g.module.NewFunc("main", types.Double)
	mainEntry := mainFn.NewBlock("entry")

	g.curFunc = mainFn
	g.curBlock = mainEntry
	g.locals = map[string]*ir.InstAlloca{}

	var last value.Value = constant.NewFloat(types.Double, 0)
	for _, item := range program.Items {
		switch n := item.(type) {
		case *ast.FuncDef:
			if err := g.lowerFuncDef(n); err != nil {
				return nil, err
			}
		case *ast.StmtTopLevel:
			if g.curBlock.Term != nil {
				continue // dead code after a terminator; spec §4.4
			}
			v, err := g.lowerStmt(n.Stmt)
			if err != nil {
				return nil, err
			}
			last = v
		}
	}
	if g.curBlock.Term == nil {
		fv, err := g.coerceToF64(last)
		if err != nil {
			return nil, err
		}
		g.curBlock.NewRet(fv)
	}

	return g.module, nil
}

// lowerFuncDef lowers one function body, saving and restoring the
// generator's per-function state around it (spec §4.4 step 3/5).
func (g *Generator) lowerFuncDef(fd *ast.FuncDef) error {
	fn := g.funcs[fd.Name]
	entry := fn.NewBlock("entry")

	savedFunc, savedBlock, savedLocals, savedLoops := g.curFunc, g.curBlock, g.locals, g.loopStack
	defer func() {
		g.curFunc, g.curBlock, g.locals, g.loopStack = savedFunc, savedBlock, savedLocals, savedLoops
	}()

	g.curFunc = fn
	g.curBlock = entry
	g.locals = map[string]*ir.InstAlloca{}
	g.loopStack = nil

	for i, name := range fd.Params {
		slot := g.curBlock.NewAlloca(types.Double)
		g.curBlock.NewStore(fn.Params[i], slot)
		g.locals[name] = slot
	}

	var last value.Value = constant.NewFloat(types.Double, 0)
	for _, stmt := range fd.Body {
		if g.curBlock.Term != nil {
			break
		}
		v, err := g.lowerStmt(stmt)
		if err != nil {
			return err
		}
		last = v
	}
	if g.curBlock.Term == nil {
		fv, err := g.coerceToF64(last)
		if err != nil {
			return err
		}
		g.curBlock.NewRet(fv)
	}
	return nil
}

func (g *Generator) newBlock() *ir.Block { return g.curFunc.NewBlock("") }

func newIncoming(x value.Value, pred *ir.Block) *ir.Incoming { return ir.NewIncoming(x, pred) }

func (g *Generator) freshStringName() string {
	g.strCount++
	return fmt.Sprintf(".str.%d", g.strCount)
}

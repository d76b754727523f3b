package ir

import (
	"strings"
	"testing"

	llvmir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"

	"github.com/bramhosler/gmscript/internal/lexer"
	"github.com/bramhosler/gmscript/internal/parser"
)

func mustLower(t *testing.T, src string) *llvmir.Module {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog, errs := p.ParseProgram()
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, errs)
	}
	mod, err := Lower(prog, "test.gm")
	if err != nil {
		t.Fatalf("unexpected lowering error for %q: %v", src, err)
	}
	return mod
}

func findFunc(mod *llvmir.Module, name string) *llvmir.Func {
	for _, fn := range mod.Funcs {
		if fn.Name() == name {
			return fn
		}
	}
	return nil
}

// assertEveryBlockTerminated checks the IR termination invariant (spec §8):
// every basic block in every function ends in exactly one terminator.
func assertEveryBlockTerminated(t *testing.T, mod *llvmir.Module) {
	t.Helper()
	for _, fn := range mod.Funcs {
		for _, block := range fn.Blocks {
			if block.Term == nil {
				t.Errorf("function %s has an unterminated block %s", fn.Name(), block.Name())
			}
		}
	}
}

// assertReturnTypeUniformity checks that every function in the module
// returns f64 (spec §8).
func assertReturnTypeUniformity(t *testing.T, mod *llvmir.Module) {
	t.Helper()
	for _, fn := range mod.Funcs {
		if !types.Equal(fn.Sig.RetType, types.Double) {
			t.Errorf("function %s has return type %s, want f64", fn.Name(), fn.Sig.RetType)
		}
	}
}

func TestScenarioArithmeticPrecedence(t *testing.T) {
	mod := mustLower(t, `function test() { return 2 + 3 * 4 - 6 / 2; }`)
	assertEveryBlockTerminated(t, mod)
	assertReturnTypeUniformity(t, mod)
	if findFunc(mod, "test") == nil {
		t.Fatalf("expected a lowered test function")
	}
}

func TestScenarioShortCircuitSkipsAssignment(t *testing.T) {
	mod := mustLower(t, `function test() { var x = 0; var r = false && (x = 1); return x; }`)
	assertEveryBlockTerminated(t, mod)
	// The short-circuit lowering must introduce a branch: rendered IR text
	// should contain a conditional branch and a phi merging the two paths.
	text := mod.String()
	if !strings.Contains(text, "br i1") {
		t.Fatalf("expected a conditional branch in short-circuit lowering, got:\n%s", text)
	}
	if !strings.Contains(text, "phi i1") {
		t.Fatalf("expected an i1 phi merging the short-circuit paths, got:\n%s", text)
	}
}

func TestScenarioFactorialRecursion(t *testing.T) {
	mod := mustLower(t, `function fact(n) { if (n <= 1) return 1; return n * fact(n - 1); } function test() { return fact(5); }`)
	assertEveryBlockTerminated(t, mod)
	assertReturnTypeUniformity(t, mod)
	factFn := findFunc(mod, "fact")
	if factFn == nil {
		t.Fatalf("expected fact to be declared")
	}
	if len(factFn.Params) != 1 {
		t.Fatalf("expected fact to take 1 parameter, got %d", len(factFn.Params))
	}
	// Recursion requires fact to be able to call itself: its own body text
	// should reference its own name as a callee.
	if !strings.Contains(factFn.String(), "@fact(") {
		t.Fatalf("expected fact's body to contain a recursive call, got:\n%s", factFn.String())
	}
}

func TestScenarioRepeatLoop(t *testing.T) {
	mod := mustLower(t, `function test() { var s = 0; var i = 1; repeat (5) { s = s + i; i = i + 1; } return s; }`)
	assertEveryBlockTerminated(t, mod)
	text := mod.String()
	if !strings.Contains(text, "icmp slt i32") {
		t.Fatalf("expected a signed i32 comparison driving the repeat counter, got:\n%s", text)
	}
}

func TestScenarioPrePostIncrementMix(t *testing.T) {
	mod := mustLower(t, `function test() { var a = 5; var b = ++a; var c = a--; var d = --a; var e = a++; return a + b + c + d + e; }`)
	assertEveryBlockTerminated(t, mod)
	assertReturnTypeUniformity(t, mod)
}

func TestScenarioTernaryReturnCoercion(t *testing.T) {
	mod := mustLower(t, `function test() { var x = 5; return x > 3 ? true : false; }`)
	assertEveryBlockTerminated(t, mod)
	text := mod.String()
	if !strings.Contains(text, "select i1") {
		t.Fatalf("expected a select coercing the ternary's i1 result to f64 on return, got:\n%s", text)
	}
}

func TestEmptyProgramMainReturnsZero(t *testing.T) {
	mod := mustLower(t, "")
	assertEveryBlockTerminated(t, mod)
	mainFn := findFunc(mod, "main")
	if mainFn == nil {
		t.Fatalf("expected a main function")
	}
	if len(mainFn.Params) != 0 {
		t.Fatalf("expected main to take no parameters")
	}
	if !strings.Contains(mainFn.String(), "ret double 0") {
		t.Fatalf("expected main to return 0.0, got:\n%s", mainFn.String())
	}
}

func TestProgramOfOnlyNewlinesBehavesLikeEmpty(t *testing.T) {
	modA := mustLower(t, "")
	modB := mustLower(t, "\n\n;;\n;\n")
	if modA.String() != modB.String() {
		t.Fatalf("expected an all-whitespace program to lower identically to an empty one")
	}
}

func TestForLoopWithNoClausesProducesValidIR(t *testing.T) {
	mod := mustLower(t, `function f() { for (;;) break; }`)
	assertEveryBlockTerminated(t, mod)
	if !strings.Contains(mod.String(), "unreachable") {
		t.Fatalf("expected the condition-less for-loop's exit block to end in unreachable")
	}
}

func TestLoweringIsDeterministicAcrossFreshContexts(t *testing.T) {
	src := `function test() { var s = 0; var i = 1; repeat (5) { s = s + i; i = i + 1; } return s; }`
	modA := mustLower(t, src)
	modB := mustLower(t, src)
	if modA.String() != modB.String() {
		t.Fatalf("expected lowering the same source twice to produce identical IR text")
	}
}

func TestBreakOutsideLoopIsAnError(t *testing.T) {
	p := parser.New(lexer.New(`function f() { break; }`))
	prog, errs := p.ParseProgram()
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	if _, err := Lower(prog, "test.gm"); err == nil {
		t.Fatalf("expected a lowering error for break outside any loop")
	}
}

func TestContinueOutsideLoopIsAnError(t *testing.T) {
	p := parser.New(lexer.New(`function f() { continue; }`))
	prog, errs := p.ParseProgram()
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	if _, err := Lower(prog, "test.gm"); err == nil {
		t.Fatalf("expected a lowering error for continue outside any loop")
	}
}

func TestUndefinedVariableIsAnError(t *testing.T) {
	p := parser.New(lexer.New(`function f() { return missing; }`))
	prog, errs := p.ParseProgram()
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	if _, err := Lower(prog, "test.gm"); err == nil {
		t.Fatalf("expected a lowering error for an undefined variable")
	}
}

func TestUndefinedFunctionIsAnError(t *testing.T) {
	p := parser.New(lexer.New(`function f() { return missing(1); }`))
	prog, errs := p.ParseProgram()
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	if _, err := Lower(prog, "test.gm"); err == nil {
		t.Fatalf("expected a lowering error for an undefined function")
	}
}

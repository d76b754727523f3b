package scope

import (
	"testing"

	"github.com/bramhosler/gmscript/internal/ast"
	"github.com/bramhosler/gmscript/internal/lexer"
	"github.com/bramhosler/gmscript/internal/parser"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l)
	prog, errs := p.ParseProgram()
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, errs)
	}
	return prog
}

func TestFunctionBodyOpensOneScopeWithParams(t *testing.T) {
	prog := parseProgram(t, `function f(a, b) { var c = 1; }`)
	root := Analyze(prog)

	if len(root.Children) != 1 {
		t.Fatalf("expected 1 child scope under root, got %d", len(root.Children))
	}
	fnScope := root.Children[0]
	for _, want := range []string{"a", "b", "c"} {
		if _, ok := fnScope.Symbols[want]; !ok {
			t.Fatalf("expected %q recorded in function scope", want)
		}
	}
	if sym, ok := root.Symbols["f"]; !ok || sym.Kind != SymbolFunction {
		t.Fatalf("expected f recorded as a function in the root scope")
	}
}

func TestIfWithBlockBodyIsTwoScopesDeep(t *testing.T) {
	prog := parseProgram(t, `function f() { if (true) { var x = 1; } }`)
	root := Analyze(prog)

	fnScope := root.Children[0]
	if len(fnScope.Children) != 1 {
		t.Fatalf("expected 1 if-scope under function scope, got %d", len(fnScope.Children))
	}
	ifScope := fnScope.Children[0]
	if len(ifScope.Children) != 1 {
		t.Fatalf("expected exactly one nested block scope under the if scope (two scopes deep), got %d", len(ifScope.Children))
	}
	blockScope := ifScope.Children[0]
	if _, ok := blockScope.Symbols["x"]; !ok {
		t.Fatalf("expected x recorded in the innermost block scope")
	}
}

func TestIfWithBareStatementBodyIsOneScopeDeep(t *testing.T) {
	prog := parseProgram(t, `function f() { if (true) var x = 1; }`)
	root := Analyze(prog)

	fnScope := root.Children[0]
	ifScope := fnScope.Children[0]
	if len(ifScope.Children) != 0 {
		t.Fatalf("expected no nested scope for a bare statement if-body, got %d children", len(ifScope.Children))
	}
	if _, ok := ifScope.Symbols["x"]; !ok {
		t.Fatalf("expected x recorded directly in the if scope")
	}
}

func TestIfElseOpensTwoSiblingScopes(t *testing.T) {
	prog := parseProgram(t, `function f() { if (true) { var x = 1; } else { var y = 2; } }`)
	root := Analyze(prog)
	fnScope := root.Children[0]
	if len(fnScope.Children) != 2 {
		t.Fatalf("expected then-scope and else-scope as two children, got %d", len(fnScope.Children))
	}
}

func TestDoUntilConditionAnalyzedInOuterScope(t *testing.T) {
	// The until condition references i, declared in the function scope. The
	// condition is analyzed in the outer scope and opens no scope of its
	// own, so the function scope has exactly one child: the do-until body's
	// construct scope.
	prog := parseProgram(t, `function f() { var i = 0; do { i = i + 1; } until (i >= 3); }`)
	root := Analyze(prog)
	fnScope := root.Children[0]
	if len(fnScope.Children) != 1 {
		t.Fatalf("expected one do-until scope under the function scope, got %d", len(fnScope.Children))
	}
}

func TestRepeatBodyOpensOneScope(t *testing.T) {
	prog := parseProgram(t, `function f() { repeat (5) { var s = 0; } }`)
	root := Analyze(prog)
	fnScope := root.Children[0]
	if len(fnScope.Children) != 1 {
		t.Fatalf("expected one repeat scope, got %d", len(fnScope.Children))
	}
	repeatScope := fnScope.Children[0]
	if len(repeatScope.Children) != 1 {
		t.Fatalf("expected one nested block scope inside the repeat scope, got %d", len(repeatScope.Children))
	}
}

func TestForHeaderAndBodyShareOneScope(t *testing.T) {
	prog := parseProgram(t, `function f() { for (var i = 0; i < 5; i = i + 1) { var s = i; } }`)
	root := Analyze(prog)
	fnScope := root.Children[0]
	if len(fnScope.Children) != 1 {
		t.Fatalf("expected one for-scope holding init/cond/update/body, got %d", len(fnScope.Children))
	}
	forScope := fnScope.Children[0]
	if _, ok := forScope.Symbols["i"]; !ok {
		t.Fatalf("expected the for-header's declared variable in the for scope")
	}
}

func TestDuplicateDeclarationsAreToleratedLastWriteWins(t *testing.T) {
	prog := parseProgram(t, `function f() { var x = 1; var x = 2; }`)
	root := Analyze(prog)
	fnScope := root.Children[0]
	if _, ok := fnScope.Symbols["x"]; !ok {
		t.Fatalf("expected x still recorded after a duplicate declaration")
	}
}

func TestAnalyzeIsDeterministicAcrossRuns(t *testing.T) {
	prog := parseProgram(t, `function f(a) { if (a) { var x = 1; } while (a) { var y = 2; } }`)
	first := Analyze(prog)
	second := Analyze(prog)

	var countNodes func(s *Scope) int
	countNodes = func(s *Scope) int {
		n := 1
		for _, c := range s.Children {
			n += countNodes(c)
		}
		return n
	}
	if countNodes(first) != countNodes(second) {
		t.Fatalf("expected running the analyzer twice to produce identical scope trees")
	}
}

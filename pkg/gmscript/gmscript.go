// Package gmscript is the public pipeline facade: source text in, either a
// parsed AST, an annotated scope tree, or a lowered IR module out. It has
// no dependency on an actual JIT or interpreter backend; Verifier and
// Executor exist purely as seams a host embedding this module can
// implement against a real back-end. The C-ABI embedding shim and the
// `set_global_variable` host entry point described alongside this spec are
// intentionally external to this module.
package gmscript

import (
	irpkg "github.com/llir/llvm/ir"

	"github.com/bramhosler/gmscript/internal/ast"
	"github.com/bramhosler/gmscript/internal/ir"
	"github.com/bramhosler/gmscript/internal/lexer"
	"github.com/bramhosler/gmscript/internal/parser"
	"github.com/bramhosler/gmscript/internal/scope"
)

// Parse lexes and parses source, returning the AST root and any parse
// errors. A non-empty error list should be treated as a failed compile;
// the returned Program may still be partially populated for callers that
// want to inspect what was recovered.
func Parse(source string) (*ast.Program, []parser.ParseError) {
	p := parser.New(lexer.New(source))
	return p.ParseProgram()
}

// Analyze walks program and returns its root Scope, mirroring the lexical
// nesting described in spec §4.3.
func Analyze(program *ast.Program) *scope.Scope {
	return scope.Analyze(program)
}

// Lower builds a self-contained typed IR module from program, named
// moduleName.
func Lower(program *ast.Program, moduleName string) (*irpkg.Module, error) {
	return ir.Lower(program, moduleName)
}

// Verifier checks a lowered module's structural invariants (block
// termination, dominance, return-type uniformity) before it is handed to
// an Executor. No implementation ships in this module.
type Verifier interface {
	Verify(mod *irpkg.Module) error
}

// Executor runs a verified module. No implementation ships in this
// module; a host embedding gmscript supplies one (a JIT, an interpreter
// over the IR, or an ahead-of-time compiled object).
type Executor interface {
	ExecuteMain(mod *irpkg.Module) (float64, error)
	Execute(mod *irpkg.Module, name string, args ...float64) (float64, error)
}

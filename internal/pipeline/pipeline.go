package pipeline

import (
	"github.com/tliron/commonlog"

	"egglite/internal/ast"
	"egglite/internal/desugar"
	"egglite/internal/parser"
	"egglite/internal/proofs"
	"egglite/internal/types"
)

var log = commonlog.GetLogger("egglite.pipeline")

// Options selects optional pipeline stages.
type Options struct {
	// Proofs instruments the program so it derives witnesses for every
	// equality and term it produces.
	Proofs bool
}

// Result is the compiled form of one program.
type Result struct {
	// Surface holds the parsed program before any lowering.
	Surface []ast.Command
	// Desugared holds the minimal command set, rules flattened.
	Desugared []ast.Command
	// Norm is the executable normalized program.
	Norm []ast.NormCommand
	// Types is the environment the normalized program typechecked under.
	Types *types.TypeEnv
}

// Compile runs parse, desugar, normalize and typecheck over one program,
// then optionally instruments it for proofs and lowers the instrumented
// program the same way.
func Compile(filename, src string, opts Options) (*Result, error) {
	program, err := parser.ParseProgram(filename, src)
	if err != nil {
		return nil, err
	}
	return CompileCommands(program, opts)
}

// CompileCommands compiles an already-parsed program.
func CompileCommands(program []ast.Command, opts Options) (*Result, error) {
	d := desugar.NewDesugarer(parser.ParseProgram)

	desugared, err := d.DesugarProgram(program)
	if err != nil {
		return nil, err
	}
	norm := d.Normalize(desugared)
	log.Debugf("desugared %d commands into %d", len(program), len(norm))

	env := types.NewTypeEnv()
	if err := env.TypecheckProgram(norm); err != nil {
		return nil, err
	}

	if opts.Proofs {
		instrumented, err := proofs.AddProofs(norm, env, d.Fresh)
		if err != nil {
			return nil, err
		}
		log.Debugf("proof instrumentation produced %d commands", len(instrumented))

		desugared, err = d.DesugarProgram(instrumented)
		if err != nil {
			return nil, err
		}
		norm = d.Normalize(desugared)
		env = types.NewTypeEnv()
		if err := env.TypecheckProgram(norm); err != nil {
			return nil, err
		}
	}

	return &Result{
		Surface:   program,
		Desugared: desugared,
		Norm:      norm,
		Types:     env,
	}, nil
}

// RoundTrip prints the compiled program, reparses the text, and compiles it
// again. Harness runs use it to pin the printer against the parser.
func RoundTrip(res *Result) (*Result, error) {
	text := ast.PrintProgram(desugar.ToRules(res.Desugared))
	return Compile("<roundtrip>", text, Options{})
}

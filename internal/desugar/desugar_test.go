package desugar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"egglite/internal/ast"
	"egglite/internal/errors"
	"egglite/internal/parser"
)

func parseOne(t *testing.T, src string) ast.Command {
	t.Helper()
	cmds, err := parser.ParseProgram("test.egg", src)
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	return cmds[0]
}

func newTestDesugarer() *Desugarer {
	return NewDesugarer(parser.ParseProgram)
}

func TestDatatypeExpansion(t *testing.T) {
	// (datatype Expr (Num i64) (Add Expr Expr)) expands to one sort and one
	// constructor table per variant
	d := newTestDesugarer()
	out, err := d.DesugarCommand(parseOne(t, `(datatype Expr (Num i64) (Add Expr Expr))`))
	require.NoError(t, err)
	require.Len(t, out, 3)

	sort, ok := out[0].(*ast.SortCmd)
	require.True(t, ok)
	assert.Equal(t, "Expr", sort.Name.String())
	assert.Equal(t, ast.Symbol(0), sort.Presort)

	num := out[1].(*ast.FunctionCmd).Decl
	assert.Equal(t, "Num", num.Name.String())
	assert.Equal(t, []ast.Symbol{ast.Intern("i64")}, num.Schema.Input)
	assert.Equal(t, "Expr", num.Schema.Output.String())
	assert.Nil(t, num.Merge)
	assert.Nil(t, num.Default)

	add := out[2].(*ast.FunctionCmd).Decl
	assert.Equal(t, "Add", add.Name.String())
	assert.Equal(t, []ast.Symbol{ast.Intern("Expr"), ast.Intern("Expr")}, add.Schema.Input)
	assert.Equal(t, "Expr", add.Schema.Output.String())
}

func TestDatatypeExpansionArity(t *testing.T) {
	d := newTestDesugarer()
	out, err := d.DesugarCommand(parseOne(t,
		`(datatype N (V1 i64) (V2 N) (V3 N N) (V4))`))
	require.NoError(t, err)
	assert.Len(t, out, 5, "k variants expand to k+1 commands")
	for _, cmd := range out[1:] {
		fn := cmd.(*ast.FunctionCmd)
		assert.Equal(t, "N", fn.Decl.Schema.Output.String())
	}
}

func TestLeafCommandsPassThrough(t *testing.T) {
	// desugaring is the identity on commands that carry no sugar
	leaves := []string{
		`(sort V)`,
		`(function f (i64) i64)`,
		`(declare x V)`,
		`(run 10)`,
		`(push)`,
		`(pop)`,
		`(check (= a b))`,
		`(ruleset opt)`,
		`(set-option node-limit 100)`,
		`(let one 1)`,
	}
	for _, src := range leaves {
		d := newTestDesugarer()
		cmd := parseOne(t, src)
		out, err := d.DesugarCommand(cmd)
		require.NoError(t, err, src)
		require.Len(t, out, 1, src)
		assert.Same(t, cmd, out[0], src)
	}
}

func TestRewriteDesugar(t *testing.T) {
	d := newTestDesugarer()
	out, err := d.DesugarCommand(parseOne(t, `(rewrite (Add a b) (Add b a))`))
	require.NoError(t, err)
	require.Len(t, out, 1)

	flat, ok := out[0].(*ast.FlatRuleCmd)
	require.True(t, ok)

	// body: bind the matched left-hand side, then constrain rewrite_var__
	require.Len(t, flat.Rule.Body, 2)
	assign := flat.Rule.Body[0].(*ast.SSAAssign)
	call := assign.Expr.(*ast.SSACall)
	assert.Equal(t, "Add", call.Func.String())
	assert.Equal(t, []ast.Symbol{ast.Intern("a"), ast.Intern("b")}, call.Args)

	eq := flat.Rule.Body[1].(*ast.SSAConstrainEq)
	assert.Equal(t, "rewrite_var__", eq.Lhs.String())
	assert.Equal(t, assign.Var, eq.Rhs)

	// head: exactly one union, against a freshly built right-hand side
	unions := 0
	for _, a := range flat.Rule.Head {
		if u, ok := a.(*ast.SSAUnion); ok {
			unions++
			assert.True(t, ast.IsFreshVar(u.Lhs))
			assert.True(t, ast.IsFreshVar(u.Rhs))
		}
	}
	assert.Equal(t, 1, unions)
}

func TestRewriteWithConditions(t *testing.T) {
	d := newTestDesugarer()
	out, err := d.DesugarCommand(parseOne(t,
		`(rewrite (Div a two) (Num 0) :when ((= two (Num 2))))`))
	require.NoError(t, err)
	flat := out[0].(*ast.FlatRuleCmd)

	// the condition's call lands in the body alongside the lhs binding
	var calls []string
	for _, f := range flat.Rule.Body {
		if a, ok := f.(*ast.SSAAssign); ok {
			if c, ok := a.Expr.(*ast.SSACall); ok {
				calls = append(calls, c.Func.String())
			}
		}
	}
	assert.Contains(t, calls, "Div")
	assert.Contains(t, calls, "Num")
}

func TestBiRewriteDesugar(t *testing.T) {
	d := newTestDesugarer()
	out, err := d.DesugarCommand(parseOne(t, `(birewrite (Add a b) (Add b a))`))
	require.NoError(t, err)
	require.Len(t, out, 2, "a birewrite is a rewrite plus its mirror")

	first := out[0].(*ast.FlatRuleCmd)
	second := out[1].(*ast.FlatRuleCmd)

	firstCall := first.Rule.Body[0].(*ast.SSAAssign).Expr.(*ast.SSACall)
	secondCall := second.Rule.Body[0].(*ast.SSAAssign).Expr.(*ast.SSACall)
	assert.Equal(t, []ast.Symbol{ast.Intern("a"), ast.Intern("b")}, firstCall.Args)
	assert.Equal(t, []ast.Symbol{ast.Intern("b"), ast.Intern("a")}, secondCall.Args)
}

func TestRuleDesugarsToFlatRule(t *testing.T) {
	d := newTestDesugarer()
	out, err := d.DesugarCommand(parseOne(t,
		`(rule ((= e (Add x y))) ((union e (Add y x))) :name "commute")`))
	require.NoError(t, err)
	flat := out[0].(*ast.FlatRuleCmd)
	assert.Equal(t, "commute", flat.Name.String())
}

func TestRelationDesugar(t *testing.T) {
	d := newTestDesugarer()
	out, err := d.DesugarCommand(parseOne(t, `(relation edge (V V))`))
	require.NoError(t, err)
	fn := out[0].(*ast.FunctionCmd).Decl
	assert.Equal(t, "Unit", fn.Schema.Output.String())
	assert.NotNil(t, fn.Default)
}

func TestIncludeInlinesAndDesugars(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.egg")
	require.NoError(t, os.WriteFile(path, []byte(`(datatype V (Mk i64))`), 0o644))

	d := newTestDesugarer()
	out, err := d.DesugarCommand(&ast.IncludeCmd{Path: path})
	require.NoError(t, err)
	require.Len(t, out, 2, "included datatypes are expanded too")
	_, ok := out[0].(*ast.SortCmd)
	assert.True(t, ok)
}

func TestIncludeMissingFile(t *testing.T) {
	d := newTestDesugarer()
	_, err := d.DesugarCommand(&ast.IncludeCmd{Path: "/does/not/exist.egg"})
	require.Error(t, err)
	ce, ok := err.(*errors.CompilerError)
	require.True(t, ok)
	assert.Equal(t, errors.IoError, ce.Kind)
}

func TestDesugarProgramShortCircuits(t *testing.T) {
	d := newTestDesugarer()
	program := []ast.Command{
		parseOne(t, `(sort V)`),
		&ast.IncludeCmd{Path: "/does/not/exist.egg"},
		parseOne(t, `(sort W)`),
	}
	_, err := d.DesugarProgram(program)
	require.Error(t, err)
}
